package projects_controllers

import (
	audit_logs "timebridge/internal/features/audit_logs"
	projects_services "timebridge/internal/features/projects/services"
)

var projectController = &ProjectController{
	projects_services.GetProjectService(),
	audit_logs.GetAuditLogService(),
}

func GetProjectController() *ProjectController {
	return projectController
}
