package audit_logs

import (
	"timebridge/internal/features/integrations/factorial"
	"timebridge/internal/features/invoices"
	projects_services "timebridge/internal/features/projects/services"
	"timebridge/internal/features/roles"
	"timebridge/internal/features/subcontractors"
	system_reset "timebridge/internal/features/system/reset"
	"timebridge/internal/features/timelogs"
	users_services "timebridge/internal/features/users/services"
	"timebridge/internal/util/logger"
)

var auditLogRepository = &AuditLogRepository{}
var auditLogService = &AuditLogService{
	auditLogRepository: auditLogRepository,
	logger:             logger.GetLogger(),
}
var auditLogController = &AuditLogController{
	auditLogService: auditLogService,
}

func GetAuditLogService() *AuditLogService {
	return auditLogService
}

func GetAuditLogController() *AuditLogController {
	return auditLogController
}

func SetupDependencies() {
	users_services.GetUserService().SetAuditLogWriter(auditLogService)
	users_services.GetManagementService().SetAuditLogWriter(auditLogService)
	roles.GetRoleService().SetAuditLogWriter(auditLogService)
	projects_services.GetProjectService().SetAuditLogWriter(auditLogService)
	subcontractors.GetSubcontractorService().SetAuditLogWriter(auditLogService)
	timelogs.GetTimeLogService().SetAuditLogWriter(auditLogService)
	invoices.GetInvoiceService().SetAuditLogWriter(auditLogService)
	factorial.GetSettingsService().SetAuditLogWriter(auditLogService)
	factorial.GetSyncEngine().SetAuditLogWriter(auditLogService)
	system_reset.GetResetService().SetAuditLogWriter(auditLogService)
}
