package system_reset

import (
	"timebridge/internal/features/invoices"
	projects_services "timebridge/internal/features/projects/services"
	"timebridge/internal/features/subcontractors"
	"timebridge/internal/features/timelogs"
	"timebridge/internal/util/logger"
)

var resetService = &ResetService{
	timeLogs:       timelogs.GetTimeLogRepository(),
	invoices:       invoices.GetInvoiceRepository(),
	projects:       projects_services.GetProjectRepository(),
	subcontractors: subcontractors.GetSubcontractorRepository(),
	projectCache:   projects_services.GetProjectService(),
	logger:         logger.GetLogger(),
}

var resetController = &ResetController{
	resetService: resetService,
}

func GetResetService() *ResetService {
	return resetService
}

func GetResetController() *ResetController {
	return resetController
}
