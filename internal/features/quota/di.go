package quota

import (
	projects_services "timebridge/internal/features/projects/services"
	"timebridge/internal/features/timelogs"
)

var quotaService = NewQuotaService(
	projects_services.GetProjectService(),
	timelogs.GetTimeLogRepository(),
)

var quotaController = &QuotaController{
	quotaService: quotaService,
}

func GetQuotaService() *QuotaService {
	return quotaService
}

func GetQuotaController() *QuotaController {
	return quotaController
}
