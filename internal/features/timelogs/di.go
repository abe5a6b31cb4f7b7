package timelogs

import (
	projects_services "timebridge/internal/features/projects/services"
	"timebridge/internal/features/subcontractors"
	"timebridge/internal/util/logger"
)

var timeLogRepository = &TimeLogRepository{}

var timeLogService = NewTimeLogService(
	timeLogRepository,
	projects_services.GetProjectService(),
	subcontractors.GetSubcontractorService(),
	logger.GetLogger(),
)

var timeLogController = &TimeLogController{
	timeLogService: timeLogService,
}

func GetTimeLogRepository() *TimeLogRepository {
	return timeLogRepository
}

func GetTimeLogService() *TimeLogService {
	return timeLogService
}

func GetTimeLogController() *TimeLogController {
	return timeLogController
}

func SetupDependencies() {
	projects_services.GetProjectService().AddProjectDeletionListener(timeLogService)
	subcontractors.GetSubcontractorService().AddSubcontractorDeletionListener(timeLogService)
}
