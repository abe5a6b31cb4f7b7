package reports

import (
	"timebridge/internal/features/invoices"
	projects_services "timebridge/internal/features/projects/services"
	"timebridge/internal/features/subcontractors"
	"timebridge/internal/features/timelogs"
	"timebridge/internal/util/logger"
)

var mirror = NewMirror(
	projects_services.GetProjectRepository(),
	subcontractors.GetSubcontractorRepository(),
	timelogs.GetTimeLogRepository(),
	invoices.GetInvoiceRepository(),
	logger.GetLogger(),
)

var reportService = NewReportService(mirror)

var reportController = &ReportController{
	reportService: reportService,
}

// GetMirror returns the shared mirror. It stays empty until Start is called.
func GetMirror() *Mirror {
	return mirror
}

func GetReportService() *ReportService {
	return reportService
}

func GetReportController() *ReportController {
	return reportController
}
