package invoices

import (
	projects_services "timebridge/internal/features/projects/services"
	"timebridge/internal/features/subcontractors"
	"timebridge/internal/util/logger"
)

var invoiceRepository = &InvoiceRepository{}

var invoiceService = NewInvoiceService(
	invoiceRepository,
	projects_services.GetProjectService(),
	subcontractors.GetSubcontractorService(),
	logger.GetLogger(),
)

var invoiceController = &InvoiceController{
	invoiceService: invoiceService,
}

func GetInvoiceRepository() *InvoiceRepository {
	return invoiceRepository
}

func GetInvoiceService() *InvoiceService {
	return invoiceService
}

func GetInvoiceController() *InvoiceController {
	return invoiceController
}

func SetupDependencies() {
	projects_services.GetProjectService().AddProjectDeletionListener(invoiceService)
	subcontractors.GetSubcontractorService().AddSubcontractorDeletionListener(invoiceService)
}
