package subcontractors

import (
	projects_services "timebridge/internal/features/projects/services"
)

var subcontractorRepository = &SubcontractorRepository{}

var subcontractorService = &SubcontractorService{
	subcontractorRepository: subcontractorRepository,
	assignmentRepository:    projects_services.GetAssignmentRepository(),
}

var subcontractorController = &SubcontractorController{
	subcontractorService: subcontractorService,
}

func GetSubcontractorRepository() *SubcontractorRepository {
	return subcontractorRepository
}

func GetSubcontractorService() *SubcontractorService {
	return subcontractorService
}

func GetSubcontractorController() *SubcontractorController {
	return subcontractorController
}

func SetupDependencies() {
	projects_services.GetProjectService().SetSubcontractorExistenceChecker(subcontractorService)
}
