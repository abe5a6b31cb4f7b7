package projects_services

import (
	projects_interfaces "timebridge/internal/features/projects/interfaces"
	projects_models "timebridge/internal/features/projects/models"
	projects_repositories "timebridge/internal/features/projects/repositories"
	cache_utils "timebridge/internal/util/cache"

	"golang.org/x/sync/singleflight"
)

var projectRepository = &projects_repositories.ProjectRepository{}
var assignmentRepository = &projects_repositories.AssignmentRepository{}

var projectService = &ProjectService{
	projectRepository,
	assignmentRepository,
	nil,
	nil,
	[]projects_interfaces.ProjectDeletionListener{},
	cache_utils.NewCacheUtil[projects_models.Project]("tb_project:"),
	singleflight.Group{},
}

func GetProjectService() *ProjectService {
	return projectService
}

func GetProjectRepository() *projects_repositories.ProjectRepository {
	return projectRepository
}

func GetAssignmentRepository() *projects_repositories.AssignmentRepository {
	return assignmentRepository
}
