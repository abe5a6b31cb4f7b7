package quota

import (
	"time"

	"timebridge/internal/features/approval"
	projects_models "timebridge/internal/features/projects/models"
	"timebridge/internal/features/timelogs"
	"timebridge/internal/util/app_errors"
)

type projectLookup interface {
	GetProjectWithCache(projectID string) (*projects_models.Project, error)
}

type timeLogSource interface {
	GetForAssignment(projectID, subcontractorID string) ([]*timelogs.TimeLog, error)
}

type QuotaService struct {
	projectService projectLookup
	timeLogSource  timeLogSource
	now            func() time.Time
}

func NewQuotaService(projectService projectLookup, timeLogSource timeLogSource) *QuotaService {
	return &QuotaService{
		projectService: projectService,
		timeLogSource:  timeLogSource,
		now:            time.Now,
	}
}

func (s *QuotaService) GetAssignmentUsage(
	identity approval.Identity,
	projectID, subcontractorID string,
) (*Usage, error) {
	if identity.Actor == approval.ActorSubcontractor && !identity.OwnsSubcontractor(subcontractorID) {
		return nil, app_errors.NewAuthorizationError("subcontractors can only read their own quota")
	}

	project, err := s.projectService.GetProjectWithCache(projectID)
	if err != nil {
		return nil, err
	}

	assignment := project.FindAssignment(subcontractorID)
	if assignment == nil {
		return nil, app_errors.NewNotFoundError("assignment", projectID+"/"+subcontractorID)
	}

	return s.usageOf(*assignment)
}

// GetProjectUsage returns one usage per assignment of the project, narrowed
// to the caller's own assignment for subcontractors.
func (s *QuotaService) GetProjectUsage(identity approval.Identity, projectID string) ([]*Usage, error) {
	project, err := s.projectService.GetProjectWithCache(projectID)
	if err != nil {
		return nil, err
	}

	usages := make([]*Usage, 0, len(project.Assignments))
	for _, assignment := range project.Assignments {
		if identity.Actor == approval.ActorSubcontractor && !identity.OwnsSubcontractor(assignment.SubcontractorID) {
			continue
		}

		usage, err := s.usageOf(assignment)
		if err != nil {
			return nil, err
		}

		usages = append(usages, usage)
	}

	return usages, nil
}

func (s *QuotaService) usageOf(assignment projects_models.ProjectAssignment) (*Usage, error) {
	entries, err := s.timeLogSource.GetForAssignment(assignment.ProjectID, assignment.SubcontractorID)
	if err != nil {
		return nil, err
	}

	usage := Calculate(assignment, entries, s.now())
	return &usage, nil
}
