package projects_services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"timebridge/internal/features/approval"
	projects_dto "timebridge/internal/features/projects/dto"
	projects_interfaces "timebridge/internal/features/projects/interfaces"
	projects_models "timebridge/internal/features/projects/models"
	users_interfaces "timebridge/internal/features/users/interfaces"
	"timebridge/internal/util/app_errors"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type projectStore interface {
	CreateProject(project *projects_models.Project) error
	GetProjectByID(projectID string) (*projects_models.Project, error)
	UpdateProject(project *projects_models.Project) error
	DeleteProject(projectID string) error
	GetAllProjects() ([]*projects_models.Project, error)
	GetProjectsAssignedTo(subcontractorID string) ([]*projects_models.Project, error)
}

type assignmentStore interface {
	CreateAssignment(assignment *projects_models.ProjectAssignment) error
	GetAssignment(projectID, subcontractorID string) (*projects_models.ProjectAssignment, error)
	UpdateAssignment(assignment *projects_models.ProjectAssignment) error
	DeleteAssignment(projectID, subcontractorID string) error
}

type projectCache interface {
	Get(key string) *projects_models.Project
	Set(key string, item *projects_models.Project)
	Invalidate(key string)
}

type ProjectService struct {
	projectRepository        projectStore
	assignmentRepository     assignmentStore
	auditLogWriter           users_interfaces.AuditLogWriter
	subcontractorChecker     projects_interfaces.SubcontractorExistenceChecker
	projectDeletionListeners []projects_interfaces.ProjectDeletionListener

	projectCacheUtil projectCache
	singleflight     singleflight.Group // Prevents thundering herd on DB calls
}

func (s *ProjectService) AddProjectDeletionListener(listener projects_interfaces.ProjectDeletionListener) {
	s.projectDeletionListeners = append(s.projectDeletionListeners, listener)
}

func (s *ProjectService) SetAuditLogWriter(writer users_interfaces.AuditLogWriter) {
	s.auditLogWriter = writer
}

func (s *ProjectService) SetSubcontractorExistenceChecker(checker projects_interfaces.SubcontractorExistenceChecker) {
	s.subcontractorChecker = checker
}

func (s *ProjectService) CreateProject(
	request *projects_dto.CreateProjectRequestDTO,
	identity approval.Identity,
) (*projects_models.Project, error) {
	if !canManageProjects(identity) {
		return nil, app_errors.NewAuthorizationError("insufficient permissions to create projects")
	}

	if strings.TrimSpace(request.Name) == "" {
		return nil, app_errors.NewRequiredFieldError("name")
	}

	project := &projects_models.Project{
		ID:        uuid.New().String(),
		Name:      request.Name,
		Client:    request.Client,
		Budget:    request.Budget,
		Currency:  currencyOrDefault(request.Currency),
		ManagerID: request.ManagerID,
		CreatedAt: time.Now().UTC(),
	}

	seen := make(map[string]bool, len(request.Assignments))
	for _, assignmentRequest := range request.Assignments {
		if err := s.validateAssignment(assignmentRequest.SubcontractorID, assignmentRequest.HoursCap, assignmentRequest.Period); err != nil {
			return nil, err
		}

		if seen[assignmentRequest.SubcontractorID] {
			return nil, app_errors.NewConflictError(
				"subcontractor %s is assigned more than once", assignmentRequest.SubcontractorID,
			)
		}
		seen[assignmentRequest.SubcontractorID] = true

		project.Assignments = append(project.Assignments, projects_models.ProjectAssignment{
			ProjectID:       project.ID,
			SubcontractorID: assignmentRequest.SubcontractorID,
			HoursCap:        assignmentRequest.HoursCap,
			Period:          assignmentRequest.Period,
			CreatedAt:       project.CreatedAt,
		})
	}

	if err := s.projectRepository.CreateProject(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	// Pre-warm cache with new project for immediate availability
	s.projectCacheUtil.Set(project.ID, project)

	s.writeAuditLog(fmt.Sprintf("Project created: %s", project.Name), identity, project.ID)

	return project, nil
}

// GetProject returns the project; subcontractors only see projects they are
// assigned to.
func (s *ProjectService) GetProject(projectID string, identity approval.Identity) (*projects_models.Project, error) {
	project, err := s.projectRepository.GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}

	if !canViewProject(identity, project) {
		return nil, app_errors.NewAuthorizationError("insufficient permissions to view project")
	}

	return project, nil
}

func (s *ProjectService) GetProjects(identity approval.Identity) (*projects_dto.ListProjectsResponseDTO, error) {
	var projects []*projects_models.Project
	var err error

	if identity.Actor == approval.ActorSubcontractor {
		if identity.SubcontractorID == nil {
			return &projects_dto.ListProjectsResponseDTO{Projects: []*projects_models.Project{}}, nil
		}

		projects, err = s.projectRepository.GetProjectsAssignedTo(*identity.SubcontractorID)
	} else {
		projects, err = s.projectRepository.GetAllProjects()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}

	return &projects_dto.ListProjectsResponseDTO{Projects: projects}, nil
}

// UpdateProject changes the project record only; assignments are managed
// through their own operations.
func (s *ProjectService) UpdateProject(
	projectID string,
	request *projects_dto.UpdateProjectRequestDTO,
	identity approval.Identity,
) (*projects_models.Project, error) {
	if !canManageProjects(identity) {
		return nil, app_errors.NewAuthorizationError("insufficient permissions to update project")
	}

	project, err := s.projectRepository.GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}

	project.Name = request.Name
	project.Client = request.Client
	project.Budget = request.Budget
	project.Currency = currencyOrDefault(request.Currency)
	project.ManagerID = request.ManagerID

	if err := s.projectRepository.UpdateProject(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.projectCacheUtil.Invalidate(projectID)

	s.writeAuditLog(fmt.Sprintf("Project updated: %s", project.Name), identity, projectID)

	return project, nil
}

func (s *ProjectService) DeleteProject(projectID string, identity approval.Identity) error {
	if !canManageProjects(identity) {
		return app_errors.NewAuthorizationError("insufficient permissions to delete project")
	}

	project, err := s.projectRepository.GetProjectByID(projectID)
	if err != nil {
		return err
	}

	for _, listener := range s.projectDeletionListeners {
		if err := listener.OnBeforeProjectDeletion(projectID); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
	}

	if err := s.projectRepository.DeleteProject(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.projectCacheUtil.Invalidate(projectID)

	s.writeAuditLog(fmt.Sprintf("Project deleted: %s", project.Name), identity, projectID)

	return nil
}

func (s *ProjectService) AddAssignment(
	projectID string,
	request *projects_dto.AssignmentRequestDTO,
	identity approval.Identity,
) (*projects_models.ProjectAssignment, error) {
	if !canManageProjects(identity) {
		return nil, app_errors.NewAuthorizationError("insufficient permissions to manage assignments")
	}

	if _, err := s.projectRepository.GetProjectByID(projectID); err != nil {
		return nil, err
	}

	if err := s.validateAssignment(request.SubcontractorID, request.HoursCap, request.Period); err != nil {
		return nil, err
	}

	assignment := &projects_models.ProjectAssignment{
		ProjectID:       projectID,
		SubcontractorID: request.SubcontractorID,
		HoursCap:        request.HoursCap,
		Period:          request.Period,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.assignmentRepository.CreateAssignment(assignment); err != nil {
		return nil, err
	}

	s.projectCacheUtil.Invalidate(projectID)

	s.writeAuditLog(
		fmt.Sprintf("Subcontractor %s assigned with %.2fh %s cap", request.SubcontractorID, request.HoursCap, request.Period),
		identity,
		projectID,
	)

	return assignment, nil
}

func (s *ProjectService) UpdateAssignment(
	projectID, subcontractorID string,
	request *projects_dto.UpdateAssignmentRequestDTO,
	identity approval.Identity,
) (*projects_models.ProjectAssignment, error) {
	if !canManageProjects(identity) {
		return nil, app_errors.NewAuthorizationError("insufficient permissions to manage assignments")
	}

	if request.HoursCap < 0 {
		return nil, app_errors.NewInvalidFieldError("hoursCap", "hoursCap must not be negative")
	}
	if !request.Period.IsValid() {
		return nil, app_errors.NewInvalidFieldError("period", "period must be 'monthly' or 'total'")
	}

	assignment, err := s.assignmentRepository.GetAssignment(projectID, subcontractorID)
	if err != nil {
		return nil, err
	}

	assignment.HoursCap = request.HoursCap
	assignment.Period = request.Period

	if err := s.assignmentRepository.UpdateAssignment(assignment); err != nil {
		return nil, err
	}

	s.projectCacheUtil.Invalidate(projectID)

	s.writeAuditLog(
		fmt.Sprintf("Assignment of %s changed to %.2fh %s cap", subcontractorID, request.HoursCap, request.Period),
		identity,
		projectID,
	)

	return assignment, nil
}

func (s *ProjectService) RemoveAssignment(projectID, subcontractorID string, identity approval.Identity) error {
	if !canManageProjects(identity) {
		return app_errors.NewAuthorizationError("insufficient permissions to manage assignments")
	}

	if err := s.assignmentRepository.DeleteAssignment(projectID, subcontractorID); err != nil {
		return err
	}

	s.projectCacheUtil.Invalidate(projectID)

	s.writeAuditLog(fmt.Sprintf("Subcontractor %s unassigned", subcontractorID), identity, projectID)

	return nil
}

func (s *ProjectService) GetProjectWithCache(projectID string) (*projects_models.Project, error) {
	// Tier 1: Check cache
	if cachedProject := s.projectCacheUtil.Get(projectID); cachedProject != nil {
		if cachedProject.IsNotExists {
			return nil, app_errors.NewNotFoundError("project", projectID)
		}

		return cachedProject, nil
	}

	// Tier 2: Database lookup with singleflight protection (prevents thundering herd)
	result, err, _ := s.singleflight.Do(projectID, func() (any, error) {
		return s.projectRepository.GetProjectByID(projectID)
	})

	if err != nil {
		if !app_errors.IsNotFound(err) {
			return nil, err
		}

		// Cache the missing project to prevent future DB hits
		s.projectCacheUtil.Set(projectID, &projects_models.Project{ID: projectID, IsNotExists: true})
		return nil, err
	}

	project, ok := result.(*projects_models.Project)
	if !ok {
		return nil, errors.New("failed to cast result to Project")
	}

	s.projectCacheUtil.Set(projectID, project)

	return project, nil
}

// InvalidateProjectCache drops the cached copy after writes that bypass this
// service, such as the HR sync.
func (s *ProjectService) InvalidateProjectCache(projectID string) {
	s.projectCacheUtil.Invalidate(projectID)
}

func (s *ProjectService) GetAllProjects() ([]*projects_models.Project, error) {
	return s.projectRepository.GetAllProjects()
}

func (s *ProjectService) GetProjectsAssignedTo(subcontractorID string) ([]*projects_models.Project, error) {
	return s.projectRepository.GetProjectsAssignedTo(subcontractorID)
}

func (s *ProjectService) validateAssignment(
	subcontractorID string,
	hoursCap float64,
	period projects_models.AssignmentPeriod,
) error {
	if strings.TrimSpace(subcontractorID) == "" {
		return app_errors.NewRequiredFieldError("subcontractorId")
	}
	if hoursCap < 0 {
		return app_errors.NewInvalidFieldError("hoursCap", "hoursCap must not be negative")
	}
	if !period.IsValid() {
		return app_errors.NewInvalidFieldError("period", "period must be 'monthly' or 'total'")
	}

	if s.subcontractorChecker == nil {
		return nil
	}

	exists, err := s.subcontractorChecker.SubcontractorExists(subcontractorID)
	if err != nil {
		return fmt.Errorf("failed to check subcontractor: %w", err)
	}
	if !exists {
		return app_errors.NewNotFoundError("subcontractor", subcontractorID)
	}

	return nil
}

func (s *ProjectService) writeAuditLog(message string, identity approval.Identity, projectID string) {
	if s.auditLogWriter == nil {
		return
	}

	userID := identity.UserID
	s.auditLogWriter.WriteAuditLog(message, &userID, &projectID)
}

func canManageProjects(identity approval.Identity) bool {
	return identity.Actor == approval.ActorAdmin || identity.Actor == approval.ActorProjectManager
}

func canViewProject(identity approval.Identity, project *projects_models.Project) bool {
	if identity.Actor != approval.ActorSubcontractor {
		return true
	}

	return identity.SubcontractorID != nil && project.HasAssignment(*identity.SubcontractorID)
}

func currencyOrDefault(currency string) string {
	if strings.TrimSpace(currency) == "" {
		return projects_models.DefaultCurrency
	}

	return strings.ToUpper(currency)
}
