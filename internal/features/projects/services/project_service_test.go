package projects_services

import (
	"sort"
	"sync"
	"testing"

	"timebridge/internal/features/approval"
	projects_dto "timebridge/internal/features/projects/dto"
	projects_interfaces "timebridge/internal/features/projects/interfaces"
	projects_models "timebridge/internal/features/projects/models"
	"timebridge/internal/util/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CreateProject_AsProjectManager_ProjectCreatedWithAssignments(t *testing.T) {
	service, store := newTestProjectService()

	project, err := service.CreateProject(&projects_dto.CreateProjectRequestDTO{
		Name:   "Bridge",
		Client: "ACME",
		Budget: 10000,
		Assignments: []projects_dto.AssignmentRequestDTO{
			{SubcontractorID: "S1", HoursCap: 160, Period: projects_models.AssignmentPeriodMonthly},
		},
	}, identityOf(approval.ActorProjectManager, nil))
	require.NoError(t, err)

	assert.Equal(t, projects_models.DefaultCurrency, project.Currency)
	assert.True(t, project.HasAssignment("S1"))

	stored, err := store.GetProjectByID(project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bridge", stored.Name)
}

func Test_CreateProject_AsDirector_ReturnsAuthorizationError(t *testing.T) {
	service, _ := newTestProjectService()

	_, err := service.CreateProject(
		&projects_dto.CreateProjectRequestDTO{Name: "Bridge", Client: "ACME"},
		identityOf(approval.ActorDirector, nil),
	)

	assert.Equal(t, 403, app_errors.HTTPStatus(err))
}

func Test_CreateProject_WithDuplicateSubcontractor_ReturnsConflict(t *testing.T) {
	service, _ := newTestProjectService()

	_, err := service.CreateProject(&projects_dto.CreateProjectRequestDTO{
		Name:   "Bridge",
		Client: "ACME",
		Assignments: []projects_dto.AssignmentRequestDTO{
			{SubcontractorID: "S1", HoursCap: 10, Period: projects_models.AssignmentPeriodTotal},
			{SubcontractorID: "S1", HoursCap: 20, Period: projects_models.AssignmentPeriodTotal},
		},
	}, identityOf(approval.ActorAdmin, nil))

	assert.Equal(t, 409, app_errors.HTTPStatus(err))
}

func Test_AddAssignment_WhenAlreadyAssigned_ReturnsConflict(t *testing.T) {
	service, store := newTestProjectService()
	store.put(&projects_models.Project{ID: "P1", Name: "Bridge"})
	pm := identityOf(approval.ActorProjectManager, nil)

	request := &projects_dto.AssignmentRequestDTO{
		SubcontractorID: "S1",
		HoursCap:        160,
		Period:          projects_models.AssignmentPeriodMonthly,
	}

	_, err := service.AddAssignment("P1", request, pm)
	require.NoError(t, err)

	_, err = service.AddAssignment("P1", request, pm)
	assert.Equal(t, 409, app_errors.HTTPStatus(err))
}

func Test_AddAssignment_WithUnknownSubcontractor_ReturnsNotFound(t *testing.T) {
	service, store := newTestProjectService()
	store.put(&projects_models.Project{ID: "P1", Name: "Bridge"})
	service.SetSubcontractorExistenceChecker(knownSubcontractors{"S1": true})

	_, err := service.AddAssignment("P1", &projects_dto.AssignmentRequestDTO{
		SubcontractorID: "S9",
		HoursCap:        10,
		Period:          projects_models.AssignmentPeriodTotal,
	}, identityOf(approval.ActorAdmin, nil))

	assert.True(t, app_errors.IsNotFound(err))
}

func Test_AddAssignment_WithInvalidPeriod_ReturnsValidationError(t *testing.T) {
	service, store := newTestProjectService()
	store.put(&projects_models.Project{ID: "P1", Name: "Bridge"})

	_, err := service.AddAssignment("P1", &projects_dto.AssignmentRequestDTO{
		SubcontractorID: "S1",
		HoursCap:        10,
		Period:          "weekly",
	}, identityOf(approval.ActorAdmin, nil))

	var validationErr *app_errors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "period", validationErr.Field)
}

func Test_GetProjects_AsSubcontractor_ReturnsOnlyAssignedProjects(t *testing.T) {
	service, store := newTestProjectService()
	store.put(&projects_models.Project{
		ID:          "P1",
		Name:        "Assigned",
		Assignments: []projects_models.ProjectAssignment{{ProjectID: "P1", SubcontractorID: "S1"}},
	})
	store.put(&projects_models.Project{ID: "P2", Name: "Other"})

	subcontractorID := "S1"
	response, err := service.GetProjects(identityOf(approval.ActorSubcontractor, &subcontractorID))
	require.NoError(t, err)
	require.Len(t, response.Projects, 1)
	assert.Equal(t, "P1", response.Projects[0].ID)

	_, err = service.GetProject("P2", identityOf(approval.ActorSubcontractor, &subcontractorID))
	assert.Equal(t, 403, app_errors.HTTPStatus(err))
}

func Test_DeleteProject_WhenListenerRefuses_ProjectKept(t *testing.T) {
	service, store := newTestProjectService()
	store.put(&projects_models.Project{ID: "P1", Name: "Bridge"})
	service.AddProjectDeletionListener(refusingListener{})

	err := service.DeleteProject("P1", identityOf(approval.ActorAdmin, nil))
	assert.Equal(t, 409, app_errors.HTTPStatus(err))

	_, err = store.GetProjectByID("P1")
	assert.NoError(t, err)
}

func Test_UpdateProject_KeepsAssignments(t *testing.T) {
	service, store := newTestProjectService()
	store.put(&projects_models.Project{
		ID:          "P1",
		Name:        "Bridge",
		Assignments: []projects_models.ProjectAssignment{{ProjectID: "P1", SubcontractorID: "S1", HoursCap: 10}},
	})

	updated, err := service.UpdateProject("P1", &projects_dto.UpdateProjectRequestDTO{
		Name:     "Bridge v2",
		Client:   "ACME",
		Currency: "usd",
	}, identityOf(approval.ActorProjectManager, nil))
	require.NoError(t, err)

	assert.Equal(t, "USD", updated.Currency)
	assert.True(t, updated.HasAssignment("S1"))
}

func Test_GetProjectWithCache_WhenProjectMissing_CachesAbsence(t *testing.T) {
	service, store := newTestProjectService()

	_, err := service.GetProjectWithCache("missing")
	assert.True(t, app_errors.IsNotFound(err))

	store.put(&projects_models.Project{ID: "missing", Name: "Created later"})

	_, err = service.GetProjectWithCache("missing")
	assert.True(t, app_errors.IsNotFound(err), "negative entry is served from cache until invalidated")
}

type memoryProjectStore struct {
	mu       sync.Mutex
	projects map[string]*projects_models.Project
}

func (m *memoryProjectStore) put(project *projects_models.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[project.ID] = project
}

func (m *memoryProjectStore) CreateProject(project *projects_models.Project) error {
	m.put(project)
	return nil
}

func (m *memoryProjectStore) GetProjectByID(projectID string) (*projects_models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	project, ok := m.projects[projectID]
	if !ok {
		return nil, app_errors.NewNotFoundError("project", projectID)
	}

	return project, nil
}

func (m *memoryProjectStore) UpdateProject(project *projects_models.Project) error {
	m.put(project)
	return nil
}

func (m *memoryProjectStore) DeleteProject(projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, projectID)
	return nil
}

func (m *memoryProjectStore) GetAllProjects() ([]*projects_models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*projects_models.Project, 0, len(m.projects))
	for _, p := range m.projects {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result, nil
}

func (m *memoryProjectStore) GetProjectsAssignedTo(subcontractorID string) ([]*projects_models.Project, error) {
	all, _ := m.GetAllProjects()

	result := make([]*projects_models.Project, 0)
	for _, p := range all {
		if p.HasAssignment(subcontractorID) {
			result = append(result, p)
		}
	}

	return result, nil
}

func (m *memoryProjectStore) CreateAssignment(assignment *projects_models.ProjectAssignment) error {
	project, err := m.GetProjectByID(assignment.ProjectID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if project.HasAssignment(assignment.SubcontractorID) {
		return app_errors.NewConflictError("subcontractor %s is already assigned", assignment.SubcontractorID)
	}
	project.Assignments = append(project.Assignments, *assignment)

	return nil
}

func (m *memoryProjectStore) GetAssignment(projectID, subcontractorID string) (*projects_models.ProjectAssignment, error) {
	project, err := m.GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}

	assignment := project.FindAssignment(subcontractorID)
	if assignment == nil {
		return nil, app_errors.NewNotFoundError("assignment", projectID+"/"+subcontractorID)
	}

	copied := *assignment
	return &copied, nil
}

func (m *memoryProjectStore) UpdateAssignment(assignment *projects_models.ProjectAssignment) error {
	project, err := m.GetProjectByID(assignment.ProjectID)
	if err != nil {
		return err
	}

	existing := project.FindAssignment(assignment.SubcontractorID)
	if existing == nil {
		return app_errors.NewNotFoundError("assignment", assignment.ProjectID+"/"+assignment.SubcontractorID)
	}
	*existing = *assignment

	return nil
}

func (m *memoryProjectStore) DeleteAssignment(projectID, subcontractorID string) error {
	project, err := m.GetProjectByID(projectID)
	if err != nil {
		return err
	}

	for i := range project.Assignments {
		if project.Assignments[i].SubcontractorID == subcontractorID {
			project.Assignments = append(project.Assignments[:i], project.Assignments[i+1:]...)
			return nil
		}
	}

	return app_errors.NewNotFoundError("assignment", projectID+"/"+subcontractorID)
}

type memoryProjectCache struct {
	mu    sync.Mutex
	items map[string]projects_models.Project
}

func (c *memoryProjectCache) Get(key string) *projects_models.Project {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return nil
	}

	return &item
}

func (c *memoryProjectCache) Set(key string, item *projects_models.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = *item
}

func (c *memoryProjectCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

type refusingListener struct{}

func (refusingListener) OnBeforeProjectDeletion(projectID string) error {
	return app_errors.NewConflictError("project %s still has time logs", projectID)
}

type knownSubcontractors map[string]bool

func (k knownSubcontractors) SubcontractorExists(subcontractorID string) (bool, error) {
	return k[subcontractorID], nil
}

func newTestProjectService() (*ProjectService, *memoryProjectStore) {
	store := &memoryProjectStore{projects: map[string]*projects_models.Project{}}

	service := &ProjectService{
		projectRepository:        store,
		assignmentRepository:     store,
		projectDeletionListeners: []projects_interfaces.ProjectDeletionListener{},
		projectCacheUtil:         &memoryProjectCache{items: map[string]projects_models.Project{}},
	}

	return service, store
}

func identityOf(actor approval.Actor, subcontractorID *string) approval.Identity {
	return approval.Identity{
		UserID:          uuid.New(),
		Email:           string(actor) + "@example.com",
		Actor:           actor,
		SubcontractorID: subcontractorID,
	}
}
