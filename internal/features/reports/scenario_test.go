package reports

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"timebridge/internal/features/approval"
	"timebridge/internal/features/invoices"
	projects_models "timebridge/internal/features/projects/models"
	"timebridge/internal/features/quota"
	"timebridge/internal/features/subcontractors"
	"timebridge/internal/features/timelogs"
	"timebridge/internal/util/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProjects struct {
	projects map[string]*projects_models.Project
}

func (s *staticProjects) GetProjectWithCache(projectID string) (*projects_models.Project, error) {
	project, ok := s.projects[projectID]
	if !ok {
		return nil, app_errors.NewNotFoundError("project", projectID)
	}

	return project, nil
}

func (s *staticProjects) GetProjectsAssignedTo(subcontractorID string) ([]*projects_models.Project, error) {
	result := make([]*projects_models.Project, 0)
	for _, project := range s.projects {
		if project.HasAssignment(subcontractorID) {
			result = append(result, project)
		}
	}

	return result, nil
}

type staticSubcontractors struct {
	subcontractors []*subcontractors.Subcontractor
}

func (s *staticSubcontractors) SubcontractorExists(id string) (bool, error) {
	for _, subcontractor := range s.subcontractors {
		if subcontractor.ID == id {
			return true, nil
		}
	}

	return false, nil
}

func (s *staticSubcontractors) GetManagedBy(email string) ([]*subcontractors.Subcontractor, error) {
	result := make([]*subcontractors.Subcontractor, 0)
	for _, subcontractor := range s.subcontractors {
		if subcontractor.IsManagedBy(email) {
			result = append(result, subcontractor)
		}
	}

	return result, nil
}

type staticSnapshot Snapshot

func (s staticSnapshot) Snapshot() Snapshot {
	return Snapshot(s)
}

func Test_OverAllocatedEntry_ThroughApprovalToDeviation(t *testing.T) {
	subcontractorID := "S1"
	assignment := projects_models.ProjectAssignment{
		ProjectID:       "P1",
		SubcontractorID: subcontractorID,
		HoursCap:        10,
		Period:          projects_models.AssignmentPeriodTotal,
	}
	project := &projects_models.Project{
		ID:          "P1",
		Name:        "Bridge",
		Budget:      1000,
		Currency:    projects_models.DefaultCurrency,
		Assignments: []projects_models.ProjectAssignment{assignment},
	}
	subcontractor := &subcontractors.Subcontractor{ID: subcontractorID, Name: "Ana", HourlyRate: 55}

	store := timelogs.NewMemoryTimeLogStore()
	timeLogService := timelogs.NewTimeLogService(
		store,
		&staticProjects{projects: map[string]*projects_models.Project{"P1": project}},
		&staticSubcontractors{subcontractors: []*subcontractors.Subcontractor{subcontractor}},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	subcontractorIdentity := approval.Identity{
		UserID:          uuid.New(),
		Email:           "ana@example.com",
		Actor:           approval.ActorSubcontractor,
		SubcontractorID: &subcontractorID,
	}
	managerIdentity := approval.Identity{UserID: uuid.New(), Email: "pm@example.com", Actor: approval.ActorProjectManager}
	directorIdentity := approval.Identity{UserID: uuid.New(), Email: "dir@example.com", Actor: approval.ActorDirector}

	entry, err := timeLogService.Submit(subcontractorIdentity, &timelogs.SubmitTimeLogRequestDTO{
		ProjectID:   "P1",
		Date:        "2024-05-10",
		Hours:       12,
		Description: "Deck inspection",
	})
	require.NoError(t, err)

	entries, err := store.GetForAssignment("P1", subcontractorID)
	require.NoError(t, err)

	usage := quota.Calculate(assignment, entries, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, -2.0, usage.Remaining)
	assert.Equal(t, 100.0, usage.Percentage)
	assert.True(t, usage.IsOverAllocated)

	_, err = timeLogService.Approve(managerIdentity, entry.ID)
	require.NoError(t, err)
	approved, err := store.GetByID(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApprovedPM, approved.Status)

	_, err = timeLogService.Ratify(directorIdentity, entry.ID)
	require.NoError(t, err)
	ratified, err := store.GetByID(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusRatifiedMgr, ratified.Status)

	allEntries, err := store.GetAll()
	require.NoError(t, err)

	service := NewReportService(staticSnapshot{
		Projects:       []*projects_models.Project{project},
		Subcontractors: []*subcontractors.Subcontractor{subcontractor},
		TimeLogs:       allEntries,
		Invoices: []*invoices.Invoice{{
			ID:              "I1",
			ProjectID:       "P1",
			SubcontractorID: subcontractorID,
			Period:          "2024-05",
			Amount:          700,
			Status:          approval.StatusPending,
		}},
	})

	response, err := service.GetInvoiceDeviations(managerIdentity, Filter{})
	require.NoError(t, err)
	require.Len(t, response.Deviations, 1)
	assert.Equal(t, 660.0, response.Deviations[0].Theoretical)
	assert.Equal(t, 40.0, response.Deviations[0].Deviation)
	assert.True(t, response.Deviations[0].HasRisk)
	assert.Equal(t, 1, response.AtRisk)
}

func Test_GetSummary_AsSubcontractor_SeesOnlyOwnRecords(t *testing.T) {
	own := "S1"
	service := NewReportService(staticSnapshot{
		TimeLogs: []*timelogs.TimeLog{
			timeLog("1", "P1", "S1", "2024-05-02", 4, approval.StatusApprovedPM),
			timeLog("2", "P1", "S2", "2024-05-02", 6, approval.StatusApprovedPM),
		},
	})

	summary, err := service.GetSummary(approval.Identity{Actor: approval.ActorSubcontractor, SubcontractorID: &own}, Filter{})

	require.NoError(t, err)
	assert.Equal(t, 4.0, summary.KPIs.TotalHours)
	assert.Equal(t, 1, summary.KPIs.EntryCount)
}

func Test_GetSummary_WithInvertedRange_ReturnsValidationError(t *testing.T) {
	service := NewReportService(staticSnapshot{})

	_, err := service.GetSummary(approval.Identity{Actor: approval.ActorDirector}, Filter{From: "2024-06-01", To: "2024-05-01"})

	var validationErr *app_errors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
