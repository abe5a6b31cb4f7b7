package factorial

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"timebridge/internal/features/approval"
	projects_models "timebridge/internal/features/projects/models"
	"timebridge/internal/features/subcontractors"
	"timebridge/internal/features/timelogs"
	users_interfaces "timebridge/internal/features/users/interfaces"
	"timebridge/internal/util/app_errors"
	"timebridge/internal/util/metrics"
	time_parser "timebridge/internal/util/time"

	"github.com/google/uuid"
)

const (
	phaseEmployees   = "employees"
	phaseProjects    = "projects"
	phaseTimeEntries = "time_entries"
)

type remoteSource interface {
	FetchEmployees(ctx context.Context, apiKey string) ([]Employee, error)
	FetchProjects(ctx context.Context, apiKey string) ([]Project, error)
	FetchShifts(ctx context.Context, apiKey string) ([]Shift, error)
}

type apiKeyResolver interface {
	ResolveAPIKey() (string, error)
}

type subcontractorSink interface {
	UpsertFromSync(subcontractor *subcontractors.Subcontractor, preserveLocal bool) error
	Exists(id string) (bool, error)
}

type projectSink interface {
	UpsertFromSync(project *projects_models.Project, preserveLocal bool) error
	ProjectExists(projectID string) (bool, error)
}

type projectCacheInvalidator interface {
	InvalidateProjectCache(projectID string)
}

type timeLogSink interface {
	UpsertFromSync(timeLog *timelogs.TimeLog, preserveLocal bool) error
}

type syncLock interface {
	TryAcquire() (release func(), ok bool, err error)
}

type PhaseReport struct {
	Fetched  int `json:"fetched"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
	// Deferred counts entries held back because a record they reference
	// does not exist locally yet.
	Deferred int `json:"deferred"`
}

type SyncReport struct {
	Success     bool        `json:"success"`
	Error       string      `json:"error,omitempty"`
	FailedPhase string      `json:"failedPhase,omitempty"`
	StartedAt   time.Time   `json:"startedAt"`
	FinishedAt  time.Time   `json:"finishedAt"`
	Employees   PhaseReport `json:"employees"`
	Projects    PhaseReport `json:"projects"`
	TimeEntries PhaseReport `json:"timeEntries"`
}

// SyncEngine imports employees, projects and shifts, in that order, at
// deterministic ids so repeated runs converge instead of duplicating.
type SyncEngine struct {
	client         remoteSource
	keys           apiKeyResolver
	subcontractors subcontractorSink
	projects       projectSink
	projectCache   projectCacheInvalidator
	timeLogs       timeLogSink
	lock           syncLock
	preserveLocal  bool
	auditLogWriter users_interfaces.AuditLogWriter
	onFinished     func(report *SyncReport)
	logger         *slog.Logger
}

func (e *SyncEngine) SetAuditLogWriter(writer users_interfaces.AuditLogWriter) {
	e.auditLogWriter = writer
}

// Run performs one sync. A failing phase stops the run while the earlier
// phases stay applied; the returned report says what happened in either case.
// The error is only non-nil when the run could not start or a phase failed.
func (e *SyncEngine) Run(ctx context.Context, triggeredBy *uuid.UUID) (*SyncReport, error) {
	release, acquired, err := e.lock.TryAcquire()
	if err != nil {
		return nil, fmt.Errorf("failed to take sync lock: %w", err)
	}
	if !acquired {
		return nil, app_errors.NewConflictError("a Factorial sync is already running")
	}
	defer release()

	report := &SyncReport{StartedAt: time.Now().UTC()}
	runErr := e.runPhases(ctx, report)

	report.FinishedAt = time.Now().UTC()
	report.Success = runErr == nil
	if runErr != nil {
		report.Error = runErr.Error()
		metrics.SyncRuns.WithLabelValues("failure").Inc()
		e.logger.Error("Factorial sync failed", "phase", report.FailedPhase, "error", runErr)
	} else {
		metrics.SyncRuns.WithLabelValues("success").Inc()
		e.logger.Info("Factorial sync finished",
			"employees", report.Employees.Upserted,
			"projects", report.Projects.Upserted,
			"timeEntries", report.TimeEntries.Upserted,
			"deferred", report.TimeEntries.Deferred,
			"duration", report.FinishedAt.Sub(report.StartedAt))
	}

	e.recordPhase(phaseEmployees, report.Employees)
	e.recordPhase(phaseProjects, report.Projects)
	e.recordPhase(phaseTimeEntries, report.TimeEntries)

	if e.auditLogWriter != nil {
		e.auditLogWriter.WriteAuditLog(describeReport(report), triggeredBy, nil)
	}
	if e.onFinished != nil {
		e.onFinished(report)
	}

	return report, runErr
}

func (e *SyncEngine) runPhases(ctx context.Context, report *SyncReport) error {
	apiKey, err := e.keys.ResolveAPIKey()
	if err != nil {
		report.FailedPhase = phaseEmployees
		return err
	}

	syncedEmployees, err := e.syncEmployees(ctx, apiKey, &report.Employees)
	if err != nil {
		report.FailedPhase = phaseEmployees
		return err
	}

	syncedProjects, err := e.syncProjects(ctx, apiKey, &report.Projects)
	if err != nil {
		report.FailedPhase = phaseProjects
		return err
	}

	if err := e.syncTimeEntries(ctx, apiKey, syncedEmployees, syncedProjects, &report.TimeEntries); err != nil {
		report.FailedPhase = phaseTimeEntries
		return err
	}

	return nil
}

func (e *SyncEngine) syncEmployees(ctx context.Context, apiKey string, phase *PhaseReport) (map[string]bool, error) {
	employees, err := e.client.FetchEmployees(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	phase.Fetched = len(employees)
	synced := make(map[string]bool, len(employees))

	for _, employee := range employees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if employee.ID == "" || strings.TrimSpace(employee.Email) == "" {
			phase.Skipped++
			continue
		}

		subcontractor := toSubcontractor(employee)
		if err := e.subcontractors.UpsertFromSync(subcontractor, e.preserveLocal); err != nil {
			return nil, err
		}

		synced[subcontractor.ID] = true
		phase.Upserted++
	}

	return synced, nil
}

func (e *SyncEngine) syncProjects(ctx context.Context, apiKey string, phase *PhaseReport) (map[string]bool, error) {
	projects, err := e.client.FetchProjects(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	phase.Fetched = len(projects)
	synced := make(map[string]bool, len(projects)+1)

	// the placeholder always keeps local edits
	placeholder := &projects_models.Project{
		ID:       DefaultProjectID,
		Name:     DefaultProjectName,
		Client:   defaultClientName,
		Currency: projects_models.DefaultCurrency,
	}
	if err := e.projects.UpsertFromSync(placeholder, true); err != nil {
		return nil, err
	}
	e.projectCache.InvalidateProjectCache(DefaultProjectID)
	synced[DefaultProjectID] = true

	for _, remote := range projects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if remote.ID == "" {
			phase.Skipped++
			continue
		}

		project := toProject(remote)
		if err := e.projects.UpsertFromSync(project, e.preserveLocal); err != nil {
			return nil, err
		}

		e.projectCache.InvalidateProjectCache(project.ID)
		synced[project.ID] = true
		phase.Upserted++
	}

	return synced, nil
}

func (e *SyncEngine) syncTimeEntries(
	ctx context.Context,
	apiKey string,
	syncedEmployees, syncedProjects map[string]bool,
	phase *PhaseReport,
) error {
	shifts, err := e.client.FetchShifts(ctx, apiKey)
	if err != nil {
		return err
	}

	phase.Fetched = len(shifts)

	for _, shift := range shifts {
		if err := ctx.Err(); err != nil {
			return err
		}

		hours, ok := ShiftHours(shift)
		if !ok || shift.ID == "" {
			phase.Skipped++
			continue
		}

		date := shiftDate(shift)
		if date == "" {
			phase.Skipped++
			continue
		}

		subcontractorID := EmployeeDocumentID(shift.EmployeeID)
		exists, err := e.subcontractorKnown(subcontractorID, syncedEmployees)
		if err != nil {
			return err
		}
		if !exists {
			e.logger.Warn("Deferring time entry of unknown employee", "entry", shift.ID, "employee", shift.EmployeeID)
			phase.Deferred++
			continue
		}

		projectID, err := e.resolveProject(shift.ProjectID, syncedProjects)
		if err != nil {
			return err
		}

		description := strings.TrimSpace(shift.Observations)
		if description == "" {
			description = timelogs.ImportedDescription
		}

		factorialID := string(shift.ID)
		timeLog := &timelogs.TimeLog{
			ID:              TimeLogDocumentID(shift.ID),
			SubcontractorID: subcontractorID,
			ProjectID:       projectID,
			Date:            date,
			Hours:           hours,
			Description:     description,
			Status:          approval.StatusPending,
			FactorialID:     &factorialID,
		}

		if err := e.timeLogs.UpsertFromSync(timeLog, e.preserveLocal); err != nil {
			return err
		}

		phase.Upserted++
	}

	return nil
}

func (e *SyncEngine) subcontractorKnown(id string, synced map[string]bool) (bool, error) {
	if synced[id] {
		return true, nil
	}

	return e.subcontractors.Exists(id)
}

// resolveProject attaches an entry to its imported project when that
// project exists locally, otherwise to the placeholder.
func (e *SyncEngine) resolveProject(remoteID RemoteID, synced map[string]bool) (string, error) {
	if remoteID == "" {
		return DefaultProjectID, nil
	}

	projectID := ProjectDocumentID(remoteID)
	if synced[projectID] {
		return projectID, nil
	}

	exists, err := e.projects.ProjectExists(projectID)
	if err != nil {
		return "", err
	}
	if exists {
		return projectID, nil
	}

	return DefaultProjectID, nil
}

func (e *SyncEngine) recordPhase(phase string, report PhaseReport) {
	metrics.SyncRecords.WithLabelValues(phase, "upserted").Add(float64(report.Upserted))
	metrics.SyncRecords.WithLabelValues(phase, "skipped").Add(float64(report.Skipped))
	metrics.SyncRecords.WithLabelValues(phase, "deferred").Add(float64(report.Deferred))
}

// ShiftHours derives worked hours from start/end or from minutes, rounded to
// two decimals. ok is false when neither yields a positive duration.
func ShiftHours(shift Shift) (float64, bool) {
	hours := 0.0

	start, hasStart := time_parser.ParseTimestamp(shift.Start)
	end, hasEnd := time_parser.ParseTimestamp(shift.End)

	switch {
	case hasStart && hasEnd:
		hours = end.Sub(start).Hours()
	case shift.Minutes != nil:
		hours = *shift.Minutes / 60
	}

	hours = math.Round(hours*100) / 100
	if hours <= 0 {
		return 0, false
	}

	return hours, true
}

func shiftDate(shift Shift) string {
	if time_parser.IsDate(shift.Date) {
		return shift.Date
	}

	if len(shift.Start) >= len(time_parser.DateLayout) {
		candidate := shift.Start[:len(time_parser.DateLayout)]
		if time_parser.IsDate(candidate) {
			return candidate
		}
	}

	return ""
}

func toSubcontractor(employee Employee) *subcontractors.Subcontractor {
	role := strings.TrimSpace(employee.Role)
	if role == "" {
		role = defaultEmployeeRole
	}

	factorialID := string(employee.ID)
	subcontractor := &subcontractors.Subcontractor{
		ID:          EmployeeDocumentID(employee.ID),
		Name:        employee.DisplayName(),
		Role:        role,
		HourlyRate:  0,
		Currency:    subcontractors.DefaultCurrency,
		FactorialID: &factorialID,
	}

	personnelNumber := employee.Identifier
	if personnelNumber == "" {
		personnelNumber = employee.EmployeeNumber
	}
	if personnelNumber != "" {
		subcontractor.PersonnelNumber = &personnelNumber
	}

	if employee.ManagerEmail != "" {
		managerEmail := employee.ManagerEmail
		subcontractor.ManagerEmail = &managerEmail
	}

	return subcontractor
}

func toProject(remote Project) *projects_models.Project {
	client := strings.TrimSpace(remote.ClientName)
	if client == "" {
		client = defaultClientName
	}

	return &projects_models.Project{
		ID:       ProjectDocumentID(remote.ID),
		Name:     remote.Name,
		Client:   client,
		Budget:   0,
		Currency: projects_models.DefaultCurrency,
	}
}

func describeReport(report *SyncReport) string {
	if !report.Success {
		return fmt.Sprintf("Factorial sync failed during %s: %s", report.FailedPhase, report.Error)
	}

	return fmt.Sprintf(
		"Factorial sync finished: %d employees, %d projects, %d time entries (%d deferred)",
		report.Employees.Upserted,
		report.Projects.Upserted,
		report.TimeEntries.Upserted,
		report.TimeEntries.Deferred,
	)
}
