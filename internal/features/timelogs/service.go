package timelogs

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"timebridge/internal/features/approval"
	projects_models "timebridge/internal/features/projects/models"
	"timebridge/internal/features/subcontractors"
	users_interfaces "timebridge/internal/features/users/interfaces"
	"timebridge/internal/util/app_errors"
	"timebridge/internal/util/ids"
	time_parser "timebridge/internal/util/time"
)

const (
	entityName     = "time log"
	maxHoursPerDay = 24
)

type timeLogStore interface {
	approval.StatusStore
	Create(timeLog *TimeLog) error
	CreateBatch(timeLogs []*TimeLog) error
	GetByID(id string) (*TimeLog, error)
	List(filter Filter) ([]*TimeLog, error)
	Delete(id string) error
	CountByProject(projectID string) (int64, error)
	CountBySubcontractor(subcontractorID string) (int64, error)
}

type projectLookup interface {
	GetProjectWithCache(projectID string) (*projects_models.Project, error)
	GetProjectsAssignedTo(subcontractorID string) ([]*projects_models.Project, error)
}

type subcontractorLookup interface {
	SubcontractorExists(id string) (bool, error)
	GetManagedBy(email string) ([]*subcontractors.Subcontractor, error)
}

type TimeLogService struct {
	timeLogRepository    timeLogStore
	projectService       projectLookup
	subcontractorService subcontractorLookup
	workflow             *approval.Workflow
	auditLogWriter       users_interfaces.AuditLogWriter
	logger               *slog.Logger
}

func NewTimeLogService(
	store timeLogStore,
	projectService projectLookup,
	subcontractorService subcontractorLookup,
	logger *slog.Logger,
) *TimeLogService {
	return &TimeLogService{
		timeLogRepository:    store,
		projectService:       projectService,
		subcontractorService: subcontractorService,
		workflow:             approval.NewWorkflow(entityName, store),
		logger:               logger,
	}
}

func (s *TimeLogService) SetAuditLogWriter(writer users_interfaces.AuditLogWriter) {
	s.auditLogWriter = writer
}

// Submit records a new PENDING entry. Subcontractors log for themselves on
// projects they are assigned to; admins and project managers may log on
// behalf of any subcontractor.
func (s *TimeLogService) Submit(identity approval.Identity, request *SubmitTimeLogRequestDTO) (*TimeLog, error) {
	subcontractorID, err := s.resolveSubcontractor(identity, request.SubcontractorID)
	if err != nil {
		return nil, err
	}

	if err := validateEntry(request.ProjectID, request.Date, request.Hours, request.Description); err != nil {
		return nil, err
	}

	if err := s.checkProjectAccess(identity, request.ProjectID, subcontractorID); err != nil {
		return nil, err
	}

	timeLog := &TimeLog{
		ID:              ids.New(),
		SubcontractorID: subcontractorID,
		ProjectID:       request.ProjectID,
		Date:            request.Date,
		Hours:           request.Hours,
		Description:     request.Description,
		Status:          approval.StatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.timeLogRepository.Create(timeLog); err != nil {
		return nil, fmt.Errorf("failed to create time log: %w", err)
	}

	return timeLog, nil
}

// SubmitBatch stores the non-empty rows of a weekly grid. Every row is
// validated before anything is written.
func (s *TimeLogService) SubmitBatch(
	identity approval.Identity,
	request *SubmitBatchRequestDTO,
) (*SubmitBatchResponseDTO, error) {
	subcontractorID, err := s.resolveSubcontractor(identity, request.SubcontractorID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	checkedProjects := make(map[string]bool)
	timeLogs := make([]*TimeLog, 0, len(request.Entries))
	skipped := 0

	for i, entry := range request.Entries {
		if entry.Hours == 0 {
			skipped++
			continue
		}

		if err := validateEntry(entry.ProjectID, entry.Date, entry.Hours, entry.Description); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		if !checkedProjects[entry.ProjectID] {
			if err := s.checkProjectAccess(identity, entry.ProjectID, subcontractorID); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			checkedProjects[entry.ProjectID] = true
		}

		timeLogs = append(timeLogs, &TimeLog{
			ID:              ids.New(),
			SubcontractorID: subcontractorID,
			ProjectID:       entry.ProjectID,
			Date:            entry.Date,
			Hours:           entry.Hours,
			Description:     entry.Description,
			Status:          approval.StatusPending,
			CreatedAt:       now,
		})
	}

	if err := s.timeLogRepository.CreateBatch(timeLogs); err != nil {
		return nil, fmt.Errorf("failed to create time logs: %w", err)
	}

	return &SubmitBatchResponseDTO{Created: timeLogs, Skipped: skipped}, nil
}

func (s *TimeLogService) Get(identity approval.Identity, id string) (*TimeLog, error) {
	timeLog, err := s.timeLogRepository.GetByID(id)
	if err != nil {
		return nil, err
	}

	if identity.Actor == approval.ActorSubcontractor && !identity.OwnsSubcontractor(timeLog.SubcontractorID) {
		return nil, app_errors.NewAuthorizationError("subcontractors can only view their own time logs")
	}

	return timeLog, nil
}

// List applies filter; subcontractors are always narrowed to their own logs.
func (s *TimeLogService) List(identity approval.Identity, filter Filter) ([]*TimeLog, error) {
	if identity.Actor == approval.ActorSubcontractor {
		if identity.SubcontractorID == nil {
			return []*TimeLog{}, nil
		}

		filter.SubcontractorID = *identity.SubcontractorID
	}

	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, app_errors.NewInvalidFieldError("status", fmt.Sprintf("unknown status %q", filter.Status))
	}

	return s.timeLogRepository.List(filter)
}

// PendingApprovals lists what the acting identity is expected to act on:
// PENDING entries of the subcontractors a project manager manages, or
// APPROVED_PM entries awaiting a director's ratification.
func (s *TimeLogService) PendingApprovals(identity approval.Identity) ([]*TimeLog, error) {
	switch identity.Actor {
	case approval.ActorProjectManager:
		managed, err := s.subcontractorService.GetManagedBy(identity.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to get managed subcontractors: %w", err)
		}

		if len(managed) == 0 {
			return []*TimeLog{}, nil
		}

		subcontractorIDs := make([]string, 0, len(managed))
		for _, subcontractor := range managed {
			subcontractorIDs = append(subcontractorIDs, subcontractor.ID)
		}

		timeLogs, err := s.timeLogRepository.List(Filter{
			Status:           approval.StatusPending,
			SubcontractorIDs: subcontractorIDs,
		})
		if err != nil {
			return nil, err
		}

		sortByDateDesc(timeLogs)
		return timeLogs, nil
	case approval.ActorDirector:
		timeLogs, err := s.timeLogRepository.List(Filter{Status: approval.StatusApprovedPM})
		if err != nil {
			return nil, err
		}

		sortByDateDesc(timeLogs)
		return timeLogs, nil
	default:
		return []*TimeLog{}, nil
	}
}

func (s *TimeLogService) Approve(identity approval.Identity, id string) (*approval.TransitionResult, error) {
	return s.Transition(identity, id, approval.StatusApprovedPM, nil)
}

func (s *TimeLogService) Reject(identity approval.Identity, id string, feedback *string) (*approval.TransitionResult, error) {
	return s.Transition(identity, id, approval.StatusRejected, feedback)
}

func (s *TimeLogService) Ratify(identity approval.Identity, id string) (*approval.TransitionResult, error) {
	return s.Transition(identity, id, approval.StatusRatifiedMgr, nil)
}

func (s *TimeLogService) Transition(
	identity approval.Identity,
	id string,
	to approval.Status,
	feedback *string,
) (*approval.TransitionResult, error) {
	result, err := s.workflow.Transition(identity, id, to, feedback)
	if err != nil {
		return nil, err
	}

	s.logger.Info("time log status changed", "id", id, "from", result.From, "to", result.To, "actor", identity.Actor)

	if s.auditLogWriter != nil {
		userID := identity.UserID
		message := fmt.Sprintf("Time log %s moved from %s to %s", id, result.From, result.To)
		if to == approval.StatusRejected && feedback != nil && *feedback != "" {
			message += fmt.Sprintf(": %s", *feedback)
		}

		s.auditLogWriter.WriteAuditLog(message, &userID, nil)
	}

	return result, nil
}

// Delete removes a still PENDING entry. Subcontractors may only delete their
// own; admins and project managers any.
func (s *TimeLogService) Delete(identity approval.Identity, id string) error {
	timeLog, err := s.timeLogRepository.GetByID(id)
	if err != nil {
		return err
	}

	switch identity.Actor {
	case approval.ActorAdmin, approval.ActorProjectManager:
	case approval.ActorSubcontractor:
		if !identity.OwnsSubcontractor(timeLog.SubcontractorID) {
			return app_errors.NewAuthorizationError("subcontractors can only delete their own time logs")
		}
	default:
		return app_errors.NewAuthorizationError("insufficient permissions to delete time logs")
	}

	if timeLog.Status != approval.StatusPending {
		return app_errors.NewConflictError("time log %s is %s and can no longer be deleted", id, timeLog.Status)
	}

	return s.timeLogRepository.Delete(id)
}

// MyProjects lists the projects the acting subcontractor may log hours on.
func (s *TimeLogService) MyProjects(identity approval.Identity) ([]*projects_models.Project, error) {
	if identity.SubcontractorID == nil {
		return []*projects_models.Project{}, nil
	}

	return s.projectService.GetProjectsAssignedTo(*identity.SubcontractorID)
}

func (s *TimeLogService) OnBeforeProjectDeletion(projectID string) error {
	count, err := s.timeLogRepository.CountByProject(projectID)
	if err != nil {
		return err
	}

	if count > 0 {
		return app_errors.NewConflictError("project %s still has %d time logs", projectID, count)
	}

	return nil
}

func (s *TimeLogService) OnBeforeSubcontractorDeletion(subcontractorID string) error {
	count, err := s.timeLogRepository.CountBySubcontractor(subcontractorID)
	if err != nil {
		return err
	}

	if count > 0 {
		return app_errors.NewConflictError("subcontractor %s still has %d time logs", subcontractorID, count)
	}

	return nil
}

func (s *TimeLogService) resolveSubcontractor(identity approval.Identity, requested string) (string, error) {
	switch identity.Actor {
	case approval.ActorSubcontractor:
		if identity.SubcontractorID == nil {
			return "", app_errors.NewAuthorizationError("user is not linked to a subcontractor record")
		}

		if requested != "" && requested != *identity.SubcontractorID {
			return "", app_errors.NewAuthorizationError("subcontractors can only log their own hours")
		}

		return *identity.SubcontractorID, nil
	case approval.ActorAdmin, approval.ActorProjectManager:
		if strings.TrimSpace(requested) == "" {
			return "", app_errors.NewRequiredFieldError("subcontractorId")
		}

		exists, err := s.subcontractorService.SubcontractorExists(requested)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", app_errors.NewNotFoundError("subcontractor", requested)
		}

		return requested, nil
	default:
		return "", app_errors.NewAuthorizationError("insufficient permissions to log hours")
	}
}

func (s *TimeLogService) checkProjectAccess(identity approval.Identity, projectID, subcontractorID string) error {
	project, err := s.projectService.GetProjectWithCache(projectID)
	if err != nil {
		return err
	}

	if identity.Actor == approval.ActorSubcontractor && !project.HasAssignment(subcontractorID) {
		return app_errors.NewAuthorizationError("subcontractor is not assigned to project %s", projectID)
	}

	return nil
}

func validateEntry(projectID, date string, hours float64, description string) error {
	if strings.TrimSpace(projectID) == "" {
		return app_errors.NewRequiredFieldError("projectId")
	}
	if !time_parser.IsDate(date) {
		return app_errors.NewInvalidFieldError("date", "date must be formatted as YYYY-MM-DD")
	}
	if hours <= 0 || hours > maxHoursPerDay {
		return app_errors.NewInvalidFieldError("hours", "hours must be greater than 0 and at most 24")
	}
	if strings.TrimSpace(description) == "" {
		return app_errors.NewRequiredFieldError("description")
	}

	return nil
}

func sortByDateDesc(timeLogs []*TimeLog) {
	sort.SliceStable(timeLogs, func(i, j int) bool {
		return timeLogs[i].Date > timeLogs[j].Date
	})
}
