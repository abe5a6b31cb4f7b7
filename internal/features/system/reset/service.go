package system_reset

import (
	"fmt"
	"log/slog"

	"timebridge/internal/features/approval"
	projects_models "timebridge/internal/features/projects/models"
	users_interfaces "timebridge/internal/features/users/interfaces"
	"timebridge/internal/realtime"
	"timebridge/internal/util/app_errors"
)

type collectionStore interface {
	DeleteAll() error
}

type projectStore interface {
	collectionStore
	GetAllProjects() ([]*projects_models.Project, error)
}

type projectCacheInvalidator interface {
	InvalidateProjectCache(projectID string)
}

type ResetResponseDTO struct {
	Collections []string `json:"collections"`
}

// ResetService wipes the business collections. Users, roles, settings and
// the audit trail are kept.
type ResetService struct {
	timeLogs       collectionStore
	invoices       collectionStore
	projects       projectStore
	subcontractors collectionStore
	projectCache   projectCacheInvalidator
	auditLogWriter users_interfaces.AuditLogWriter
	logger         *slog.Logger
}

func (s *ResetService) SetAuditLogWriter(writer users_interfaces.AuditLogWriter) {
	s.auditLogWriter = writer
}

// ResetAll deletes dependents before the records they reference. A failure
// stops the reset and leaves the remaining collections untouched.
func (s *ResetService) ResetAll(identity approval.Identity) (*ResetResponseDTO, error) {
	if identity.Actor != approval.ActorAdmin {
		return nil, app_errors.NewAuthorizationError("only admins can reset data")
	}

	projects, err := s.projects.GetAllProjects()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	steps := []struct {
		collection string
		store      collectionStore
	}{
		{realtime.CollectionTimeLogs, s.timeLogs},
		{realtime.CollectionInvoices, s.invoices},
		{realtime.CollectionProjects, s.projects},
		{realtime.CollectionSubcontractors, s.subcontractors},
	}

	response := &ResetResponseDTO{Collections: make([]string, 0, len(steps))}
	for _, step := range steps {
		if err := step.store.DeleteAll(); err != nil {
			return response, fmt.Errorf("failed to reset %s: %w", step.collection, err)
		}

		response.Collections = append(response.Collections, step.collection)
	}

	for _, project := range projects {
		s.projectCache.InvalidateProjectCache(project.ID)
	}

	s.logger.Warn("All business data was reset", "by", identity.Email)
	if s.auditLogWriter != nil {
		userID := identity.UserID
		s.auditLogWriter.WriteAuditLog("All projects, subcontractors, time logs and invoices were deleted", &userID, nil)
	}

	return response, nil
}
