package audit_logs

import (
	"log/slog"
	"time"

	users_models "timebridge/internal/features/users/models"
	"timebridge/internal/util/app_errors"

	"github.com/google/uuid"
)

type AuditLogService struct {
	auditLogRepository auditLogStore
	logger             *slog.Logger
}

type auditLogStore interface {
	Create(auditLog *AuditLog) error
	GetGlobal(limit, offset int, beforeDate *time.Time) ([]*AuditLogDTO, error)
	GetByUser(userID uuid.UUID, limit, offset int, beforeDate *time.Time) ([]*AuditLogDTO, error)
	GetByProject(projectID string, limit, offset int, beforeDate *time.Time) ([]*AuditLogDTO, error)
	CountGlobal(beforeDate *time.Time) (int64, error)
}

// WriteAuditLog never fails the calling operation, errors are only logged.
func (s *AuditLogService) WriteAuditLog(
	message string,
	userID *uuid.UUID,
	projectID *string,
) {
	auditLog := &AuditLog{
		UserID:    userID,
		ProjectID: projectID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.auditLogRepository.Create(auditLog); err != nil {
		s.logger.Error("failed to create audit log", "error", err)
	}
}

func (s *AuditLogService) CreateAuditLog(auditLog *AuditLog) error {
	return s.auditLogRepository.Create(auditLog)
}

func (s *AuditLogService) GetGlobalAuditLogs(
	user *users_models.User,
	request *GetAuditLogsRequest,
) (*GetAuditLogsResponse, error) {
	if !user.IsAdmin() {
		return nil, app_errors.NewAuthorizationError("only administrators can view global audit logs")
	}

	limit, offset := normalizePage(request)

	auditLogs, err := s.auditLogRepository.GetGlobal(limit, offset, request.BeforeDate)
	if err != nil {
		return nil, err
	}

	total, err := s.auditLogRepository.CountGlobal(request.BeforeDate)
	if err != nil {
		return nil, err
	}

	return &GetAuditLogsResponse{
		AuditLogs: auditLogs,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}, nil
}

func (s *AuditLogService) GetUserAuditLogs(
	targetUserID uuid.UUID,
	user *users_models.User,
	request *GetAuditLogsRequest,
) (*GetAuditLogsResponse, error) {
	// Users can view their own logs, admins can view any user's logs
	if !user.IsAdmin() && user.ID != targetUserID {
		return nil, app_errors.NewAuthorizationError("insufficient permissions to view user audit logs")
	}

	limit, offset := normalizePage(request)

	auditLogs, err := s.auditLogRepository.GetByUser(targetUserID, limit, offset, request.BeforeDate)
	if err != nil {
		return nil, err
	}

	return &GetAuditLogsResponse{
		AuditLogs: auditLogs,
		Total:     int64(len(auditLogs)),
		Limit:     limit,
		Offset:    offset,
	}, nil
}

func (s *AuditLogService) GetProjectAuditLogs(
	projectID string,
	request *GetAuditLogsRequest,
) (*GetAuditLogsResponse, error) {
	limit, offset := normalizePage(request)

	auditLogs, err := s.auditLogRepository.GetByProject(projectID, limit, offset, request.BeforeDate)
	if err != nil {
		return nil, err
	}

	return &GetAuditLogsResponse{
		AuditLogs: auditLogs,
		Total:     int64(len(auditLogs)),
		Limit:     limit,
		Offset:    offset,
	}, nil
}

func normalizePage(request *GetAuditLogsRequest) (int, int) {
	limit := request.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	return limit, max(request.Offset, 0)
}
