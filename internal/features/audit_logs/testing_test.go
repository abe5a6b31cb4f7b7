package audit_logs

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryAuditLogStore struct {
	mu   sync.Mutex
	logs []*AuditLog
}

func (m *memoryAuditLogStore) Create(auditLog *AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.New()
	}
	m.logs = append(m.logs, auditLog)

	return nil
}

func (m *memoryAuditLogStore) GetGlobal(limit, offset int, beforeDate *time.Time) ([]*AuditLogDTO, error) {
	return m.filter(func(*AuditLog) bool { return true }, limit, offset, beforeDate), nil
}

func (m *memoryAuditLogStore) GetByUser(
	userID uuid.UUID,
	limit, offset int,
	beforeDate *time.Time,
) ([]*AuditLogDTO, error) {
	return m.filter(func(l *AuditLog) bool { return l.UserID != nil && *l.UserID == userID }, limit, offset, beforeDate), nil
}

func (m *memoryAuditLogStore) GetByProject(
	projectID string,
	limit, offset int,
	beforeDate *time.Time,
) ([]*AuditLogDTO, error) {
	return m.filter(
		func(l *AuditLog) bool { return l.ProjectID != nil && *l.ProjectID == projectID },
		limit, offset, beforeDate,
	), nil
}

func (m *memoryAuditLogStore) CountGlobal(beforeDate *time.Time) (int64, error) {
	return int64(len(m.filter(func(*AuditLog) bool { return true }, 1<<30, 0, beforeDate))), nil
}

func (m *memoryAuditLogStore) filter(
	match func(*AuditLog) bool,
	limit, offset int,
	beforeDate *time.Time,
) []*AuditLogDTO {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*AuditLogDTO, 0)
	for _, l := range m.logs {
		if !match(l) || (beforeDate != nil && !l.CreatedAt.Before(*beforeDate)) {
			continue
		}

		result = append(result, &AuditLogDTO{
			ID:        l.ID,
			UserID:    l.UserID,
			ProjectID: l.ProjectID,
			Message:   l.Message,
			CreatedAt: l.CreatedAt,
		})
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })

	if offset >= len(result) {
		return []*AuditLogDTO{}
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}

	return result
}
