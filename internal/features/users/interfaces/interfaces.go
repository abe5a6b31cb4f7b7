package users_interfaces

import (
	"github.com/google/uuid"
)

type AuditLogWriter interface {
	WriteAuditLog(message string, userID *uuid.UUID, projectID *string)
}

// RoleExistenceChecker lets user management validate role ids without
// depending on the roles feature.
type RoleExistenceChecker interface {
	RoleExists(roleID string) (bool, error)
}
