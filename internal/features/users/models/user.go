package users_models

import (
	"time"

	"timebridge/internal/features/approval"
	users_enums "timebridge/internal/features/users/enums"

	"github.com/google/uuid"
)

const (
	RootAdminEmail = "admin"
	AdminRoleID    = "admin"
)

type User struct {
	ID                   uuid.UUID              `json:"id"`
	Email                string                 `json:"email"`
	DisplayName          string                 `json:"displayName"               gorm:"column:display_name"`
	HashedPassword       *string                `json:"-"                         gorm:"column:hashed_password"`
	PasswordCreationTime time.Time              `json:"-"                         gorm:"column:password_creation_time"`
	RoleID               string                 `json:"roleId"                    gorm:"column:role_id"`
	ManagerEmail         *string                `json:"managerEmail,omitempty"    gorm:"column:manager_email"`
	SubcontractorID      *string                `json:"subcontractorId,omitempty" gorm:"column:subcontractor_id"`
	Status               users_enums.UserStatus `json:"status"`
	CreatedAt            time.Time              `json:"createdAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.RoleID == AdminRoleID
}

func (u *User) IsRootAdmin() bool {
	return u.Email == RootAdminEmail
}

func (u *User) CanManageUsers() bool {
	return u.IsAdmin()
}

func (u *User) IsActiveUser() bool {
	return u.Status == users_enums.UserStatusActive
}

func (u *User) HasPassword() bool {
	return u.HashedPassword != nil && *u.HashedPassword != ""
}

// Identity is the acting identity handed to workflow, quota and sync
// operations.
func (u *User) Identity() approval.Identity {
	return approval.Identity{
		UserID:          u.ID,
		Email:           u.Email,
		Actor:           approval.ActorFromRoleID(u.RoleID),
		SubcontractorID: u.SubcontractorID,
	}
}
