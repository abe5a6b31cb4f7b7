package users_dto

import (
	"time"

	"timebridge/internal/features/approval"
	users_enums "timebridge/internal/features/users/enums"
	users_models "timebridge/internal/features/users/models"

	"github.com/google/uuid"
)

type SignUpRequestDTO struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type SignInRequestDTO struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SignInResponseDTO struct {
	UserID  uuid.UUID              `json:"userId"`
	Email   string                 `json:"email"`
	Token   string                 `json:"token"`
	Profile UserProfileResponseDTO `json:"profile"`
}

type SetAdminPasswordRequestDTO struct {
	Password string `json:"password" binding:"required,min=8"`
}

type IsAdminHasPasswordResponseDTO struct {
	HasPassword bool `json:"hasPassword"`
}

type ChangePasswordRequestDTO struct {
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type InviteUserRequestDTO struct {
	Email           string  `json:"email"           binding:"required,email"`
	DisplayName     string  `json:"displayName"`
	RoleID          string  `json:"roleId"          binding:"required"`
	ManagerEmail    *string `json:"managerEmail"`
	SubcontractorID *string `json:"subcontractorId"`
}

type InviteUserResponseDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	RoleID    string    `json:"roleId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUserRequestDTO creates the credential and the profile in one step.
type CreateUserRequestDTO struct {
	Email           string  `json:"email"           binding:"required"`
	Password        string  `json:"password"        binding:"required,min=8"`
	DisplayName     string  `json:"displayName"`
	RoleID          string  `json:"roleId"          binding:"required"`
	ManagerEmail    *string `json:"managerEmail"`
	SubcontractorID *string `json:"subcontractorId"`
}

type UpdateUserRequestDTO struct {
	DisplayName     *string `json:"displayName"`
	RoleID          *string `json:"roleId"`
	ManagerEmail    *string `json:"managerEmail"`
	SubcontractorID *string `json:"subcontractorId"`
}

type UserProfileResponseDTO struct {
	ID              uuid.UUID              `json:"id"`
	Email           string                 `json:"email"`
	DisplayName     string                 `json:"displayName"`
	RoleID          string                 `json:"roleId"`
	Actor           approval.Actor         `json:"actor"`
	ManagerEmail    *string                `json:"managerEmail,omitempty"`
	SubcontractorID *string                `json:"subcontractorId,omitempty"`
	Status          users_enums.UserStatus `json:"status"`
	IsActive        bool                   `json:"isActive"`
	CreatedAt       time.Time              `json:"createdAt"`
}

type ListUsersResponseDTO struct {
	Users []UserProfileResponseDTO `json:"users"`
	Total int64                    `json:"total"`
}

type ListUsersRequestDTO struct {
	Limit      int        `form:"limit"      json:"limit"`
	Offset     int        `form:"offset"     json:"offset"`
	BeforeDate *time.Time `form:"beforeDate" json:"beforeDate"`
}

func ProfileFromUser(user *users_models.User) UserProfileResponseDTO {
	return UserProfileResponseDTO{
		ID:              user.ID,
		Email:           user.Email,
		DisplayName:     user.DisplayName,
		RoleID:          user.RoleID,
		Actor:           approval.ActorFromRoleID(user.RoleID),
		ManagerEmail:    user.ManagerEmail,
		SubcontractorID: user.SubcontractorID,
		Status:          user.Status,
		IsActive:        user.IsActiveUser(),
		CreatedAt:       user.CreatedAt,
	}
}
