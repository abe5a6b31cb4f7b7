package users_services

import (
	"fmt"
	"strings"
	"time"

	users_dto "timebridge/internal/features/users/dto"
	users_enums "timebridge/internal/features/users/enums"
	users_interfaces "timebridge/internal/features/users/interfaces"
	users_models "timebridge/internal/features/users/models"
	users_repositories "timebridge/internal/features/users/repositories"
	"timebridge/internal/util/app_errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserManagementService struct {
	userRepository *users_repositories.UserRepository
	auditLogWriter users_interfaces.AuditLogWriter
	roleChecker    users_interfaces.RoleExistenceChecker
}

func (s *UserManagementService) SetAuditLogWriter(writer users_interfaces.AuditLogWriter) {
	s.auditLogWriter = writer
}

func (s *UserManagementService) SetRoleExistenceChecker(checker users_interfaces.RoleExistenceChecker) {
	s.roleChecker = checker
}

func (s *UserManagementService) GetUsers(
	currentUser *users_models.User,
	limit, offset int,
	beforeCreatedAt *time.Time,
) ([]*users_models.User, int64, error) {
	if !currentUser.CanManageUsers() {
		return nil, 0, app_errors.NewAuthorizationError("insufficient permissions to list users")
	}

	return s.userRepository.GetUsers(limit, offset, beforeCreatedAt)
}

func (s *UserManagementService) GetUserProfile(
	userID uuid.UUID,
	requestedBy *users_models.User,
) (*users_models.User, error) {
	// Users can view their own profile, admins can view any profile
	if userID != requestedBy.ID && !requestedBy.CanManageUsers() {
		return nil, app_errors.NewAuthorizationError("insufficient permissions to view user profile")
	}

	return s.userRepository.GetUserByID(userID)
}

// CreateUser creates the login credential and then the profile record for it.
func (s *UserManagementService) CreateUser(
	request *users_dto.CreateUserRequestDTO,
	createdBy *users_models.User,
) (*users_models.User, error) {
	if !createdBy.CanManageUsers() {
		return nil, app_errors.NewAuthorizationError("insufficient permissions to create users")
	}

	if err := validateRoleID(s.roleChecker, request.RoleID); err != nil {
		return nil, err
	}

	if request.RoleID == users_models.AdminRoleID && !createdBy.IsRootAdmin() {
		return nil, app_errors.NewAuthorizationError("only the root admin user can create admin accounts")
	}

	existingUser, err := s.userRepository.GetUserByEmail(request.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, app_errors.NewConflictError("user with this email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashedPasswordStr := string(hashedPassword)

	user := &users_models.User{
		ID:                   uuid.New(),
		Email:                request.Email,
		DisplayName:          displayNameOrEmail(request.DisplayName, request.Email),
		HashedPassword:       &hashedPasswordStr,
		PasswordCreationTime: time.Now().UTC(),
		RoleID:               request.RoleID,
		ManagerEmail:         request.ManagerEmail,
		SubcontractorID:      request.SubcontractorID,
		Status:               users_enums.UserStatusActive,
		CreatedAt:            time.Now().UTC(),
	}

	if err := s.userRepository.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.writeAuditLog(fmt.Sprintf("User created: %s as %s", user.Email, user.RoleID), createdBy)

	return user, nil
}

// UpdateUser changes role, manager, linked subcontractor or display name.
func (s *UserManagementService) UpdateUser(
	userID uuid.UUID,
	request *users_dto.UpdateUserRequestDTO,
	changedBy *users_models.User,
) (*users_models.User, error) {
	if !changedBy.CanManageUsers() {
		return nil, app_errors.NewAuthorizationError("insufficient permissions to update users")
	}

	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if request.RoleID != nil && *request.RoleID != user.RoleID {
		if err := validateRoleID(s.roleChecker, *request.RoleID); err != nil {
			return nil, err
		}

		if userID == changedBy.ID {
			return nil, app_errors.NewAuthorizationError("cannot change your own role")
		}

		if (*request.RoleID == users_models.AdminRoleID || user.IsAdmin()) && !changedBy.IsRootAdmin() {
			return nil, app_errors.NewAuthorizationError(
				"only the root admin user can promote users to admin or demote admin users",
			)
		}

		s.writeAuditLog(
			fmt.Sprintf("User role changed: %s from %s to %s", user.Email, user.RoleID, *request.RoleID),
			changedBy,
		)
		user.RoleID = *request.RoleID
	}

	if request.DisplayName != nil {
		user.DisplayName = *request.DisplayName
	}
	if request.ManagerEmail != nil {
		user.ManagerEmail = emptyToNil(*request.ManagerEmail)
	}
	if request.SubcontractorID != nil {
		user.SubcontractorID = emptyToNil(*request.SubcontractorID)
	}

	if err := s.userRepository.UpdateUserProfile(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.writeAuditLog(fmt.Sprintf("User updated: %s", user.Email), changedBy)

	return user, nil
}

func (s *UserManagementService) DeactivateUser(userID uuid.UUID, deactivatedBy *users_models.User) error {
	if !deactivatedBy.CanManageUsers() {
		return app_errors.NewAuthorizationError("insufficient permissions to deactivate users")
	}

	if userID == deactivatedBy.ID {
		return app_errors.NewInvalidFieldError("id", "cannot deactivate your own account")
	}

	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsAdmin() && !deactivatedBy.IsRootAdmin() {
		return app_errors.NewAuthorizationError("only the root admin user can deactivate admin accounts")
	}

	if err := s.userRepository.UpdateUserStatus(userID, users_enums.UserStatusInactive); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	s.writeAuditLog(fmt.Sprintf("User deactivated: %s", user.Email), deactivatedBy)

	return nil
}

func (s *UserManagementService) ActivateUser(userID uuid.UUID, activatedBy *users_models.User) error {
	if !activatedBy.CanManageUsers() {
		return app_errors.NewAuthorizationError("insufficient permissions to activate users")
	}

	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsAdmin() && !activatedBy.IsRootAdmin() {
		return app_errors.NewAuthorizationError("only the root admin user can activate admin accounts")
	}

	if err := s.userRepository.UpdateUserStatus(userID, users_enums.UserStatusActive); err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}

	s.writeAuditLog(fmt.Sprintf("User activated: %s", user.Email), activatedBy)

	return nil
}

func (s *UserManagementService) DeleteUser(userID uuid.UUID, deletedBy *users_models.User) error {
	if !deletedBy.CanManageUsers() {
		return app_errors.NewAuthorizationError("insufficient permissions to delete users")
	}

	if userID == deletedBy.ID {
		return app_errors.NewInvalidFieldError("id", "cannot delete your own account")
	}

	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return err
	}

	if user.IsRootAdmin() {
		return app_errors.NewAuthorizationError("the root admin user cannot be deleted")
	}

	if user.IsAdmin() && !deletedBy.IsRootAdmin() {
		return app_errors.NewAuthorizationError("only the root admin user can delete admin accounts")
	}

	if err := s.userRepository.DeleteUser(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.writeAuditLog(fmt.Sprintf("User deleted: %s", user.Email), deletedBy)

	return nil
}

func (s *UserManagementService) IsRoleInUse(roleID string) (bool, error) {
	count, err := s.userRepository.CountUsersWithRole(roleID)
	return count > 0, err
}

func (s *UserManagementService) writeAuditLog(message string, actor *users_models.User) {
	if s.auditLogWriter != nil {
		s.auditLogWriter.WriteAuditLog(message, &actor.ID, nil)
	}
}

func validateRoleID(checker users_interfaces.RoleExistenceChecker, roleID string) error {
	if strings.TrimSpace(roleID) == "" {
		return app_errors.NewRequiredFieldError("roleId")
	}

	if checker == nil {
		return nil
	}

	exists, err := checker.RoleExists(roleID)
	if err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}

	if !exists {
		return app_errors.NewInvalidFieldError("roleId", fmt.Sprintf("role %s does not exist", roleID))
	}

	return nil
}

func emptyToNil(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	return &value
}
