package users_repositories

import (
	"errors"
	"fmt"
	"time"

	users_enums "timebridge/internal/features/users/enums"
	users_models "timebridge/internal/features/users/models"
	"timebridge/internal/realtime"
	"timebridge/internal/storage"
	"timebridge/internal/util/app_errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct{}

func (r *UserRepository) CreateUser(user *users_models.User) error {
	if err := storage.GetDb().Create(user).Error; err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionUsers, realtime.OperationUpsert, user.ID.String())
	return nil
}

func (r *UserRepository) GetUserByEmail(email string) (*users_models.User, error) {
	var user users_models.User

	if err := storage.GetDb().Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) GetUserByID(userID uuid.UUID) (*users_models.User, error) {
	var user users_models.User

	if err := storage.GetDb().Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_errors.NewNotFoundError("user", userID.String())
		}

		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) UpdateUserPassword(userID uuid.UUID, hashedPassword string) error {
	return storage.GetDb().Model(&users_models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"hashed_password":        hashedPassword,
			"password_creation_time": time.Now().UTC(),
		}).Error
}

func (r *UserRepository) CreateInitialAdmin() error {
	admin, err := r.GetUserByEmail(users_models.RootAdminEmail)
	if err != nil {
		return fmt.Errorf("failed to get admin user: %w", err)
	}

	if admin != nil {
		return nil
	}

	admin = &users_models.User{
		ID:                   uuid.New(),
		Email:                users_models.RootAdminEmail,
		DisplayName:          "Administrator",
		HashedPassword:       nil,
		PasswordCreationTime: time.Now().UTC(),
		RoleID:               users_models.AdminRoleID,
		Status:               users_enums.UserStatusActive,
		CreatedAt:            time.Now().UTC(),
	}

	return storage.GetDb().Create(admin).Error
}

func (r *UserRepository) GetUsers(limit, offset int, beforeCreatedAt *time.Time) ([]*users_models.User, int64, error) {
	var users []*users_models.User
	var total int64

	countQuery := storage.GetDb().Model(&users_models.User{})
	if beforeCreatedAt != nil {
		countQuery = countQuery.Where("created_at < ?", *beforeCreatedAt)
	}

	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := storage.GetDb().
		Limit(limit).
		Offset(offset).
		Order("created_at DESC")

	if beforeCreatedAt != nil {
		query = query.Where("created_at < ?", *beforeCreatedAt)
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *UserRepository) UpdateUserStatus(userID uuid.UUID, status users_enums.UserStatus) error {
	err := storage.GetDb().Model(&users_models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"status": status,
		}).Error
	if err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionUsers, realtime.OperationUpsert, userID.String())
	return nil
}

// UpdateUserProfile writes the profile columns; password and status are left
// to their dedicated methods.
func (r *UserRepository) UpdateUserProfile(user *users_models.User) error {
	err := storage.GetDb().Model(&users_models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"display_name":     user.DisplayName,
			"role_id":          user.RoleID,
			"manager_email":    user.ManagerEmail,
			"subcontractor_id": user.SubcontractorID,
		}).Error
	if err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionUsers, realtime.OperationUpsert, user.ID.String())
	return nil
}

func (r *UserRepository) DeleteUser(userID uuid.UUID) error {
	if err := storage.GetDb().Where("id = ?", userID).Delete(&users_models.User{}).Error; err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionUsers, realtime.OperationDelete, userID.String())
	return nil
}

func (r *UserRepository) CountUsersWithRole(roleID string) (int64, error) {
	var count int64

	err := storage.GetDb().Model(&users_models.User{}).Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}

func (r *UserRepository) RenameUserEmailForTests(oldEmail, newEmail string) error {
	return storage.GetDb().Model(&users_models.User{}).
		Where("email = ?", oldEmail).
		Update("email", newEmail).Error
}
