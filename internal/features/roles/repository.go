package roles

import (
	"errors"
	"time"

	"timebridge/internal/realtime"
	"timebridge/internal/storage"
	"timebridge/internal/util/app_errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository struct{}

func (r *RoleRepository) Create(role *Role) error {
	if role.CreatedAt.IsZero() {
		role.CreatedAt = time.Now().UTC()
	}

	if err := storage.GetDb().Create(role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return app_errors.NewConflictError("role %s already exists", role.ID)
		}

		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionRoles, realtime.OperationUpsert, role.ID)
	return nil
}

// CreateIfMissing inserts role unless a role with the same id exists, so
// edits to seeded roles survive restarts.
func (r *RoleRepository) CreateIfMissing(role *Role) (bool, error) {
	if role.CreatedAt.IsZero() {
		role.CreatedAt = time.Now().UTC()
	}

	result := storage.GetDb().Clauses(clause.OnConflict{DoNothing: true}).Create(role)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *RoleRepository) GetByID(id string) (*Role, error) {
	var role Role

	if err := storage.GetDb().Where("id = ?", id).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_errors.NewNotFoundError("role", id)
		}

		return nil, err
	}

	return &role, nil
}

func (r *RoleRepository) GetAll() ([]*Role, error) {
	roles := make([]*Role, 0)

	err := storage.GetDb().Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) Update(role *Role) error {
	result := storage.GetDb().
		Model(role).
		Select("name", "allowed_paths", "description").
		Updates(role)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return app_errors.NewNotFoundError("role", role.ID)
	}

	realtime.GetNotifier().Notify(realtime.CollectionRoles, realtime.OperationUpsert, role.ID)
	return nil
}

func (r *RoleRepository) Delete(id string) error {
	if err := storage.GetDb().Where("id = ?", id).Delete(&Role{}).Error; err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionRoles, realtime.OperationDelete, id)
	return nil
}
