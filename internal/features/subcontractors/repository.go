package subcontractors

import (
	"errors"
	"fmt"
	"time"

	"timebridge/internal/realtime"
	"timebridge/internal/storage"
	"timebridge/internal/util/app_errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubcontractorRepository struct{}

func (r *SubcontractorRepository) Create(subcontractor *Subcontractor) error {
	if subcontractor.CreatedAt.IsZero() {
		subcontractor.CreatedAt = time.Now().UTC()
	}

	if err := storage.GetDb().Create(subcontractor).Error; err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionSubcontractors, realtime.OperationUpsert, subcontractor.ID)
	return nil
}

func (r *SubcontractorRepository) GetByID(id string) (*Subcontractor, error) {
	var subcontractor Subcontractor

	if err := storage.GetDb().Where("id = ?", id).First(&subcontractor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_errors.NewNotFoundError("subcontractor", id)
		}

		return nil, err
	}

	return &subcontractor, nil
}

func (r *SubcontractorRepository) Exists(id string) (bool, error) {
	var count int64

	if err := storage.GetDb().Model(&Subcontractor{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *SubcontractorRepository) GetAll() ([]*Subcontractor, error) {
	subcontractors := make([]*Subcontractor, 0)

	err := storage.GetDb().Order("name ASC").Find(&subcontractors).Error
	return subcontractors, err
}

func (r *SubcontractorRepository) GetByManagerEmail(email string) ([]*Subcontractor, error) {
	subcontractors := make([]*Subcontractor, 0)

	err := storage.GetDb().Where("manager_email = ?", email).Order("name ASC").Find(&subcontractors).Error
	return subcontractors, err
}

func (r *SubcontractorRepository) Update(subcontractor *Subcontractor) error {
	result := storage.GetDb().
		Model(&Subcontractor{}).
		Where("id = ?", subcontractor.ID).
		Updates(map[string]any{
			"name":             subcontractor.Name,
			"role":             subcontractor.Role,
			"hourly_rate":      subcontractor.HourlyRate,
			"currency":         subcontractor.Currency,
			"personnel_number": subcontractor.PersonnelNumber,
			"manager_email":    subcontractor.ManagerEmail,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return app_errors.NewNotFoundError("subcontractor", subcontractor.ID)
	}

	realtime.GetNotifier().Notify(realtime.CollectionSubcontractors, realtime.OperationUpsert, subcontractor.ID)
	return nil
}

func (r *SubcontractorRepository) Delete(id string) error {
	if err := storage.GetDb().Where("id = ?", id).Delete(&Subcontractor{}).Error; err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionSubcontractors, realtime.OperationDelete, id)
	return nil
}

// UpsertFromSync writes an employee imported from the HR system. In merge
// mode the hourly rate and currency set locally are kept.
func (r *SubcontractorRepository) UpsertFromSync(subcontractor *Subcontractor, preserveLocal bool) error {
	if subcontractor.CreatedAt.IsZero() {
		subcontractor.CreatedAt = time.Now().UTC()
	}

	updateColumns := []string{"name", "role", "personnel_number", "factorial_id", "manager_email"}
	if !preserveLocal {
		updateColumns = append(updateColumns, "hourly_rate", "currency")
	}

	err := storage.GetDb().
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(updateColumns),
		}).
		Create(subcontractor).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subcontractor %s: %w", subcontractor.ID, err)
	}

	realtime.GetNotifier().Notify(realtime.CollectionSubcontractors, realtime.OperationUpsert, subcontractor.ID)
	return nil
}

func (r *SubcontractorRepository) DeleteAll() error {
	err := storage.GetDb().Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Subcontractor{}).Error
	if err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionSubcontractors, realtime.OperationDeleteAll, "")
	return nil
}
