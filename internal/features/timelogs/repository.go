package timelogs

import (
	"errors"
	"fmt"
	"time"

	"timebridge/internal/features/approval"
	"timebridge/internal/realtime"
	"timebridge/internal/storage"
	"timebridge/internal/util/app_errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TimeLogRepository struct{}

func (r *TimeLogRepository) Create(timeLog *TimeLog) error {
	if timeLog.CreatedAt.IsZero() {
		timeLog.CreatedAt = time.Now().UTC()
	}

	if err := storage.GetDb().Create(timeLog).Error; err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionTimeLogs, realtime.OperationUpsert, timeLog.ID)
	return nil
}

// CreateBatch writes all entries or none.
func (r *TimeLogRepository) CreateBatch(timeLogs []*TimeLog) error {
	if len(timeLogs) == 0 {
		return nil
	}

	err := storage.GetDb().Transaction(func(tx *gorm.DB) error {
		return tx.Create(&timeLogs).Error
	})
	if err != nil {
		return err
	}

	for _, timeLog := range timeLogs {
		realtime.GetNotifier().Notify(realtime.CollectionTimeLogs, realtime.OperationUpsert, timeLog.ID)
	}

	return nil
}

func (r *TimeLogRepository) GetByID(id string) (*TimeLog, error) {
	var timeLog TimeLog

	if err := storage.GetDb().Where("id = ?", id).First(&timeLog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_errors.NewNotFoundError("time log", id)
		}

		return nil, err
	}

	return &timeLog, nil
}

func (r *TimeLogRepository) List(filter Filter) ([]*TimeLog, error) {
	timeLogs := make([]*TimeLog, 0)

	query := storage.GetDb().Model(&TimeLog{})

	if filter.ProjectID != "" {
		query = query.Where("project_id = ?", filter.ProjectID)
	}
	if filter.SubcontractorID != "" {
		query = query.Where("subcontractor_id = ?", filter.SubcontractorID)
	}
	if filter.SubcontractorIDs != nil {
		query = query.Where("subcontractor_id IN ?", filter.SubcontractorIDs)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != "" {
		query = query.Where("date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("date <= ?", filter.To)
	}

	err := query.Order("date DESC, created_at DESC").Find(&timeLogs).Error
	return timeLogs, err
}

func (r *TimeLogRepository) GetAll() ([]*TimeLog, error) {
	return r.List(Filter{})
}

func (r *TimeLogRepository) GetForAssignment(projectID, subcontractorID string) ([]*TimeLog, error) {
	return r.List(Filter{ProjectID: projectID, SubcontractorID: subcontractorID})
}

func (r *TimeLogRepository) GetStatus(id string) (approval.Status, error) {
	var timeLog TimeLog

	err := storage.GetDb().Select("status").Where("id = ?", id).First(&timeLog).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", app_errors.NewNotFoundError("time log", id)
		}

		return "", err
	}

	return timeLog.Status, nil
}

// CompareAndSwapStatus writes status and feedback only if the row still has
// the expected status.
func (r *TimeLogRepository) CompareAndSwapStatus(
	id string,
	expected, next approval.Status,
	feedback *string,
) (bool, error) {
	result := storage.GetDb().
		Model(&TimeLog{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]any{
			"status":   next,
			"feedback": feedback,
		})
	if result.Error != nil {
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		return false, nil
	}

	realtime.GetNotifier().Notify(realtime.CollectionTimeLogs, realtime.OperationUpsert, id)
	return true, nil
}

func (r *TimeLogRepository) Delete(id string) error {
	if err := storage.GetDb().Where("id = ?", id).Delete(&TimeLog{}).Error; err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionTimeLogs, realtime.OperationDelete, id)
	return nil
}

func (r *TimeLogRepository) CountByProject(projectID string) (int64, error) {
	var count int64

	err := storage.GetDb().Model(&TimeLog{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}

func (r *TimeLogRepository) CountBySubcontractor(subcontractorID string) (int64, error) {
	var count int64

	err := storage.GetDb().Model(&TimeLog{}).Where("subcontractor_id = ?", subcontractorID).Count(&count).Error
	return count, err
}

// UpsertFromSync writes an entry imported from the HR system. Overwrite mode
// resets status and feedback along with everything else; merge mode only
// refreshes date, hours and description.
func (r *TimeLogRepository) UpsertFromSync(timeLog *TimeLog, preserveLocal bool) error {
	if timeLog.CreatedAt.IsZero() {
		timeLog.CreatedAt = time.Now().UTC()
	}

	updateColumns := []string{"date", "hours", "description"}
	if !preserveLocal {
		updateColumns = append(updateColumns,
			"project_id", "subcontractor_id", "status", "feedback", "factorial_id")
	}

	err := storage.GetDb().
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(updateColumns),
		}).
		Create(timeLog).Error
	if err != nil {
		return fmt.Errorf("failed to upsert time log %s: %w", timeLog.ID, err)
	}

	realtime.GetNotifier().Notify(realtime.CollectionTimeLogs, realtime.OperationUpsert, timeLog.ID)
	return nil
}

func (r *TimeLogRepository) DeleteAll() error {
	err := storage.GetDb().Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&TimeLog{}).Error
	if err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionTimeLogs, realtime.OperationDeleteAll, "")
	return nil
}
