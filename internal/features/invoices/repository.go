package invoices

import (
	"errors"
	"time"

	"timebridge/internal/features/approval"
	"timebridge/internal/realtime"
	"timebridge/internal/storage"
	"timebridge/internal/util/app_errors"

	"gorm.io/gorm"
)

type InvoiceRepository struct{}

func (r *InvoiceRepository) Create(invoice *Invoice) error {
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}

	if err := storage.GetDb().Create(invoice).Error; err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionInvoices, realtime.OperationUpsert, invoice.ID)
	return nil
}

func (r *InvoiceRepository) GetByID(id string) (*Invoice, error) {
	var invoice Invoice

	if err := storage.GetDb().Where("id = ?", id).First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_errors.NewNotFoundError("invoice", id)
		}

		return nil, err
	}

	return &invoice, nil
}

func (r *InvoiceRepository) List(filter Filter) ([]*Invoice, error) {
	invoices := make([]*Invoice, 0)

	query := storage.GetDb().Model(&Invoice{})

	if filter.ProjectID != "" {
		query = query.Where("project_id = ?", filter.ProjectID)
	}
	if filter.SubcontractorID != "" {
		query = query.Where("subcontractor_id = ?", filter.SubcontractorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Period != "" {
		query = query.Where("period = ?", filter.Period)
	}

	err := query.Order("period DESC, created_at DESC").Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepository) GetAll() ([]*Invoice, error) {
	return r.List(Filter{})
}

func (r *InvoiceRepository) GetStatus(id string) (approval.Status, error) {
	var invoice Invoice

	err := storage.GetDb().Select("status").Where("id = ?", id).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", app_errors.NewNotFoundError("invoice", id)
		}

		return "", err
	}

	return invoice.Status, nil
}

// CompareAndSwapStatus ignores feedback, there is no column for it.
func (r *InvoiceRepository) CompareAndSwapStatus(
	id string,
	expected, next approval.Status,
	_ *string,
) (bool, error) {
	result := storage.GetDb().
		Model(&Invoice{}).
		Where("id = ? AND status = ?", id, expected).
		Update("status", next)
	if result.Error != nil {
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		return false, nil
	}

	realtime.GetNotifier().Notify(realtime.CollectionInvoices, realtime.OperationUpsert, id)
	return true, nil
}

func (r *InvoiceRepository) Delete(id string) error {
	if err := storage.GetDb().Where("id = ?", id).Delete(&Invoice{}).Error; err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionInvoices, realtime.OperationDelete, id)
	return nil
}

func (r *InvoiceRepository) CountByProject(projectID string) (int64, error) {
	var count int64

	err := storage.GetDb().Model(&Invoice{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}

func (r *InvoiceRepository) CountBySubcontractor(subcontractorID string) (int64, error) {
	var count int64

	err := storage.GetDb().Model(&Invoice{}).Where("subcontractor_id = ?", subcontractorID).Count(&count).Error
	return count, err
}

func (r *InvoiceRepository) DeleteAll() error {
	err := storage.GetDb().Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Invoice{}).Error
	if err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionInvoices, realtime.OperationDeleteAll, "")
	return nil
}
