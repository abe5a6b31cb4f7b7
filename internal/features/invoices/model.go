package invoices

import (
	"time"

	"timebridge/internal/features/approval"
)

const DefaultCurrency = "EUR"

// Invoice is a subcontractor's bill for one project and month. Rejection
// feedback is kept in the audit trail, invoices carry no feedback column.
type Invoice struct {
	ID              string          `json:"id"                gorm:"column:id;primaryKey"`
	SubcontractorID string          `json:"subcontractorId"   gorm:"column:subcontractor_id"`
	ProjectID       string          `json:"projectId"         gorm:"column:project_id"`
	Period          string          `json:"period"            gorm:"column:period"`
	Amount          float64         `json:"amount"            gorm:"column:amount"`
	Currency        string          `json:"currency"          gorm:"column:currency"`
	Status          approval.Status `json:"status"            gorm:"column:status"`
	FileURL         *string         `json:"fileUrl,omitempty" gorm:"column:file_url"`
	CreatedAt       time.Time       `json:"createdAt"         gorm:"column:created_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

type Filter struct {
	ProjectID       string          `form:"projectId"`
	SubcontractorID string          `form:"subcontractorId"`
	Status          approval.Status `form:"status"`
	Period          string          `form:"period"`
}

func (f Filter) Matches(invoice *Invoice) bool {
	if f.ProjectID != "" && invoice.ProjectID != f.ProjectID {
		return false
	}
	if f.SubcontractorID != "" && invoice.SubcontractorID != f.SubcontractorID {
		return false
	}
	if f.Status != "" && invoice.Status != f.Status {
		return false
	}
	if f.Period != "" && invoice.Period != f.Period {
		return false
	}

	return true
}
