package timelogs

import (
	"slices"
	"time"

	"timebridge/internal/features/approval"
)

const ImportedDescription = "Imported from Factorial"

type TimeLog struct {
	ID              string          `json:"id"                    gorm:"column:id;primaryKey"`
	SubcontractorID string          `json:"subcontractorId"       gorm:"column:subcontractor_id"`
	ProjectID       string          `json:"projectId"             gorm:"column:project_id"`
	Date            string          `json:"date"                  gorm:"column:date"`
	Hours           float64         `json:"hours"                 gorm:"column:hours"`
	Description     string          `json:"description"           gorm:"column:description"`
	Status          approval.Status `json:"status"                gorm:"column:status"`
	Feedback        *string         `json:"feedback,omitempty"    gorm:"column:feedback"`
	FactorialID     *string         `json:"factorialId,omitempty" gorm:"column:factorial_id"`
	CreatedAt       time.Time       `json:"createdAt"             gorm:"column:created_at"`
}

func (TimeLog) TableName() string {
	return "time_logs"
}

// Filter narrows time log listings. Empty fields match everything; From and
// To are inclusive YYYY-MM-DD bounds.
type Filter struct {
	ProjectID        string          `form:"projectId"`
	SubcontractorID  string          `form:"subcontractorId"`
	Status           approval.Status `form:"status"`
	From             string          `form:"from"`
	To               string          `form:"to"`
	SubcontractorIDs []string        `form:"-"`
}

func (f Filter) Matches(timeLog *TimeLog) bool {
	if f.ProjectID != "" && timeLog.ProjectID != f.ProjectID {
		return false
	}
	if f.SubcontractorID != "" && timeLog.SubcontractorID != f.SubcontractorID {
		return false
	}
	if f.SubcontractorIDs != nil && !slices.Contains(f.SubcontractorIDs, timeLog.SubcontractorID) {
		return false
	}
	if f.Status != "" && timeLog.Status != f.Status {
		return false
	}
	if f.From != "" && timeLog.Date < f.From {
		return false
	}
	if f.To != "" && timeLog.Date > f.To {
		return false
	}

	return true
}
