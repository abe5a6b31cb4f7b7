package projects_models

import "time"

type AssignmentPeriod string

const (
	AssignmentPeriodMonthly AssignmentPeriod = "monthly"
	AssignmentPeriodTotal   AssignmentPeriod = "total"
)

func (p AssignmentPeriod) IsValid() bool {
	return p == AssignmentPeriodMonthly || p == AssignmentPeriodTotal
}

// ProjectAssignment caps the hours a subcontractor may log on a project,
// either per calendar month or over the project lifetime. At most one per
// (project, subcontractor).
type ProjectAssignment struct {
	ProjectID       string           `json:"projectId"       gorm:"column:project_id;primaryKey"`
	SubcontractorID string           `json:"subcontractorId" gorm:"column:subcontractor_id;primaryKey"`
	HoursCap        float64          `json:"hoursCap"        gorm:"column:hours_cap"`
	Period          AssignmentPeriod `json:"period"          gorm:"column:period"`
	CreatedAt       time.Time        `json:"createdAt"       gorm:"column:created_at"`
}

func (ProjectAssignment) TableName() string {
	return "project_assignments"
}
