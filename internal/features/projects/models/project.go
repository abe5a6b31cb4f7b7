package projects_models

import (
	"time"
)

const (
	DefaultCurrency = "EUR"
)

type Project struct {
	ID        string    `json:"id"        gorm:"column:id;primaryKey"`
	Name      string    `json:"name"      gorm:"column:name"`
	Client    string    `json:"client"    gorm:"column:client"`
	Budget    float64   `json:"budget"    gorm:"column:budget"`
	Currency  string    `json:"currency"  gorm:"column:currency"`
	ManagerID string    `json:"managerId" gorm:"column:manager_id"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`

	Assignments []ProjectAssignment `json:"assignments" gorm:"foreignKey:ProjectID;references:ID"`

	// Used for caching non-existent projects
	IsNotExists bool `json:"isNotExists,omitempty" gorm:"-"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) FindAssignment(subcontractorID string) *ProjectAssignment {
	for i := range p.Assignments {
		if p.Assignments[i].SubcontractorID == subcontractorID {
			return &p.Assignments[i]
		}
	}

	return nil
}

func (p *Project) HasAssignment(subcontractorID string) bool {
	return p.FindAssignment(subcontractorID) != nil
}
