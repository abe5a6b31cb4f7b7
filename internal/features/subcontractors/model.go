package subcontractors

import "time"

// Subcontractor is an external resource billed by the hour. Records imported
// from the HR system carry a deterministic fac_emp_ id and their FactorialID.
type Subcontractor struct {
	ID              string    `json:"id"                        gorm:"column:id;primaryKey"`
	Name            string    `json:"name"                      gorm:"column:name"`
	Role            string    `json:"role"                      gorm:"column:role"`
	HourlyRate      float64   `json:"hourlyRate"                gorm:"column:hourly_rate"`
	Currency        string    `json:"currency"                  gorm:"column:currency"`
	PersonnelNumber *string   `json:"personnelNumber,omitempty" gorm:"column:personnel_number"`
	FactorialID     *string   `json:"factorialId,omitempty"     gorm:"column:factorial_id"`
	ManagerEmail    *string   `json:"managerEmail,omitempty"    gorm:"column:manager_email"`
	CreatedAt       time.Time `json:"createdAt"                 gorm:"column:created_at"`
}

func (Subcontractor) TableName() string {
	return "subcontractors"
}

func (s *Subcontractor) IsManagedBy(email string) bool {
	return s.ManagerEmail != nil && *s.ManagerEmail == email
}
