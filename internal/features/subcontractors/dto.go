package subcontractors

type CreateSubcontractorRequestDTO struct {
	Name            string  `json:"name"            binding:"required"`
	Role            string  `json:"role"`
	HourlyRate      float64 `json:"hourlyRate"`
	Currency        string  `json:"currency"`
	PersonnelNumber *string `json:"personnelNumber"`
	ManagerEmail    *string `json:"managerEmail"`
}

type UpdateSubcontractorRequestDTO struct {
	Name            string  `json:"name"            binding:"required"`
	Role            string  `json:"role"`
	HourlyRate      float64 `json:"hourlyRate"`
	Currency        string  `json:"currency"`
	PersonnelNumber *string `json:"personnelNumber"`
	ManagerEmail    *string `json:"managerEmail"`
}

type ListSubcontractorsResponseDTO struct {
	Subcontractors []*Subcontractor `json:"subcontractors"`
}
