package projects_dto

import (
	projects_models "timebridge/internal/features/projects/models"
)

type AssignmentRequestDTO struct {
	SubcontractorID string                           `json:"subcontractorId" binding:"required"`
	HoursCap        float64                          `json:"hoursCap"`
	Period          projects_models.AssignmentPeriod `json:"period"          binding:"required"`
}

type UpdateAssignmentRequestDTO struct {
	HoursCap float64                          `json:"hoursCap"`
	Period   projects_models.AssignmentPeriod `json:"period"   binding:"required"`
}

type CreateProjectRequestDTO struct {
	Name        string                 `json:"name"        binding:"required"`
	Client      string                 `json:"client"      binding:"required"`
	Budget      float64                `json:"budget"`
	Currency    string                 `json:"currency"`
	ManagerID   string                 `json:"managerId"`
	Assignments []AssignmentRequestDTO `json:"assignments"`
}

type UpdateProjectRequestDTO struct {
	Name      string  `json:"name"      binding:"required"`
	Client    string  `json:"client"    binding:"required"`
	Budget    float64 `json:"budget"`
	Currency  string  `json:"currency"`
	ManagerID string  `json:"managerId"`
}

type ListProjectsResponseDTO struct {
	Projects []*projects_models.Project `json:"projects"`
}
