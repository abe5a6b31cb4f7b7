package timelogs

import (
	"timebridge/internal/features/approval"
	projects_models "timebridge/internal/features/projects/models"
)

type SubmitTimeLogRequestDTO struct {
	ProjectID       string  `json:"projectId"       binding:"required"`
	SubcontractorID string  `json:"subcontractorId"`
	Date            string  `json:"date"            binding:"required"`
	Hours           float64 `json:"hours"`
	Description     string  `json:"description"`
}

// BatchEntryDTO is one cell of the weekly grid. Rows with zero hours are
// ignored.
type BatchEntryDTO struct {
	ProjectID   string  `json:"projectId"`
	Date        string  `json:"date"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
}

type SubmitBatchRequestDTO struct {
	SubcontractorID string          `json:"subcontractorId"`
	Entries         []BatchEntryDTO `json:"entries" binding:"required"`
}

type SubmitBatchResponseDTO struct {
	Created []*TimeLog `json:"created"`
	Skipped int        `json:"skipped"`
}

type ChangeStatusRequestDTO struct {
	Status   approval.Status `json:"status"   binding:"required"`
	Feedback *string         `json:"feedback"`
}

type ListTimeLogsResponseDTO struct {
	TimeLogs []*TimeLog `json:"timeLogs"`
}

type MyProjectsResponseDTO struct {
	Projects []*projects_models.Project `json:"projects"`
}
