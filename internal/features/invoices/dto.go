package invoices

import "timebridge/internal/features/approval"

// CreateInvoiceRequestDTO leaves ProjectID and SubcontractorID unbound so the
// service reports missing fields as validation errors.
type CreateInvoiceRequestDTO struct {
	ProjectID       string  `json:"projectId"`
	SubcontractorID string  `json:"subcontractorId"`
	Period          string  `json:"period"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	FileURL         *string `json:"fileUrl"`
}

type ChangeStatusRequestDTO struct {
	Status   approval.Status `json:"status"   binding:"required"`
	Feedback *string         `json:"feedback"`
}

type ListInvoicesResponseDTO struct {
	Invoices []*Invoice `json:"invoices"`
}
