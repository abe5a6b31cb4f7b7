package reports

import (
	"timebridge/internal/features/approval"
	"timebridge/internal/features/invoices"
	projects_models "timebridge/internal/features/projects/models"
	"timebridge/internal/features/subcontractors"
	"timebridge/internal/features/timelogs"
)

const (
	UnknownProjectName = "Unknown"

	// budgetAlertRatio marks projects whose ratified spend passed this share
	// of the budget.
	budgetAlertRatio = 0.8
)

// Snapshot is a point-in-time copy of the four collections every report
// is computed from.
type Snapshot struct {
	Projects       []*projects_models.Project
	Subcontractors []*subcontractors.Subcontractor
	TimeLogs       []*timelogs.TimeLog
	Invoices       []*invoices.Invoice
}

// Filter narrows time logs by project, subcontractor and an inclusive date
// range, and invoices by project and subcontractor only.
type Filter struct {
	ProjectID       string `form:"projectId"`
	SubcontractorID string `form:"subcontractorId"`
	From            string `form:"from"`
	To              string `form:"to"`
}

func (f Filter) MatchesTimeLog(timeLog *timelogs.TimeLog) bool {
	if f.ProjectID != "" && timeLog.ProjectID != f.ProjectID {
		return false
	}
	if f.SubcontractorID != "" && timeLog.SubcontractorID != f.SubcontractorID {
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

func (f Filter) MatchesInvoice(invoice *invoices.Invoice) bool {
	if f.ProjectID != "" && invoice.ProjectID != f.ProjectID {
		return false
	}
	if f.SubcontractorID != "" && invoice.SubcontractorID != f.SubcontractorID {
		return false
	}

	return true
}

// ProjectSpend.Usage is spent/budget as a ratio, 0 when the project has no
// budget.
type ProjectSpend struct {
	ProjectID          string  `json:"projectId"`
	Name               string  `json:"name"`
	Budget             float64 `json:"budget"`
	Spent              float64 `json:"spent"`
	Usage              float64 `json:"usage"`
	IsNearOrOverBudget bool    `json:"isNearOrOverBudget"`
}

type StatusCount struct {
	Status approval.Status `json:"status"`
	Count  int             `json:"count"`
}

type ProjectTotal struct {
	ProjectID string  `json:"projectId"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
}

type DailyActivity struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// InvoiceDeviation.HasRisk is set when more was billed than the approved
// hours justify.
type InvoiceDeviation struct {
	InvoiceID       string          `json:"invoiceId"`
	ProjectID       string          `json:"projectId"`
	SubcontractorID string          `json:"subcontractorId"`
	Period          string          `json:"period"`
	Status          approval.Status `json:"status"`
	Amount          float64         `json:"amount"`
	Theoretical     float64         `json:"theoretical"`
	Deviation       float64         `json:"deviation"`
	HasRisk         bool            `json:"hasRisk"`
}

type KPIs struct {
	TotalHours     float64 `json:"totalHours"`
	EntryCount     int     `json:"entryCount"`
	ApprovedRate   float64 `json:"approvedRate"`
	TotalInvoiced  float64 `json:"totalInvoiced"`
	InvoiceCount   int     `json:"invoiceCount"`
	AverageInvoice float64 `json:"averageInvoice"`
}
