package reports

import (
	"math"
	"sort"
	"strings"

	"timebridge/internal/features/approval"
	"timebridge/internal/features/invoices"
	"timebridge/internal/features/timelogs"
)

// SpendByProject sums ratified invoice amounts per project, in project order.
func SpendByProject(snapshot Snapshot) []ProjectSpend {
	spent := make(map[string]float64)
	for _, invoice := range snapshot.Invoices {
		if invoice.Status == approval.StatusRatifiedMgr {
			spent[invoice.ProjectID] += invoice.Amount
		}
	}

	result := make([]ProjectSpend, 0, len(snapshot.Projects))
	for _, project := range snapshot.Projects {
		usage := 0.0
		if project.Budget > 0 {
			usage = spent[project.ID] / project.Budget
		}

		result = append(result, ProjectSpend{
			ProjectID:          project.ID,
			Name:               project.Name,
			Budget:             project.Budget,
			Spent:              spent[project.ID],
			Usage:              usage,
			IsNearOrOverBudget: usage > budgetAlertRatio,
		})
	}

	return result
}

// TotalSpent is the sum of all ratified invoice amounts.
func TotalSpent(snapshot Snapshot) float64 {
	total := 0.0
	for _, invoice := range snapshot.Invoices {
		if invoice.Status == approval.StatusRatifiedMgr {
			total += invoice.Amount
		}
	}

	return total
}

// PendingApprovals counts time logs and invoices still waiting for a manager.
func PendingApprovals(snapshot Snapshot) int {
	count := 0
	for _, timeLog := range snapshot.TimeLogs {
		if timeLog.Status == approval.StatusPending {
			count++
		}
	}
	for _, invoice := range snapshot.Invoices {
		if invoice.Status == approval.StatusPending {
			count++
		}
	}

	return count
}

// StatusDistribution always reports all four statuses, zeros included.
func StatusDistribution(timeLogs []*timelogs.TimeLog) []StatusCount {
	counts := make(map[approval.Status]int, len(approval.AllStatuses))
	for _, timeLog := range timeLogs {
		counts[timeLog.Status]++
	}

	result := make([]StatusCount, 0, len(approval.AllStatuses))
	for _, status := range approval.AllStatuses {
		result = append(result, StatusCount{Status: status, Count: counts[status]})
	}

	return result
}

// TheoreticalAmount prices the approved or ratified hours behind an invoice
// at the subcontractor's hourly rate. Unknown subcontractors price at 0.
func TheoreticalAmount(snapshot Snapshot, invoice *invoices.Invoice) float64 {
	rate, ok := hourlyRate(snapshot, invoice.SubcontractorID)
	if !ok {
		return 0
	}

	hours := 0.0
	for _, timeLog := range snapshot.TimeLogs {
		if timeLog.ProjectID != invoice.ProjectID || timeLog.SubcontractorID != invoice.SubcontractorID {
			continue
		}
		if !strings.HasPrefix(timeLog.Date, invoice.Period) || !timeLog.Status.IsApproved() {
			continue
		}

		hours += timeLog.Hours
	}

	return roundCents(hours * rate)
}

// InvoiceDeviations compares every matching invoice against its theoretical
// amount.
func InvoiceDeviations(snapshot Snapshot, filter Filter) []InvoiceDeviation {
	result := make([]InvoiceDeviation, 0)

	for _, invoice := range snapshot.Invoices {
		if !filter.MatchesInvoice(invoice) {
			continue
		}

		theoretical := TheoreticalAmount(snapshot, invoice)
		deviation := roundCents(invoice.Amount - theoretical)

		result = append(result, InvoiceDeviation{
			InvoiceID:       invoice.ID,
			ProjectID:       invoice.ProjectID,
			SubcontractorID: invoice.SubcontractorID,
			Period:          invoice.Period,
			Status:          invoice.Status,
			Amount:          invoice.Amount,
			Theoretical:     theoretical,
			Deviation:       deviation,
			HasRisk:         deviation > 0,
		})
	}

	return result
}

func HoursByProject(snapshot Snapshot, filter Filter) []ProjectTotal {
	totals := newProjectTotals(snapshot)
	for _, timeLog := range snapshot.TimeLogs {
		if filter.MatchesTimeLog(timeLog) {
			totals.add(timeLog.ProjectID, timeLog.Hours)
		}
	}

	return totals.result()
}

// CostByProject sums invoice amounts of any status.
func CostByProject(snapshot Snapshot, filter Filter) []ProjectTotal {
	totals := newProjectTotals(snapshot)
	for _, invoice := range snapshot.Invoices {
		if filter.MatchesInvoice(invoice) {
			totals.add(invoice.ProjectID, invoice.Amount)
		}
	}

	return totals.result()
}

// ActivityOverTime returns logged hours per day, oldest first.
func ActivityOverTime(snapshot Snapshot, filter Filter) []DailyActivity {
	hoursByDate := make(map[string]float64)
	for _, timeLog := range snapshot.TimeLogs {
		if filter.MatchesTimeLog(timeLog) {
			hoursByDate[timeLog.Date] += timeLog.Hours
		}
	}

	result := make([]DailyActivity, 0, len(hoursByDate))
	for date, hours := range hoursByDate {
		result = append(result, DailyActivity{Date: date, Hours: roundCents(hours)})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})

	return result
}

func ComputeKPIs(snapshot Snapshot, filter Filter) KPIs {
	kpis := KPIs{}

	approved := 0
	for _, timeLog := range snapshot.TimeLogs {
		if !filter.MatchesTimeLog(timeLog) {
			continue
		}

		kpis.EntryCount++
		kpis.TotalHours += timeLog.Hours
		if timeLog.Status.IsApproved() {
			approved++
		}
	}

	for _, invoice := range snapshot.Invoices {
		if !filter.MatchesInvoice(invoice) {
			continue
		}

		kpis.InvoiceCount++
		kpis.TotalInvoiced += invoice.Amount
	}

	if kpis.EntryCount > 0 {
		kpis.ApprovedRate = roundCents(float64(approved) / float64(kpis.EntryCount) * 100)
	}
	if kpis.InvoiceCount > 0 {
		kpis.AverageInvoice = roundCents(kpis.TotalInvoiced / float64(kpis.InvoiceCount))
	}
	kpis.TotalHours = roundCents(kpis.TotalHours)

	return kpis
}

func hourlyRate(snapshot Snapshot, subcontractorID string) (float64, bool) {
	for _, subcontractor := range snapshot.Subcontractors {
		if subcontractor.ID == subcontractorID {
			return subcontractor.HourlyRate, true
		}
	}

	return 0, false
}

// projectTotals keeps first-seen order so the output is stable.
type projectTotals struct {
	names  map[string]string
	values map[string]float64
	order  []string
}

func newProjectTotals(snapshot Snapshot) *projectTotals {
	names := make(map[string]string, len(snapshot.Projects))
	for _, project := range snapshot.Projects {
		names[project.ID] = project.Name
	}

	return &projectTotals{names: names, values: make(map[string]float64)}
}

func (t *projectTotals) add(projectID string, value float64) {
	if _, ok := t.values[projectID]; !ok {
		t.order = append(t.order, projectID)
	}

	t.values[projectID] += value
}

func (t *projectTotals) result() []ProjectTotal {
	result := make([]ProjectTotal, 0, len(t.order))
	for _, projectID := range t.order {
		name, ok := t.names[projectID]
		if !ok {
			name = UnknownProjectName
		}

		result = append(result, ProjectTotal{
			ProjectID: projectID,
			Name:      name,
			Value:     roundCents(t.values[projectID]),
		})
	}

	return result
}

func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}
