package reports

import (
	"testing"

	"timebridge/internal/features/approval"
	"timebridge/internal/features/invoices"
	projects_models "timebridge/internal/features/projects/models"
	"timebridge/internal/features/subcontractors"
	"timebridge/internal/features/timelogs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timeLog(id, projectID, subcontractorID, date string, hours float64, status approval.Status) *timelogs.TimeLog {
	return &timelogs.TimeLog{
		ID:              id,
		ProjectID:       projectID,
		SubcontractorID: subcontractorID,
		Date:            date,
		Hours:           hours,
		Status:          status,
	}
}

func Test_TheoreticalAmount_CountsOnlyApprovedHoursOfThePeriod(t *testing.T) {
	snapshot := Snapshot{
		Subcontractors: []*subcontractors.Subcontractor{{ID: "S1", HourlyRate: 50}},
		TimeLogs: []*timelogs.TimeLog{
			timeLog("1", "P1", "S1", "2024-05-02", 4, approval.StatusApprovedPM),
			timeLog("2", "P1", "S1", "2024-05-03", 4, approval.StatusRatifiedMgr),
			timeLog("3", "P1", "S1", "2024-05-04", 8, approval.StatusPending),
			timeLog("4", "P1", "S1", "2024-05-05", 8, approval.StatusRejected),
			timeLog("5", "P1", "S1", "2024-06-01", 8, approval.StatusApprovedPM),
			timeLog("6", "P2", "S1", "2024-05-02", 8, approval.StatusApprovedPM),
		},
	}

	amount := TheoreticalAmount(snapshot, &invoices.Invoice{ProjectID: "P1", SubcontractorID: "S1", Period: "2024-05"})

	assert.Equal(t, 400.0, amount)
}

func Test_TheoreticalAmount_WithUnknownSubcontractor_ReturnsZero(t *testing.T) {
	snapshot := Snapshot{
		TimeLogs: []*timelogs.TimeLog{timeLog("1", "P1", "S9", "2024-05-02", 4, approval.StatusApprovedPM)},
	}

	amount := TheoreticalAmount(snapshot, &invoices.Invoice{ProjectID: "P1", SubcontractorID: "S9", Period: "2024-05"})

	assert.Equal(t, 0.0, amount)
}

func Test_SpendByProject_SumsOnlyRatifiedInvoices(t *testing.T) {
	snapshot := Snapshot{
		Projects: []*projects_models.Project{
			{ID: "P1", Name: "Bridge", Budget: 1000},
			{ID: "P2", Name: "Tunnel", Budget: 0},
		},
		Invoices: []*invoices.Invoice{
			{ID: "I1", ProjectID: "P1", Amount: 600, Status: approval.StatusRatifiedMgr},
			{ID: "I2", ProjectID: "P1", Amount: 300, Status: approval.StatusRatifiedMgr},
			{ID: "I3", ProjectID: "P1", Amount: 999, Status: approval.StatusApprovedPM},
			{ID: "I4", ProjectID: "P2", Amount: 100, Status: approval.StatusRatifiedMgr},
		},
	}

	spend := SpendByProject(snapshot)

	require.Len(t, spend, 2)
	assert.Equal(t, 900.0, spend[0].Spent)
	assert.InDelta(t, 0.9, spend[0].Usage, 0.0001)
	assert.True(t, spend[0].IsNearOrOverBudget)
	assert.Equal(t, 100.0, spend[1].Spent)
	assert.Equal(t, 0.0, spend[1].Usage)
	assert.Equal(t, 1000.0, TotalSpent(snapshot))
}

func Test_StatusDistribution_ReportsEveryStatus(t *testing.T) {
	distribution := StatusDistribution([]*timelogs.TimeLog{
		timeLog("1", "P1", "S1", "2024-05-02", 1, approval.StatusPending),
		timeLog("2", "P1", "S1", "2024-05-02", 1, approval.StatusPending),
		timeLog("3", "P1", "S1", "2024-05-02", 1, approval.StatusRatifiedMgr),
	})

	assert.Equal(t, []StatusCount{
		{Status: approval.StatusPending, Count: 2},
		{Status: approval.StatusApprovedPM, Count: 0},
		{Status: approval.StatusRatifiedMgr, Count: 1},
		{Status: approval.StatusRejected, Count: 0},
	}, distribution)
}

func Test_ActivityOverTime_GroupsByDayInDateOrder(t *testing.T) {
	snapshot := Snapshot{
		TimeLogs: []*timelogs.TimeLog{
			timeLog("1", "P1", "S1", "2024-05-03", 2, approval.StatusPending),
			timeLog("2", "P1", "S2", "2024-05-01", 3, approval.StatusPending),
			timeLog("3", "P2", "S1", "2024-05-03", 1.5, approval.StatusPending),
			timeLog("4", "P1", "S1", "2024-04-30", 8, approval.StatusPending),
		},
	}

	activity := ActivityOverTime(snapshot, Filter{From: "2024-05-01"})

	assert.Equal(t, []DailyActivity{
		{Date: "2024-05-01", Hours: 3},
		{Date: "2024-05-03", Hours: 3.5},
	}, activity)
}

func Test_HoursByProject_WithUnknownProject_UsesPlaceholderName(t *testing.T) {
	snapshot := Snapshot{
		Projects: []*projects_models.Project{{ID: "P1", Name: "Bridge"}},
		TimeLogs: []*timelogs.TimeLog{
			timeLog("1", "P1", "S1", "2024-05-03", 2, approval.StatusPending),
			timeLog("2", "P9", "S1", "2024-05-03", 1, approval.StatusPending),
			timeLog("3", "P1", "S2", "2024-05-04", 4, approval.StatusPending),
		},
	}

	totals := HoursByProject(snapshot, Filter{SubcontractorID: "S1"})

	assert.Equal(t, []ProjectTotal{
		{ProjectID: "P1", Name: "Bridge", Value: 2},
		{ProjectID: "P9", Name: UnknownProjectName, Value: 1},
	}, totals)
}

func Test_ComputeKPIs_AppliesFilter(t *testing.T) {
	snapshot := Snapshot{
		TimeLogs: []*timelogs.TimeLog{
			timeLog("1", "P1", "S1", "2024-05-03", 2, approval.StatusApprovedPM),
			timeLog("2", "P1", "S1", "2024-05-04", 6, approval.StatusPending),
			timeLog("3", "P2", "S1", "2024-05-04", 5, approval.StatusApprovedPM),
		},
		Invoices: []*invoices.Invoice{
			{ID: "I1", ProjectID: "P1", Amount: 100, Status: approval.StatusPending},
			{ID: "I2", ProjectID: "P1", Amount: 300, Status: approval.StatusRatifiedMgr},
			{ID: "I3", ProjectID: "P2", Amount: 999, Status: approval.StatusRatifiedMgr},
		},
	}

	kpis := ComputeKPIs(snapshot, Filter{ProjectID: "P1"})

	assert.Equal(t, KPIs{
		TotalHours:     8,
		EntryCount:     2,
		ApprovedRate:   50,
		TotalInvoiced:  400,
		InvoiceCount:   2,
		AverageInvoice: 200,
	}, kpis)
}

func Test_InvoiceDeviations_FlagsOverBilling(t *testing.T) {
	snapshot := Snapshot{
		Subcontractors: []*subcontractors.Subcontractor{{ID: "S1", HourlyRate: 50}},
		TimeLogs:       []*timelogs.TimeLog{timeLog("1", "P1", "S1", "2024-05-02", 10, approval.StatusApprovedPM)},
		Invoices: []*invoices.Invoice{
			{ID: "I1", ProjectID: "P1", SubcontractorID: "S1", Period: "2024-05", Amount: 450},
			{ID: "I2", ProjectID: "P1", SubcontractorID: "S1", Period: "2024-05", Amount: 520},
		},
	}

	deviations := InvoiceDeviations(snapshot, Filter{})

	require.Len(t, deviations, 2)
	assert.Equal(t, -50.0, deviations[0].Deviation)
	assert.False(t, deviations[0].HasRisk)
	assert.Equal(t, 20.0, deviations[1].Deviation)
	assert.True(t, deviations[1].HasRisk)
}
