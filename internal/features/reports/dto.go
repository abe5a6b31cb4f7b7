package reports

type DashboardResponseDTO struct {
	TotalSpent         float64        `json:"totalSpent"`
	PendingApprovals   int            `json:"pendingApprovals"`
	SpendByProject     []ProjectSpend `json:"spendByProject"`
	StatusDistribution []StatusCount  `json:"statusDistribution"`
}

type SummaryResponseDTO struct {
	KPIs             KPIs            `json:"kpis"`
	HoursByProject   []ProjectTotal  `json:"hoursByProject"`
	CostByProject    []ProjectTotal  `json:"costByProject"`
	ActivityOverTime []DailyActivity `json:"activityOverTime"`
}

type InvoiceDeviationsResponseDTO struct {
	Deviations []InvoiceDeviation `json:"deviations"`
	AtRisk     int                `json:"atRisk"`
}
