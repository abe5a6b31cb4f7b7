package reports

import (
	"timebridge/internal/features/approval"
	"timebridge/internal/features/invoices"
	"timebridge/internal/features/subcontractors"
	"timebridge/internal/features/timelogs"
	"timebridge/internal/util/app_errors"
	time_parser "timebridge/internal/util/time"
)

type snapshotSource interface {
	Snapshot() Snapshot
}

type ReportService struct {
	source snapshotSource
}

func NewReportService(source snapshotSource) *ReportService {
	return &ReportService{source: source}
}

func (s *ReportService) GetDashboard(identity approval.Identity) (*DashboardResponseDTO, error) {
	snapshot, err := s.scopedSnapshot(identity)
	if err != nil {
		return nil, err
	}

	return &DashboardResponseDTO{
		TotalSpent:         TotalSpent(snapshot),
		PendingApprovals:   PendingApprovals(snapshot),
		SpendByProject:     SpendByProject(snapshot),
		StatusDistribution: StatusDistribution(snapshot.TimeLogs),
	}, nil
}

func (s *ReportService) GetSummary(identity approval.Identity, filter Filter) (*SummaryResponseDTO, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	snapshot, err := s.scopedSnapshot(identity)
	if err != nil {
		return nil, err
	}

	return &SummaryResponseDTO{
		KPIs:             ComputeKPIs(snapshot, filter),
		HoursByProject:   HoursByProject(snapshot, filter),
		CostByProject:    CostByProject(snapshot, filter),
		ActivityOverTime: ActivityOverTime(snapshot, filter),
	}, nil
}

func (s *ReportService) GetInvoiceDeviations(
	identity approval.Identity,
	filter Filter,
) (*InvoiceDeviationsResponseDTO, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	snapshot, err := s.scopedSnapshot(identity)
	if err != nil {
		return nil, err
	}

	deviations := InvoiceDeviations(snapshot, filter)

	atRisk := 0
	for _, deviation := range deviations {
		if deviation.HasRisk {
			atRisk++
		}
	}

	return &InvoiceDeviationsResponseDTO{Deviations: deviations, AtRisk: atRisk}, nil
}

// scopedSnapshot limits subcontractors to their own records. Every other
// actor sees everything.
func (s *ReportService) scopedSnapshot(identity approval.Identity) (Snapshot, error) {
	snapshot := s.source.Snapshot()

	if identity.Actor != approval.ActorSubcontractor {
		return snapshot, nil
	}
	if identity.SubcontractorID == nil {
		return Snapshot{}, app_errors.NewAuthorizationError("user is not linked to a subcontractor")
	}

	own := *identity.SubcontractorID
	scoped := Snapshot{Projects: snapshot.Projects}

	for _, subcontractor := range snapshot.Subcontractors {
		if subcontractor.ID == own {
			scoped.Subcontractors = append(scoped.Subcontractors, subcontractor)
		}
	}
	for _, timeLog := range snapshot.TimeLogs {
		if timeLog.SubcontractorID == own {
			scoped.TimeLogs = append(scoped.TimeLogs, timeLog)
		}
	}
	for _, invoice := range snapshot.Invoices {
		if invoice.SubcontractorID == own {
			scoped.Invoices = append(scoped.Invoices, invoice)
		}
	}

	if scoped.Subcontractors == nil {
		scoped.Subcontractors = []*subcontractors.Subcontractor{}
	}
	if scoped.TimeLogs == nil {
		scoped.TimeLogs = []*timelogs.TimeLog{}
	}
	if scoped.Invoices == nil {
		scoped.Invoices = []*invoices.Invoice{}
	}

	return scoped, nil
}

func validateFilter(filter Filter) error {
	if filter.From != "" && !time_parser.IsDate(filter.From) {
		return app_errors.NewInvalidFieldError("from", "must be a date in YYYY-MM-DD form")
	}
	if filter.To != "" && !time_parser.IsDate(filter.To) {
		return app_errors.NewInvalidFieldError("to", "must be a date in YYYY-MM-DD form")
	}
	if filter.From != "" && filter.To != "" && filter.From > filter.To {
		return app_errors.NewInvalidFieldError("from", "must not be after to")
	}

	return nil
}
