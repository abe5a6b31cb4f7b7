package invoices

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"timebridge/internal/features/approval"
	projects_models "timebridge/internal/features/projects/models"
	users_interfaces "timebridge/internal/features/users/interfaces"
	"timebridge/internal/util/app_errors"
	"timebridge/internal/util/ids"
	time_parser "timebridge/internal/util/time"
)

const entityName = "invoice"

type invoiceStore interface {
	approval.StatusStore
	Create(invoice *Invoice) error
	GetByID(id string) (*Invoice, error)
	List(filter Filter) ([]*Invoice, error)
	Delete(id string) error
	CountByProject(projectID string) (int64, error)
	CountBySubcontractor(subcontractorID string) (int64, error)
}

type projectLookup interface {
	GetProjectWithCache(projectID string) (*projects_models.Project, error)
}

type subcontractorChecker interface {
	SubcontractorExists(id string) (bool, error)
}

type InvoiceService struct {
	invoiceRepository    invoiceStore
	projectService       projectLookup
	subcontractorChecker subcontractorChecker
	workflow             *approval.Workflow
	auditLogWriter       users_interfaces.AuditLogWriter
	logger               *slog.Logger
	now                  func() time.Time
}

func NewInvoiceService(
	store invoiceStore,
	projectService projectLookup,
	subcontractorChecker subcontractorChecker,
	logger *slog.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepository:    store,
		projectService:       projectService,
		subcontractorChecker: subcontractorChecker,
		workflow:             approval.NewWorkflow(entityName, store),
		logger:               logger,
		now:                  time.Now,
	}
}

func (s *InvoiceService) SetAuditLogWriter(writer users_interfaces.AuditLogWriter) {
	s.auditLogWriter = writer
}

// Create stores a PENDING invoice. The period defaults to the current month
// and the currency to EUR.
func (s *InvoiceService) Create(identity approval.Identity, request *CreateInvoiceRequestDTO) (*Invoice, error) {
	if strings.TrimSpace(request.ProjectID) == "" {
		return nil, app_errors.NewRequiredFieldError("projectId")
	}

	subcontractorID := request.SubcontractorID
	switch identity.Actor {
	case approval.ActorSubcontractor:
		if identity.SubcontractorID == nil {
			return nil, app_errors.NewAuthorizationError("user is not linked to a subcontractor record")
		}
		if subcontractorID == "" {
			subcontractorID = *identity.SubcontractorID
		}
		if !identity.OwnsSubcontractor(subcontractorID) {
			return nil, app_errors.NewAuthorizationError("subcontractors can only submit their own invoices")
		}
	case approval.ActorAdmin, approval.ActorProjectManager:
	default:
		return nil, app_errors.NewAuthorizationError("insufficient permissions to submit invoices")
	}

	if strings.TrimSpace(subcontractorID) == "" {
		return nil, app_errors.NewRequiredFieldError("subcontractorId")
	}
	if request.Amount <= 0 {
		return nil, app_errors.NewInvalidFieldError("amount", "amount must be greater than 0")
	}

	period := request.Period
	if period == "" {
		period = time_parser.CurrentMonth(s.now())
	}
	if !time_parser.IsMonth(period) {
		return nil, app_errors.NewInvalidFieldError("period", "period must be formatted as YYYY-MM")
	}

	if _, err := s.projectService.GetProjectWithCache(request.ProjectID); err != nil {
		return nil, err
	}

	exists, err := s.subcontractorChecker.SubcontractorExists(subcontractorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, app_errors.NewNotFoundError("subcontractor", subcontractorID)
	}

	currency := strings.ToUpper(strings.TrimSpace(request.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	invoice := &Invoice{
		ID:              ids.New(),
		SubcontractorID: subcontractorID,
		ProjectID:       request.ProjectID,
		Period:          period,
		Amount:          request.Amount,
		Currency:        currency,
		Status:          approval.StatusPending,
		FileURL:         request.FileURL,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.invoiceRepository.Create(invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.writeAuditLog(
		fmt.Sprintf("Invoice %s submitted for %s: %.2f %s", invoice.ID, invoice.Period, invoice.Amount, invoice.Currency),
		identity,
		invoice.ProjectID,
	)

	return invoice, nil
}

func (s *InvoiceService) Get(identity approval.Identity, id string) (*Invoice, error) {
	invoice, err := s.invoiceRepository.GetByID(id)
	if err != nil {
		return nil, err
	}

	if identity.Actor == approval.ActorSubcontractor && !identity.OwnsSubcontractor(invoice.SubcontractorID) {
		return nil, app_errors.NewAuthorizationError("subcontractors can only view their own invoices")
	}

	return invoice, nil
}

func (s *InvoiceService) List(identity approval.Identity, filter Filter) ([]*Invoice, error) {
	if identity.Actor == approval.ActorSubcontractor {
		if identity.SubcontractorID == nil {
			return []*Invoice{}, nil
		}

		filter.SubcontractorID = *identity.SubcontractorID
	}

	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, app_errors.NewInvalidFieldError("status", fmt.Sprintf("unknown status %q", filter.Status))
	}

	return s.invoiceRepository.List(filter)
}

// Transition moves an invoice through the approval workflow. Rejection
// feedback only goes to the audit trail.
func (s *InvoiceService) Transition(
	identity approval.Identity,
	id string,
	to approval.Status,
	feedback *string,
) (*approval.TransitionResult, error) {
	result, err := s.workflow.Transition(identity, id, to, feedback)
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice status changed", "id", id, "from", result.From, "to", result.To, "actor", identity.Actor)

	message := fmt.Sprintf("Invoice %s moved from %s to %s", id, result.From, result.To)
	if to == approval.StatusRejected && feedback != nil && *feedback != "" {
		message += fmt.Sprintf(": %s", *feedback)
	}

	projectID := ""
	if invoice, err := s.invoiceRepository.GetByID(id); err == nil {
		projectID = invoice.ProjectID
	}
	s.writeAuditLog(message, identity, projectID)

	return result, nil
}

func (s *InvoiceService) Delete(identity approval.Identity, id string) error {
	invoice, err := s.invoiceRepository.GetByID(id)
	if err != nil {
		return err
	}

	switch identity.Actor {
	case approval.ActorAdmin, approval.ActorProjectManager:
	case approval.ActorSubcontractor:
		if !identity.OwnsSubcontractor(invoice.SubcontractorID) {
			return app_errors.NewAuthorizationError("subcontractors can only delete their own invoices")
		}
	default:
		return app_errors.NewAuthorizationError("insufficient permissions to delete invoices")
	}

	if invoice.Status != approval.StatusPending {
		return app_errors.NewConflictError("invoice %s is %s and can no longer be deleted", id, invoice.Status)
	}

	return s.invoiceRepository.Delete(id)
}

func (s *InvoiceService) OnBeforeProjectDeletion(projectID string) error {
	count, err := s.invoiceRepository.CountByProject(projectID)
	if err != nil {
		return err
	}

	if count > 0 {
		return app_errors.NewConflictError("project %s still has %d invoices", projectID, count)
	}

	return nil
}

func (s *InvoiceService) OnBeforeSubcontractorDeletion(subcontractorID string) error {
	count, err := s.invoiceRepository.CountBySubcontractor(subcontractorID)
	if err != nil {
		return err
	}

	if count > 0 {
		return app_errors.NewConflictError("subcontractor %s still has %d invoices", subcontractorID, count)
	}

	return nil
}

func (s *InvoiceService) writeAuditLog(message string, identity approval.Identity, projectID string) {
	if s.auditLogWriter == nil {
		return
	}

	userID := identity.UserID
	var project *string
	if projectID != "" {
		project = &projectID
	}

	s.auditLogWriter.WriteAuditLog(message, &userID, project)
}
