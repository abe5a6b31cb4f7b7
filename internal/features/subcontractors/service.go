package subcontractors

import (
	"fmt"
	"strings"
	"time"

	"timebridge/internal/features/approval"
	users_interfaces "timebridge/internal/features/users/interfaces"
	"timebridge/internal/util/app_errors"

	"github.com/google/uuid"
)

const DefaultCurrency = "EUR"

// SubcontractorDeletionListener lets features holding references to a
// subcontractor refuse its deletion.
type SubcontractorDeletionListener interface {
	OnBeforeSubcontractorDeletion(subcontractorID string) error
}

type subcontractorStore interface {
	Create(subcontractor *Subcontractor) error
	GetByID(id string) (*Subcontractor, error)
	Exists(id string) (bool, error)
	GetAll() ([]*Subcontractor, error)
	GetByManagerEmail(email string) ([]*Subcontractor, error)
	Update(subcontractor *Subcontractor) error
	Delete(id string) error
}

type assignmentCleaner interface {
	DeleteAssignmentsOfSubcontractor(subcontractorID string) error
}

type SubcontractorService struct {
	subcontractorRepository subcontractorStore
	assignmentRepository    assignmentCleaner
	auditLogWriter          users_interfaces.AuditLogWriter
	deletionListeners       []SubcontractorDeletionListener
}

func (s *SubcontractorService) SetAuditLogWriter(writer users_interfaces.AuditLogWriter) {
	s.auditLogWriter = writer
}

func (s *SubcontractorService) AddSubcontractorDeletionListener(listener SubcontractorDeletionListener) {
	s.deletionListeners = append(s.deletionListeners, listener)
}

func (s *SubcontractorService) Create(
	request *CreateSubcontractorRequestDTO,
	identity approval.Identity,
) (*Subcontractor, error) {
	if !canManageSubcontractors(identity) {
		return nil, app_errors.NewAuthorizationError("insufficient permissions to create subcontractors")
	}

	if err := validateRate(request.Name, request.HourlyRate); err != nil {
		return nil, err
	}

	subcontractor := &Subcontractor{
		ID:              uuid.New().String(),
		Name:            request.Name,
		Role:            request.Role,
		HourlyRate:      request.HourlyRate,
		Currency:        currencyOrDefault(request.Currency),
		PersonnelNumber: request.PersonnelNumber,
		ManagerEmail:    request.ManagerEmail,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.subcontractorRepository.Create(subcontractor); err != nil {
		return nil, fmt.Errorf("failed to create subcontractor: %w", err)
	}

	s.writeAuditLog(fmt.Sprintf("Subcontractor created: %s", subcontractor.Name), identity)

	return subcontractor, nil
}

// Get returns the record; a subcontractor login may only read its own.
func (s *SubcontractorService) Get(id string, identity approval.Identity) (*Subcontractor, error) {
	if identity.Actor == approval.ActorSubcontractor && !identity.OwnsSubcontractor(id) {
		return nil, app_errors.NewAuthorizationError("subcontractors can only view their own record")
	}

	return s.subcontractorRepository.GetByID(id)
}

func (s *SubcontractorService) List(identity approval.Identity) ([]*Subcontractor, error) {
	if identity.Actor == approval.ActorSubcontractor {
		if identity.SubcontractorID == nil {
			return []*Subcontractor{}, nil
		}

		own, err := s.subcontractorRepository.GetByID(*identity.SubcontractorID)
		if err != nil {
			if app_errors.IsNotFound(err) {
				return []*Subcontractor{}, nil
			}
			return nil, err
		}

		return []*Subcontractor{own}, nil
	}

	return s.subcontractorRepository.GetAll()
}

func (s *SubcontractorService) Update(
	id string,
	request *UpdateSubcontractorRequestDTO,
	identity approval.Identity,
) (*Subcontractor, error) {
	if !canManageSubcontractors(identity) {
		return nil, app_errors.NewAuthorizationError("insufficient permissions to update subcontractors")
	}

	if err := validateRate(request.Name, request.HourlyRate); err != nil {
		return nil, err
	}

	subcontractor, err := s.subcontractorRepository.GetByID(id)
	if err != nil {
		return nil, err
	}

	subcontractor.Name = request.Name
	subcontractor.Role = request.Role
	subcontractor.HourlyRate = request.HourlyRate
	subcontractor.Currency = currencyOrDefault(request.Currency)
	subcontractor.PersonnelNumber = request.PersonnelNumber
	subcontractor.ManagerEmail = request.ManagerEmail

	if err := s.subcontractorRepository.Update(subcontractor); err != nil {
		return nil, fmt.Errorf("failed to update subcontractor: %w", err)
	}

	s.writeAuditLog(fmt.Sprintf("Subcontractor updated: %s", subcontractor.Name), identity)

	return subcontractor, nil
}

func (s *SubcontractorService) Delete(id string, identity approval.Identity) error {
	if !canManageSubcontractors(identity) {
		return app_errors.NewAuthorizationError("insufficient permissions to delete subcontractors")
	}

	subcontractor, err := s.subcontractorRepository.GetByID(id)
	if err != nil {
		return err
	}

	for _, listener := range s.deletionListeners {
		if err := listener.OnBeforeSubcontractorDeletion(id); err != nil {
			return fmt.Errorf("failed to delete subcontractor: %w", err)
		}
	}

	if s.assignmentRepository != nil {
		if err := s.assignmentRepository.DeleteAssignmentsOfSubcontractor(id); err != nil {
			return fmt.Errorf("failed to remove assignments: %w", err)
		}
	}

	if err := s.subcontractorRepository.Delete(id); err != nil {
		return fmt.Errorf("failed to delete subcontractor: %w", err)
	}

	s.writeAuditLog(fmt.Sprintf("Subcontractor deleted: %s", subcontractor.Name), identity)

	return nil
}

func (s *SubcontractorService) SubcontractorExists(id string) (bool, error) {
	return s.subcontractorRepository.Exists(id)
}

func (s *SubcontractorService) GetByID(id string) (*Subcontractor, error) {
	return s.subcontractorRepository.GetByID(id)
}

func (s *SubcontractorService) GetAll() ([]*Subcontractor, error) {
	return s.subcontractorRepository.GetAll()
}

func (s *SubcontractorService) GetManagedBy(email string) ([]*Subcontractor, error) {
	return s.subcontractorRepository.GetByManagerEmail(email)
}

func (s *SubcontractorService) writeAuditLog(message string, identity approval.Identity) {
	if s.auditLogWriter == nil {
		return
	}

	userID := identity.UserID
	s.auditLogWriter.WriteAuditLog(message, &userID, nil)
}

func canManageSubcontractors(identity approval.Identity) bool {
	return identity.Actor == approval.ActorAdmin || identity.Actor == approval.ActorProjectManager
}

func validateRate(name string, hourlyRate float64) error {
	if strings.TrimSpace(name) == "" {
		return app_errors.NewRequiredFieldError("name")
	}
	if hourlyRate < 0 {
		return app_errors.NewInvalidFieldError("hourlyRate", "hourlyRate must not be negative")
	}

	return nil
}

func currencyOrDefault(currency string) string {
	if strings.TrimSpace(currency) == "" {
		return DefaultCurrency
	}

	return strings.ToUpper(currency)
}
