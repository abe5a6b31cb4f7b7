package invoices

import (
	"sort"
	"sync"

	"timebridge/internal/features/approval"
	"timebridge/internal/util/app_errors"
)

// MemoryInvoiceStore keeps invoices in memory for tests.
type MemoryInvoiceStore struct {
	mu       sync.Mutex
	invoices map[string]*Invoice
}

func NewMemoryInvoiceStore(invoices ...*Invoice) *MemoryInvoiceStore {
	store := &MemoryInvoiceStore{invoices: make(map[string]*Invoice)}
	for _, invoice := range invoices {
		store.invoices[invoice.ID] = invoice
	}

	return store
}

func (s *MemoryInvoiceStore) Create(invoice *Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *invoice
	s.invoices[invoice.ID] = &copied
	return nil
}

func (s *MemoryInvoiceStore) GetByID(id string) (*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invoice, ok := s.invoices[id]
	if !ok {
		return nil, app_errors.NewNotFoundError("invoice", id)
	}

	copied := *invoice
	return &copied, nil
}

func (s *MemoryInvoiceStore) List(filter Filter) ([]*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*Invoice, 0)
	for _, invoice := range s.invoices {
		if filter.Matches(invoice) {
			copied := *invoice
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (s *MemoryInvoiceStore) GetAll() ([]*Invoice, error) {
	return s.List(Filter{})
}

func (s *MemoryInvoiceStore) GetStatus(id string) (approval.Status, error) {
	invoice, err := s.GetByID(id)
	if err != nil {
		return "", err
	}

	return invoice.Status, nil
}

func (s *MemoryInvoiceStore) CompareAndSwapStatus(id string, expected, next approval.Status, _ *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invoice, ok := s.invoices[id]
	if !ok || invoice.Status != expected {
		return false, nil
	}

	invoice.Status = next
	return true, nil
}

func (s *MemoryInvoiceStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.invoices, id)
	return nil
}

func (s *MemoryInvoiceStore) CountByProject(projectID string) (int64, error) {
	invoices, _ := s.List(Filter{ProjectID: projectID})
	return int64(len(invoices)), nil
}

func (s *MemoryInvoiceStore) CountBySubcontractor(subcontractorID string) (int64, error) {
	invoices, _ := s.List(Filter{SubcontractorID: subcontractorID})
	return int64(len(invoices)), nil
}
