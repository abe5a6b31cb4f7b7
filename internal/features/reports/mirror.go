package reports

import (
	"context"
	"log/slog"
	"sync"

	"timebridge/internal/features/invoices"
	projects_models "timebridge/internal/features/projects/models"
	"timebridge/internal/features/subcontractors"
	"timebridge/internal/features/timelogs"
	"timebridge/internal/realtime"
)

type changeSubscriber interface {
	Subscribe(collection string, onChange func(realtime.Change)) (unsubscribe func())
}

type projectLister interface {
	GetAllProjects() ([]*projects_models.Project, error)
}

type subcontractorLister interface {
	GetAll() ([]*subcontractors.Subcontractor, error)
}

type timeLogLister interface {
	GetAll() ([]*timelogs.TimeLog, error)
}

type invoiceLister interface {
	GetAll() ([]*invoices.Invoice, error)
}

// Mirror keeps an in-memory copy of the four collections. Every change
// notification marks its collection stale and a single reload goroutine
// refetches it, so hub handlers never wait on the database.
type Mirror struct {
	projects       projectLister
	subcontractors subcontractorLister
	timeLogs       timeLogLister
	invoices       invoiceLister
	logger         *slog.Logger

	mu       sync.RWMutex
	snapshot Snapshot

	staleMu sync.Mutex
	stale   map[string]bool
	wake    chan struct{}

	unsubscribes []func()
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	closeOnce    sync.Once
}

func NewMirror(
	projects projectLister,
	subcontractorList subcontractorLister,
	timeLogs timeLogLister,
	invoiceList invoiceLister,
	logger *slog.Logger,
) *Mirror {
	return &Mirror{
		projects:       projects,
		subcontractors: subcontractorList,
		timeLogs:       timeLogs,
		invoices:       invoiceList,
		logger:         logger,
		stale:          make(map[string]bool),
		wake:           make(chan struct{}, 1),
	}
}

var mirroredCollections = []string{
	realtime.CollectionProjects,
	realtime.CollectionSubcontractors,
	realtime.CollectionTimeLogs,
	realtime.CollectionInvoices,
}

// Start subscribes to hub notifications, then loads every collection once,
// and follows changes until Close. Subscribing first means a write that
// lands during the initial load still marks its collection stale.
func (m *Mirror) Start(hub changeSubscriber) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	for _, collection := range mirroredCollections {
		unsubscribe := hub.Subscribe(collection, m.onChange)
		m.unsubscribes = append(m.unsubscribes, unsubscribe)
	}

	for _, collection := range mirroredCollections {
		m.reload(collection)
	}

	m.wg.Add(1)
	go m.reloadWorker(ctx)
}

// Close unsubscribes from the hub and stops the reload goroutine. Safe to
// call more than once.
func (m *Mirror) Close() {
	m.closeOnce.Do(func() {
		for _, unsubscribe := range m.unsubscribes {
			unsubscribe()
		}

		if m.cancel != nil {
			m.cancel()
		}
		m.wg.Wait()
	})
}

// Snapshot returns the current collections. The slices are copies; the
// records they point to must be treated as read-only.
func (m *Mirror) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		Projects:       append([]*projects_models.Project(nil), m.snapshot.Projects...),
		Subcontractors: append([]*subcontractors.Subcontractor(nil), m.snapshot.Subcontractors...),
		TimeLogs:       append([]*timelogs.TimeLog(nil), m.snapshot.TimeLogs...),
		Invoices:       append([]*invoices.Invoice(nil), m.snapshot.Invoices...),
	}
}

func (m *Mirror) onChange(change realtime.Change) {
	m.staleMu.Lock()
	m.stale[change.Collection] = true
	m.staleMu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Mirror) reloadWorker(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case <-m.wake:
			m.staleMu.Lock()
			stale := m.stale
			m.stale = make(map[string]bool)
			m.staleMu.Unlock()

			for collection := range stale {
				m.reload(collection)
			}
		}
	}
}

func (m *Mirror) reload(collection string) {
	var err error

	switch collection {
	case realtime.CollectionProjects:
		var projects []*projects_models.Project
		if projects, err = m.projects.GetAllProjects(); err == nil {
			m.mu.Lock()
			m.snapshot.Projects = projects
			m.mu.Unlock()
		}

	case realtime.CollectionSubcontractors:
		var subcontractorList []*subcontractors.Subcontractor
		if subcontractorList, err = m.subcontractors.GetAll(); err == nil {
			m.mu.Lock()
			m.snapshot.Subcontractors = subcontractorList
			m.mu.Unlock()
		}

	case realtime.CollectionTimeLogs:
		var timeLogs []*timelogs.TimeLog
		if timeLogs, err = m.timeLogs.GetAll(); err == nil {
			m.mu.Lock()
			m.snapshot.TimeLogs = timeLogs
			m.mu.Unlock()
		}

	case realtime.CollectionInvoices:
		var invoiceList []*invoices.Invoice
		if invoiceList, err = m.invoices.GetAll(); err == nil {
			m.mu.Lock()
			m.snapshot.Invoices = invoiceList
			m.mu.Unlock()
		}
	}

	if err != nil {
		m.logger.Error("Failed to reload mirrored collection", "collection", collection, "error", err)
	}
}
