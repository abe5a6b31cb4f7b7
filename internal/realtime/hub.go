package realtime

import (
	"log/slog"
	"sync"
)

const (
	CollectionProjects       = "projects"
	CollectionSubcontractors = "subcontractors"
	CollectionTimeLogs       = "timeLogs"
	CollectionInvoices       = "invoices"
	CollectionRoles          = "roles"
	CollectionUsers          = "users"
)

var AllCollections = []string{
	CollectionProjects,
	CollectionSubcontractors,
	CollectionTimeLogs,
	CollectionInvoices,
	CollectionRoles,
	CollectionUsers,
}

type Operation string

const (
	OperationUpsert    Operation = "upsert"
	OperationDelete    Operation = "delete"
	OperationDeleteAll Operation = "deleteAll"
)

type Change struct {
	Collection string    `json:"collection"`
	Operation  Operation `json:"operation"`
	ID         string    `json:"id,omitempty"`
}

// Hub fans changes out to in-process subscribers of a collection.
// Handlers run on the publishing goroutine and must not block.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]func(Change)
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[uint64]func(Change)),
		logger: logger,
	}
}

// Subscribe registers onChange for collection. The returned func removes the
// subscription and is safe to call more than once.
func (h *Hub) Subscribe(collection string, onChange func(Change)) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID

	if h.subs[collection] == nil {
		h.subs[collection] = make(map[uint64]func(Change))
	}
	h.subs[collection][id] = onChange

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			delete(h.subs[collection], id)
			if len(h.subs[collection]) == 0 {
				delete(h.subs, collection)
			}
		})
	}
}

func (h *Hub) Publish(change Change) {
	h.mu.RLock()
	handlers := make([]func(Change), 0, len(h.subs[change.Collection]))
	for _, handler := range h.subs[change.Collection] {
		handlers = append(handlers, handler)
	}
	h.mu.RUnlock()

	for _, handler := range handlers {
		h.dispatch(handler, change)
	}
}

func (h *Hub) SubscriberCount(collection string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs[collection])
}

func (h *Hub) dispatch(handler func(Change), change Change) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Change subscriber panicked",
				"collection", change.Collection,
				"panic", r)
		}
	}()

	handler(change)
}
