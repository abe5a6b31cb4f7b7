package approval

import (
	"fmt"

	"timebridge/internal/util/app_errors"
	"timebridge/internal/util/metrics"
)

// StatusStore persists the status of one kind of record. Implementations
// must make CompareAndSwapStatus atomic: it only writes when the stored
// status still equals expected and reports whether it did.
type StatusStore interface {
	GetStatus(id string) (Status, error)
	CompareAndSwapStatus(id string, expected, next Status, feedback *string) (bool, error)
}

type Workflow struct {
	entity string
	store  StatusStore
}

func NewWorkflow(entity string, store StatusStore) *Workflow {
	return &Workflow{
		entity: entity,
		store:  store,
	}
}

type TransitionResult struct {
	ID   string `json:"id"`
	From Status `json:"from"`
	To   Status `json:"to"`
}

// Transition moves record id to status to on behalf of identity. Feedback is
// only kept for rejections.
func (w *Workflow) Transition(
	identity Identity,
	id string,
	to Status,
	feedback *string,
) (*TransitionResult, error) {
	if !to.IsValid() {
		return nil, app_errors.NewInvalidFieldError("status", fmt.Sprintf("unknown status %q", to))
	}

	from, err := w.store.GetStatus(id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(identity.Actor, from, to) {
		metrics.StatusTransitions.WithLabelValues(w.entity, string(to), "denied").Inc()

		return nil, app_errors.NewAuthorizationError(
			"%s may not move %s %s from %s to %s",
			describeActor(identity.Actor), w.entity, id, from, to,
		)
	}

	if to != StatusRejected {
		feedback = nil
	}

	swapped, err := w.store.CompareAndSwapStatus(id, from, to, feedback)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s status: %w", w.entity, err)
	}

	if !swapped {
		metrics.StatusTransitions.WithLabelValues(w.entity, string(to), "conflict").Inc()

		return nil, app_errors.NewConflictError(
			"%s %s is no longer %s, reload and retry", w.entity, id, from,
		)
	}

	metrics.StatusTransitions.WithLabelValues(w.entity, string(to), "applied").Inc()

	return &TransitionResult{ID: id, From: from, To: to}, nil
}

func describeActor(actor Actor) string {
	if actor == ActorNone {
		return "a user without workflow role"
	}

	return string(actor)
}
