package approval

import (
	"sync"
	"sync/atomic"
	"testing"

	"timebridge/internal/util/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityFor(actor Actor) Identity {
	return Identity{UserID: uuid.New(), Email: "someone@example.com", Actor: actor}
}

func Test_CanTransition_MatchesTransitionTableExactly(t *testing.T) {
	actors := []Actor{ActorAdmin, ActorProjectManager, ActorDirector, ActorSubcontractor, ActorNone}

	allowed := map[Actor]map[Status]map[Status]bool{
		ActorProjectManager: {StatusPending: {StatusApprovedPM: true, StatusRejected: true}},
		ActorDirector:       {StatusApprovedPM: {StatusRatifiedMgr: true, StatusRejected: true}},
	}

	for _, actor := range actors {
		for _, from := range AllStatuses {
			for _, to := range AllStatuses {
				expected := allowed[actor][from][to]
				assert.Equal(t, expected, CanTransition(actor, from, to),
					"actor=%s from=%s to=%s", actor, from, to)
			}
		}
	}
}

func Test_Transition_OutsideTable_ReturnsAuthorizationErrorAndKeepsStatus(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		from  Status
		to    Status
	}{
		{"subcontractor approves", ActorSubcontractor, StatusPending, StatusApprovedPM},
		{"director skips manager", ActorDirector, StatusPending, StatusRatifiedMgr},
		{"manager ratifies", ActorProjectManager, StatusApprovedPM, StatusRatifiedMgr},
		{"admin approves", ActorAdmin, StatusPending, StatusApprovedPM},
		{"manager reopens rejected", ActorProjectManager, StatusRejected, StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStatusStore("time log")
			store.Put("log-1", tt.from)
			workflow := NewWorkflow("time log", store)

			result, err := workflow.Transition(identityFor(tt.actor), "log-1", tt.to, nil)

			assert.Nil(t, result)
			var authorizationErr *app_errors.AuthorizationError
			assert.ErrorAs(t, err, &authorizationErr)

			status, _ := store.GetStatus("log-1")
			assert.Equal(t, tt.from, status)
		})
	}
}

func Test_Transition_FromTerminalStatuses_IsAlwaysRejected(t *testing.T) {
	for _, terminal := range []Status{StatusRatifiedMgr, StatusRejected} {
		assert.True(t, terminal.IsTerminal())

		for _, actor := range []Actor{ActorProjectManager, ActorDirector, ActorAdmin, ActorSubcontractor} {
			assert.Empty(t, AllowedTargets(actor, terminal), "actor %s from %s", actor, terminal)

			store := NewMemoryStatusStore("invoice")
			store.Put("inv-1", terminal)

			for _, to := range AllStatuses {
				_, err := NewWorkflow("invoice", store).Transition(identityFor(actor), "inv-1", to, nil)
				assert.Error(t, err)
			}

			status, _ := store.GetStatus("inv-1")
			assert.Equal(t, terminal, status)
		}
	}
}

func Test_Transition_ManagerThenDirector_ReachesRatified(t *testing.T) {
	store := NewMemoryStatusStore("time log")
	store.Put("log-1", StatusPending)
	workflow := NewWorkflow("time log", store)

	result, err := workflow.Transition(identityFor(ActorProjectManager), "log-1", StatusApprovedPM, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, result.From)
	assert.Equal(t, StatusApprovedPM, result.To)

	result, err = workflow.Transition(identityFor(ActorDirector), "log-1", StatusRatifiedMgr, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusRatifiedMgr, result.To)

	status, _ := store.GetStatus("log-1")
	assert.Equal(t, StatusRatifiedMgr, status)
}

func Test_Transition_Rejection_KeepsFeedbackOnlyForRejected(t *testing.T) {
	store := NewMemoryStatusStore("time log")
	store.Put("approved", StatusPending)
	store.Put("rejected", StatusPending)
	workflow := NewWorkflow("time log", store)

	note := "hours do not match the plan"

	_, err := workflow.Transition(identityFor(ActorProjectManager), "approved", StatusApprovedPM, &note)
	require.NoError(t, err)
	assert.Nil(t, store.Feedback("approved"))

	_, err = workflow.Transition(identityFor(ActorProjectManager), "rejected", StatusRejected, &note)
	require.NoError(t, err)
	require.NotNil(t, store.Feedback("rejected"))
	assert.Equal(t, note, *store.Feedback("rejected"))
}

func Test_Transition_WithUnknownRecordOrStatus_ReturnsTypedErrors(t *testing.T) {
	workflow := NewWorkflow("invoice", NewMemoryStatusStore("invoice"))

	_, err := workflow.Transition(identityFor(ActorDirector), "missing", StatusRatifiedMgr, nil)
	var notFoundErr *app_errors.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)

	_, err = workflow.Transition(identityFor(ActorDirector), "missing", Status("ARCHIVED"), nil)
	var validationErr *app_errors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

type racingStore struct {
	*MemoryStatusStore
	beforeSwap func()
}

func (s *racingStore) CompareAndSwapStatus(id string, expected, next Status, feedback *string) (bool, error) {
	s.beforeSwap()
	return s.MemoryStatusStore.CompareAndSwapStatus(id, expected, next, feedback)
}

func Test_Transition_WhenStatusChangesConcurrently_ReturnsConflict(t *testing.T) {
	memory := NewMemoryStatusStore("time log")
	memory.Put("log-1", StatusPending)

	store := &racingStore{
		MemoryStatusStore: memory,
		beforeSwap: func() {
			// another manager rejects between our read and write
			memory.Put("log-1", StatusRejected)
		},
	}

	_, err := NewWorkflow("time log", store).Transition(identityFor(ActorProjectManager), "log-1", StatusApprovedPM, nil)

	var conflictErr *app_errors.ConflictError
	assert.ErrorAs(t, err, &conflictErr)

	status, _ := memory.GetStatus("log-1")
	assert.Equal(t, StatusRejected, status)
}

func Test_Transition_ConcurrentApprovals_ExactlyOneWins(t *testing.T) {
	store := NewMemoryStatusStore("time log")
	store.Put("log-1", StatusPending)
	workflow := NewWorkflow("time log", store)

	var wg sync.WaitGroup
	var applied atomic.Int32

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			to := StatusApprovedPM
			if i%2 == 0 {
				to = StatusRejected
			}

			if _, err := workflow.Transition(identityFor(ActorProjectManager), "log-1", to, nil); err == nil {
				applied.Add(1)
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, int32(1), applied.Load())
}

func Test_ActorFromRoleID_MapsDefaultRoles(t *testing.T) {
	assert.Equal(t, ActorProjectManager, ActorFromRoleID("project_manager"))
	assert.Equal(t, ActorDirector, ActorFromRoleID("director"))
	assert.Equal(t, ActorSubcontractor, ActorFromRoleID("subcontractor"))
	assert.Equal(t, ActorAdmin, ActorFromRoleID("admin"))
	assert.Equal(t, ActorNone, ActorFromRoleID("auditor"))
}
