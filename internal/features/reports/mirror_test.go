package reports

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"timebridge/internal/features/approval"
	"timebridge/internal/features/invoices"
	projects_models "timebridge/internal/features/projects/models"
	"timebridge/internal/features/subcontractors"
	"timebridge/internal/features/timelogs"
	"timebridge/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	projects []*projects_models.Project
	timeLogs []*timelogs.TimeLog
	loads    map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{loads: make(map[string]int)}
}

func (f *fakeSource) GetAllProjects() ([]*projects_models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.loads[realtime.CollectionProjects]++
	return append([]*projects_models.Project(nil), f.projects...), nil
}

func (f *fakeSource) setTimeLogs(timeLogs ...*timelogs.TimeLog) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.timeLogs = timeLogs
}

func (f *fakeSource) loadCount(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.loads[collection]
}

type subcontractorSource struct{}

func (subcontractorSource) GetAll() ([]*subcontractors.Subcontractor, error) {
	return []*subcontractors.Subcontractor{}, nil
}

type timeLogSource struct{ source *fakeSource }

func (s timeLogSource) GetAll() ([]*timelogs.TimeLog, error) {
	s.source.mu.Lock()
	defer s.source.mu.Unlock()

	s.source.loads[realtime.CollectionTimeLogs]++
	return append([]*timelogs.TimeLog(nil), s.source.timeLogs...), nil
}

type invoiceSource struct{}

func (invoiceSource) GetAll() ([]*invoices.Invoice, error) {
	return []*invoices.Invoice{}, nil
}

func newTestMirror(source *fakeSource) (*Mirror, *realtime.Hub) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := realtime.NewHub(logger)

	mirror := NewMirror(source, subcontractorSource{}, timeLogSource{source: source}, invoiceSource{}, logger)
	mirror.Start(hub)

	return mirror, hub
}

func Test_Mirror_Start_LoadsEveryCollection(t *testing.T) {
	source := newFakeSource()
	source.projects = []*projects_models.Project{{ID: "P1"}}
	source.setTimeLogs(timeLog("1", "P1", "S1", "2024-05-02", 4, approval.StatusPending))

	mirror, _ := newTestMirror(source)
	defer mirror.Close()

	snapshot := mirror.Snapshot()
	assert.Len(t, snapshot.Projects, 1)
	assert.Len(t, snapshot.TimeLogs, 1)
}

func Test_Mirror_OnChange_ReloadsOnlyThatCollection(t *testing.T) {
	source := newFakeSource()
	mirror, hub := newTestMirror(source)
	defer mirror.Close()

	source.setTimeLogs(
		timeLog("1", "P1", "S1", "2024-05-02", 4, approval.StatusPending),
		timeLog("2", "P1", "S1", "2024-05-03", 4, approval.StatusPending),
	)
	hub.Publish(realtime.Change{Collection: realtime.CollectionTimeLogs, Operation: realtime.OperationUpsert, ID: "2"})

	require.Eventually(t, func() bool {
		return len(mirror.Snapshot().TimeLogs) == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, source.loadCount(realtime.CollectionProjects))
}

func Test_Mirror_Close_UnsubscribesFromHub(t *testing.T) {
	source := newFakeSource()
	mirror, hub := newTestMirror(source)

	assert.Equal(t, 1, hub.SubscriberCount(realtime.CollectionTimeLogs))

	mirror.Close()
	mirror.Close()

	for _, collection := range mirroredCollections {
		assert.Equal(t, 0, hub.SubscriberCount(collection))
	}

	source.setTimeLogs(timeLog("1", "P1", "S1", "2024-05-02", 4, approval.StatusPending))
	hub.Publish(realtime.Change{Collection: realtime.CollectionTimeLogs, Operation: realtime.OperationUpsert, ID: "1"})

	assert.Empty(t, mirror.Snapshot().TimeLogs)
}

// committingTimeLogSource simulates a write that commits and notifies while
// the mirror is still doing its first load.
type committingTimeLogSource struct {
	source    *fakeSource
	hub       *realtime.Hub
	committed bool
}

func (s *committingTimeLogSource) GetAll() ([]*timelogs.TimeLog, error) {
	timeLogs, err := timeLogSource{source: s.source}.GetAll()

	if !s.committed {
		s.committed = true
		s.source.setTimeLogs(timeLog("1", "P1", "S1", "2024-05-02", 4, approval.StatusPending))
		s.hub.Publish(realtime.Change{Collection: realtime.CollectionTimeLogs, Operation: realtime.OperationUpsert, ID: "1"})
	}

	return timeLogs, err
}

func Test_Mirror_Start_WriteDuringInitialLoad_IsPickedUp(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := realtime.NewHub(logger)
	source := newFakeSource()

	timeLogs := &committingTimeLogSource{source: source, hub: hub}
	mirror := NewMirror(source, subcontractorSource{}, timeLogs, invoiceSource{}, logger)
	mirror.Start(hub)
	defer mirror.Close()

	require.Eventually(t, func() bool {
		return len(mirror.Snapshot().TimeLogs) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, source.loadCount(realtime.CollectionTimeLogs))
}

func Test_Mirror_DeleteAllChange_ReloadsCollection(t *testing.T) {
	source := newFakeSource()
	mirror, hub := newTestMirror(source)
	defer mirror.Close()

	source.setTimeLogs(timeLog("1", "P1", "S1", "2024-05-02", 4, approval.StatusPending))
	hub.Publish(realtime.Change{Collection: realtime.CollectionTimeLogs, Operation: realtime.OperationDeleteAll})

	require.Eventually(t, func() bool {
		return len(mirror.Snapshot().TimeLogs) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
