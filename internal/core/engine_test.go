package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auto-dns/docker-hosts-sync/internal/config"
	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/auto-dns/docker-hosts-sync/internal/state"
)

type fakeSource struct {
	mu         sync.Mutex
	ids        []string
	listErr    error
	recs       map[string]domain.ContainerRecord
	inspectErr map[string]error
	events     chan domain.ContainerEvent
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		recs:       make(map[string]domain.ContainerRecord),
		inspectErr: make(map[string]error),
		events:     make(chan domain.ContainerEvent, 10),
	}
}

func (f *fakeSource) Subscribe(ctx context.Context) (<-chan domain.ContainerEvent, error) {
	return f.events, nil
}

func (f *fakeSource) ListRunningContainerIds(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ids, f.listErr
}

func (f *fakeSource) Inspect(ctx context.Context, containerId string) (domain.ContainerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.inspectErr[containerId]; ok {
		return domain.ContainerRecord{}, err
	}
	rec, ok := f.recs[containerId]
	if !ok {
		return domain.ContainerRecord{}, errors.New("no such container")
	}
	return rec, nil
}

type fakeWriter struct {
	mu        sync.Mutex
	snapshots [][]domain.ContainerRecord
	err       error
}

func (f *fakeWriter) WriteSnapshot(recs []domain.ContainerRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, recs)
	return f.err
}

func (f *fakeWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.snapshots)
}

func (f *fakeWriter) last() []domain.ContainerRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.snapshots) == 0 {
		return nil
	}
	return f.snapshots[len(f.snapshots)-1]
}

func activeRecord(id, name, address string) domain.ContainerRecord {
	return domain.ContainerRecord{
		Id:            id,
		Name:          name,
		GlobalAddress: address,
		Running:       true,
	}
}

func newTestEngine(src *fakeSource, writer *fakeWriter) (*SyncEngine, *state.Store) {
	store := state.NewStore()
	cfg := &config.AppConfig{Tld: ".docker", DebounceMs: 10}
	return NewSyncEngine(zerolog.Nop(), cfg, src, store, writer), store
}

func TestFullResyncSkipsFailedInspections(t *testing.T) {
	src := newFakeSource()
	src.ids = []string{"good", "bad"}
	src.recs["good"] = activeRecord("good", "web", "172.17.0.2")
	src.inspectErr["bad"] = errors.New("inspect failed")
	writer := &fakeWriter{}
	engine, store := newTestEngine(src, writer)

	require.NoError(t, engine.FullResync(context.Background()))

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, writer.count(), "resync triggers an immediate write")
	require.Len(t, writer.last(), 1)
	assert.Equal(t, "web", writer.last()[0].Name)
}

func TestFullResyncRebuildsStore(t *testing.T) {
	src := newFakeSource()
	src.ids = []string{"b"}
	src.recs["b"] = activeRecord("b", "beta", "172.17.0.3")
	writer := &fakeWriter{}
	engine, store := newTestEngine(src, writer)

	store.Upsert(activeRecord("a", "stale", "172.17.0.9"))
	require.NoError(t, engine.FullResync(context.Background()))

	assert.Equal(t, 1, store.Len())
	assert.False(t, store.Remove("a"), "stale records dropped by resync")
}

func TestFullResyncSkipsInactiveContainers(t *testing.T) {
	src := newFakeSource()
	src.ids = []string{"stopped"}
	src.recs["stopped"] = domain.ContainerRecord{Id: "stopped", Name: "idle", Running: false}
	writer := &fakeWriter{}
	engine, store := newTestEngine(src, writer)

	require.NoError(t, engine.FullResync(context.Background()))
	assert.Equal(t, 0, store.Len())
}

func TestFullResyncPropagatesWriteError(t *testing.T) {
	src := newFakeSource()
	src.ids = []string{"abc"}
	src.recs["abc"] = activeRecord("abc", "web", "172.17.0.2")
	writer := &fakeWriter{err: errors.New("disk full")}
	engine, store := newTestEngine(src, writer)

	assert.Error(t, engine.FullResync(context.Background()))
	assert.Equal(t, 1, store.Len(), "store keeps its state so the next event retries the write")
}

func TestFullResyncListFailureIsFatal(t *testing.T) {
	src := newFakeSource()
	src.listErr = errors.New("daemon unreachable")
	writer := &fakeWriter{}
	engine, _ := newTestEngine(src, writer)

	assert.Error(t, engine.FullResync(context.Background()))
	assert.Equal(t, 0, writer.count())
}

func TestHandleEventAttachInsertsActiveContainer(t *testing.T) {
	src := newFakeSource()
	src.recs["abc"] = activeRecord("abc", "web", "172.17.0.2")
	engine, store := newTestEngine(src, &fakeWriter{})

	engine.HandleEvent(context.Background(), domain.ContainerEvent{Action: "start", ContainerId: "abc"})

	assert.Equal(t, 1, store.Len())
}

func TestHandleEventAttachIgnoresInactiveContainer(t *testing.T) {
	src := newFakeSource()
	src.recs["abc"] = domain.ContainerRecord{Id: "abc", Name: "idle", Running: false}
	engine, store := newTestEngine(src, &fakeWriter{})

	engine.HandleEvent(context.Background(), domain.ContainerEvent{Action: "start", ContainerId: "abc"})

	assert.Equal(t, 0, store.Len())
}

func TestHandleEventAttachDropsStaleRecordWhenIneligible(t *testing.T) {
	src := newFakeSource()
	src.recs["abc"] = domain.ContainerRecord{Id: "abc", Name: "web", Running: false}
	engine, store := newTestEngine(src, &fakeWriter{})

	store.Upsert(activeRecord("abc", "web", "172.17.0.2"))
	engine.HandleEvent(context.Background(), domain.ContainerEvent{Action: "unpause", ContainerId: "abc"})

	assert.Equal(t, 0, store.Len())
}

func TestHandleEventAttachInspectFailureSkips(t *testing.T) {
	src := newFakeSource()
	src.inspectErr["abc"] = errors.New("gone")
	engine, store := newTestEngine(src, &fakeWriter{})

	engine.HandleEvent(context.Background(), domain.ContainerEvent{Action: "start", ContainerId: "abc"})

	assert.Equal(t, 0, store.Len())
}

func TestHandleEventDetachRemoves(t *testing.T) {
	src := newFakeSource()
	engine, store := newTestEngine(src, &fakeWriter{})

	store.Upsert(activeRecord("abc", "web", "172.17.0.2"))
	engine.HandleEvent(context.Background(), domain.ContainerEvent{Action: "die", ContainerId: "abc"})

	assert.Equal(t, 0, store.Len())
}

func TestHandleEventDetachUnknownContainerIsNoop(t *testing.T) {
	src := newFakeSource()
	engine, store := newTestEngine(src, &fakeWriter{})

	engine.HandleEvent(context.Background(), domain.ContainerEvent{Action: "stop", ContainerId: "never-seen"})

	assert.Equal(t, 0, store.Len())
}

func TestHandleEventIgnoredActionDoesNothing(t *testing.T) {
	src := newFakeSource()
	src.recs["abc"] = activeRecord("abc", "web", "172.17.0.2")
	engine, store := newTestEngine(src, &fakeWriter{})

	engine.HandleEvent(context.Background(), domain.ContainerEvent{Action: "exec_start", ContainerId: "abc"})

	assert.Equal(t, 0, store.Len())
}

func TestHandleEventEmptyContainerIdIgnored(t *testing.T) {
	src := newFakeSource()
	engine, store := newTestEngine(src, &fakeWriter{})

	engine.HandleEvent(context.Background(), domain.ContainerEvent{Action: "start"})

	assert.Equal(t, 0, store.Len())
}

func TestRunProcessesEventsUntilStreamCloses(t *testing.T) {
	src := newFakeSource()
	src.ids = []string{"abc"}
	src.recs["abc"] = activeRecord("abc", "web", "172.17.0.2")
	src.recs["def"] = activeRecord("def", "db", "172.17.0.3")
	writer := &fakeWriter{}
	engine, store := newTestEngine(src, writer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	src.events <- domain.ContainerEvent{Action: "start", ContainerId: "def"}

	assert.Eventually(t, func() bool { return store.Len() == 2 }, time.Second, 5*time.Millisecond)
	// The debounced write lands after the window.
	assert.Eventually(t, func() bool { return writer.count() >= 2 }, time.Second, 5*time.Millisecond)

	close(src.events)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after stream closure")
	}
}

func TestRunStopsDebouncerOnStreamClosure(t *testing.T) {
	src := newFakeSource()
	writer := &fakeWriter{}
	engine, _ := newTestEngine(src, writer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	assert.Eventually(t, func() bool { return writer.count() == 1 }, time.Second, 5*time.Millisecond)

	close(src.events)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after stream closure")
	}

	// The debounce loop must have stopped with Run even though the
	// caller's context is still live.
	engine.debouncer.Schedule()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, writer.count())
}

func TestRunReturnsOnCancel(t *testing.T) {
	src := newFakeSource()
	writer := &fakeWriter{}
	engine, _ := newTestEngine(src, writer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	// Let the resync write land first.
	assert.Eventually(t, func() bool { return writer.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
