package services

import (
	"context"
	"sync"
	"testing"

	"schemacanvas/internal/history"
	"schemacanvas/internal/models"
	"schemacanvas/internal/repositories"
	"schemacanvas/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeStorage wraps the in-memory gateway with call recording, error
// injection and an optional gate that stalls table inserts, so tests
// can observe the persistence phase from the outside.
type fakeStorage struct {
	*repositories.MemoryRepository

	mu             sync.Mutex
	calls          []string
	lastTablePatch models.TablePatch
	updateTableErr error
	addTableGate   chan struct{}
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{MemoryRepository: repositories.NewMemoryRepository()}
}

func (f *fakeStorage) recordCall(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeStorage) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeStorage) lastPatch() models.TablePatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastTablePatch
}

func (f *fakeStorage) failUpdateTable(err error) {
	f.mu.Lock()
	f.updateTableErr = err
	f.mu.Unlock()
}

func (f *fakeStorage) gateAddTable() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.addTableGate = gate
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.addTableGate = nil
		f.mu.Unlock()
		close(gate)
	}
}

func (f *fakeStorage) AddTable(ctx context.Context, diagramID string, table models.Table) error {
	f.recordCall("AddTable")
	f.mu.Lock()
	gate := f.addTableGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.MemoryRepository.AddTable(ctx, diagramID, table)
}

func (f *fakeStorage) UpdateTable(ctx context.Context, tableID string, patch models.TablePatch) error {
	f.recordCall("UpdateTable")
	f.mu.Lock()
	f.lastTablePatch = patch
	err := f.updateTableErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryRepository.UpdateTable(ctx, tableID, patch)
}

func (f *fakeStorage) DeleteTable(ctx context.Context, diagramID, tableID string) error {
	f.recordCall("DeleteTable")
	return f.MemoryRepository.DeleteTable(ctx, diagramID, tableID)
}

func (f *fakeStorage) AddRelationship(ctx context.Context, diagramID string, rel models.Relationship) error {
	f.recordCall("AddRelationship")
	return f.MemoryRepository.AddRelationship(ctx, diagramID, rel)
}

func (f *fakeStorage) DeleteRelationship(ctx context.Context, diagramID, id string) error {
	f.recordCall("DeleteRelationship")
	return f.MemoryRepository.DeleteRelationship(ctx, diagramID, id)
}

func newTestEngine(t *testing.T) (*DiagramService, *HistoryService, *fakeStorage) {
	t.Helper()
	fake := newFakeStorage()
	log := history.NewLog()
	engine := NewDiagramService(store.New(models.Diagram{}), fake, log, zerolog.Nop())
	return engine, NewHistoryService(log, engine), fake
}

// seedEngine starts a persisted empty diagram.
func seedEngine(t *testing.T) (*DiagramService, *HistoryService, *fakeStorage) {
	t.Helper()
	engine, undo, fake := newTestEngine(t)
	_, p := engine.NewDiagram(context.Background(), "test", models.DatabaseTypeGeneric)
	require.NoError(t, p.Wait(context.Background()))
	return engine, undo, fake
}

// addNamedTable is shorthand for tests that need stable table names.
func addNamedTable(t *testing.T, engine *DiagramService, name string) models.Table {
	t.Helper()
	ctx := context.Background()
	tab, p, err := engine.CreateTable(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))
	require.NoError(t, engine.UpdateTable(ctx, tab.ID, models.TablePatch{Name: &name}).Wait(ctx))
	tab, ok := engine.GetTable(tab.ID)
	require.True(t, ok)
	return tab
}
