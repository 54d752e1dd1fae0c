package services

import (
	"context"
	"fmt"

	"schemacanvas/internal/history"
	"schemacanvas/internal/models"
	"schemacanvas/internal/repositories"
	"schemacanvas/internal/store"

	"github.com/rs/zerolog"
)

// DiagramService is the mutation engine for the open diagram. Every
// mutation follows the same three phases: apply to the in-memory store
// synchronously, persist through the storage gateway asynchronously,
// and record an invertible action on the history log. The in-memory
// apply is authoritative; persistence failures surface only through the
// returned Pending and are never rolled back.
type DiagramService struct {
	store   *store.Store
	storage repositories.Storage
	log     *history.Log
	logger  zerolog.Logger
}

func NewDiagramService(st *store.Store, storage repositories.Storage, log *history.Log, logger zerolog.Logger) *DiagramService {
	return &DiagramService{
		store:   st,
		storage: storage,
		log:     log,
		logger:  logger.With().Str("component", "diagram_service").Logger(),
	}
}

// persist runs one persistence phase in the background. The context is
// detached from the caller's cancellation: persistence always runs to
// completion or failure, never half-way.
func (s *DiagramService) persist(ctx context.Context, op string, fn func(context.Context) error) *Pending {
	p := newPending()
	ctx = context.WithoutCancel(ctx)
	go func() {
		err := fn(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Str("op", op).Msg("persistence failed, storage diverged from memory")
		}
		p.complete(err)
	}()
	return p
}

func (s *DiagramService) record(o mutationOptions, a history.Action) {
	if o.updateHistory {
		s.log.Push(a)
	}
}

// Diagram returns a deep copy of the current in-memory diagram.
func (s *DiagramService) Diagram() models.Diagram {
	return s.store.Snapshot()
}

func (s *DiagramService) GetTable(id string) (models.Table, bool) {
	return s.store.GetTable(id)
}

func (s *DiagramService) GetField(tableID, fieldID string) (models.Field, bool) {
	return s.store.GetField(tableID, fieldID)
}

func (s *DiagramService) GetIndex(tableID, indexID string) (models.Index, bool) {
	return s.store.GetIndex(tableID, indexID)
}

func (s *DiagramService) GetRelationship(id string) (models.Relationship, bool) {
	return s.store.GetRelationship(id)
}

// NewDiagram seeds the store with a fresh diagram and persists it. The
// history log is reset: actions of the previous diagram must not replay
// against the new one.
func (s *DiagramService) NewDiagram(ctx context.Context, name string, dbType models.DatabaseType) (models.Diagram, *Pending) {
	d := models.Diagram{Name: name, DatabaseType: dbType}
	d.Prepare()

	s.store.Replace(d)
	s.log.Reset()
	s.logger.Info().Str("diagram_id", d.ID).Str("name", d.Name).Msg("created diagram")

	p := s.persist(ctx, "add_diagram", func(ctx context.Context) error {
		return s.storage.AddDiagram(ctx, d)
	})
	return d, p
}

// LoadDiagram replaces the in-memory state with the stored diagram.
// Loading is synchronous and leaves the history log untouched.
func (s *DiagramService) LoadDiagram(ctx context.Context, id string) (models.Diagram, error) {
	d, err := s.storage.GetDiagram(ctx, id, repositories.GetDiagramOptions{
		IncludeTables:        true,
		IncludeRelationships: true,
	})
	if err != nil {
		return models.Diagram{}, fmt.Errorf("failed to load diagram %s: %w", id, err)
	}
	if d == nil {
		return models.Diagram{}, fmt.Errorf("diagram %s: %w", id, models.ErrNotFound)
	}

	s.store.Replace(*d)
	s.logger.Info().Str("diagram_id", d.ID).Int("tables", len(d.Tables)).Msg("loaded diagram")
	return s.store.Snapshot(), nil
}

// UpdateDiagramName renames the open diagram.
func (s *DiagramService) UpdateDiagramName(ctx context.Context, name string, opts ...MutationOption) *Pending {
	return s.updateDiagramMeta(ctx, models.DiagramPatch{Name: &name}, opts...)
}

// UpdateDatabaseType switches the SQL dialect the diagram targets.
func (s *DiagramService) UpdateDatabaseType(ctx context.Context, dbType models.DatabaseType, opts ...MutationOption) *Pending {
	return s.updateDiagramMeta(ctx, models.DiagramPatch{DatabaseType: &dbType}, opts...)
}

func (s *DiagramService) updateDiagramMeta(ctx context.Context, patch models.DiagramPatch, opts ...MutationOption) *Pending {
	o := applyOptions(opts)

	var undo models.DiagramPatch
	if patch.Name != nil {
		undo.Name = ptr(s.store.Name())
	}
	if patch.DatabaseType != nil {
		undo.DatabaseType = ptr(s.store.DatabaseType())
	}

	id := s.store.ID()
	s.store.SetMeta(patch)

	p := s.persist(ctx, "update_diagram", func(ctx context.Context) error {
		return s.storage.UpdateDiagram(ctx, id, patch)
	})
	s.record(o, history.Action{
		Op:   history.OpUpdateDiagram,
		Redo: diagramPatchPayload{Patch: patch},
		Undo: diagramPatchPayload{Patch: undo},
	})
	return p
}

// UpdateDiagramID rotates the diagram id. The persistence call is keyed
// by the previous id, which is the one storage still knows.
func (s *DiagramService) UpdateDiagramID(ctx context.Context, id string, opts ...MutationOption) *Pending {
	o := applyOptions(opts)

	prev := s.store.ID()
	s.store.SetMeta(models.DiagramPatch{ID: &id})

	p := s.persist(ctx, "update_diagram_id", func(ctx context.Context) error {
		return s.storage.UpdateDiagram(ctx, prev, models.DiagramPatch{ID: &id})
	})
	s.record(o, history.Action{
		Op:   history.OpUpdateDiagramID,
		Redo: diagramIDPayload{ID: id},
		Undo: diagramIDPayload{ID: prev},
	})
	return p
}
