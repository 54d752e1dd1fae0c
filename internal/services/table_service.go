package services

import (
	"context"
	"fmt"
	"math/rand"

	"schemacanvas/internal/history"
	"schemacanvas/internal/models"
	"schemacanvas/internal/utils"

	"golang.org/x/sync/errgroup"
)

// CreateTable adds a table with generated defaults: a counted name, a
// random palette color and a single bigint primary-key field named id.
func (s *DiagramService) CreateTable(ctx context.Context, opts ...MutationOption) (models.Table, *Pending, error) {
	t := models.Table{
		Name:  utils.DefaultName("table", len(s.store.Tables())),
		X:     float64(rand.Intn(800)),
		Y:     float64(rand.Intn(600)),
		Color: utils.RandomColor(),
		Fields: []models.Field{{
			Name:       "id",
			Type:       "bigint",
			Unique:     true,
			PrimaryKey: true,
		}},
	}
	t.Prepare()
	for i := range t.Fields {
		t.Fields[i].Prepare()
	}

	p, err := s.AddTable(ctx, t, opts...)
	if err != nil {
		return models.Table{}, nil, err
	}
	return t, p, nil
}

// AddTable inserts a caller-built table. Missing ids and timestamps are
// generated; a duplicate id fails before anything is applied.
func (s *DiagramService) AddTable(ctx context.Context, table models.Table, opts ...MutationOption) (*Pending, error) {
	o := applyOptions(opts)
	table.Prepare()

	tables := s.store.Tables()
	tables = append(tables, table.Clone())
	if err := s.store.SetTables(tables); err != nil {
		return nil, err
	}

	diagramID := s.store.ID()
	p := s.persist(ctx, "add_table", func(ctx context.Context) error {
		return s.storage.AddTable(ctx, diagramID, table)
	})
	s.record(o, history.Action{
		Op:   history.OpAddTable,
		Redo: addTablePayload{Table: table.Clone()},
		Undo: removeTablePayload{TableID: table.ID},
	})
	return p, nil
}

// UpdateTable merges a partial update onto one table. An unknown id
// still persists (a remote no-op) but records nothing.
func (s *DiagramService) UpdateTable(ctx context.Context, tableID string, patch models.TablePatch, opts ...MutationOption) *Pending {
	o := applyOptions(opts)

	tables := s.store.Tables()
	var prior *models.Table
	for i := range tables {
		if tables[i].ID == tableID {
			cp := tables[i].Clone()
			prior = &cp
			patch.ApplyTo(&tables[i])
			break
		}
	}
	if prior != nil {
		if err := s.store.SetTables(tables); err != nil {
			return resolvedPending(err)
		}
	}

	p := s.persist(ctx, "update_table", func(ctx context.Context) error {
		return s.storage.UpdateTable(ctx, tableID, patch)
	})
	if prior == nil {
		return p
	}
	s.record(o, history.Action{
		Op:   history.OpUpdateTable,
		Redo: updateTablePayload{TableID: tableID, Patch: patch},
		Undo: updateTablePayload{TableID: tableID, Patch: inverseTablePatch(patch, *prior)},
	})
	return p
}

// RemoveTable drops a table. Relationships referencing it are left
// dangling rather than cascaded.
func (s *DiagramService) RemoveTable(ctx context.Context, tableID string, opts ...MutationOption) *Pending {
	o := applyOptions(opts)

	tables := s.store.Tables()
	var removed *models.Table
	kept := make([]models.Table, 0, len(tables))
	for _, t := range tables {
		if t.ID == tableID {
			cp := t.Clone()
			removed = &cp
			continue
		}
		kept = append(kept, t)
	}
	if removed != nil {
		if err := s.store.SetTables(kept); err != nil {
			return resolvedPending(err)
		}
	}

	diagramID := s.store.ID()
	p := s.persist(ctx, "remove_table", func(ctx context.Context) error {
		return s.storage.DeleteTable(ctx, diagramID, tableID)
	})
	if removed == nil {
		return p
	}
	s.record(o, history.Action{
		Op:   history.OpRemoveTable,
		Redo: removeTablePayload{TableID: tableID},
		Undo: addTablePayload{Table: *removed},
	})
	return p
}

// UpdateTablesState reconciles the whole table sequence against the
// partial-update set returned by fn: matched entries are merged onto
// the existing tables, ids absent from the result are deletions, and
// unknown ids are dropped.
func (s *DiagramService) UpdateTablesState(ctx context.Context, fn func(tables []models.Table) []models.TableUpdate, opts ...MutationOption) (*Pending, error) {
	current := s.store.Tables()
	updates := fn(models.CloneTables(current))

	byID := make(map[string]models.Table, len(current))
	for _, t := range current {
		byID[t.ID] = t
	}

	next := make([]models.Table, 0, len(updates))
	for _, u := range updates {
		t, ok := byID[u.ID]
		if !ok {
			continue
		}
		merged := t.Clone()
		u.Patch.ApplyTo(&merged)
		next = append(next, merged)
	}
	return s.replaceTables(ctx, next, opts...)
}

// replaceTables swaps in a full table sequence and reconciles storage
// against it: one update per surviving table, an insert per new table
// and a delete per dropped one, all joined into a single completion.
func (s *DiagramService) replaceTables(ctx context.Context, next []models.Table, opts ...MutationOption) (*Pending, error) {
	o := applyOptions(opts)

	before := s.store.Tables()
	if err := s.store.SetTables(next); err != nil {
		return nil, fmt.Errorf("failed to replace tables: %w", err)
	}
	after := models.CloneTables(next)

	beforeIDs := make(map[string]struct{}, len(before))
	for _, t := range before {
		beforeIDs[t.ID] = struct{}{}
	}
	afterIDs := make(map[string]struct{}, len(after))
	for _, t := range after {
		afterIDs[t.ID] = struct{}{}
	}

	diagramID := s.store.ID()
	p := s.persist(ctx, "update_tables_state", func(ctx context.Context) error {
		var g errgroup.Group
		for _, t := range after {
			if _, existed := beforeIDs[t.ID]; existed {
				g.Go(func() error {
					return s.storage.UpdateTable(ctx, t.ID, fullTablePatch(t))
				})
			} else {
				g.Go(func() error {
					return s.storage.AddTable(ctx, diagramID, t)
				})
			}
		}
		for _, t := range before {
			if _, kept := afterIDs[t.ID]; !kept {
				g.Go(func() error {
					return s.storage.DeleteTable(ctx, diagramID, t.ID)
				})
			}
		}
		return g.Wait()
	})
	s.record(o, history.Action{
		Op:   history.OpUpdateTablesState,
		Redo: tablesStatePayload{Tables: after},
		Undo: tablesStatePayload{Tables: before},
	})
	return p, nil
}
