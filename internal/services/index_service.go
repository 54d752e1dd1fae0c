package services

import (
	"context"
	"fmt"

	"schemacanvas/internal/history"
	"schemacanvas/internal/models"
	"schemacanvas/internal/utils"
)

// Index mutations mirror field mutations: apply in memory, then write
// back the owning table's complete index sequence.

// CreateIndex appends a non-unique index with a counted name and no
// covered fields.
func (s *DiagramService) CreateIndex(ctx context.Context, tableID string, opts ...MutationOption) (models.Index, *Pending, error) {
	t, ok := s.store.GetTable(tableID)
	if !ok {
		return models.Index{}, nil, fmt.Errorf("table %s: %w", tableID, models.ErrNotFound)
	}

	idx := models.Index{
		Name: utils.DefaultName("index", len(t.Indexes)),
	}
	idx.Prepare()

	p, err := s.AddIndex(ctx, tableID, idx, opts...)
	if err != nil {
		return models.Index{}, nil, err
	}
	return idx, p, nil
}

// AddIndex appends a caller-built index to a table. Covered field ids
// are not validated; dangling references are tolerated.
func (s *DiagramService) AddIndex(ctx context.Context, tableID string, index models.Index, opts ...MutationOption) (*Pending, error) {
	o := applyOptions(opts)
	index.Prepare()

	tables := s.store.Tables()
	found := false
	for i := range tables {
		if tables[i].ID != tableID {
			continue
		}
		for _, idx := range tables[i].Indexes {
			if idx.ID == index.ID {
				return nil, fmt.Errorf("index %q: %w", index.ID, models.ErrDuplicateID)
			}
		}
		tables[i].Indexes = append(tables[i].Indexes, index.Clone())
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("table %s: %w", tableID, models.ErrNotFound)
	}
	if err := s.store.SetTables(tables); err != nil {
		return nil, err
	}

	p := s.persist(ctx, "add_index", func(ctx context.Context) error {
		return s.persistIndexes(ctx, tableID, func(indexes []models.Index) []models.Index {
			return append(indexes, index)
		})
	})
	s.record(o, history.Action{
		Op:   history.OpAddIndex,
		Redo: addIndexPayload{TableID: tableID, Index: index.Clone()},
		Undo: removeIndexPayload{TableID: tableID, IndexID: index.ID},
	})
	return p, nil
}

// UpdateIndex merges a partial update onto one index. A missing table
// or index is a local no-op.
func (s *DiagramService) UpdateIndex(ctx context.Context, tableID, indexID string, patch models.IndexPatch, opts ...MutationOption) *Pending {
	o := applyOptions(opts)

	tables := s.store.Tables()
	var prior *models.Index
	for i := range tables {
		if tables[i].ID != tableID {
			continue
		}
		for j := range tables[i].Indexes {
			if tables[i].Indexes[j].ID == indexID {
				cp := tables[i].Indexes[j].Clone()
				prior = &cp
				patch.ApplyTo(&tables[i].Indexes[j])
				break
			}
		}
		break
	}
	if prior == nil {
		return resolvedPending(nil)
	}
	if err := s.store.SetTables(tables); err != nil {
		return resolvedPending(err)
	}

	p := s.persist(ctx, "update_index", func(ctx context.Context) error {
		return s.persistIndexes(ctx, tableID, func(indexes []models.Index) []models.Index {
			for i := range indexes {
				if indexes[i].ID == indexID {
					patch.ApplyTo(&indexes[i])
				}
			}
			return indexes
		})
	})
	s.record(o, history.Action{
		Op:   history.OpUpdateIndex,
		Redo: updateIndexPayload{TableID: tableID, IndexID: indexID, Patch: patch},
		Undo: updateIndexPayload{TableID: tableID, IndexID: indexID, Patch: inverseIndexPatch(patch, *prior)},
	})
	return p
}

// RemoveIndex drops an index from a table.
func (s *DiagramService) RemoveIndex(ctx context.Context, tableID, indexID string, opts ...MutationOption) *Pending {
	o := applyOptions(opts)

	tables := s.store.Tables()
	var removed *models.Index
	for i := range tables {
		if tables[i].ID != tableID {
			continue
		}
		kept := make([]models.Index, 0, len(tables[i].Indexes))
		for _, idx := range tables[i].Indexes {
			if idx.ID == indexID {
				cp := idx.Clone()
				removed = &cp
				continue
			}
			kept = append(kept, idx)
		}
		tables[i].Indexes = kept
		break
	}
	if removed == nil {
		return resolvedPending(nil)
	}
	if err := s.store.SetTables(tables); err != nil {
		return resolvedPending(err)
	}

	p := s.persist(ctx, "remove_index", func(ctx context.Context) error {
		return s.persistIndexes(ctx, tableID, func(indexes []models.Index) []models.Index {
			kept := make([]models.Index, 0, len(indexes))
			for _, idx := range indexes {
				if idx.ID != indexID {
					kept = append(kept, idx)
				}
			}
			return kept
		})
	})
	s.record(o, history.Action{
		Op:   history.OpRemoveIndex,
		Redo: removeIndexPayload{TableID: tableID, IndexID: indexID},
		Undo: addIndexPayload{TableID: tableID, Index: *removed},
	})
	return p
}

// persistIndexes is the index twin of persistFields.
func (s *DiagramService) persistIndexes(ctx context.Context, tableID string, transform func([]models.Index) []models.Index) error {
	t, err := s.storage.GetTable(ctx, s.store.ID(), tableID)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}
	indexes := transform(t.Indexes)
	return s.storage.UpdateTable(ctx, tableID, models.TablePatch{Indexes: &indexes})
}
