package services

import (
	"context"
	"fmt"

	"schemacanvas/internal/history"
	"schemacanvas/internal/models"
	"schemacanvas/internal/utils"
)

// Field mutations apply in memory against the owning table, then
// persist by re-reading that table from storage and writing back the
// complete field sequence. Writing the whole sequence keeps storage
// convergent even when individual writes race or fail.

// CreateField appends a field with generated defaults: a counted name,
// bigint, nullable.
func (s *DiagramService) CreateField(ctx context.Context, tableID string, opts ...MutationOption) (models.Field, *Pending, error) {
	t, ok := s.store.GetTable(tableID)
	if !ok {
		return models.Field{}, nil, fmt.Errorf("table %s: %w", tableID, models.ErrNotFound)
	}

	f := models.Field{
		Name:     utils.DefaultName("field", len(t.Fields)),
		Type:     "bigint",
		Nullable: true,
	}
	f.Prepare()

	p, err := s.AddField(ctx, tableID, f, opts...)
	if err != nil {
		return models.Field{}, nil, err
	}
	return f, p, nil
}

// AddField appends a caller-built field to a table.
func (s *DiagramService) AddField(ctx context.Context, tableID string, field models.Field, opts ...MutationOption) (*Pending, error) {
	o := applyOptions(opts)
	field.Prepare()

	tables := s.store.Tables()
	found := false
	for i := range tables {
		if tables[i].ID != tableID {
			continue
		}
		for _, f := range tables[i].Fields {
			if f.ID == field.ID {
				return nil, fmt.Errorf("field %q: %w", field.ID, models.ErrDuplicateID)
			}
		}
		tables[i].Fields = append(tables[i].Fields, field)
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("table %s: %w", tableID, models.ErrNotFound)
	}
	if err := s.store.SetTables(tables); err != nil {
		return nil, err
	}

	p := s.persist(ctx, "add_field", func(ctx context.Context) error {
		return s.persistFields(ctx, tableID, func(fields []models.Field) []models.Field {
			return append(fields, field)
		})
	})
	s.record(o, history.Action{
		Op:   history.OpAddField,
		Redo: addFieldPayload{TableID: tableID, Field: field},
		Undo: removeFieldPayload{TableID: tableID, FieldID: field.ID},
	})
	return p, nil
}

// UpdateField merges a partial update onto one field. A missing table
// or field is a local no-op: nothing is persisted or recorded.
func (s *DiagramService) UpdateField(ctx context.Context, tableID, fieldID string, patch models.FieldPatch, opts ...MutationOption) *Pending {
	o := applyOptions(opts)

	tables := s.store.Tables()
	var prior *models.Field
	for i := range tables {
		if tables[i].ID != tableID {
			continue
		}
		for j := range tables[i].Fields {
			if tables[i].Fields[j].ID == fieldID {
				cp := tables[i].Fields[j]
				prior = &cp
				patch.ApplyTo(&tables[i].Fields[j])
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

	p := s.persist(ctx, "update_field", func(ctx context.Context) error {
		return s.persistFields(ctx, tableID, func(fields []models.Field) []models.Field {
			for i := range fields {
				if fields[i].ID == fieldID {
					patch.ApplyTo(&fields[i])
				}
			}
			return fields
		})
	})
	s.record(o, history.Action{
		Op:   history.OpUpdateField,
		Redo: updateFieldPayload{TableID: tableID, FieldID: fieldID, Patch: patch},
		Undo: updateFieldPayload{TableID: tableID, FieldID: fieldID, Patch: inverseFieldPatch(patch, *prior)},
	})
	return p
}

// RemoveField drops a field. Indexes and relationships referencing it
// keep their ids and dangle.
func (s *DiagramService) RemoveField(ctx context.Context, tableID, fieldID string, opts ...MutationOption) *Pending {
	o := applyOptions(opts)

	tables := s.store.Tables()
	var removed *models.Field
	for i := range tables {
		if tables[i].ID != tableID {
			continue
		}
		kept := make([]models.Field, 0, len(tables[i].Fields))
		for _, f := range tables[i].Fields {
			if f.ID == fieldID {
				cp := f
				removed = &cp
				continue
			}
			kept = append(kept, f)
		}
		tables[i].Fields = kept
		break
	}
	if removed == nil {
		return resolvedPending(nil)
	}
	if err := s.store.SetTables(tables); err != nil {
		return resolvedPending(err)
	}

	p := s.persist(ctx, "remove_field", func(ctx context.Context) error {
		return s.persistFields(ctx, tableID, func(fields []models.Field) []models.Field {
			kept := make([]models.Field, 0, len(fields))
			for _, f := range fields {
				if f.ID != fieldID {
					kept = append(kept, f)
				}
			}
			return kept
		})
	})
	s.record(o, history.Action{
		Op:   history.OpRemoveField,
		Redo: removeFieldPayload{TableID: tableID, FieldID: fieldID},
		Undo: addFieldPayload{TableID: tableID, Field: *removed},
	})
	return p
}

// persistFields re-reads the owning table from storage, recomputes the
// full field sequence with transform and writes it back whole. A table
// missing from storage aborts quietly; the next table-level write will
// reconcile it.
func (s *DiagramService) persistFields(ctx context.Context, tableID string, transform func([]models.Field) []models.Field) error {
	t, err := s.storage.GetTable(ctx, s.store.ID(), tableID)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}
	fields := transform(t.Fields)
	return s.storage.UpdateTable(ctx, tableID, models.TablePatch{Fields: &fields})
}
