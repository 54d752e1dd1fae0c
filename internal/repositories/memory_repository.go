package repositories

import (
	"context"
	"sync"

	"schemacanvas/internal/models"
)

// MemoryRepository is the in-process storage backend. It is the default
// driver and the backend the test suites run against.
type MemoryRepository struct {
	mu       sync.Mutex
	diagrams map[string]models.Diagram
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{diagrams: make(map[string]models.Diagram)}
}

func (r *MemoryRepository) GetDiagram(_ context.Context, id string, opts GetDiagramOptions) (*models.Diagram, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.diagrams[id]
	if !ok {
		return nil, nil
	}
	cp := d.Clone()
	if !opts.IncludeTables {
		cp.Tables = nil
	}
	if !opts.IncludeRelationships {
		cp.Relationships = nil
	}
	return &cp, nil
}

func (r *MemoryRepository) AddDiagram(_ context.Context, diagram models.Diagram) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagrams[diagram.ID] = diagram.Clone()
	return nil
}

func (r *MemoryRepository) UpdateDiagram(_ context.Context, id string, patch models.DiagramPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.diagrams[id]
	if !ok {
		return nil
	}
	patch.ApplyTo(&d)
	if d.ID != id {
		delete(r.diagrams, id)
	}
	r.diagrams[d.ID] = d
	return nil
}

func (r *MemoryRepository) DeleteDiagram(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.diagrams, id)
	return nil
}

func (r *MemoryRepository) ListDiagrams(_ context.Context) ([]models.Diagram, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Diagram, 0, len(r.diagrams))
	for _, d := range r.diagrams {
		meta := d.Clone()
		meta.Tables = nil
		meta.Relationships = nil
		out = append(out, meta)
	}
	return out, nil
}

func (r *MemoryRepository) GetTable(_ context.Context, diagramID, tableID string) (*models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.diagrams[diagramID]
	if !ok {
		return nil, nil
	}
	for _, t := range d.Tables {
		if t.ID == tableID {
			cp := t.Clone()
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) AddTable(_ context.Context, diagramID string, table models.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.diagrams[diagramID]
	if !ok {
		return nil
	}
	d.Tables = append(d.Tables, table.Clone())
	r.diagrams[diagramID] = d
	return nil
}

func (r *MemoryRepository) UpdateTable(_ context.Context, tableID string, patch models.TablePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Tables are updated by id alone, so scan every diagram.
	for id, d := range r.diagrams {
		for i := range d.Tables {
			if d.Tables[i].ID == tableID {
				patch.ApplyTo(&d.Tables[i])
				r.diagrams[id] = d
				return nil
			}
		}
	}
	return nil
}

func (r *MemoryRepository) DeleteTable(_ context.Context, diagramID, tableID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.diagrams[diagramID]
	if !ok {
		return nil
	}
	kept := d.Tables[:0:0]
	for _, t := range d.Tables {
		if t.ID != tableID {
			kept = append(kept, t)
		}
	}
	d.Tables = kept
	r.diagrams[diagramID] = d
	return nil
}

func (r *MemoryRepository) AddRelationship(_ context.Context, diagramID string, rel models.Relationship) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.diagrams[diagramID]
	if !ok {
		return nil
	}
	d.Relationships = append(d.Relationships, rel)
	r.diagrams[diagramID] = d
	return nil
}

func (r *MemoryRepository) UpdateRelationship(_ context.Context, id string, patch models.RelationshipPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for did, d := range r.diagrams {
		for i := range d.Relationships {
			if d.Relationships[i].ID == id {
				patch.ApplyTo(&d.Relationships[i])
				r.diagrams[did] = d
				return nil
			}
		}
	}
	return nil
}

func (r *MemoryRepository) DeleteRelationship(_ context.Context, diagramID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.diagrams[diagramID]
	if !ok {
		return nil
	}
	kept := d.Relationships[:0:0]
	for _, rel := range d.Relationships {
		if rel.ID != id {
			kept = append(kept, rel)
		}
	}
	d.Relationships = kept
	r.diagrams[diagramID] = d
	return nil
}
