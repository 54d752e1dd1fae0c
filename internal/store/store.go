// Package store holds the in-memory authoritative state of the single
// open diagram. Only the mutation engine writes to it, always by
// whole-entity or whole-sequence replacement; readers get deep copies.
package store

import (
	"fmt"
	"sync"

	"schemacanvas/internal/models"
)

type Store struct {
	mu      sync.RWMutex
	diagram models.Diagram
}

func New(diagram models.Diagram) *Store {
	return &Store{diagram: diagram.Clone()}
}

// Replace atomically swaps in a whole diagram, e.g. on load.
func (s *Store) Replace(diagram models.Diagram) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagram = diagram.Clone()
}

// Snapshot returns a deep copy of the current diagram.
func (s *Store) Snapshot() models.Diagram {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.diagram.Clone()
}

func (s *Store) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.diagram.ID
}

func (s *Store) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.diagram.Name
}

func (s *Store) DatabaseType() models.DatabaseType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.diagram.DatabaseType
}

func (s *Store) Tables() []models.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneTables(s.diagram.Tables)
}

func (s *Store) Relationships() []models.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneRelationships(s.diagram.Relationships)
}

// GetTable retrieves a table by id from the current diagram.
func (s *Store) GetTable(id string) (models.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.diagram.Tables {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return models.Table{}, false
}

// GetField retrieves a field by id within a table.
func (s *Store) GetField(tableID, fieldID string) (models.Field, bool) {
	t, ok := s.GetTable(tableID)
	if !ok {
		return models.Field{}, false
	}
	for _, f := range t.Fields {
		if f.ID == fieldID {
			return f, true
		}
	}
	return models.Field{}, false
}

// GetIndex retrieves an index by id within a table.
func (s *Store) GetIndex(tableID, indexID string) (models.Index, bool) {
	t, ok := s.GetTable(tableID)
	if !ok {
		return models.Index{}, false
	}
	for _, idx := range t.Indexes {
		if idx.ID == indexID {
			return idx.Clone(), true
		}
	}
	return models.Index{}, false
}

// GetRelationship retrieves a relationship by id.
func (s *Store) GetRelationship(id string) (models.Relationship, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.diagram.Relationships {
		if r.ID == id {
			return r, true
		}
	}
	return models.Relationship{}, false
}

// SetMeta applies a metadata patch to the diagram.
func (s *Store) SetMeta(patch models.DiagramPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	patch.ApplyTo(&s.diagram)
}

// SetTables replaces the whole table sequence. It rejects duplicate ids
// so a bad transformation cannot corrupt the store.
func (s *Store) SetTables(tables []models.Table) error {
	if err := checkUniqueTableIDs(tables); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagram.Tables = models.CloneTables(tables)
	return nil
}

// SetRelationships replaces the whole relationship sequence.
func (s *Store) SetRelationships(rels []models.Relationship) error {
	if err := checkUniqueRelationshipIDs(rels); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagram.Relationships = models.CloneRelationships(rels)
	return nil
}

func checkUniqueTableIDs(tables []models.Table) error {
	seen := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("table %q: %w", t.ID, models.ErrDuplicateID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

func checkUniqueRelationshipIDs(rels []models.Relationship) error {
	seen := make(map[string]struct{}, len(rels))
	for _, r := range rels {
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("relationship %q: %w", r.ID, models.ErrDuplicateID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
