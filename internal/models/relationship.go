package models

import (
	"time"

	"github.com/google/uuid"
)

// RelationshipType is the cardinality of a relationship.
type RelationshipType string

const (
	OneToOne   RelationshipType = "one_to_one"
	OneToMany  RelationshipType = "one_to_many"
	ManyToOne  RelationshipType = "many_to_one"
	ManyToMany RelationshipType = "many_to_many"
)

// Relationship links a source field to a target field across tables.
// All four endpoint ids are weak references; removing a referenced
// table or field leaves the relationship dangling rather than cascading.
type Relationship struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	SourceTableID string           `json:"source_table_id"`
	SourceFieldID string           `json:"source_field_id"`
	TargetTableID string           `json:"target_table_id"`
	TargetFieldID string           `json:"target_field_id"`
	Type          RelationshipType `json:"type"`
	CreatedAt     time.Time        `json:"created_at"`
}

func (r *Relationship) Prepare() {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Type == "" {
		r.Type = OneToOne
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

func CloneRelationships(rels []Relationship) []Relationship {
	if rels == nil {
		return nil
	}
	out := make([]Relationship, len(rels))
	copy(out, rels)
	return out
}

// RelationshipPatch is a partial update of a relationship.
type RelationshipPatch struct {
	Name          *string           `json:"name,omitempty"`
	SourceTableID *string           `json:"source_table_id,omitempty"`
	SourceFieldID *string           `json:"source_field_id,omitempty"`
	TargetTableID *string           `json:"target_table_id,omitempty"`
	TargetFieldID *string           `json:"target_field_id,omitempty"`
	Type          *RelationshipType `json:"type,omitempty"`
}

func (p RelationshipPatch) ApplyTo(r *Relationship) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.SourceTableID != nil {
		r.SourceTableID = *p.SourceTableID
	}
	if p.SourceFieldID != nil {
		r.SourceFieldID = *p.SourceFieldID
	}
	if p.TargetTableID != nil {
		r.TargetTableID = *p.TargetTableID
	}
	if p.TargetFieldID != nil {
		r.TargetFieldID = *p.TargetFieldID
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
}
