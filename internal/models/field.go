package models

import (
	"time"

	"github.com/google/uuid"
)

// Field is a table column. Its id is unique within the owning table;
// the owning table is implicit in containment and never stored here.
type Field struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Unique     bool      `json:"unique"`
	Nullable   bool      `json:"nullable"`
	PrimaryKey bool      `json:"primary_key"`
	CreatedAt  time.Time `json:"created_at"`
}

func (f *Field) Prepare() {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
}

func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// FieldPatch is a partial update of a field.
type FieldPatch struct {
	Name       *string `json:"name,omitempty"`
	Type       *string `json:"type,omitempty"`
	Unique     *bool   `json:"unique,omitempty"`
	Nullable   *bool   `json:"nullable,omitempty"`
	PrimaryKey *bool   `json:"primary_key,omitempty"`
}

func (p FieldPatch) ApplyTo(f *Field) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Type != nil {
		f.Type = *p.Type
	}
	if p.Unique != nil {
		f.Unique = *p.Unique
	}
	if p.Nullable != nil {
		f.Nullable = *p.Nullable
	}
	if p.PrimaryKey != nil {
		f.PrimaryKey = *p.PrimaryKey
	}
}
