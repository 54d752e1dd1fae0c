package models

import (
	"time"

	"github.com/google/uuid"
)

// Table is a diagrammed database table. It owns its field and index
// sequences; relationships refer to it by id only.
type Table struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Fields    []Field   `json:"fields"`
	Indexes   []Index   `json:"indexes"`
	Color     string    `json:"color"`
	IsView    bool      `json:"is_view"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Table) Prepare() {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
}

func (t Table) Clone() Table {
	cp := t
	cp.Fields = CloneFields(t.Fields)
	cp.Indexes = CloneIndexes(t.Indexes)
	return cp
}

func CloneTables(tables []Table) []Table {
	if tables == nil {
		return nil
	}
	out := make([]Table, len(tables))
	for i, t := range tables {
		out[i] = t.Clone()
	}
	return out
}

// TablePatch is a partial update of a table. A nil Fields/Indexes
// pointer leaves the sequence untouched; a non-nil pointer replaces the
// whole sequence.
type TablePatch struct {
	Name    *string  `json:"name,omitempty"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Color   *string  `json:"color,omitempty"`
	IsView  *bool    `json:"is_view,omitempty"`
	Fields  *[]Field `json:"fields,omitempty"`
	Indexes *[]Index `json:"indexes,omitempty"`
}

func (p TablePatch) ApplyTo(t *Table) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.X != nil {
		t.X = *p.X
	}
	if p.Y != nil {
		t.Y = *p.Y
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.IsView != nil {
		t.IsView = *p.IsView
	}
	if p.Fields != nil {
		t.Fields = CloneFields(*p.Fields)
	}
	if p.Indexes != nil {
		t.Indexes = CloneIndexes(*p.Indexes)
	}
}

// TableUpdate pairs a table id with the patch to merge onto it. Used by
// bulk table reconciliation: ids absent from the update set are
// deletions.
type TableUpdate struct {
	ID    string
	Patch TablePatch
}
