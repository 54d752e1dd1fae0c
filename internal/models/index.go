package models

import (
	"time"

	"github.com/google/uuid"
)

// Index covers an ordered list of field ids within its owning table.
// FieldIDs are weak references: deleting a covered field does not clean
// them up, and consumers must tolerate dangling ids.
type Index struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FieldIDs  []string  `json:"field_ids"`
	Unique    bool      `json:"unique"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Index) Prepare() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}
}

func (i Index) Clone() Index {
	cp := i
	cp.FieldIDs = append([]string(nil), i.FieldIDs...)
	return cp
}

func CloneIndexes(indexes []Index) []Index {
	if indexes == nil {
		return nil
	}
	out := make([]Index, len(indexes))
	for n, idx := range indexes {
		out[n] = idx.Clone()
	}
	return out
}

// IndexPatch is a partial update of an index. A non-nil FieldIDs
// replaces the whole id list.
type IndexPatch struct {
	Name     *string   `json:"name,omitempty"`
	FieldIDs *[]string `json:"field_ids,omitempty"`
	Unique   *bool     `json:"unique,omitempty"`
}

func (p IndexPatch) ApplyTo(i *Index) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.FieldIDs != nil {
		i.FieldIDs = append([]string(nil), *p.FieldIDs...)
	}
	if p.Unique != nil {
		i.Unique = *p.Unique
	}
}
