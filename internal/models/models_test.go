package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagramPrepareDefaults(t *testing.T) {
	var d Diagram
	d.Prepare()

	assert.NotEmpty(t, d.ID)
	assert.Equal(t, DatabaseTypeGeneric, d.DatabaseType)
	assert.False(t, d.CreatedAt.IsZero())
	assert.False(t, d.UpdatedAt.IsZero())

	// Prepare never overwrites values already set.
	id := d.ID
	d.Prepare()
	assert.Equal(t, id, d.ID)
}

func TestRelationshipPrepareDefaultsType(t *testing.T) {
	var r Relationship
	r.Prepare()

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, OneToOne, r.Type)

	r2 := Relationship{Type: ManyToMany}
	r2.Prepare()
	assert.Equal(t, ManyToMany, r2.Type)
}

func TestTableCloneIsDeep(t *testing.T) {
	orig := Table{
		ID:      "t1",
		Fields:  []Field{{ID: "f1", Name: "id"}},
		Indexes: []Index{{ID: "i1", FieldIDs: []string{"f1"}}},
	}

	cp := orig.Clone()
	cp.Fields[0].Name = "mutated"
	cp.Indexes[0].FieldIDs[0] = "mutated"

	assert.Equal(t, "id", orig.Fields[0].Name)
	assert.Equal(t, "f1", orig.Indexes[0].FieldIDs[0])
}

func TestTablePatchAppliesOnlyPresentFields(t *testing.T) {
	tab := Table{ID: "t1", Name: "users", X: 10, Y: 20, Color: "#fff"}

	name := "accounts"
	x := 99.0
	TablePatch{Name: &name, X: &x}.ApplyTo(&tab)

	assert.Equal(t, "accounts", tab.Name)
	assert.Equal(t, 99.0, tab.X)
	assert.Equal(t, 20.0, tab.Y)
	assert.Equal(t, "#fff", tab.Color)
}

func TestTablePatchReplacesWholeSequences(t *testing.T) {
	tab := Table{
		ID:     "t1",
		Fields: []Field{{ID: "f1"}, {ID: "f2"}},
	}

	next := []Field{{ID: "f3"}}
	TablePatch{Fields: &next}.ApplyTo(&tab)

	require.Len(t, tab.Fields, 1)
	assert.Equal(t, "f3", tab.Fields[0].ID)

	// An empty (non-nil) sequence still replaces.
	empty := []Field{}
	TablePatch{Fields: &empty}.ApplyTo(&tab)
	assert.Empty(t, tab.Fields)
}

func TestFieldPatchZeroValuesApply(t *testing.T) {
	f := Field{ID: "f1", Name: "id", PrimaryKey: true, Unique: true}

	pk := false
	FieldPatch{PrimaryKey: &pk}.ApplyTo(&f)

	assert.False(t, f.PrimaryKey)
	assert.True(t, f.Unique)
}

func TestIndexPatchReplacesFieldIDs(t *testing.T) {
	idx := Index{ID: "i1", FieldIDs: []string{"a", "b"}}

	next := []string{"c"}
	IndexPatch{FieldIDs: &next}.ApplyTo(&idx)

	assert.Equal(t, []string{"c"}, idx.FieldIDs)

	// The index must not alias the caller's slice.
	next[0] = "mutated"
	assert.Equal(t, []string{"c"}, idx.FieldIDs)
}

func TestDiagramPatchRotatesID(t *testing.T) {
	d := Diagram{ID: "old", Name: "n"}

	id := "new"
	DiagramPatch{ID: &id}.ApplyTo(&d)

	assert.Equal(t, "new", d.ID)
	assert.Equal(t, "n", d.Name)
}
