package repositories

import (
	"context"
	"testing"

	"schemacanvas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDiagram(t *testing.T, r *MemoryRepository) models.Diagram {
	t.Helper()
	d := models.Diagram{
		ID:   "d1",
		Name: "demo",
		Tables: []models.Table{
			{ID: "t1", Name: "users", Fields: []models.Field{{ID: "f1", Name: "id"}}},
		},
		Relationships: []models.Relationship{
			{ID: "r1", Name: "fk", SourceTableID: "t1", TargetTableID: "t1"},
		},
	}
	d.Prepare()
	require.NoError(t, r.AddDiagram(context.Background(), d))
	return d
}

func TestMemoryGetDiagramOptions(t *testing.T) {
	r := NewMemoryRepository()
	seedDiagram(t, r)
	ctx := context.Background()

	d, err := r.GetDiagram(ctx, "d1", GetDiagramOptions{})
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Nil(t, d.Tables)
	assert.Nil(t, d.Relationships)

	d, err = r.GetDiagram(ctx, "d1", GetDiagramOptions{IncludeTables: true, IncludeRelationships: true})
	require.NoError(t, err)
	assert.Len(t, d.Tables, 1)
	assert.Len(t, d.Relationships, 1)
}

func TestMemoryMissingLookupsReturnNilNil(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	d, err := r.GetDiagram(ctx, "nope", GetDiagramOptions{})
	require.NoError(t, err)
	assert.Nil(t, d)

	tab, err := r.GetTable(ctx, "nope", "t1")
	require.NoError(t, err)
	assert.Nil(t, tab)

	// Writes against missing entities are remote no-ops, not errors.
	assert.NoError(t, r.UpdateDiagram(ctx, "nope", models.DiagramPatch{}))
	assert.NoError(t, r.UpdateTable(ctx, "nope", models.TablePatch{}))
	assert.NoError(t, r.DeleteTable(ctx, "nope", "t1"))
	assert.NoError(t, r.DeleteRelationship(ctx, "nope", "r1"))
}

func TestMemoryUpdateTableKeyedByTableIDAlone(t *testing.T) {
	r := NewMemoryRepository()
	seedDiagram(t, r)
	ctx := context.Background()

	name := "accounts"
	require.NoError(t, r.UpdateTable(ctx, "t1", models.TablePatch{Name: &name}))

	tab, err := r.GetTable(ctx, "d1", "t1")
	require.NoError(t, err)
	require.NotNil(t, tab)
	assert.Equal(t, "accounts", tab.Name)
}

func TestMemoryUpdateTableReplacesFieldSequence(t *testing.T) {
	r := NewMemoryRepository()
	seedDiagram(t, r)
	ctx := context.Background()

	fields := []models.Field{{ID: "f2", Name: "email"}, {ID: "f3", Name: "age"}}
	require.NoError(t, r.UpdateTable(ctx, "t1", models.TablePatch{Fields: &fields}))

	tab, err := r.GetTable(ctx, "d1", "t1")
	require.NoError(t, err)
	require.Len(t, tab.Fields, 2)
	assert.Equal(t, "email", tab.Fields[0].Name)
}

func TestMemoryDiagramIDRotation(t *testing.T) {
	r := NewMemoryRepository()
	seedDiagram(t, r)
	ctx := context.Background()

	id := "d2"
	require.NoError(t, r.UpdateDiagram(ctx, "d1", models.DiagramPatch{ID: &id}))

	old, err := r.GetDiagram(ctx, "d1", GetDiagramOptions{})
	require.NoError(t, err)
	assert.Nil(t, old)

	moved, err := r.GetDiagram(ctx, "d2", GetDiagramOptions{IncludeTables: true})
	require.NoError(t, err)
	require.NotNil(t, moved)
	assert.Len(t, moved.Tables, 1)
}

func TestMemoryRelationshipLifecycle(t *testing.T) {
	r := NewMemoryRepository()
	seedDiagram(t, r)
	ctx := context.Background()

	rel := models.Relationship{ID: "r2", Name: "other_fk"}
	rel.Prepare()
	require.NoError(t, r.AddRelationship(ctx, "d1", rel))

	name := "renamed_fk"
	require.NoError(t, r.UpdateRelationship(ctx, "r2", models.RelationshipPatch{Name: &name}))

	d, err := r.GetDiagram(ctx, "d1", GetDiagramOptions{IncludeRelationships: true})
	require.NoError(t, err)
	require.Len(t, d.Relationships, 2)
	assert.Equal(t, "renamed_fk", d.Relationships[1].Name)

	require.NoError(t, r.DeleteRelationship(ctx, "d1", "r2"))
	d, err = r.GetDiagram(ctx, "d1", GetDiagramOptions{IncludeRelationships: true})
	require.NoError(t, err)
	assert.Len(t, d.Relationships, 1)
}

func TestMemoryCopiesAreIsolated(t *testing.T) {
	r := NewMemoryRepository()
	seeded := seedDiagram(t, r)
	ctx := context.Background()

	tab, err := r.GetTable(ctx, "d1", "t1")
	require.NoError(t, err)
	tab.Fields[0].Name = "mutated"

	again, err := r.GetTable(ctx, "d1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "id", again.Fields[0].Name)

	// Mutating the seeded value after AddDiagram must not leak in.
	seeded.Tables[0].Name = "mutated"
	again, err = r.GetTable(ctx, "d1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "users", again.Name)
}

func TestMemoryListDiagramsReturnsMetaOnly(t *testing.T) {
	r := NewMemoryRepository()
	seedDiagram(t, r)

	list, err := r.ListDiagrams(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "d1", list[0].ID)
	assert.Nil(t, list[0].Tables)
}
