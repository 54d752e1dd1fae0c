package services

import (
	"context"
	"testing"

	"schemacanvas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoRedoOnEmptyStacks(t *testing.T) {
	_, undo, _ := seedEngine(t)
	ctx := context.Background()

	_, err := undo.Undo(ctx)
	assert.ErrorIs(t, err, ErrNothingToUndo)
	_, err = undo.Redo(ctx)
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestUndoRedoTableRename(t *testing.T) {
	engine, undo, _ := seedEngine(t)
	ctx := context.Background()

	tab, p, err := engine.CreateTable(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))

	name := "users"
	require.NoError(t, engine.UpdateTable(ctx, tab.ID, models.TablePatch{Name: &name}).Wait(ctx))

	p2, err := undo.Undo(ctx)
	require.NoError(t, err)
	require.NoError(t, p2.Wait(ctx))
	got, _ := engine.GetTable(tab.ID)
	assert.Equal(t, "table_1", got.Name)

	p3, err := undo.Redo(ctx)
	require.NoError(t, err)
	require.NoError(t, p3.Wait(ctx))
	got, _ = engine.GetTable(tab.ID)
	assert.Equal(t, "users", got.Name)
}

func TestUndoRestoresRemovedTableWithContents(t *testing.T) {
	engine, undo, fake := seedEngine(t)
	ctx := context.Background()

	tab, p, err := engine.CreateTable(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))
	_, p2, err := engine.CreateField(ctx, tab.ID)
	require.NoError(t, err)
	require.NoError(t, p2.Wait(ctx))

	require.NoError(t, engine.RemoveTable(ctx, tab.ID).Wait(ctx))
	_, ok := engine.GetTable(tab.ID)
	require.False(t, ok)

	p3, err := undo.Undo(ctx)
	require.NoError(t, err)
	require.NoError(t, p3.Wait(ctx))

	restored, ok := engine.GetTable(tab.ID)
	require.True(t, ok)
	assert.Len(t, restored.Fields, 2)
	assert.Equal(t, tab.CreatedAt.Unix(), restored.CreatedAt.Unix())

	stored, err := fake.GetTable(ctx, engine.Diagram().ID, tab.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestFieldScenarioUndoRedo(t *testing.T) {
	engine, undo, _ := seedEngine(t)
	ctx := context.Background()

	tab, p, err := engine.CreateTable(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))
	idField := tab.Fields[0]

	email, p2, err := engine.CreateField(ctx, tab.ID)
	require.NoError(t, err)
	require.NoError(t, p2.Wait(ctx))
	name := "email"
	require.NoError(t, engine.UpdateField(ctx, tab.ID, email.ID, models.FieldPatch{Name: &name}).Wait(ctx))

	require.NoError(t, engine.RemoveField(ctx, tab.ID, idField.ID).Wait(ctx))
	got, _ := engine.GetTable(tab.ID)
	require.Len(t, got.Fields, 1)
	assert.Equal(t, "email", got.Fields[0].Name)

	// Undo the removal: the id field comes back.
	p3, err := undo.Undo(ctx)
	require.NoError(t, err)
	require.NoError(t, p3.Wait(ctx))
	_, ok := engine.GetField(tab.ID, idField.ID)
	assert.True(t, ok)

	// Undo the rename, then the field creation.
	p4, err := undo.Undo(ctx)
	require.NoError(t, err)
	require.NoError(t, p4.Wait(ctx))
	f, _ := engine.GetField(tab.ID, email.ID)
	assert.Equal(t, email.Name, f.Name)

	p5, err := undo.Undo(ctx)
	require.NoError(t, err)
	require.NoError(t, p5.Wait(ctx))
	_, ok = engine.GetField(tab.ID, email.ID)
	assert.False(t, ok)

	// Redo everything back.
	for undo.CanRedo() {
		p, err := undo.Redo(ctx)
		require.NoError(t, err)
		require.NoError(t, p.Wait(ctx))
	}
	got, _ = engine.GetTable(tab.ID)
	require.Len(t, got.Fields, 1)
	assert.Equal(t, "email", got.Fields[0].Name)
}

func TestNewMutationInvalidatesRedoBranch(t *testing.T) {
	engine, undo, _ := seedEngine(t)
	ctx := context.Background()

	tab, p, err := engine.CreateTable(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))

	name := "first"
	require.NoError(t, engine.UpdateTable(ctx, tab.ID, models.TablePatch{Name: &name}).Wait(ctx))

	_, err = undo.Undo(ctx)
	require.NoError(t, err)
	require.True(t, undo.CanRedo())

	// A fresh mutation discards the redo branch.
	other := "second"
	require.NoError(t, engine.UpdateTable(ctx, tab.ID, models.TablePatch{Name: &other}).Wait(ctx))
	assert.False(t, undo.CanRedo())
}

func TestUndoReplayDoesNotRecord(t *testing.T) {
	engine, undo, _ := seedEngine(t)
	ctx := context.Background()

	_, p, err := engine.CreateTable(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))
	require.True(t, undo.CanUndo())

	p2, err := undo.Undo(ctx)
	require.NoError(t, err)
	require.NoError(t, p2.Wait(ctx))

	// The replayed removal must not have pushed a new action.
	assert.False(t, undo.CanUndo())
	assert.True(t, undo.CanRedo())
}

func TestUndoRemoveRelationshipsRestoresExactlyRemoved(t *testing.T) {
	engine, undo, _ := seedEngine(t)
	ctx := context.Background()

	p, err := engine.AddRelationships(ctx, []models.Relationship{
		{ID: "r1"}, {ID: "r2"}, {ID: "r3"},
	})
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))

	require.NoError(t, engine.RemoveRelationships(ctx, []string{"r1", "ghost", "r3"}).Wait(ctx))
	require.Len(t, engine.Diagram().Relationships, 1)

	p2, err := undo.Undo(ctx)
	require.NoError(t, err)
	require.NoError(t, p2.Wait(ctx))

	ids := make(map[string]bool)
	for _, rel := range engine.Diagram().Relationships {
		ids[rel.ID] = true
	}
	assert.Equal(t, map[string]bool{"r1": true, "r2": true, "r3": true}, ids)
}

func TestUndoTablesStateRestoresDroppedTables(t *testing.T) {
	engine, undo, fake := seedEngine(t)
	ctx := context.Background()

	t1, p, err := engine.CreateTable(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))
	t2, p2, err := engine.CreateTable(ctx)
	require.NoError(t, err)
	require.NoError(t, p2.Wait(ctx))

	// Keep only t1.
	p3, err := engine.UpdateTablesState(ctx, func(tables []models.Table) []models.TableUpdate {
		return []models.TableUpdate{{ID: t1.ID}}
	})
	require.NoError(t, err)
	require.NoError(t, p3.Wait(ctx))
	require.Len(t, engine.Diagram().Tables, 1)

	p4, err := undo.Undo(ctx)
	require.NoError(t, err)
	require.NoError(t, p4.Wait(ctx))

	tables := engine.Diagram().Tables
	require.Len(t, tables, 2)
	_, ok := engine.GetTable(t2.ID)
	assert.True(t, ok)

	// The dropped table was re-inserted into storage, not just memory.
	stored, err := fake.GetTable(ctx, engine.Diagram().ID, t2.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestUndoDiagramIDRotation(t *testing.T) {
	engine, undo, _ := seedEngine(t)
	ctx := context.Background()

	prev := engine.Diagram().ID
	require.NoError(t, engine.UpdateDiagramID(ctx, "rotated").Wait(ctx))

	p, err := undo.Undo(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))
	assert.Equal(t, prev, engine.Diagram().ID)

	p2, err := undo.Redo(ctx)
	require.NoError(t, err)
	require.NoError(t, p2.Wait(ctx))
	assert.Equal(t, "rotated", engine.Diagram().ID)
}

func TestUndoDiagramMetaUpdate(t *testing.T) {
	engine, undo, _ := seedEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.UpdateDiagramName(ctx, "renamed").Wait(ctx))
	require.NoError(t, engine.UpdateDatabaseType(ctx, models.DatabaseTypeSQLite).Wait(ctx))

	p, err := undo.Undo(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))
	assert.Equal(t, models.DatabaseTypeGeneric, engine.Diagram().DatabaseType)
	assert.Equal(t, "renamed", engine.Diagram().Name)

	p2, err := undo.Undo(ctx)
	require.NoError(t, err)
	require.NoError(t, p2.Wait(ctx))
	assert.Equal(t, "test", engine.Diagram().Name)
}
