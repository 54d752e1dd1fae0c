package main

import (
	"context"
	"os"

	"schemacanvas/internal/config"
	"schemacanvas/internal/history"
	"schemacanvas/internal/models"
	"schemacanvas/internal/repositories"
	"schemacanvas/internal/services"
	"schemacanvas/internal/store"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
)

// Scripted session exercising the diagram core end to end against the
// configured storage driver (memory by default, see
// SCHEMACANVAS_STORAGE_DRIVER).
func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := context.Background()

	cfg := config.Load()
	storage, err := repositories.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}
	logger.Info().Str("driver", cfg.StorageDriver).Msg("storage ready")

	st := store.New(models.Diagram{})
	log := history.NewLog()
	engine := services.NewDiagramService(st, storage, log, logger)
	undo := services.NewHistoryService(log, engine)

	d, pending := engine.NewDiagram(ctx, "demo", models.DatabaseTypePostgreSQL)
	if err := pending.Wait(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to persist diagram")
	}

	users, _, err := engine.CreateTable(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create table")
	}
	orders, _, err := engine.CreateTable(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create table")
	}

	name := "users"
	engine.UpdateTable(ctx, users.ID, models.TablePatch{Name: &name})
	name = "orders"
	engine.UpdateTable(ctx, orders.ID, models.TablePatch{Name: &name})

	email, _, err := engine.CreateField(ctx, users.ID)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create field")
	}
	fieldName := "email"
	fieldType := "varchar"
	engine.UpdateField(ctx, users.ID, email.ID, models.FieldPatch{Name: &fieldName, Type: &fieldType})

	userID, _, err := engine.CreateField(ctx, orders.ID)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create field")
	}
	rel, relPending, err := engine.CreateRelationship(ctx, users.ID, users.Fields[0].ID, orders.ID, userID.ID)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create relationship")
	}
	if err := relPending.Wait(ctx); err != nil {
		logger.Error().Err(err).Msg("relationship persistence failed")
	}
	logger.Info().Str("relationship", rel.Name).Msg("linked tables")

	// Walk the history back and forth.
	for undo.CanUndo() {
		if p, err := undo.Undo(ctx); err == nil {
			_ = p.Wait(ctx)
		}
	}
	for undo.CanRedo() {
		if p, err := undo.Redo(ctx); err == nil {
			_ = p.Wait(ctx)
		}
	}

	final := engine.Diagram()
	logger.Info().
		Str("diagram_id", d.ID).
		Int("tables", len(final.Tables)).
		Int("relationships", len(final.Relationships)).
		Msg("session complete")
}
