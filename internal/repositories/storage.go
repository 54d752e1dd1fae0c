package repositories

import (
	"context"
	"fmt"

	"schemacanvas/internal/config"
	"schemacanvas/internal/database"
	"schemacanvas/internal/models"

	"github.com/redis/go-redis/v9"
)

// GetDiagramOptions controls how much of a diagram a read loads.
type GetDiagramOptions struct {
	IncludeTables        bool
	IncludeRelationships bool
}

// Storage is the durable backend the diagram core persists into. All
// lookups return (nil, nil) when the entity does not exist; errors are
// reserved for backend failures.
//
// Field and index mutations are persisted through UpdateTable with the
// complete field/index sequence of the owning table, never as deltas.
type Storage interface {
	GetDiagram(ctx context.Context, id string, opts GetDiagramOptions) (*models.Diagram, error)
	AddDiagram(ctx context.Context, diagram models.Diagram) error
	UpdateDiagram(ctx context.Context, id string, patch models.DiagramPatch) error
	DeleteDiagram(ctx context.Context, id string) error
	ListDiagrams(ctx context.Context) ([]models.Diagram, error)

	GetTable(ctx context.Context, diagramID, tableID string) (*models.Table, error)
	AddTable(ctx context.Context, diagramID string, table models.Table) error
	UpdateTable(ctx context.Context, tableID string, patch models.TablePatch) error
	DeleteTable(ctx context.Context, diagramID, tableID string) error

	AddRelationship(ctx context.Context, diagramID string, rel models.Relationship) error
	UpdateRelationship(ctx context.Context, id string, patch models.RelationshipPatch) error
	DeleteRelationship(ctx context.Context, diagramID, id string) error
}

// Open builds the storage backend selected by the configuration.
func Open(ctx context.Context, cfg config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return NewMemoryRepository(), nil
	case config.DriverPostgres:
		pool, err := database.Connect(ctx)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(ctx, pool); err != nil {
			return nil, err
		}
		return NewPostgresRepository(pool), nil
	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisRepository(rdb), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
