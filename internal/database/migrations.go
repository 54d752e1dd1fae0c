package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		createDiagramsTable,
		createDiagramTablesTable,
		createDiagramRelationshipsTable,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const createDiagramsTable = `
CREATE TABLE IF NOT EXISTS diagrams (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  database_type TEXT NOT NULL DEFAULT 'generic',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const createDiagramTablesTable = `
CREATE TABLE IF NOT EXISTS diagram_tables (
  id TEXT PRIMARY KEY,
  diagram_id TEXT NOT NULL REFERENCES diagrams(id) ON UPDATE CASCADE ON DELETE CASCADE,
  name TEXT NOT NULL DEFAULT '',
  x DOUBLE PRECISION NOT NULL DEFAULT 0,
  y DOUBLE PRECISION NOT NULL DEFAULT 0,
  color TEXT NOT NULL DEFAULT '',
  is_view BOOLEAN NOT NULL DEFAULT FALSE,
  fields JSONB NOT NULL DEFAULT '[]',
  indexes JSONB NOT NULL DEFAULT '[]',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_diagram_tables_diagram_id ON diagram_tables(diagram_id);
`

const createDiagramRelationshipsTable = `
CREATE TABLE IF NOT EXISTS diagram_relationships (
  id TEXT PRIMARY KEY,
  diagram_id TEXT NOT NULL REFERENCES diagrams(id) ON UPDATE CASCADE ON DELETE CASCADE,
  name TEXT NOT NULL DEFAULT '',
  source_table_id TEXT NOT NULL,
  source_field_id TEXT NOT NULL,
  target_table_id TEXT NOT NULL,
  target_field_id TEXT NOT NULL,
  rel_type TEXT NOT NULL DEFAULT 'one_to_one',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_diagram_relationships_diagram_id ON diagram_relationships(diagram_id);
`
