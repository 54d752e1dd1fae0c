package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"schemacanvas/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository persists diagrams in PostgreSQL. Field and index
// sequences are stored as JSONB documents on the table row, so the
// full-sequence-replacement writes of the mutation engine map onto a
// single column update.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) GetDiagram(ctx context.Context, id string, opts GetDiagramOptions) (*models.Diagram, error) {
	query := `
		SELECT id, name, database_type, created_at, updated_at
		FROM diagrams WHERE id = $1
	`

	var d models.Diagram
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.Name,
		&d.DatabaseType,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if opts.IncludeTables {
		tables, err := r.getTables(ctx, id)
		if err != nil {
			return nil, err
		}
		d.Tables = tables
	}
	if opts.IncludeRelationships {
		rels, err := r.getRelationships(ctx, id)
		if err != nil {
			return nil, err
		}
		d.Relationships = rels
	}

	return &d, nil
}

func (r *PostgresRepository) AddDiagram(ctx context.Context, diagram models.Diagram) error {
	query := `
		INSERT INTO diagrams (id, name, database_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		diagram.ID,
		diagram.Name,
		diagram.DatabaseType,
		diagram.CreatedAt,
		diagram.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for _, t := range diagram.Tables {
		if err := r.AddTable(ctx, diagram.ID, t); err != nil {
			return err
		}
	}
	for _, rel := range diagram.Relationships {
		if err := r.AddRelationship(ctx, diagram.ID, rel); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) UpdateDiagram(ctx context.Context, id string, patch models.DiagramPatch) error {
	set := []string{"updated_at = NOW()"}
	var args []interface{}
	argNum := 1

	if patch.ID != nil {
		set = append(set, fmt.Sprintf("id = $%d", argNum))
		args = append(args, *patch.ID)
		argNum++
	}
	if patch.Name != nil {
		set = append(set, fmt.Sprintf("name = $%d", argNum))
		args = append(args, *patch.Name)
		argNum++
	}
	if patch.DatabaseType != nil {
		set = append(set, fmt.Sprintf("database_type = $%d", argNum))
		args = append(args, *patch.DatabaseType)
		argNum++
	}

	query := fmt.Sprintf("UPDATE diagrams SET %s WHERE id = $%d", strings.Join(set, ", "), argNum)
	args = append(args, id)

	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

func (r *PostgresRepository) DeleteDiagram(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM diagrams WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) ListDiagrams(ctx context.Context) ([]models.Diagram, error) {
	query := `
		SELECT id, name, database_type, created_at, updated_at
		FROM diagrams ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diagrams []models.Diagram
	for rows.Next() {
		var d models.Diagram
		if err := rows.Scan(&d.ID, &d.Name, &d.DatabaseType, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		diagrams = append(diagrams, d)
	}

	return diagrams, rows.Err()
}

func (r *PostgresRepository) GetTable(ctx context.Context, diagramID, tableID string) (*models.Table, error) {
	query := `
		SELECT id, name, x, y, color, is_view, fields, indexes, created_at
		FROM diagram_tables WHERE diagram_id = $1 AND id = $2
	`

	t, err := scanTable(r.pool.QueryRow(ctx, query, diagramID, tableID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepository) getTables(ctx context.Context, diagramID string) ([]models.Table, error) {
	query := `
		SELECT id, name, x, y, color, is_view, fields, indexes, created_at
		FROM diagram_tables WHERE diagram_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, diagramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []models.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *t)
	}

	return tables, rows.Err()
}

func scanTable(row pgx.Row) (*models.Table, error) {
	var t models.Table
	var fieldsJSON, indexesJSON []byte

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.X,
		&t.Y,
		&t.Color,
		&t.IsView,
		&fieldsJSON,
		&indexesJSON,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(fieldsJSON, &t.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields of table %s: %w", t.ID, err)
	}
	if err := json.Unmarshal(indexesJSON, &t.Indexes); err != nil {
		return nil, fmt.Errorf("failed to decode indexes of table %s: %w", t.ID, err)
	}
	return &t, nil
}

func (r *PostgresRepository) AddTable(ctx context.Context, diagramID string, table models.Table) error {
	fieldsJSON, err := json.Marshal(table.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}
	indexesJSON, err := json.Marshal(table.Indexes)
	if err != nil {
		return fmt.Errorf("failed to encode indexes: %w", err)
	}

	query := `
		INSERT INTO diagram_tables (id, diagram_id, name, x, y, color, is_view, fields, indexes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(ctx, query,
		table.ID,
		diagramID,
		table.Name,
		table.X,
		table.Y,
		table.Color,
		table.IsView,
		fieldsJSON,
		indexesJSON,
		table.CreatedAt,
	)
	return err
}

func (r *PostgresRepository) UpdateTable(ctx context.Context, tableID string, patch models.TablePatch) error {
	var set []string
	var args []interface{}
	argNum := 1

	add := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, argNum))
		args = append(args, value)
		argNum++
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.X != nil {
		add("x", *patch.X)
	}
	if patch.Y != nil {
		add("y", *patch.Y)
	}
	if patch.Color != nil {
		add("color", *patch.Color)
	}
	if patch.IsView != nil {
		add("is_view", *patch.IsView)
	}
	if patch.Fields != nil {
		fieldsJSON, err := json.Marshal(*patch.Fields)
		if err != nil {
			return fmt.Errorf("failed to encode fields: %w", err)
		}
		add("fields", fieldsJSON)
	}
	if patch.Indexes != nil {
		indexesJSON, err := json.Marshal(*patch.Indexes)
		if err != nil {
			return fmt.Errorf("failed to encode indexes: %w", err)
		}
		add("indexes", indexesJSON)
	}

	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE diagram_tables SET %s WHERE id = $%d", strings.Join(set, ", "), argNum)
	args = append(args, tableID)

	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

func (r *PostgresRepository) DeleteTable(ctx context.Context, diagramID, tableID string) error {
	query := `DELETE FROM diagram_tables WHERE diagram_id = $1 AND id = $2`
	_, err := r.pool.Exec(ctx, query, diagramID, tableID)
	return err
}

func (r *PostgresRepository) getRelationships(ctx context.Context, diagramID string) ([]models.Relationship, error) {
	query := `
		SELECT id, name, source_table_id, source_field_id, target_table_id, target_field_id, rel_type, created_at
		FROM diagram_relationships WHERE diagram_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, diagramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []models.Relationship
	for rows.Next() {
		var rel models.Relationship
		err := rows.Scan(
			&rel.ID,
			&rel.Name,
			&rel.SourceTableID,
			&rel.SourceFieldID,
			&rel.TargetTableID,
			&rel.TargetFieldID,
			&rel.Type,
			&rel.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}

	return rels, rows.Err()
}

func (r *PostgresRepository) AddRelationship(ctx context.Context, diagramID string, rel models.Relationship) error {
	query := `
		INSERT INTO diagram_relationships
			(id, diagram_id, name, source_table_id, source_field_id, target_table_id, target_field_id, rel_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		rel.ID,
		diagramID,
		rel.Name,
		rel.SourceTableID,
		rel.SourceFieldID,
		rel.TargetTableID,
		rel.TargetFieldID,
		rel.Type,
		rel.CreatedAt,
	)
	return err
}

func (r *PostgresRepository) UpdateRelationship(ctx context.Context, id string, patch models.RelationshipPatch) error {
	var set []string
	var args []interface{}
	argNum := 1

	add := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, argNum))
		args = append(args, value)
		argNum++
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.SourceTableID != nil {
		add("source_table_id", *patch.SourceTableID)
	}
	if patch.SourceFieldID != nil {
		add("source_field_id", *patch.SourceFieldID)
	}
	if patch.TargetTableID != nil {
		add("target_table_id", *patch.TargetTableID)
	}
	if patch.TargetFieldID != nil {
		add("target_field_id", *patch.TargetFieldID)
	}
	if patch.Type != nil {
		add("rel_type", *patch.Type)
	}

	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE diagram_relationships SET %s WHERE id = $%d", strings.Join(set, ", "), argNum)
	args = append(args, id)

	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

func (r *PostgresRepository) DeleteRelationship(ctx context.Context, diagramID, id string) error {
	query := `DELETE FROM diagram_relationships WHERE diagram_id = $1 AND id = $2`
	_, err := r.pool.Exec(ctx, query, diagramID, id)
	return err
}
