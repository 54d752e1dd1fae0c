package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"schemacanvas/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisRepository persists diagrams in Redis. Diagram metadata lives in
// a JSON string, tables and relationships in per-diagram hashes keyed by
// entity id. Because UpdateTable/UpdateRelationship are keyed by entity
// id alone, two index hashes map entity ids back to their diagram.
type RedisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

const (
	diagramSetKey = "diagrams"
	tableIndexKey = "tables_index"
	relIndexKey   = "relationships_index"
)

func diagramKey(id string) string { return "diagram:" + id }
func tablesKey(id string) string  { return "diagram:" + id + ":tables" }
func relsKey(id string) string    { return "diagram:" + id + ":relationships" }

func (r *RedisRepository) GetDiagram(ctx context.Context, id string, opts GetDiagramOptions) (*models.Diagram, error) {
	raw, err := r.rdb.Get(ctx, diagramKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var d models.Diagram
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("failed to decode diagram %s: %w", id, err)
	}

	if opts.IncludeTables {
		entries, err := r.rdb.HGetAll(ctx, tablesKey(id)).Result()
		if err != nil {
			return nil, err
		}
		for _, raw := range entries {
			var t models.Table
			if err := json.Unmarshal([]byte(raw), &t); err != nil {
				return nil, fmt.Errorf("failed to decode table in diagram %s: %w", id, err)
			}
			d.Tables = append(d.Tables, t)
		}
	}
	if opts.IncludeRelationships {
		entries, err := r.rdb.HGetAll(ctx, relsKey(id)).Result()
		if err != nil {
			return nil, err
		}
		for _, raw := range entries {
			var rel models.Relationship
			if err := json.Unmarshal([]byte(raw), &rel); err != nil {
				return nil, fmt.Errorf("failed to decode relationship in diagram %s: %w", id, err)
			}
			d.Relationships = append(d.Relationships, rel)
		}
	}

	return &d, nil
}

func (r *RedisRepository) AddDiagram(ctx context.Context, diagram models.Diagram) error {
	meta := diagram.Clone()
	meta.Tables = nil
	meta.Relationships = nil
	if err := r.setDiagramMeta(ctx, meta); err != nil {
		return err
	}
	if err := r.rdb.SAdd(ctx, diagramSetKey, diagram.ID).Err(); err != nil {
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

func (r *RedisRepository) setDiagramMeta(ctx context.Context, meta models.Diagram) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode diagram %s: %w", meta.ID, err)
	}
	return r.rdb.Set(ctx, diagramKey(meta.ID), raw, 0).Err()
}

func (r *RedisRepository) UpdateDiagram(ctx context.Context, id string, patch models.DiagramPatch) error {
	raw, err := r.rdb.Get(ctx, diagramKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	var d models.Diagram
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return fmt.Errorf("failed to decode diagram %s: %w", id, err)
	}
	patch.ApplyTo(&d)

	if d.ID != id {
		return r.rotateDiagramID(ctx, id, d)
	}
	return r.setDiagramMeta(ctx, d)
}

// rotateDiagramID moves every key of a diagram to its new id and
// repoints the entity index hashes.
func (r *RedisRepository) rotateDiagramID(ctx context.Context, oldID string, d models.Diagram) error {
	if err := r.setDiagramMeta(ctx, d); err != nil {
		return err
	}
	if err := r.rdb.Del(ctx, diagramKey(oldID)).Err(); err != nil {
		return err
	}

	pairs := [][2]string{
		{tablesKey(oldID), tablesKey(d.ID)},
		{relsKey(oldID), relsKey(d.ID)},
	}
	for _, p := range pairs {
		err := r.rdb.Rename(ctx, p[0], p[1]).Err()
		if err != nil && !errors.Is(err, redis.Nil) && err.Error() != "ERR no such key" {
			return err
		}
	}

	if err := r.rdb.SRem(ctx, diagramSetKey, oldID).Err(); err != nil {
		return err
	}
	if err := r.rdb.SAdd(ctx, diagramSetKey, d.ID).Err(); err != nil {
		return err
	}

	tableIDs, err := r.rdb.HKeys(ctx, tablesKey(d.ID)).Result()
	if err != nil {
		return err
	}
	for _, tid := range tableIDs {
		if err := r.rdb.HSet(ctx, tableIndexKey, tid, d.ID).Err(); err != nil {
			return err
		}
	}
	relIDs, err := r.rdb.HKeys(ctx, relsKey(d.ID)).Result()
	if err != nil {
		return err
	}
	for _, rid := range relIDs {
		if err := r.rdb.HSet(ctx, relIndexKey, rid, d.ID).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *RedisRepository) DeleteDiagram(ctx context.Context, id string) error {
	tableIDs, err := r.rdb.HKeys(ctx, tablesKey(id)).Result()
	if err != nil {
		return err
	}
	if len(tableIDs) > 0 {
		if err := r.rdb.HDel(ctx, tableIndexKey, tableIDs...).Err(); err != nil {
			return err
		}
	}
	relIDs, err := r.rdb.HKeys(ctx, relsKey(id)).Result()
	if err != nil {
		return err
	}
	if len(relIDs) > 0 {
		if err := r.rdb.HDel(ctx, relIndexKey, relIDs...).Err(); err != nil {
			return err
		}
	}

	if err := r.rdb.Del(ctx, diagramKey(id), tablesKey(id), relsKey(id)).Err(); err != nil {
		return err
	}
	return r.rdb.SRem(ctx, diagramSetKey, id).Err()
}

func (r *RedisRepository) ListDiagrams(ctx context.Context) ([]models.Diagram, error) {
	ids, err := r.rdb.SMembers(ctx, diagramSetKey).Result()
	if err != nil {
		return nil, err
	}

	var diagrams []models.Diagram
	for _, id := range ids {
		raw, err := r.rdb.Get(ctx, diagramKey(id)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		var d models.Diagram
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("failed to decode diagram %s: %w", id, err)
		}
		diagrams = append(diagrams, d)
	}
	return diagrams, nil
}

func (r *RedisRepository) GetTable(ctx context.Context, diagramID, tableID string) (*models.Table, error) {
	raw, err := r.rdb.HGet(ctx, tablesKey(diagramID), tableID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var t models.Table
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, fmt.Errorf("failed to decode table %s: %w", tableID, err)
	}
	return &t, nil
}

func (r *RedisRepository) AddTable(ctx context.Context, diagramID string, table models.Table) error {
	raw, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to encode table %s: %w", table.ID, err)
	}
	if err := r.rdb.HSet(ctx, tablesKey(diagramID), table.ID, raw).Err(); err != nil {
		return err
	}
	return r.rdb.HSet(ctx, tableIndexKey, table.ID, diagramID).Err()
}

func (r *RedisRepository) UpdateTable(ctx context.Context, tableID string, patch models.TablePatch) error {
	diagramID, err := r.rdb.HGet(ctx, tableIndexKey, tableID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	t, err := r.GetTable(ctx, diagramID, tableID)
	if err != nil || t == nil {
		return err
	}
	patch.ApplyTo(t)

	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode table %s: %w", tableID, err)
	}
	return r.rdb.HSet(ctx, tablesKey(diagramID), tableID, raw).Err()
}

func (r *RedisRepository) DeleteTable(ctx context.Context, diagramID, tableID string) error {
	if err := r.rdb.HDel(ctx, tablesKey(diagramID), tableID).Err(); err != nil {
		return err
	}
	return r.rdb.HDel(ctx, tableIndexKey, tableID).Err()
}

func (r *RedisRepository) AddRelationship(ctx context.Context, diagramID string, rel models.Relationship) error {
	raw, err := json.Marshal(rel)
	if err != nil {
		return fmt.Errorf("failed to encode relationship %s: %w", rel.ID, err)
	}
	if err := r.rdb.HSet(ctx, relsKey(diagramID), rel.ID, raw).Err(); err != nil {
		return err
	}
	return r.rdb.HSet(ctx, relIndexKey, rel.ID, diagramID).Err()
}

func (r *RedisRepository) UpdateRelationship(ctx context.Context, id string, patch models.RelationshipPatch) error {
	diagramID, err := r.rdb.HGet(ctx, relIndexKey, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	raw, err := r.rdb.HGet(ctx, relsKey(diagramID), id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	var rel models.Relationship
	if err := json.Unmarshal([]byte(raw), &rel); err != nil {
		return fmt.Errorf("failed to decode relationship %s: %w", id, err)
	}
	patch.ApplyTo(&rel)

	encoded, err := json.Marshal(rel)
	if err != nil {
		return fmt.Errorf("failed to encode relationship %s: %w", id, err)
	}
	return r.rdb.HSet(ctx, relsKey(diagramID), id, encoded).Err()
}

func (r *RedisRepository) DeleteRelationship(ctx context.Context, diagramID, id string) error {
	if err := r.rdb.HDel(ctx, relsKey(diagramID), id).Err(); err != nil {
		return err
	}
	return r.rdb.HDel(ctx, relIndexKey, id).Err()
}
