package services

import (
	"context"

	"schemacanvas/internal/history"
	"schemacanvas/internal/models"

	"golang.org/x/sync/errgroup"
)

// CreateRelationship links two fields with generated defaults: the name
// is <sourceTable>_<targetTable>_fk and the cardinality one_to_one.
// Unknown endpoint ids are accepted; the name part of a missing table
// is simply empty.
func (s *DiagramService) CreateRelationship(ctx context.Context, sourceTableID, sourceFieldID, targetTableID, targetFieldID string, opts ...MutationOption) (models.Relationship, *Pending, error) {
	var sourceName, targetName string
	if t, ok := s.store.GetTable(sourceTableID); ok {
		sourceName = t.Name
	}
	if t, ok := s.store.GetTable(targetTableID); ok {
		targetName = t.Name
	}

	rel := models.Relationship{
		Name:          sourceName + "_" + targetName + "_fk",
		SourceTableID: sourceTableID,
		SourceFieldID: sourceFieldID,
		TargetTableID: targetTableID,
		TargetFieldID: targetFieldID,
		Type:          models.OneToOne,
	}
	rel.Prepare()

	p, err := s.AddRelationship(ctx, rel, opts...)
	if err != nil {
		return models.Relationship{}, nil, err
	}
	return rel, p, nil
}

// AddRelationship inserts a caller-built relationship.
func (s *DiagramService) AddRelationship(ctx context.Context, rel models.Relationship, opts ...MutationOption) (*Pending, error) {
	o := applyOptions(opts)
	rel.Prepare()

	rels := s.store.Relationships()
	rels = append(rels, rel)
	if err := s.store.SetRelationships(rels); err != nil {
		return nil, err
	}

	diagramID := s.store.ID()
	p := s.persist(ctx, "add_relationship", func(ctx context.Context) error {
		return s.storage.AddRelationship(ctx, diagramID, rel)
	})
	s.record(o, history.Action{
		Op:   history.OpAddRelationship,
		Redo: addRelationshipPayload{Relationship: rel},
		Undo: removeRelationshipPayload{ID: rel.ID},
	})
	return p, nil
}

// AddRelationships inserts a batch in one mutation: one in-memory
// apply, independent persistence calls joined into one completion, one
// composite history action.
func (s *DiagramService) AddRelationships(ctx context.Context, rels []models.Relationship, opts ...MutationOption) (*Pending, error) {
	o := applyOptions(opts)
	if len(rels) == 0 {
		return resolvedPending(nil), nil
	}

	added := models.CloneRelationships(rels)
	for i := range added {
		added[i].Prepare()
	}

	current := s.store.Relationships()
	if err := s.store.SetRelationships(append(current, added...)); err != nil {
		return nil, err
	}

	ids := make([]string, len(added))
	for i, rel := range added {
		ids[i] = rel.ID
	}

	diagramID := s.store.ID()
	p := s.persist(ctx, "add_relationships", func(ctx context.Context) error {
		var g errgroup.Group
		for _, rel := range added {
			g.Go(func() error {
				return s.storage.AddRelationship(ctx, diagramID, rel)
			})
		}
		return g.Wait()
	})
	s.record(o, history.Action{
		Op:   history.OpAddRelationships,
		Redo: addRelationshipsPayload{Relationships: added},
		Undo: removeRelationshipsPayload{IDs: ids},
	})
	return p, nil
}

// UpdateRelationship merges a partial update onto one relationship. An
// unknown id still persists (a remote no-op) but records nothing.
func (s *DiagramService) UpdateRelationship(ctx context.Context, id string, patch models.RelationshipPatch, opts ...MutationOption) *Pending {
	o := applyOptions(opts)

	rels := s.store.Relationships()
	var prior *models.Relationship
	for i := range rels {
		if rels[i].ID == id {
			cp := rels[i]
			prior = &cp
			patch.ApplyTo(&rels[i])
			break
		}
	}
	if prior != nil {
		if err := s.store.SetRelationships(rels); err != nil {
			return resolvedPending(err)
		}
	}

	p := s.persist(ctx, "update_relationship", func(ctx context.Context) error {
		return s.storage.UpdateRelationship(ctx, id, patch)
	})
	if prior == nil {
		return p
	}
	s.record(o, history.Action{
		Op:   history.OpUpdateRelationship,
		Redo: updateRelationshipPayload{ID: id, Patch: patch},
		Undo: updateRelationshipPayload{ID: id, Patch: inverseRelationshipPatch(patch, *prior)},
	})
	return p
}

// RemoveRelationship drops one relationship.
func (s *DiagramService) RemoveRelationship(ctx context.Context, id string, opts ...MutationOption) *Pending {
	o := applyOptions(opts)

	rels := s.store.Relationships()
	var removed *models.Relationship
	kept := make([]models.Relationship, 0, len(rels))
	for _, rel := range rels {
		if rel.ID == id {
			cp := rel
			removed = &cp
			continue
		}
		kept = append(kept, rel)
	}
	if removed != nil {
		if err := s.store.SetRelationships(kept); err != nil {
			return resolvedPending(err)
		}
	}

	diagramID := s.store.ID()
	p := s.persist(ctx, "remove_relationship", func(ctx context.Context) error {
		return s.storage.DeleteRelationship(ctx, diagramID, id)
	})
	if removed == nil {
		return p
	}
	s.record(o, history.Action{
		Op:   history.OpRemoveRelationship,
		Redo: removeRelationshipPayload{ID: id},
		Undo: addRelationshipPayload{Relationship: *removed},
	})
	return p
}

// RemoveRelationships drops a batch. The recorded action carries
// exactly the relationships that were present and removed, so undoing
// never resurrects ids that were already gone.
func (s *DiagramService) RemoveRelationships(ctx context.Context, ids []string, opts ...MutationOption) *Pending {
	o := applyOptions(opts)

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	rels := s.store.Relationships()
	var removed []models.Relationship
	kept := make([]models.Relationship, 0, len(rels))
	for _, rel := range rels {
		if _, hit := drop[rel.ID]; hit {
			removed = append(removed, rel)
			continue
		}
		kept = append(kept, rel)
	}
	if len(removed) == 0 {
		return resolvedPending(nil)
	}
	if err := s.store.SetRelationships(kept); err != nil {
		return resolvedPending(err)
	}

	removedIDs := make([]string, len(removed))
	for i, rel := range removed {
		removedIDs[i] = rel.ID
	}

	diagramID := s.store.ID()
	p := s.persist(ctx, "remove_relationships", func(ctx context.Context) error {
		var g errgroup.Group
		for _, id := range removedIDs {
			g.Go(func() error {
				return s.storage.DeleteRelationship(ctx, diagramID, id)
			})
		}
		return g.Wait()
	})
	s.record(o, history.Action{
		Op:   history.OpRemoveRelationships,
		Redo: removeRelationshipsPayload{IDs: removedIDs},
		Undo: addRelationshipsPayload{Relationships: removed},
	})
	return p
}
