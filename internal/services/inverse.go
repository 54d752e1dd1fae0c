package services

import "schemacanvas/internal/models"

func ptr[T any](v T) *T {
	return &v
}

// The inverse of a partial update is a partial update over the same
// attributes, carrying the values the entity had before the patch.

func inverseTablePatch(p models.TablePatch, prior models.Table) models.TablePatch {
	var inv models.TablePatch
	if p.Name != nil {
		inv.Name = ptr(prior.Name)
	}
	if p.X != nil {
		inv.X = ptr(prior.X)
	}
	if p.Y != nil {
		inv.Y = ptr(prior.Y)
	}
	if p.Color != nil {
		inv.Color = ptr(prior.Color)
	}
	if p.IsView != nil {
		inv.IsView = ptr(prior.IsView)
	}
	if p.Fields != nil {
		inv.Fields = ptr(models.CloneFields(prior.Fields))
	}
	if p.Indexes != nil {
		inv.Indexes = ptr(models.CloneIndexes(prior.Indexes))
	}
	return inv
}

func inverseFieldPatch(p models.FieldPatch, prior models.Field) models.FieldPatch {
	var inv models.FieldPatch
	if p.Name != nil {
		inv.Name = ptr(prior.Name)
	}
	if p.Type != nil {
		inv.Type = ptr(prior.Type)
	}
	if p.Unique != nil {
		inv.Unique = ptr(prior.Unique)
	}
	if p.Nullable != nil {
		inv.Nullable = ptr(prior.Nullable)
	}
	if p.PrimaryKey != nil {
		inv.PrimaryKey = ptr(prior.PrimaryKey)
	}
	return inv
}

func inverseIndexPatch(p models.IndexPatch, prior models.Index) models.IndexPatch {
	var inv models.IndexPatch
	if p.Name != nil {
		inv.Name = ptr(prior.Name)
	}
	if p.FieldIDs != nil {
		inv.FieldIDs = ptr(append([]string(nil), prior.FieldIDs...))
	}
	if p.Unique != nil {
		inv.Unique = ptr(prior.Unique)
	}
	return inv
}

func inverseRelationshipPatch(p models.RelationshipPatch, prior models.Relationship) models.RelationshipPatch {
	var inv models.RelationshipPatch
	if p.Name != nil {
		inv.Name = ptr(prior.Name)
	}
	if p.SourceTableID != nil {
		inv.SourceTableID = ptr(prior.SourceTableID)
	}
	if p.SourceFieldID != nil {
		inv.SourceFieldID = ptr(prior.SourceFieldID)
	}
	if p.TargetTableID != nil {
		inv.TargetTableID = ptr(prior.TargetTableID)
	}
	if p.TargetFieldID != nil {
		inv.TargetFieldID = ptr(prior.TargetFieldID)
	}
	if p.Type != nil {
		inv.Type = ptr(prior.Type)
	}
	return inv
}

// fullTablePatch spells out every attribute of a table, used when a
// reconciled table must be written back to storage wholesale.
func fullTablePatch(t models.Table) models.TablePatch {
	return models.TablePatch{
		Name:    ptr(t.Name),
		X:       ptr(t.X),
		Y:       ptr(t.Y),
		Color:   ptr(t.Color),
		IsView:  ptr(t.IsView),
		Fields:  ptr(models.CloneFields(t.Fields)),
		Indexes: ptr(models.CloneIndexes(t.Indexes)),
	}
}
