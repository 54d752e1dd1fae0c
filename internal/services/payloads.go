package services

import "schemacanvas/internal/models"

// Action payloads. Each history entry carries one of these in its Redo
// slot and one in its Undo slot; the payload type alone determines which
// engine operation replays it, so undo and redo share a single dispatch.

type diagramPatchPayload struct {
	Patch models.DiagramPatch
}

type diagramIDPayload struct {
	ID string
}

type addTablePayload struct {
	Table models.Table
}

type removeTablePayload struct {
	TableID string
}

type updateTablePayload struct {
	TableID string
	Patch   models.TablePatch
}

type tablesStatePayload struct {
	Tables []models.Table
}

type addFieldPayload struct {
	TableID string
	Field   models.Field
}

type removeFieldPayload struct {
	TableID string
	FieldID string
}

type updateFieldPayload struct {
	TableID string
	FieldID string
	Patch   models.FieldPatch
}

type addIndexPayload struct {
	TableID string
	Index   models.Index
}

type removeIndexPayload struct {
	TableID string
	IndexID string
}

type updateIndexPayload struct {
	TableID string
	IndexID string
	Patch   models.IndexPatch
}

type addRelationshipPayload struct {
	Relationship models.Relationship
}

type addRelationshipsPayload struct {
	Relationships []models.Relationship
}

type removeRelationshipPayload struct {
	ID string
}

type removeRelationshipsPayload struct {
	IDs []string
}

type updateRelationshipPayload struct {
	ID    string
	Patch models.RelationshipPatch
}
