package services

import (
	"context"
	"errors"
	"fmt"

	"schemacanvas/internal/history"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// HistoryService moves actions between the undo and redo stacks and
// replays their payloads through the mutation engine. Replays carry
// SkipHistory so they never push new actions themselves.
type HistoryService struct {
	log    *history.Log
	engine *DiagramService
}

func NewHistoryService(log *history.Log, engine *DiagramService) *HistoryService {
	return &HistoryService{log: log, engine: engine}
}

func (h *HistoryService) CanUndo() bool {
	return h.log.CanUndo()
}

func (h *HistoryService) CanRedo() bool {
	return h.log.CanRedo()
}

// Undo reverses the most recent mutation and parks its action on the
// redo stack. A failed replay puts the action back where it was.
func (h *HistoryService) Undo(ctx context.Context) (*Pending, error) {
	a, ok := h.log.PopUndo()
	if !ok {
		return nil, ErrNothingToUndo
	}
	p, err := h.replay(ctx, a.Undo)
	if err != nil {
		h.log.PushUndo(a)
		return nil, err
	}
	h.log.PushRedo(a)
	return p, nil
}

// Redo re-applies the most recently undone mutation. It restores the
// action to the undo stack without clearing the redo branch.
func (h *HistoryService) Redo(ctx context.Context) (*Pending, error) {
	a, ok := h.log.PopRedo()
	if !ok {
		return nil, ErrNothingToRedo
	}
	p, err := h.replay(ctx, a.Redo)
	if err != nil {
		h.log.PushRedo(a)
		return nil, err
	}
	h.log.PushUndo(a)
	return p, nil
}

// replay dispatches on the payload type alone: each payload names the
// engine operation that applies it, so undo and redo share one path.
func (h *HistoryService) replay(ctx context.Context, payload any) (*Pending, error) {
	skip := SkipHistory()
	switch v := payload.(type) {
	case diagramPatchPayload:
		return h.engine.updateDiagramMeta(ctx, v.Patch, skip), nil
	case diagramIDPayload:
		return h.engine.UpdateDiagramID(ctx, v.ID, skip), nil
	case addTablePayload:
		return h.engine.AddTable(ctx, v.Table, skip)
	case removeTablePayload:
		return h.engine.RemoveTable(ctx, v.TableID, skip), nil
	case updateTablePayload:
		return h.engine.UpdateTable(ctx, v.TableID, v.Patch, skip), nil
	case tablesStatePayload:
		return h.engine.replaceTables(ctx, v.Tables, skip)
	case addFieldPayload:
		return h.engine.AddField(ctx, v.TableID, v.Field, skip)
	case removeFieldPayload:
		return h.engine.RemoveField(ctx, v.TableID, v.FieldID, skip), nil
	case updateFieldPayload:
		return h.engine.UpdateField(ctx, v.TableID, v.FieldID, v.Patch, skip), nil
	case addIndexPayload:
		return h.engine.AddIndex(ctx, v.TableID, v.Index, skip)
	case removeIndexPayload:
		return h.engine.RemoveIndex(ctx, v.TableID, v.IndexID, skip), nil
	case updateIndexPayload:
		return h.engine.UpdateIndex(ctx, v.TableID, v.IndexID, v.Patch, skip), nil
	case addRelationshipPayload:
		return h.engine.AddRelationship(ctx, v.Relationship, skip)
	case addRelationshipsPayload:
		return h.engine.AddRelationships(ctx, v.Relationships, skip)
	case removeRelationshipPayload:
		return h.engine.RemoveRelationship(ctx, v.ID, skip), nil
	case removeRelationshipsPayload:
		return h.engine.RemoveRelationships(ctx, v.IDs, skip), nil
	case updateRelationshipPayload:
		return h.engine.UpdateRelationship(ctx, v.ID, v.Patch, skip), nil
	default:
		return nil, fmt.Errorf("unknown history payload %T", payload)
	}
}
