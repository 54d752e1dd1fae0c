// Package history holds the undo/redo log of diagram mutations.
package history

import "sync"

// Op tags the mutation an Action records.
type Op string

const (
	OpUpdateDiagram       Op = "update_diagram"
	OpUpdateDiagramID     Op = "update_diagram_id"
	OpAddTable            Op = "add_table"
	OpUpdateTable         Op = "update_table"
	OpRemoveTable         Op = "remove_table"
	OpUpdateTablesState   Op = "update_tables_state"
	OpAddField            Op = "add_field"
	OpUpdateField         Op = "update_field"
	OpRemoveField         Op = "remove_field"
	OpAddIndex            Op = "add_index"
	OpUpdateIndex         Op = "update_index"
	OpRemoveIndex         Op = "remove_index"
	OpAddRelationship     Op = "add_relationship"
	OpAddRelationships    Op = "add_relationships"
	OpUpdateRelationship  Op = "update_relationship"
	OpRemoveRelationship  Op = "remove_relationship"
	OpRemoveRelationships Op = "remove_relationships"
)

// Action is one invertible history entry. Redo carries the data needed
// to re-apply the mutation, Undo the data needed to reverse it. Actions
// are immutable once pushed.
type Action struct {
	Op   Op
	Redo any
	Undo any
}

// Log is the undo/redo stack pair. The mutation engine pushes; an undo
// controller moves actions between the two stacks. The log is passed by
// reference to its owners, never held as a global.
type Log struct {
	mu   sync.Mutex
	undo []Action
	redo []Action
}

func NewLog() *Log {
	return &Log{}
}

// Push records a freshly applied mutation and discards the redo branch:
// any future history is invalidated by a new mutation.
func (l *Log) Push(a Action) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.undo = append(l.undo, a)
	l.redo = nil
}

// PopUndo removes and returns the most recent action.
func (l *Log) PopUndo() (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.undo) == 0 {
		return Action{}, false
	}
	a := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	return a, true
}

// PopRedo removes and returns the most recently undone action.
func (l *Log) PopRedo() (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.redo) == 0 {
		return Action{}, false
	}
	a := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	return a, true
}

// PushRedo parks an undone action on the redo stack.
func (l *Log) PushRedo(a Action) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.redo = append(l.redo, a)
}

// PushUndo restores a redone action to the undo stack without touching
// the redo branch. Only the undo controller uses this; new mutations go
// through Push.
func (l *Log) PushUndo(a Action) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.undo = append(l.undo, a)
}

func (l *Log) CanUndo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.undo) > 0
}

func (l *Log) CanRedo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.redo) > 0
}

func (l *Log) UndoDepth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.undo)
}

func (l *Log) RedoDepth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.redo)
}

func (l *Log) ClearRedo() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.redo = nil
}

// Reset drops both stacks.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.undo = nil
	l.redo = nil
}
