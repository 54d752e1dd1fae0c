package models

import "errors"

var (
	// ErrNotFound reports a lookup that matched no entity.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID reports an attempt to add an entity whose id is
	// already present in the diagram.
	ErrDuplicateID = errors.New("duplicate entity id")
)
