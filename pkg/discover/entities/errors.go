package entities

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tendant/simple-discover/pkg/discover"
)

// EntityError represents a failed entity store write
type EntityError struct {
	Kind discover.SourceKind
	ID   uuid.UUID
	Op   string
	Err  error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}
