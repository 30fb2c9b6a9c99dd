package core

import (
	"fmt"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// Domain-specific ID types
type (
	RunID      ID
	StimulusID ID
)

func (id RunID) String() string      { return ID(id).String() }
func (id StimulusID) String() string { return ID(id).String() }

// NewRunID creates a time-ordered identifier for one report, export or roster run
func NewRunID() RunID {
	return RunID(NewID())
}

// NewStimulusID formats a 1-based stimulus index as face_001, face_002, ...
func NewStimulusID(index int) StimulusID {
	return StimulusID(fmt.Sprintf("face_%03d", index))
}
