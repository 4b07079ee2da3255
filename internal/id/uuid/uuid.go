// Package uuid provides run ID generation.
package uuid

import "github.com/google/uuid"

// Generator mints UUID v7 strings, falling back to v4 when the system
// clock refuses to cooperate.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a time-ordered UUID string.
func (Generator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
