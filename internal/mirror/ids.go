package mirror

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces record identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues UUID v7 strings, falling back to v4 when the v7
// clock source fails.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time
