package types

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// NewSheetGID returns a positive 31-bit sheet id drawn from a random UUID,
// the range spreadsheet hosts use for gids.
func NewSheetGID() int64 {
	u := uuid.New()
	return int64(binary.BigEndian.Uint32(u[:4]) & 0x7fffffff)
}
