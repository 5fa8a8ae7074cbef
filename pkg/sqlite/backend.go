// Package sqlite exposes the SQLite workbook backend to code outside this
// module while keeping its implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/shadowsync/internal/sqlite"
	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// NewBackend creates a new SQLite workbook. The workbook is not attached;
// call Attach with a Config to initialize.
//
// Example:
//
//	wb := sqlite.NewBackend()
//	err := wb.Attach(types.Config{
//	    Backend:       types.BackendSQLite,
//	    DataDir:       ".shadowsync-db",
//	    SpreadsheetID: "local",
//	})
//	defer wb.Detach()
func NewBackend() types.Workbook {
	return sqlite.NewBackend()
}
