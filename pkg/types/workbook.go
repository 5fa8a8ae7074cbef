package types

import "errors"

// FirstDataRow is the first row holding data. Rows 1 and 2 are the header
// and metadata rows of every managed sheet.
const FirstDataRow = 3

// Workbook is a named, ordered collection of sheets addressed the way a
// spreadsheet is. Callers attach to a backend, access sheets by name, and
// detach when done.
type Workbook interface {
	// ID returns the workbook identity compared against the configured
	// target by every trigger entry point.
	ID() string

	// Sheet returns the sheet with the given name.
	// Returns ErrSheetNotFound if no sheet has that name.
	Sheet(name string) (Sheet, error)

	// EnsureSheet returns the named sheet, creating it when absent. A newly
	// created sheet receives a copy of header (nil means no header). The
	// boolean reports whether the sheet was created by this call.
	EnsureSheet(name string, header *Header) (Sheet, bool, error)

	// SheetGID resolves a sheet name to its internal id. The boolean is
	// false when no sheet has that name.
	SheetGID(name string) (int64, bool, error)

	// SheetNames lists sheet names in creation order.
	SheetNames() ([]string, error)

	// Attach connects the Workbook to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrWorkbookDetached.
	Detach() error
}

// Sheet provides row-level access to one sheet. Rows and columns are
// 1-indexed.
type Sheet interface {
	Name() string
	GID() int64

	// LastRow returns the index of the last row holding any cell, or 0 for an
	// empty sheet.
	LastRow() (int, error)

	// LastColumn returns the width of the widest row.
	LastColumn() (int, error)

	// GetRow returns the cells of row. Rows past LastRow are empty, not an
	// error.
	GetRow(row int) (Row, error)

	// SetRow overwrites row with data. Cells past len(data) are left as they
	// were, matching a range write of len(data) columns.
	SetRow(row int, data Row) error

	// AppendRow writes data after the last row and returns its index.
	AppendRow(data Row) (int, error)

	// DeleteRow removes row; later rows shift up by one.
	DeleteRow(row int) error

	// FindByKey returns the first row at or after FirstDataRow whose column
	// col equals key. The boolean is false when no row matches; an empty key
	// never matches.
	FindByKey(col int, key string) (int, bool, error)

	// Rows returns every row from row from through LastRow.
	Rows(from int) ([]Row, error)

	GetCell(row, col int) (Cell, error)
	SetCell(row, col int, c Cell) error

	// Header returns the header block: the first n rows with their text
	// styles and data validations.
	Header(n int) (*Header, error)

	// SetHeader writes h into the first rows of the sheet.
	SetHeader(h *Header) error
}

// Workbook lifecycle errors.
var (
	ErrWorkbookDetached = errors.New("workbook is detached")
	ErrAlreadyAttached  = errors.New("workbook is already attached")
)

// Sheet operation errors.
var (
	ErrSheetNotFound    = errors.New("sheet not found")
	ErrInvalidSheetName = errors.New("invalid sheet name")
	ErrInvalidRow       = errors.New("invalid row index")
	ErrInvalidColumn    = errors.New("invalid column index")
	ErrReservedName     = errors.New("sheet name is reserved")
)

// ValidateRow returns ErrInvalidRow when row is not a valid 1-indexed row.
func ValidateRow(row int) error {
	if row < 1 {
		return ErrInvalidRow
	}
	return nil
}

// ValidateCell returns ErrInvalidRow or ErrInvalidColumn for out of range
// coordinates.
func ValidateCell(row, col int) error {
	if err := ValidateRow(row); err != nil {
		return err
	}
	if col < 1 {
		return ErrInvalidColumn
	}
	return nil
}
