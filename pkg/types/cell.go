package types

// Cell is a single spreadsheet cell. Link holds the URL of a rich-text
// hyperlink on the cell's text; it is empty for plain cells.
type Cell struct {
	Value string `json:"v"`
	Link  string `json:"l,omitempty"`
}

// Row is an ordered sequence of cells. Column accessors are 1-indexed to
// match spreadsheet addressing.
type Row []Cell

// RowOf builds a Row of plain cells from values.
func RowOf(values ...string) Row {
	r := make(Row, len(values))
	for i, v := range values {
		r[i] = Cell{Value: v}
	}
	return r
}

// Get returns the value at column col, or "" when col is out of range.
func (r Row) Get(col int) string {
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1].Value
}

// Cell returns the cell at column col, or the zero Cell when col is out of
// range.
func (r Row) Cell(col int) Cell {
	if col < 1 || col > len(r) {
		return Cell{}
	}
	return r[col-1]
}

// Set writes a plain value at column col, growing the row when needed, and
// returns the updated row. Any hyperlink on the cell is cleared.
func (r Row) Set(col int, value string) Row {
	return r.SetCell(col, Cell{Value: value})
}

// SetCell writes c at column col, growing the row when needed.
func (r Row) SetCell(col int, c Cell) Row {
	if col < 1 {
		return r
	}
	for len(r) < col {
		r = append(r, Cell{})
	}
	r[col-1] = c
	return r
}

// Values returns the plain values of the row.
func (r Row) Values() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Value
	}
	return out
}

// Clone returns a copy of the row that shares no backing array with r.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Equal reports whether two rows hold the same cells, ignoring trailing
// empty cells.
func (r Row) Equal(other Row) bool {
	a, b := r.trimmed(), other.trimmed()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (r Row) trimmed() Row {
	n := len(r)
	for n > 0 && r[n-1] == (Cell{}) {
		n--
	}
	return r[:n]
}

// TextStyle is the text formatting of a header cell.
type TextStyle struct {
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	FontSize  float64 `json:"font_size,omitempty"`
	FontColor string  `json:"font_color,omitempty"`
}

// Data validation kinds.
const (
	ValidationList     = "list"
	ValidationCheckbox = "checkbox"
)

// DataValidation is a cell validation rule. For ValidationList, Values holds
// the allowed entries.
type DataValidation struct {
	Kind   string   `json:"kind"`
	Values []string `json:"values,omitempty"`
	Strict bool     `json:"strict,omitempty"`
}

// Header is the header block of a sheet: the values, text styles and data
// validations of rows 1 through len(Values). Styles and Validations are
// indexed the same way as Values and may be shorter; missing entries mean no
// formatting.
type Header struct {
	Values      []Row               `json:"values"`
	Styles      [][]TextStyle       `json:"styles,omitempty"`
	Validations [][]*DataValidation `json:"validations,omitempty"`
}

// Width returns the widest header row.
func (h *Header) Width() int {
	if h == nil {
		return 0
	}
	w := 0
	for _, r := range h.Values {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Style returns the text style at 1-indexed (row, col), or the zero style.
func (h *Header) Style(row, col int) TextStyle {
	if h == nil || row < 1 || row > len(h.Styles) {
		return TextStyle{}
	}
	styles := h.Styles[row-1]
	if col < 1 || col > len(styles) {
		return TextStyle{}
	}
	return styles[col-1]
}

// Validation returns the data validation at 1-indexed (row, col), or nil.
func (h *Header) Validation(row, col int) *DataValidation {
	if h == nil || row < 1 || row > len(h.Validations) {
		return nil
	}
	vals := h.Validations[row-1]
	if col < 1 || col > len(vals) {
		return nil
	}
	return vals[col-1]
}

// Clone returns a deep copy of the header.
func (h *Header) Clone() *Header {
	if h == nil {
		return nil
	}
	out := &Header{
		Values:      make([]Row, len(h.Values)),
		Styles:      make([][]TextStyle, len(h.Styles)),
		Validations: make([][]*DataValidation, len(h.Validations)),
	}
	for i, r := range h.Values {
		out.Values[i] = r.Clone()
	}
	for i, s := range h.Styles {
		out.Styles[i] = append([]TextStyle(nil), s...)
	}
	for i, vs := range h.Validations {
		row := make([]*DataValidation, len(vs))
		for j, v := range vs {
			if v == nil {
				continue
			}
			cp := *v
			cp.Values = append([]string(nil), v.Values...)
			row[j] = &cp
		}
		out.Validations[i] = row
	}
	return out
}
