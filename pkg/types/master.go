package types

// Column layout of the Shadower Admins sheet (1-indexed). Category sheets
// hold full copies of master rows and share the layout.
const (
	ColCreated       = 1
	ColName          = 2
	ColQuestionText  = 3
	ColQuestionURL   = 4
	ColLocation      = 5
	ColManager       = 6
	ColIdentifier    = 7
	ColStatus        = 8
	ColCategory      = 9
	ColRestrictions  = 10
	ColQuestionName  = 11
	ColAvailability  = 12
	ColShadow1       = 13
	ColCompleted1    = 14
	ColShadow2       = 15
	ColCompleted2    = 16
	ColShadow3       = 17
	ColCompleted3    = 18
	ColNotes         = 19
	MasterColumns    = ColNotes
	FormResponseCols = ColManager
)

// MasterColumnTitles are the row 1 titles of the master sheet.
var MasterColumnTitles = []string{
	"Created (EST)", "Admin Name", "Question", "Question URL", "Location",
	"Manager", "ID", "Status", "Category", "Restrictions", "Question Name",
	"Availability", "Shadow 1", "Completed 1", "Shadow 2", "Completed 2",
	"Shadow 3", "Completed 3", "Notes",
}

// FormResponseTitles are the row 1 titles of the Form Responses sheet.
var FormResponseTitles = MasterColumnTitles[:FormResponseCols]

// ShadowPair is one shadow assignment and whether it was completed.
type ShadowPair struct {
	Shadow    string
	Completed string
}

// MasterRecord is a typed view of one Shadower Admins row.
type MasterRecord struct {
	Created      string
	Name         string
	QuestionText string
	QuestionURL  string
	Location     string
	Manager      string
	Identifier   string
	Status       string
	Category     string
	Restrictions string
	QuestionName string
	Availability string
	Shadows      [3]ShadowPair
	Notes        string
}

// ParseMasterRecord reads a master row into a MasterRecord.
func ParseMasterRecord(r Row) MasterRecord {
	rec := MasterRecord{
		Created:      r.Get(ColCreated),
		Name:         r.Get(ColName),
		QuestionText: r.Get(ColQuestionText),
		QuestionURL:  r.Get(ColQuestionURL),
		Location:     r.Get(ColLocation),
		Manager:      r.Get(ColManager),
		Identifier:   r.Get(ColIdentifier),
		Status:       r.Get(ColStatus),
		Category:     r.Get(ColCategory),
		Restrictions: r.Get(ColRestrictions),
		QuestionName: r.Get(ColQuestionName),
		Availability: r.Get(ColAvailability),
		Notes:        r.Get(ColNotes),
	}
	for i := range rec.Shadows {
		rec.Shadows[i] = ShadowPair{
			Shadow:    r.Get(ColShadow1 + 2*i),
			Completed: r.Get(ColCompleted1 + 2*i),
		}
	}
	return rec
}

// Row renders the record in master column order.
func (m MasterRecord) Row() Row {
	r := RowOf(
		m.Created, m.Name, m.QuestionText, m.QuestionURL, m.Location,
		m.Manager, m.Identifier, m.Status, m.Category, m.Restrictions,
		m.QuestionName, m.Availability,
	)
	for _, s := range m.Shadows {
		r = append(r, Cell{Value: s.Shadow}, Cell{Value: s.Completed})
	}
	return append(r, Cell{Value: m.Notes})
}

// DefaultMasterHeader returns the two-row header used when a workbook is
// initialized: column titles in row 1 and a metadata row 2 carrying the
// Status and Availability validations.
func DefaultMasterHeader() *Header {
	titles := RowOf(MasterColumnTitles...)
	meta := make(Row, MasterColumns)
	meta[ColIdentifier-1] = Cell{Value: "generated"}

	styles := make([]TextStyle, MasterColumns)
	for i := range styles {
		styles[i] = TextStyle{Bold: true}
	}

	validations := make([]*DataValidation, MasterColumns)
	validations[ColStatus-1] = &DataValidation{
		Kind:   ValidationList,
		Values: []string{"Open", "In Progress", "Closed"},
	}
	validations[ColAvailability-1] = &DataValidation{Kind: ValidationCheckbox}

	return &Header{
		Values:      []Row{titles, meta},
		Styles:      [][]TextStyle{styles},
		Validations: [][]*DataValidation{nil, validations},
	}
}

// DefaultFormHeader returns the single-row header of the Form Responses
// sheet.
func DefaultFormHeader() *Header {
	return &Header{Values: []Row{RowOf(FormResponseTitles...)}}
}
