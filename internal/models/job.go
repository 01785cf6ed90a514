package models

// JobLink is a job posting URL with its volatile query parameters removed.
// Two JobLinks are equal iff they refer to the same posting.
type JobLink string

// FieldOutcome records how a single field of a JobRecord was obtained.
type FieldOutcome int

const (
	// FieldAbsent means the field could not be located on the detail view.
	FieldAbsent FieldOutcome = iota
	// FieldExtracted means the value was read from the detail view.
	FieldExtracted
	// FieldPlaceholder means the field was missing and a stand-in text was used.
	FieldPlaceholder
)

func (o FieldOutcome) String() string {
	switch o {
	case FieldExtracted:
		return "extracted"
	case FieldPlaceholder:
		return "placeholder"
	default:
		return "absent"
	}
}

type Field struct {
	Value   string
	Outcome FieldOutcome
}

func Extracted(v string) Field   { return Field{Value: v, Outcome: FieldExtracted} }
func Placeholder(v string) Field { return Field{Value: v, Outcome: FieldPlaceholder} }
func Absent() Field              { return Field{Outcome: FieldAbsent} }

// Present reports whether the field holds a usable value.
func (f Field) Present() bool {
	return f.Outcome != FieldAbsent
}

// Columns is the column order of every output table, without the leading index column.
var Columns = []string{"Link", "Title", "Company", "Location", "Description"}

// JobRecord is one extracted row. It is not modified after the extractor returns it.
type JobRecord struct {
	Link        JobLink
	Title       Field
	Company     Field
	Location    Field
	Description Field
}

// Row returns the record's cells in Columns order. Absent fields are empty cells.
func (r JobRecord) Row() []string {
	return []string{
		string(r.Link),
		r.Title.Value,
		r.Company.Value,
		r.Location.Value,
		r.Description.Value,
	}
}
