package entities

// ContactRecord is one normalized row of an uploaded list.
type ContactRecord struct {
	FirstName string
	Phone     string
	Notes     string
}

// Valid reports whether both mandatory fields are present.
func (r ContactRecord) Valid() bool {
	return r.FirstName != "" && r.Phone != ""
}

// Table is decoded tabular input: one header row plus data rows, independent of format.
type Table struct {
	Header []string
	Rows   [][]string
}
