package export

// Dataset is the tabular payload shared by all exporters.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	// Summary holds ordered key/value lines rendered above the table,
	// e.g. report card aggregates.
	Summary [][2]string
}
