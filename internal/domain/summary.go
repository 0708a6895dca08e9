package domain

// Summary counts hourly rows and missing values of an XYZ table.
type Summary struct {
	Code     string
	Rows     int
	MissingX int
	MissingY int
	MissingZ int
	// Empty counts hours with every component missing.
	Empty int
}

// Summarize reports data-quality counts for logging and metrics. It does not
// judge whether gaps are acceptable.
func Summarize(t XYZTable) Summary {
	s := Summary{Code: t.Code, Rows: len(t.Rows)}
	for _, r := range t.Rows {
		if !r.X.Valid() {
			s.MissingX++
		}
		if !r.Y.Valid() {
			s.MissingY++
		}
		if !r.Z.Valid() {
			s.MissingZ++
		}
		if !r.X.Valid() && !r.Y.Valid() && !r.Z.Valid() {
			s.Empty++
		}
	}
	return s
}
