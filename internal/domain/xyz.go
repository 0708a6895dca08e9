package domain

// AssembleXYZ pivots a converted table and derives the X, Y, Z series.
func AssembleXYZ(ct ConvertedTable) (XYZTable, error) {
	p, err := Pivot(ct)
	if err != nil {
		return XYZTable{}, err
	}
	return AnglesToGeographic(p), nil
}

// Process runs a parsed table through timestamping, conversion and assembly.
func Process(parsed ParsedTable) (XYZTable, error) {
	return AssembleXYZ(ConvertHourlyMeans(Timestamps(parsed)))
}

// ReadFile parses one WDC file and returns its X, Y, Z series.
func ReadFile(path string) (XYZTable, error) {
	parsed, err := ParseFile(path)
	if err != nil {
		return XYZTable{}, err
	}
	xyz, err := Process(parsed)
	if err != nil {
		return XYZTable{}, err
	}
	return xyz, nil
}
