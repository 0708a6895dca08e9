package domain

// ConvertHourlyMeans reconstructs physical hourly means row by row using each
// component's scaling rule. Sentinel readings become missing values.
func ConvertHourlyMeans(ts TimestampedTable) ConvertedTable {
	rows := make([]ConvertedRow, len(ts.Rows))
	for i, r := range ts.Rows {
		rows[i] = ConvertedRow{
			Time:      r.Time,
			Code:      r.Code,
			Component: r.Component,
			Mean:      r.Component.Convert(r.Base, r.Raw),
		}
	}
	return ConvertedTable{Code: ts.Code, Rows: rows}
}
