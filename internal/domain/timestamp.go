package domain

import "time"

// HourTimestamp stamps an hourly mean at the midpoint of its hour. The
// location is UTC only as a neutral marker; no zone conversion is implied.
func HourTimestamp(century, year, month, day, hour int) time.Time {
	return time.Date(century*100+year, time.Month(month), day, hour, 30, 0, 0, time.UTC)
}

// Timestamps replaces the date parts of each parsed row with an absolute
// mid-hour timestamp.
func Timestamps(parsed ParsedTable) TimestampedTable {
	rows := make([]TimestampedRow, len(parsed.Rows))
	for i, r := range parsed.Rows {
		rows[i] = TimestampedRow{
			Time:      HourTimestamp(r.Century, r.Year, r.Month, r.Day, r.Hour),
			Code:      r.Code,
			Component: r.Component,
			Base:      r.Base,
			Raw:       r.Raw,
		}
	}
	return TimestampedTable{Code: parsed.Code, Rows: rows}
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
