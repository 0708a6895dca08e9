package domain

import (
	"fmt"
	"strings"
)

func encodeCommon(rec RawRecord, century string) string {
	var b strings.Builder
	b.Grow(RecordWidth)
	fmt.Fprintf(&b, "%-3.3s%02d%02d%c%02d    %2.2s%4d", rec.Code, rec.Year, rec.Month, byte(rec.Component), rec.Day, century, rec.Base)
	for _, v := range rec.Hourly {
		fmt.Fprintf(&b, "%4d", v)
	}
	if rec.DailyMean != nil {
		fmt.Fprintf(&b, "%4d", *rec.DailyMean)
	} else {
		b.WriteString("    ")
	}
	return b.String()
}

// FormatRecords renders records as newline-terminated WDC text.
func FormatRecords(layout Layout, records []RawRecord) string {
	var b strings.Builder
	for _, rec := range records {
		b.WriteString(layout.Encode(rec))
		b.WriteByte('\n')
	}
	return b.String()
}
