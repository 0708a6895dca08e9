// Package domain models World Data Centre (WDC) geomagnetic hourly-mean data.
//
// # Data Source
//
// Observatories distribute hourly means as fixed-width text files in the
// IAGA WDC exchange format, one file per station per year (sometimes per
// month). Each physical line holds one day of one field component.
//
// # Record Layout
//
// Columns are 1-based and every line is 120 characters wide:
//
//	1-3     station code, e.g. "ESK"
//	4-5     year within century
//	6-7     month (01-12)
//	8       component letter (X, Y, Z, H, D, I)
//	9-10    day of month
//	11-14   reserved, quiet/disturbed day flags (ignored)
//	15-16   century digits ("19", "20"); blank in legacy files
//	17-20   tabular base
//	21-116  24 hourly values, four characters each
//	117-120 daily mean (optional, ignored)
//
// Legacy files leave the century blank and imply the 1900s. [DetectLayout]
// probes the first record to pick the matching [Layout].
//
// # Value Encoding
//
// Hourly values are offsets from the tabular base:
//
//	Intensity (X, Y, Z, H): base in hundreds of nT, value in nT.
//	  hourly mean = base*100 + value        (nanotesla)
//	Angles (D, I): base in whole degrees, value in tenths of arc-minute.
//	  hourly mean = base + value/600        (degrees)
//
// The raw value 9999 is the missing-data sentinel for every component and
// maps to a missing [Value] regardless of the base.
//
// # Time Convention
//
// An hourly mean covers [hh:00, hh+1:00) and is stamped at its midpoint,
// hh:30. No time zone is applied; timestamps carry [time.UTC] only as a
// neutral location.
//
// # Geographic Components
//
// Stations that record horizontal intensity H and declination D are
// converted to geographic north X = H cos D and east Y = H sin D. Any
// missing input yields a missing output; nothing is zero-filled.
package domain
