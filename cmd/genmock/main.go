// Command genmock writes synthetic WDC hourly-value files for one
// observatory, one file per month. The files round-trip through the domain
// parser so they can seed pipeline tests and local demos.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -station ESK -year 1988 -components HDZ \
//	  -out data/mock
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/geomag-wdc-etl/internal/domain"
)

// nominal field per component: tabular base and the amplitude of the
// synthetic daily variation, both in encoded units.
var nominal = map[domain.Component]struct{ base, offset, amplitude int }{
	domain.ComponentX: {base: 172, offset: 40, amplitude: 25},
	domain.ComponentY: {base: -5, offset: -60, amplitude: 15},
	domain.ComponentZ: {base: 459, offset: 12, amplitude: 10},
	domain.ComponentH: {base: 174, offset: 50, amplitude: 25},
	domain.ComponentD: {base: -6, offset: -300, amplitude: 40},
	domain.ComponentI: {base: 69, offset: 420, amplitude: 5},
}

type options struct {
	station      string
	year         int
	month        int
	components   []domain.Component
	legacy       bool
	missingEvery int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	station := flag.String("station", "ESK", "three-letter observatory code")
	year := flag.Int("year", 1988, "year to generate")
	month := flag.Int("month", 0, "single month 1-12; 0 generates the whole year")
	comps := flag.String("components", "HDZ", "component letters to emit, e.g. HDZ or XYZ")
	legacy := flag.Bool("legacy", false, "write the legacy layout with blank century columns")
	missingEvery := flag.Int("missing-every", 0, "mark every Nth hour as missing; 0 disables")
	outDir := flag.String("out", ".", "output directory")
	flag.Parse()

	opts := options{
		station:      strings.ToUpper(*station),
		year:         *year,
		month:        *month,
		legacy:       *legacy,
		missingEvery: *missingEvery,
	}
	if err := opts.validate(*comps); err != nil {
		flag.Usage()
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	months := []int{opts.month}
	if opts.month == 0 {
		months = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	}
	for _, m := range months {
		text := generate(opts, m)
		name := fmt.Sprintf("%s%04d%02d.wdc", strings.ToLower(opts.station), opts.year, m)
		path := filepath.Join(*outDir, name)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil { //nolint:gosec // fixture files are world-readable
			return fmt.Errorf("write %s: %w", name, err)
		}
		log.Printf("wrote %s (%d records)", path, strings.Count(text, "\n"))
	}
	return nil
}

func (o *options) validate(comps string) error {
	if len(o.station) != 3 {
		return fmt.Errorf("station must be three letters, got %q", o.station)
	}
	if o.year < 1000 || o.year > 9999 {
		return fmt.Errorf("year out of range: %d", o.year)
	}
	if o.legacy && o.year/100 != 19 {
		return fmt.Errorf("legacy layout only encodes 19xx years, got %d", o.year)
	}
	if o.month < 0 || o.month > 12 {
		return fmt.Errorf("month out of range: %d", o.month)
	}
	if o.missingEvery < 0 {
		return fmt.Errorf("missing-every must not be negative")
	}
	for i := 0; i < len(comps); i++ {
		c, err := domain.ParseComponent(comps[i : i+1])
		if err != nil {
			return err
		}
		o.components = append(o.components, c)
	}
	if len(o.components) == 0 {
		return fmt.Errorf("no components given")
	}
	return nil
}

// generate renders one month of records, components grouped per day in the
// order given.
func generate(o options, month int) string {
	days := time.Date(o.year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	records := make([]domain.RawRecord, 0, days*len(o.components))
	hour := 0
	for day := 1; day <= days; day++ {
		for _, c := range o.components {
			n := nominal[c]
			rec := domain.RawRecord{
				Code:      o.station,
				Component: c,
				Century:   o.year / 100,
				Year:      o.year % 100,
				Month:     month,
				Day:       day,
				Base:      n.base,
			}
			sum, count := 0, 0
			for h := range domain.HoursPerDay {
				if o.missingEvery > 0 && (hour+h)%o.missingEvery == 0 {
					rec.Hourly[h] = domain.MissingSentinel
					continue
				}
				phase := 2 * math.Pi * float64(h) / domain.HoursPerDay
				v := n.offset + int(math.Round(float64(n.amplitude)*math.Sin(phase)))
				rec.Hourly[h] = v
				sum += v
				count++
			}
			if count > 0 {
				mean := sum / count
				rec.DailyMean = &mean
			}
			records = append(records, rec)
		}
		hour += domain.HoursPerDay
	}

	var layout domain.Layout = domain.CenturyLayout{}
	if o.legacy {
		layout = domain.LegacyLayout{}
	}
	return domain.FormatRecords(layout, records)
}
