package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/geomag-wdc-etl/internal/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check WDC files without loading them",
	Long: `Parses and assembles every FILE independently and prints one line per
file. Exits non-zero if any file has a format or consistency error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	var errs []error
	for _, path := range args {
		table, err := domain.ReadFile(path)
		if err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			errs = append(errs, err)
			continue
		}
		s := domain.Summarize(table)
		fmt.Fprintf(out, "OK   %s: station=%s hours=%d missing x=%d y=%d z=%d\n",
			path, s.Code, s.Rows, s.MissingX, s.MissingY, s.MissingZ)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d files invalid: %w", len(errs), len(args), errors.Join(errs...))
	}
	return nil
}
