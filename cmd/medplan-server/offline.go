package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/carehome/medplan/internal/config"
	"github.com/carehome/medplan/internal/platform/planvalidation"
)

var errPlanInvalid = errors.New("plan has error diagnostics")

// report is the JSON printed by "validate".
type report struct {
	Valid       bool                            `json:"valid"`
	Counts      map[planvalidation.Severity]int `json:"counts"`
	Diagnostics []planvalidation.Diagnostic     `json:"diagnostics"`
	Quality     planvalidation.Quality          `json:"quality"`
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate and score a plan JSON file offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			today, _ := cmd.Flags().GetString("now")
			sortBy, _ := cmd.Flags().GetString("sort")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			clock, err := offlineClock(today, loc)
			if err != nil {
				return err
			}

			plan, err := readPlan(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			diags, quality := planvalidation.NewValidator(clock).Assess(plan)
			if sortBy == "severity" {
				diags = planvalidation.SortBySeverity(diags)
			}
			if diags == nil {
				diags = []planvalidation.Diagnostic{}
			}
			r := report{
				Valid:       !planvalidation.HasErrors(diags),
				Counts:      planvalidation.CountBySeverity(diags),
				Diagnostics: diags,
				Quality:     quality,
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(r); err != nil {
				return err
			}
			if !r.Valid {
				return errPlanInvalid
			}
			return nil
		},
	}
	cmd.Flags().String("file", "-", "Plan JSON file, or - for stdin")
	cmd.Flags().String("now", "", "Evaluate as of this date (YYYY-MM-DD)")
	cmd.Flags().String("sort", "", "Set to \"severity\" to list errors first")
	return cmd
}

// offlineClock pins "today" to date when given, else follows the wall clock
// in loc.
func offlineClock(date string, loc *time.Location) (func() time.Time, error) {
	if date == "" {
		return clockIn(loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, fmt.Errorf("--now must be YYYY-MM-DD: %w", err)
	}
	return planvalidation.FixedClock(t), nil
}

func readPlan(stdin io.Reader, file string) (planvalidation.MedicalPlan, error) {
	var plan planvalidation.MedicalPlan
	var r io.Reader = stdin
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return plan, fmt.Errorf("open plan: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&plan); err != nil {
		return plan, fmt.Errorf("decode plan: %w", err)
	}
	return plan, nil
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the medical service catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(planvalidation.MedicalServices())
		},
	}
}
