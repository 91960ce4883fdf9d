package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"survey-scoring/internal/app"
	"survey-scoring/internal/domain"
)

// NewScoreCmd scores one period and publishes the merged results table.
func NewScoreCmd(configPath *string) *cobra.Command {
	var reparse bool
	cmd := &cobra.Command{
		Use:   "score [period]",
		Short: "Score responses for a period (default 1) and merge with earlier results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period := 1
			if len(args) == 1 {
				p, err := parsePeriod(args[0])
				if err != nil {
					return err
				}
				period = p
			}

			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			b, err := openBackends(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer b.Close()
			stores, err := b.stores(ctx, cfg)
			if err != nil {
				return err
			}

			service := app.NewScoringService(stores, settingsFrom(cfg), logger)
			result, err := service.Run(ctx, app.RunOptions{Period: period, Reparse: reparse})
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), result.History)
		},
	}
	cmd.Flags().BoolVar(&reparse, "reparse", false, "re-read the raw responses instead of the checkpoint for periods after the first")
	return cmd
}

func parsePeriod(raw string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || p < 1 {
		return 0, fmt.Errorf("period %q: %w", raw, domain.ErrInvalidPeriod)
	}
	return p, nil
}

func printHistory(w io.Writer, h domain.PeriodHistory) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(h.Columns, "\t"))
	for _, row := range h.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
