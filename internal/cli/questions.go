package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"survey-scoring/internal/app"
	"survey-scoring/internal/infra/file"
)

// NewQuestionsCmd prints the parsed questionnaire without scoring anything.
func NewQuestionsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "Show question numbers and point values parsed from the response headers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			stores := app.Stores{Responses: file.NewResponseReader(cfg.Input.Responses, cfg.Input.DropColumns)}
			service := app.NewScoringService(stores, settingsFrom(cfg), logger)
			questions, err := service.Questions(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "number\tpoints\tquestion")
			for _, q := range questions {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", q.Number, q.Points, q.Text)
			}
			return tw.Flush()
		},
	}
}
