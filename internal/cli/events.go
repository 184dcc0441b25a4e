package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/reading-plan/internal/emit"
	"github.com/zapponejosh/reading-plan/internal/event"
	"github.com/zapponejosh/reading-plan/internal/links"
)

func newEventsCmd(a *app) *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print calendar event drafts for a schedule as JSON",
		Long: "Reads a schedule written by generate and prints one all-day event " +
			"draft per day with something to read. Nothing is sent anywhere.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := emit.Read(schedule, a.profile.ScheduleColumns())
			if err != nil {
				return err
			}

			drafts := event.BuildAll(days, links.New(a.profile.Templates(), a.logger))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(drafts)
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "Schedule file written by generate")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}
