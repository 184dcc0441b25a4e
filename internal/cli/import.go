package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/reading-plan/internal/bible"
	"github.com/zapponejosh/reading-plan/internal/database"
	"github.com/zapponejosh/reading-plan/internal/emit"
	"github.com/zapponejosh/reading-plan/internal/plan"
)

func newImportCmd(a *app) *cobra.Command {
	var schedule, dbPath, name string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a schedule file into the plan store",
		Long: "Reads a schedule written by generate and stores it as a new plan " +
			"in a single transaction. The plan starts on the first row's date.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			started := time.Now()

			days, err := emit.Read(schedule, a.profile.ScheduleColumns())
			if err != nil {
				return err
			}
			if len(days) == 0 {
				return fmt.Errorf("schedule %s has no days", schedule)
			}
			for i := range days {
				days[i].Units = rowUnits(days[i])
			}

			if name == "" {
				name = a.profile.Name
			}

			db, err := a.openDB(ctx, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			p := &database.Plan{Name: name, Translation: a.profile.Translation, StartDate: days[0].Date}
			if err := db.SavePlan(ctx, p, days); err != nil {
				return fmt.Errorf("store plan: %w", err)
			}

			a.logger.Info("import complete",
				"plan_id", p.ID,
				"days", p.Days,
				"duration", time.Since(started),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d days as plan %s\n", p.Days, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "Schedule file written by generate")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database (default: $DATABASE_PATH or ./data/readingplan.db)")
	cmd.Flags().StringVar(&name, "name", "", "Plan name (default: profile name)")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}

// rowUnits rebuilds a day's chapters from its row triple. A row whose range
// does not fit its book, as written for a day that crossed books, gets none.
func rowUnits(day plan.DayAssignment) []plan.ChapterUnit {
	if day.Empty() {
		return nil
	}
	b, err := bible.Lookup(day.Book)
	if err != nil || bible.CheckRange(b, day.StartChapter, day.EndChapter) != nil {
		return nil
	}
	units := make([]plan.ChapterUnit, 0, day.EndChapter-day.StartChapter+1)
	for ch := day.StartChapter; ch <= day.EndChapter; ch++ {
		units = append(units, plan.ChapterUnit{Book: b.Name, Chapter: ch})
	}
	return units
}
