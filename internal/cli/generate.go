package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/reading-plan/internal/calendar"
	"github.com/zapponejosh/reading-plan/internal/database"
	"github.com/zapponejosh/reading-plan/internal/emit"
	"github.com/zapponejosh/reading-plan/internal/plan"
)

type generateFlags struct {
	source string
	out    string
	start  string
	days   int
	db     string
	name   string
}

func newGenerateCmd(a *app) *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build a schedule from a plan source",
		Long: "Reads the plan source (CSV or XLSX), spreads its chapters over the " +
			"plan days on a 3/3/3/2 cadence, adds the psalm/proverb rotation and " +
			"writes the schedule. With --db the plan is also stored.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.source, "source", "s", "", "Plan-source CSV/XLSX (default: profile source)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Schedule output file, .csv or .xlsx")
	cmd.Flags().StringVar(&f.start, "start", "", "Date of day 1, YYYY-MM-DD (default: profile start_date or Jan 1)")
	cmd.Flags().IntVarP(&f.days, "days", "n", 0, "Number of plan days (default: profile days)")
	cmd.Flags().StringVar(&f.db, "db", "", "Also store the plan in this SQLite database")
	cmd.Flags().StringVar(&f.name, "name", "", "Stored plan name (default: profile name)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, f generateFlags) error {
	prof := a.profile
	if f.source != "" {
		prof.Source = f.source
	}
	if f.start != "" {
		prof.StartDate = f.start
	}
	if f.days != 0 {
		prof.Days = f.days
	}
	if f.name != "" {
		prof.Name = f.name
	}
	if err := prof.Validate(); err != nil {
		return err
	}
	if prof.Source == "" {
		return fmt.Errorf("no plan source: pass --source or set source in the profile")
	}

	start, err := prof.Start(time.Now())
	if err != nil {
		return fmt.Errorf("start date: %w", err)
	}

	src, days, err := plan.Build(prof.Source, prof.SourceColumns(),
		plan.ParseOptions{Policy: prof.Policy(), Logger: a.logger},
		plan.Options{Start: start, Days: prof.Days, Logger: a.logger},
	)
	if err != nil {
		return err
	}

	if err := emit.Write(f.out, days, prof.ScheduleColumns()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "wrote %d days (%s to %s) to %s\n",
		len(days),
		calendar.FormatDate(start),
		calendar.FormatDate(calendar.DateForIndex(start, len(days)-1)),
		f.out,
	)
	if n := len(src.Skipped); n > 0 {
		fmt.Fprintf(out, "skipped %d invalid source rows\n", n)
	}

	if f.db == "" {
		return nil
	}

	ctx := cmd.Context()
	db, err := a.openDB(ctx, f.db)
	if err != nil {
		return err
	}
	defer db.Close()

	p := &database.Plan{Name: prof.Name, Translation: prof.Translation, StartDate: start}
	if err := db.SavePlan(ctx, p, days); err != nil {
		return fmt.Errorf("store plan: %w", err)
	}
	fmt.Fprintf(out, "stored plan %s\n", p.ID)
	return nil
}
