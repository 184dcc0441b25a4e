package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zapponejosh/reading-plan/internal/calendar"
	"github.com/zapponejosh/reading-plan/internal/plan"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// Helper Functions
// =============================================================================

// timestampLayout is fixed-width so created_at sorts as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Tries multiple formats and returns the zero time if parsing fails.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		timestampLayout,
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05.999999",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// =============================================================================
// Plan Queries
// =============================================================================

const planColumns = `id, name, translation, start_date, days, created_at`

func scanPlan(scan func(dest ...any) error) (*Plan, error) {
	var p Plan
	var start, created string
	if err := scan(&p.ID, &p.Name, &p.Translation, &start, &p.Days, &created); err != nil {
		return nil, err
	}
	t, err := calendar.ParseDateString(start)
	if err != nil {
		return nil, fmt.Errorf("plan %s start date: %w", p.ID, err)
	}
	p.StartDate = t
	p.CreatedAt = parseTimestamp(created)
	return &p, nil
}

func createPlan(ctx context.Context, q queryer, p *Plan) error {
	if p.ID == "" {
		p.ID = NewPlanID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO plans (`+planColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.Name, p.Translation,
		calendar.FormatDate(p.StartDate), p.Days,
		p.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return writeError(err, "plan "+p.ID)
	}
	return nil
}

// CreatePlan inserts the plan header within the transaction. An empty ID is
// filled with a new ULID.
func (tx *Tx) CreatePlan(ctx context.Context, p *Plan) error {
	return createPlan(ctx, tx.Tx, p)
}

// CreateDay inserts one plan day within the transaction.
func (tx *Tx) CreateDay(ctx context.Context, planID string, day plan.DayAssignment) error {
	chapters, err := marshalUnits(day.Units)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO plan_days (
			plan_id, day_index, date, book,
			start_chapter, end_chapter, psalm, proverb, chapters
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		planID, day.Index, calendar.FormatDate(day.Date), day.Book,
		day.StartChapter, day.EndChapter, day.Psalm, day.Proverb, chapters,
	)
	if err != nil {
		return writeError(err, fmt.Sprintf("plan %s day %d", planID, day.Index))
	}
	return nil
}

// SavePlan stores the plan and all of its days in one transaction.
// p.Days is set to len(days).
func (db *DB) SavePlan(ctx context.Context, p *Plan, days []plan.DayAssignment) error {
	p.Days = len(days)

	err := db.WithTx(ctx, func(tx *Tx) error {
		if err := tx.CreatePlan(ctx, p); err != nil {
			return err
		}
		for _, d := range days {
			if err := tx.CreateDay(ctx, p.ID, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	db.logger.Info("plan saved",
		"plan_id", p.ID,
		"name", p.Name,
		"days", p.Days,
	)
	return nil
}

// GetPlan retrieves a plan header by ID.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) GetPlan(ctx context.Context, id string) (*Plan, error) {
	row := db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = ?`, id)
	p, err := scanPlan(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query plan: %w", err)
	}
	return p, nil
}

// ListPlans returns every plan, newest first.
func (db *DB) ListPlans(ctx context.Context) ([]Plan, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM plans ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	plans := []Plan{}
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return plans, nil
}

// DeletePlan removes a plan and, by cascade, its days.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) DeletePlan(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// Plan Day Queries
// =============================================================================

const dayColumns = `day_index, date, book, start_chapter, end_chapter, psalm, proverb, chapters`

func scanDay(scan func(dest ...any) error) (*plan.DayAssignment, error) {
	var d plan.DayAssignment
	var date, chapters string
	err := scan(&d.Index, &date, &d.Book,
		&d.StartChapter, &d.EndChapter, &d.Psalm, &d.Proverb, &chapters)
	if err != nil {
		return nil, err
	}
	if d.Date, err = calendar.ParseDateString(date); err != nil {
		return nil, fmt.Errorf("day %d date: %w", d.Index, err)
	}
	if d.Units, err = unmarshalUnits(chapters); err != nil {
		return nil, fmt.Errorf("day %d: %w", d.Index, err)
	}
	return &d, nil
}

func (db *DB) getDay(ctx context.Context, where string, args ...any) (*plan.DayAssignment, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+dayColumns+` FROM plan_days WHERE `+where, args...)
	d, err := scanDay(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query plan day: %w", err)
	}
	return d, nil
}

// GetDay retrieves one day of a plan by its 0-based index.
// Returns ErrNotFound if the plan or the day doesn't exist.
func (db *DB) GetDay(ctx context.Context, planID string, index int) (*plan.DayAssignment, error) {
	return db.getDay(ctx, `plan_id = ? AND day_index = ?`, planID, index)
}

// GetDayByDate retrieves the plan day falling on date.
// Returns ErrNotFound if date is outside the plan.
func (db *DB) GetDayByDate(ctx context.Context, planID string, date time.Time) (*plan.DayAssignment, error) {
	return db.getDay(ctx, `plan_id = ? AND date = ?`, planID, calendar.FormatDate(date))
}

// GetDays retrieves days from..to (inclusive, 0-based) in index order.
// Returns an empty slice if none fall in range.
func (db *DB) GetDays(ctx context.Context, planID string, from, to int) ([]plan.DayAssignment, error) {
	if from > to {
		return nil, fmt.Errorf("invalid day range %d..%d", from, to)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+dayColumns+`
		FROM plan_days
		WHERE plan_id = ? AND day_index BETWEEN ? AND ?
		ORDER BY day_index ASC
	`, planID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query plan days: %w", err)
	}
	defer rows.Close()

	days := []plan.DayAssignment{}
	for rows.Next() {
		d, err := scanDay(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan plan day: %w", err)
		}
		days = append(days, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan days: %w", err)
	}
	return days, nil
}

// PlanStats summarizes a stored plan.
type PlanStats struct {
	Days        int `json:"days"`
	ReadingDays int `json:"reading_days"`
	PsalmDays   int `json:"psalm_days"`
	ProverbDays int `json:"proverb_days"`
}

// GetPlanStats counts days by kind for the plan.
func (db *DB) GetPlanStats(ctx context.Context, planID string) (*PlanStats, error) {
	var s PlanStats
	err := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN book != '' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN psalm > 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN proverb > 0 THEN 1 ELSE 0 END), 0)
		FROM plan_days
		WHERE plan_id = ?
	`, planID).Scan(&s.Days, &s.ReadingDays, &s.PsalmDays, &s.ProverbDays)
	if err != nil {
		return nil, fmt.Errorf("query plan stats: %w", err)
	}
	return &s, nil
}
