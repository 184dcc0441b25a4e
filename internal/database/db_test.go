package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/reading-plan/internal/calendar"
	"github.com/zapponejosh/reading-plan/internal/plan"
)

// testDB opens a migrated in-memory plan store.
func testDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(DefaultConfig(":memory:"), quietLogger())
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { db.Close() })

	_, err = db.Migrate(context.Background())
	require.NoError(t, err, "migrate test database")
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testStart = calendar.StartOfYear(2026)

// testDays builds n days of Genesis, three chapters each, with devotionals.
func testDays(n int) []plan.DayAssignment {
	days := make([]plan.DayAssignment, n)
	for i := range days {
		units := []plan.ChapterUnit{
			{Book: "Genesis", Chapter: 3*i + 1},
			{Book: "Genesis", Chapter: 3*i + 2},
			{Book: "Genesis", Chapter: 3*i + 3},
		}
		days[i] = plan.NewDay(i, calendar.DateForIndex(testStart, i), units)
	}
	return days
}

// seedTestPlan stores a plan of n days.
func seedTestPlan(t *testing.T, db *DB, n int) *Plan {
	t.Helper()

	p := &Plan{Name: "Test Plan", Translation: "BSB", StartDate: testStart}
	require.NoError(t, db.SavePlan(context.Background(), p, testDays(n)), "save test plan")
	return p
}

// =============================================================================
// Store Tests
// =============================================================================

func TestOpen(t *testing.T) {
	db := testDB(t)
	assert.NoError(t, db.Health(context.Background()))
}

func TestMigrate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	v, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	// Already at the latest version.
	count, err := db.Migrate(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMigrate_FreshStore(t *testing.T) {
	db, err := Open(DefaultConfig(":memory:"), quietLogger())
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	v, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.Error(t, db.Health(ctx), "no plans table before Migrate")

	count, err := db.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
	assert.NoError(t, db.Health(ctx))
}

// =============================================================================
// Plan Tests
// =============================================================================

func TestSavePlan(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	p := seedTestPlan(t, db, 10)
	assert.Len(t, p.ID, 26, "plan ID is a ULID")
	assert.Equal(t, 10, p.Days)

	got, err := db.GetPlan(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Plan", got.Name)
	assert.Equal(t, "BSB", got.Translation)
	assert.True(t, got.StartDate.Equal(testStart), "StartDate = %v", got.StartDate)
	assert.False(t, got.CreatedAt.IsZero())
	assert.True(t, got.EndDate().Equal(calendar.DateForIndex(testStart, 9)), "EndDate = %v", got.EndDate())

	stats, err := db.GetPlanStats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Days)
}

func TestSavePlan_DuplicateID(t *testing.T) {
	db := testDB(t)
	p := seedTestPlan(t, db, 1)

	again := &Plan{ID: p.ID, Name: "Again", Translation: "BSB", StartDate: testStart}
	err := db.SavePlan(context.Background(), again, testDays(1))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSavePlan_DuplicateDayRollsBack(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	days := testDays(2)
	days[1].Index = 0

	p := &Plan{Name: "Broken", Translation: "BSB", StartDate: testStart}
	require.ErrorIs(t, db.SavePlan(ctx, p, days), ErrDuplicate)

	_, err := db.GetPlan(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound, "plan should not exist after rollback")
}

func TestSavePlan_ConstraintErrors(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	tests := []struct {
		name string
		save func() error
	}{
		{"no days", func() error {
			p := &Plan{Name: "Empty", Translation: "BSB", StartDate: testStart}
			return db.SavePlan(ctx, p, nil)
		}},
		{"day for missing plan", func() error {
			return db.WithTx(ctx, func(tx *Tx) error {
				return tx.CreateDay(ctx, "missing", testDays(1)[0])
			})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.save(), ErrInvalid)
		})
	}
}

func TestGetPlan_NotFound(t *testing.T) {
	db := testDB(t)

	_, err := db.GetPlan(context.Background(), "nope")
	assert.True(t, IsNotFound(err), "GetPlan() error = %v", err)
}

func TestListPlans(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	plans, err := db.ListPlans(ctx)
	require.NoError(t, err)
	assert.Empty(t, plans)

	first := seedTestPlan(t, db, 1)
	second := seedTestPlan(t, db, 1)

	plans, err = db.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, second.ID, plans[0].ID, "newest first")
	assert.Equal(t, first.ID, plans[1].ID)
}

func TestDeletePlan(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	p := seedTestPlan(t, db, 3)

	require.NoError(t, db.DeletePlan(ctx, p.ID))

	stats, err := db.GetPlanStats(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.Days, "days cascade with the plan")

	assert.ErrorIs(t, db.DeletePlan(ctx, p.ID), ErrNotFound)
}

// =============================================================================
// Plan Day Tests
// =============================================================================

func TestGetDay(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	p := seedTestPlan(t, db, 10)

	tests := []struct {
		name      string
		index     int
		wantStart int
		wantPsalm int
		wantProv  int
		wantErr   error
	}{
		{"first day", 0, 1, 1, 0, nil},
		{"proverb day", 5, 16, 0, 1, nil},
		{"last day", 9, 28, 9, 0, nil},
		{"past end", 10, 0, 0, 0, ErrNotFound},
		{"negative", -1, 0, 0, 0, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := db.GetDay(ctx, p.ID, tt.index)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Genesis", day.Book)
			assert.Equal(t, tt.wantStart, day.StartChapter)
			assert.Equal(t, tt.wantStart+2, day.EndChapter)
			assert.Equal(t, tt.wantPsalm, day.Psalm)
			assert.Equal(t, tt.wantProv, day.Proverb)
			assert.Len(t, day.Units, 3)
		})
	}
}

func TestGetDay_EmptyDayHasNoUnits(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	days := []plan.DayAssignment{plan.NewDay(0, testStart, nil)}
	p := &Plan{Name: "Empty", Translation: "BSB", StartDate: testStart}
	require.NoError(t, db.SavePlan(ctx, p, days))

	day, err := db.GetDay(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.True(t, day.Empty())
	assert.Nil(t, day.Units)
	assert.Equal(t, 1, day.Psalm)
}

func TestGetDayByDate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	p := seedTestPlan(t, db, 10)

	date, err := calendar.ParseDateString("2026-01-03")
	require.NoError(t, err)
	day, err := db.GetDayByDate(ctx, p.ID, date)
	require.NoError(t, err)
	assert.Equal(t, 2, day.Index)

	outside, err := calendar.ParseDateString("2025-12-31")
	require.NoError(t, err)
	_, err = db.GetDayByDate(ctx, p.ID, outside)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetDays(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	p := seedTestPlan(t, db, 10)

	tests := []struct {
		name     string
		from, to int
		want     int
		wantErr  bool
	}{
		{"full range", 0, 9, 10, false},
		{"middle", 3, 5, 3, false},
		{"clipped at end", 8, 20, 2, false},
		{"outside", 50, 60, 0, false},
		{"inverted", 5, 3, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := db.GetDays(ctx, p.ID, tt.from, tt.to)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, days, tt.want)
			for i := 1; i < len(days); i++ {
				assert.Equal(t, days[i-1].Index+1, days[i].Index, "index order")
			}
		})
	}
}

func TestGetPlanStats(t *testing.T) {
	db := testDB(t)
	p := seedTestPlan(t, db, 12)

	stats, err := db.GetPlanStats(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanStats{Days: 12, ReadingDays: 12, PsalmDays: 10, ProverbDays: 2}, *stats)
}

// =============================================================================
// Transaction Tests
// =============================================================================

func TestWithTx(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	p := &Plan{Name: "Tx", Translation: "BSB", StartDate: testStart, Days: 1}
	err := db.WithTx(ctx, func(tx *Tx) error {
		if err := tx.CreatePlan(ctx, p); err != nil {
			return err
		}
		return tx.CreateDay(ctx, p.ID, testDays(1)[0])
	})
	require.NoError(t, err)

	day, err := db.GetDay(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Genesis 1-3", day.Reading())
}

func TestWithTx_Rollback(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	errStop := errors.New("stop")
	p := &Plan{Name: "Rollback", Translation: "BSB", StartDate: testStart, Days: 1}
	err := db.WithTx(ctx, func(tx *Tx) error {
		if err := tx.CreatePlan(ctx, p); err != nil {
			return err
		}
		return errStop
	})
	require.ErrorIs(t, err, errStop)

	_, err = db.GetPlan(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound, "plan should not exist after rollback")
}
