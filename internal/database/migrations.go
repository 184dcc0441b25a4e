package database

// migration is one forward-only schema step. Versions start at 1 and are
// applied in slice order.
type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{1, "plans", migrationV1Plans},
	{2, "plan_days", migrationV2PlanDays},
}

// migrationV1Plans creates the plans table.
//
// A plan is one generated schedule: a name, the translation its links point
// at, the date of day 0 and the number of days.
const migrationV1Plans = `
CREATE TABLE IF NOT EXISTS plans (
    id TEXT PRIMARY KEY,                -- ULID, sortable by creation time
    name TEXT NOT NULL,
    translation TEXT NOT NULL,
    start_date TEXT NOT NULL,           -- YYYY-MM-DD
    days INTEGER NOT NULL CHECK (days > 0),
    created_at TEXT NOT NULL
);
`

// migrationV2PlanDays creates the plan_days table.
//
// One row per calendar day of a plan, mirroring the schedule artifact
// (date, book, start/end chapter, psalm, proverb; 0 = none). chapters holds
// the day's actual chapter units as JSON, since a day can span two books
// and the book/start/end triple cannot express that.
const migrationV2PlanDays = `
CREATE TABLE IF NOT EXISTS plan_days (
    plan_id TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
    day_index INTEGER NOT NULL CHECK (day_index >= 0),
    date TEXT NOT NULL,                 -- YYYY-MM-DD
    book TEXT NOT NULL DEFAULT '',
    start_chapter INTEGER NOT NULL DEFAULT 0,
    end_chapter INTEGER NOT NULL DEFAULT 0,
    psalm INTEGER NOT NULL DEFAULT 0,
    proverb INTEGER NOT NULL DEFAULT 0,
    chapters TEXT NOT NULL DEFAULT '[]',

    PRIMARY KEY (plan_id, day_index)
);

CREATE INDEX IF NOT EXISTS idx_plan_days_date ON plan_days(plan_id, date);
`
