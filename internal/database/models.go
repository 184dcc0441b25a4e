package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/zapponejosh/reading-plan/internal/plan"
)

// Plan is one stored, generated reading plan.
type Plan struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Translation string    `json:"translation"`
	StartDate   time.Time `json:"start_date"`
	Days        int       `json:"days"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewPlanID returns a new time-sortable plan ID.
func NewPlanID() string {
	return ulid.Make().String()
}

// EndDate is the date of the plan's last day.
func (p Plan) EndDate() time.Time {
	return p.StartDate.AddDate(0, 0, p.Days-1)
}

// marshalUnits encodes a day's chapter units for the chapters column.
func marshalUnits(units []plan.ChapterUnit) (string, error) {
	if units == nil {
		units = []plan.ChapterUnit{}
	}
	b, err := json.Marshal(units)
	if err != nil {
		return "", fmt.Errorf("marshal chapters: %w", err)
	}
	return string(b), nil
}

// unmarshalUnits decodes the chapters column. Empty arrays come back nil.
func unmarshalUnits(s string) ([]plan.ChapterUnit, error) {
	if s == "" {
		return nil, nil
	}
	var units []plan.ChapterUnit
	if err := json.Unmarshal([]byte(s), &units); err != nil {
		return nil, fmt.Errorf("unmarshal chapters: %w", err)
	}
	if len(units) == 0 {
		return nil, nil
	}
	return units, nil
}
