package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/reading-plan/internal/calendar"
	"github.com/zapponejosh/reading-plan/internal/config"
	"github.com/zapponejosh/reading-plan/internal/database"
	"github.com/zapponejosh/reading-plan/internal/event"
	"github.com/zapponejosh/reading-plan/internal/links"
	"github.com/zapponejosh/reading-plan/internal/logger"
	"github.com/zapponejosh/reading-plan/internal/plan"
)

// MaxRangeDays caps GET .../days?start=&end=.
const MaxRangeDays = 90

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db      *database.DB
	cfg     *config.Config
	profile config.Profile
	links   *links.Formatter
	logger  *slog.Logger
	now     func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *database.DB, cfg *config.Config, profile config.Profile, logger *slog.Logger) *Handlers {
	return &Handlers{
		db:      db,
		cfg:     cfg,
		profile: profile,
		links:   links.New(profile.Templates(), logger),
		logger:  logger,
		now:     time.Now,
	}
}

// DayView is one plan day with everything needed to read, listen and
// schedule it.
type DayView struct {
	plan.DayAssignment
	Date       string           `json:"date"`
	Day        int              `json:"day"` // 1-based
	Reading    string           `json:"reading"`
	Text       string           `json:"text,omitempty"`
	Audio      []string         `json:"audio,omitempty"`
	Devotional *links.Citations `json:"devotional,omitempty"`
	Event      event.Draft      `json:"event"`
}

// PlanView is a stored plan with its summary counts.
type PlanView struct {
	database.Plan
	StartDate string              `json:"start_date"`
	EndDate   string              `json:"end_date"`
	Stats     *database.PlanStats `json:"stats,omitempty"`
}

func (h *Handlers) dayView(day plan.DayAssignment) DayView {
	v := DayView{
		DayAssignment: day,
		Date:          calendar.FormatDate(day.Date),
		Day:           day.Index + 1,
		Reading:       day.Reading(),
		Event:         event.Build(day, h.links),
	}
	if !day.Empty() {
		c := h.links.Citations(day.Book, day.StartChapter, day.EndChapter)
		v.Text, v.Audio = c.Text, c.Audio
	}
	if book, ch, ok := event.Devotional(day); ok {
		c := h.links.Chapter(book, ch)
		v.Devotional = &c
	}
	return v
}

func planView(p database.Plan, stats *database.PlanStats) PlanView {
	return PlanView{
		Plan:      p,
		StartDate: calendar.FormatDate(p.StartDate),
		EndDate:   calendar.FormatDate(p.EndDate()),
		Stats:     stats,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Check database health
	if err := h.db.Health(ctx); err != nil {
		h.log(r).Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	WriteSuccess(w, map[string]string{
		"status": "healthy",
	})
}

// ListPlans handles GET /api/v1/plans
func (h *Handlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.db.ListPlans(r.Context())
	if err != nil {
		h.log(r).Error("failed to list plans", slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve plans")
		return
	}

	views := make([]PlanView, len(plans))
	for i, p := range plans {
		views[i] = planView(p, nil)
	}
	WriteSuccess(w, views)
}

// GetPlan handles GET /api/v1/plans/{planID}
func (h *Handlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	stats, err := h.db.GetPlanStats(r.Context(), p.ID)
	if err != nil {
		h.log(r).Error("failed to get plan stats", slog.String("plan_id", p.ID), slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve plan")
		return
	}

	WriteSuccess(w, planView(*p, stats))
}

// CreatePlanRequest overrides profile values for POST /api/v1/plans.
type CreatePlanRequest struct {
	Name      string `json:"name,omitempty"`
	StartDate string `json:"start_date,omitempty"` // YYYY-MM-DD
	Days      int    `json:"days,omitempty"`
}

// CreatePlan handles POST /api/v1/plans
//
// Generates a plan from the profile's source file and stores it.
func (h *Handlers) CreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log(r)

	var req CreatePlanRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	prof := h.profile
	if req.Name != "" {
		prof.Name = req.Name
	}
	if req.StartDate != "" {
		if _, err := calendar.ParseDateString(req.StartDate); err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid start_date: %s. Use YYYY-MM-DD", req.StartDate))
			return
		}
		prof.StartDate = req.StartDate
	}
	if req.Days < 0 || req.Days > plan.MaxDays {
		WriteBadRequest(w, fmt.Sprintf("days must be between 1 and %d", plan.MaxDays))
		return
	}
	if req.Days > 0 {
		prof.Days = req.Days
	}
	if err := prof.Validate(); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	if prof.Source == "" {
		WriteUnprocessable(w, "No plan source configured")
		return
	}

	start, err := prof.Start(h.now())
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid start date: %v", err))
		return
	}

	src, days, err := plan.Build(prof.Source, prof.SourceColumns(),
		plan.ParseOptions{Policy: prof.Policy(), Logger: log},
		plan.Options{Start: start, Days: prof.Days, Logger: log},
	)
	if err != nil {
		var rowErr *plan.RowError
		if errors.As(err, &rowErr) {
			WriteUnprocessable(w, err.Error())
			return
		}
		log.Error("failed to generate plan", slog.String("source", prof.Source), slog.Any("error", err))
		WriteInternalError(w, "Failed to generate plan")
		return
	}

	p := &database.Plan{Name: prof.Name, Translation: prof.Translation, StartDate: start}
	if err := h.db.SavePlan(ctx, p, days); err != nil {
		log.Error("failed to save plan", slog.Any("error", err))
		WriteInternalError(w, "Failed to save plan")
		return
	}

	log.Info("plan created",
		slog.String("plan_id", p.ID),
		slog.Int("days", p.Days),
		slog.Int("skipped_rows", len(src.Skipped)),
	)

	WriteCreated(w, planView(*p, nil))
}

// DeletePlan handles DELETE /api/v1/plans/{planID}
func (h *Handlers) DeletePlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	if err := h.db.DeletePlan(r.Context(), planID); err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, fmt.Sprintf("Plan not found: %s", planID))
			return
		}
		h.log(r).Error("failed to delete plan", slog.String("plan_id", planID), slog.Any("error", err))
		WriteInternalError(w, "Failed to delete plan")
		return
	}

	h.log(r).Info("plan deleted", slog.String("plan_id", planID))
	WriteSuccess(w, map[string]string{"deleted": planID})
}

// GetDays handles GET /api/v1/plans/{planID}/days?start=YYYY-MM-DD&end=YYYY-MM-DD
//
// start defaults to the plan start and end to the earlier of the plan end
// and MaxRangeDays later. The span is capped at MaxRangeDays.
func (h *Handlers) GetDays(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	startDate := p.StartDate
	if s := r.URL.Query().Get("start"); s != "" {
		d, err := calendar.ParseDateString(s)
		if err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid start date format: %s. Use YYYY-MM-DD", s))
			return
		}
		startDate = d
	}
	endDate := startDate.AddDate(0, 0, MaxRangeDays-1)
	if end := p.EndDate(); end.Before(endDate) {
		endDate = end
	}
	if s := r.URL.Query().Get("end"); s != "" {
		d, err := calendar.ParseDateString(s)
		if err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid end date format: %s. Use YYYY-MM-DD", s))
			return
		}
		endDate = d
	}

	if err := calendar.ValidateSpan(startDate, endDate, MaxRangeDays); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	from := calendar.IndexForDate(p.StartDate, startDate)
	to := calendar.IndexForDate(p.StartDate, endDate)
	days, err := h.db.GetDays(r.Context(), p.ID, from, to)
	if err != nil {
		h.log(r).Error("failed to get plan days", slog.String("plan_id", p.ID), slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve days")
		return
	}

	views := make([]DayView, len(days))
	for i, d := range days {
		views[i] = h.dayView(d)
	}

	WriteSuccess(w, map[string]interface{}{
		"start": calendar.FormatDate(startDate),
		"end":   calendar.FormatDate(endDate),
		"days":  views,
	})
}

// GetDay handles GET /api/v1/plans/{planID}/days/{index}
//
// index is 0-based, matching the stored day index.
func (h *Handlers) GetDay(w http.ResponseWriter, r *http.Request) {
	indexStr := chi.URLParam(r, "index")
	index, err := strconv.Atoi(indexStr)
	if err != nil || index < 0 {
		WriteBadRequest(w, fmt.Sprintf("Invalid day index: %s", indexStr))
		return
	}

	h.writeDay(w, r, func(p *database.Plan) (*plan.DayAssignment, error) {
		return h.db.GetDay(r.Context(), p.ID, index)
	})
}

// GetDateDay handles GET /api/v1/plans/{planID}/date/{YYYY-MM-DD}
func (h *Handlers) GetDateDay(w http.ResponseWriter, r *http.Request) {
	dateStr := chi.URLParam(r, "date")
	date, err := calendar.ParseDateString(dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", dateStr))
		return
	}

	h.writeDay(w, r, func(p *database.Plan) (*plan.DayAssignment, error) {
		return h.db.GetDayByDate(r.Context(), p.ID, date)
	})
}

// GetToday handles GET /api/v1/plans/{planID}/today
func (h *Handlers) GetToday(w http.ResponseWriter, r *http.Request) {
	today := calendar.Midnight(h.now())

	h.writeDay(w, r, func(p *database.Plan) (*plan.DayAssignment, error) {
		return h.db.GetDayByDate(r.Context(), p.ID, today)
	})
}

// writeDay loads the plan, fetches one day with get and writes its view.
func (h *Handlers) writeDay(w http.ResponseWriter, r *http.Request, get func(*database.Plan) (*plan.DayAssignment, error)) {
	p, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	day, err := get(p)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Day is not part of this plan")
			return
		}
		h.log(r).Error("failed to get plan day", slog.String("plan_id", p.ID), slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve day")
		return
	}

	WriteSuccess(w, h.dayView(*day))
}

// loadPlan resolves {planID}, writing the error response itself on failure.
func (h *Handlers) loadPlan(w http.ResponseWriter, r *http.Request) (*database.Plan, bool) {
	planID := chi.URLParam(r, "planID")
	p, err := h.db.GetPlan(r.Context(), planID)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, fmt.Sprintf("Plan not found: %s", planID))
			return nil, false
		}
		h.log(r).Error("failed to get plan", slog.String("plan_id", planID), slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve plan")
		return nil, false
	}
	return p, true
}

func (h *Handlers) log(r *http.Request) *slog.Logger {
	return logger.FromContext(r.Context(), h.logger)
}

// decodeJSON decodes an optional JSON request body.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

