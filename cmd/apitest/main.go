// Command apitest runs a smoke test against a running reading-plan API.
//
// Usage:
//
//	go run ./cmd/apitest -url http://localhost:8080 [-plan <id>] [-key <api key>]
//
// Without -plan the newest stored plan is used; with -key and no stored
// plans, one is created first.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// PlanResponse is one entry of /api/v1/plans
type PlanResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

// DayResponse is the subset of a plan day the smoke test checks
type DayResponse struct {
	Index   int      `json:"index"`
	Date    string   `json:"date"`
	Reading string   `json:"reading"`
	Psalm   int      `json:"psalm"`
	Proverb int      `json:"proverb"`
	Text    string   `json:"text"`
	Audio   []string `json:"audio"`
	Event   struct {
		Summary string `json:"summary"`
	} `json:"event"`
}

// RangeResponse is the response for /days?start=&end=
type RangeResponse struct {
	Start string        `json:"start"`
	End   string        `json:"end"`
	Days  []DayResponse `json:"days"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status string `json:"status"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL, apiKey string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run(planID string) {
	fmt.Println("==============================================")
	fmt.Println("Reading Plan API Smoke Test")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)

	tr.testHealth()

	plan, ok := tr.findPlan(planID)
	if ok {
		tr.testDays(plan)
		tr.testDates(plan)
		tr.testEdgeCases(plan)
	}

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	var health HealthResponse
	if err := tr.get("/health", &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess("Health check passed")
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

// findPlan picks the plan under test, creating one when allowed.
func (tr *TestRunner) findPlan(planID string) (PlanResponse, bool) {
	tr.printSection("Plans")

	if planID != "" {
		var plan PlanResponse
		if err := tr.get("/api/v1/plans/"+planID, &plan); err != nil {
			tr.recordError("Get plan", err.Error())
			return plan, false
		}
		tr.recordSuccess(fmt.Sprintf("Plan %s: %s (%d days)", plan.ID, plan.Name, plan.Days))
		return plan, true
	}

	var plans []PlanResponse
	if err := tr.get("/api/v1/plans", &plans); err != nil {
		tr.recordError("List plans", err.Error())
		return PlanResponse{}, false
	}
	tr.recordSuccess(fmt.Sprintf("Listed %d plan(s)", len(plans)))

	if len(plans) > 0 {
		return plans[0], true
	}
	if tr.apiKey == "" {
		tr.recordError("Plans", "no stored plans; pass -key to create one")
		return PlanResponse{}, false
	}

	var created PlanResponse
	if err := tr.post("/api/v1/plans", map[string]string{"name": "Smoke test"}, &created); err != nil {
		tr.recordError("Create plan", err.Error())
		return created, false
	}
	tr.recordSuccess(fmt.Sprintf("Created plan %s (%d days)", created.ID, created.Days))
	return created, true
}

func (tr *TestRunner) testDays(plan PlanResponse) {
	tr.printSection("Days by Index")

	for _, index := range []int{0, plan.Days / 2, plan.Days - 1} {
		var day DayResponse
		if err := tr.get(fmt.Sprintf("/api/v1/plans/%s/days/%d", plan.ID, index), &day); err != nil {
			tr.recordError(fmt.Sprintf("Day %d", index), err.Error())
			continue
		}
		if day.Index != index {
			tr.recordError(fmt.Sprintf("Day %d", index), fmt.Sprintf("got index %d", day.Index))
			continue
		}
		if day.Psalm > 0 && day.Proverb > 0 {
			tr.recordError(fmt.Sprintf("Day %d", index), "both psalm and proverb set")
			continue
		}
		tr.recordSuccess(fmt.Sprintf("Day %d (%s): %s", index, day.Date, day.Event.Summary))
		tr.printDayDetail(day)
	}

	var week RangeResponse
	path := fmt.Sprintf("/api/v1/plans/%s/days?start=%s", plan.ID, plan.StartDate)
	if err := tr.get(path, &week); err != nil {
		tr.recordError("Range", err.Error())
		return
	}
	for i := 1; i < len(week.Days); i++ {
		if week.Days[i].Index != week.Days[i-1].Index+1 {
			tr.recordError("Range", fmt.Sprintf("gap between day %d and %d", week.Days[i-1].Index, week.Days[i].Index))
			return
		}
	}
	tr.recordSuccess(fmt.Sprintf("Range %s..%s: %d days in order", week.Start, week.End, len(week.Days)))
}

func (tr *TestRunner) testDates(plan PlanResponse) {
	tr.printSection("Days by Date")

	for _, date := range []string{plan.StartDate, plan.EndDate} {
		var day DayResponse
		if err := tr.get(fmt.Sprintf("/api/v1/plans/%s/date/%s", plan.ID, date), &day); err != nil {
			tr.recordError("Date "+date, err.Error())
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s: %s", date, day.Event.Summary))
	}

	status, err := tr.status(fmt.Sprintf("/api/v1/plans/%s/today", plan.ID))
	switch {
	case err != nil:
		tr.recordError("Today", err.Error())
	case status == http.StatusOK || status == http.StatusNotFound:
		tr.recordSuccess(fmt.Sprintf("Today: HTTP %d", status))
	default:
		tr.recordError("Today", fmt.Sprintf("HTTP %d", status))
	}
}

func (tr *TestRunner) testEdgeCases(plan PlanResponse) {
	tr.printSection("Edge Cases")

	testCases := []struct {
		path   string
		status int
		desc   string
	}{
		{"/api/v1/plans/" + plan.ID + "/days/abc", http.StatusBadRequest, "non-numeric index"},
		{fmt.Sprintf("/api/v1/plans/%s/days/%d", plan.ID, plan.Days), http.StatusNotFound, "index past plan end"},
		{"/api/v1/plans/" + plan.ID + "/date/2024-13-01", http.StatusBadRequest, "invalid date"},
		{"/api/v1/plans/" + plan.ID + "/days?start=2020-01-01&end=2021-01-01", http.StatusBadRequest, "range over 90 days"},
		{"/api/v1/plans/does-not-exist", http.StatusNotFound, "unknown plan"},
	}

	for _, tc := range testCases {
		status, err := tr.status(tc.path)
		if err != nil {
			tr.recordError(tc.desc, err.Error())
			continue
		}
		if status != tc.status {
			tr.recordError(tc.desc, fmt.Sprintf("HTTP %d, want %d", status, tc.status))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s: HTTP %d", tc.desc, status))
	}
}

// =============================================================================
// Helpers
// =============================================================================

func (tr *TestRunner) get(path string, target interface{}) error {
	resp, err := tr.client.Get(tr.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decode(resp, target)
}

func (tr *TestRunner) post(path string, body, target interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, tr.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", tr.apiKey)

	resp, err := tr.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decode(resp, target)
}

func (tr *TestRunner) status(path string) (int, error) {
	resp, err := tr.client.Get(tr.baseURL + path)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func decode(resp *http.Response, target interface{}) error {
	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("HTTP %d: invalid JSON: %w", resp.StatusCode, err)
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return fmt.Errorf("API error (HTTP %d): %s", resp.StatusCode, errMsg)
	}

	return json.Unmarshal(apiResp.Data, target)
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) printDayDetail(d DayResponse) {
	if !tr.verbose {
		return
	}
	if d.Text != "" {
		fmt.Printf("    %s\n", d.Text)
	}
	for _, line := range d.Audio {
		fmt.Printf("    %s\n", line)
	}
	fmt.Println()
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
		return
	}
	fmt.Println("All tests passed! ✓")
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	planID := flag.String("plan", "", "Plan ID to test (default: newest stored plan)")
	apiKey := flag.String("key", os.Getenv("API_KEY"), "API key, used to create a plan when none exist")
	verbose := flag.Bool("v", false, "Verbose output (show links)")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *apiKey, *verbose)
	runner.Run(*planID)

	// Exit with error code if tests failed
	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
