// Package smoke drives a running FuelSense service end to end and checks
// its predictions against the encoder and tier invariants.
package smoke

import (
	"time"

	"github.com/okian/fuelsense/internal/domain/types"
)

// Config holds configuration for a smoke run
type Config struct {
	BaseURL    string        // Base URL of the service
	Samples    int           // Random slider configurations on top of the categorical grid
	Repeats    int           // Cases resubmitted to check determinism
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Seed for the random samples; 0 picks one
	OutputFile string        // Output file for the JSON report
	Verbose    bool          // Log every failing case
}

// Case is one configuration submitted to /api/predict.
type Case struct {
	ID      string               `json:"id"`
	Request types.PredictRequest `json:"request"`
}

// Outcome is the service's answer to one case.
type Outcome struct {
	Case     Case                   `json:"case"`
	Status   int                    `json:"status"`
	Response *types.PredictResponse `json:"response,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Problems []string               `json:"problems,omitempty"`
}

// Stats holds run statistics
type Stats struct {
	CasesGenerated  int            `json:"cases_generated"`
	CasesSubmitted  int            `json:"cases_submitted"`
	CasesSuccessful int            `json:"cases_successful"`
	CasesFailed     int            `json:"cases_failed"`
	CasesInvalid    int            `json:"cases_invalid"`
	RepeatsChecked  int            `json:"repeats_checked"`
	RepeatsDiffered int            `json:"repeats_differed"`
	TierCounts      map[string]int `json:"tier_counts"`
	StartTime       time.Time      `json:"start_time"`
	EndTime         time.Time      `json:"end_time"`
	Duration        time.Duration  `json:"duration"`
}

// Report is the JSON document written at the end of a run.
type Report struct {
	RunID    string    `json:"run_id"`
	BaseURL  string    `json:"base_url"`
	Seed     uint64    `json:"seed"`
	Stats    Stats     `json:"stats"`
	Failures []Outcome `json:"failures"`
}

// Passed reports whether every case was served and satisfied the invariants.
func (r *Report) Passed() bool {
	return r.Stats.CasesFailed == 0 && r.Stats.CasesInvalid == 0 && r.Stats.RepeatsDiffered == 0
}
