package smoke

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fuelsense/pkg/logger"
)

// Run executes the complete smoke. A report is returned whenever the service
// was reachable; err is ErrChecksFailed when any case broke an invariant.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	log := logger.Get()
	report := &Report{
		RunID:   uuid.NewString(),
		BaseURL: cfg.BaseURL,
		Seed:    cfg.Seed,
		Stats:   Stats{StartTime: time.Now(), TierCounts: make(map[string]int)},
	}
	if report.Seed == 0 {
		report.Seed = rand.Uint64()
	}

	log.Info(ctx, "starting fuelsense smoke",
		logger.String("runID", report.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("samples", cfg.Samples),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Any("seed", report.Seed))

	client := NewHTTPClient(cfg)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Read the form tables
	opts, err := fetchOptions(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("options retrieval failed: %w", err)
	}

	// Step 3: Generate cases
	rng := rand.New(rand.NewPCG(report.Seed, report.Seed>>1|1))
	cases := Generate(opts, cfg.Samples, rng)
	report.Stats.CasesGenerated = len(cases)

	// Step 4: Submit concurrently and verify each answer
	outcomes := submitCases(ctx, cfg, client, cases)
	for i := range outcomes {
		report.Stats.CasesSubmitted++
		o := &outcomes[i]
		if o.Status != http.StatusOK {
			report.Stats.CasesFailed++
		}
		o.Problems = Verify(*o)
		if len(o.Problems) > 0 {
			if o.Status == http.StatusOK {
				report.Stats.CasesInvalid++
			}
			report.Failures = append(report.Failures, *o)
			if cfg.Verbose {
				log.Warn(ctx, "case failed", logger.String("case", o.Case.ID), logger.Any("problems", o.Problems))
			}
			continue
		}
		report.Stats.CasesSuccessful++
		report.Stats.TierCounts[o.Response.Tier.Name]++
	}

	// Step 5: Resubmit a prefix and require identical consumption
	checkRepeats(ctx, cfg, client, outcomes, report)

	report.Stats.EndTime = time.Now()
	report.Stats.Duration = report.Stats.EndTime.Sub(report.Stats.StartTime)
	displayFinalStats(ctx, report)

	// Step 6: Save the report
	if cfg.OutputFile != "" {
		if err := saveReport(cfg.OutputFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		} else {
			log.Info(ctx, "report saved to file", logger.String("filename", cfg.OutputFile))
		}
	}

	if !report.Passed() {
		return report, ErrChecksFailed
	}
	log.Info(ctx, "smoke completed successfully")
	return report, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	_, _ = readResponseBody(resp)

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: healthz returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

func checkRepeats(ctx context.Context, cfg *Config, client *HTTPClient, outcomes []Outcome, report *Report) {
	n := cfg.Repeats
	if n > len(outcomes) {
		n = len(outcomes)
	}
	if n <= 0 {
		return
	}
	cases := make([]Case, n)
	for i := 0; i < n; i++ {
		cases[i] = outcomes[i].Case
	}
	again := submitCases(ctx, cfg, client, cases)
	for i := range again {
		if outcomes[i].Response == nil {
			continue
		}
		report.Stats.RepeatsChecked++
		if !sameConsumption(outcomes[i], again[i]) {
			report.Stats.RepeatsDiffered++
			again[i].Problems = []string{"repeated submission returned a different consumption"}
			report.Failures = append(report.Failures, again[i])
		}
	}
}

// saveReport writes the report as indented JSON.
func saveReport(filename string, report *Report) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), reportPermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, report *Report) {
	s := report.Stats
	var casesPerSecond float64
	if s.Duration > 0 {
		casesPerSecond = float64(s.CasesSubmitted) / s.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("casesGenerated", s.CasesGenerated),
		logger.Int("casesSubmitted", s.CasesSubmitted),
		logger.Int("casesSuccessful", s.CasesSuccessful),
		logger.Int("casesFailed", s.CasesFailed),
		logger.Int("casesInvalid", s.CasesInvalid),
		logger.Int("repeatsChecked", s.RepeatsChecked),
		logger.Int("repeatsDiffered", s.RepeatsDiffered),
		logger.Any("tiers", s.TierCounts),
		logger.String("duration", s.Duration.String()),
		logger.Float64("casesPerSecond", casesPerSecond))
}
