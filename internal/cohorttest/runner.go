package cohorttest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Waqar080206/usar-ranklist/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete cohort test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting ranklist cohort test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("students", config.NumStudents),
		logger.Int("batchSize", config.BatchSize),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate the cohort
	records, err := generateCohort(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("cohort generation failed: %w", err)
	}

	// Step 3: Submit records concurrently
	if err := submitCohort(ctx, config, records, stats); err != nil {
		return fmt.Errorf("record submission failed: %w", err)
	}

	// Step 4: Wait until the accepted records are queryable
	if err := waitForProcessing(ctx, config, stats.RecordsAccepted); err != nil {
		return fmt.Errorf("processing wait failed: %w", err)
	}

	// Step 5: Retrieve overall and per-branch ranklists
	ranklists, err := retrieveRanklists(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("ranklist retrieval failed: %w", err)
	}

	// Step 6: Verify ranking invariants
	if err := verifyRanklists(ranklists, stats); err != nil {
		return fmt.Errorf("ranklist verification failed: %w", err)
	}

	// Step 7: Spot-check student details against ranklist entries
	if err := spotCheckStudents(ctx, config, ranklists[""], stats); err != nil {
		return fmt.Errorf("student spot check failed: %w", err)
	}

	displayTopPerformers(ranklists[""], config.Verbose)

	// Step 8: Save generated records to file
	if err := saveCohortToFile(ctx, config, records); err != nil {
		logger.Get().Warn(ctx, "failed to save cohort to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	if stats.VerificationFails > 0 {
		return fmt.Errorf("%d verification failures", stats.VerificationFails)
	}

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// waitForProcessing polls the overall ranklist until the expected number of
// records is visible or the wait deadline passes.
func waitForProcessing(ctx context.Context, config *Config, expected int) error {
	logger.Get().Info(ctx, "waiting for records to be processed", logger.Int("expected", expected))

	client := newHTTPClient(config.Timeout)
	deadline := time.Now().Add(ProcessingWaitMax)

	for {
		rl, err := retrieveRanklist(ctx, client, config.BaseURL, "", "total_marks", "desc")
		if err == nil && rl.Total >= expected {
			logger.Get().Info(ctx, "records processed", logger.Int("visible", rl.Total))
			return nil
		}

		if time.Now().After(deadline) {
			visible := 0
			if err == nil {
				visible = rl.Total
			}
			return fmt.Errorf("only %d of %d records visible after %s", visible, expected, ProcessingWaitMax)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ProcessingPollInterval):
		}
	}
}

// saveCohortToFile saves the generated records to a JSON file.
func saveCohortToFile(ctx context.Context, config *Config, records []Record) error {
	if len(records) == 0 {
		return fmt.Errorf("no records to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_cohort_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, record := range records {
		jsonData, err := marshalJSON(record)
		if err != nil {
			return fmt.Errorf("failed to marshal record %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}

		if i < len(records)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "cohort saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var acceptRate, recordsPerSecond float64

	if stats.RecordsSubmitted > 0 {
		acceptRate = float64(stats.RecordsAccepted) / float64(stats.RecordsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		recordsPerSecond = float64(stats.RecordsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("recordsGenerated", stats.RecordsGenerated),
		logger.Int("recordsSubmitted", stats.RecordsSubmitted),
		logger.Int("recordsAccepted", stats.RecordsAccepted),
		logger.Int("recordsDuplicate", stats.RecordsDuplicate),
		logger.Int("recordsRejected", stats.RecordsRejected),
		logger.Int("ranklistsChecked", stats.RanklistsChecked),
		logger.Int("studentsVerified", stats.StudentsVerified),
		logger.Int("verificationFails", stats.VerificationFails),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("recordsPerSecond", recordsPerSecond))
}
