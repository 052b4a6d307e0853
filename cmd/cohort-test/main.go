package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/Waqar080206/usar-ranklist/internal/cohorttest"
)

// Default configuration constants.
const (
	defaultNumStudents = 2000
	defaultBatchSize   = 100
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numStudents = flag.Int("students", defaultNumStudents, "Number of student records to generate and submit")
		batchSize   = flag.Int("batch", defaultBatchSize, "Number of records per submission request")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile  = flag.String("output", "", "Output file for generated records (default: generated_cohort_TIMESTAMP.json)")
		logFile     = flag.String("log", "", "Log file for test output (default: cohort_test_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		cohorttest.ShowHelp()
		return
	}

	// Setup logging
	if err := cohorttest.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &cohorttest.Config{
		BaseURL:     *baseURL,
		NumStudents: *numStudents,
		BatchSize:   *batchSize,
		Workers:     *workers,
		Timeout:     *timeout,
		OutputFile:  *outputFile,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	// Run the test
	if err := cohorttest.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
