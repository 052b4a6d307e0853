package cohorttest

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Waqar080206/usar-ranklist/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "cohort_test_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the cohort test tool.
func ShowHelp() {
	os.Stdout.WriteString(`USAR Ranklist Cohort Test Tool
==============================

A concurrent tool for exercising the ranklist ingestion and query pipeline
with a synthetic student cohort.

Usage:
  go run cmd/cohort-test/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -students int
        Number of student records to generate and submit (default 2000)
  -batch int
        Number of records per submission request (default 100)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated records (default: generated_cohort_TIMESTAMP.json)
  -log string
        Log file for test output (default: cohort_test_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/cohort-test/main.go

  # Test with custom parameters
  go run cmd/cohort-test/main.go -students 10000 -workers 16 -url http://localhost:8080

  # Test with verbose output
  go run cmd/cohort-test/main.go -verbose -students 5000
`)
}
