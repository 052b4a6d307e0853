package cohorttest

import (
	"time"

	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
)

// Config holds configuration for the cohort test
type Config struct {
	BaseURL     string        // Base URL of the service
	NumStudents int           // Number of student records to generate
	BatchSize   int           // Records per POST /api/results request
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Output file for generated records
	LogFile     string        // Log file for test output
	Verbose     bool          // Enable verbose logging
}

// Record is the wire form of a submitted student record.
type Record = model.StudentRecord

// Entry represents a ranklist entry as returned by the service.
type Entry struct {
	Rank       int     `json:"rank"`
	RollNo     string  `json:"roll_no"`
	Name       string  `json:"name"`
	Branch     string  `json:"branch"`
	Semester   string  `json:"semester"`
	Batch      string  `json:"batch"`
	SGPA       float64 `json:"sgpa"`
	Percentage float64 `json:"percentage"`
	TotalMarks float64 `json:"total_marks"`
}

// RanklistResponse represents the response from GET /api/ranklist.
type RanklistResponse struct {
	Total         int     `json:"total"`
	AverageMetric float64 `json:"average_metric"`
	TopPerformer  *Entry  `json:"top_performer"`
	Ranklist      []Entry `json:"ranklist"`
}

// SubmitResponse represents the response from record submission.
// Rejected carries the roll numbers that failed validation.
type SubmitResponse struct {
	Accepted   int      `json:"accepted"`
	Duplicates int      `json:"duplicates"`
	Rejected   []string `json:"rejected"`
}

// Stats holds test statistics
type Stats struct {
	RecordsGenerated  int
	RecordsSubmitted  int
	RecordsAccepted   int
	RecordsDuplicate  int
	RecordsRejected   int
	RanklistsChecked  int
	StudentsVerified  int
	VerificationFails int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
