// Package types contains common types used across the application
package types

// Entry represents one row of a ranklist response.
type Entry struct {
	Rank       int     `json:"rank"`
	RollNo     string  `json:"roll_no"`
	Name       string  `json:"name"`
	Branch     string  `json:"branch"`
	BranchName string  `json:"branch_name"`
	Semester   string  `json:"semester"`
	Batch      string  `json:"batch"`
	SGPA       float64 `json:"sgpa"`
	Percentage float64 `json:"percentage"`
	TotalMarks float64 `json:"total_marks"`
	Credits    float64 `json:"credits"`
}

// Ranklist is the full response shape for a ranklist query.
type Ranklist struct {
	Total         int      `json:"total"`
	AverageMetric float64  `json:"average_metric"`
	TopPerformer  *Entry   `json:"top_performer"`
	Excluded      []string `json:"excluded,omitempty"`
	Skipped       []string `json:"skipped,omitempty"`
	Entries       []Entry  `json:"ranklist"`
}
