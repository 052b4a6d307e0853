// Package model contains domain models passed between layers.
package model

// SubjectScore is a single paper result inside a student record.
type SubjectScore struct {
	PaperID   string  `json:"paper_id"`
	PaperName string  `json:"paper_name"`
	Credits   int     `json:"credits"`
	Internal  int     `json:"internal"`
	External  int     `json:"external"`
	Marks     float64 `json:"total"` // marks obtained in the paper
	Grade     string  `json:"grade"`
}

// StudentRecord is a raw per-student result as produced by the parser.
// It is read-only after ingestion; derived metrics are recomputed per query.
type StudentRecord struct {
	RollNo         string         `json:"roll_no"` // enrollment number, primary key
	Name           string         `json:"name"`
	SID            string         `json:"sid,omitempty"`
	Programme      string         `json:"programme,omitempty"`
	Semester       string         `json:"semester"`
	Batch          string         `json:"batch"`
	MaxMarks       float64        `json:"max_marks"`
	CreditsSecured float64        `json:"credits_secured"`
	Subjects       []SubjectScore `json:"subjects"`

	// SGPA carries a directly-supplied grade-point metric for data sources
	// that publish grade points instead of raw marks. Zero means "not
	// supplied" only when HasSGPA is false.
	SGPA    float64 `json:"sgpa,omitempty"`
	HasSGPA bool    `json:"has_sgpa,omitempty"`
}

// DerivedRecord is a student record augmented with computed aggregates.
// Produced fresh by the aggregator; it keeps no reference to the raw record.
type DerivedRecord struct {
	RollNo    string
	Name      string
	Branch    string
	Semester  string
	Batch     string
	Credits   float64
	Programme string

	// Marks-based metrics. Absent (HasMarks false) when the data source
	// supplied only a grade-point metric.
	TotalMarks float64
	MaxMarks   float64
	Percentage float64
	HasMarks   bool

	SGPA    float64
	HasSGPA bool
}
