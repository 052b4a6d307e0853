package model

// gradePoints maps IPU letter grades to grade points.
// AB (absent) counts as zero, same as F.
var gradePoints = map[string]float64{
	"O":  10,
	"A+": 9,
	"A":  8,
	"B+": 7,
	"B":  6,
	"C":  5,
	"P":  4,
	"F":  0,
	"AB": 0,
}

// GradePoint returns the grade point for an IPU letter grade.
// Unknown grades count as zero.
func GradePoint(grade string) float64 {
	return gradePoints[grade]
}
