// Package aggregate turns raw student records into derived records
// carrying total marks, percentage and SGPA.
package aggregate

import (
	"fmt"
	"math"

	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
)

// decimalScale fixes user-facing metrics at two decimal places.
const decimalScale = 100

// round2 rounds to two decimals, half away from zero. Result metrics are
// user-facing and must reproduce identically across runs.
func round2(x float64) float64 {
	return math.Round(x*decimalScale) / decimalScale
}

// Aggregate computes a DerivedRecord from a raw record and the maximum
// obtainable marks for its subject set. It is a pure function: the input
// record is never mutated and no state is carried between calls.
//
// When the record carries subject scores, maxMarks must be positive and all
// marks non-negative; violations fail with ErrInvalidInput rather than being
// clamped. When the record carries no subjects but supplies an SGPA directly,
// that metric passes through unchanged and the marks fields stay absent.
func Aggregate(rec model.StudentRecord, maxMarks float64) (model.DerivedRecord, error) {
	d := model.DerivedRecord{
		RollNo:    rec.RollNo,
		Name:      rec.Name,
		Branch:    model.BranchFromRoll(rec.RollNo).Short,
		Semester:  rec.Semester,
		Batch:     rec.Batch,
		Credits:   rec.CreditsSecured,
		Programme: rec.Programme,
	}

	if len(rec.Subjects) == 0 {
		if !rec.HasSGPA {
			return model.DerivedRecord{}, fmt.Errorf("%w: record %s has neither subjects nor sgpa", ErrInvalidInput, rec.RollNo)
		}
		d.SGPA = rec.SGPA
		d.HasSGPA = true
		return d, nil
	}

	if maxMarks <= 0 {
		return model.DerivedRecord{}, fmt.Errorf("%w: max marks must be positive, got %v", ErrInvalidInput, maxMarks)
	}

	var total float64
	for _, s := range rec.Subjects {
		if s.Marks < 0 {
			return model.DerivedRecord{}, fmt.Errorf("%w: negative marks %v in paper %s of record %s", ErrInvalidInput, s.Marks, s.PaperID, rec.RollNo)
		}
		total += s.Marks
	}

	d.TotalMarks = total
	d.MaxMarks = maxMarks
	d.Percentage = round2(total / maxMarks * decimalScale)
	d.HasMarks = true

	d.SGPA, d.HasSGPA = sgpa(rec, d.Percentage)
	return d, nil
}

// sgpa computes the credit-weighted grade-point average over subjects that
// carry credits. Records without credit data fall back to an estimate of
// percentage/10, matching the published ranklists this data derives from.
func sgpa(rec model.StudentRecord, percentage float64) (float64, bool) {
	if rec.HasSGPA {
		return rec.SGPA, true
	}

	var credits, weighted float64
	for _, s := range rec.Subjects {
		if s.Credits <= 0 {
			continue
		}
		credits += float64(s.Credits)
		weighted += float64(s.Credits) * model.GradePoint(s.Grade)
	}
	if credits > 0 {
		return round2(weighted / credits), true
	}
	if percentage > 0 {
		return round2(percentage / 10), true
	}
	return 0, false
}
