package cohorttest

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
	"github.com/Waqar080206/usar-ranklist/pkg/logger"
	"github.com/google/uuid"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	performerDivisor   = 8
)

// Constants for subject mark generation ranges (out of 100).
const (
	avgPerformerMin    = 45.0
	avgPerformerRange  = 25.0
	highPerformerMin   = 70.0
	highPerformerRange = 18.0
	lowPerformerMin    = 25.0
	lowPerformerRange  = 20.0
	eliteMin           = 88.0
	eliteRange         = 12.0
	failingMin         = 10.0
	failingRange       = 25.0
	wideMin            = 10.0
	wideRange          = 90.0
)

// Constants for performance type cases.
const (
	caseAveragePerformer = 0
	caseHighPerformer    = 1
	caseLowPerformer     = 2
	caseElitePerformer   = 3
	caseFailingPerformer = 4
	caseMidHighPerformer = 5
	caseMidLowPerformer  = 6
	caseWideRange        = 7
)

const subjectsPerStudent = 6

// paperNames seeds the synthetic subject vocabulary.
var paperNames = []string{
	"Applied Mathematics",
	"Data Structures",
	"Digital Electronics",
	"Machine Learning",
	"Control Systems",
	"Computer Networks",
	"Signals & Systems",
	"Database Management",
}

// gradeBoundaries maps a minimum mark to its letter grade, highest first.
var gradeBoundaries = []struct {
	min   float64
	grade string
}{
	{90, "O"},
	{75, "A+"},
	{65, "A"},
	{55, "B+"},
	{50, "B"},
	{45, "C"},
	{40, "P"},
	{0, "F"},
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random integer in [0, n) using crypto/rand.
func getRandomInt(n int64) int64 {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// generateCohort creates the specified number of student records with unique
// enrollment numbers spread across all branches, semesters and batches.
func generateCohort(ctx context.Context, config *Config, stats *Stats) ([]Record, error) {
	logger.Get().Info(ctx, "generating student cohort", logger.Int("numStudents", config.NumStudents))

	branches := model.AllBranches()
	records := make([]Record, config.NumStudents)

	// Generate records concurrently
	type recordResult struct {
		index  int
		record Record
		err    error
	}

	resultChan := make(chan recordResult, config.NumStudents)

	workerCount := minInt(config.Workers, config.NumStudents)
	perWorker := config.NumStudents / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * perWorker
		end := start + perWorker
		if worker == workerCount-1 {
			end = config.NumStudents // Last worker gets the remainder
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- recordResult{index: i, err: ctx.Err()}
					return
				default:
					branch := branches[i%len(branches)]
					resultChan <- recordResult{index: i, record: generateSingleRecord(i, branch)}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumStudents; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during cohort generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate record %d: %w", result.index, result.err)
			}
			records[result.index] = result.record
		}
	}

	stats.RecordsGenerated = len(records)
	logger.Get().Info(ctx, "generated cohort successfully", logger.Int("count", len(records)))

	return records, nil
}

// generateSingleRecord creates one student record for the given branch.
// Enrollment format: CCCSSSBBBYY (class roll, school code, branch code, year).
func generateSingleRecord(index int, branch model.Branch) Record {
	yearSuffix := []string{"22", "23", "24"}[index%3]
	rollNo := fmt.Sprintf("%03d190%s%s", index%1000, branch.Code, yearSuffix)
	semester := fmt.Sprintf("%02d", 1+index%8)

	tier := getRandomInt(performerDivisor)
	subjects := make([]model.SubjectScore, subjectsPerStudent)
	var creditsSecured float64
	for s := range subjects {
		marks := generateSubjectMarks(tier)
		credits := int(2 + getRandomInt(3))
		grade := gradeFor(marks)
		if grade != "F" {
			creditsSecured += float64(credits)
		}
		internal := int(marks * 0.25)
		subjects[s] = model.SubjectScore{
			PaperID:   fmt.Sprintf("ES%03d", 101+s),
			PaperName: paperNames[int(getRandomInt(int64(len(paperNames))))],
			Credits:   credits,
			Internal:  internal,
			External:  int(marks) - internal,
			Marks:     marks,
			Grade:     grade,
		}
	}

	return Record{
		RollNo:         rollNo,
		Name:           "Student " + uuid.New().String()[:8],
		SID:            uuid.New().String(),
		Programme:      "B.Tech " + branch.Short,
		Semester:       semester,
		Batch:          "20" + yearSuffix,
		MaxMarks:       float64(subjectsPerStudent * 100),
		CreditsSecured: creditsSecured,
		Subjects:       subjects,
	}
}

// generateSubjectMarks creates a mark out of 100 with a varied distribution.
func generateSubjectMarks(tier int64) float64 {
	switch tier {
	case caseAveragePerformer:
		return avgPerformerMin + getRandomFloat()*avgPerformerRange
	case caseHighPerformer:
		return highPerformerMin + getRandomFloat()*highPerformerRange
	case caseLowPerformer:
		return lowPerformerMin + getRandomFloat()*lowPerformerRange
	case caseElitePerformer:
		return eliteMin + getRandomFloat()*eliteRange
	case caseFailingPerformer:
		return failingMin + getRandomFloat()*failingRange
	case caseMidHighPerformer:
		return 60 + getRandomFloat()*15
	case caseMidLowPerformer:
		return 35 + getRandomFloat()*15
	case caseWideRange:
		return wideMin + getRandomFloat()*wideRange
	default:
		return wideMin + getRandomFloat()*wideRange
	}
}

// gradeFor maps a subject mark to its letter grade.
func gradeFor(marks float64) string {
	for _, b := range gradeBoundaries {
		if marks >= b.min {
			return b.grade
		}
	}
	return "F"
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
