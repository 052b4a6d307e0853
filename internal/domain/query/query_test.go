package query_test

import (
	"testing"

	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
	query "github.com/Waqar080206/usar-ranklist/internal/domain/query"
	"github.com/Waqar080206/usar-ranklist/internal/domain/rank"
	. "github.com/smartystreets/goconvey/convey"
)

// student builds a raw record with a single full-weight subject so the
// percentage equals the marks value.
func student(rollNo, semester, batch string, marks float64) model.StudentRecord {
	return model.StudentRecord{
		RollNo:   rollNo,
		Name:     "Student " + rollNo,
		Semester: semester,
		Batch:    batch,
		MaxMarks: 100,
		Subjects: []model.SubjectScore{
			{PaperID: "ES101", Marks: marks},
		},
	}
}

func TestEngine_Query(t *testing.T) {
	// Branch codes sit at [6:9) of the enrollment number:
	// 519 = AIDS, 516 = AIML.
	cohort := []model.StudentRecord{
		student("00119051922", "03", "2022", 91),
		student("00219051922", "03", "2022", 85),
		student("00319051622", "03", "2022", 95),
		student("00419051622", "03", "2022", 78),
		student("00519051922", "05", "2023", 88),
	}

	Convey("Given a mixed-branch cohort", t, func() {
		e := query.New()

		Convey("When querying without a filter", func() {
			res, err := e.Query(cohort, query.Filter{}, rank.MetricPercentage, rank.OrderDesc)

			Convey("Then all records should rank together", func() {
				So(err, ShouldBeNil)
				So(res.Count, ShouldEqual, 5)
				So(res.Ranked[0].RollNo, ShouldEqual, "00319051622")
				So(res.Ranked[0].Rank, ShouldEqual, 1)
				So(res.TopPerformer, ShouldNotBeNil)
				So(res.TopPerformer.RollNo, ShouldEqual, "00319051622")
			})

			Convey("And the average should cover the whole cohort", func() {
				So(err, ShouldBeNil)
				So(res.AverageMetric, ShouldAlmostEqual, (91+85+95+78+88)/5.0, 0.001)
			})
		})

		Convey("When filtering by branch", func() {
			res, err := e.Query(cohort, query.Filter{Branch: "AIDS"}, rank.MetricPercentage, rank.OrderDesc)

			Convey("Then ranks should be relative to the filtered subset", func() {
				So(err, ShouldBeNil)
				So(res.Count, ShouldEqual, 3)
				// 00119051922 is rank 2 overall but rank 1 within AIDS.
				So(res.Ranked[0].RollNo, ShouldEqual, "00119051922")
				So(res.Ranked[0].Rank, ShouldEqual, 1)
				So(res.Ranked[1].RollNo, ShouldEqual, "00519051922")
				So(res.Ranked[2].RollNo, ShouldEqual, "00219051922")
			})
		})

		Convey("When combining branch, semester and batch filters", func() {
			res, err := e.Query(cohort, query.Filter{Branch: "AIDS", Semester: "03", Batch: "2022"}, rank.MetricPercentage, rank.OrderDesc)

			Convey("Then only fully matching records should survive", func() {
				So(err, ShouldBeNil)
				So(res.Count, ShouldEqual, 2)
				So(res.Ranked[0].RollNo, ShouldEqual, "00119051922")
				So(res.Ranked[1].RollNo, ShouldEqual, "00219051922")
			})
		})

		Convey("When the filter matches nothing", func() {
			res, err := e.Query(cohort, query.Filter{Branch: "IIOT"}, rank.MetricPercentage, rank.OrderDesc)

			Convey("Then an empty result is a valid outcome", func() {
				So(err, ShouldBeNil)
				So(res.Count, ShouldEqual, 0)
				So(res.AverageMetric, ShouldEqual, 0)
				So(res.TopPerformer, ShouldBeNil)
			})
		})
	})

	Convey("Given a cohort containing a malformed record", t, func() {
		bad := model.StudentRecord{RollNo: "00619052022"} // no subjects, no sgpa
		mixed := append([]model.StudentRecord{bad}, cohort...)

		Convey("When querying in non-strict mode", func() {
			e := query.New()
			res, err := e.Query(mixed, query.Filter{}, rank.MetricPercentage, rank.OrderDesc)

			Convey("Then the record should be skipped and reported", func() {
				So(err, ShouldBeNil)
				So(res.Count, ShouldEqual, 5)
				So(res.Skipped, ShouldResemble, []string{"00619052022"})
			})
		})

		Convey("When querying in strict mode", func() {
			e := query.New(query.WithStrict(true))
			_, err := e.Query(mixed, query.Filter{}, rank.MetricPercentage, rank.OrderDesc)

			Convey("Then the whole query should fail", func() {
				So(err, ShouldNotBeNil)
				So(query.IsInvalidInput(err), ShouldBeTrue)
			})
		})
	})

	Convey("Given records without the requested metric", t, func() {
		sgpaOnly := model.StudentRecord{
			RollNo:  "00719051722",
			SGPA:    7.8,
			HasSGPA: true,
		}
		mixed := append([]model.StudentRecord{sgpaOnly}, cohort...)

		Convey("When ranking by total marks with the exclude policy", func() {
			e := query.New(query.WithRanker(rank.New(rank.WithMissingPolicy(rank.MissingExclude))))
			res, err := e.Query(mixed, query.Filter{}, rank.MetricTotalMarks, rank.OrderDesc)

			Convey("Then the record should land in Excluded", func() {
				So(err, ShouldBeNil)
				So(res.Count, ShouldEqual, 5)
				So(res.Excluded, ShouldResemble, []string{"00719051722"})
			})
		})
	})

	Convey("Given a cohort with zero-valued metrics", t, func() {
		// All papers failed: total 0, percentage 0.
		zero := student("00819051922", "03", "2022", 0)
		mixed := append([]model.StudentRecord{zero}, cohort...)
		e := query.New()

		Convey("When querying", func() {
			res, err := e.Query(mixed, query.Filter{}, rank.MetricPercentage, rank.OrderDesc)

			Convey("Then zero records should rank but not drag the average", func() {
				So(err, ShouldBeNil)
				So(res.Count, ShouldEqual, 6)
				So(res.Ranked[5].RollNo, ShouldEqual, "00819051922")
				So(res.AverageMetric, ShouldAlmostEqual, (91+85+95+78+88)/5.0, 0.001)
			})
		})
	})
}

func TestFilter_Matches(t *testing.T) {
	Convey("Given a record", t, func() {
		rec := student("00119051922", "03", "2022", 90)

		Convey("Then an empty filter should match", func() {
			So(query.Filter{}.Matches(rec), ShouldBeTrue)
		})

		Convey("Then each predicate should be exact", func() {
			So(query.Filter{Branch: "AIDS"}.Matches(rec), ShouldBeTrue)
			So(query.Filter{Branch: "AIML"}.Matches(rec), ShouldBeFalse)
			So(query.Filter{Semester: "03"}.Matches(rec), ShouldBeTrue)
			So(query.Filter{Semester: "3"}.Matches(rec), ShouldBeFalse)
			So(query.Filter{Batch: "2022"}.Matches(rec), ShouldBeTrue)
			So(query.Filter{Batch: "2023"}.Matches(rec), ShouldBeFalse)
		})
	})
}
