package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	repository "github.com/Waqar080206/usar-ranklist/internal/adapters/repository"
	service "github.com/Waqar080206/usar-ranklist/internal/app"
	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
	"github.com/Waqar080206/usar-ranklist/internal/domain/query"
	"github.com/Waqar080206/usar-ranklist/internal/domain/rank"
	. "github.com/smartystreets/goconvey/convey"
)

func TestService_SGPAOnlyRecords(t *testing.T) {
	Convey("Given a cohort mixing marks-based and SGPA-only records", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithMissingMetricPolicy(rank.MissingExclude),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		Reset(svc.Stop)

		sgpaOnly := model.StudentRecord{
			RollNo:   "00419051722",
			Name:     "Transfer Student",
			Semester: "03",
			Batch:    "2022",
			SGPA:     9.2,
			HasSGPA:  true,
		}
		_, err := svc.SubmitRecords(context.Background(), []model.StudentRecord{
			record("00119051922", 91),
			record("00219051622", 85),
			sgpaOnly,
		})
		So(err, ShouldBeNil)
		waitDrained(t, svc, 3)

		Convey("When ranking by SGPA", func() {
			rl, err := svc.Ranklist(context.Background(), query.Filter{}, rank.MetricSGPA, rank.OrderDesc)

			Convey("Then the SGPA-only record should compete", func() {
				So(err, ShouldBeNil)
				So(rl.Total, ShouldEqual, 3)
				So(rl.Entries[0].RollNo, ShouldEqual, "00419051722")
				So(rl.Entries[0].SGPA, ShouldEqual, 9.2)
			})
		})

		Convey("When ranking by total marks", func() {
			rl, err := svc.Ranklist(context.Background(), query.Filter{}, rank.MetricTotalMarks, rank.OrderDesc)

			Convey("Then the SGPA-only record should be excluded and reported", func() {
				So(err, ShouldBeNil)
				So(rl.Total, ShouldEqual, 2)
				So(rl.Excluded, ShouldResemble, []string{"00419051722"})
			})
		})

		Convey("When fetching the SGPA-only student", func() {
			detail, err := svc.Student(context.Background(), "00419051722")

			Convey("Then the detail view should carry the pass-through SGPA", func() {
				So(err, ShouldBeNil)
				So(detail.SGPA, ShouldEqual, 9.2)
				So(detail.TotalMarks, ShouldEqual, 0)
				So(len(detail.Subjects), ShouldEqual, 0)
			})
		})
	})
}

func TestService_SQLiteBacked(t *testing.T) {
	Convey("Given a service backed by a SQLite store", t, func() {
		path := filepath.Join(t.TempDir(), "ranklist.db")
		store, err := repository.NewSQLiteStore(context.Background(), path)
		So(err, ShouldBeNil)

		svc := service.New(
			service.WithStore(store),
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		Reset(svc.Stop)

		Convey("When ingesting and querying through the full pipeline", func() {
			_, err := svc.SubmitRecords(context.Background(), []model.StudentRecord{
				record("00119051922", 91),
				record("00219051622", 85),
			})
			So(err, ShouldBeNil)
			waitDrained(t, svc, 2)

			rl, err := svc.Ranklist(context.Background(), query.Filter{}, rank.MetricPercentage, rank.OrderDesc)

			Convey("Then records should persist and rank", func() {
				So(err, ShouldBeNil)
				So(rl.Total, ShouldEqual, 2)
				So(rl.Entries[0].RollNo, ShouldEqual, "00119051922")
			})
		})
	})
}

func TestService_SeedFile(t *testing.T) {
	Convey("Given a seed file of parsed results", t, func() {
		dir := t.TempDir()
		seedPath := filepath.Join(dir, "seed.json")
		writeSeedFile(t, seedPath, `[
			{"roll_no":"00119051922","name":"Seeded One","semester":"03","batch":"2022","max_marks":100,
			 "subjects":[{"paper_id":"ES101","credits":4,"total":90,"grade":"A+"}]},
			{"roll_no":"00219051622","name":"Seeded Two","semester":"03","batch":"2022","max_marks":100,
			 "subjects":[{"paper_id":"ES101","credits":4,"total":80,"grade":"A"}]},
			{"roll_no":"","name":"No Roll"}
		]`)

		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithSeedFile(seedPath),
		)

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())
			Reset(svc.Stop)

			Convey("Then valid seed records should be queryable immediately", func() {
				So(err, ShouldBeNil)

				rl, err := svc.Ranklist(context.Background(), query.Filter{}, rank.MetricPercentage, rank.OrderDesc)
				So(err, ShouldBeNil)
				So(rl.Total, ShouldEqual, 2)
				So(rl.Entries[0].Name, ShouldEqual, "Seeded One")
			})

			Convey("And resubmitting a seeded roll number counts as duplicate", func() {
				So(err, ShouldBeNil)

				out, err := svc.SubmitRecords(context.Background(), []model.StudentRecord{record("00119051922", 95)})
				So(err, ShouldBeNil)
				So(out.Duplicates, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a missing seed file", t, func() {
		svc := service.New(service.WithSeedFile("/nonexistent/seed.json"))

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())
			Reset(svc.Stop)

			Convey("Then startup should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func writeSeedFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
}
