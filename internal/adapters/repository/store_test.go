package repository_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	repository "github.com/Waqar080206/usar-ranklist/internal/adapters/repository"
	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleRecord(rollNo string) model.StudentRecord {
	return model.StudentRecord{
		RollNo:         rollNo,
		Name:           "Student " + rollNo,
		Programme:      "B.Tech AIDS",
		Semester:       "03",
		Batch:          "2022",
		MaxMarks:       500,
		CreditsSecured: 16,
		Subjects: []model.SubjectScore{
			{PaperID: "ES101", PaperName: "Applied Mathematics", Credits: 4, Internal: 22, External: 70, Marks: 92, Grade: "A"},
			{PaperID: "ES102", PaperName: "Data Structures", Credits: 4, Internal: 24, External: 64, Marks: 88, Grade: "A+"},
		},
	}
}

// storeContract runs the Store behavior shared by every backend.
func storeContract(t *testing.T, newStore func() repository.Store) {
	t.Helper()

	Convey("When putting a new record", func() {
		s := newStore()
		inserted, err := s.Put(context.Background(), sampleRecord("00119051922"))

		Convey("Then it should report an insert", func() {
			So(err, ShouldBeNil)
			So(inserted, ShouldBeTrue)
			So(s.Count(context.Background()), ShouldEqual, 1)
		})
	})

	Convey("When putting the same roll number twice", func() {
		s := newStore()
		_, err := s.Put(context.Background(), sampleRecord("00119051922"))
		So(err, ShouldBeNil)

		updated := sampleRecord("00119051922")
		updated.Name = "Renamed Student"
		inserted, err := s.Put(context.Background(), updated)

		Convey("Then the second put should replace, not duplicate", func() {
			So(err, ShouldBeNil)
			So(inserted, ShouldBeFalse)
			So(s.Count(context.Background()), ShouldEqual, 1)

			got, err := s.Get(context.Background(), "00119051922")
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "Renamed Student")
		})
	})

	Convey("When putting a record with an empty roll number", func() {
		s := newStore()
		_, err := s.Put(context.Background(), model.StudentRecord{Name: "No Roll"})

		Convey("Then it should fail", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("When getting a stored record", func() {
		s := newStore()
		want := sampleRecord("00219051622")
		_, err := s.Put(context.Background(), want)
		So(err, ShouldBeNil)

		got, err := s.Get(context.Background(), "00219051622")

		Convey("Then the record should round-trip intact", func() {
			So(err, ShouldBeNil)
			So(got.RollNo, ShouldEqual, want.RollNo)
			So(got.Semester, ShouldEqual, want.Semester)
			So(got.MaxMarks, ShouldEqual, want.MaxMarks)
			So(len(got.Subjects), ShouldEqual, 2)
			So(got.Subjects[0].Grade, ShouldEqual, "A")
			So(got.Subjects[1].Marks, ShouldEqual, 88)
		})
	})

	Convey("When getting an unknown roll number", func() {
		s := newStore()
		_, err := s.Get(context.Background(), "99999999999")

		Convey("Then it should fail with ErrNotFound", func() {
			So(err, ShouldWrap, repository.ErrNotFound)
		})
	})

	Convey("When listing records", func() {
		s := newStore()
		for i := 0; i < 5; i++ {
			_, err := s.Put(context.Background(), sampleRecord(fmt.Sprintf("%03d19051922", i)))
			So(err, ShouldBeNil)
		}

		list, err := s.List(context.Background())

		Convey("Then records should come back in insertion order", func() {
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 5)
			for i, rec := range list {
				So(rec.RollNo, ShouldEqual, fmt.Sprintf("%03d19051922", i))
			}
		})
	})

	Convey("When writing concurrently", func() {
		s := newStore()
		const writers = 20

		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _ = s.Put(context.Background(), sampleRecord(fmt.Sprintf("%03d19051622", i)))
			}(i)
		}
		wg.Wait()

		Convey("Then every record should land exactly once", func() {
			So(s.Count(context.Background()), ShouldEqual, writers)
		})
	})
}

func TestMemStore(t *testing.T) {
	Convey("Given an in-memory store", t, func() {
		storeContract(t, func() repository.Store {
			return repository.NewMemStore(context.Background())
		})
	})

	Convey("Given snapshot caching", t, func() {
		s := repository.NewMemStore(context.Background())
		_, err := s.Put(context.Background(), sampleRecord("00119051922"))
		So(err, ShouldBeNil)

		Convey("When listing twice without writes", func() {
			first, err1 := s.List(context.Background())
			second, err2 := s.List(context.Background())

			Convey("Then the cached snapshot should be reused", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(len(first), ShouldEqual, 1)
				So(&first[0], ShouldEqual, &second[0])
			})
		})

		Convey("When a write lands between lists", func() {
			before, err := s.List(context.Background())
			So(err, ShouldBeNil)
			So(len(before), ShouldEqual, 1)

			_, err = s.Put(context.Background(), sampleRecord("00219051922"))
			So(err, ShouldBeNil)

			after, err := s.List(context.Background())

			Convey("Then the next list should see the new record", func() {
				So(err, ShouldBeNil)
				So(len(after), ShouldEqual, 2)
			})
		})
	})
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given a SQLite-backed store", t, func() {
		storeContract(t, func() repository.Store {
			path := filepath.Join(t.TempDir(), "ranklist.db")
			s, err := repository.NewSQLiteStore(context.Background(), path)
			So(err, ShouldBeNil)
			Reset(func() { _ = s.Close() })
			return s
		})
	})

	Convey("Given a database file path", t, func() {
		path := filepath.Join(t.TempDir(), "data", "ranklist.db")

		Convey("When opening a store in a missing directory", func() {
			s, err := repository.NewSQLiteStore(context.Background(), path)

			Convey("Then the directory should be created", func() {
				So(err, ShouldBeNil)
				So(s.Path(), ShouldEqual, path)
				_ = s.Close()
			})
		})

		Convey("When reopening an existing database", func() {
			s, err := repository.NewSQLiteStore(context.Background(), path)
			So(err, ShouldBeNil)
			_, err = s.Put(context.Background(), sampleRecord("00119051922"))
			So(err, ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			reopened, err := repository.NewSQLiteStore(context.Background(), path)

			Convey("Then previously stored records should survive", func() {
				So(err, ShouldBeNil)
				defer reopened.Close()

				got, err := reopened.Get(context.Background(), "00119051922")
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Student 00119051922")
				So(reopened.Count(context.Background()), ShouldEqual, 1)
			})
		})
	})
}
