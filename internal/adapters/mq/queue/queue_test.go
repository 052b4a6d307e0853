package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	queue "github.com/Waqar080206/usar-ranklist/internal/adapters/mq/queue"
	. "github.com/smartystreets/goconvey/convey"
)

func record(rollNo string) queue.Record {
	return queue.Record{RollNo: rollNo, Name: "Student " + rollNo}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a new in-memory queue", t, func() {
		Convey("When created with default options", func() {
			q := queue.NewInMemoryQueue()
			defer q.Close()

			Convey("Then it should start empty and open", func() {
				So(q.Len(context.Background()), ShouldEqual, 0)
				So(q.IsClosed(), ShouldBeFalse)
			})
		})

		Convey("When enqueuing records", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10))
			defer q.Close()

			ok := q.Enqueue(context.Background(), record("00119051922"))

			Convey("Then the record should be accepted", func() {
				So(ok, ShouldBeTrue)
				So(q.Len(context.Background()), ShouldEqual, 1)
			})
		})

		Convey("When the queue is full", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(2))
			defer q.Close()

			So(q.Enqueue(context.Background(), record("r1")), ShouldBeTrue)
			So(q.Enqueue(context.Background(), record("r2")), ShouldBeTrue)

			Convey("Then further enqueues should be refused, not block", func() {
				done := make(chan bool, 1)
				go func() {
					done <- q.Enqueue(context.Background(), record("r3"))
				}()

				select {
				case ok := <-done:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("enqueue blocked on a full queue")
				}
				So(q.Len(context.Background()), ShouldEqual, 2)
			})
		})

		Convey("When dequeuing records", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10))

			for i := 0; i < 3; i++ {
				So(q.Enqueue(context.Background(), record(fmt.Sprintf("r%d", i))), ShouldBeTrue)
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			out := q.Dequeue(ctx)

			Convey("Then records should come out in FIFO order", func() {
				for i := 0; i < 3; i++ {
					select {
					case rec := <-out:
						So(rec.RollNo, ShouldEqual, fmt.Sprintf("r%d", i))
					case <-ctx.Done():
						t.Fatal("timed out waiting for record")
					}
				}
			})

			Reset(func() { _ = q.Close() })
		})

		Convey("When the queue is closed", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10))
			So(q.Enqueue(context.Background(), record("r1")), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then it should report closed and refuse enqueues", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(context.Background(), record("r2")), ShouldBeFalse)
			})

			Convey("And the dequeue channel should drain then close", func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				out := q.Dequeue(ctx)

				rec, open := <-out
				So(open, ShouldBeTrue)
				So(rec.RollNo, ShouldEqual, "r1")

				_, open = <-out
				So(open, ShouldBeFalse)
			})

			Convey("And closing again should be a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})

		Convey("When the dequeue context is canceled", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10))
			defer q.Close()

			ctx, cancel := context.WithCancel(context.Background())
			out := q.Dequeue(ctx)
			cancel()

			So(q.Enqueue(context.Background(), record("r1")), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then the consumer channel should close", func() {
				// An in-flight record may still be delivered before the
				// cancellation is observed; only the close is guaranteed.
				deadline := time.After(time.Second)
				for {
					select {
					case _, open := <-out:
						if !open {
							So(open, ShouldBeFalse)
							return
						}
					case <-deadline:
						t.Fatal("dequeue channel did not close on cancel")
					}
				}
			})
		})
	})
}
