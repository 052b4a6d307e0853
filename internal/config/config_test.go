package config_test

import (
	"runtime"
	"testing"

	"github.com/Waqar080206/usar-ranklist/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
			convey.So(cfg.RecordQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*4)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.MaxRanklistLimit, convey.ShouldEqual, 1_000)
			convey.So(cfg.MissingMetricPolicy, convey.ShouldEqual, "error")
			convey.So(cfg.StrictQuery, convey.ShouldBeFalse)
		})
	})
}
