package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixelparty/triathlon/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	convey.Convey("Given no configuration sources", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then defaults apply", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.ThrottleMS, convey.ShouldEqual, 500)
			convey.So(cfg.TotalDistance, convey.ShouldEqual, 1000.0)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			convey.So(cfg.JournalPath, convey.ShouldBeBlank)
		})
	})
}

func TestEnvOverrides(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		t.Setenv("TRIATHLON_ADDR", ":9999")
		t.Setenv("TRIATHLON_THROTTLE_MS", "250")
		t.Setenv("TRIATHLON_JOURNAL_PATH", "/tmp/triathlon.db")

		cfg, err := config.Load(context.Background())

		convey.Convey("Then env wins over defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9999")
			convey.So(cfg.ThrottleMS, convey.ShouldEqual, 250)
			convey.So(cfg.JournalPath, convey.ShouldEqual, "/tmp/triathlon.db")
		})
	})
}

func TestFileLayer(t *testing.T) {
	convey.Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		yaml := "addr: \":7070\"\nworker_count: 8\n"
		convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
		t.Setenv("TRIATHLON_CONFIG", path)

		convey.Convey("When only the file layers over defaults", func() {
			cfg, err := config.Load(context.Background())

			convey.Convey("Then file values apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When env layers over the file", func() {
			t.Setenv("TRIATHLON_ADDR", ":6060")
			cfg, err := config.Load(context.Background())

			convey.Convey("Then env has the final say", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 8)
			})
		})
	})
}

func TestValidation(t *testing.T) {
	convey.Convey("Given an unusable configuration", t, func() {
		t.Setenv("TRIATHLON_THROTTLE_MS", "0")

		_, err := config.Load(context.Background())

		convey.Convey("Then loading fails with the invalid sentinel", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
