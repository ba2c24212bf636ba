package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/podium/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given a default config", t, func() {
		cfg := config.New()

		Convey("Then it carries the documented defaults", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.DBPath, ShouldEqual, "podium.db")
			So(cfg.FeedQueueSize, ShouldEqual, 10_000)
			So(cfg.WorkerCount, ShouldEqual, 4)
			So(cfg.DedupeSize, ShouldEqual, 50_000)
		})
	})
}

func TestLoadDefaults(t *testing.T) {
	Convey("Given no config file and no env overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then the defaults come through", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.DBPath, ShouldEqual, "podium.db")
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PODIUM_ADDR", ":7070")
	t.Setenv("PODIUM_FEED_QUEUE_SIZE", "123")

	Convey("Given env overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then env values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.FeedQueueSize, ShouldEqual, 123)
			So(cfg.WorkerCount, ShouldEqual, 4) // untouched default
		})
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "podium.yaml")
	yaml := "addr: \":6060\"\nlog_level: debug\nworker_count: 8\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("PODIUM_CONFIG", path)

	Convey("Given a YAML config file", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then file values layer over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.WorkerCount, ShouldEqual, 8)
			So(cfg.DBPath, ShouldEqual, "podium.db")
		})
	})
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "podium.yaml")
	if err := os.WriteFile(path, []byte("addr: \":6060\"\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("PODIUM_CONFIG", path)
	t.Setenv("PODIUM_ADDR", ":5050")

	Convey("Given a file and an env var that disagree", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then env has the last word", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":5050")
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("PODIUM_CONFIG", "/does/not/exist.yaml")

	Convey("Given a missing config file path", t, func() {
		_, err := config.Load(context.Background())

		Convey("Then a load error is reported", func() {
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("PODIUM_DB_PATH", "")

	Convey("Given an env override that blanks a required field", t, func() {
		_, err := config.Load(context.Background())

		Convey("Then validation rejects it", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
