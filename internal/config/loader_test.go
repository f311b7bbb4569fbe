package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/agora/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given a fresh config", t, func() {
		cfg := config.New()

		Convey("Then defaults match the shipped pipeline", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.PollIntervalSeconds, ShouldEqual, 10)
			So(cfg.CatalogSize, ShouldEqual, 5)
			So(cfg.IncludeZeroScores, ShouldBeTrue)
			So(cfg.ExcludeSelfMatches, ShouldBeFalse)
			So(cfg.MaxMessageLimit, ShouldEqual, 200)
			So(len(cfg.SeedChannels), ShouldEqual, 4)
			So(cfg.SeedChannels[0].Name, ShouldEqual, "AI Research Group")
		})
	})
}

func TestLoadDefaults(t *testing.T) {
	Convey("Given no file or env overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then defaults come back", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.CatalogSize, ShouldEqual, 5)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AGORA_ADDR", ":8080")
	t.Setenv("AGORA_CATALOG_SIZE", "3")
	t.Setenv("AGORA_LOG_LEVEL", "debug")
	t.Setenv("AGORA_EXCLUDE_SELF_MATCHES", "true")

	Convey("Given environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then env values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8080")
			So(cfg.CatalogSize, ShouldEqual, 3)
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.ExcludeSelfMatches, ShouldBeTrue)
			// Untouched fields keep their defaults.
			So(cfg.PollIntervalSeconds, ShouldEqual, 10)
		})
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("addr: \":7070\"\ncatalog_size: 2\nslack_token: xoxb-file\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("AGORA_CONFIG", path)

	Convey("Given a YAML config file", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then file values layer over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.CatalogSize, ShouldEqual, 2)
			So(cfg.SlackToken, ShouldEqual, "xoxb-file")
			So(cfg.PollIntervalSeconds, ShouldEqual, 10)
		})
	})
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":7070\"\ncatalog_size: 2\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("AGORA_CONFIG", path)
	t.Setenv("AGORA_ADDR", ":6060")

	Convey("Given both file and env overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then env wins, file fills the rest", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
			So(cfg.CatalogSize, ShouldEqual, 2)
		})
	})
}

func TestLoadFailures(t *testing.T) {
	t.Setenv("AGORA_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	Convey("Given a missing config file", t, func() {
		_, err := config.Load(context.Background())
		So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
	})
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("AGORA_CATALOG_SIZE", "0")

	Convey("Given an out-of-range catalog size", t, func() {
		_, err := config.Load(context.Background())
		So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
	})
}
