package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/fuelsense/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ScalerPath, convey.ShouldEqual, "artifacts/scaler.json")
				convey.So(cfg.ModelPath, convey.ShouldEqual, "artifacts/model.json")
				convey.So(cfg.NewsMaxItems, convey.ShouldEqual, 6)
				convey.So(cfg.ImageCacheSize, convey.ShouldEqual, 16)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FUELSENSE_ADDR", ":8080")
			_ = os.Setenv("FUELSENSE_LOG_LEVEL", "debug")
			_ = os.Setenv("FUELSENSE_NEWS_TIMEOUT_MS", "2500")
			_ = os.Setenv("FUELSENSE_NEWS_KEYWORDS", "fuel hybrid")
			_ = os.Setenv("FUELSENSE_MODEL_PATH", "/srv/model.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.NewsTimeoutMS, convey.ShouldEqual, 2500)
				convey.So(cfg.NewsKeywords, convey.ShouldResemble, []string{"fuel", "hybrid"})
				convey.So(cfg.ModelPath, convey.ShouldEqual, "/srv/model.yaml")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
scaler_path: "/etc/fuelsense/scaler.yaml"
news_max_items: 3
image_cache_size: 4
dashboard_image_urls:
  - "http://example.com/a.png"
  - "http://example.com/b.png"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FUELSENSE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ScalerPath, convey.ShouldEqual, "/etc/fuelsense/scaler.yaml")
				convey.So(cfg.NewsMaxItems, convey.ShouldEqual, 3)
				convey.So(cfg.ImageCacheSize, convey.ShouldEqual, 4)
				convey.So(cfg.DashboardImageURLs, convey.ShouldResemble, []string{
					"http://example.com/a.png",
					"http://example.com/b.png",
				})
			})

			convey.Convey("Then unspecified values should keep their defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ModelPath, convey.ShouldEqual, "artifacts/model.json")
				convey.So(cfg.NewsFeedURL, convey.ShouldEqual, config.DefaultNewsFeedURL)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nnews_max_items: 3\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FUELSENSE_CONFIG", tmpFile)
			_ = os.Setenv("FUELSENSE_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.NewsMaxItems, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile("addr: [unterminated\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FUELSENSE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("FUELSENSE_CONFIG", "/non/existent/fuelsense.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			tmpFile := createTempConfigFile("addr: \"\"\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FUELSENSE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail validation", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("FUELSENSE_NEWS_MAX_ITEMS", "plenty")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a negative timeout", func() {
			_ = os.Setenv("FUELSENSE_IMAGE_TIMEOUT_MS", "-5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail validation", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"FUELSENSE_CONFIG",
		"FUELSENSE_ADDR",
		"FUELSENSE_LOG_LEVEL",
		"FUELSENSE_MODEL_PATH",
		"FUELSENSE_NEWS_TIMEOUT_MS",
		"FUELSENSE_NEWS_KEYWORDS",
		"FUELSENSE_NEWS_MAX_ITEMS",
		"FUELSENSE_IMAGE_TIMEOUT_MS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "fuelsense-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
