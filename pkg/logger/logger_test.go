package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}

	namedLogger.Info(context.Background(), "test message")
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		defer func() { _ = SetLevelString("info") }()

		Convey("When logging with fields and a request id", func() {
			ctx := WithRequestID(context.Background(), "req-42")
			Named("predict").Info(ctx, "prediction served",
				String("tier", "Good"),
				Float64("consumption", 7.5),
				Error(errors.New("boom")),
			)

			var entry map[string]interface{}
			So(json.Unmarshal(buf.Bytes(), &entry), ShouldBeNil)

			Convey("Then the entry should carry every field", func() {
				So(entry["message"], ShouldEqual, "prediction served")
				So(entry["level"], ShouldEqual, "info")
				So(entry["logger"], ShouldEqual, "predict")
				So(entry["tier"], ShouldEqual, "Good")
				So(entry["consumption"], ShouldEqual, 7.5)
				So(entry["error"], ShouldEqual, "boom")
				So(entry["request_id"], ShouldEqual, "req-42")
				So(entry["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(context.Background(), "hidden")
			Get().Error(context.Background(), "shown")

			Convey("Then only the error entry should be written", func() {
				out := buf.String()
				So(out, ShouldNotContainSubstring, "hidden")
				So(out, ShouldContainSubstring, "shown")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		defer func() { _ = SetLevelString("info") }()

		Convey("Then known levels should be accepted", func() {
			for in, want := range map[string]zerolog.Level{
				"debug":   zerolog.DebugLevel,
				"":        zerolog.InfoLevel,
				" INFO ":  zerolog.InfoLevel,
				"warning": zerolog.WarnLevel,
				"error":   zerolog.ErrorLevel,
			} {
				So(SetLevelString(in), ShouldBeNil)
				So(zerolog.GlobalLevel(), ShouldEqual, want)
			}
		})

		Convey("And unknown levels should be rejected", func() {
			err := SetLevelString("verbose")
			So(err, ShouldNotBeNil)
			So(strings.Contains(err.Error(), "unknown log level"), ShouldBeTrue)
		})
	})
}

func TestRequestIDFromEmptyContext(t *testing.T) {
	Convey("Given a context without a request id", t, func() {
		So(RequestID(context.Background()), ShouldEqual, "")
	})
}
