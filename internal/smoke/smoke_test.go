package smoke_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/fuelsense/internal/adapters/http/api"
	service "github.com/okian/fuelsense/internal/app"
	"github.com/okian/fuelsense/internal/domain/predictor"
	"github.com/okian/fuelsense/internal/domain/types"
	"github.com/okian/fuelsense/internal/domain/vehicle"
	"github.com/okian/fuelsense/internal/smoke"
	"github.com/okian/fuelsense/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// liveServer runs the real API over the shipped artifacts.
func liveServer(t *testing.T) *httptest.Server {
	svc := service.New(service.WithArtifactPaths(
		filepath.Join("..", "..", "artifacts", "scaler.json"),
		filepath.Join("..", "..", "artifacts", "model.json"),
	))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func options() types.OptionsResponse {
	return types.OptionsResponse{
		VehicleClasses: vehicle.Classes(),
		Transmissions:  vehicle.Transmissions(),
		FuelTypes:      vehicle.Fuels(),
		EngineSize:     vehicle.EngineSizeRange,
		Cylinders:      vehicle.CylindersRange,
		CO2Rating:      vehicle.CO2RatingRange,
		Tiers:          predictor.Tiers(),
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given the form options", t, func() {
		opts := options()

		Convey("When generating with ten samples", func() {
			cases := smoke.Generate(opts, 10, rand.New(rand.NewPCG(1, 2)))

			Convey("Then the full grid comes first", func() {
				So(cases, ShouldHaveLength, 6*5*4+10)
				first := cases[0].Request
				So(first.VehicleClass, ShouldEqual, "Two-seater")
				So(first.EngineSize, ShouldEqual, vehicle.EngineSizeRange.Default)
				So(cases[1].Request.VehicleClass, ShouldEqual, "Two-Seater")
			})

			Convey("Then every case is accepted by the request parser", func() {
				for _, c := range cases {
					So(c.ID, ShouldNotBeEmpty)
					_, err := c.Request.Configuration()
					So(err, ShouldBeNil)
				}
			})

			Convey("Then the samples are reproducible from the seed", func() {
				again := smoke.Generate(opts, 10, rand.New(rand.NewPCG(1, 2)))
				for i := range cases {
					So(again[i].Request, ShouldResemble, cases[i].Request)
				}
			})
		})

		Convey("When a negative sample count is given", func() {
			cases := smoke.Generate(opts, -3, rand.New(rand.NewPCG(1, 2)))

			Convey("Then only the grid is produced", func() {
				So(cases, ShouldHaveLength, 120)
			})
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given a well-formed answer", t, func() {
		cfg := vehicle.Configuration{Class: vehicle.Compact, EngineSize: 2, Cylinders: 4, CO2Rating: 5, Fuel: vehicle.Gasoline}
		good := smoke.Outcome{
			Case:   smoke.Case{ID: "c1", Request: types.PredictRequest{FuelType: "X"}},
			Status: http.StatusOK,
			Response: &types.PredictResponse{
				Consumption: 8.412,
				Formatted:   "8.41",
				Unit:        types.Unit,
				Tier:        predictor.Classify(8.412),
				Features:    vehicle.Encode(cfg),
			},
		}

		Convey("Then it passes", func() {
			So(smoke.Verify(good), ShouldBeEmpty)
		})

		Convey("When the tier disagrees with the thresholds", func() {
			good.Response.Tier = predictor.Classify(4)
			So(smoke.Verify(good), ShouldHaveLength, 1)
		})

		Convey("When the formatted value is not two decimals", func() {
			good.Response.Formatted = "8.412"
			So(smoke.Verify(good), ShouldHaveLength, 1)
		})

		Convey("When two fuel slots are set", func() {
			good.Response.Features[5] = 1
			So(smoke.Verify(good), ShouldHaveLength, 1)
		})

		Convey("When the wrong fuel slot is set", func() {
			good.Case.Request.FuelType = "Diesel"
			So(smoke.Verify(good), ShouldHaveLength, 1)
		})

		Convey("When the vector is short", func() {
			good.Response.Features = good.Response.Features[:9]
			So(smoke.Verify(good), ShouldHaveLength, 1)
		})

		Convey("When the request was rejected", func() {
			bad := smoke.Outcome{Status: http.StatusBadRequest, Error: "cylinders must be between 1 and 16"}
			So(smoke.Verify(bad), ShouldResemble, []string{"status 400: cylinders must be between 1 and 16"})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a live service", t, func() {
		srv := liveServer(t)
		out := filepath.Join(t.TempDir(), "reports", "smoke.json")
		cfg := &smoke.Config{
			BaseURL:    srv.URL,
			Samples:    25,
			Repeats:    10,
			Workers:    4,
			Timeout:    5 * time.Second,
			Seed:       42,
			OutputFile: out,
		}

		Convey("When the smoke runs", func() {
			report, err := smoke.Run(context.Background(), cfg)

			Convey("Then every case passes", func() {
				So(err, ShouldBeNil)
				So(report.Passed(), ShouldBeTrue)
				So(report.Stats.CasesGenerated, ShouldEqual, 145)
				So(report.Stats.CasesSuccessful, ShouldEqual, 145)
				So(report.Stats.RepeatsChecked, ShouldEqual, 10)
				So(report.Seed, ShouldEqual, uint64(42))
			})

			Convey("Then the report is written as JSON", func() {
				raw, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				var saved smoke.Report
				So(json.Unmarshal(raw, &saved), ShouldBeNil)
				So(saved.RunID, ShouldEqual, report.RunID)
			})
		})
	})

	Convey("Given a service that mislabels tiers", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {})
		mux.HandleFunc("/api/options", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(options())
		})
		mux.HandleFunc("/api/predict", func(w http.ResponseWriter, r *http.Request) {
			var req types.PredictRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			cfg, _ := req.Configuration()
			_ = json.NewEncoder(w).Encode(types.PredictResponse{
				Consumption: 3,
				Formatted:   "3.00",
				Unit:        types.Unit,
				Tier:        predictor.Classify(20),
				Features:    vehicle.Encode(cfg),
			})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When the smoke runs", func() {
			report, err := smoke.Run(context.Background(), &smoke.Config{BaseURL: srv.URL, Workers: 2, Timeout: time.Second, Seed: 1})

			Convey("Then the checks fail with a report", func() {
				So(errors.Is(err, smoke.ErrChecksFailed), ShouldBeTrue)
				So(report, ShouldNotBeNil)
				So(report.Stats.CasesInvalid, ShouldEqual, 120)
				So(report.Failures, ShouldHaveLength, 120)
			})
		})
	})

	Convey("Given no service", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		Convey("When the smoke runs", func() {
			report, err := smoke.Run(context.Background(), &smoke.Config{BaseURL: url, Workers: 1, Timeout: time.Second})

			Convey("Then it reports the service as unreachable", func() {
				So(errors.Is(err, smoke.ErrUnreachable), ShouldBeTrue)
				So(report, ShouldBeNil)
			})
		})
	})
}

func TestCommand(t *testing.T) {
	Convey("Given the fuelsmoke command", t, func() {
		Reset(func() { _ = logger.Init() })

		srv := liveServer(t)
		cmd := smoke.NewCommand()
		var stdout, stderr bytes.Buffer
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)

		Convey("When run against a live service", func() {
			cmd.SetArgs([]string{"--url", srv.URL, "--samples", "5", "--repeats", "3", "--seed", "7", "--log-level", "warn"})
			err := cmd.ExecuteContext(context.Background())

			Convey("Then it prints a passing summary", func() {
				So(err, ShouldBeNil)
				So(stdout.String(), ShouldContainSubstring, "125/125 cases passed, 0 repeats differed")
			})
		})

		Convey("When given an unknown log level", func() {
			cmd.SetArgs([]string{"--url", srv.URL, "--log-level", "loud"})
			err := cmd.ExecuteContext(context.Background())

			Convey("Then it fails before probing", func() {
				So(err, ShouldNotBeNil)
				So(stdout.String(), ShouldBeEmpty)
			})
		})
	})
}
