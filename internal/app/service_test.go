package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/fuelsense/internal/app"
	"github.com/okian/fuelsense/internal/domain/predictor"
	"github.com/okian/fuelsense/internal/domain/vehicle"
	"github.com/okian/fuelsense/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/mat"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type identityScaler struct{ width int }

func (s identityScaler) Features() int { return s.width }

func (s identityScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	return mat.DenseCopyOf(x), nil
}

type constRegressor struct {
	width int
	value float64
	err   error
}

func (r constRegressor) Features() int { return r.width }

func (r constRegressor) Predict(x mat.Matrix) ([]float64, error) {
	if r.err != nil {
		return nil, r.err
	}
	rows, _ := x.Dims()
	out := make([]float64, rows)
	for i := range out {
		out[i] = r.value
	}
	return out, nil
}

func fakeModel(value float64) service.Option {
	return service.WithModel(identityScaler{width: vehicle.Width}, constRegressor{width: vehicle.Width, value: value})
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["scalerPath"], ShouldEqual, "artifacts/scaler.json")
			So(stats["modelPath"], ShouldEqual, "artifacts/model.json")
			So(svc.ImageNames(), ShouldBeEmpty)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithArtifactPaths("s.yaml", "m.yaml"),
			service.WithBackgroundImageURL("http://example.com/bg.jpg"),
			service.WithDashboardImageURLs([]string{"http://example.com/0.jpg", "http://example.com/1.jpg"}),
			service.WithImageCacheSize(4),
			service.WithImageTimeout(time.Second),
		)

		Convey("Then the options are applied", func() {
			stats := svc.GetStats()
			So(stats["scalerPath"], ShouldEqual, "s.yaml")
			So(stats["modelPath"], ShouldEqual, "m.yaml")
			So(svc.ImageNames(), ShouldResemble, []string{"background", "dashboard-0", "dashboard-1"})
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a service with an injected model", t, func() {
		svc := service.New(fakeModel(6))
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["features"], ShouldEqual, vehicle.Width)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a service whose artifacts are missing", t, func() {
		svc := service.New(service.WithArtifactPaths("does/not/exist.json", "does/not/exist.json"))

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then startup fails", func() {
				So(errors.Is(err, service.ErrStart), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a model trained on a different width", t, func() {
		svc := service.New(service.WithModel(identityScaler{width: 9}, constRegressor{width: 9}))

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then the mismatch is fatal", func() {
				So(errors.Is(err, service.ErrStart), ShouldBeTrue)
				So(errors.Is(err, predictor.ErrDimensionMismatch), ShouldBeTrue)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(fakeModel(6))
		So(svc.Start(context.Background()), ShouldBeNil)
		done := svc.Done()

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it is no longer started", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("And the done channel is closed", func() {
				_, open := <-done
				So(open, ShouldBeFalse)
			})

			Convey("And predictions are refused", func() {
				_, err := svc.Predict(context.Background(), vehicle.DefaultConfiguration())
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})

			Convey("And stopping twice is safe", func() {
				So(func() { svc.Stop() }, ShouldNotPanic)
			})

			Convey("And Done reports the stop after it returns", func() {
				after := svc.Done()
				So(after, ShouldNotBeNil)
				select {
				case <-after:
				case <-time.After(500 * time.Millisecond):
					So("done channel still open after Stop", ShouldBeEmpty)
				}
			})

			Convey("And restarting opens a fresh done channel", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
				select {
				case <-svc.Done():
					So("done channel closed after restart", ShouldBeEmpty)
				default:
				}
				_, err := svc.Predict(context.Background(), vehicle.DefaultConfiguration())
				So(err, ShouldBeNil)
				svc.Stop()
			})
		})
	})
}

func TestService_Predict(t *testing.T) {
	Convey("Given a started service predicting 10.5", t, func() {
		svc := service.New(fakeModel(10.5))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When predicting the default configuration", func() {
			res, err := svc.Predict(ctx, vehicle.DefaultConfiguration())

			Convey("Then the result carries the tier and encoded features", func() {
				So(err, ShouldBeNil)
				So(res.Consumption, ShouldEqual, 10.5)
				So(res.Formatted(), ShouldEqual, "10.50")
				So(res.Tier.Level, ShouldEqual, predictor.Average)
				So([]float64(res.Features), ShouldResemble, []float64{0, 3, 4, 0, 5, 1, 0, 0, 0, 0, 0, 0})
				So(svc.GetStats()["predictions"], ShouldEqual, int64(1))
			})
		})

		Convey("When the configuration is out of range", func() {
			cfg := vehicle.DefaultConfiguration()
			cfg.Cylinders = 40
			_, err := svc.Predict(ctx, cfg)

			Convey("Then it is rejected without reaching the model", func() {
				So(errors.Is(err, vehicle.ErrOutOfRange), ShouldBeTrue)
				So(svc.GetStats()["predictionErrors"], ShouldEqual, int64(1))
				So(svc.GetStats()["predictions"], ShouldEqual, int64(0))
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Predict(cctx, vehicle.DefaultConfiguration())

			Convey("Then the cancellation is reported", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given a model that fails", t, func() {
		boom := errors.New("boom")
		svc := service.New(service.WithModel(
			identityScaler{width: vehicle.Width},
			constRegressor{width: vehicle.Width, err: boom},
		))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When predicting", func() {
			_, err := svc.Predict(context.Background(), vehicle.DefaultConfiguration())

			Convey("Then the failure surfaces as a prediction error", func() {
				So(errors.Is(err, predictor.ErrPredict), ShouldBeTrue)
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})
	})
}

func TestService_Options(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()

		Convey("When listing the form options", func() {
			opts := svc.Options(context.Background())

			Convey("Then every table and slider is present", func() {
				So(opts.VehicleClasses, ShouldHaveLength, 6)
				So(opts.Transmissions, ShouldHaveLength, 5)
				So(opts.FuelTypes, ShouldHaveLength, 4)
				So(opts.EngineSize, ShouldResemble, vehicle.EngineSizeRange)
				So(opts.Cylinders, ShouldResemble, vehicle.CylindersRange)
				So(opts.CO2Rating, ShouldResemble, vehicle.CO2RatingRange)
				So(opts.Tiers, ShouldHaveLength, 5)
			})
		})

		Convey("When requesting analytics", func() {
			report := svc.Analytics(context.Background())

			Convey("Then the sample report is returned", func() {
				So(report.Months, ShouldHaveLength, 6)
				So(report.Cards, ShouldNotBeEmpty)
			})
		})
	})
}

func TestService_ImageBeforeStart(t *testing.T) {
	Convey("Given a service that has not started", t, func() {
		svc := service.New(service.WithBackgroundImageURL("http://127.0.0.1:1/bg.jpg"))

		Convey("When requesting a known image", func() {
			img, err := svc.Image(context.Background(), service.BackgroundImage)

			Convey("Then the fallback gauge is served", func() {
				So(err, ShouldBeNil)
				So(img.Fallback, ShouldBeTrue)
				So(img.MIME, ShouldEqual, "image/svg+xml")
			})
		})

		Convey("When requesting an unknown image", func() {
			_, err := svc.Image(context.Background(), "nope")

			Convey("Then it is reported as unknown", func() {
				So(errors.Is(err, service.ErrUnknownImage), ShouldBeTrue)
			})
		})

		Convey("When requesting news", func() {
			d := svc.News(context.Background())

			Convey("Then the unavailable digest is returned", func() {
				So(d.Items, ShouldBeEmpty)
				So(d.Message, ShouldNotBeEmpty)
			})
		})
	})
}
