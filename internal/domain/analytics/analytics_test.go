package analytics_test

import (
	"testing"

	"github.com/okian/fuelsense/internal/domain/analytics"
	"github.com/smartystreets/goconvey/convey"
)

func TestSample(t *testing.T) {
	convey.Convey("Given the sample report", t, func() {
		r := analytics.Sample()

		convey.Convey("Then it covers six months of three series", func() {
			convey.So(r.Months, convey.ShouldResemble, []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"})
			convey.So(r.Series, convey.ShouldHaveLength, 3)
			for _, s := range r.Series {
				convey.So(s.Values, convey.ShouldHaveLength, len(r.Months))
			}
			convey.So(r.Series[0].Values, convey.ShouldResemble, []float64{8.2, 7.8, 8.5, 7.9, 8.1, 7.6})
		})

		convey.Convey("Then it carries the four KPI cards", func() {
			convey.So(r.Cards, convey.ShouldHaveLength, 4)
			convey.So(r.Cards[0], convey.ShouldResemble, analytics.Card{Value: "7.85", Label: "Avg L/100km", Color: "#a8e6a3"})
			convey.So(r.Cards[2].Value, convey.ShouldEqual, "$118")
		})

		convey.Convey("Then the summary matches the series", func() {
			fuel := r.Summary[0]
			convey.So(fuel.Name, convey.ShouldEqual, analytics.FuelConsumption)
			convey.So(fuel.Mean, convey.ShouldAlmostEqual, 8.0167, 0.001)
			convey.So(fuel.Min, convey.ShouldEqual, 7.6)
			convey.So(fuel.Max, convey.ShouldEqual, 8.5)
			convey.So(fuel.Change, convey.ShouldAlmostEqual, -0.6, 1e-9)
			convey.So(fuel.StdDev, convey.ShouldBeGreaterThan, 0)

			cost := r.Summary[1]
			convey.So(cost.Mean, convey.ShouldAlmostEqual, 118.5, 1e-9)
		})
	})
}

func TestSummarizeEdgeCases(t *testing.T) {
	convey.Convey("Given degenerate series", t, func() {
		out := analytics.Summarize([]analytics.Series{
			{Name: "empty"},
			{Name: "single", Values: []float64{4}},
		})

		convey.Convey("Then empty series summarise to zeros", func() {
			convey.So(out[0], convey.ShouldResemble, analytics.Summary{Name: "empty"})
		})

		convey.Convey("Then a single point has no spread", func() {
			convey.So(out[1].Mean, convey.ShouldEqual, 4)
			convey.So(out[1].StdDev, convey.ShouldEqual, 0)
			convey.So(out[1].Change, convey.ShouldEqual, 0)
		})
	})
}
