// Package analytics holds the sample fleet analytics shown on the dashboard.
// The numbers are illustrative and do not change at runtime.
package analytics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Series is one monthly metric.
type Series struct {
	Name   string    `json:"name"`
	Unit   string    `json:"unit"`
	Values []float64 `json:"values"`
}

// Card is a headline KPI.
type Card struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Summary describes one series.
type Summary struct {
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	// Change is last minus first.
	Change float64 `json:"change"`
}

// Report is everything the analytics views render.
type Report struct {
	Months  []string  `json:"months"`
	Series  []Series  `json:"series"`
	Cards   []Card    `json:"cards"`
	Summary []Summary `json:"summary"`
}

// Series names.
const (
	FuelConsumption  = "Fuel Consumption"
	Cost             = "Cost"
	EfficiencyRating = "Efficiency Rating"
)

// Months returns the sample period labels.
func Months() []string {
	return []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}
}

// SampleSeries returns the monthly sample data.
func SampleSeries() []Series {
	return []Series{
		{Name: FuelConsumption, Unit: "L/100km", Values: []float64{8.2, 7.8, 8.5, 7.9, 8.1, 7.6}},
		{Name: Cost, Unit: "USD", Values: []float64{120, 115, 125, 118, 121, 112}},
		{Name: EfficiencyRating, Unit: "%", Values: []float64{85, 88, 82, 87, 84, 89}},
	}
}

// Cards returns the KPI cards.
func Cards() []Card {
	return []Card{
		{Value: "7.85", Label: "Avg L/100km", Color: "#a8e6a3"},
		{Value: "85%", Label: "Efficiency", Color: "#c5e8c1"},
		{Value: "$118", Label: "Avg Cost", Color: "#f0d794"},
		{Value: "12%", Label: "Improvement", Color: "#e2e2e2"},
	}
}

// Summarize computes descriptive statistics per series.
func Summarize(series []Series) []Summary {
	out := make([]Summary, 0, len(series))
	for _, s := range series {
		sum := Summary{Name: s.Name}
		if n := len(s.Values); n > 0 {
			sum.Mean, sum.StdDev = stat.MeanStdDev(s.Values, nil)
			sum.Min = floats.Min(s.Values)
			sum.Max = floats.Max(s.Values)
			sum.Change = s.Values[n-1] - s.Values[0]
			if n == 1 {
				sum.StdDev = 0
			}
		}
		out = append(out, sum)
	}
	return out
}

// Sample builds the full analytics report.
func Sample() Report {
	series := SampleSeries()
	return Report{
		Months:  Months(),
		Series:  series,
		Cards:   Cards(),
		Summary: Summarize(series),
	}
}
