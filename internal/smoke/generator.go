package smoke

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/fuelsense/internal/domain/types"
	"github.com/okian/fuelsense/internal/domain/vehicle"
)

// Generate returns the full categorical grid at the default slider values
// followed by samples random configurations. Codes and labels alternate so
// both spellings are exercised.
func Generate(opts types.OptionsResponse, samples int, rng *rand.Rand) []Case {
	grid := len(opts.VehicleClasses) * len(opts.Transmissions) * len(opts.FuelTypes)
	if samples < 0 {
		samples = 0
	}
	cases := make([]Case, 0, grid+samples)

	n := 0
	for _, c := range opts.VehicleClasses {
		for _, t := range opts.Transmissions {
			for _, f := range opts.FuelTypes {
				cases = append(cases, newCase(types.PredictRequest{
					VehicleClass: pick(c, n),
					EngineSize:   opts.EngineSize.Default,
					Cylinders:    opts.Cylinders.Default,
					Transmission: pick(t, n),
					CO2Rating:    opts.CO2Rating.Default,
					FuelType:     pick(f, n),
				}))
				n++
			}
		}
	}

	if len(opts.VehicleClasses) == 0 || len(opts.Transmissions) == 0 || len(opts.FuelTypes) == 0 {
		return cases
	}
	for i := 0; i < samples; i++ {
		cases = append(cases, newCase(types.PredictRequest{
			VehicleClass: pick(opts.VehicleClasses[rng.IntN(len(opts.VehicleClasses))], i),
			EngineSize:   between(rng, opts.EngineSize),
			Cylinders:    between(rng, opts.Cylinders),
			Transmission: pick(opts.Transmissions[rng.IntN(len(opts.Transmissions))], i),
			CO2Rating:    between(rng, opts.CO2Rating),
			FuelType:     pick(opts.FuelTypes[rng.IntN(len(opts.FuelTypes))], i),
		}))
	}
	return cases
}

func newCase(req types.PredictRequest) Case {
	return Case{ID: uuid.NewString(), Request: req}
}

func pick(o vehicle.Option, n int) string {
	if n%2 == 0 {
		return o.Code
	}
	return o.Label
}

func between(rng *rand.Rand, r vehicle.Range) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.IntN(r.Max-r.Min+1)
}
