package smoke

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/fuelsense/internal/domain/predictor"
	"github.com/okian/fuelsense/internal/domain/types"
	"github.com/okian/fuelsense/internal/domain/vehicle"
)

// Verify lists every invariant the response in o breaks. A nil result
// means the case passed.
func Verify(o Outcome) []string {
	if o.Status != http.StatusOK {
		return []string{fmt.Sprintf("status %d: %s", o.Status, o.Error)}
	}
	if o.Response == nil {
		return []string{"empty response"}
	}

	var problems []string
	resp := o.Response
	fv := vehicle.FeatureVector(resp.Features)

	if len(fv) != vehicle.Width {
		problems = append(problems, fmt.Sprintf("features has %d entries, want %d", len(fv), vehicle.Width))
	} else if fv.FuelSlot() < 0 {
		problems = append(problems, fmt.Sprintf("fuel one-hot is not a single set slot: %v", resp.Features[5:9]))
	} else if want, err := vehicle.ParseFuel(o.Case.Request.FuelType); err == nil && fv.FuelSlot() != int(want) {
		problems = append(problems, fmt.Sprintf("fuel slot %d set, want %d", fv.FuelSlot(), int(want)))
	}

	if want := predictor.Classify(resp.Consumption); resp.Tier.Name != want.Name {
		problems = append(problems, fmt.Sprintf("tier %q for %.4f, want %q", resp.Tier.Name, resp.Consumption, want.Name))
	}

	if want := strconv.FormatFloat(resp.Consumption, 'f', 2, 64); resp.Formatted != want {
		problems = append(problems, fmt.Sprintf("formatted %q, want %q", resp.Formatted, want))
	}

	if resp.Unit != types.Unit {
		problems = append(problems, fmt.Sprintf("unit %q, want %q", resp.Unit, types.Unit))
	}
	return problems
}

// sameConsumption reports whether two answers to the same case agree exactly.
func sameConsumption(a, b Outcome) bool {
	if a.Response == nil || b.Response == nil {
		return false
	}
	return a.Response.Consumption == b.Response.Consumption
}
