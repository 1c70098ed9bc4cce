package vehicle

import "fmt"

// Range is the inclusive bound and default of a slider control.
type Range struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v int) bool { return v >= r.Min && v <= r.Max }

// Slider ranges of the dashboard form.
var (
	EngineSizeRange = Range{Min: 1, Max: 7, Default: 3}
	CylindersRange  = Range{Min: 1, Max: 16, Default: 4}
	CO2RatingRange  = Range{Min: 1, Max: 10, Default: 5}
)

// Configuration is one vehicle description as entered on the dashboard.
type Configuration struct {
	Class        Class
	EngineSize   int // litres
	Cylinders    int
	Transmission Transmission
	CO2Rating    int
	Fuel         Fuel
}

// DefaultConfiguration returns the form's initial state.
func DefaultConfiguration() Configuration {
	return Configuration{
		Class:        TwoSeater,
		EngineSize:   EngineSizeRange.Default,
		Cylinders:    CylindersRange.Default,
		Transmission: Automatic,
		CO2Rating:    CO2RatingRange.Default,
		Fuel:         Diesel,
	}
}

// Validate checks the configuration against the form's controls.
func (c Configuration) Validate() error {
	if int(c.Class) < 0 || int(c.Class) >= len(classes) {
		return fmt.Errorf("%w: vehicle_class index %d", ErrUnknownOption, c.Class)
	}
	if int(c.Transmission) < 0 || int(c.Transmission) >= len(transmissions) {
		return fmt.Errorf("%w: transmission index %d", ErrUnknownOption, c.Transmission)
	}
	if int(c.Fuel) < 0 || int(c.Fuel) >= len(fuels) {
		return fmt.Errorf("%w: fuel_type index %d", ErrUnknownOption, c.Fuel)
	}
	if err := checkRange("engine_size", c.EngineSize, EngineSizeRange); err != nil {
		return err
	}
	if err := checkRange("cylinders", c.Cylinders, CylindersRange); err != nil {
		return err
	}
	return checkRange("co2_rating", c.CO2Rating, CO2RatingRange)
}

func checkRange(field string, v int, r Range) error {
	if !r.Contains(v) {
		return fmt.Errorf("%w: %s=%d not in [%d,%d]", ErrOutOfRange, field, v, r.Min, r.Max)
	}
	return nil
}
