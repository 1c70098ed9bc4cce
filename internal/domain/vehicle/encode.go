package vehicle

// Width is the length of every encoded feature vector.
const Width = 12

// Feature vector layout.
const (
	classSlot        = 0
	engineSlot       = 1
	cylindersSlot    = 2
	transmissionSlot = 3
	co2Slot          = 4
	fuelSlot         = 5 // first of four one-hot slots
	// slots 9..11 are always zero; the model was trained with three extra columns
)

// FeatureVector is the model input for one configuration.
type FeatureVector []float64

// Encode turns a configuration into
// [class, engine, cylinders, transmission, co2, fuel one-hot x4, 0, 0, 0].
// Encode does not validate; call Configuration.Validate first for user input.
func Encode(c Configuration) FeatureVector {
	v := make(FeatureVector, Width)
	v[classSlot] = float64(c.Class)
	v[engineSlot] = float64(c.EngineSize)
	v[cylindersSlot] = float64(c.Cylinders)
	v[transmissionSlot] = float64(c.Transmission)
	v[co2Slot] = float64(c.CO2Rating)
	if f := int(c.Fuel); f >= 0 && f < len(fuels) {
		v[fuelSlot+f] = 1
	}
	return v
}

// FuelSlot returns the index of the set fuel slot, or -1 if none or several are set.
func (v FeatureVector) FuelSlot() int {
	if len(v) != Width {
		return -1
	}
	slot := -1
	for i := 0; i < len(fuels); i++ {
		switch v[fuelSlot+i] {
		case 0:
		case 1:
			if slot != -1 {
				return -1
			}
			slot = i
		default:
			return -1
		}
	}
	return slot
}
