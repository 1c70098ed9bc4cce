// Package vehicle describes a vehicle configuration and encodes it into the
// fixed-width feature vector the frozen regressor was trained on.
//
// Table positions are load-bearing: the regressor learned class and
// transmission indices and the fuel one-hot slots in exactly this order.
package vehicle

import (
	"fmt"
	"strings"
)

// Option is one selectable value of an enumeration, as shown by the UI.
type Option struct {
	Index int    `json:"index"`
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Class is the vehicle class.
type Class int

// Vehicle classes in encoding order.
const (
	TwoSeater Class = iota
	Compact
	Subcompact
	Minivan
	SUVSmall
	PickupStandard
)

var classes = []Option{
	{Index: 0, Code: "Two-seater", Label: "Two-Seater"},
	{Index: 1, Code: "Compact", Label: "Compact"},
	{Index: 2, Code: "Subcompact", Label: "Subcompact"},
	{Index: 3, Code: "Minivan", Label: "Minivan"},
	{Index: 4, Code: "SUV: Small", Label: "SUV Small"},
	{Index: 5, Code: "Pickup truck: Standard", Label: "Pickup Standard"},
}

// Transmission is the gearbox type.
type Transmission int

// Transmissions in encoding order.
const (
	Automatic Transmission = iota
	Manual
	CVT
	AutoManual
	AutoShift
)

var transmissions = []Option{
	{Index: 0, Code: "A", Label: "Automatic"},
	{Index: 1, Code: "M", Label: "Manual"},
	{Index: 2, Code: "AV", Label: "CVT"},
	{Index: 3, Code: "AM", Label: "Auto-Manual"},
	{Index: 4, Code: "AS", Label: "Auto-Shift"},
}

// Fuel is the fuel type; its index selects the one-hot slot.
type Fuel int

// Fuel types in one-hot slot order.
const (
	Diesel Fuel = iota
	Ethanol
	Gasoline
	Electric
)

var fuels = []Option{
	{Index: 0, Code: "D", Label: "Diesel"},
	{Index: 1, Code: "E", Label: "Ethanol"},
	{Index: 2, Code: "X", Label: "Gasoline"},
	{Index: 3, Code: "Z", Label: "Electric"},
}

// Classes returns the ordered vehicle class table.
func Classes() []Option { return cloneOptions(classes) }

// Transmissions returns the ordered transmission table.
func Transmissions() []Option { return cloneOptions(transmissions) }

// Fuels returns the ordered fuel table.
func Fuels() []Option { return cloneOptions(fuels) }

// Code returns the dataset code of the class.
func (c Class) Code() string { return optionAt(classes, int(c)).Code }

// Label returns the display label of the class.
func (c Class) Label() string { return optionAt(classes, int(c)).Label }

// String implements fmt.Stringer with the display label.
func (c Class) String() string {
	return c.Label()
}

// Code returns the dataset code of the transmission.
func (t Transmission) Code() string { return optionAt(transmissions, int(t)).Code }

// Label returns the display label of the transmission.
func (t Transmission) Label() string { return optionAt(transmissions, int(t)).Label }

// String implements fmt.Stringer with the display label.
func (t Transmission) String() string {
	return t.Label()
}

// Code returns the dataset code of the fuel type.
func (f Fuel) Code() string { return optionAt(fuels, int(f)).Code }

// Label returns the display label of the fuel type.
func (f Fuel) Label() string { return optionAt(fuels, int(f)).Label }

// String implements fmt.Stringer with the display label.
func (f Fuel) String() string {
	return f.Label()
}

// ParseClass accepts a dataset code ("SUV: Small") or a display label ("SUV Small").
func ParseClass(s string) (Class, error) {
	i, err := lookup(classes, "vehicle_class", s)
	return Class(i), err
}

// ParseTransmission accepts a code ("AV") or a label ("CVT").
func ParseTransmission(s string) (Transmission, error) {
	i, err := lookup(transmissions, "transmission", s)
	return Transmission(i), err
}

// ParseFuel accepts a code ("X") or a label ("Gasoline").
func ParseFuel(s string) (Fuel, error) {
	i, err := lookup(fuels, "fuel_type", s)
	return Fuel(i), err
}

func lookup(table []Option, field, s string) (int, error) {
	s = strings.TrimSpace(s)
	for _, o := range table {
		if strings.EqualFold(o.Code, s) || strings.EqualFold(o.Label, s) {
			return o.Index, nil
		}
	}
	return -1, fmt.Errorf("%w: %s %q", ErrUnknownOption, field, s)
}

func optionAt(table []Option, i int) Option {
	if i < 0 || i >= len(table) {
		return Option{Index: i, Code: "unknown", Label: "Unknown"}
	}
	return table[i]
}

func cloneOptions(in []Option) []Option {
	out := make([]Option, len(in))
	copy(out, in)
	return out
}
