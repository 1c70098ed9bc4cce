package predictor

// Level orders the efficiency tiers from best to worst.
type Level int

// Efficiency levels.
const (
	Exceptional Level = iota
	Excellent
	Good
	Average
	High
)

// Tier describes how a predicted consumption is presented to the user.
type Tier struct {
	Level  Level  `json:"level"`
	Name   string `json:"name"`
	Label  string `json:"label"`
	Color  string `json:"color"`
	Advice string `json:"advice"`
	// Upper is the exclusive upper bound in L/100km; 0 for the last tier.
	Upper float64 `json:"upper,omitempty"`
}

var tiers = []Tier{
	{
		Level:  Exceptional,
		Name:   "Exceptional",
		Label:  "Exceptional Efficiency",
		Color:  "#a8e6a3",
		Advice: "Your vehicle configuration shows outstanding fuel economy. Perfect for long-distance travel!",
		Upper:  5,
	},
	{
		Level:  Excellent,
		Name:   "Excellent",
		Label:  "Excellent Efficiency",
		Color:  "#c5e8c1",
		Advice: "Great fuel economy! This configuration balances performance and efficiency well.",
		Upper:  7,
	},
	{
		Level:  Good,
		Name:   "Good",
		Label:  "Good Efficiency",
		Color:  "#e2e2e2",
		Advice: "Solid fuel consumption. Consider hybrid options for better efficiency.",
		Upper:  9,
	},
	{
		Level:  Average,
		Name:   "Average",
		Label:  "Average Consumption",
		Color:  "#f0d794",
		Advice: "Higher than average consumption. Consider smaller engine or hybrid alternatives.",
		Upper:  12,
	},
	{
		Level:  High,
		Name:   "High",
		Label:  "High Consumption",
		Color:  "#f5b7b1",
		Advice: "Significantly high fuel consumption. Review your vehicle configuration for better efficiency.",
	},
}

// Classify maps a consumption in L/100km to its tier.
// Bounds are closed below and open above: 7.00 is Good, 6.99 is Excellent.
func Classify(consumption float64) Tier {
	for _, t := range tiers[:len(tiers)-1] {
		if consumption < t.Upper {
			return t
		}
	}
	// NaN lands here too.
	return tiers[len(tiers)-1]
}

// Tiers returns all tiers ordered from best to worst.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

func (l Level) String() string {
	if l < Exceptional || l > High {
		return "Unknown"
	}
	return tiers[l].Name
}
