// Package types contains the request and response shapes shared by the
// service and its HTTP adapter.
package types

import (
	"github.com/okian/fuelsense/internal/domain/predictor"
	"github.com/okian/fuelsense/internal/domain/vehicle"
)

// Unit is the unit of every consumption value.
const Unit = "L/100km"

// PredictRequest is the body of POST /api/predict. Enumerations accept either
// the dataset code or the display label.
type PredictRequest struct {
	VehicleClass string `json:"vehicle_class" validate:"required,vehicle_class"`
	EngineSize   int    `json:"engine_size" validate:"engine_size"`
	Cylinders    int    `json:"cylinders" validate:"cylinders"`
	Transmission string `json:"transmission" validate:"required,transmission"`
	CO2Rating    int    `json:"co2_rating" validate:"co2_rating"`
	FuelType     string `json:"fuel_type" validate:"required,fuel_type"`
}

// Configuration converts a validated request into a vehicle configuration.
func (r PredictRequest) Configuration() (vehicle.Configuration, error) {
	class, err := vehicle.ParseClass(r.VehicleClass)
	if err != nil {
		return vehicle.Configuration{}, err
	}
	trans, err := vehicle.ParseTransmission(r.Transmission)
	if err != nil {
		return vehicle.Configuration{}, err
	}
	fuel, err := vehicle.ParseFuel(r.FuelType)
	if err != nil {
		return vehicle.Configuration{}, err
	}
	cfg := vehicle.Configuration{
		Class:        class,
		EngineSize:   r.EngineSize,
		Cylinders:    r.Cylinders,
		Transmission: trans,
		CO2Rating:    r.CO2Rating,
		Fuel:         fuel,
	}
	return cfg, cfg.Validate()
}

// PredictResponse is the body returned by POST /api/predict.
type PredictResponse struct {
	PredictionID string         `json:"prediction_id"`
	Consumption  float64        `json:"consumption"`
	Formatted    string         `json:"formatted"`
	Unit         string         `json:"unit"`
	Tier         predictor.Tier `json:"tier"`
	Features     []float64      `json:"features"`
}

// OptionsResponse lists everything the dashboard form needs to render.
type OptionsResponse struct {
	VehicleClasses []vehicle.Option `json:"vehicle_classes"`
	Transmissions  []vehicle.Option `json:"transmissions"`
	FuelTypes      []vehicle.Option `json:"fuel_types"`
	EngineSize     vehicle.Range    `json:"engine_size"`
	Cylinders      vehicle.Range    `json:"cylinders"`
	CO2Rating      vehicle.Range    `json:"co2_rating"`
	Tiers          []predictor.Tier `json:"tiers"`
}

// ImageResponse carries one decorative image, inline.
type ImageResponse struct {
	Name     string `json:"name"`
	MIME     string `json:"mime"`
	Data     string `json:"data"` // base64
	Fallback bool   `json:"fallback"`
}
