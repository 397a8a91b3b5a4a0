package observation

import (
	"errors"
	"strings"
)

// Observation is one store/department reading as delivered by the ingest
// endpoint. Field names on the wire keep the casing the upstream simulator
// sends.
type Observation struct {
	Timestamp    string  `json:"timestamp"`
	Store        int     `json:"store"`
	Dept         int     `json:"dept"`
	WeeklySales  float64 `json:"Weekly_Sales"`
	Temperature  float64 `json:"Temperature"`
	FuelPrice    float64 `json:"Fuel_Price"`
	CPI          float64 `json:"CPI"`
	Unemployment float64 `json:"Unemployment"`
	IsHoliday    int     `json:"IsHoliday"`
}

func (o Observation) Validate() error {
	if strings.TrimSpace(o.Timestamp) == "" {
		return errors.New("timestamp required")
	}
	if o.Store <= 0 {
		return errors.New("store must be positive")
	}
	if o.Dept <= 0 {
		return errors.New("dept must be positive")
	}
	if o.IsHoliday != 0 && o.IsHoliday != 1 {
		return errors.New("IsHoliday must be 0 or 1")
	}
	return nil
}

// Features returns the numeric feature vector in the fixed column order the
// scoring models were trained on. Order matters; do not reorder.
func (o Observation) Features() []float64 {
	return []float64{
		o.WeeklySales,
		o.Temperature,
		o.FuelPrice,
		o.CPI,
		o.Unemployment,
		float64(o.IsHoliday),
	}
}

// FeatureMap returns the raw input snapshot persisted alongside cluster
// assignments.
func (o Observation) FeatureMap() map[string]any {
	return map[string]any{
		"timestamp":    o.Timestamp,
		"store":        o.Store,
		"dept":         o.Dept,
		"Weekly_Sales": o.WeeklySales,
		"Temperature":  o.Temperature,
		"Fuel_Price":   o.FuelPrice,
		"CPI":          o.CPI,
		"Unemployment": o.Unemployment,
		"IsHoliday":    o.IsHoliday,
	}
}
