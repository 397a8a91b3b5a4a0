package observation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid() Observation {
	return Observation{
		Timestamp:    "2026-08-31T10:00:00Z",
		Store:        12,
		Dept:         4,
		WeeklySales:  21500,
		Temperature:  64.2,
		FuelPrice:    3.45,
		CPI:          211.3,
		Unemployment: 7.8,
		IsHoliday:    1,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Observation)
	}{
		{"missing timestamp", func(o *Observation) { o.Timestamp = " " }},
		{"zero store", func(o *Observation) { o.Store = 0 }},
		{"negative dept", func(o *Observation) { o.Dept = -1 }},
		{"bad holiday flag", func(o *Observation) { o.IsHoliday = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid()
			tt.mutate(&o)
			assert.Error(t, o.Validate())
		})
	}
}

func TestFeaturesOrderIsStable(t *testing.T) {
	got := valid().Features()
	assert.Equal(t, []float64{21500, 64.2, 3.45, 211.3, 7.8, 1}, got)
}

func TestJSONFieldCasing(t *testing.T) {
	payload := `{
		"timestamp": "2026-08-31T10:00:00Z",
		"store": 12,
		"dept": 4,
		"Weekly_Sales": 21500.0,
		"Temperature": 64.2,
		"Fuel_Price": 3.45,
		"CPI": 211.3,
		"Unemployment": 7.8,
		"IsHoliday": 0
	}`
	var o Observation
	require.NoError(t, json.Unmarshal([]byte(payload), &o))
	assert.Equal(t, valid().WeeklySales, o.WeeklySales)
	assert.Equal(t, 0, o.IsHoliday)
}
