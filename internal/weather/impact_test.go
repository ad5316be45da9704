package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateImpact(t *testing.T) {
	tests := []struct {
		name      string
		temp      float64
		precip    float64
		wind      float64
		wantLevel ImpactLevel
		wantScore int
	}{
		{
			name: "pleasant weather draws crowds",
			temp: 25, precip: 10, wind: 5,
			wantLevel: ImpactLow, wantScore: -1,
		},
		{
			name: "heat plus heavy rain",
			temp: 38, precip: 70, wind: 10,
			wantLevel: ImpactHigh, wantScore: 3,
		},
		{
			name: "cold morning only",
			temp: 10, precip: 0, wind: 0,
			wantLevel: ImpactMedium, wantScore: 1,
		},
		{
			name: "pleasant but likely rain",
			temp: 28, precip: 45, wind: 10,
			wantLevel: ImpactMedium, wantScore: 0,
		},
		{
			name: "heavy rain on a pleasant day",
			temp: 28, precip: 70, wind: 10,
			wantLevel: ImpactMedium, wantScore: 1,
		},
		{
			name: "hot windy day with some rain",
			temp: 40, precip: 35, wind: 35,
			wantLevel: ImpactHigh, wantScore: 3,
		},
		{
			name: "hot still day",
			temp: 36, precip: 0, wind: 0,
			wantLevel: ImpactMedium, wantScore: 1,
		},
		{
			name: "hot day with light rain chance",
			temp: 36, precip: 35, wind: 0,
			wantLevel: ImpactHigh, wantScore: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impact := EstimateImpact(tt.temp, tt.precip, tt.wind)
			assert.Equal(t, tt.wantScore, impact.Score)
			assert.Equal(t, tt.wantLevel, impact.Level)
			assert.NotEmpty(t, impact.Factors)
		})
	}
}

func TestEstimateImpactFactorOrder(t *testing.T) {
	impact := EstimateImpact(40, 70, 35)

	// Factors are recorded in evaluation order
	assert.Equal(t, []string{
		"high temperature may reduce crowd",
		"high rain probability may significantly reduce crowd",
		"strong winds may affect outdoor activities",
	}, impact.Factors)
}

func TestConditionForCode(t *testing.T) {
	assert.Equal(t, "Clear", ConditionForCode(0))
	assert.Equal(t, "Partly Cloudy", ConditionForCode(2))
	assert.Equal(t, "Foggy", ConditionForCode(45))
	assert.Equal(t, "Rainy", ConditionForCode(61))
	assert.Equal(t, "Snowy", ConditionForCode(71))
	assert.Equal(t, "Heavy Rain", ConditionForCode(81))
	assert.Equal(t, "Heavy Snow", ConditionForCode(85))
	assert.Equal(t, "Stormy", ConditionForCode(95))
}

func TestCoordinatesFor(t *testing.T) {
	somnath := CoordinatesFor("somnath")
	assert.InDelta(t, 20.8880, somnath.Latitude, 0.0001)
	assert.InDelta(t, 70.4015, somnath.Longitude, 0.0001)

	unknown := CoordinatesFor("unknown-temple")
	assert.InDelta(t, 21.5222, unknown.Latitude, 0.0001)
	assert.InDelta(t, 72.8777, unknown.Longitude, 0.0001)
}
