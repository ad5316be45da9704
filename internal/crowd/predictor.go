package crowd

import "time"

// Weekend and temple-day traffic runs well above the weekday baseline
var weekdayFactors = map[time.Weekday]float64{
	time.Sunday:   1.5,
	time.Saturday: 1.4,
	time.Tuesday:  1.2,
}

// Predict builds one forecast per day, starting the day after from, in
// ascending date order. The forecast is a pure function of its inputs:
// the same temple, baseline and start date always produce the same
// predictions. Confidence decays with the horizon but stays strictly
// inside (0, 1).
func Predict(templeID string, recentAvg float64, from time.Time, daysAhead int) []Prediction {
	capacity := CapacityFor(templeID)

	base := recentAvg
	if base <= 0 {
		// No history yet: assume a moderately busy baseline
		base = 0.35 * float64(capacity)
	}

	predictions := make([]Prediction, 0, daysAhead)
	for i := 1; i <= daysAhead; i++ {
		date := from.AddDate(0, 0, i)

		factor := 1.0
		if f, ok := weekdayFactors[date.Weekday()]; ok {
			factor = f
		}

		count := int(base * factor)
		if count > capacity {
			count = capacity
		}

		confidence := 0.9 - 0.1*float64(i)
		if confidence < 0.2 {
			confidence = 0.2
		}

		predictions = append(predictions, Prediction{
			Date:           date.Format("2006-01-02"),
			PredictedCount: count,
			PredictedLevel: LevelForCount(count, capacity),
			Confidence:     confidence,
		})
	}

	return predictions
}
