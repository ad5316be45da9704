package weather

// EstimateImpact scores how weather is expected to move temple attendance,
// from the current temperature and wind plus the day's maximum
// precipitation probability. Positive contributions mean fewer pilgrims,
// negative mean more. The factors list records every contribution in
// evaluation order: temperature, then precipitation, then wind.
func EstimateImpact(temperature, precipitationProbabilityMax, windSpeed float64) *Impact {
	score := 0
	var factors []string

	switch {
	case temperature > 35:
		score++
		factors = append(factors, "high temperature may reduce crowd")
	case temperature < 15:
		score++
		factors = append(factors, "cold weather may reduce crowd")
	default:
		score--
		factors = append(factors, "pleasant weather may increase crowd")
	}

	if precipitationProbabilityMax > 60 {
		score += 2
		factors = append(factors, "high rain probability may significantly reduce crowd")
	} else if precipitationProbabilityMax > 30 {
		score++
		factors = append(factors, "rain possible, slight crowd reduction expected")
	}

	if windSpeed > 30 {
		score++
		factors = append(factors, "strong winds may affect outdoor activities")
	}

	level := ImpactMedium
	if score >= 2 {
		level = ImpactHigh
	} else if score <= -1 {
		level = ImpactLow
	}

	return &Impact{
		Level:   level,
		Score:   score,
		Factors: factors,
	}
}
