package weather

import "time"

// Coordinates locates a temple for the forecast provider
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

var templeCoordinates = map[string]Coordinates{
	"somnath":  {Latitude: 20.8880, Longitude: 70.4015},
	"dwarka":   {Latitude: 22.2394, Longitude: 68.9685},
	"ambaji":   {Latitude: 24.3305, Longitude: 72.8537},
	"pavagadh": {Latitude: 22.4809, Longitude: 73.5319},
}

// defaultCoordinates is used for temples without a known location
var defaultCoordinates = Coordinates{Latitude: 21.5222, Longitude: 72.8777}

// CoordinatesFor returns the temple's coordinates, falling back to the
// regional default for unknown temples.
func CoordinatesFor(templeID string) Coordinates {
	if coords, ok := templeCoordinates[templeID]; ok {
		return coords
	}
	return defaultCoordinates
}

// ConditionForCode maps a WMO weather code to a display condition
func ConditionForCode(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code <= 3:
		return "Partly Cloudy"
	case code <= 48:
		return "Foggy"
	case code <= 67:
		return "Rainy"
	case code <= 77:
		return "Snowy"
	case code <= 82:
		return "Heavy Rain"
	case code <= 86:
		return "Heavy Snow"
	default:
		return "Stormy"
	}
}

// WeatherData is the current weather at a temple plus the same-day
// forecast range.
type WeatherData struct {
	TempleID                    string    `json:"temple_id"`
	Temperature                 float64   `json:"temperature"`
	Humidity                    float64   `json:"humidity"`
	WindSpeed                   float64   `json:"wind_speed"`
	PrecipitationProbability    float64   `json:"precipitation_probability"`
	MaxTemperature              float64   `json:"max_temperature"`
	MinTemperature              float64   `json:"min_temperature"`
	PrecipitationProbabilityMax float64   `json:"precipitation_probability_max"`
	Condition                   string    `json:"condition"`
	FetchedAt                   time.Time `json:"fetched_at"`
}

// ImpactLevel grades how strongly weather is expected to move crowds
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

// Impact is the crowd impact estimate derived from current weather
type Impact struct {
	Level   ImpactLevel `json:"level"`
	Score   int         `json:"score"`
	Factors []string    `json:"factors"`
}

// ImpactResponse pairs the estimate with the weather it was derived from
type ImpactResponse struct {
	TempleID string       `json:"temple_id"`
	Weather  *WeatherData `json:"weather"`
	Impact   *Impact      `json:"impact"`
}
