package remote

// YearResponse is the holiday endpoint's payload for one year.
type YearResponse struct {
	Days []DayDTO `json:"days"`
}

// DayDTO is one calendar day in a YearResponse.
type DayDTO struct {
	Date   string     `json:"date"` // "2025-01-01"
	Events []EventDTO `json:"events"`
}

// EventDTO is one entry on a holiday day.
type EventDTO struct {
	DanishShort string `json:"danishShort"`
	Holiday     bool   `json:"holliday"` // sic: API spelling
}

// DayInfoDTO is the day-info endpoint's payload for one day.
type DayInfoDTO struct {
	Date      string       `json:"date"` // "2025-01-01"
	Astronomy AstronomyDTO `json:"astronomy"`
	Weather   WeatherDTO   `json:"weather"`
}

// AstronomyDTO carries sunrise/sunset display strings.
type AstronomyDTO struct {
	Sunrise string `json:"sunrise"` // "08:40"
	Sunset  string `json:"sunset"`  // "15:48"
}

// WeatherDTO wraps the provider's summary list.
type WeatherDTO struct {
	Summary []WeatherSummaryDTO `json:"summary"`
}

// WeatherSummaryDTO is one labelled summary entry.
type WeatherSummaryDTO struct {
	Parameter    string `json:"parameter"`    // e.g. "Temperatur"
	SummaryValue string `json:"summaryValue"` // "5-9" (min-max as a string)
}
