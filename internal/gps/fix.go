package gps

import "time"

// Fix represents a single combined GPS fix suitable for JSON and broadcast.
type Fix struct {
	Latitude   float64 `json:"latitude"`   // decimal degrees
	Longitude  float64 `json:"longitude"`  // decimal degrees
	Speed      float64 `json:"speed"`      // speed over ground, knots
	Course     float64 `json:"course"`     // course over ground, degrees (0-360)
	Timestamp  int64   `json:"timestamp"`  // epoch seconds, UTC, from receiver calendar
	Satellites int     `json:"satellites"` // satellites used in solution
	Valid      bool    `json:"valid"`      // positional fix valid and >= 4 satellites
	AgeMS      int64   `json:"age_ms"`     // milliseconds since the last location update

	// Calendar fields as reported by the receiver. Date and time validity
	// are tracked independently by the tracker, so either group may lag
	// behind the other on a cold start.
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// EpochFromCalendar converts receiver-reported calendar fields to epoch
// seconds. The receiver reports UTC, so no zone or daylight-saving
// adjustment applies. Pure function so it is testable without hardware.
func EpochFromCalendar(year, month, day, hour, minute, second int) int64 {
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC).Unix()
}
