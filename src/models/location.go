package models

import "time"

// LocationUpdate is one timestamped coordinate report appended to a session's
// history. Address is reserved for reverse geocoding and never populated here.
type LocationUpdate struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Address   *string   `json:"address,omitempty"`
}

// ValidCoordinates reports whether a latitude/longitude pair is inside the
// decimal-degree ranges [-90,90] and [-180,180].
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
