// Package api serves the prayer-time engine over HTTP using the Al Adhan
// response envelope.
package api

import (
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
	"github.com/smokyabdulrahman/prayer-times/internal/schedule"
)

// Response is the top-level envelope of every response.
// Data holds the payload on success and the error message on failure.
type Response struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// TimingsData is the payload of /v1/timings.
type TimingsData struct {
	Timings  prayer.Timings    `json:"timings"`
	Adjusted prayer.Timings    `json:"adjusted"`
	Iqama    map[string]string `json:"iqama"`
	Sunnah   *SunnahTimings    `json:"sunnah,omitempty"`
	Date     DateInfo          `json:"date"`
	Meta     Meta              `json:"meta"`
}

// SunnahTimings are the night divisions as HH:mm strings.
type SunnahTimings struct {
	Midnight  string `json:"Midnight"`
	Lastthird string `json:"Lastthird"`
}

// DateInfo contains date representations.
type DateInfo struct {
	Readable  string `json:"readable"`  // e.g. "15 Jun 2024"
	Timestamp string `json:"timestamp"` // unix seconds of local midnight
	Gregorian string `json:"gregorian"` // e.g. "15-06-2024"
}

// Meta describes the inputs the times were computed from.
type Meta struct {
	Latitude         float64        `json:"latitude"`
	Longitude        float64        `json:"longitude"`
	Timezone         string         `json:"timezone"`
	Method           MethodInfo     `json:"method"`
	Madhab           string         `json:"madhab"`
	HighLatitudeRule string         `json:"highLatitudeRule"`
	Offsets          map[string]int `json:"offsets,omitempty"`
}

// MethodInfo identifies a calculation method.
type MethodInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// QiblaData is the payload of /v1/qibla.
type QiblaData struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Direction  float64 `json:"direction"`
	Compass    string  `json:"compass"`
	DistanceKm float64 `json:"distanceKm"`
}

// ScheduleData is the payload of /v1/schedule.
type ScheduleData struct {
	Date     string             `json:"date"`
	Triggers []schedule.Trigger `json:"triggers"`
}

// HealthData is the payload of /health.
type HealthData struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
