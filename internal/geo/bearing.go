package geo

import "math"

// EarthRadiusKM is the mean Earth radius used for distances.
const EarthRadiusKM = 6371.0

// Bearing returns the initial great-circle bearing from one coordinate to
// another, in degrees clockwise from true north, normalized into [0, 360).
//
// Coincident points have no defined bearing; 0 is returned for them.
func Bearing(from, to Coordinate) float64 {
	if from == to {
		return 0
	}

	φ1 := toRadians(from.Latitude)
	φ2 := toRadians(to.Latitude)
	Δλ := toRadians(to.Longitude - from.Longitude)

	y := math.Sin(Δλ) * math.Cos(φ2)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)

	θ := toDegrees(math.Atan2(y, x))
	b := math.Mod(θ+360, 360)
	if b >= 360 {
		b = 0
	}
	return b
}

// Qibla returns the bearing from c toward the Kaaba.
func Qibla(c Coordinate) float64 {
	return Bearing(c, Kaaba)
}

// Distance returns the great-circle distance between two coordinates in
// kilometers using the haversine formula.
func Distance(a, b Coordinate) float64 {
	φ1 := toRadians(a.Latitude)
	φ2 := toRadians(b.Latitude)
	Δφ := φ2 - φ1
	Δλ := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	return EarthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// compassPoints are the 16-wind rose names, starting at north.
var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CompassPoint names the 16-wind compass direction nearest to a bearing.
func CompassPoint(bearing float64) string {
	b := math.Mod(bearing, 360)
	if b < 0 {
		b += 360
	}
	idx := int(math.Round(b/22.5)) % len(compassPoints)
	return compassPoints[idx]
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }
