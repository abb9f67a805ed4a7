package astro

import (
	"math"

	"github.com/soniakeys/meeus/v3/julian"
)

// horizonDepression is the sun's altitude at apparent sunrise and sunset:
// solar semi-diameter plus standard refraction.
const horizonDepression = 0.833

// j2000 is the Julian day of 2000-01-01 12:00 TT.
const j2000 = 2451545.0

// sunPosition returns the sun's declination in degrees and the equation of
// time in hours for Julian day jd, using the low-precision ephemeris
// (about 1 arc minute between 1950 and 2050).
func sunPosition(jd float64) (decl, eqt float64) {
	d := jd - j2000

	g := fixAngle(357.529 + 0.98560028*d) // mean anomaly
	q := fixAngle(280.459 + 0.98564736*d) // mean longitude
	l := fixAngle(q + 1.915*dsin(g) + 0.020*dsin(2*g))

	e := 23.439 - 0.00000036*d // obliquity of the ecliptic
	ra := darctan2(dcos(e)*dsin(l), dcos(l)) / 15

	eqt = q/15 - fixHour(ra)
	decl = darcsin(dsin(e) * dsin(l))
	return decl, eqt
}

// solver evaluates sun events for one calendar day at one place. Times are in
// local mean solar hours from midnight.
type solver struct {
	jd  float64
	lat float64
}

// newSolver anchors the Julian day at local mean midnight for the given date.
func newSolver(year, month, day int, lat, lon float64) solver {
	jd := julian.CalendarGregorianToJD(year, month, float64(day)) - lon/(15*24)
	return solver{jd: jd, lat: lat}
}

func (s solver) position(t float64) (decl, eqt float64) {
	return sunPosition(s.jd + t/24)
}

// midDay returns the time of solar transit near t.
func (s solver) midDay(t float64) float64 {
	_, eqt := s.position(t)
	return fixHour(12 - eqt)
}

// sunAngleTime returns when the sun is angle degrees below the horizon,
// before transit when ccw is set and after it otherwise. It returns NaN when
// the sun never reaches that altitude on this day.
func (s solver) sunAngleTime(angle, t float64, ccw bool) float64 {
	decl, _ := s.position(t)
	noon := s.midDay(t)

	cosH := (-dsin(angle) - dsin(decl)*dsin(s.lat)) / (dcos(decl) * dcos(s.lat))
	if cosH < -1 || cosH > 1 || math.IsNaN(cosH) {
		return math.NaN()
	}
	h := darccos(cosH) / 15
	if ccw {
		return noon - h
	}
	return noon + h
}

// asrTime returns the afternoon time at which an object's shadow equals
// factor times its length plus its noon shadow.
func (s solver) asrTime(factor, t float64) float64 {
	decl, _ := s.position(t)
	angle := -darccot(factor + dtan(math.Abs(s.lat-decl)))
	return s.sunAngleTime(angle, t, false)
}

func dsin(d float64) float64 { return math.Sin(d * math.Pi / 180) }
func dcos(d float64) float64 { return math.Cos(d * math.Pi / 180) }
func dtan(d float64) float64 { return math.Tan(d * math.Pi / 180) }
func darcsin(x float64) float64 { return math.Asin(x) * 180 / math.Pi }
func darccos(x float64) float64 { return math.Acos(x) * 180 / math.Pi }
func darccot(x float64) float64 { return math.Atan(1/x) * 180 / math.Pi }

func darctan2(y, x float64) float64 { return math.Atan2(y, x) * 180 / math.Pi }

func fixAngle(a float64) float64 { return fix(a, 360) }
func fixHour(a float64) float64 { return fix(a, 24) }

func fix(a, b float64) float64 {
	a = math.Mod(a, b)
	if a < 0 {
		a += b
	}
	return a
}
