package astro

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/smokyabdulrahman/prayer-times/internal/geo"
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
)

// ErrUncomputable is returned when the sun does not rise or set on the
// requested day, so no fallback can place the prayers.
var ErrUncomputable = errors.New("prayer times cannot be computed for this date and location")

// iterations of the solve; each pass re-evaluates the sun at the previous estimate.
const iterations = 2

// dayTimes holds the solved events in local mean hours.
type dayTimes struct {
	fajr, sunrise, dhuhr, asr, sunset, maghrib, isha float64
}

var initialGuess = dayTimes{fajr: 5, sunrise: 6, dhuhr: 12, asr: 13, sunset: 18, maghrib: 18, isha: 18}

// Compute returns the prayer times for the calendar day of date, in date's
// location, at coordinate c.
//
// Fajr and isha that are undefined or further from sunrise/sunset than the
// high-latitude rule allows are replaced by the rule's portion of the night.
// ErrUncomputable is returned when sunrise, sunset or asr is undefined.
func Compute(date time.Time, c geo.Coordinate, p Parameters) (prayer.Times, error) {
	if err := c.Validate(); err != nil {
		return prayer.Times{}, err
	}

	loc := date.Location()
	y, m, d := date.Date()
	s := newSolver(y, int(m), d, c.Latitude, c.Longitude)

	t := initialGuess
	for i := 0; i < iterations; i++ {
		t = s.solve(guess(t), p)
	}

	if math.IsNaN(t.sunrise) || math.IsNaN(t.sunset) || math.IsNaN(t.asr) {
		return prayer.Times{}, fmt.Errorf("%w: %s at %s", ErrUncomputable, date.Format("2006-01-02"), c)
	}

	t = applyFallback(t, p)

	// Convert local mean hours to UTC hours.
	shift := -c.Longitude / 15
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	at := func(h float64, k prayer.Key) time.Time {
		v := midnight.Add(time.Duration((h + shift) * float64(time.Hour)))
		v = v.Add(time.Duration(p.adjustment(k)) * time.Minute)
		return v.Round(time.Minute).In(loc)
	}

	return prayer.Times{
		Date:    time.Date(y, m, d, 0, 0, 0, 0, loc),
		Fajr:    at(t.fajr, prayer.Fajr),
		Sunrise: at(t.sunrise, prayer.Sunrise),
		Dhuhr:   at(t.dhuhr, prayer.Dhuhr),
		Asr:     at(t.asr, prayer.Asr),
		Maghrib: at(t.maghrib, prayer.Maghrib),
		Isha:    at(t.isha, prayer.Isha),
	}, nil
}

// guess replaces undefined estimates with the initial ones so the next pass
// evaluates the sun at a sensible hour.
func guess(t dayTimes) dayTimes {
	pick := func(v, def float64) float64 {
		if math.IsNaN(v) {
			return def
		}
		return v
	}
	return dayTimes{
		fajr:    pick(t.fajr, initialGuess.fajr),
		sunrise: pick(t.sunrise, initialGuess.sunrise),
		dhuhr:   pick(t.dhuhr, initialGuess.dhuhr),
		asr:     pick(t.asr, initialGuess.asr),
		sunset:  pick(t.sunset, initialGuess.sunset),
		maghrib: pick(t.maghrib, initialGuess.maghrib),
		isha:    pick(t.isha, initialGuess.isha),
	}
}

func (s solver) solve(g dayTimes, p Parameters) dayTimes {
	out := dayTimes{
		fajr:    s.sunAngleTime(p.FajrAngle, g.fajr, true),
		sunrise: s.sunAngleTime(horizonDepression, g.sunrise, true),
		dhuhr:   s.midDay(g.dhuhr),
		asr:     s.asrTime(p.Madhab.ShadowFactor(), g.asr),
		sunset:  s.sunAngleTime(horizonDepression, g.sunset, false),
		isha:    s.sunAngleTime(p.IshaAngle, g.isha, false),
	}
	out.maghrib = out.sunset
	if p.MaghribAngle > 0 {
		out.maghrib = s.sunAngleTime(p.MaghribAngle, g.maghrib, false)
	}
	return out
}

// applyFallback enforces the high-latitude rule and the fixed isha interval.
// sunrise and sunset must be defined.
func applyFallback(t dayTimes, p Parameters) dayTimes {
	night := 24 - (t.sunset - t.sunrise)
	fajrPortion, ishaPortion := p.nightPortions()

	safeFajr := t.sunrise - fajrPortion*night
	if math.IsNaN(t.fajr) || t.fajr < safeFajr {
		t.fajr = safeFajr
	}

	if math.IsNaN(t.maghrib) || t.maghrib < t.sunset {
		t.maghrib = t.sunset
	}

	if p.IshaInterval > 0 {
		t.isha = t.maghrib + float64(p.IshaInterval)/60
		return t
	}
	safeIsha := t.sunset + ishaPortion*night
	if math.IsNaN(t.isha) || t.isha > safeIsha {
		t.isha = safeIsha
	}

	// An angle-based maghrib only holds while it stays before isha.
	if t.maghrib+float64(p.adjustment(prayer.Maghrib))/60 >= t.isha+float64(p.adjustment(prayer.Isha))/60 {
		t.maghrib = t.sunset
	}
	return t
}

// FixedZone returns a location offset from UTC by the given number of minutes.
func FixedZone(minutes int) *time.Location {
	sign := '+'
	m := minutes
	if m < 0 {
		sign = '-'
		m = -m
	}
	return time.FixedZone(fmt.Sprintf("UTC%c%02d:%02d", sign, m/60, m%60), minutes*60)
}

// Sunnah holds the night divisions between maghrib and the next fajr.
type Sunnah struct {
	MiddleOfTheNight    time.Time
	LastThirdOfTheNight time.Time
}

// SunnahTimes divides the night that starts at today's maghrib and ends at
// tomorrow's fajr.
func SunnahTimes(today, tomorrow prayer.Times) (Sunnah, error) {
	if today.Maghrib.IsZero() || tomorrow.Fajr.IsZero() || !tomorrow.Fajr.After(today.Maghrib) {
		return Sunnah{}, fmt.Errorf("%w: night between %s and %s", ErrUncomputable,
			today.Maghrib.Format(time.RFC3339), tomorrow.Fajr.Format(time.RFC3339))
	}
	night := tomorrow.Fajr.Sub(today.Maghrib)
	return Sunnah{
		MiddleOfTheNight:    today.Maghrib.Add(night / 2).Round(time.Minute),
		LastThirdOfTheNight: today.Maghrib.Add(night * 2 / 3).Round(time.Minute),
	}, nil
}

// ComputeSunnah computes the night divisions following date.
func ComputeSunnah(date time.Time, c geo.Coordinate, p Parameters) (Sunnah, error) {
	today, err := Compute(date, c, p)
	if err != nil {
		return Sunnah{}, err
	}
	tomorrow, err := Compute(date.AddDate(0, 0, 1), c, p)
	if err != nil {
		return Sunnah{}, err
	}
	return SunnahTimes(today, tomorrow)
}
