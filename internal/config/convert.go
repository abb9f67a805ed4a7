package config

import (
	"fmt"
	"time"

	"github.com/smokyabdulrahman/prayer-times/internal/astro"
	"github.com/smokyabdulrahman/prayer-times/internal/geo"
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
	"github.com/smokyabdulrahman/prayer-times/internal/schedule"
)

// Coordinate returns the configured coordinate, if both parts are set.
func (c *Config) Coordinate() (geo.Coordinate, bool) {
	if c.Latitude == nil || c.Longitude == nil {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Latitude: *c.Latitude, Longitude: *c.Longitude}, true
}

// Location resolves the configured IANA time zone, or the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Parameters builds the calculation parameters for an observer at latitude.
// Without an explicit rule the recommended one for the latitude is used.
func (c *Config) Parameters(latitude float64) (astro.Parameters, error) {
	method := astro.MuslimWorldLeague
	if c.Method != "" {
		m, err := astro.ParseMethod(c.Method)
		if err != nil {
			return astro.Parameters{}, err
		}
		method = m
	}
	p := astro.NewParameters(method)

	if c.Madhab != "" {
		m, err := astro.ParseMadhab(c.Madhab)
		if err != nil {
			return astro.Parameters{}, err
		}
		p.Madhab = m
	}

	p.HighLatitudeRule = astro.RecommendedHighLatitudeRule(latitude)
	if c.HighLatitudeRule != "" {
		r, err := astro.ParseHighLatitudeRule(c.HighLatitudeRule)
		if err != nil {
			return astro.Parameters{}, err
		}
		p.HighLatitudeRule = r
	}
	return p, nil
}

// Azan returns the azan offsets keyed by prayer. Unset slots are 0.
func (c *Config) Azan() prayer.Offsets {
	return offsets(c.AzanOffsets, nil)
}

// Iqama returns the iqama offsets keyed by prayer, with unset slots taken
// from the defaults.
func (c *Config) Iqama() prayer.Offsets {
	return offsets(c.IqamaOffsets, prayer.DefaultIqamaOffsets())
}

func offsets(m map[string]int, base prayer.Offsets) prayer.Offsets {
	out := prayer.Offsets{}
	for k, v := range base {
		out[k] = v
	}
	for name, v := range m {
		k, err := prayer.ParseKey(name)
		if err != nil {
			continue
		}
		out[k] = v
	}
	return out
}

// Mutes returns the per-prayer mute flags.
func (c *Config) Mutes() schedule.MuteConfig {
	out := schedule.MuteConfig{}
	for _, k := range prayer.Keys {
		m := schedule.Mute{
			Azan:         c.MuteAzan[k.Slug()],
			Notification: c.MuteNotification[k.Slug()],
		}
		if m != (schedule.Mute{}) {
			out[k] = m
		}
	}
	return out
}

// Dhikr reports whether the remembrance reminders are enabled.
func (c *Config) Dhikr() bool {
	return c.DhikrReminders != nil && *c.DhikrReminders
}

// ScheduleOptions collects the scheduling snapshot.
func (c *Config) ScheduleOptions() schedule.Options {
	return schedule.Options{Azan: c.Azan(), Mutes: c.Mutes(), Dhikr: c.Dhikr()}
}

// PrayerKeys returns the selected prayers, all six when unset.
func (c *Config) PrayerKeys() ([]prayer.Key, error) {
	return parsePrayerList(c.Prayers)
}

func parsePrayerList(s string) ([]prayer.Key, error) {
	keys, err := prayer.ParseKeys(s)
	if err != nil {
		return nil, fmt.Errorf("invalid prayers list: %w", err)
	}
	return keys, nil
}
