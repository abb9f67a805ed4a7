package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-times/internal/astro"
	"github.com/smokyabdulrahman/prayer-times/internal/cache"
	"github.com/smokyabdulrahman/prayer-times/internal/config"
	"github.com/smokyabdulrahman/prayer-times/internal/geo"
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
	"github.com/smokyabdulrahman/prayer-times/internal/tracker"
)

// Location sources, in priority order.
const (
	sourceConfigured = "configured"
	sourceCached     = "cached"
	sourceDefault    = "default"
)

// session bundles everything a command needs to compute times.
type session struct {
	cfg      *config.Config
	coord    geo.Coordinate
	source   string
	loc      *time.Location
	params   astro.Parameters
	selected []prayer.Key
	timeFmt  string // Go layout
	cache    *cache.Cache
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	selected, err := cfg.PrayerKeys()
	if err != nil {
		return nil, err
	}

	c, err := cache.New(cfg.CacheDir)
	if err != nil {
		// Cache init failure is non-fatal; we just skip caching.
		c = nil
		logger.Warn().Err(err).Msg("cache disabled")
	}

	coord, source := resolveLocation(cfg, c)

	params, err := cfg.Parameters(coord.Latitude)
	if err != nil {
		return nil, err
	}

	timeFmt := prayer.ClockLayout
	if cfg.TimeFormat == "12h" {
		timeFmt = "3:04 PM"
	}

	return &session{
		cfg:      cfg,
		coord:    coord,
		source:   source,
		loc:      loc,
		params:   params,
		selected: selected,
		timeFmt:  timeFmt,
		cache:    c,
	}, nil
}

// resolveLocation determines the effective coordinate.
// Priority: CLI flags > environment > config > cached coordinate > default.
func resolveLocation(cfg *config.Config, c *cache.Cache) (geo.Coordinate, string) {
	if coord, ok := cfg.Coordinate(); ok {
		if c != nil {
			_ = c.SaveCoordinate(coord) // best-effort
		}
		return coord, sourceConfigured
	}

	if c != nil {
		if coord, ok := c.LoadCoordinate(); ok {
			return coord, sourceCached
		}
	}

	logger.Warn().
		Str("coordinate", geo.DefaultCoordinate.String()).
		Msg("no location configured; using the default coordinate (set --latitude/--longitude or 'config set latitude')")
	return geo.DefaultCoordinate, sourceDefault
}

// now returns the current instant in the session's zone.
func (s *session) now() time.Time {
	return nowFunc().In(s.loc)
}

// day returns local midnight of t's calendar day.
func (s *session) day(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

// compute returns the raw times for the day of date, through the cache when available.
func (s *session) compute(date time.Time, c geo.Coordinate, p astro.Parameters) (prayer.Times, error) {
	if s.cache != nil {
		return s.cache.Compute(date, c, p)
	}
	return astro.Compute(date, c, p)
}

// times returns the raw and azan-adjusted times for the day of date.
func (s *session) times(date time.Time) (raw, adjusted prayer.Times, err error) {
	raw, err = s.compute(s.day(date), s.coord, s.params)
	if err != nil {
		return prayer.Times{}, prayer.Times{}, err
	}
	return raw, prayer.Adjust(raw, s.cfg.Azan()), nil
}

// tracker returns a tracker positioned at the session's coordinate.
func (s *session) tracker() (*tracker.Tracker, error) {
	tr := tracker.New(tracker.Config{
		Params:   s.params,
		Azan:     s.cfg.Azan(),
		Iqama:    s.cfg.Iqama(),
		Location: s.loc,
		Compute:  s.compute,
	}, logger)
	if err := tr.SetCoordinate(s.coord); err != nil {
		return nil, err
	}
	return tr, nil
}

// locationLabel describes the coordinate and where it came from.
func (s *session) locationLabel() string {
	label := s.coord.String()
	if s.source != sourceConfigured {
		label += fmt.Sprintf(" (%s)", s.source)
	}
	return label
}
