// Package tracker holds the live prayer state for one observer: the latest
// coordinate, the memoised times of the current day, and the countdown and
// iqama display derived on every tick.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-times/internal/astro"
	"github.com/smokyabdulrahman/prayer-times/internal/geo"
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
)

// ErrNoLocation is returned by Tick before the first coordinate arrives.
var ErrNoLocation = errors.New("awaiting first location fix")

// ComputeFunc computes the times for the day of date at c.
type ComputeFunc func(date time.Time, c geo.Coordinate, p astro.Parameters) (prayer.Times, error)

// Config is the calculation and offset snapshot the tracker works from.
type Config struct {
	Params   astro.Parameters
	Azan     prayer.Offsets
	Iqama    prayer.Offsets
	Location *time.Location
	// Compute defaults to astro.Compute.
	Compute ComputeFunc
}

// Snapshot is the derived display state at one instant.
type Snapshot struct {
	Now        time.Time
	Coordinate geo.Coordinate
	Qibla      float64
	// Times are the raw computed times of the current day.
	Times prayer.Times
	// Adjusted are Times shifted by the azan offsets.
	Adjusted prayer.Times
	// Next is the next adjusted azan, possibly tomorrow's fajr. Nil when
	// tomorrow cannot be computed.
	Next          *prayer.Prayer
	Countdown     int
	ShowCountdown bool
	Iqama         *prayer.IqamaState
	ActiveIndex   int
}

// Tracker is owned by a single goroutine; it is not safe for concurrent use.
type Tracker struct {
	cfg Config
	log zerolog.Logger

	coord    geo.Coordinate
	hasCoord bool
	qibla    float64

	memoDay    time.Time
	memoValid  bool
	today      prayer.Times
	todayErr   error
	tomorrow   prayer.Times
	tomorrowOK bool
	recomputes int
}

// New returns a tracker with no coordinate.
func New(cfg Config, log zerolog.Logger) *Tracker {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Compute == nil {
		cfg.Compute = astro.Compute
	}
	return &Tracker{cfg: cfg, log: log}
}

// SetCoordinate records a location fix. The day's times are recomputed on
// the next tick when the coordinate changed.
func (t *Tracker) SetCoordinate(c geo.Coordinate) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if t.hasCoord && c == t.coord {
		return nil
	}
	t.coord = c
	t.hasCoord = true
	t.qibla = geo.Qibla(c)
	t.memoValid = false
	return nil
}

// SetConfig replaces the calculation snapshot and forces a recompute.
func (t *Tracker) SetConfig(cfg Config) {
	if cfg.Location == nil {
		cfg.Location = t.cfg.Location
	}
	if cfg.Compute == nil {
		cfg.Compute = t.cfg.Compute
	}
	t.cfg = cfg
	t.memoValid = false
}

// Recomputes returns how many times the day's times have been computed.
func (t *Tracker) Recomputes() int {
	return t.recomputes
}

// Tick derives the display state at now, recomputing the times when the
// calendar day rolled over or an input changed.
func (t *Tracker) Tick(now time.Time) (Snapshot, error) {
	if !t.hasCoord {
		return Snapshot{Now: now}, ErrNoLocation
	}
	now = now.In(t.cfg.Location)
	t.ensureDay(now)

	snap := Snapshot{Now: now, Coordinate: t.coord, Qibla: t.qibla}
	if t.todayErr != nil {
		return snap, t.todayErr
	}

	snap.Times = t.today
	snap.Adjusted = prayer.Adjust(t.today, t.cfg.Azan)

	prayers := snap.Adjusted.Prayers(nil)
	snap.ActiveIndex = prayer.ActiveIndex(prayers, now)

	if next := prayer.NextPrayer(prayers, now); next != nil {
		snap.Next = next
	} else if t.tomorrowOK {
		snap.Next = &prayer.Prayer{
			Key:  prayer.Fajr,
			Time: prayer.AdjustedAzanTime(t.tomorrow.Fajr, prayer.Fajr, t.cfg.Azan),
		}
	}
	if snap.Next != nil {
		snap.Countdown = int(snap.Next.Time.Sub(now) / time.Second)
		snap.ShowCountdown = prayer.ShowCountdown(snap.Countdown)
	}

	if st, ok := prayer.ActiveIqama(t.today, t.cfg.Azan, t.cfg.Iqama, now); ok {
		snap.Iqama = &st
	}
	return snap, nil
}

func (t *Tracker) ensureDay(now time.Time) {
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.cfg.Location)
	if t.memoValid && day.Equal(t.memoDay) {
		return
	}

	t.recomputes++
	t.memoDay = day
	t.memoValid = true
	t.today, t.todayErr = t.cfg.Compute(day, t.coord, t.cfg.Params)

	tomorrow, err := t.cfg.Compute(day.AddDate(0, 0, 1), t.coord, t.cfg.Params)
	t.tomorrow, t.tomorrowOK = tomorrow, err == nil

	ev := t.log.Debug().
		Str("date", day.Format("2006-01-02")).
		Float64("lat", t.coord.Latitude).
		Float64("lon", t.coord.Longitude)
	if t.todayErr != nil {
		ev = ev.Err(t.todayErr)
	}
	ev.Msg("prayer times computed")
}

// Run drives the tracker from a tick source and a coordinate stream until ctx
// is done. emit is called after every tick once a coordinate is known.
// Invalid coordinates are logged and ignored.
func (t *Tracker) Run(ctx context.Context, ticks <-chan time.Time, coords <-chan geo.Coordinate, emit func(Snapshot, error)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-coords:
			if !ok {
				coords = nil
				continue
			}
			if err := t.SetCoordinate(c); err != nil {
				t.log.Warn().Err(err).Msg("ignoring location update")
			}
		case now, ok := <-ticks:
			if !ok {
				return nil
			}
			snap, err := t.Tick(now)
			if errors.Is(err, ErrNoLocation) {
				continue
			}
			emit(snap, err)
		}
	}
}
