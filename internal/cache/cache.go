package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smokyabdulrahman/prayer-times/internal/astro"
	"github.com/smokyabdulrahman/prayer-times/internal/geo"
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
)

const (
	timesCacheFile = "times_%s.json" // keyed by hash
	coordCacheFile = "coordinate.json"
	coordTTL       = 30 * 24 * time.Hour
)

// Cache provides file-based caching for computed prayer times and the
// last known coordinate.
type Cache struct {
	dir string
	now func() time.Time
}

// TimesCacheEntry stores a day's computed times along with metadata for validation.
type TimesCacheEntry struct {
	Date       string         `json:"date"` // YYYY-MM-DD
	Coordinate geo.Coordinate `json:"coordinate"`
	Timezone   string         `json:"timezone"`
	Method     string         `json:"method"`
	Madhab     string         `json:"madhab"`
	Rule       string         `json:"high_latitude_rule"`
	Timings    prayer.Timings `json:"timings"`
	Times      prayer.Times   `json:"times"`
}

// CoordinateCacheEntry stores the last coordinate used with a timestamp.
type CoordinateCacheEntry struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	CachedAt   time.Time      `json:"cached_at"`
}

// New creates a Cache rooted at the given directory.
// If dir is empty, it defaults to ~/.cache/prayer-times/.
func New(dir string) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".cache", "prayer-times")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &Cache{dir: dir, now: time.Now}, nil
}

// Dir returns the directory the cache writes to.
func (c *Cache) Dir() string {
	return c.dir
}

// cacheKey builds a deterministic hash from everything that affects the times:
// the day, the coordinate, the zone and the full parameter set.
func cacheKey(date string, coord geo.Coordinate, loc *time.Location, p astro.Parameters) string {
	// fmt prints maps in key order, so the adjustments hash stably.
	raw := fmt.Sprintf("%s|%.6f|%.6f|%s|%+v", date, coord.Latitude, coord.Longitude, loc, p)
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8])
}

func (c *Cache) timesPath(date time.Time, coord geo.Coordinate, p astro.Parameters) (string, string) {
	dateStr := date.Format("2006-01-02")
	key := cacheKey(dateStr, coord, date.Location(), p)
	return dateStr, filepath.Join(c.dir, fmt.Sprintf(timesCacheFile, key))
}

// LoadTimes attempts to read cached times for the day of date, in date's
// location. It reports false if the cache is missing, corrupt or stale.
func (c *Cache) LoadTimes(date time.Time, coord geo.Coordinate, p astro.Parameters) (prayer.Times, bool) {
	dateStr, path := c.timesPath(date, coord, p)

	data, err := os.ReadFile(path)
	if err != nil {
		return prayer.Times{}, false
	}

	var entry TimesCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return prayer.Times{}, false
	}

	// A hash collision or a hand-edited file must not leak another day's times.
	if entry.Date != dateStr || entry.Coordinate != coord || entry.Times.Fajr.IsZero() {
		return prayer.Times{}, false
	}

	loc := date.Location()
	t := entry.Times
	t.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	for _, k := range prayer.Keys {
		t.Set(k, t.Get(k).In(loc))
	}
	return t, true
}

// SaveTimes writes computed times to the cache.
func (c *Cache) SaveTimes(coord geo.Coordinate, p astro.Parameters, t prayer.Times) error {
	dateStr, path := c.timesPath(t.Date, coord, p)

	entry := TimesCacheEntry{
		Date:       dateStr,
		Coordinate: coord,
		Timezone:   t.Location().String(),
		Method:     p.Method.String(),
		Madhab:     p.Madhab.String(),
		Rule:       p.HighLatitudeRule.String(),
		Timings:    t.Timings(),
		Times:      t,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// Compute returns the times for the day of date, reading through the cache.
// A failed cache write does not fail the computation.
func (c *Cache) Compute(date time.Time, coord geo.Coordinate, p astro.Parameters) (prayer.Times, error) {
	if t, ok := c.LoadTimes(date, coord, p); ok {
		return t, nil
	}
	t, err := astro.Compute(date, coord, p)
	if err != nil {
		return prayer.Times{}, err
	}
	_ = c.SaveTimes(coord, p, t)
	return t, nil
}

// LoadCoordinate reads the last known coordinate.
// It reports false if the cache is missing or older than the TTL (30 days).
func (c *Cache) LoadCoordinate() (geo.Coordinate, bool) {
	path := filepath.Join(c.dir, coordCacheFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return geo.Coordinate{}, false
	}

	var entry CoordinateCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return geo.Coordinate{}, false
	}

	if c.now().Sub(entry.CachedAt) > coordTTL {
		return geo.Coordinate{}, false
	}
	if err := entry.Coordinate.Validate(); err != nil {
		return geo.Coordinate{}, false
	}

	return entry.Coordinate, true
}

// SaveCoordinate records coord as the last known coordinate.
func (c *Cache) SaveCoordinate(coord geo.Coordinate) error {
	path := filepath.Join(c.dir, coordCacheFile)

	entry := CoordinateCacheEntry{
		Coordinate: coord,
		CachedAt:   c.now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal coordinate cache: %w", err)
	}

	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("failed to write coordinate cache: %w", err)
	}

	return nil
}

// writeFile replaces path atomically so concurrent readers never see a
// partial entry.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
