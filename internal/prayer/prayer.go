package prayer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownKey is returned when a prayer name does not match any Key.
var ErrUnknownKey = errors.New("unknown prayer name")

// Key identifies one of the six daily prayer slots.
type Key int

const (
	Fajr Key = iota
	Sunrise
	Dhuhr
	Asr
	Maghrib
	Isha
)

// Keys lists every slot in chronological order.
var Keys = []Key{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

// IqamaKeys are the slots that have a congregational iqama (sunrise has none).
var IqamaKeys = []Key{Fajr, Dhuhr, Asr, Maghrib, Isha}

var keyNames = [...]string{"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha"}

// ShortNames maps each slot to a one-letter abbreviation.
var ShortNames = map[Key]string{
	Fajr:    "F",
	Sunrise: "S",
	Dhuhr:   "D",
	Asr:     "A",
	Maghrib: "M",
	Isha:    "I",
}

// String returns the English name, e.g. "Fajr".
func (k Key) String() string {
	if k < Fajr || k > Isha {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// Slug returns the lowercase name used in config keys and identifiers.
func (k Key) Slug() string {
	return strings.ToLower(k.String())
}

// Valid reports whether k is one of the six slots.
func (k Key) Valid() bool {
	return k >= Fajr && k <= Isha
}

// ParseKey resolves a case-insensitive prayer name.
func ParseKey(name string) (Key, error) {
	n := strings.TrimSpace(name)
	for i, kn := range keyNames {
		if strings.EqualFold(n, kn) {
			return Key(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// ParseKeys parses a comma-separated list such as "Fajr,Dhuhr,Isha".
// An empty string yields all six keys.
func ParseKeys(list string) ([]Key, error) {
	if strings.TrimSpace(list) == "" {
		return append([]Key(nil), Keys...), nil
	}
	var keys []Key
	for _, part := range strings.Split(list, ",") {
		k, err := ParseKey(part)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Prayer is a single slot with its time.
type Prayer struct {
	Key  Key
	Time time.Time
}

// Name returns the English name of the prayer.
func (p Prayer) Name() string {
	return p.Key.String()
}

// NextPrayer finds the next upcoming prayer from the given slice, relative to now.
// If all prayers for today have passed, it returns nil (caller should use tomorrow's Fajr).
func NextPrayer(prayers []Prayer, now time.Time) *Prayer {
	for i := range prayers {
		if prayers[i].Time.After(now) {
			return &prayers[i]
		}
	}
	return nil
}

// CurrentPrayer returns the most recent prayer that has started, or nil before the first one.
func CurrentPrayer(prayers []Prayer, now time.Time) *Prayer {
	var cur *Prayer
	for i := range prayers {
		if !prayers[i].Time.After(now) {
			cur = &prayers[i]
		}
	}
	return cur
}

// highlightGrace keeps a prayer highlighted for a while after it starts.
const highlightGrace = 30 * time.Minute

// ActiveIndex returns the index of the prayer a day view should highlight:
// the first one whose time plus a 30 minute grace is still ahead of now.
// Once the whole day is past it wraps to 0.
func ActiveIndex(prayers []Prayer, now time.Time) int {
	for i, p := range prayers {
		if now.Before(p.Time.Add(highlightGrace)) {
			return i
		}
	}
	return 0
}

// TimeRemaining returns the duration until the given prayer time.
func TimeRemaining(prayer Prayer, now time.Time) time.Duration {
	return prayer.Time.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatClock formats a duration as zero-padded "MM:SS" using its absolute value.
// Minutes are not wrapped at 60.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
