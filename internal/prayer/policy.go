package prayer

import (
	"fmt"
	"time"
)

// Offsets maps a slot to a whole number of minutes. Missing keys mean 0.
type Offsets map[Key]int

// Minutes returns the offset for k.
func (o Offsets) Minutes(k Key) int {
	return o[k]
}

// DefaultIqamaMinutes is the iqama delay used when a slot has no configured value.
const DefaultIqamaMinutes = 20

// DefaultIqamaOffsets returns the iqama delays used on first launch.
func DefaultIqamaOffsets() Offsets {
	return Offsets{
		Fajr:    20,
		Dhuhr:   20,
		Asr:     20,
		Maghrib: 10,
		Isha:    20,
	}
}

// iqamaMinutes returns the iqama delay for k, falling back to the default.
func iqamaMinutes(o Offsets, k Key) int {
	if m, ok := o[k]; ok {
		return m
	}
	return DefaultIqamaMinutes
}

// AdjustedAzanTime shifts a raw prayer time by the azan offset for k.
// Offsets may be negative and are not clamped.
func AdjustedAzanTime(raw time.Time, k Key, azan Offsets) time.Time {
	return raw.Add(time.Duration(azan.Minutes(k)) * time.Minute)
}

// Adjust applies AdjustedAzanTime to every slot.
func Adjust(t Times, azan Offsets) Times {
	out := t
	for _, k := range Keys {
		out.Set(k, AdjustedAzanTime(t.Get(k), k, azan))
	}
	return out
}

// iqamaGrace is how long the lateness label stays up after the iqama.
const iqamaGrace = 30 * time.Minute

// IqamaStatus is the kind of iqama label to show.
type IqamaStatus int

const (
	IqamaHidden IqamaStatus = iota
	IqamaCounting
	IqamaLate
)

// String returns a stable name for the status.
func (s IqamaStatus) String() string {
	switch s {
	case IqamaCounting:
		return "counting"
	case IqamaLate:
		return "late"
	default:
		return "hidden"
	}
}

// IqamaState is the derived iqama display for one prayer at one instant.
// Duration is the time left for IqamaCounting and the time overdue for IqamaLate.
type IqamaState struct {
	Key      Key
	Status   IqamaStatus
	Duration time.Duration
	Iqama    time.Time
}

// Label renders the state as "Iqama in MM:SS" or "Late for Iqama by MM:SS".
func (s IqamaState) Label() string {
	switch s.Status {
	case IqamaCounting:
		return fmt.Sprintf("Iqama in %s", FormatClock(s.Duration))
	case IqamaLate:
		return fmt.Sprintf("Late for Iqama by %s", FormatClock(s.Duration))
	default:
		return ""
	}
}

// IqamaInfo derives the iqama label for a prayer. The label is visible from the
// adjusted azan time through 30 minutes after the iqama, both ends inclusive.
// It returns false outside that window and always for sunrise.
func IqamaInfo(raw time.Time, k Key, azan, iqama Offsets, now time.Time) (IqamaState, bool) {
	if k == Sunrise || !k.Valid() {
		return IqamaState{Key: k}, false
	}

	adhan := AdjustedAzanTime(raw, k, azan)
	iqamaAt := adhan.Add(time.Duration(iqamaMinutes(iqama, k)) * time.Minute)

	if now.Before(adhan) || now.After(iqamaAt.Add(iqamaGrace)) {
		return IqamaState{Key: k}, false
	}

	if !now.After(iqamaAt) {
		return IqamaState{Key: k, Status: IqamaCounting, Duration: iqamaAt.Sub(now), Iqama: iqamaAt}, true
	}
	return IqamaState{Key: k, Status: IqamaLate, Duration: now.Sub(iqamaAt), Iqama: iqamaAt}, true
}

// ActiveIqama returns the first prayer of the day whose iqama label is visible.
func ActiveIqama(t Times, azan, iqama Offsets, now time.Time) (IqamaState, bool) {
	for _, k := range IqamaKeys {
		if st, ok := IqamaInfo(t.Get(k), k, azan, iqama, now); ok {
			return st, true
		}
	}
	return IqamaState{}, false
}

// CountdownSeconds returns the whole seconds from now until the adjusted azan
// time for k. The value is negative once the azan has passed.
func CountdownSeconds(raw time.Time, k Key, azan Offsets, now time.Time) int {
	return int(AdjustedAzanTime(raw, k, azan).Sub(now) / time.Second)
}

// countdownWindow is the longest lead time a countdown is shown for.
const countdownWindow = 80 * 60

// ShowCountdown reports whether a countdown value should be displayed,
// i.e. whether it lies in (0, 80min].
func ShowCountdown(seconds int) bool {
	return seconds > 0 && seconds <= countdownWindow
}
