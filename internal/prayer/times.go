package prayer

import "time"

// ClockLayout is the 24-hour "HH:mm" shape used for stored and displayed timings.
const ClockLayout = "15:04"

// Times holds the six computed instants for one calendar day at one location.
type Times struct {
	// Date is local midnight of the day the times belong to.
	Date    time.Time
	Fajr    time.Time
	Sunrise time.Time
	Dhuhr   time.Time
	Asr     time.Time
	Maghrib time.Time
	Isha    time.Time
}

// Get returns the instant for k.
func (t Times) Get(k Key) time.Time {
	switch k {
	case Fajr:
		return t.Fajr
	case Sunrise:
		return t.Sunrise
	case Dhuhr:
		return t.Dhuhr
	case Asr:
		return t.Asr
	case Maghrib:
		return t.Maghrib
	case Isha:
		return t.Isha
	}
	return time.Time{}
}

// Set replaces the instant for k.
func (t *Times) Set(k Key, v time.Time) {
	switch k {
	case Fajr:
		t.Fajr = v
	case Sunrise:
		t.Sunrise = v
	case Dhuhr:
		t.Dhuhr = v
	case Asr:
		t.Asr = v
	case Maghrib:
		t.Maghrib = v
	case Isha:
		t.Isha = v
	}
}

// Prayers returns the selected slots as a chronological slice. A nil selection
// returns all six.
func (t Times) Prayers(selected []Key) []Prayer {
	if selected == nil {
		selected = Keys
	}
	out := make([]Prayer, 0, len(selected))
	for _, k := range selected {
		out = append(out, Prayer{Key: k, Time: t.Get(k)})
	}
	return out
}

// Location returns the time zone the times are expressed in.
func (t Times) Location() *time.Location {
	if t.Date.IsZero() {
		return time.UTC
	}
	return t.Date.Location()
}

// Timings renders the times in the HH:mm contract.
func (t Times) Timings() Timings {
	return Timings{
		Fajr:    t.Fajr.Format(ClockLayout),
		Sunrise: t.Sunrise.Format(ClockLayout),
		Dhuhr:   t.Dhuhr.Format(ClockLayout),
		Asr:     t.Asr.Format(ClockLayout),
		Maghrib: t.Maghrib.Format(ClockLayout),
		Isha:    t.Isha.Format(ClockLayout),
	}
}

// Timings contains the six prayer times as HH:mm strings.
type Timings struct {
	Fajr    string `json:"Fajr" yaml:"fajr"`
	Sunrise string `json:"Sunrise" yaml:"sunrise"`
	Dhuhr   string `json:"Dhuhr" yaml:"dhuhr"`
	Asr     string `json:"Asr" yaml:"asr"`
	Maghrib string `json:"Maghrib" yaml:"maghrib"`
	Isha    string `json:"Isha" yaml:"isha"`
}

// Get returns the HH:mm string for k.
func (tm Timings) Get(k Key) string {
	switch k {
	case Fajr:
		return tm.Fajr
	case Sunrise:
		return tm.Sunrise
	case Dhuhr:
		return tm.Dhuhr
	case Asr:
		return tm.Asr
	case Maghrib:
		return tm.Maghrib
	case Isha:
		return tm.Isha
	}
	return ""
}
