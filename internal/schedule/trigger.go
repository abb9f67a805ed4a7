package schedule

import (
	"fmt"

	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
)

// Sound assets understood by notification collaborators.
const (
	AzanSound    = "azan.m4a"
	DefaultSound = "default"
)

// SunriseIdentifier is the identifier of the sunrise trigger.
const SunriseIdentifier = "sunrise"

// Trigger is one daily-recurring notification registration. A nil Sound
// means the notification is silent.
type Trigger struct {
	Identifier string  `json:"identifier" yaml:"identifier"`
	Hour       int     `json:"hour" yaml:"hour"`
	Minute     int     `json:"minute" yaml:"minute"`
	Repeats    bool    `json:"repeats" yaml:"repeats"`
	Title      string  `json:"title" yaml:"title"`
	Body       string  `json:"body" yaml:"body"`
	Sound      *string `json:"sound" yaml:"sound"`
}

// Clock returns the fire time as "HH:mm".
func (t Trigger) Clock() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// SoundName returns the sound asset or "" when silent.
func (t Trigger) SoundName() string {
	if t.Sound == nil {
		return ""
	}
	return *t.Sound
}

// Identifier returns the stable identifier of the azan trigger for k.
func Identifier(k prayer.Key) string {
	if k == prayer.Sunrise {
		return SunriseIdentifier
	}
	return "azan_" + k.Slug()
}

// Identifiers lists every identifier a plan can contain.
func Identifiers() []string {
	ids := make([]string, 0, len(prayer.Keys)+len(prayer.IqamaKeys))
	for _, k := range prayer.Keys {
		ids = append(ids, Identifier(k))
	}
	for _, k := range prayer.IqamaKeys {
		ids = append(ids, DhikrIdentifier(k))
	}
	return ids
}

// Mute holds the two mute flags of one prayer.
type Mute struct {
	Azan         bool `json:"azan" yaml:"azan"`
	Notification bool `json:"notification" yaml:"notification"`
}

// MuteConfig maps prayers to their mute flags. Missing keys are unmuted.
type MuteConfig map[prayer.Key]Mute

// Get returns the flags for k.
func (m MuteConfig) Get(k prayer.Key) Mute {
	return m[k]
}

func strPtr(s string) *string { return &s }

// Translate converts a day's raw times into azan triggers, one per unmuted
// slot, in chronological slot order. The fire time is the raw time plus the
// azan offset, truncated to the minute.
func Translate(t prayer.Times, azan prayer.Offsets, mutes MuteConfig) []Trigger {
	out := make([]Trigger, 0, len(prayer.Keys))
	for _, k := range prayer.Keys {
		mute := mutes.Get(k)
		// For sunrise the notification flag is the "mute sunrise" setting.
		if mute.Notification {
			continue
		}

		fire := prayer.AdjustedAzanTime(t.Get(k), k, azan)
		tr := Trigger{
			Identifier: Identifier(k),
			Hour:       fire.Hour(),
			Minute:     fire.Minute(),
			Repeats:    true,
		}

		if k == prayer.Sunrise {
			tr.Title = "Sunrise"
		} else {
			tr.Title = fmt.Sprintf("%s Azan", k)
			tr.Body = fmt.Sprintf("It is time for the %s azan", k)
			if !mute.Azan {
				tr.Sound = strPtr(AzanSound)
			}
		}
		out = append(out, tr)
	}
	return out
}
