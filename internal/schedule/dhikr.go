package schedule

import (
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
)

// DhikrTitle is the title of every remembrance reminder.
const DhikrTitle = "Adhkar"

// dhikrOffsets are minutes relative to the adjusted azan time.
var dhikrOffsets = map[prayer.Key]int{
	prayer.Fajr:    30,
	prayer.Dhuhr:   -20,
	prayer.Asr:     -20,
	prayer.Maghrib: -30,
	prayer.Isha:    -20,
}

var dhikrTexts = map[prayer.Key][]string{
	prayer.Fajr: {"Time for your morning adhkar"},
	prayer.Dhuhr: {
		"Glory be to Allah",
		"My Lord, forgive and have mercy, for You are the best of those who show mercy",
		"All praise is due to Allah",
	},
	prayer.Asr: {
		"There is no god but Allah",
		"O Allah, send blessings and peace upon our Prophet Muhammad",
		"Glory be to Allah and praise be to Him",
	},
	prayer.Maghrib: {"Time for your evening adhkar"},
	prayer.Isha: {
		"I seek refuge in the perfect words of Allah from the evil of what He has created",
		"Glory be to Allah and praise be to Him",
		"There is no might nor power except with Allah",
	},
}

// dhikrRotation is each prayer's position in the rotation of texts.
var dhikrRotation = map[prayer.Key]int{
	prayer.Fajr:    0,
	prayer.Dhuhr:   1,
	prayer.Asr:     2,
	prayer.Maghrib: 3,
	prayer.Isha:    4,
}

// DhikrIdentifier returns the stable identifier of the reminder for k.
func DhikrIdentifier(k prayer.Key) string {
	return "dhikr_" + k.Slug()
}

// DhikrBody returns the reminder text for k on the given day of the month.
// Fajr and maghrib always use the morning and evening adhkar.
func DhikrBody(k prayer.Key, day int) string {
	texts := dhikrTexts[k]
	if len(texts) == 0 {
		return ""
	}
	if k == prayer.Fajr || k == prayer.Maghrib {
		return texts[0]
	}
	idx := ((day - 1) + dhikrRotation[k]) % len(texts)
	if idx < 0 {
		idx += len(texts)
	}
	return texts[idx]
}

// DhikrTriggers returns one reminder per prayer (sunrise excluded), fired
// relative to the adjusted azan time. Bodies rotate with the day of t.Date.
func DhikrTriggers(t prayer.Times, azan prayer.Offsets) []Trigger {
	day := t.Date.Day()
	out := make([]Trigger, 0, len(prayer.IqamaKeys))
	for _, k := range prayer.IqamaKeys {
		fire := prayer.AdjustedAzanTime(t.Get(k), k, azan)
		fire = fire.Add(minutes(dhikrOffsets[k]))
		out = append(out, Trigger{
			Identifier: DhikrIdentifier(k),
			Hour:       fire.Hour(),
			Minute:     fire.Minute(),
			Repeats:    true,
			Title:      DhikrTitle,
			Body:       DhikrBody(k, day),
			Sound:      strPtr(DefaultSound),
		})
	}
	return out
}
