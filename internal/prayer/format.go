package prayer

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"
)

// Built-in display modes for a single prayer line.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatCountdown          = "countdown"
	FormatFull               = "full"
)

// FormatData is the value custom templates are executed against.
type FormatData struct {
	Name      string // "Asr"
	ShortName string // "A"
	Time      string // "15:02" or "3:02 PM"
	Remaining string // "2h 15m"
	Hours     int
	Minutes   int
	Seconds   int    // whole seconds until the prayer, negative once passed
	Clock     string // "MM:SS" inside the countdown window, empty outside it
	Iqama     string // "Iqama in 05:10"; empty when hidden
}

var modes = map[string]func(FormatData) string{
	FormatTimeRemaining:      func(d FormatData) string { return d.Remaining },
	FormatNextPrayerTime:     func(d FormatData) string { return d.Time },
	FormatNameAndTime:        func(d FormatData) string { return d.Name + " " + d.Time },
	FormatNameAndRemaining:   func(d FormatData) string { return d.Name + " " + d.Remaining },
	FormatShortNameAndTime:   func(d FormatData) string { return d.ShortName + " " + d.Time },
	FormatShortNameAndRemain: func(d FormatData) string { return d.ShortName + " " + d.Remaining },
	FormatCountdown: func(d FormatData) string {
		if d.Clock == "" {
			return d.Name + " " + d.Time
		}
		return d.Name + " in " + d.Clock
	},
	FormatFull: func(d FormatData) string {
		line := fmt.Sprintf("%s %s (%s)", d.Name, d.Time, d.Remaining)
		if d.Iqama != "" {
			line += " | " + d.Iqama
		}
		return line
	},
}

// Modes lists the built-in mode names in sorted order.
func Modes() []string {
	names := make([]string, 0, len(modes))
	for name := range modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Formatter renders prayer lines in one display mode. A mode containing
// "{{" is a text/template over FormatData.
type Formatter struct {
	layout string
	render func(FormatData) string
	tmpl   *template.Template
}

// NewFormatter validates mode and returns a formatter that prints clock
// times with layout, e.g. "15:04" or "3:04 PM".
func NewFormatter(mode, layout string) (*Formatter, error) {
	f := &Formatter{layout: layout}
	if !strings.Contains(mode, "{{") {
		render, ok := modes[mode]
		if !ok {
			return nil, fmt.Errorf("unknown format %q (valid: %s, or a template)", mode, strings.Join(Modes(), ", "))
		}
		f.render = render
		return f, nil
	}

	tmpl, err := template.New("format").Option("missingkey=error").Parse(mode)
	if err != nil {
		return nil, fmt.Errorf("parsing format template: %w", err)
	}
	// Field errors only surface on execution.
	if err := tmpl.Execute(new(strings.Builder), FormatData{}); err != nil {
		return nil, fmt.Errorf("format template: %w", err)
	}
	f.tmpl = tmpl
	return f, nil
}

// Data builds the template data for p at now. iqama may be nil.
func (f *Formatter) Data(p Prayer, now time.Time, iqama *IqamaState) FormatData {
	d := TimeRemaining(p, now)
	data := FormatData{
		Name:      p.Name(),
		ShortName: ShortNames[p.Key],
		Time:      p.Time.Format(f.layout),
		Remaining: FormatRemaining(d),
		Hours:     int(d.Hours()),
		Minutes:   int(d.Minutes()) % 60,
		Seconds:   int(d / time.Second),
	}
	if ShowCountdown(data.Seconds) {
		data.Clock = FormatClock(d)
	}
	if iqama != nil {
		data.Iqama = iqama.Label()
	}
	return data
}

// Format renders p as seen at now.
func (f *Formatter) Format(p Prayer, now time.Time, iqama *IqamaState) string {
	data := f.Data(p, now, iqama)
	if f.render != nil {
		return f.render(data)
	}
	var sb strings.Builder
	if err := f.tmpl.Execute(&sb, data); err != nil {
		return "template-err: " + err.Error()
	}
	return sb.String()
}
