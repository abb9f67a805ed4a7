package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-times/internal/astro"
	"github.com/smokyabdulrahman/prayer-times/internal/display"
	"github.com/smokyabdulrahman/prayer-times/internal/geo"
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
	"github.com/smokyabdulrahman/prayer-times/internal/tracker"
)

func runToday(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	tr, err := s.tracker()
	if err != nil {
		return err
	}
	now := s.now()
	snap, err := tr.Tick(now)
	if err != nil {
		return err
	}

	// The night divisions are optional; polar nights have no next fajr.
	var sunnah *astro.Sunnah
	if tomorrow, _, err := s.times(now.AddDate(0, 0, 1)); err == nil {
		if sn, err := astro.SunnahTimes(snap.Times, tomorrow); err == nil {
			sunnah = &sn
		}
	} else if !errors.Is(err, astro.ErrUncomputable) {
		return err
	}

	out := cmd.OutOrStdout()
	if FlagJSON {
		return printTodayJSON(out, s, snap, sunnah)
	}
	printTodayRich(out, s, snap, sunnah)
	return nil
}

// printTodayRich renders the colored terminal output for today's prayer schedule.
func printTodayRich(w io.Writer, s *session, snap tracker.Snapshot, sunnah *astro.Sunnah) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Prayer Times"))
	fmt.Fprintln(w)

	// Location and date info.
	fmt.Fprintf(w, "  %s\n", s.locationLabel())
	fmt.Fprintf(w, "  %s\n", s.loc)
	fmt.Fprintf(w, "  %s\n", snap.Now.Format("Monday 02 January 2006"))
	fmt.Fprintf(w, "  %s\n", display.Dim(methodLabel(s.params)))
	fmt.Fprintln(w)

	iqama := s.cfg.Iqama()
	tbl := display.NewTable("Prayer", "Azan", "Iqama")
	prayers := snap.Adjusted.Prayers(s.selected)
	for _, p := range prayers {
		iq := ""
		if p.Key != prayer.Sunrise {
			iq = p.Time.Add(time.Duration(iqama.Minutes(p.Key)) * time.Minute).Format(s.timeFmt)
		}
		tbl.AddRow(p.Name(), p.Time.Format(s.timeFmt), iq)
	}
	tbl.MarkProgress(prayer.ActiveIndex(prayers, snap.Now))
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)

	if snap.Next != nil {
		remaining := prayer.FormatRemaining(prayer.TimeRemaining(*snap.Next, snap.Now))
		fmt.Fprintf(w, "  %s\n", display.Countdown(snap.Countdown, fmt.Sprintf("%s in %s", snap.Next.Name(), remaining)))
	}
	if snap.Iqama != nil {
		fmt.Fprintf(w, "  %s\n", display.Iqama(*snap.Iqama))
	}
	if sunnah != nil {
		fmt.Fprintf(w, "  %s\n", display.Gray(fmt.Sprintf("Middle of the night %s, last third %s",
			sunnah.MiddleOfTheNight.Format(s.timeFmt), sunnah.LastThirdOfTheNight.Format(s.timeFmt))))
	}
	fmt.Fprintf(w, "  %s\n", display.Gray(fmt.Sprintf("Qibla %.1f° %s", snap.Qibla, geo.CompassPoint(snap.Qibla))))
	fmt.Fprintln(w)
}

// methodLabel returns e.g. "Muslim World League, shafi, middle-of-the-night".
func methodLabel(p astro.Parameters) string {
	name := p.Method.String()
	for _, m := range astro.Methods {
		if m.Method == p.Method {
			name = m.Name
		}
	}
	return fmt.Sprintf("%s, %s, %s", name, p.Madhab, p.HighLatitudeRule)
}

// todayJSON is the JSON output structure for the root command.
type todayJSON struct {
	Location todayJSONLocation `json:"location"`
	Date     string            `json:"date"`
	Method   string            `json:"method"`
	Madhab   string            `json:"madhab"`
	Timings  map[string]string `json:"timings"`
	Adjusted map[string]string `json:"adjusted"`
	Iqama    map[string]string `json:"iqama"`
	Current  string            `json:"current"`
	Next     *todayJSONNext    `json:"next"`
	Status   *todayJSONIqama   `json:"iqama_status,omitempty"`
	Sunnah   *todayJSONSunnah  `json:"sunnah,omitempty"`
	Qibla    float64           `json:"qibla"`
}

type todayJSONLocation struct {
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    string  `json:"source"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
	Countdown int    `json:"countdown_seconds"`
}

type todayJSONIqama struct {
	Prayer string `json:"prayer"`
	Status string `json:"status"`
	Label  string `json:"label"`
}

type todayJSONSunnah struct {
	MiddleOfTheNight    string `json:"middle_of_the_night"`
	LastThirdOfTheNight string `json:"last_third_of_the_night"`
}

// timingsMap renders the selected prayers as lower-case name -> time.
func timingsMap(t prayer.Times, selected []prayer.Key, layout string) map[string]string {
	out := make(map[string]string, len(selected))
	for _, p := range t.Prayers(selected) {
		out[p.Key.Slug()] = p.Time.Format(layout)
	}
	return out
}

// printTodayJSON renders structured JSON output.
func printTodayJSON(w io.Writer, s *session, snap tracker.Snapshot, sunnah *astro.Sunnah) error {
	iqamaOffsets := s.cfg.Iqama()
	iqama := make(map[string]string)
	for _, p := range snap.Adjusted.Prayers(s.selected) {
		if p.Key == prayer.Sunrise {
			continue
		}
		iqama[p.Key.Slug()] = p.Time.Add(time.Duration(iqamaOffsets.Minutes(p.Key)) * time.Minute).Format(s.timeFmt)
	}

	out := todayJSON{
		Location: todayJSONLocation{
			Timezone:  s.loc.String(),
			Latitude:  s.coord.Latitude,
			Longitude: s.coord.Longitude,
			Source:    s.source,
		},
		Date:     snap.Now.Format("02 Jan 2006"),
		Method:   s.params.Method.String(),
		Madhab:   s.params.Madhab.String(),
		Timings:  timingsMap(snap.Times, s.selected, s.timeFmt),
		Adjusted: timingsMap(snap.Adjusted, s.selected, s.timeFmt),
		Iqama:    iqama,
		Qibla:    snap.Qibla,
	}

	if current := prayer.CurrentPrayer(snap.Adjusted.Prayers(s.selected), snap.Now); current != nil {
		out.Current = current.Key.Slug()
	}

	if snap.Next != nil {
		out.Next = &todayJSONNext{
			Prayer:    snap.Next.Key.Slug(),
			Time:      snap.Next.Time.Format(s.timeFmt),
			Remaining: prayer.FormatRemaining(prayer.TimeRemaining(*snap.Next, snap.Now)),
			Countdown: snap.Countdown,
		}
	}

	if snap.Iqama != nil {
		out.Status = &todayJSONIqama{
			Prayer: snap.Iqama.Key.Slug(),
			Status: snap.Iqama.Status.String(),
			Label:  snap.Iqama.Label(),
		}
	}

	if sunnah != nil {
		out.Sunnah = &todayJSONSunnah{
			MiddleOfTheNight:    sunnah.MiddleOfTheNight.Format(s.timeFmt),
			LastThirdOfTheNight: sunnah.LastThirdOfTheNight.Format(s.timeFmt),
		}
	}

	return writeJSON(w, out)
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
