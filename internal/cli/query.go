package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-times/internal/astro"
	"github.com/smokyabdulrahman/prayer-times/internal/display"
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
)

var flagQueryDays string

// Night divisions accepted by query besides the six prayer names.
const (
	queryMidnight  = "midnight"
	queryLastThird = "lastthird"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long:  "Query a specific prayer time for today, or across multiple days with --days.\n\nValid names: Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha, Midnight, Lastthird",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}

	cmd.Flags().StringVar(&flagQueryDays, "days", "", "Number of days to show (or 'week'/'month')")

	return cmd
}

// queryTarget is a prayer slot or a night division.
type queryTarget struct {
	name   string
	key    prayer.Key
	sunnah string
}

func parseQueryTarget(name string) (queryTarget, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case queryMidnight:
		return queryTarget{name: "Midnight", sunnah: queryMidnight}, nil
	case queryLastThird:
		return queryTarget{name: "Lastthird", sunnah: queryLastThird}, nil
	}
	k, err := prayer.ParseKey(name)
	if err != nil {
		return queryTarget{}, fmt.Errorf("unknown prayer %q; valid names: Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha, Midnight, Lastthird", name)
	}
	return queryTarget{name: k.String(), key: k}, nil
}

// at returns the target's time on date.
func (q queryTarget) at(s *session, date time.Time) (time.Time, error) {
	raw, adjusted, err := s.times(date)
	if err != nil {
		return time.Time{}, err
	}
	if q.sunnah == "" {
		return adjusted.Get(q.key), nil
	}

	next, _, err := s.times(date.AddDate(0, 0, 1))
	if err != nil {
		return time.Time{}, err
	}
	sn, err := astro.SunnahTimes(raw, next)
	if err != nil {
		return time.Time{}, err
	}
	if q.sunnah == queryMidnight {
		return sn.MiddleOfTheNight, nil
	}
	return sn.LastThirdOfTheNight, nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	target, err := parseQueryTarget(args[0])
	if err != nil {
		return err
	}

	days := 1
	if flagQueryDays != "" {
		days, err = parseDays(flagQueryDays)
		if err != nil {
			return err
		}
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	start := s.day(s.now())
	rows := make([]queryRow, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		at, err := target.at(s, date)
		if err != nil {
			return fmt.Errorf("%s on %s: %w", target.name, date.Format("2006-01-02"), err)
		}
		rows = append(rows, queryRow{day: date, at: at})
	}

	out := cmd.OutOrStdout()
	if FlagJSON {
		result := queryJSONOutput{Prayer: strings.ToLower(target.name)}
		for _, r := range rows {
			result.Days = append(result.Days, queryJSONDay{
				Date: r.day.Format("2006-01-02"),
				Time: r.at.Format(s.timeFmt),
			})
		}
		return writeJSON(out, result)
	}

	if days == 1 {
		fmt.Fprintf(out, "%s %s\n", target.name, rows[0].at.Format(s.timeFmt))
		return nil
	}

	printQueryTable(out, s, target.name, rows)
	return nil
}

type queryRow struct {
	day time.Time
	at  time.Time
}

func printQueryTable(w io.Writer, s *session, name string, rows []queryRow) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold(name))
	fmt.Fprintln(w)

	tbl := display.NewTable("Date", name)
	today := s.now().Format("2006-01-02")
	for i, r := range rows {
		tbl.AddRow(r.day.Format("Mon 02 Jan"), r.at.Format(s.timeFmt))
		if r.day.Format("2006-01-02") == today {
			tbl.Mark(i, display.RowActive)
		}
	}
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
}

type queryJSONOutput struct {
	Prayer string         `json:"prayer"`
	Days   []queryJSONDay `json:"days"`
}

type queryJSONDay struct {
	Date string `json:"date"`
	Time string `json:"time"`
}
