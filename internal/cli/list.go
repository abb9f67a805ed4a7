package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-times/internal/astro"
	"github.com/smokyabdulrahman/prayer-times/internal/display"
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  "Display a grid of prayer times for N days (default: 7).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 7
			if len(args) > 0 {
				n, err := parseDays(args[0])
				if err != nil {
					return err
				}
				days = n
			}
			return runList(cmd, days)
		},
	}
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Long:  "Alias for 'list 7'. Display a grid of prayer times for 7 days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, 7)
		},
	}
}

func newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Long:  "Alias for 'list 30'. Display a grid of prayer times for 30 days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, 30)
		},
	}
}

// maxDays bounds list and query ranges.
const maxDays = 366

// parseDays parses a day count, accepting the aliases "week" and "month".
func parseDays(s string) (int, error) {
	switch s {
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxDays {
		return 0, fmt.Errorf("invalid number of days: %q (must be 1-%d, 'week' or 'month')", s, maxDays)
	}
	return n, nil
}

// dayTimes is one day of azan-adjusted times. Uncomputable days carry Err.
type dayTimes struct {
	Day      time.Time
	Date     string
	Adjusted prayer.Times
	Err      error
}

// collectDays computes days consecutive days starting today. A day the
// engine cannot compute is kept with its error; any other failure aborts.
func (s *session) collectDays(days int) ([]dayTimes, error) {
	start := s.day(s.now())
	out := make([]dayTimes, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		dt := dayTimes{Day: date, Date: date.Format("2006-01-02")}
		_, adjusted, err := s.times(date)
		switch {
		case err == nil:
			dt.Adjusted = adjusted
		case errors.Is(err, astro.ErrUncomputable):
			logger.Warn().Str("date", dt.Date).Err(err).Msg("skipping day")
			dt.Err = err
		default:
			return nil, err
		}
		out = append(out, dt)
	}
	return out, nil
}

// runList is the handler for the list, week and month subcommands.
func runList(cmd *cobra.Command, days int) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	list, err := s.collectDays(days)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if FlagJSON {
		return printListJSON(out, s, list)
	}
	printListRich(out, s, list, fmt.Sprintf("Prayer Times, %d Days", days))
	return nil
}

// printListRich renders a Date column followed by one column per selected prayer.
func printListRich(w io.Writer, s *session, list []dayTimes, title string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold(title))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.locationLabel())
	fmt.Fprintf(w, "  %s\n", display.Dim(methodLabel(s.params)))
	fmt.Fprintln(w)

	headers := []string{"Date"}
	for _, k := range s.selected {
		headers = append(headers, k.String())
	}
	tbl := display.NewTable(headers...)

	today := s.now().Format("2006-01-02")
	for i, dt := range list {
		row := []string{dt.Day.Format("Mon 02 Jan")}
		for _, k := range s.selected {
			if dt.Err != nil {
				row = append(row, "--:--")
				continue
			}
			row = append(row, dt.Adjusted.Get(k).Format(s.timeFmt))
		}
		tbl.AddRow(row...)

		if dt.Date == today {
			tbl.Mark(i, display.RowActive)
		}
	}

	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
}

// listJSONOutput is the JSON structure for the list command.
type listJSONOutput struct {
	Location todayJSONLocation `json:"location"`
	Method   string            `json:"method"`
	Madhab   string            `json:"madhab"`
	Days     []listJSONDay     `json:"days"`
}

type listJSONDay struct {
	Date    string            `json:"date"`
	Timings map[string]string `json:"timings,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func printListJSON(w io.Writer, s *session, list []dayTimes) error {
	out := listJSONOutput{
		Location: todayJSONLocation{
			Timezone:  s.loc.String(),
			Latitude:  s.coord.Latitude,
			Longitude: s.coord.Longitude,
			Source:    s.source,
		},
		Method: s.params.Method.String(),
		Madhab: s.params.Madhab.String(),
		Days:   make([]listJSONDay, 0, len(list)),
	}

	for _, dt := range list {
		day := listJSONDay{Date: dt.Date}
		if dt.Err != nil {
			day.Error = dt.Err.Error()
		} else {
			day.Timings = timingsMap(dt.Adjusted, s.selected, s.timeFmt)
		}
		out.Days = append(out.Days, day)
	}

	return writeJSON(w, out)
}
