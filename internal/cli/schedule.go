package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/smokyabdulrahman/prayer-times/internal/config"
	"github.com/smokyabdulrahman/prayer-times/internal/display"
	"github.com/smokyabdulrahman/prayer-times/internal/notify"
	"github.com/smokyabdulrahman/prayer-times/internal/schedule"
)

// Notification sinks accepted by --sink.
const (
	sinkLog   = "log"
	sinkMQTT  = "mqtt"
	sinkRedis = "redis"
)

var (
	flagScheduleFormat string
	flagScheduleSinks  []string
	flagScheduleDhikr  bool
)

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Plan today's notification triggers",
		Long: "Translate today's prayer times into daily-recurring notification triggers.\n" +
			"Without --sink the plan is only printed. With one or more sinks the pending\n" +
			"triggers are replaced with the new plan.",
		Args: cobra.NoArgs,
		RunE: runSchedule,
	}

	cmd.Flags().StringVar(&flagScheduleFormat, "format", "text", "Output format: text, json or yaml")
	cmd.Flags().StringSliceVar(&flagScheduleSinks, "sink", nil, "Register triggers with: log, mqtt, redis (repeatable)")
	cmd.Flags().BoolVar(&flagScheduleDhikr, "dhikr", false, "Include remembrance reminders (overrides config)")

	return cmd
}

// scheduleOutput is the structured form of a plan.
type scheduleOutput struct {
	Date      string             `json:"date" yaml:"date"`
	Triggers  []schedule.Trigger `json:"triggers" yaml:"triggers"`
	Scheduled []string           `json:"scheduled,omitempty" yaml:"scheduled,omitempty"`
	Failed    map[string]string  `json:"failed,omitempty" yaml:"failed,omitempty"`
}

func runSchedule(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(flagScheduleFormat)
	if format != "text" && format != "json" && format != "yaml" {
		return fmt.Errorf("invalid format %q (must be text, json or yaml)", flagScheduleFormat)
	}
	if FlagJSON {
		format = "json"
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	opts := s.cfg.ScheduleOptions()
	if cmd.Flags().Changed("dhikr") {
		opts.Dhikr = flagScheduleDhikr
	}

	raw, _, err := s.times(s.now())
	if err != nil {
		return err
	}

	out := scheduleOutput{
		Date:     raw.Date.Format("2006-01-02"),
		Triggers: schedule.Plan(raw, opts),
	}

	if len(flagScheduleSinks) > 0 {
		n, closeSinks, err := openSinks(cmd.Context(), s, flagScheduleSinks)
		if err != nil {
			return err
		}
		defer closeSinks()

		res, err := schedule.New(n, logger).Sync(cmd.Context(), raw, opts)
		if err != nil {
			return err
		}
		out.Scheduled = res.Scheduled
		if !res.OK() {
			out.Failed = make(map[string]string, len(res.Failed))
			for id, ferr := range res.Failed {
				out.Failed[id] = ferr.Error()
			}
		}
	}

	w := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeJSON(w, out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	}
	printScheduleText(w, s, out)
	return nil
}

// openSinks dials the named sinks. The returned func closes every connection.
func openSinks(ctx context.Context, s *session, names []string) (schedule.Notifier, func(), error) {
	var (
		sinks   notify.Multi
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case sinkLog:
			sinks = append(sinks, notify.NewLog(logger))
		case sinkMQTT:
			if s.cfg.MQTTBroker == "" {
				closeAll()
				return nil, nil, fmt.Errorf("mqtt sink requires mqtt_broker (config or %s)", config.EnvMQTTBroker)
			}
			m, err := notify.DialMQTT(s.cfg.MQTTBroker, mqttClientID(), s.cfg.MQTTTopic, logger)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			sinks = append(sinks, m)
			closers = append(closers, m.Close)
		case sinkRedis:
			if s.cfg.RedisAddr == "" {
				closeAll()
				return nil, nil, fmt.Errorf("redis sink requires redis_addr (config or %s)", config.EnvRedisAddr)
			}
			r, err := notify.DialRedis(ctx, s.cfg.RedisAddr, s.cfg.RedisPassword, "")
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			sinks = append(sinks, r)
			closers = append(closers, func() { _ = r.Close() })
		default:
			closeAll()
			return nil, nil, fmt.Errorf("unknown sink %q (must be log, mqtt or redis)", name)
		}
	}
	return sinks, closeAll, nil
}

func mqttClientID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "local"
	}
	return fmt.Sprintf("prayer-times-%s-%d", host, os.Getpid())
}

func printScheduleText(w io.Writer, s *session, out scheduleOutput) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Notification Triggers"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.locationLabel())
	fmt.Fprintf(w, "  %s\n", out.Date)
	fmt.Fprintln(w)

	tbl := display.NewTable("Time", "Identifier", "Sound", "Body")
	for _, t := range out.Triggers {
		sound := t.SoundName()
		if sound == "" {
			sound = "-"
		}
		tbl.AddRow(t.Clock(), t.Identifier, sound, t.Body)
	}
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)

	if len(out.Scheduled) > 0 {
		fmt.Fprintf(w, "  %s\n", display.Green(fmt.Sprintf("%d triggers scheduled", len(out.Scheduled))))
	}
	for id, msg := range out.Failed {
		fmt.Fprintf(w, "  %s\n", display.Red(fmt.Sprintf("%s: %s", id, msg)))
	}
}
