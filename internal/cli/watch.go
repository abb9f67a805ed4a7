package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-times/internal/display"
	"github.com/smokyabdulrahman/prayer-times/internal/geo"
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
	"github.com/smokyabdulrahman/prayer-times/internal/tracker"
)

var (
	flagWatchInterval time.Duration
	flagWatchCount    int
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print a live countdown to the next prayer",
		Long:  "Refresh the next prayer, its countdown and the iqama status until interrupted.\nTimes are recomputed when the calendar day rolls over.",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}

	cmd.Flags().DurationVar(&flagWatchInterval, "interval", time.Second, "Refresh interval")
	cmd.Flags().IntVar(&flagWatchCount, "count", 0, "Stop after N refreshes (0 = until interrupted)")
	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format, as for 'next'")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	if flagWatchInterval <= 0 {
		return fmt.Errorf("--interval must be positive")
	}
	if flagWatchCount < 0 {
		return fmt.Errorf("--count must not be negative")
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	f, err := prayer.NewFormatter(flagFormat, s.timeFmt)
	if err != nil {
		return err
	}
	tr, err := s.tracker()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticks := make(chan time.Time)
	go func() {
		defer close(ticks)
		ticker := time.NewTicker(flagWatchInterval)
		defer ticker.Stop()

		sent := 0
		for {
			select {
			case ticks <- s.now():
			case <-ctx.Done():
				return
			}
			sent++
			if flagWatchCount > 0 && sent >= flagWatchCount {
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := cmd.OutOrStdout()
	var coords chan geo.Coordinate // fixed location
	err = tr.Run(ctx, ticks, coords, func(snap tracker.Snapshot, err error) {
		if err != nil {
			logger.Error().Err(err).Msg("failed to compute prayer times")
			fmt.Fprintln(out, "--:--")
			return
		}
		fmt.Fprintln(out, watchLine(s, f, snap))
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchLine renders one refresh: the next prayer and the iqama status, if any.
func watchLine(s *session, f *prayer.Formatter, snap tracker.Snapshot) string {
	next := s.nextSelected(snap)
	if next == nil {
		return "--:--"
	}
	line := f.Format(*next, snap.Now, nil)
	if snap.Iqama != nil {
		line += "  " + display.Iqama(*snap.Iqama)
	}
	return line
}
