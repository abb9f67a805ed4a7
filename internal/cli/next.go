package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
	"github.com/smokyabdulrahman/prayer-times/internal/tracker"
)

var (
	flagFormat  string
	flagPrayers string
)

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Display the next upcoming prayer time with a countdown.\nDesigned for status bars such as tmux.",
		RunE:  runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: "+strings.Join(prayer.Modes(), ", ")+", or a custom Go template")
	cmd.Flags().StringVar(&flagPrayers, "prayers", "", "Comma-separated list of prayers to track (overrides config)")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	// Priority: --prayers flag > config > all six.
	if cmd.Flags().Changed("prayers") && flagPrayers != "" {
		keys, err := prayer.ParseKeys(flagPrayers)
		if err != nil {
			return err
		}
		s.selected = keys
	}

	f, err := prayer.NewFormatter(flagFormat, s.timeFmt)
	if err != nil {
		return err
	}

	tr, err := s.tracker()
	if err != nil {
		return err
	}
	snap, err := tr.Tick(s.now())
	if err != nil {
		return err
	}

	next := s.nextSelected(snap)

	out := cmd.OutOrStdout()
	if next == nil {
		// Tomorrow is uncomputable: show the last prayer as done rather
		// than breaking the status bar.
		prayers := snap.Adjusted.Prayers(s.selected)
		if len(prayers) == 0 {
			return fmt.Errorf("could not determine next prayer")
		}
		fmt.Fprintf(out, "%s --:--", prayers[len(prayers)-1].Name())
		return nil
	}

	fmt.Fprint(out, f.Format(*next, snap.Now, snap.Iqama))
	return nil
}

// nextSelected returns the next selected prayer at the snapshot's instant,
// falling back to tomorrow's first selected prayer. It returns nil when
// tomorrow cannot be computed.
func (s *session) nextSelected(snap tracker.Snapshot) *prayer.Prayer {
	if next := prayer.NextPrayer(snap.Adjusted.Prayers(s.selected), snap.Now); next != nil {
		return next
	}

	_, tomorrow, err := s.times(snap.Now.AddDate(0, 0, 1))
	if err != nil {
		logger.Debug().Err(err).Msg("tomorrow's times unavailable")
		return nil
	}
	prayers := tomorrow.Prayers(s.selected)
	if len(prayers) == 0 {
		return nil
	}
	return &prayers[0]
}
