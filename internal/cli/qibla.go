package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-times/internal/display"
	"github.com/smokyabdulrahman/prayer-times/internal/geo"
)

func newQiblaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "qibla",
		Short: "Show the qibla direction",
		Long:  "Print the great-circle bearing from your location to the Kaaba, clockwise from true north.",
		Args:  cobra.NoArgs,
		RunE:  runQibla,
	}
}

type qiblaJSON struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Source     string  `json:"source"`
	Direction  float64 `json:"direction"`
	Compass    string  `json:"compass"`
	DistanceKm float64 `json:"distance_km"`
}

func runQibla(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	bearing := geo.Qibla(s.coord)
	compass := geo.CompassPoint(bearing)
	distance := geo.Distance(s.coord, geo.Kaaba)

	out := cmd.OutOrStdout()
	if FlagJSON {
		return writeJSON(out, qiblaJSON{
			Latitude:   s.coord.Latitude,
			Longitude:  s.coord.Longitude,
			Source:     s.source,
			Direction:  bearing,
			Compass:    compass,
			DistanceKm: distance,
		})
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", display.Bold("Qibla"))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", s.locationLabel())
	fmt.Fprintf(out, "  %s\n", display.Accent(fmt.Sprintf("%.1f° %s", bearing, compass)))
	fmt.Fprintf(out, "  %s\n", display.Gray(fmt.Sprintf("%.0f km to the Kaaba", distance)))
	fmt.Fprintln(out)
	return nil
}
