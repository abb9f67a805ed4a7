package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-times/internal/display"
)

// defaultLogLevel keeps the console quiet apart from warnings.
const defaultLogLevel = zerolog.WarnLevel

// newLogger builds the console logger. An empty level means warn.
func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl := defaultLogLevel
	if level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = l
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    !display.Enabled(),
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
