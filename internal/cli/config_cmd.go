package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-times/internal/astro"
	"github.com/smokyabdulrahman/prayer-times/internal/config"
	"github.com/smokyabdulrahman/prayer-times/internal/display"
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change stored settings",
		Long:  "Without a subcommand, print the stored settings and the per-prayer\noffsets and mutes they produce.",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}

	set := &cobra.Command{
		Use:   "set <key> <value> [<key> <value>...]",
		Short: "Store one or more values",
		Long: "Store values. Pairs are applied together: nothing is saved if one is invalid.\n\nKeys: " +
			strings.Join(config.ValidKeys, ", ") +
			"\n\nExamples:\n  prayer-times config set latitude -33.8688 longitude 151.2093\n  prayer-times config set method umm-al-qura\n  prayer-times config set iqama_offset.maghrib 5\n  prayer-times config set azan_offset.fajr -5",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("expected key value pairs, got %d arguments", len(args))
			}
			return nil
		},
		RunE: runConfigSet,
	}
	// Values such as -5 or -33.86 are arguments, not shorthand flags.
	set.Flags().SetInterspersed(false)

	cmd.AddCommand(
		set,
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print a stored value (empty when unset)",
			Args:  cobra.ExactArgs(1),
			RunE:  runConfigGet,
		},
		&cobra.Command{
			Use:   "unset <key>...",
			Short: "Remove stored values so their defaults apply",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runConfigUnset,
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Delete the config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.Reset(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := config.Path()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
	)

	return cmd
}

// updateConfig loads the stored config, applies fn and saves the result.
func updateConfig(fn func(*config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return cfg.Save()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	err := updateConfig(func(cfg *config.Config) error {
		for i := 0; i < len(args); i += 2 {
			if err := cfg.Set(args[i], args[i+1]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i := 0; i < len(args); i += 2 {
		logger.Debug().Str("key", args[i]).Str("value", args[i+1]).Msg("config updated")
		fmt.Fprintf(out, "Set %s = %s\n", args[i], args[i+1])
	}
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	err := updateConfig(func(cfg *config.Config) error {
		for _, key := range args {
			if err := cfg.Unset(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, key := range args {
		fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", key)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	val, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if FlagJSON {
		return writeJSON(out, cfg)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", display.Bold("Configuration"))
	fmt.Fprintf(out, "  %s\n", display.Dim(path))
	fmt.Fprintln(out)

	var scalars []string
	for _, key := range config.ValidKeys {
		if !strings.Contains(key, ".") {
			scalars = append(scalars, key)
		}
	}
	width := 0
	for _, key := range scalars {
		width = max(width, len(key))
	}
	for _, key := range scalars {
		val, _ := cfg.Get(key)
		shown := display.Dim("(not set)")
		switch {
		case key == "method" && val != "":
			shown = formatMethodValue(val)
		case val != "":
			shown = val
		}
		fmt.Fprintf(out, "  %-*s  %s\n", width, key, shown)
	}
	fmt.Fprintln(out)

	printPolicyTable(out, cfg)
	return nil
}

// printPolicyTable shows the effective offsets and mutes of every slot.
func printPolicyTable(w io.Writer, cfg *config.Config) {
	azan, iqama, mutes := cfg.Azan(), cfg.Iqama(), cfg.Mutes()

	tbl := display.NewTable("Prayer", "Azan", "Iqama", "Azan sound", "Notification")
	for _, k := range prayer.Keys {
		iq := "-"
		if k != prayer.Sunrise {
			iq = "+" + strconv.Itoa(iqama.Minutes(k)) + "m"
		}
		m := mutes.Get(k)
		tbl.AddRow(k.String(), signedMinutes(azan.Minutes(k)), iq, onOff(!m.Azan), onOff(!m.Notification))
	}
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
}

func signedMinutes(m int) string {
	if m == 0 {
		return "0m"
	}
	return fmt.Sprintf("%+dm", m)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "muted"
}

// formatMethodValue appends the method's full name to its slug.
func formatMethodValue(slug string) string {
	for _, m := range astro.Methods {
		if m.Slug == slug {
			return fmt.Sprintf("%s (%s)", slug, m.Name)
		}
	}
	return slug
}
