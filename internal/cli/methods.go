package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-times/internal/astro"
	"github.com/smokyabdulrahman/prayer-times/internal/display"
)

type methodJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the calculation methods",
		Long:  "Print every supported calculation method with its twilight angles.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if FlagJSON {
				list := make([]methodJSON, 0, len(astro.Methods))
				for _, m := range astro.Methods {
					list = append(list, methodJSON{ID: m.Slug, Name: m.Name, Description: m.Description})
				}
				return writeJSON(out, list)
			}

			tbl := display.NewTable("ID", "Name", "Angles")
			for _, m := range astro.Methods {
				tbl.AddRow(m.Slug, m.Name, m.Description)
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, tbl.Render())
			fmt.Fprintln(out)
			fmt.Fprintln(out, "  Select one with --method <ID> or 'config set method <ID>' (default: mwl).")
			return nil
		},
	}
}
