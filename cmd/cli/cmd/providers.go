package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Show the available providers and refiners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := NewRegistryFunc()
			var rows [][]string
			for _, name := range registry.Names() {
				reg, _ := registry.Lookup(name)
				kinds := make([]string, 0, len(reg.Capabilities.VideoKinds))
				for _, k := range reg.Capabilities.VideoKinds {
					kinds = append(kinds, k.String())
				}
				hash := reg.Capabilities.RequiredHash
				if hash == "" {
					hash = "-"
				}
				rows = append(rows, []string{name, strings.Join(kinds, ","), strconv.Itoa(reg.Capabilities.Languages.Len()), hash})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Provider", "Videos", "Languages", "Required hash"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight}))
			fmt.Fprintf(out, "Refiners: %s\n", strings.Join(NewRefinerRegistryFunc().Names(), ", "))
			return nil
		},
	}
}
