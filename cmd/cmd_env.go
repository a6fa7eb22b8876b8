// cmd_env.go - Env Command
// Hauptfunktionen: EnvHandler
package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/7blacky7/tensorbind/envconfig"
)

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show the effective engine configuration",
		Args:  cobra.NoArgs,
		RunE:  EnvHandler,
	}
}

// EnvHandler - Listet alle Konfigurationsvariablen mit aktuellen Werten auf
func EnvHandler(cmd *cobra.Command, args []string) error {
	envVars := envconfig.AsMap()

	keys := make([]string, 0, len(envVars))
	for k := range envVars {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var rows [][]string
	for _, k := range keys {
		e := envVars[k]
		rows = append(rows, []string{e.Name, fmt.Sprintf("%v", e.Value), e.Description})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"NAME", "VALUE", "DESCRIPTION"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(rows)
	table.Render()

	return nil
}
