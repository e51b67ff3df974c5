package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/schemasync/internal/artifacts"
	"github.com/pders01/schemasync/internal/config"
)

var (
	exportSide string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download a project's content model",
	Long: `Fetch the content model of the source or target project and save it
as JSON. Exported files can be passed to plan with --source-file and
--target-file to plan offline.

Examples:
  schemasync export --side source --out source.json
  schemasync export --side target > target.json`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportSide, "side", "source", "Which project to export (source, target)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	side, err := config.ParseSide(exportSide)
	if err != nil {
		return err
	}

	w, err := fetchSchema(commandContext(cmd), side)
	if err != nil {
		return err
	}

	if exportOut == "" {
		output, err := json.MarshalIndent(w, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if err := artifacts.WriteJSON(exportOut, w); err != nil {
		return err
	}

	fmt.Printf("✓ Exported %s schema to %s\n", side, exportOut)
	fmt.Printf("  %d model(s), %d component(s), %d enumeration(s)\n",
		len(w.Models), len(w.Components), len(w.Enumerations))
	return nil
}
