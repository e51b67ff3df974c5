package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"github.com/pders01/schemasync/internal/artifacts"
	"github.com/pders01/schemasync/internal/config"
	"github.com/pders01/schemasync/internal/models"
)

var (
	statsSide string
	statsFile string
	statsJSON bool
	statsToon bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show content model statistics",
	Long: `Display statistics about a content model including:
  - Model, component and enumeration counts
  - Fields by kind (simple, enumerable, relational, ...)
  - System field count
  - Fields that could not be classified
  - The largest models and components

Examples:
  schemasync stats
  schemasync stats --side target --json
  schemasync stats --file source.json --toon`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsSide, "side", "source", "Which project to inspect (source, target)")
	statsCmd.Flags().StringVarP(&statsFile, "file", "f", "", "Read an exported schema instead of fetching")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	statsCmd.Flags().BoolVar(&statsToon, "toon", false, "Output in LLM-friendly toon format")
}

type schemaStats struct {
	Environment  string         `json:"environment,omitempty"`
	Models       int            `json:"models"`
	Components   int            `json:"components"`
	Enumerations int            `json:"enumerations"`
	Fields       int            `json:"fields"`
	SystemFields int            `json:"system_fields"`
	ByKind       map[string]int `json:"by_kind"`
	Unclassified []string       `json:"unclassified,omitempty"`
	Largest      []entityStat   `json:"largest"`
}

type entityStat struct {
	APIID  string `json:"api_id"`
	Kind   string `json:"kind"`
	Fields int    `json:"fields"`
}

func collectStats(s *models.Snapshot) *schemaStats {
	stats := &schemaStats{
		Environment:  s.Environment.Name,
		Models:       len(s.Models),
		Components:   len(s.Components),
		Enumerations: len(s.Enumerations),
		ByKind:       make(map[string]int),
	}

	count := func(kind string, entities []models.Entity) {
		for i := range entities {
			e := &entities[i]
			custom := 0
			for j := range e.Fields {
				f := &e.Fields[j]
				stats.Fields++
				if f.IsSystem {
					stats.SystemFields++
					continue
				}
				custom++
				if f.Shape == nil {
					stats.Unclassified = append(stats.Unclassified, e.APIID+"."+f.APIID)
					continue
				}
				stats.ByKind[f.Kind().String()]++
			}
			stats.Largest = append(stats.Largest, entityStat{APIID: e.APIID, Kind: kind, Fields: custom})
		}
	}
	count("model", s.Models)
	count("component", s.Components)

	sort.SliceStable(stats.Largest, func(i, j int) bool {
		return stats.Largest[i].Fields > stats.Largest[j].Fields
	})
	if len(stats.Largest) > 10 {
		stats.Largest = stats.Largest[:10]
	}

	return stats
}

func runStats(cmd *cobra.Command, args []string) error {
	var s *models.Snapshot
	if statsFile != "" {
		snap, err := artifacts.ReadSnapshot(statsFile)
		if err != nil {
			return err
		}
		s = snap
	} else {
		side, err := config.ParseSide(statsSide)
		if err != nil {
			return err
		}
		w, err := fetchSchema(commandContext(cmd), side)
		if err != nil {
			return err
		}
		s = models.FromWire(w)
	}

	stats := collectStats(s)

	// Output JSON if requested
	if statsJSON {
		output, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	// Output Toon if requested
	if statsToon {
		output, err := gotoon.Encode(stats)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	fmt.Println("Schema Statistics")
	fmt.Println("━━━━━━━━━━━━━━━━━")
	fmt.Println()

	if stats.Environment != "" {
		fmt.Printf("Environment:  %s\n", stats.Environment)
	}
	fmt.Printf("Models:       %d\n", stats.Models)
	fmt.Printf("Components:   %d\n", stats.Components)
	fmt.Printf("Enumerations: %d\n", stats.Enumerations)
	fmt.Printf("Fields:       %d (%d system)\n", stats.Fields, stats.SystemFields)
	fmt.Println()

	custom := stats.Fields - stats.SystemFields
	if custom > 0 {
		fmt.Println("By Kind:")
		for _, kind := range models.Kinds() {
			if count, ok := stats.ByKind[kind.String()]; ok {
				percentage := float64(count) / float64(custom) * 100
				fmt.Printf("  %-16s %4d  (%.1f%%)\n", kind, count, percentage)
			}
		}
		fmt.Println()
	}

	if len(stats.Unclassified) > 0 {
		fmt.Printf("Unclassified (%d):\n", len(stats.Unclassified))
		for _, name := range stats.Unclassified {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println()
	}

	if len(stats.Largest) > 0 {
		fmt.Println("Largest:")
		for _, es := range stats.Largest {
			fmt.Printf("  %-30s %-10s %3d\n", es.APIID, es.Kind, es.Fields)
		}
	}

	return nil
}
