package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/schemasync/internal/artifacts"
	"github.com/pders01/schemasync/internal/config"
	"github.com/pders01/schemasync/internal/management"
	"github.com/pders01/schemasync/internal/models"
	"github.com/pders01/schemasync/internal/plan"
	"github.com/pders01/schemasync/internal/planner"
)

var (
	planSourceFile    string
	planTargetFile    string
	planFormat        string
	planOut           string
	planSaveArtifacts bool
)

var planCmd = &cobra.Command{
	Use:   "plan <filter>",
	Short: "Show what sync would create on the target",
	Long: `Compute the operations that bring the target up to date with every
source model and component whose display name contains <filter>.

The filter is a case-sensitive substring. Dependencies (enumerations,
components, related models) are included whether or not they match.
Nothing is sent to the target.

Examples:
  schemasync plan Blog
  schemasync plan Blog --format yaml
  schemasync plan Blog --source-file source.json --target-file target.json
  schemasync plan Blog --out plan.json && schemasync sync --plan-file plan.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planSourceFile, "source-file", "", "Use an exported source schema instead of fetching")
	planCmd.Flags().StringVar(&planTargetFile, "target-file", "", "Use an exported target schema instead of fetching")
	planCmd.Flags().StringVar(&planFormat, "format", "text", "Output format (text, json, yaml, toon)")
	planCmd.Flags().StringVarP(&planOut, "out", "o", "", "Also write the plan as JSON to this file")
	planCmd.Flags().BoolVar(&planSaveArtifacts, "save-artifacts", false, "Write schemas, plan and metadata to the artifacts directory")
}

// planRun is everything one planning pass saw and produced
type planRun struct {
	filter string
	source *models.WireSchema
	target *models.WireSchema
	result *planner.Result
}

func buildPlan(ctx context.Context, filter, sourceFile, targetFile string) (*planRun, error) {
	source, err := loadSchema(ctx, config.SideSource, sourceFile)
	if err != nil {
		return nil, err
	}
	target, err := loadSchema(ctx, config.SideTarget, targetFile)
	if err != nil {
		return nil, err
	}

	result, err := planner.Build(models.FromWire(source), models.FromWire(target), filter,
		planner.WithLogger(newLogger()))
	if err != nil {
		return nil, err
	}

	return &planRun{filter: filter, source: source, target: target, result: result}, nil
}

// report prints roots and every skipped field
func (r *planRun) report() {
	if len(r.result.Roots) == 0 {
		fmt.Fprintf(os.Stderr, "Warning: no model or component display name contains %q\n", r.filter)
	} else {
		fmt.Fprintf(os.Stderr, "Selected %d root(s): %v\n", len(r.result.Roots), r.result.Roots)
	}
	for _, s := range r.result.Skipped {
		fmt.Fprintf(os.Stderr, "Warning: skipped %s\n", s)
	}
}

func (r *planRun) metadata(p *plan.Plan) *models.RunMetadata {
	meta := &models.RunMetadata{
		CreatedAt:  time.Now().UTC(),
		Filter:     r.filter,
		Source:     projectRef(config.SideSource),
		Target:     projectRef(config.SideTarget),
		Operations: p.Len(),
	}
	if r.result != nil {
		meta.Roots = r.result.Roots
		meta.Skipped = len(r.result.Skipped)
		meta.Conflicts = len(r.result.Conflicts)
	}
	return meta
}

// save writes the run's artifacts into a fresh run directory
func (r *planRun) save(p *plan.Plan, meta *models.RunMetadata, dryRun []management.Change) (string, error) {
	dir, err := artifacts.RunDir(config.GetArtifactsDir(), meta.CreatedAt)
	if err != nil {
		return "", err
	}

	files := map[string]any{artifacts.PlanFile: p}
	if r.source != nil {
		files[artifacts.SourceSchemaFile] = r.source
	}
	if r.target != nil {
		files[artifacts.TargetSchemaFile] = r.target
	}
	if r.result != nil && r.result.Projected != nil {
		files[artifacts.ProjectedSchemaFile] = models.ToWire(r.result.Projected)
	}
	if dryRun != nil {
		files[artifacts.DryRunFile] = dryRun
	}

	for name, v := range files {
		if err := artifacts.WriteJSON(artifacts.Path(dir, name), v); err != nil {
			return "", err
		}
	}
	if err := artifacts.WriteMetadata(dir, meta); err != nil {
		return "", err
	}
	return dir, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	format, err := plan.ParseFormat(planFormat)
	if err != nil {
		return err
	}

	filter := ""
	if len(args) > 0 {
		filter = args[0]
	}

	run, err := buildPlan(commandContext(cmd), filter, planSourceFile, planTargetFile)
	if err != nil {
		return err
	}
	run.report()

	p := run.result.Plan
	if err := p.Encode(os.Stdout, format); err != nil {
		return err
	}

	if planOut != "" {
		if err := artifacts.WriteJSON(planOut, p); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote plan to %s\n", planOut)
	}

	if planSaveArtifacts || config.ShouldSaveArtifacts() {
		dir, err := run.save(p, run.metadata(p), nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Saved artifacts to %s\n", dir)
	}

	return nil
}
