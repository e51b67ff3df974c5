package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/schemasync/internal/artifacts"
	"github.com/pders01/schemasync/internal/config"
	"github.com/pders01/schemasync/internal/management"
	"github.com/pders01/schemasync/internal/plan"
)

var (
	syncPlanFile      string
	syncDryRun        bool
	syncYes           bool
	syncSaveArtifacts bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [filter]",
	Short: "Create the missing schema on the target",
	Long: `Plan (or load) the operations for <filter> and submit them to the
target project as a single batch migration, then wait for it to finish.

Without --yes nothing is submitted: the plan is shown and the command stops.
A migration that ends in FAILED exits non-zero and lists every operation
error reported by the API. Nothing is retried or rolled back.

Examples:
  schemasync sync Blog              # Show what would be submitted
  schemasync sync Blog --dry-run    # Show the exact batch payload
  schemasync sync Blog --yes        # Submit the migration
  schemasync sync --plan-file plan.json --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncPlanFile, "plan-file", "", "Submit a plan written by 'plan --out' instead of planning")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Print the batch changes without submitting")
	syncCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "Submit the migration")
	syncCmd.Flags().BoolVar(&syncSaveArtifacts, "save-artifacts", false, "Write schemas, plan and metadata to the artifacts directory")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	filter := ""
	if len(args) > 0 {
		filter = args[0]
	}
	if filter == "" && syncPlanFile == "" {
		return fmt.Errorf("a filter or --plan-file is required")
	}

	var (
		run *planRun
		p   *plan.Plan
	)
	if syncPlanFile != "" {
		loaded, err := artifacts.ReadPlan(syncPlanFile)
		if err != nil {
			return err
		}
		target, err := fetchSchema(ctx, config.SideTarget)
		if err != nil {
			return err
		}
		run = &planRun{filter: filter, target: target}
		p = loaded
	} else {
		built, err := buildPlan(ctx, filter, "", "")
		if err != nil {
			return err
		}
		built.report()
		run = built
		p = built.result.Plan
	}

	if err := p.Encode(os.Stdout, plan.FormatText); err != nil {
		return err
	}
	if p.IsEmpty() {
		return nil
	}

	targetProject, err := config.Target()
	if err != nil {
		return err
	}
	client, err := newClient(targetProject)
	if err != nil {
		return err
	}

	m := client.NewMigration(run.target.Environment.ID)
	if err := plan.Apply(m, p); err != nil {
		return err
	}

	meta := run.metadata(p)
	saveArtifacts := syncSaveArtifacts || config.ShouldSaveArtifacts()

	if syncDryRun {
		changes := m.DryRun()
		output, err := json.MarshalIndent(changes, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println()
		fmt.Println(string(output))

		if saveArtifacts {
			dir, err := run.save(p, meta, changes)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "✓ Saved artifacts to %s\n", dir)
		}
		return nil
	}

	if !syncYes {
		fmt.Println("\nThis is a preview. Use --yes to submit the migration, or --dry-run to see the batch.")
		return nil
	}

	fmt.Printf("\nSubmitting migration %s (%d operation(s))...\n", m.Name(), p.Len())
	result, runErr := m.Run(ctx)
	if result != nil {
		meta.MigrationID = result.ID
		meta.Status = result.Status
	}

	if saveArtifacts {
		dir, err := run.save(p, meta, m.DryRun())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save artifacts: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "✓ Saved artifacts to %s\n", dir)
		}
	}

	if runErr != nil {
		var merr *management.MigrationError
		if errors.As(runErr, &merr) {
			fmt.Printf("✗ Migration %s finished with status %s\n", merr.Result.ID, merr.Result.Status)
			for _, oe := range merr.Result.Errors {
				fmt.Printf("  - %s\n", oe.Message)
			}
		}
		return runErr
	}

	fmt.Printf("✓ Migration %s: %s\n", result.ID, result.Status)
	return nil
}
