package cmd

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/pders01/schemasync/internal/artifacts"
	"github.com/pders01/schemasync/internal/plan"
	"github.com/pders01/schemasync/internal/testutil"
)

func TestPlanFromProjects(t *testing.T) {
	_, ws := setupProjects(t)
	planOut = ws.File("plan.json")

	if err := runPlan(nil, []string{"Article"}); err != nil {
		t.Fatalf("plan command failed: %v", err)
	}

	p, err := artifacts.ReadPlan(planOut)
	if err != nil {
		t.Fatalf("failed to read written plan: %v", err)
	}

	want := []plan.Name{plan.CreateEnumeration, plan.CreateModel, plan.CreateSimpleField, plan.CreateEnumerableField}
	ops := p.Operations()
	if len(ops) != len(want) {
		t.Fatalf("plan has %d operations, want %d", len(ops), len(want))
	}
	for i, name := range want {
		if ops[i].Name != name {
			t.Errorf("operation %d = %s, want %s", i, ops[i].Name, name)
		}
	}

	if dirs := runDirs(t, ws); len(dirs) != 0 {
		t.Errorf("artifacts written without --save-artifacts: %v", dirs)
	}
}

func TestPlanFromFiles(t *testing.T) {
	_, ws := setupProjects(t)
	planSourceFile = ws.CreateJSON("source.json", testutil.ArticleWire())
	planTargetFile = ws.CreateJSON("target.json", testutil.EmptyWire("env-target"))
	planOut = ws.File("plan.json")
	planFormat = "yaml"

	// Files must win over the configured projects.
	viper.Set("management.url", "http://127.0.0.1:1/unreachable")

	if err := runPlan(nil, []string{"Article"}); err != nil {
		t.Fatalf("plan command failed: %v", err)
	}
	if !strings.Contains(ws.ReadFile("plan.json"), `"operationName": "createEnumeration"`) {
		t.Errorf("unexpected plan file:\n%s", ws.ReadFile("plan.json"))
	}
}

func TestPlanSaveArtifactsAndReplan(t *testing.T) {
	_, ws := setupProjects(t)
	planSaveArtifacts = true

	if err := runPlan(nil, []string{"Article"}); err != nil {
		t.Fatalf("plan command failed: %v", err)
	}

	dirs := runDirs(t, ws)
	if len(dirs) != 1 {
		t.Fatalf("expected one run directory, got %v", dirs)
	}
	run := dirs[0]
	for _, name := range []string{
		artifacts.SourceSchemaFile,
		artifacts.TargetSchemaFile,
		artifacts.ProjectedSchemaFile,
		artifacts.PlanFile,
		artifacts.MetadataFile,
	} {
		if _, err := os.Stat(artifacts.Path(run, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	meta, err := artifacts.ReadMetadata(run)
	if err != nil {
		t.Fatalf("failed to read metadata: %v", err)
	}
	if meta.Filter != "Article" || meta.Operations != 4 || meta.Source.ProjectID != "src" || meta.Target.ProjectID != "dst" {
		t.Errorf("metadata = %+v", meta)
	}

	// Planning against the projected target must find nothing left to do.
	resetFlags()
	planSourceFile = artifacts.Path(run, artifacts.SourceSchemaFile)
	planTargetFile = artifacts.Path(run, artifacts.ProjectedSchemaFile)
	planOut = ws.File("replan.json")

	if err := runPlan(nil, []string{"Article"}); err != nil {
		t.Fatalf("re-plan failed: %v", err)
	}
	p, err := artifacts.ReadPlan(planOut)
	if err != nil {
		t.Fatalf("failed to read re-plan: %v", err)
	}
	if !p.IsEmpty() {
		t.Errorf("re-plan against projected target has %d operations", p.Len())
	}
}

func TestPlanEmptyFilter(t *testing.T) {
	_, ws := setupProjects(t)
	planOut = ws.File("plan.json")

	if err := runPlan(nil, []string{}); err != nil {
		t.Fatalf("plan command failed: %v", err)
	}
	if got := strings.TrimSpace(ws.ReadFile("plan.json")); got != "[]" {
		t.Errorf("plan file = %s, want []", got)
	}
}

func TestPlanInvalidFormat(t *testing.T) {
	setupProjects(t)
	planFormat = "xml"

	if err := runPlan(nil, []string{"Article"}); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestPlanMissingConfig(t *testing.T) {
	setupProjects(t)
	viper.Set("target.project_id", "")

	err := runPlan(nil, []string{"Article"})
	if err == nil || !strings.Contains(err.Error(), "target.project_id") {
		t.Errorf("plan error = %v, want it to name target.project_id", err)
	}
}
