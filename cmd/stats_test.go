package cmd

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/pders01/schemasync/internal/artifacts"
	"github.com/pders01/schemasync/internal/models"
	"github.com/pders01/schemasync/internal/testutil"
)

func TestCollectStats(t *testing.T) {
	snap := testutil.NewSchema().
		Model("Post",
			testutil.System(testutil.Simple("id", "ID")),
			testutil.Simple("title", "STRING"),
			testutil.Simple("body", "RICHTEXT"),
			testutil.Enumerable("mood", "Mood"),
			testutil.Relation("author", "Author", "posts"),
			testutil.Unclassified("odd"),
		).
		Model("Author", testutil.Simple("name", "STRING")).
		Component("Seo", testutil.Simple("title", "STRING"), testutil.ComponentRef("image", "Image")).
		Enumeration("Mood", "happy").
		Build()

	stats := collectStats(snap)

	if stats.Models != 2 || stats.Components != 1 || stats.Enumerations != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", stats.Models, stats.Components, stats.Enumerations)
	}
	if stats.Fields != 9 || stats.SystemFields != 1 {
		t.Errorf("fields = %d (%d system), want 9 (1 system)", stats.Fields, stats.SystemFields)
	}

	wantKinds := map[string]int{
		models.KindSimple.String():     4,
		models.KindEnumerable.String(): 1,
		models.KindRelational.String(): 1,
		models.KindComponent.String():  1,
	}
	for kind, want := range wantKinds {
		if got := stats.ByKind[kind]; got != want {
			t.Errorf("ByKind[%s] = %d, want %d", kind, got, want)
		}
	}

	if len(stats.Unclassified) != 1 || stats.Unclassified[0] != "Post.odd" {
		t.Errorf("Unclassified = %v, want [Post.odd]", stats.Unclassified)
	}
	if len(stats.Largest) == 0 || stats.Largest[0].APIID != "Post" || stats.Largest[0].Fields != 5 {
		t.Errorf("Largest = %+v, want Post first with 5 fields", stats.Largest)
	}
}

func TestStatsFromProject(t *testing.T) {
	setupProjects(t)

	for _, format := range []struct{ json, toon bool }{{false, false}, {true, false}, {false, true}} {
		statsJSON, statsToon = format.json, format.toon
		if err := runStats(nil, []string{}); err != nil {
			t.Fatalf("stats command failed (json=%v toon=%v): %v", format.json, format.toon, err)
		}
	}
}

func TestStatsFromFile(t *testing.T) {
	_, ws := setupProjects(t)
	statsFile = ws.CreateJSON("source.json", testutil.ArticleWire())

	if err := runStats(nil, []string{}); err != nil {
		t.Fatalf("stats command failed: %v", err)
	}

	statsFile = ws.File("missing.json")
	if err := runStats(nil, []string{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStatsInvalidSide(t *testing.T) {
	setupProjects(t)
	statsSide = "both"

	if err := runStats(nil, []string{}); err == nil {
		t.Error("expected error for invalid side")
	}
}

func TestExport(t *testing.T) {
	_, ws := setupProjects(t)

	tests := []struct {
		side    string
		wantEnv string
		models  int
	}{
		{side: "source", wantEnv: "env-source", models: 1},
		{side: "target", wantEnv: "env-target", models: 0},
	}

	for _, tt := range tests {
		t.Run(tt.side, func(t *testing.T) {
			exportSide = tt.side
			exportOut = ws.File(tt.side + ".json")

			if err := runExport(nil, []string{}); err != nil {
				t.Fatalf("export command failed: %v", err)
			}

			w, err := artifacts.ReadWire(exportOut)
			if err != nil {
				t.Fatalf("failed to read export: %v", err)
			}
			if w.Environment.ID != tt.wantEnv || len(w.Models) != tt.models {
				t.Errorf("export = env %s with %d models, want %s with %d", w.Environment.ID, len(w.Models), tt.wantEnv, tt.models)
			}
		})
	}
}

func TestExportToStdout(t *testing.T) {
	setupProjects(t)

	if err := runExport(nil, []string{}); err != nil {
		t.Fatalf("export command failed: %v", err)
	}
}

func TestExportRejectedToken(t *testing.T) {
	setupProjects(t)
	viper.Set("source.token", "wrong")

	if err := runExport(nil, []string{}); err == nil {
		t.Error("expected error for rejected token")
	}
}
