package artifacts

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pders01/schemasync/internal/models"
	"github.com/pders01/schemasync/internal/plan"
	"github.com/pders01/schemasync/internal/testutil"
)

func TestRunDir(t *testing.T) {
	tmpDir := t.TempDir()
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	dir, err := RunDir(tmpDir, ts)
	if err != nil {
		t.Fatalf("RunDir() error = %v", err)
	}

	want := filepath.Join(tmpDir, "2025-03-14T092653")
	if dir != want {
		t.Errorf("RunDir() = %v, want %v", dir, want)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("run directory was not created: %v", err)
	}

	if _, err := RunDir("", ts); err == nil {
		t.Error("RunDir() expected error for empty base")
	}
}

func TestWriteAndReadWire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", SourceSchemaFile)

	if err := WriteJSON(path, testutil.ArticleWire()); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	w, err := ReadWire(path)
	if err != nil {
		t.Fatalf("ReadWire() error = %v", err)
	}
	if w.Environment.ID != "env-source" {
		t.Errorf("Environment.ID = %v, want env-source", w.Environment.ID)
	}

	snap, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}
	article, ok := snap.Model("Article")
	if !ok {
		t.Fatal("Article model missing")
	}
	category, ok := article.Field("category")
	if !ok || category.Kind() != models.KindEnumerable {
		t.Errorf("category = %+v, want enumerable field", category)
	}
}

func TestReadErrors(t *testing.T) {
	ws := testutil.NewTempWorkspace(t)
	defer ws.Cleanup()

	tests := []struct {
		name    string
		content string
		create  bool
	}{
		{name: "missing.json", create: false},
		{name: "empty.json", content: "", create: true},
		{name: "broken.json", content: "{not json", create: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.create {
				ws.CreateFile(tt.name, tt.content)
			}
			if _, err := ReadWire(ws.File(tt.name)); err == nil {
				t.Error("ReadWire() expected error")
			}
		})
	}
}

func TestWriteAndReadPlan(t *testing.T) {
	dir := t.TempDir()

	p := plan.New()
	p.Append(plan.EnumerationInput{APIID: "Genre", DisplayName: "Genre", Values: []models.EnumValue{{APIID: "news", DisplayName: "News"}}})
	p.Append(plan.ModelInput{APIID: "Article", APIIDPlural: "Articles", DisplayName: "Article"})
	p.Append(plan.EnumerableFieldInput{APIID: "category", ParentAPIID: "Article", EnumerationAPIID: "Genre", DisplayName: "Category"})

	path := Path(dir, PlanFile)
	if err := WriteJSON(path, p); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	loaded, err := ReadPlan(path)
	if err != nil {
		t.Fatalf("ReadPlan() error = %v", err)
	}
	if loaded.Len() != 3 {
		t.Fatalf("loaded %d operations, want 3", loaded.Len())
	}
	field, ok := loaded.Operations()[2].Data.(plan.EnumerableFieldInput)
	if !ok || field.EnumerationAPIID != "Genre" {
		t.Errorf("third operation = %+v", loaded.Operations()[2])
	}
}

func TestReadPlanRejectsInvalid(t *testing.T) {
	ws := testutil.NewTempWorkspace(t)
	defer ws.Cleanup()

	dup := `[
  {"operationName": "createModel", "data": {"apiId": "Article", "apiIdPlural": "Articles", "displayName": "Article"}},
  {"operationName": "createModel", "data": {"apiId": "Article", "apiIdPlural": "Articles", "displayName": "Article"}}
]`
	if _, err := ReadPlan(ws.CreateFile("dup.json", dup)); err == nil {
		t.Error("ReadPlan() expected error for duplicate creation")
	}

	unknown := `[{"operationName": "deleteModel", "data": {"apiId": "Article"}}]`
	if _, err := ReadPlan(ws.CreateFile("unknown.json", unknown)); err == nil {
		t.Error("ReadPlan() expected error for unknown operation")
	}
}

func TestMetadata(t *testing.T) {
	dir := t.TempDir()
	meta := &models.RunMetadata{
		CreatedAt:   time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Filter:      "Blog",
		Source:      models.ProjectRef{ProjectID: "src", Environment: "master"},
		Target:      models.ProjectRef{ProjectID: "dst", Environment: "master"},
		Roots:       []string{"BlogPost"},
		Operations:  4,
		MigrationID: "migration-1",
		Status:      "SUCCESS",
	}

	if err := WriteMetadata(dir, meta); err != nil {
		t.Fatalf("WriteMetadata() error = %v", err)
	}

	got, err := ReadMetadata(dir)
	if err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}
	if !got.CreatedAt.Equal(meta.CreatedAt) || got.Filter != "Blog" || got.Operations != 4 || got.Status != "SUCCESS" {
		t.Errorf("ReadMetadata() = %+v, want %+v", got, meta)
	}
	if got.Source.ProjectID != "src" || got.Target.ProjectID != "dst" {
		t.Errorf("projects = %+v / %+v", got.Source, got.Target)
	}
}
