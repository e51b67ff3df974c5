package cmd

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"github.com/pders01/schemasync/internal/config"
	"github.com/pders01/schemasync/internal/testutil"
)

const testToken = "secret"

// setupProjects points the source side at project "src" and the target side
// at project "dst" on a fake management API. The source holds the Article
// content model, the target is empty.
func setupProjects(t *testing.T) (*testutil.ManagementServer, *testutil.TempWorkspace) {
	t.Helper()

	srv := testutil.NewManagementServer(t, testToken)
	srv.SetSchema("src", testutil.ArticleWire())
	srv.SetSchema("dst", testutil.EmptyWire("env-target"))

	ws := testutil.NewTempWorkspace(t)
	t.Cleanup(ws.Cleanup)

	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults()
	viper.Set("management.url", srv.URL)
	viper.Set("management.poll_interval", "1ms")
	viper.Set("source.token", testToken)
	viper.Set("source.project_id", "src")
	viper.Set("target.token", testToken)
	viper.Set("target.project_id", "dst")
	viper.Set("artifacts.dir", ws.File("runs"))

	resetFlags()
	t.Cleanup(resetFlags)

	return srv, ws
}

func resetFlags() {
	cfgFile = ""
	verbose = false

	initCheck = false

	exportSide = "source"
	exportOut = ""

	statsSide = "source"
	statsFile = ""
	statsJSON = false
	statsToon = false

	planSourceFile = ""
	planTargetFile = ""
	planFormat = "text"
	planOut = ""
	planSaveArtifacts = false

	syncPlanFile = ""
	syncDryRun = false
	syncYes = false
	syncSaveArtifacts = false
}

// runDirs returns the run directories written under the artifacts dir
func runDirs(t *testing.T, ws *testutil.TempWorkspace) []string {
	t.Helper()
	entries, err := os.ReadDir(ws.File("runs"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("failed to read artifacts dir: %v", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, ws.File("runs/"+e.Name()))
		}
	}
	return dirs
}
