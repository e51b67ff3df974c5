package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// TempWorkspace is a scratch directory for command tests
type TempWorkspace struct {
	Path string
	T    *testing.T
}

// NewTempWorkspace creates a new temporary workspace
func NewTempWorkspace(t *testing.T) *TempWorkspace {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "schemasync-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	return &TempWorkspace{
		Path: tmpDir,
		T:    t,
	}
}

// Cleanup removes the workspace
func (w *TempWorkspace) Cleanup() {
	w.T.Helper()
	if err := os.RemoveAll(w.Path); err != nil {
		w.T.Errorf("failed to cleanup temp workspace: %v", err)
	}
}

// File returns the absolute path of name inside the workspace
func (w *TempWorkspace) File(name string) string {
	return filepath.Join(w.Path, name)
}

// CreateFile creates a file in the workspace and returns its path
func (w *TempWorkspace) CreateFile(name, content string) string {
	w.T.Helper()
	path := w.File(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		w.T.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		w.T.Fatalf("failed to create file: %v", err)
	}
	return path
}

// CreateJSON marshals v into a file in the workspace and returns its path
func (w *TempWorkspace) CreateJSON(name string, v any) string {
	w.T.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		w.T.Fatalf("failed to marshal %s: %v", name, err)
	}
	return w.CreateFile(name, string(data))
}

// FileExists checks if a file exists in the workspace
func (w *TempWorkspace) FileExists(name string) bool {
	_, err := os.Stat(w.File(name))
	return err == nil
}

// ReadFile returns the content of a workspace file
func (w *TempWorkspace) ReadFile(name string) string {
	w.T.Helper()
	data, err := os.ReadFile(w.File(name))
	if err != nil {
		w.T.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}
