package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/pders01/schemasync/internal/models"
)

// ManagementServer is a fake management API. It serves content models per
// project, accepts batch migrations and reports them with FinalStatus.
type ManagementServer struct {
	*httptest.Server

	Token string
	// FinalStatus is what a polled migration ends in. Defaults to SUCCESS.
	FinalStatus string
	// MigrationErrors is returned as the migration's errors when it fails.
	MigrationErrors any

	mu        sync.Mutex
	schemas   map[string]*models.WireSchema
	submitted []SubmittedMigration
	polls     int
}

// SubmittedMigration is one batch received by the fake server
type SubmittedMigration struct {
	EnvironmentID string                       `json:"environmentId"`
	Name          string                       `json:"name"`
	Changes       []map[string]json.RawMessage `json:"changes"`
}

// NewManagementServer starts a fake API accepting token
func NewManagementServer(t *testing.T, token string) *ManagementServer {
	t.Helper()
	s := &ManagementServer{
		Token:       token,
		FinalStatus: "SUCCESS",
		schemas:     make(map[string]*models.WireSchema),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SetSchema registers the content model served for a project
func (s *ManagementServer) SetSchema(projectID string, schema *models.WireSchema) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[projectID] = schema
}

// Submitted returns the migrations received so far
func (s *ManagementServer) Submitted() []SubmittedMigration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SubmittedMigration, len(s.submitted))
	copy(out, s.submitted)
	return out
}

// Polls returns how many status polls were served
func (s *ManagementServer) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

func (s *ManagementServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+s.Token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req struct {
		Query     string                     `json:"query"`
		Variables map[string]json.RawMessage `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case strings.Contains(req.Query, "submitBatchChanges"):
		var sub SubmittedMigration
		if err := json.Unmarshal(req.Variables["data"], &sub); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.submitted = append(s.submitted, sub)
		writeData(w, map[string]any{
			"submitBatchChanges": map[string]any{
				"migration": map[string]any{"id": "migration-1", "status": "QUEUED"},
			},
		})

	case strings.Contains(req.Query, "migration(id"):
		s.polls++
		migration := map[string]any{"id": "migration-1", "status": s.FinalStatus}
		if s.FinalStatus != "SUCCESS" {
			migration["errors"] = s.MigrationErrors
		}
		writeData(w, map[string]any{"viewer": map[string]any{"migration": migration}})

	case strings.Contains(req.Query, "contentModel"):
		var projectID string
		_ = json.Unmarshal(req.Variables["projectId"], &projectID)
		schema, ok := s.schemas[projectID]
		if !ok {
			writeData(w, map[string]any{"viewer": map[string]any{"project": nil}})
			return
		}
		writeData(w, map[string]any{
			"viewer": map[string]any{
				"project": map[string]any{
					"environment": map[string]any{
						"id":       schema.Environment.ID,
						"name":     schema.Environment.Name,
						"endpoint": schema.Environment.Endpoint,
						"contentModel": map[string]any{
							"models":       schema.Models,
							"components":   schema.Components,
							"enumerations": schema.Enumerations,
						},
					},
				},
			},
		})

	default:
		writeData(w, map[string]any{"__typename": "Query"})
	}
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

// ArticleWire is a small content model in wire form: an Article model with
// a title, a Genre category and the system id field.
func ArticleWire() *models.WireSchema {
	return &models.WireSchema{
		Environment: models.Environment{Name: "master", ID: "env-source", Endpoint: "https://example.test/content/source/master"},
		Models: []models.WireEntity{{
			APIID:       "Article",
			APIIDPlural: "Articles",
			DisplayName: "Article",
			Fields: []models.WireField{
				{Typename: "SimpleField", APIID: "id", IsSystem: true, SType: "ID"},
				{Typename: "SimpleField", APIID: "title", DisplayName: "Title", SType: "STRING"},
				{Typename: "EnumerableField", APIID: "category", DisplayName: "Category", EType: "ENUMERATION", Enumeration: &models.WireRef{APIID: "Genre"}},
			},
		}},
		Enumerations: []models.WireEnumeration{{
			APIID:       "Genre",
			DisplayName: "Genre",
			Values: []models.EnumValue{
				{APIID: "news", DisplayName: "News"},
				{APIID: "opinion", DisplayName: "Opinion"},
			},
		}},
	}
}

// EmptyWire is a content model with nothing in it
func EmptyWire(environmentID string) *models.WireSchema {
	return &models.WireSchema{
		Environment: models.Environment{Name: "master", ID: environmentID, Endpoint: "https://example.test/content/" + environmentID},
	}
}
