package management

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pders01/schemasync/internal/plan"
)

// Migration status values reported by the API
const (
	StatusQueued  = "QUEUED"
	StatusRunning = "RUNNING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// ErrMigrationFailed is wrapped by *MigrationError
var ErrMigrationFailed = errors.New("migration failed")

// Change is one queued batch change: {"<operationName>": payload}
type Change map[plan.Name]plan.Payload

// OperationError is one per-operation failure reported for a migration
type OperationError struct {
	Message string `json:"message"`
}

// MigrationResult is the final state of a submitted migration
type MigrationResult struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Status string           `json:"status"`
	Errors []OperationError `json:"errors,omitempty"`
}

// Succeeded reports whether the migration committed
func (r *MigrationResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// MigrationError carries the per-operation errors of a failed migration
type MigrationError struct {
	Result *MigrationResult
}

func (e *MigrationError) Error() string {
	msgs := make([]string, len(e.Result.Errors))
	for i, oe := range e.Result.Errors {
		msgs[i] = oe.Message
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("migration %s: status %s", e.Result.ID, e.Result.Status)
	}
	return fmt.Sprintf("migration %s: status %s: %s", e.Result.ID, e.Result.Status, strings.Join(msgs, "; "))
}

func (e *MigrationError) Unwrap() error {
	return ErrMigrationFailed
}

// Migration queues creation operations and submits them as one batch. It
// implements plan.Mutator.
type Migration struct {
	client        *Client
	environmentID string
	name          string
	changes       []Change
}

// NewMigration starts an empty batch for the given environment
func (c *Client) NewMigration(environmentID string) *Migration {
	return &Migration{
		client:        c,
		environmentID: environmentID,
		name:          "schemasync-" + uuid.NewString(),
	}
}

// Name returns the migration name sent to the API
func (m *Migration) Name() string {
	return m.name
}

func (m *Migration) queue(p plan.Payload) {
	m.changes = append(m.changes, Change{p.OperationName(): p})
}

func (m *Migration) CreateModel(in plan.ModelInput)             { m.queue(in) }
func (m *Migration) CreateComponent(in plan.ComponentInput)     { m.queue(in) }
func (m *Migration) CreateEnumeration(in plan.EnumerationInput) { m.queue(in) }
func (m *Migration) CreateSimpleField(in plan.SimpleFieldInput) { m.queue(in) }
func (m *Migration) CreateEnumerableField(in plan.EnumerableFieldInput) {
	m.queue(in)
}
func (m *Migration) CreateComponentField(in plan.ComponentFieldInput) {
	m.queue(in)
}
func (m *Migration) CreateComponentUnionField(in plan.ComponentUnionFieldInput) {
	m.queue(in)
}
func (m *Migration) CreateRelationalField(in plan.RelationalFieldInput) {
	m.queue(in)
}
func (m *Migration) CreateUnionField(in plan.UnionFieldInput) { m.queue(in) }

// DryRun returns the queued changes without submitting them
func (m *Migration) DryRun() []Change {
	out := make([]Change, len(m.changes))
	copy(out, m.changes)
	return out
}

const submitMutation = `mutation Submit($data: BatchMigrationInput!) {
  submitBatchChanges(data: $data) {
    migration { id status }
  }
}`

const migrationQuery = `query Migration($id: ID!) {
  viewer {
    migration(id: $id) { id status errors }
  }
}`

type migrationState struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Errors json.RawMessage `json:"errors"`
}

// Run submits the queued changes as one batch and waits until the API
// reports SUCCESS or FAILED. A FAILED migration returns the result together
// with a *MigrationError. Nothing is retried or rolled back here.
func (m *Migration) Run(ctx context.Context) (*MigrationResult, error) {
	if len(m.changes) == 0 {
		m.client.logger.Info("no changes queued, nothing to submit")
		return &MigrationResult{Name: m.name, Status: StatusSuccess}, nil
	}
	if m.environmentID == "" {
		return nil, fmt.Errorf("environment id is required to submit a migration")
	}

	var submitted struct {
		SubmitBatchChanges struct {
			Migration migrationState `json:"migration"`
		} `json:"submitBatchChanges"`
	}
	err := m.client.do(ctx, submitMutation, map[string]any{
		"data": map[string]any{
			"environmentId": m.environmentID,
			"name":          m.name,
			"changes":       m.changes,
		},
	}, &submitted)
	if err != nil {
		return nil, fmt.Errorf("failed to submit migration: %w", err)
	}

	state := submitted.SubmitBatchChanges.Migration
	m.client.logger.Info("migration submitted", "id", state.ID, "name", m.name, "changes", len(m.changes))

	ticker := time.NewTicker(m.client.pollInterval)
	defer ticker.Stop()

	for !isFinal(state.Status) {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for migration %s: %w", state.ID, ctx.Err())
		case <-ticker.C:
		}

		var polled struct {
			Viewer struct {
				Migration *migrationState `json:"migration"`
			} `json:"viewer"`
		}
		if err := m.client.do(ctx, migrationQuery, map[string]any{"id": state.ID}, &polled); err != nil {
			return nil, fmt.Errorf("failed to poll migration %s: %w", state.ID, err)
		}
		if polled.Viewer.Migration == nil {
			return nil, fmt.Errorf("migration %s not found", state.ID)
		}
		state = *polled.Viewer.Migration
		m.client.logger.Debug("migration status", "id", state.ID, "status", state.Status)
	}

	result := &MigrationResult{
		ID:     state.ID,
		Name:   m.name,
		Status: state.Status,
		Errors: parseOperationErrors(state.Errors),
	}
	if !result.Succeeded() {
		return result, &MigrationError{Result: result}
	}
	return result, nil
}

func isFinal(status string) bool {
	return status == StatusSuccess || status == StatusFailed
}

// parseOperationErrors accepts the shapes the API has used for migration
// errors: a plain string, a list of strings, or a list of {message} objects.
func parseOperationErrors(raw json.RawMessage) []OperationError {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil
		}
		// Some versions send the error list JSON-encoded inside the string.
		if strings.HasPrefix(strings.TrimSpace(single), "[") && json.Valid([]byte(single)) {
			return parseOperationErrors(json.RawMessage(single))
		}
		return []OperationError{{Message: single}}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []OperationError{{Message: string(raw)}}
	}

	out := make([]OperationError, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, OperationError{Message: s})
			continue
		}
		var oe OperationError
		if err := json.Unmarshal(item, &oe); err == nil && oe.Message != "" {
			out = append(out, oe)
			continue
		}
		out = append(out, OperationError{Message: string(item)})
	}
	return out
}
