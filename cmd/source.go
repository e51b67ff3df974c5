package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/schemasync/internal/artifacts"
	"github.com/pders01/schemasync/internal/config"
	"github.com/pders01/schemasync/internal/management"
	"github.com/pders01/schemasync/internal/models"
)

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

func newClient(p config.Project) (*management.Client, error) {
	return management.NewClient(p.ManagementURL, p.Token,
		management.WithHTTPClient(&http.Client{Timeout: config.GetTimeout()}),
		management.WithLogger(newLogger()),
		management.WithPollInterval(config.GetPollInterval()),
	)
}

func projectFor(side config.Side) (config.Project, error) {
	if side == config.SideSource {
		return config.Source()
	}
	return config.Target()
}

// fetchSchema downloads the content model of the configured side
func fetchSchema(ctx context.Context, side config.Side) (*models.WireSchema, error) {
	p, err := projectFor(side)
	if err != nil {
		return nil, err
	}

	client, err := newClient(p)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(os.Stderr, "Fetching %s schema (project %s, environment %s)...\n", side, p.ProjectID, p.Environment)
	w, err := client.FetchSchema(ctx, p.ProjectID, p.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s schema: %w", side, err)
	}
	return w, nil
}

// loadSchema reads the side from file when given, else fetches it
func loadSchema(ctx context.Context, side config.Side, file string) (*models.WireSchema, error) {
	if file != "" {
		w, err := artifacts.ReadWire(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s schema: %w", side, err)
		}
		return w, nil
	}
	return fetchSchema(ctx, side)
}

func projectRef(side config.Side) models.ProjectRef {
	p := config.GetProject(side)
	return models.ProjectRef{ProjectID: p.ProjectID, Environment: p.Environment}
}
