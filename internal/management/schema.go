package management

import (
	"context"
	"fmt"

	"github.com/pders01/schemasync/internal/models"
)

// Field kinds are tagged both by __typename and by aliased type markers;
// the aliases also keep the differently-typed "type" fields from clashing.
const contentModelQuery = `query ContentModel($projectId: ID!, $environment: String!) {
  viewer {
    project(id: $projectId) {
      environment(name: $environment) {
        id
        name
        endpoint
        contentModel {
          models {
            apiId
            apiIdPlural
            displayName
            description
            isSystem
            fields { ...FieldParts }
          }
          components {
            apiId
            apiIdPlural
            displayName
            description
            fields { ...FieldParts }
          }
          enumerations {
            apiId
            displayName
            description
            isSystem
            values { apiId displayName }
          }
        }
      }
    }
  }
}

fragment FieldParts on IField {
  __typename
  apiId
  displayName
  description
  isSystem
  isList
  visibility
  parent { apiId }
  ... on SimpleField { stype: type isRequired }
  ... on EnumerableField { etype: type isRequired enumeration { apiId } }
  ... on ComponentField { ctype: type isRequired component { apiId } }
  ... on ComponentUnionField { cutype: type components { apiId } }
  ... on RelationalField {
    rtype: type
    isRequired
    relatedModel { apiId }
    relatedField { apiId displayName description isList isRequired visibility }
  }
  ... on UniDirectionalRelationalField { udrtype: type isRequired relatedModel { apiId } }
  ... on UnionField {
    utype: type
    union {
      memberTypes { parent { apiId } }
      field { apiId displayName description isList visibility parent { apiId } }
    }
  }
}`

type contentModelData struct {
	Viewer struct {
		Project *struct {
			Environment *struct {
				ID           string `json:"id"`
				Name         string `json:"name"`
				Endpoint     string `json:"endpoint"`
				ContentModel struct {
					Models       []models.WireEntity      `json:"models"`
					Components   []models.WireEntity      `json:"components"`
					Enumerations []models.WireEnumeration `json:"enumerations"`
				} `json:"contentModel"`
			} `json:"environment"`
		} `json:"project"`
	} `json:"viewer"`
}

// FetchSchema reads the full content model of one project environment,
// system fields included.
func (c *Client) FetchSchema(ctx context.Context, projectID, environment string) (*models.WireSchema, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id cannot be empty")
	}
	if environment == "" {
		environment = "master"
	}

	var data contentModelData
	err := c.do(ctx, contentModelQuery, map[string]any{
		"projectId":   projectID,
		"environment": environment,
	}, &data)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema of project %s: %w", projectID, err)
	}

	if data.Viewer.Project == nil {
		return nil, fmt.Errorf("project %s not found", projectID)
	}
	env := data.Viewer.Project.Environment
	if env == nil {
		return nil, fmt.Errorf("environment %s not found in project %s", environment, projectID)
	}

	c.logger.Debug("schema fetched",
		"project", projectID,
		"environment", env.Name,
		"models", len(env.ContentModel.Models),
		"components", len(env.ContentModel.Components),
		"enumerations", len(env.ContentModel.Enumerations))

	return &models.WireSchema{
		Environment: models.Environment{
			Name:     env.Name,
			ID:       env.ID,
			Endpoint: env.Endpoint,
		},
		Models:       env.ContentModel.Models,
		Components:   env.ContentModel.Components,
		Enumerations: env.ContentModel.Enumerations,
	}, nil
}
