package authapi

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// OpenAPI renders the OpenAPI 3 document for the auth API. Component schemas
// are reflected from the wire types, so the document follows the code.
func OpenAPI(title, version string) ([]byte, error) {
	r := jsonschema.Reflector{DoNotReference: true}
	schema := func(v any) *jsonschema.Schema {
		s := r.Reflect(v)
		s.Version = ""
		s.ID = ""
		return s
	}

	problem := map[string]any{
		"description": "Problem",
		"content": map[string]any{
			"application/json": map[string]any{"schema": ref("Problem")},
		},
	}

	doc := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   title,
			"version": version,
		},
		"paths": map[string]any{
			"/api/v1/authenticate": map[string]any{
				"post": map[string]any{
					"summary":     "Exchange email and password for a JWT",
					"operationId": "authenticate",
					"security":    []any{},
					"requestBody": map[string]any{
						"required": true,
						"content": map[string]any{
							"application/json": map[string]any{"schema": ref("AuthenticateRequest")},
						},
					},
					"responses": map[string]any{
						"200": map[string]any{
							"description": "Token issued",
							"content": map[string]any{
								"application/json": map[string]any{"schema": ref("AuthenticateResponse")},
							},
						},
						"400": problem,
					},
				},
			},
			"/api/v1/users": map[string]any{
				"get": map[string]any{
					"summary":     "List all users",
					"operationId": "listUsers",
					"responses": map[string]any{
						"200": map[string]any{
							"description": "Users",
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": map[string]any{"type": "array", "items": ref("User")},
								},
							},
						},
						"401": problem,
					},
				},
			},
		},
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"bearerAuth": map[string]any{
					"type":         "http",
					"scheme":       "bearer",
					"bearerFormat": "JWT",
				},
			},
			"schemas": map[string]any{
				"AuthenticateRequest":  schema(&authenticateRequest{}),
				"AuthenticateResponse": schema(&authenticateResponse{}),
				"User":                 schema(&userResponse{}),
				"Problem":              schema(&Problem{}),
			},
		},
		"security": []any{map[string]any{"bearerAuth": []any{}}},
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("authapi: marshal openapi: %w", err)
	}
	return out, nil
}

func ref(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}
