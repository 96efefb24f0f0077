package openapi

import "strings"

// Info is the info block of the generated document.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Endpoint is the HTTP operation that accepts a snapshot and answers with a
// hydration result.
type Endpoint struct {
	Path        string
	Method      string
	OperationID string
	Summary     string
}

type documentConfig struct {
	openAPI    string
	info       Info
	endpoint   Endpoint
	mediaTypes []string
	versions   []string
}

func defaultDocumentConfig() documentConfig {
	return documentConfig{
		openAPI: "3.1.0",
		info:    Info{Title: "Snapshot Hydration", Version: "1.0.0"},
		endpoint: Endpoint{
			Path:        "/snapshots/hydrate",
			Method:      "post",
			OperationID: "hydrateSnapshot",
			Summary:     "Migrate and hydrate a scene snapshot",
		},
		mediaTypes: []string{"application/json"},
	}
}

// Option configures the generated document.
type Option func(*documentConfig)

// WithOpenAPIVersion overrides the OpenAPI version string (default 3.1.0).
func WithOpenAPIVersion(version string) Option {
	return func(cfg *documentConfig) {
		if version != "" {
			cfg.openAPI = version
		}
	}
}

// WithInfo sets the info block. Empty fields keep their defaults.
func WithInfo(info Info) Option {
	return func(cfg *documentConfig) {
		cfg.info.Title = pick(info.Title, cfg.info.Title)
		cfg.info.Version = pick(info.Version, cfg.info.Version)
		cfg.info.Description = pick(info.Description, cfg.info.Description)
	}
}

// WithEndpoint sets the hydrate operation. Empty fields keep their defaults.
func WithEndpoint(endpoint Endpoint) Option {
	return func(cfg *documentConfig) {
		cfg.endpoint.Path = pick(endpoint.Path, cfg.endpoint.Path)
		cfg.endpoint.Method = strings.ToLower(pick(endpoint.Method, cfg.endpoint.Method))
		cfg.endpoint.OperationID = pick(endpoint.OperationID, cfg.endpoint.OperationID)
		cfg.endpoint.Summary = pick(endpoint.Summary, cfg.endpoint.Summary)
	}
}

// WithMediaTypes lists the media types the endpoint accepts. Responses use
// the first one.
func WithMediaTypes(types ...string) Option {
	return func(cfg *documentConfig) {
		var kept []string
		for _, t := range types {
			if t = strings.TrimSpace(t); t != "" {
				kept = append(kept, t)
			}
		}
		if len(kept) > 0 {
			cfg.mediaTypes = kept
		}
	}
}

// WithSchemaVersions restricts schema.version in the request body to the
// given versions, usually migration.Registry.Versions.
func WithSchemaVersions(versions ...string) Option {
	return func(cfg *documentConfig) {
		cfg.versions = append([]string(nil), versions...)
	}
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
