package openapi

import (
	"reflect"

	snapshot "github.com/goliatone/go-snapshot"
	"github.com/goliatone/go-snapshot/normalize"
)

// Payload is the snapshot shape accepted by hydration. Every scene field is
// optional and defaulted during hydration.
type Payload struct {
	Schema PayloadSchema `json:"schema"`
	Scene  PayloadScene  `json:"scene"`
}

// PayloadSchema carries the declared schema version.
type PayloadSchema struct {
	Version string `json:"version,omitempty"`
}

// PayloadScene is a raw scene together with its raw collections.
type PayloadScene struct {
	normalize.RawScene
	Nodes    []normalize.RawNode    `json:"nodes,omitempty"`
	Edges    []normalize.RawEdge    `json:"edges,omitempty"`
	Contexts []normalize.RawContext `json:"contexts,omitempty"`
}

// Document returns an OpenAPI document with a single hydrate operation.
func Document(opts ...Option) map[string]any {
	cfg := defaultDocumentConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	g := NewGenerator()
	request := g.Schema(reflect.TypeOf(Payload{}))
	response := g.Schema(reflect.TypeOf(snapshot.HydrationResult{}))
	schemas := g.Components()
	if len(cfg.versions) > 0 {
		restrictVersions(schemas, cfg.versions)
	}

	info := map[string]any{
		"title":   cfg.info.Title,
		"version": cfg.info.Version,
	}
	if cfg.info.Description != "" {
		info["description"] = cfg.info.Description
	}

	requestContent := make(map[string]any, len(cfg.mediaTypes))
	for _, mediaType := range cfg.mediaTypes {
		requestContent[mediaType] = map[string]any{"schema": request}
	}
	operation := map[string]any{
		"operationId": cfg.endpoint.OperationID,
		"requestBody": map[string]any{
			"required": true,
			"content":  requestContent,
		},
		"responses": map[string]any{
			"200": map[string]any{
				"description": "Hydration result; check success and errors",
				"content": map[string]any{
					cfg.mediaTypes[0]: map[string]any{"schema": response},
				},
			},
		},
	}
	if cfg.endpoint.Summary != "" {
		operation["summary"] = cfg.endpoint.Summary
	}

	return map[string]any{
		"openapi": cfg.openAPI,
		"info":    info,
		"paths": map[string]any{
			cfg.endpoint.Path: map[string]any{
				cfg.endpoint.Method: operation,
			},
		},
		"components": map[string]any{
			"schemas": schemas,
		},
	}
}

func restrictVersions(schemas map[string]any, versions []string) {
	component, _ := schemas["PayloadSchema"].(map[string]any)
	properties, _ := component["properties"].(map[string]any)
	version, ok := properties["version"].(map[string]any)
	if !ok {
		return
	}
	enum := make([]any, len(versions))
	for i, v := range versions {
		enum[i] = v
	}
	version["enum"] = enum
}
