package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const legacyYAML = `
schema:
  version: "0.9.0"
scene:
  guid: scene-1
  name: Demo
  nodes:
    - id: n1
      type: task
    - id: 2
  edges:
    - id: e1
      from: n1
      to: 2
`

const catalogYAML = `
migrations:
  - from: "1.0.0"
    to: "1.1.0"
    description: tag nodes with a layer
    steps:
      - kind: add
        path: scene.nodes.*.metadata
        value: {}
      - kind: add
        path: scene.nodes.*.metadata.tags
        value: ["layer-0"]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func baseConfig(input string) Config {
	return Config{Input: input, Validate: true, Engine: "expr", LogLevel: "error"}
}

type output struct {
	Success bool `json:"success"`
	Nodes   []struct {
		GUID     string `json:"guid"`
		NodeType string `json:"node_type"`
		Metadata struct {
			Tags []string `json:"tags"`
		} `json:"metadata"`
	} `json:"nodes"`
	Edges    []json.RawMessage `json:"edges"`
	Metadata struct {
		MigrationPath []string `json:"migration_path"`
	} `json:"metadata"`
}

func TestRunHydratesYAML(t *testing.T) {
	var out, logs bytes.Buffer
	cfg := baseConfig(writeFile(t, "scene.yaml", legacyYAML))

	if err := Run(context.Background(), cfg, nil, &out, &logs); err != nil {
		t.Fatalf("run: %v", err)
	}
	var got output
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if !got.Success || len(got.Nodes) != 2 || len(got.Edges) != 1 {
		t.Fatalf("unexpected output %s", out.String())
	}
	if got.Nodes[1].GUID != "2" || got.Nodes[1].NodeType != "default" {
		t.Fatalf("unexpected second node %+v", got.Nodes[1])
	}
}

func TestRunLoadsCatalogs(t *testing.T) {
	var out bytes.Buffer
	cfg := baseConfig(writeFile(t, "scene.yaml", legacyYAML))
	cfg.Migrations = []string{writeFile(t, "catalog.yaml", catalogYAML)}
	cfg.TargetVersion = "1.1.0"

	if err := Run(context.Background(), cfg, nil, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	var got output
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if strings.Join(got.Metadata.MigrationPath, ",") != "0.9.0->1.0.0,1.0.0->1.1.0" {
		t.Fatalf("unexpected path %v", got.Metadata.MigrationPath)
	}
	if tags := got.Nodes[0].Metadata.Tags; len(tags) != 1 || tags[0] != "layer-0" {
		t.Fatalf("expected catalog step applied, got %v", tags)
	}
}

func TestRunMigrateOnlyFromStdin(t *testing.T) {
	var out bytes.Buffer
	cfg := baseConfig("-")
	cfg.Format = FormatYAML
	cfg.MigrateOnly = true

	if err := Run(context.Background(), cfg, strings.NewReader(legacyYAML), &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), `"node_type": "task"`) || !strings.Contains(out.String(), `"version": "1.0.0"`) {
		t.Fatalf("expected the migrated payload, got %s", out.String())
	}
}

func TestRunDump(t *testing.T) {
	var out bytes.Buffer
	cfg := baseConfig(writeFile(t, "scene.yaml", legacyYAML))
	cfg.Dump = true

	if err := Run(context.Background(), cfg, nil, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "snapshot.HydrationResult") {
		t.Fatalf("expected a spew dump, got %s", out.String())
	}
}

func TestRunReportsFailures(t *testing.T) {
	var out, logs bytes.Buffer
	cfg := baseConfig(writeFile(t, "scene.json", `{"schema":{"version":"0.1.0"},"scene":{}}`))

	err := Run(context.Background(), cfg, nil, &out, &logs)
	if !errors.Is(err, ErrHydrationFailed) {
		t.Fatalf("expected ErrHydrationFailed, got %v", err)
	}
	if !strings.Contains(out.String(), `"success": false`) {
		t.Fatalf("expected the failed result printed, got %s", out.String())
	}
	if !strings.Contains(logs.String(), "snapshot hydration failed") {
		t.Fatalf("expected the failure logged, got %s", logs.String())
	}
}

func TestRunInputErrors(t *testing.T) {
	cases := map[string]Config{
		"missing file": baseConfig(filepath.Join(t.TempDir(), "nope.json")),
		"bad json":     baseConfig(writeFile(t, "bad.json", `{"scene":`)),
		"empty yaml":   baseConfig(writeFile(t, "empty.yaml", "")),
		"unknown engine": func() Config {
			cfg := baseConfig(writeFile(t, "ok.json", `{}`))
			cfg.Engine = "lua"
			return cfg
		}(),
		"bad catalog": func() Config {
			cfg := baseConfig(writeFile(t, "ok.json", `{}`))
			cfg.Migrations = []string{writeFile(t, "catalog.yaml", "migrations: [{from: '', to: x}]")}
			return cfg
		}(),
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			err := Run(context.Background(), cfg, nil, nil, nil)
			if err == nil || errors.Is(err, ErrHydrationFailed) {
				t.Fatalf("expected an input error, got %v", err)
			}
		})
	}
}

func TestRunPrintsSchema(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{Schema: true, Engine: "expr", LogLevel: "error"}

	if err := Run(context.Background(), cfg, nil, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Version string `json:"version"`
		} `json:"info"`
		Components struct {
			Schemas struct {
				PayloadSchema struct {
					Properties struct {
						Version struct {
							Enum []string `json:"enum"`
						} `json:"version"`
					} `json:"properties"`
				} `json:"PayloadSchema"`
			} `json:"schemas"`
		} `json:"components"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	if doc.OpenAPI == "" || doc.Info.Version != "1.0.0" {
		t.Fatalf("unexpected document header %+v", doc)
	}
	if enum := doc.Components.Schemas.PayloadSchema.Properties.Version.Enum; len(enum) != 2 || enum[0] != "0.9.0" || enum[1] != "1.0.0" {
		t.Fatalf("expected registry versions in the schema, got %v", enum)
	}
}
