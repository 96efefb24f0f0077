package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "hydrate_entries.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			decoder := NewDecoder[entry](buildOptions(tc)...)

			ctx := Context{
				Kind:  tc.Kind,
				Index: tc.Index,
				Scene: tc.Scene,
			}

			result, err := decoder.Decode(ctx, tc.Input)

			if tc.ExpectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.ExpectErr)
				}
				if !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}

			if !reflect.DeepEqual(tc.Expect, result) {
				t.Fatalf("decoded entry mismatch:\nwant: %#v\n got: %#v", tc.Expect, result)
			}
		})
	}
}

func TestDecoderRejectsNilPayload(t *testing.T) {
	_, err := NewDecoder[entry]().Decode(Context{Kind: "edge", Index: 7}, nil)
	if err == nil || !strings.Contains(err.Error(), "edge[7] is not an object") {
		t.Fatalf("expected nil payload error, got %v", err)
	}
}

func TestDecoderDoesNotMutateInput(t *testing.T) {
	input := map[string]any{"id": "n1"}
	decoder := NewDecoder[entry](WithPreHook[entry](aliasPreHook))
	if _, err := decoder.Decode(Context{Kind: "node"}, input); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := input["guid"]; ok {
		t.Fatalf("pre-hook must operate on a copy, got %#v", input)
	}
}

func TestDecoderUseNumberKeepsLargeIdentifiers(t *testing.T) {
	var seen any
	capture := func(_ Context, payload map[string]any) (map[string]any, error) {
		seen = payload["guid"]
		if n, ok := seen.(json.Number); ok {
			payload["guid"] = n.String()
		}
		return payload, nil
	}
	input := map[string]any{"guid": int64(9007199254740993)}

	got, err := NewDecoder[entry](WithUseNumber[entry](), WithPreHook[entry](capture)).Decode(Context{Kind: "node"}, input)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := seen.(json.Number); !ok {
		t.Fatalf("expected json.Number in hook copy, got %T", seen)
	}
	if got.GUID != "9007199254740993" {
		t.Fatalf("expected exact identifier, got %q", got.GUID)
	}

	if _, err := NewDecoder[entry](WithPreHook[entry](capture)).Decode(Context{Kind: "node"}, input); err == nil {
		t.Fatalf("expected a numeric guid to fail without UseNumber")
	}
	if _, ok := seen.(float64); !ok {
		t.Fatalf("expected float64 without UseNumber, got %T", seen)
	}
}

func TestDecoderReturnsPostHookErrorsUnwrapped(t *testing.T) {
	sentinel := errors.New("rejected")
	decoder := NewDecoder[entry](WithPostHook[entry](func(Context, *entry) error { return sentinel }))
	if _, err := decoder.Decode(Context{Kind: "node"}, map[string]any{"guid": "n1"}); err != sentinel {
		t.Fatalf("expected sentinel, got %v", err)
	}
}

func TestContextLabel(t *testing.T) {
	if got := (Context{Index: 2}).Label(); got != "entry[2]" {
		t.Fatalf("unexpected label %q", got)
	}
}

func buildOptions(tc fixtureCase) []DecoderOption[entry] {
	options := []DecoderOption[entry]{}

	for _, optName := range tc.Options {
		switch optName {
		case "use_number":
			options = append(options, WithUseNumber[entry]())
		}
	}

	for _, hookName := range tc.PreHooks {
		switch hookName {
		case "alias_id":
			options = append(options, WithPreHook[entry](aliasPreHook))
		}
	}

	for _, hookName := range tc.PostHooks {
		switch hookName {
		case "scene_tag":
			options = append(options, WithPostHook[entry](sceneTagPostHook))
		case "require_guid":
			options = append(options, WithPostHook[entry](requireGUIDPostHook))
		}
	}

	return options
}

func aliasPreHook(_ Context, payload map[string]any) (map[string]any, error) {
	if id, ok := payload["id"]; ok {
		delete(payload, "id")
		payload["guid"] = id
	}
	return payload, nil
}

func sceneTagPostHook(ctx Context, out *entry) error {
	if out == nil {
		return errors.New("entry is nil")
	}
	if len(out.Tags) == 0 && ctx.Scene != "" {
		out.Tags = []string{"scene:" + ctx.Scene}
	}
	return nil
}

func requireGUIDPostHook(ctx Context, out *entry) error {
	if out.GUID == "" {
		return fmt.Errorf("%s missing guid", ctx.Label())
	}
	return nil
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name      string         `json:"name"`
	Kind      string         `json:"kind"`
	Index     int            `json:"index"`
	Scene     string         `json:"scene"`
	Input     map[string]any `json:"input"`
	Expect    entry          `json:"expect"`
	ExpectErr string         `json:"expectErr"`
	PreHooks  []string       `json:"preHooks"`
	PostHooks []string       `json:"postHooks"`
	Options   []string       `json:"options"`
}

type entry struct {
	GUID string   `json:"guid"`
	Kind string   `json:"kind,omitempty"`
	Size *float64 `json:"size,omitempty"`
	Tags []string `json:"tags,omitempty"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read hydrate fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal hydrate fixture %q: %v", name, err)
	}
	return fx
}
