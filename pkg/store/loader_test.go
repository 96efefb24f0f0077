package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	snapshot "github.com/goliatone/go-snapshot"
	"github.com/goliatone/go-snapshot/migration"
	"github.com/goliatone/go-snapshot/pkg/store"
)

func loadFixture(t *testing.T, name string) map[string]any {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("failed to locate fixture directory")
	}
	fixturePath := filepath.Join(filepath.Dir(filename), "..", "..", "testdata", "snapshots", name)
	raw, err := os.ReadFile(fixturePath)
	if err != nil {
		t.Fatalf("failed to read fixture %q: %v", fixturePath, err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to unmarshal fixture %q: %v", fixturePath, err)
	}
	return out
}

func seeded(t *testing.T, name string) (*store.MemoryStore[store.Payload], store.Ref, store.Meta) {
	t.Helper()
	s := store.NewMemoryStore[store.Payload]()
	ref := store.Ref{Tenant: "acme", SceneGUID: "scene-1"}
	meta, err := s.Save(context.Background(), ref, loadFixture(t, name), store.Meta{Version: "0.9.0"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s, ref, meta
}

func TestLoaderHydrate(t *testing.T) {
	s, ref, meta := seeded(t, "legacy_v090.json")
	loader := store.Loader{Store: s, Hydrator: snapshot.New()}

	result, loadedMeta, err := loader.Hydrate(context.Background(), ref, snapshot.DefaultHydrationOptions())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if !result.Success || !result.Metadata.Migrated {
		t.Fatalf("expected migrated success, got %v", result.Errors)
	}
	if loadedMeta.ETag != meta.ETag {
		t.Fatalf("expected stored meta returned")
	}

	_, _, err = loader.Hydrate(context.Background(), store.Ref{SceneGUID: "nope"}, snapshot.DefaultHydrationOptions())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoaderUpgradeSavesMigratedPayload(t *testing.T) {
	s, ref, meta := seeded(t, "legacy_v090.json")
	loader := store.Loader{Store: s, Hydrator: snapshot.New()}

	saved, result, err := loader.Upgrade(context.Background(), ref, store.Meta{ETag: meta.ETag})
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if len(result.Path) != 1 || saved.Version != migration.Version100 || saved.ETag == meta.ETag {
		t.Fatalf("unexpected upgrade outcome: path=%v meta=%+v", result.Path, saved)
	}

	payload, _, _, _ := s.Load(context.Background(), ref)
	if got, _ := snapshot.DeclaredVersion(payload); got != migration.Version100 {
		t.Fatalf("expected stored payload at %s, got %q", migration.Version100, got)
	}

	again, result, err := loader.Upgrade(context.Background(), ref, store.Meta{})
	if err != nil || len(result.Path) != 0 || again.ETag != saved.ETag {
		t.Fatalf("expected a no-op upgrade, got path=%v err=%v", result.Path, err)
	}
}

func TestLoaderUpgradeChecksETag(t *testing.T) {
	s, ref, _ := seeded(t, "legacy_v090.json")
	loader := store.Loader{Store: s, Hydrator: snapshot.New()}

	_, _, err := loader.Upgrade(context.Background(), ref, store.Meta{ETag: "stale"})
	if !errors.Is(err, store.ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch, got %v", err)
	}
}

func TestLoaderUpgradeReportsMigrationFailure(t *testing.T) {
	s, ref, _ := seeded(t, "legacy_v090.json")
	loader := store.Loader{Store: s, Hydrator: snapshot.New(snapshot.WithRegistry(migration.NewRegistry()))}

	_, result, err := loader.Upgrade(context.Background(), ref, store.Meta{})
	var pathErr *migration.PathError
	if !errors.As(err, &pathErr) || result.Success {
		t.Fatalf("expected a path error, got %v", err)
	}
}

func TestLoaderRequiresCollaborators(t *testing.T) {
	if _, _, err := (store.Loader{}).Hydrate(context.Background(), store.Ref{SceneGUID: "s"}, snapshot.HydrationOptions{}); err == nil {
		t.Fatalf("expected an error without a store")
	}
	if _, _, err := (store.Loader{Store: store.NewMemoryStore[store.Payload]()}).Upgrade(context.Background(), store.Ref{SceneGUID: "s"}, store.Meta{}); err == nil {
		t.Fatalf("expected an error without a hydrator")
	}
}
