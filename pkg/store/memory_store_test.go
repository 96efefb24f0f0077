package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-snapshot/pkg/store"
)

func TestRefIdentifier(t *testing.T) {
	cases := []struct {
		name string
		ref  store.Ref
		want string
		err  bool
	}{
		{name: "scene", ref: store.Ref{SceneGUID: "s1"}, want: "scene/s1"},
		{name: "tenant", ref: store.Ref{Tenant: "acme", SceneGUID: "s1"}, want: "tenant/acme/scene/s1"},
		{name: "trimmed", ref: store.Ref{Tenant: " acme ", SceneGUID: " s1 "}, want: "tenant/acme/scene/s1"},
		{name: "missing guid", ref: store.Ref{Tenant: "acme"}, err: true},
		{name: "slash in guid", ref: store.Ref{SceneGUID: "a/b"}, err: true},
		{name: "slash in tenant", ref: store.Ref{Tenant: "a/b", SceneGUID: "s1"}, err: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.ref.Identifier()
			if tc.err {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestMemoryStoreRoundTripIsolatesPayloads(t *testing.T) {
	s := store.NewMemoryStore[map[string]any]()
	ref := store.Ref{SceneGUID: "s1"}
	payload := map[string]any{"scene": map[string]any{"name": "Board"}}

	meta, err := s.Save(context.Background(), ref, payload, store.Meta{Extra: map[string]string{"source": "import"}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if meta.SnapshotID == "" || meta.ETag == "" || meta.UpdatedAt.IsZero() {
		t.Fatalf("expected generated meta, got %+v", meta)
	}
	payload["scene"].(map[string]any)["name"] = "changed"

	loaded, loadedMeta, ok, err := s.Load(context.Background(), ref)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loaded["scene"].(map[string]any)["name"] != "Board" {
		t.Fatalf("stored payload shares state with the caller")
	}
	if loadedMeta.ETag != meta.ETag || loadedMeta.Extra["source"] != "import" {
		t.Fatalf("unexpected meta %+v", loadedMeta)
	}

	_, _, ok, err = s.Load(context.Background(), store.Ref{SceneGUID: "missing"})
	if err != nil || ok {
		t.Fatalf("expected a clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreRejectsStaleETag(t *testing.T) {
	s := store.NewMemoryStore[map[string]any]()
	ref := store.Ref{Tenant: "acme", SceneGUID: "s1"}

	first, err := s.Save(context.Background(), ref, map[string]any{}, store.Meta{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := s.Save(context.Background(), ref, map[string]any{}, store.Meta{ETag: first.ETag})
	if err != nil {
		t.Fatalf("save with current etag: %v", err)
	}
	if second.ETag == first.ETag || second.SnapshotID != first.SnapshotID {
		t.Fatalf("expected new etag and stable snapshot id, got %+v -> %+v", first, second)
	}
	if _, err := s.Save(context.Background(), ref, map[string]any{}, store.Meta{ETag: first.ETag}); !errors.Is(err, store.ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected one record, got %d", s.Len())
	}
}
