package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrETagMismatch = errors.New("store: etag mismatch")

var ErrNotFound = errors.New("store: snapshot not found")

// Ref identifies one persisted snapshot.
type Ref struct {
	Tenant    string
	SceneGUID string
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	Version    string            `json:"version,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one snapshot for a single reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

func (r Ref) Identifier() (string, error) {
	guid := strings.TrimSpace(r.SceneGUID)
	if guid == "" {
		return "", fmt.Errorf("store: scene guid is required")
	}
	if strings.Contains(guid, "/") {
		return "", fmt.Errorf("store: scene guid %q must not contain %q", guid, "/")
	}
	tenant := strings.TrimSpace(r.Tenant)
	if tenant == "" {
		return fmt.Sprintf("scene/%s", guid), nil
	}
	if strings.Contains(tenant, "/") {
		return "", fmt.Errorf("store: tenant %q must not contain %q", tenant, "/")
	}
	return fmt.Sprintf("tenant/%s/scene/%s", tenant, guid), nil
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if override.Version != "" {
		out.Version = override.Version
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
