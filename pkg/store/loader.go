package store

import (
	"context"
	"fmt"

	snapshot "github.com/goliatone/go-snapshot"
	"github.com/goliatone/go-snapshot/migration"
)

// Payload is the untyped snapshot document kept by stores.
type Payload = map[string]any

// Loader hydrates stored snapshots and upgrades them to the hydrator's
// target version.
type Loader struct {
	Store    Store[Payload]
	Hydrator *snapshot.Hydrator
}

func (l Loader) validate(ref Ref) error {
	if l.Store == nil {
		return fmt.Errorf("store: store is required")
	}
	if l.Hydrator == nil {
		return fmt.Errorf("store: hydrator is required")
	}
	_, err := ref.Identifier()
	return err
}

// Hydrate loads ref and hydrates it. The returned error covers loading
// only; hydration failures are reported on the result.
func (l Loader) Hydrate(ctx context.Context, ref Ref, opts snapshot.HydrationOptions) (snapshot.HydrationResult, Meta, error) {
	if err := l.validate(ref); err != nil {
		return snapshot.HydrationResult{}, Meta{}, err
	}
	payload, meta, ok, err := l.Store.Load(ctx, ref)
	if err != nil {
		return snapshot.HydrationResult{}, Meta{}, fmt.Errorf("store: load scene %q: %w", ref.SceneGUID, err)
	}
	if !ok {
		return snapshot.HydrationResult{}, Meta{}, fmt.Errorf("%w: scene %q", ErrNotFound, ref.SceneGUID)
	}
	return l.Hydrator.Hydrate(ctx, payload, opts), meta, nil
}

// Upgrade migrates the stored payload to the hydrator's target version and
// saves it back. When meta.ETag is set it must match the stored ETag. A
// payload already at the target version is left untouched.
func (l Loader) Upgrade(ctx context.Context, ref Ref, meta Meta) (Meta, migration.Result, error) {
	if err := l.validate(ref); err != nil {
		return Meta{}, migration.Result{}, err
	}

	payload, loadedMeta, ok, err := l.Store.Load(ctx, ref)
	if err != nil {
		return Meta{}, migration.Result{}, fmt.Errorf("store: load scene %q: %w", ref.SceneGUID, err)
	}
	if !ok {
		return Meta{}, migration.Result{}, fmt.Errorf("%w: scene %q", ErrNotFound, ref.SceneGUID)
	}
	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return loadedMeta, migration.Result{}, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	result := l.Hydrator.Migrate(ctx, payload)
	if !result.Success {
		return loadedMeta, result, fmt.Errorf("store: upgrade scene %q: %w", ref.SceneGUID, result.Err)
	}
	if len(result.Path) == 0 {
		return loadedMeta, result, nil
	}

	saveMeta := mergeMeta(loadedMeta, meta)
	saveMeta.Version = l.Hydrator.TargetVersion()
	saved, err := l.Store.Save(ctx, ref, result.Data, saveMeta)
	if err != nil {
		return loadedMeta, result, fmt.Errorf("store: save scene %q: %w", ref.SceneGUID, err)
	}
	return saved, result, nil
}
