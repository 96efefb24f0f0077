// Package snapshot rebuilds scenes from versioned snapshot payloads.
//
// A Hydrator first migrates a payload from its declared schema version to
// the target version along the shortest registered migration path, then
// hydrates it in dependency order: scene, nodes, edges, contexts and finally
// validation and linking. Every nested value is defaulted by the normalize
// package so callers always receive fully populated entities.
//
//	h := snapshot.New(snapshot.WithLogger(snapshot.SlogLogger(slog.Default())))
//	result := h.Hydrate(ctx, payload, snapshot.DefaultHydrationOptions())
//	if !result.Success {
//		return result.Err
//	}
//
// In lenient mode malformed entities are skipped and listed in
// HydrationResult.Errors; with Strict set the first one fails the call.
// Hydrate never panics and never returns a nil result.
package snapshot
