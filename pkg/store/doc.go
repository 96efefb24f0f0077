// Package store defines persistence-facing contracts for snapshot payloads
// and a Loader that hydrates stored snapshots or upgrades them in place.
//
// Store[T] only loads and saves a single payload for a single Ref. The core
// snapshot package stays persistence-agnostic; storage adapters live behind
// Store implementations supplied by consumers.
//
// Data flow:
//
//	Store.Load -> snapshot.Hydrator.Hydrate -> snapshot.HydrationResult
//	Store.Load -> snapshot.Hydrator.Migrate -> Store.Save
//
// Deterministic keys:
//
//	Ref.Identifier() returns `scene/<guid>` or `tenant/<id>/scene/<guid>`.
//	Adapters should use it as the storage key.
package store
