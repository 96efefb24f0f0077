// Package migration moves snapshot payloads between schema versions.
//
// A Migration is a directed edge between two versions made of ordered Steps.
// Registry stores migrations keyed by "{from}->{to}" and resolves the shortest
// hop path between two versions with a breadth-first search. Executor applies
// a resolved path on a private copy of the payload: either every step of
// every migration commits, or the caller gets no data back at all.
//
// Steps are a closed tagged variant. A step either carries Go functions
// (Forward, Rollback, Precondition, Postcondition) or only declarative fields
// (Kind, Path, Target, Value, Expr, Pre, Post) that the executor compiles
// with an eval.Evaluator. Declarative steps are what LoadCatalog builds from
// YAML, so migrations can be shipped as data and inspected by tooling.
//
// Rollback steps are never run automatically. RollbackMigration exists for
// manual reversal tooling.
package migration
