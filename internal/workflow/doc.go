// Package workflow holds the chapter pipeline domain model and the pure
// derivation rules built on it.
//
// An Assignment is the unit of work: one production stage of one chapter
// held by one worker, with its own status lifecycle. AggregateChapter folds
// a chapter's assignments into a single display state, and RollupTitle
// folds chapter states into title-level completion counts. Both are pure
// functions of their inputs so that every client re-deriving state from a
// store snapshot lands on the same answer without coordination.
//
// Treat this package as the single source of truth for status semantics;
// stores and presentation layers must not reinterpret raw status strings.
package workflow
