// Package store persists the shared workspace in SQLite and exposes
// snapshot subscriptions for driving derived state.
//
// The Store manages database connections, schema migrations, per-collection
// CRUD for titles, chapters, assignments, and users, and the two cascading
// multi-record operations (chapter deletion and ghost transfer) that must
// commit atomically. A file lock beside the database enforces the
// single-writer model.
//
// Writes notify collection subscribers with full snapshots, never deltas;
// consumers re-derive chapter and title state from scratch on every
// delivery. Treat this package as the single source of truth for storage
// semantics; when records grow fields, add a migration under migrations/.
package store
