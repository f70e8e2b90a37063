// Package logging wires log/slog for pearl: console and JSON handlers,
// config-driven construction, and standardized field keys so title,
// chapter, stage, and actor identifiers stay queryable across the CLI and
// service layer. Context helpers carry those identifiers through call
// chains without threading loggers by hand.
package logging
