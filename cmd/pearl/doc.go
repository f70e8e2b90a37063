// Command pearl is the CLI for the WhitePearl workflow tracker. It manages
// the catalogue of titles, per-chapter stage assignments, and the staff
// roster over a shared SQLite workspace.
package main
