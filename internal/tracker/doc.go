// Package tracker is the operation surface of the workflow tracker. It
// resolves acting users, applies the role and status rules from the workflow
// package, and persists through the store, classifying every failure as
// validation, permission, persistence, or consistency.
package tracker
