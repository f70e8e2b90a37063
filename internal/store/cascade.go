package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pearl/internal/workflow"
)

// ErrPartialApply marks a multi-record operation that could not complete
// atomically. Callers must surface it as "partially applied" rather than a
// clean failure; with SQLite transactions this only fires when the commit
// itself reports an inconsistent result.
var ErrPartialApply = errors.New("operation partially applied")

// DeleteChapterResult reports what a cascade removed.
type DeleteChapterResult struct {
	ChapterRemoved     bool
	AssignmentsRemoved int64
}

// DeleteChapterCascade removes the chapter record (if present) and every
// assignment of (titleID, chapterNumber) in one transaction. A chapter
// known to neither set is reported as not found.
func (s *Store) DeleteChapterCascade(ctx context.Context, titleID, chapterNumber string) (DeleteChapterResult, error) {
	ctx = ensureContext(ctx)
	result := DeleteChapterResult{}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE title_id = ? AND chapter_number = ?`, titleID, chapterNumber)
	if err != nil {
		return result, fmt.Errorf("delete chapter assignments: %w", err)
	}
	if result.AssignmentsRemoved, err = res.RowsAffected(); err != nil {
		return result, fmt.Errorf("rows affected: %w", err)
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM chapters WHERE title_id = ? AND chapter_number = ?`, titleID, chapterNumber)
	if err != nil {
		return result, fmt.Errorf("delete chapter record: %w", err)
	}
	chapterRows, err := res.RowsAffected()
	if err != nil {
		return result, fmt.Errorf("rows affected: %w", err)
	}
	result.ChapterRemoved = chapterRows > 0

	if !result.ChapterRemoved && result.AssignmentsRemoved == 0 {
		return result, fmt.Errorf("chapter %s of title %s not found", chapterNumber, titleID)
	}

	if err := tx.Commit(); err != nil {
		return DeleteChapterResult{}, fmt.Errorf("commit chapter delete: %w", err)
	}
	s.notify(ctx, CollectionAssignments)
	s.notify(ctx, CollectionChapters)
	return result, nil
}

// TransferResult reports what a ghost transfer rewrote.
type TransferResult struct {
	AssignmentsMoved int
	CompletedMoved   int
	ActiveMoved      int
}

// TransferGhost rewrites every assignment held by a ghost user onto a real
// user, bumps the target's counters, and soft-deletes the ghost, all in one
// transaction so a concurrent reader never observes a half-moved history.
func (s *Store) TransferGhost(ctx context.Context, ghostID, targetID string) (TransferResult, error) {
	ctx = ensureContext(ctx)
	result := TransferResult{}

	ghost, err := s.GetUser(ctx, ghostID)
	if err != nil {
		return result, err
	}
	if ghost == nil {
		return result, fmt.Errorf("ghost user %s not found", ghostID)
	}
	if !ghost.IsGhost {
		return result, fmt.Errorf("user %s is not a ghost", ghostID)
	}
	target, err := s.GetUser(ctx, targetID)
	if err != nil {
		return result, err
	}
	if target == nil {
		return result, fmt.Errorf("target user %s not found", targetID)
	}
	if target.IsGhost {
		return result, fmt.Errorf("target user %s is a ghost", targetID)
	}

	assignments, err := s.AssignmentsForUser(ctx, ghostID)
	if err != nil {
		return result, err
	}
	for _, a := range assignments {
		if a.Status.IsDone() {
			result.CompletedMoved++
		} else {
			result.ActiveMoved++
		}
	}
	result.AssignmentsMoved = len(assignments)

	now := time.Now().UTC().Format(time.RFC3339Nano)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TransferResult{}, fmt.Errorf("begin transfer tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`UPDATE assignments SET assigned_user_id = ?, assigned_user_name = ?, updated_at = ? WHERE assigned_user_id = ?`,
		targetID, target.Name, now, ghostID,
	)
	if err != nil {
		return TransferResult{}, fmt.Errorf("rewrite assignments: %w", err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return TransferResult{}, fmt.Errorf("rows affected: %w", err)
	}
	if int(moved) != result.AssignmentsMoved {
		return TransferResult{}, fmt.Errorf("%w: rewrote %d of %d assignments", ErrPartialApply, moved, result.AssignmentsMoved)
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE users SET completed_count = completed_count + ?, active_count = active_count + ?, updated_at = ? WHERE id = ?`,
		result.CompletedMoved, result.ActiveMoved, now, targetID,
	); err != nil {
		return TransferResult{}, fmt.Errorf("update target stats: %w", err)
	}

	// Ghosts are soft-deleted, never removed, so historical credit keeps a
	// record to point at.
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE users SET status = ?, updated_at = ? WHERE id = ?`,
		string(workflow.UserDeleted), now, ghostID,
	); err != nil {
		return TransferResult{}, fmt.Errorf("soft-delete ghost: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return TransferResult{}, fmt.Errorf("commit transfer: %w", err)
	}
	s.notify(ctx, CollectionAssignments)
	s.notify(ctx, CollectionUsers)
	return result, nil
}
