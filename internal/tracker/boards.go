package tracker

import (
	"context"

	"pearl/internal/workflow"
)

// ChapterBoard builds the reconciled chapter view of a title for a viewer.
// Action cells are only marked actionable for viewers with management
// rights; the aggregate states themselves are viewer-independent.
func (s *Service) ChapterBoard(ctx context.Context, viewerID, titleID string) ([]workflow.ChapterRow, error) {
	const op = "chapter-board"
	viewer, _, err := s.resolveActor(ctx, op, viewerID)
	if err != nil {
		return nil, err
	}
	title, err := s.store.GetTitle(ctx, titleID)
	if err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "load title", err)
	}
	if title == nil {
		return nil, Wrap(ErrNotFound, "tracker", op, "title "+titleID+" not found", nil)
	}
	assignments, err := s.store.AssignmentsForTitle(ctx, titleID)
	if err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "load assignments", err)
	}
	chapters, err := s.store.ChaptersForTitle(ctx, titleID)
	if err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "load chapters", err)
	}
	return workflow.ReconcileChapters(title, assignments, chapters, viewer.Role.CanManageAssignments()), nil
}

// TitleProgress rolls the per-chapter aggregates of a title into completion
// counters and a percentage against the estimated chapter count.
func (s *Service) TitleProgress(ctx context.Context, titleID string) (workflow.TitleProgress, error) {
	const op = "title-progress"
	title, err := s.store.GetTitle(ctx, titleID)
	if err != nil {
		return workflow.TitleProgress{}, Wrap(ErrPersistence, "tracker", op, "load title", err)
	}
	if title == nil {
		return workflow.TitleProgress{}, Wrap(ErrNotFound, "tracker", op, "title "+titleID+" not found", nil)
	}
	assignments, err := s.store.AssignmentsForTitle(ctx, titleID)
	if err != nil {
		return workflow.TitleProgress{}, Wrap(ErrPersistence, "tracker", op, "load assignments", err)
	}
	chapters, err := s.store.ChaptersForTitle(ctx, titleID)
	if err != nil {
		return workflow.TitleProgress{}, Wrap(ErrPersistence, "tracker", op, "load chapters", err)
	}
	return workflow.RollupTitle(title, assignments, chapters), nil
}

// UserWorkload lists a user's assignments together with their stored
// counters, for the roster views.
type UserWorkload struct {
	User        *workflow.User
	Assignments []*workflow.Assignment
}

// Workload fetches a user and their assignment history.
func (s *Service) Workload(ctx context.Context, userID string) (UserWorkload, error) {
	const op = "workload"
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return UserWorkload{}, Wrap(ErrPersistence, "tracker", op, "load user", err)
	}
	if user == nil {
		return UserWorkload{}, Wrap(ErrNotFound, "tracker", op, "user "+userID+" not found", nil)
	}
	assignments, err := s.store.AssignmentsForUser(ctx, userID)
	if err != nil {
		return UserWorkload{}, Wrap(ErrPersistence, "tracker", op, "load assignments", err)
	}
	return UserWorkload{User: user, Assignments: assignments}, nil
}
