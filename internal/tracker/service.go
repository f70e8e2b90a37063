package tracker

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"pearl/internal/logging"
	"pearl/internal/store"
	"pearl/internal/workflow"
)

// Service is the permission-checked operation surface over the store. Every
// mutation resolves the acting user, validates against the workflow rules,
// and only then writes, so a rejected request leaves no partial state.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// New builds a Service over an open store. A nil logger discards output.
func New(st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{store: st, logger: logger.With(logging.FieldComponent, "tracker")}
}

// resolveActor loads the acting user and rejects identities that must not
// perform writes: unknown, non-active, or ghost accounts.
func (s *Service) resolveActor(ctx context.Context, operation, actorID string) (*workflow.User, workflow.Actor, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, workflow.Actor{}, Wrap(ErrPermission, "tracker", operation, "acting user is required", nil)
	}
	user, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		return nil, workflow.Actor{}, Wrap(ErrPersistence, "tracker", operation, "load acting user", err)
	}
	if user == nil {
		return nil, workflow.Actor{}, Wrap(ErrPermission, "tracker", operation, "unknown acting user "+actorID, nil)
	}
	if user.IsGhost {
		return nil, workflow.Actor{}, Wrap(ErrPermission, "tracker", operation, "ghost users cannot act", nil)
	}
	if user.Status != workflow.UserActive {
		return nil, workflow.Actor{}, Wrap(ErrPermission, "tracker", operation, "acting user is "+string(user.Status), nil)
	}
	return user, workflow.Actor{UserID: user.ID, Role: user.Role}, nil
}

func wrapTransition(operation string, err error) error {
	var terr *workflow.TransitionError
	if errors.As(err, &terr) && terr.Permission {
		return Wrap(ErrPermission, "tracker", operation, terr.Error(), nil)
	}
	return Wrap(ErrValidation, "tracker", operation, "", err)
}

// CreateAssignmentParams carries the fields of a new stage assignment.
// AssignedUserID may be empty; the assignment then starts unassigned.
type CreateAssignmentParams struct {
	TitleID        string
	ChapterNumber  string
	Stage          string
	AssignedUserID string
	DueDate        *time.Time
	DriveLink      string
	Notes          string
}

// CreateAssignment records a new stage assignment. Only chiefs may create
// assignments; the title name and worker name are snapshotted at write time.
func (s *Service) CreateAssignment(ctx context.Context, actorID string, params CreateAssignmentParams) (*workflow.Assignment, error) {
	const op = "create-assignment"
	_, actor, err := s.resolveActor(ctx, op, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanManageAssignments() {
		return nil, Wrap(ErrPermission, "tracker", op, "assignment changes require management rights", nil)
	}

	title, err := s.store.GetTitle(ctx, params.TitleID)
	if err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "load title", err)
	}
	if title == nil {
		return nil, Wrap(ErrNotFound, "tracker", op, "title "+params.TitleID+" not found", nil)
	}

	stage, ok := workflow.ParseStage(params.Stage)
	if !ok {
		return nil, Wrap(ErrValidation, "tracker", op, "unknown stage "+params.Stage, nil)
	}
	if !title.RequiredStages().Contains(stage) {
		return nil, Wrap(ErrValidation, "tracker", op, "stage "+string(stage)+" is outside the pipeline of "+title.Name, nil)
	}

	// One assignment per stage of a chapter; the store backs this with a
	// unique index, but checking here gives a clean validation error.
	existing, err := s.store.AssignmentsForChapter(ctx, title.ID, params.ChapterNumber)
	if err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "load chapter assignments", err)
	}
	for _, a := range existing {
		if a.Stage == stage {
			return nil, Wrap(ErrValidation, "tracker", op, "chapter "+params.ChapterNumber+" already has a "+string(stage)+" assignment", nil)
		}
	}

	assignment := &workflow.Assignment{
		TitleID:       title.ID,
		TitleName:     title.Name,
		ChapterNumber: params.ChapterNumber,
		Stage:         stage,
		Status:        workflow.StatusUnassigned,
		DueDate:       params.DueDate,
		DriveLink:     params.DriveLink,
		Notes:         params.Notes,
	}
	if strings.TrimSpace(params.AssignedUserID) != "" {
		worker, err := s.lookupWorker(ctx, op, params.AssignedUserID)
		if err != nil {
			return nil, err
		}
		if err := workflow.Assign(actor, assignment, worker.ID, worker.Name, worker.Role); err != nil {
			return nil, wrapTransition(op, err)
		}
	}

	stored, err := s.store.CreateAssignment(ctx, assignment)
	if err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "", err)
	}
	if stored.AssignedUserID != "" {
		s.adjustStats(ctx, stored.AssignedUserID, 0, 1)
	}
	s.logOp(ctx, op, stored, "assignment created")
	return stored, nil
}

// AssignUser places a worker on an existing assignment, or clears the
// assignee when userID is empty. The worker's display name is re-resolved
// from the user directory at write time.
func (s *Service) AssignUser(ctx context.Context, actorID, assignmentID, userID string) (*workflow.Assignment, error) {
	const op = "assign-user"
	_, actor, err := s.resolveActor(ctx, op, actorID)
	if err != nil {
		return nil, err
	}
	assignment, err := s.loadAssignment(ctx, op, assignmentID)
	if err != nil {
		return nil, err
	}
	previous := assignment.AssignedUserID
	wasDone := assignment.Status.IsDone()

	if strings.TrimSpace(userID) == "" {
		if err := workflow.Assign(actor, assignment, "", "", ""); err != nil {
			return nil, wrapTransition(op, err)
		}
	} else {
		worker, err := s.lookupWorker(ctx, op, userID)
		if err != nil {
			return nil, err
		}
		if err := workflow.Assign(actor, assignment, worker.ID, worker.Name, worker.Role); err != nil {
			return nil, wrapTransition(op, err)
		}
	}

	if err := s.store.UpdateAssignment(ctx, assignment); err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "", err)
	}
	// Done work stays out of the active counters on both sides of a
	// handover; only open work moves between holders.
	if previous != assignment.AssignedUserID && !wasDone {
		if previous != "" {
			s.adjustStats(ctx, previous, 0, -1)
		}
		if assignment.AssignedUserID != "" {
			s.adjustStats(ctx, assignment.AssignedUserID, 0, 1)
		}
	}
	s.logOp(ctx, op, assignment, "assignee changed")
	return assignment, nil
}

// SetStatus parses a raw status value (English or Spanish spelling) and
// applies the transition on behalf of the actor.
func (s *Service) SetStatus(ctx context.Context, actorID, assignmentID, rawStatus string) (*workflow.Assignment, error) {
	status, ok := workflow.ParseStatus(rawStatus)
	if !ok {
		return nil, Wrap(ErrValidation, "tracker", "set-status", "unknown status "+rawStatus, nil)
	}
	return s.transition(ctx, "set-status", actorID, assignmentID, status)
}

// UpdateProgress moves an assignment to in_progress.
func (s *Service) UpdateProgress(ctx context.Context, actorID, assignmentID string) (*workflow.Assignment, error) {
	return s.transition(ctx, "update-progress", actorID, assignmentID, workflow.StatusInProgress)
}

// MarkCompleted moves an assignment to completed.
func (s *Service) MarkCompleted(ctx context.Context, actorID, assignmentID string) (*workflow.Assignment, error) {
	return s.transition(ctx, "mark-completed", actorID, assignmentID, workflow.StatusCompleted)
}

// Approve moves a completed assignment to approved. Chiefs only.
func (s *Service) Approve(ctx context.Context, actorID, assignmentID string) (*workflow.Assignment, error) {
	return s.transition(ctx, "approve", actorID, assignmentID, workflow.StatusApproved)
}

// MarkUploaded moves an assignment to uploaded. Requires upload rights.
func (s *Service) MarkUploaded(ctx context.Context, actorID, assignmentID string) (*workflow.Assignment, error) {
	return s.transition(ctx, "mark-uploaded", actorID, assignmentID, workflow.StatusUploaded)
}

// RevertUpload walks an uploaded assignment back to completed, e.g. after a
// botched release. Requires upload rights.
func (s *Service) RevertUpload(ctx context.Context, actorID, assignmentID string) (*workflow.Assignment, error) {
	return s.transition(ctx, "revert-upload", actorID, assignmentID, workflow.StatusCompleted)
}

func (s *Service) transition(ctx context.Context, op, actorID, assignmentID string, to workflow.Status) (*workflow.Assignment, error) {
	_, actor, err := s.resolveActor(ctx, op, actorID)
	if err != nil {
		return nil, err
	}
	assignment, err := s.loadAssignment(ctx, op, assignmentID)
	if err != nil {
		return nil, err
	}
	wasDone := assignment.Status.IsDone()

	// Keep the denormalized worker name current with the directory; the
	// snapshot only freezes once the worker record disappears.
	if assignment.AssignedUserID != "" {
		if worker, err := s.store.GetUser(ctx, assignment.AssignedUserID); err == nil && worker != nil {
			assignment.AssignedUserName = worker.Name
		}
	}

	if err := workflow.Transition(actor, assignment, to); err != nil {
		return nil, wrapTransition(op, err)
	}
	if err := s.store.UpdateAssignment(ctx, assignment); err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "", err)
	}

	isDone := assignment.Status.IsDone()
	if assignment.AssignedUserID != "" && wasDone != isDone {
		if isDone {
			s.adjustStats(ctx, assignment.AssignedUserID, 1, -1)
		} else {
			s.adjustStats(ctx, assignment.AssignedUserID, -1, 1)
		}
	}
	s.logOp(ctx, op, assignment, "status changed")
	return assignment, nil
}

// EditAssignmentParams carries the metadata fields a chief may correct on an
// existing assignment. Nil pointers leave the stored value untouched.
type EditAssignmentParams struct {
	ChapterNumber string
	Stage         string
	DueDate       *time.Time
	ClearDueDate  bool
	DriveLink     *string
	Notes         *string
}

// EditAssignment updates assignment metadata without touching the status
// machine. Chiefs only.
func (s *Service) EditAssignment(ctx context.Context, actorID, assignmentID string, params EditAssignmentParams) (*workflow.Assignment, error) {
	const op = "edit-assignment"
	_, actor, err := s.resolveActor(ctx, op, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanManageAssignments() {
		return nil, Wrap(ErrPermission, "tracker", op, "assignment changes require management rights", nil)
	}
	assignment, err := s.loadAssignment(ctx, op, assignmentID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(params.ChapterNumber) != "" {
		number, err := workflow.ParseChapterNumber(params.ChapterNumber)
		if err != nil {
			return nil, Wrap(ErrValidation, "tracker", op, "", err)
		}
		assignment.ChapterNumber = number
	}
	if strings.TrimSpace(params.Stage) != "" {
		stage, ok := workflow.ParseStage(params.Stage)
		if !ok {
			return nil, Wrap(ErrValidation, "tracker", op, "unknown stage "+params.Stage, nil)
		}
		assignment.Stage = stage
	}
	if params.ClearDueDate {
		assignment.DueDate = nil
	} else if params.DueDate != nil {
		assignment.DueDate = params.DueDate
	}
	if params.DriveLink != nil {
		assignment.DriveLink = *params.DriveLink
	}
	if params.Notes != nil {
		assignment.Notes = *params.Notes
	}

	if err := s.store.UpdateAssignment(ctx, assignment); err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "", err)
	}
	s.logOp(ctx, op, assignment, "assignment edited")
	return assignment, nil
}

func (s *Service) loadAssignment(ctx context.Context, op, id string) (*workflow.Assignment, error) {
	assignment, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "load assignment", err)
	}
	if assignment == nil {
		return nil, Wrap(ErrNotFound, "tracker", op, "assignment "+id+" not found", nil)
	}
	return assignment, nil
}

// lookupWorker resolves a prospective assignee and rejects accounts that
// cannot hold stage work.
func (s *Service) lookupWorker(ctx context.Context, op, userID string) (*workflow.User, error) {
	worker, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "load worker", err)
	}
	if worker == nil {
		return nil, Wrap(ErrNotFound, "tracker", op, "user "+userID+" not found", nil)
	}
	if worker.Status == workflow.UserDeleted || worker.Status == workflow.UserSuspended {
		return nil, Wrap(ErrValidation, "tracker", op, "user "+worker.Name+" is "+string(worker.Status), nil)
	}
	if !worker.Role.IsAssignableRole() {
		return nil, Wrap(ErrValidation, "tracker", op, "role "+string(worker.Role)+" cannot take stage work", nil)
	}
	return worker, nil
}

// adjustStats nudges a user's workload counters. Counter drift is tolerable;
// a failed bump is logged and never fails the operation that caused it.
func (s *Service) adjustStats(ctx context.Context, userID string, dCompleted, dActive int) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil || user == nil {
		return
	}
	user.Stats.CompletedCount += dCompleted
	user.Stats.ActiveCount += dActive
	if user.Stats.CompletedCount < 0 {
		user.Stats.CompletedCount = 0
	}
	if user.Stats.ActiveCount < 0 {
		user.Stats.ActiveCount = 0
	}
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("user stats update failed", logging.Args(
			logging.String("user_id", userID),
			logging.Error(err),
		)...)
	}
}

func (s *Service) logOp(ctx context.Context, op string, a *workflow.Assignment, msg string) {
	logging.WithContext(ctx, s.logger).Info(msg, logging.Args(
		logging.String("operation", op),
		logging.String("assignment_id", a.ID),
		logging.String(logging.FieldTitleID, a.TitleID),
		logging.String(logging.FieldChapter, a.ChapterNumber),
		logging.String(logging.FieldStage, string(a.Stage)),
		logging.String("status", string(a.Status)),
	)...)
}
