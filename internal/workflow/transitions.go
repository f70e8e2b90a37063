package workflow

import (
	"fmt"
	"time"

	"pearl/internal/roles"
)

// Actor is the identity attempting a change.
type Actor struct {
	UserID string
	Role   roles.Role
}

// TransitionError reports a rejected status change with the reason class
// the caller needs to map onto its error taxonomy.
type TransitionError struct {
	From       Status
	To         Status
	Reason     string
	Permission bool
}

func (e *TransitionError) Error() string {
	if e.From == e.To {
		return fmt.Sprintf("status %s: %s", e.From, e.Reason)
	}
	return fmt.Sprintf("transition %s -> %s: %s", e.From, e.To, e.Reason)
}

// statusArcs enumerates the legal status moves, independent of actor.
var statusArcs = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCompleted},
	StatusInProgress: {StatusCompleted, StatusPending},
	StatusCompleted:  {StatusApproved, StatusUploaded, StatusInProgress},
	StatusApproved:   {StatusUploaded, StatusCompleted},
	StatusUploaded:   {StatusCompleted},
}

func arcAllowed(from, to Status) bool {
	for _, next := range statusArcs[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanChangeStatus reports whether the actor may touch this assignment's
// status at all: the assigned worker, or anyone with management rights.
func CanChangeStatus(actor Actor, a *Assignment) bool {
	if actor.Role.CanManageAssignments() {
		return true
	}
	return a != nil && a.AssignedUserID != "" && a.AssignedUserID == actor.UserID
}

// Transition applies a status change on behalf of an actor, enforcing both
// the arc legality and the role gates: uploads and upload reverts need
// upload rights, everything else needs the assigned worker or a manager.
// On success the assignment's progress dates are maintained.
func Transition(actor Actor, a *Assignment, to Status) error {
	if a == nil {
		return &TransitionError{To: to, Reason: "assignment is nil"}
	}
	from := a.Status
	if from == to {
		return &TransitionError{From: from, To: to, Reason: "already in that status"}
	}
	if from == StatusUnassigned || to == StatusUnassigned {
		return &TransitionError{From: from, To: to, Reason: "assignee changes go through SetAssignee/ClearAssignee"}
	}
	if !arcAllowed(from, to) {
		return &TransitionError{From: from, To: to, Reason: "not a legal move"}
	}

	uploadBoundary := to == StatusUploaded || from == StatusUploaded
	if uploadBoundary && !actor.Role.CanUpload() {
		return &TransitionError{From: from, To: to, Reason: "requires upload rights", Permission: true}
	}
	if !uploadBoundary && !CanChangeStatus(actor, a) {
		return &TransitionError{From: from, To: to, Reason: "only the assigned worker or a chief may change status", Permission: true}
	}
	if to == StatusApproved && !actor.Role.CanManageAssignments() {
		return &TransitionError{From: from, To: to, Reason: "approval requires management rights", Permission: true}
	}

	now := time.Now().UTC()
	a.Status = to
	switch {
	case to == StatusUploaded:
		if a.CompletedDate == nil {
			a.CompletedDate = &now
		}
		a.UploadedDate = &now
	case to.IsDone():
		if a.CompletedDate == nil {
			a.CompletedDate = &now
		}
		a.UploadedDate = nil
	default:
		a.CompletedDate = nil
		a.UploadedDate = nil
	}
	return nil
}

// Assign places a worker on the assignment on behalf of an actor.
// Reassignment and clearing both require management rights.
func Assign(actor Actor, a *Assignment, userID, userName string, role roles.Role) error {
	if a == nil {
		return &TransitionError{Reason: "assignment is nil"}
	}
	if !actor.Role.CanManageAssignments() {
		return &TransitionError{From: a.Status, To: a.Status, Reason: "assignment changes require management rights", Permission: true}
	}
	if userID == "" {
		a.ClearAssignee()
		return nil
	}
	if !role.IsAssignableRole() {
		return &TransitionError{From: a.Status, To: a.Status, Reason: fmt.Sprintf("role %s cannot take stage work", role)}
	}
	a.SetAssignee(userID, userName)
	return nil
}
