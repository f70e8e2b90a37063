package tracker

import (
	"context"
	"errors"
	"strings"

	"pearl/internal/logging"
	"pearl/internal/roles"
	"pearl/internal/store"
	"pearl/internal/workflow"
)

// CreateUserParams carries the fields of a new staff account.
type CreateUserParams struct {
	Name            string
	Email           string
	Role            string
	ProfileImageURL string
}

// CreateUser registers a staff account. Admin only. The display name is
// normalized before storage so assignment snapshots stay consistent.
func (s *Service) CreateUser(ctx context.Context, actorID string, params CreateUserParams) (*workflow.User, error) {
	const op = "create-user"
	_, actor, err := s.resolveActor(ctx, op, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsSuperAdmin() {
		return nil, Wrap(ErrPermission, "tracker", op, "user management requires admin rights", nil)
	}
	role, ok := roles.ParseRole(params.Role)
	if !ok {
		return nil, Wrap(ErrValidation, "tracker", op, "unknown role "+params.Role, nil)
	}

	user := &workflow.User{
		Name:            params.Name,
		Email:           strings.TrimSpace(params.Email),
		Role:            role,
		ProfileImageURL: params.ProfileImageURL,
	}
	stored, err := s.store.CreateUser(ctx, user)
	if err != nil {
		return nil, Wrap(ErrValidation, "tracker", op, "", err)
	}
	s.logger.Info("user created", logging.Args(
		logging.String("user_id", stored.ID),
		logging.String("name", stored.Name),
		logging.String("role", string(stored.Role)),
	)...)
	return stored, nil
}

// CreateGhost registers a credential-less placeholder identity used to
// retroactively credit work done before the tracker existed. Admin only.
// Ghosts take an assignable role so historical assignments validate, but
// they can never act.
func (s *Service) CreateGhost(ctx context.Context, actorID, name, rawRole string) (*workflow.User, error) {
	const op = "create-ghost"
	_, actor, err := s.resolveActor(ctx, op, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsSuperAdmin() {
		return nil, Wrap(ErrPermission, "tracker", op, "user management requires admin rights", nil)
	}
	role, ok := roles.ParseRole(rawRole)
	if !ok {
		return nil, Wrap(ErrValidation, "tracker", op, "unknown role "+rawRole, nil)
	}
	if !role.IsAssignableRole() {
		return nil, Wrap(ErrValidation, "tracker", op, "ghosts must carry an assignable role", nil)
	}

	ghost := &workflow.User{Name: name, Role: role, IsGhost: true}
	stored, err := s.store.CreateUser(ctx, ghost)
	if err != nil {
		return nil, Wrap(ErrValidation, "tracker", op, "", err)
	}
	s.logger.Info("ghost created", logging.Args(
		logging.String("user_id", stored.ID),
		logging.String("name", stored.Name),
	)...)
	return stored, nil
}

// TransferGhost moves a ghost's entire assignment history onto a real user
// and soft-deletes the ghost, atomically. Admin only. A consistency error
// means the transfer may be partially applied and must be surfaced as such.
func (s *Service) TransferGhost(ctx context.Context, actorID, ghostID, targetID string) (store.TransferResult, error) {
	const op = "transfer-ghost"
	_, actor, err := s.resolveActor(ctx, op, actorID)
	if err != nil {
		return store.TransferResult{}, err
	}
	if !actor.Role.IsSuperAdmin() {
		return store.TransferResult{}, Wrap(ErrPermission, "tracker", op, "user management requires admin rights", nil)
	}

	result, err := s.store.TransferGhost(ctx, ghostID, targetID)
	if err != nil {
		marker := ErrValidation
		if errors.Is(err, store.ErrPartialApply) {
			marker = ErrConsistency
		}
		return result, Wrap(marker, "tracker", op, "", err)
	}
	s.logger.Info("ghost transferred", logging.Args(
		logging.String("ghost_id", ghostID),
		logging.String("target_id", targetID),
		logging.Int("assignments_moved", result.AssignmentsMoved),
		logging.Int("completed_moved", result.CompletedMoved),
	)...)
	return result, nil
}

// ListUsers returns the staff roster.
func (s *Service) ListUsers(ctx context.Context) ([]*workflow.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, Wrap(ErrPersistence, "tracker", "list-users", "", err)
	}
	return users, nil
}

// ListTitles returns the catalogue.
func (s *Service) ListTitles(ctx context.Context) ([]*workflow.Title, error) {
	titles, err := s.store.ListTitles(ctx)
	if err != nil {
		return nil, Wrap(ErrPersistence, "tracker", "list-titles", "", err)
	}
	return titles, nil
}
