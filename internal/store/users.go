package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pearl/internal/roles"
	"pearl/internal/workflow"
)

const userColumns = "id, name, email, role, status, profile_image_url, is_ghost, completed_count, active_count, created_at, updated_at"

var nameCaser = cases.Title(language.Und)

// NormalizeDisplayName tidies a user or title display name at the ingest
// boundary: collapsed whitespace, title case.
func NormalizeDisplayName(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return nameCaser.String(strings.Join(fields, " "))
}

// CreateUser inserts a staff member or ghost.
func (s *Store) CreateUser(ctx context.Context, u *workflow.User) (*workflow.User, error) {
	if u == nil {
		return nil, errors.New("user is nil")
	}
	u.Name = NormalizeDisplayName(u.Name)
	if u.Name == "" {
		return nil, errors.New("user requires a name")
	}
	if _, ok := roles.ParseRole(string(u.Role)); !ok {
		return nil, fmt.Errorf("unknown role %q", u.Role)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = workflow.UserActive
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Name,
		nullableString(u.Email),
		string(u.Role),
		string(u.Status),
		nullableString(u.ProfileImageURL),
		boolToInt(u.IsGhost),
		u.Stats.CompletedCount,
		u.Stats.ActiveCount,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	stored, err := s.GetUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, CollectionUsers)
	return stored, nil
}

// GetUser fetches a user by identifier. A missing row returns nil without error.
func (s *Store) GetUser(ctx context.Context, id string) (*workflow.User, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateUser persists changes to an existing user.
func (s *Store) UpdateUser(ctx context.Context, u *workflow.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	u.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE users
         SET name = ?, email = ?, role = ?, status = ?, profile_image_url = ?,
             is_ghost = ?, completed_count = ?, active_count = ?, updated_at = ?
         WHERE id = ?`,
		u.Name,
		nullableString(u.Email),
		string(u.Role),
		string(u.Status),
		nullableString(u.ProfileImageURL),
		boolToInt(u.IsGhost),
		u.Stats.CompletedCount,
		u.Stats.ActiveCount,
		u.UpdatedAt.Format(time.RFC3339Nano),
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s not found", u.ID)
	}
	s.notify(ctx, CollectionUsers)
	return nil
}

// ListUsers returns every user ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]*workflow.User, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+userColumns+` FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*workflow.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (*workflow.User, error) {
	var (
		id         string
		name       string
		email      sql.NullString
		role       string
		status     string
		profileURL sql.NullString
		isGhost    sql.NullInt64
		completed  int
		active     int
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &name, &email, &role, &status, &profileURL, &isGhost, &completed, &active, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	user := &workflow.User{
		ID:              id,
		Name:            name,
		Email:           email.String,
		Role:            roles.Role(role),
		Status:          workflow.UserStatus(status),
		ProfileImageURL: profileURL.String,
		IsGhost:         isGhost.Valid && isGhost.Int64 != 0,
		Stats: workflow.UserStats{
			CompletedCount: completed,
			ActiveCount:    active,
		},
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		user.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		user.UpdatedAt = updated
	}
	return user, nil
}
