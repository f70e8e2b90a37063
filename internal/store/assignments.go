package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pearl/internal/workflow"
)

const assignmentColumns = "id, title_id, title_name, chapter_number, stage, assigned_user_id, assigned_user_name, status, due_date, drive_link, notes, completed_date, uploaded_date, created_at, updated_at"

// CreateAssignment inserts a validated assignment and returns the stored row.
func (s *Store) CreateAssignment(ctx context.Context, a *workflow.Assignment) (*workflow.Assignment, error) {
	if a == nil {
		return nil, errors.New("assignment is nil")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = workflow.StatusUnassigned
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO assignments (`+assignmentColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.TitleID,
		nullableString(a.TitleName),
		a.ChapterNumber,
		string(a.Stage),
		nullableString(a.AssignedUserID),
		nullableString(a.AssignedUserName),
		string(a.Status),
		nullableTime(a.DueDate),
		nullableString(a.DriveLink),
		nullableString(a.Notes),
		nullableTime(a.CompletedDate),
		nullableTime(a.UploadedDate),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}

	stored, err := s.GetAssignment(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, CollectionAssignments)
	return stored, nil
}

// GetAssignment fetches an assignment by identifier. A missing row returns
// nil without error.
func (s *Store) GetAssignment(ctx context.Context, id string) (*workflow.Assignment, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id)
	assignment, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return assignment, nil
}

// UpdateAssignment persists changes to an existing assignment after
// re-validating its invariants.
func (s *Store) UpdateAssignment(ctx context.Context, a *workflow.Assignment) error {
	if a == nil {
		return errors.New("assignment is nil")
	}
	if err := a.Validate(); err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE assignments
         SET title_id = ?, title_name = ?, chapter_number = ?, stage = ?,
             assigned_user_id = ?, assigned_user_name = ?, status = ?,
             due_date = ?, drive_link = ?, notes = ?,
             completed_date = ?, uploaded_date = ?, updated_at = ?
         WHERE id = ?`,
		a.TitleID,
		nullableString(a.TitleName),
		a.ChapterNumber,
		string(a.Stage),
		nullableString(a.AssignedUserID),
		nullableString(a.AssignedUserName),
		string(a.Status),
		nullableTime(a.DueDate),
		nullableString(a.DriveLink),
		nullableString(a.Notes),
		nullableTime(a.CompletedDate),
		nullableTime(a.UploadedDate),
		a.UpdatedAt.Format(time.RFC3339Nano),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("assignment %s not found", a.ID)
	}
	s.notify(ctx, CollectionAssignments)
	return nil
}

// AssignmentsForTitle returns every assignment of a title ordered by
// chapter then stage.
func (s *Store) AssignmentsForTitle(ctx context.Context, titleID string) ([]*workflow.Assignment, error) {
	return s.queryAssignments(
		ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE title_id = ? ORDER BY chapter_number, stage`,
		titleID,
	)
}

// AssignmentsForChapter returns the assignments of one chapter.
func (s *Store) AssignmentsForChapter(ctx context.Context, titleID, chapterNumber string) ([]*workflow.Assignment, error) {
	return s.queryAssignments(
		ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE title_id = ? AND chapter_number = ? ORDER BY stage`,
		titleID, chapterNumber,
	)
}

// AssignmentsForUser returns every assignment held by a user.
func (s *Store) AssignmentsForUser(ctx context.Context, userID string) ([]*workflow.Assignment, error) {
	return s.queryAssignments(
		ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE assigned_user_id = ? ORDER BY title_id, chapter_number, stage`,
		userID,
	)
}

// ListAssignments returns every assignment in the workspace.
func (s *Store) ListAssignments(ctx context.Context) ([]*workflow.Assignment, error) {
	return s.queryAssignments(
		ctx,
		`SELECT `+assignmentColumns+` FROM assignments ORDER BY title_id, chapter_number, stage`,
	)
}

func (s *Store) queryAssignments(ctx context.Context, query string, args ...any) ([]*workflow.Assignment, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*workflow.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

func scanAssignment(scanner interface{ Scan(dest ...any) error }) (*workflow.Assignment, error) {
	var (
		id            string
		titleID       string
		titleName     sql.NullString
		chapterNumber string
		stage         string
		userID        sql.NullString
		userName      sql.NullString
		status        string
		dueDate       sql.NullString
		driveLink     sql.NullString
		notes         sql.NullString
		completedDate sql.NullString
		uploadedDate  sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&titleID,
		&titleName,
		&chapterNumber,
		&stage,
		&userID,
		&userName,
		&status,
		&dueDate,
		&driveLink,
		&notes,
		&completedDate,
		&uploadedDate,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	assignment := &workflow.Assignment{
		ID:               id,
		TitleID:          titleID,
		TitleName:        titleName.String,
		ChapterNumber:    chapterNumber,
		Stage:            workflow.StageType(stage),
		AssignedUserID:   userID.String,
		AssignedUserName: userName.String,
		Status:           workflow.Status(status),
		DriveLink:        driveLink.String,
		Notes:            notes.String,
		DueDate:          timePointer(dueDate),
		CompletedDate:    timePointer(completedDate),
		UploadedDate:     timePointer(uploadedDate),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		assignment.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		assignment.UpdatedAt = updated
	}
	return assignment, nil
}
