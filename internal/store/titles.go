package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pearl/internal/workflow"
)

const titleColumns = "id, name, author, status, total_chapters, published_chapters, drive_link, cover_image_url, is_joint, available_stage_types, created_at, updated_at"

// CreateTitle inserts a new title.
func (s *Store) CreateTitle(ctx context.Context, t *workflow.Title) (*workflow.Title, error) {
	if t == nil {
		return nil, errors.New("title is nil")
	}
	if strings.TrimSpace(t.Name) == "" {
		return nil, errors.New("title requires a name")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = workflow.TitleActive
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO titles (`+titleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Name,
		nullableString(t.Author),
		string(t.Status),
		t.TotalChapters,
		t.PublishedChapters,
		nullableString(t.DriveLink),
		nullableString(t.CoverImageURL),
		boolToInt(t.IsJoint),
		nullableString(encodeStageSet(t.AvailableStageTypes)),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert title: %w", err)
	}

	stored, err := s.GetTitle(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, CollectionTitles)
	return stored, nil
}

// GetTitle fetches a title by identifier. A missing row returns nil without error.
func (s *Store) GetTitle(ctx context.Context, id string) (*workflow.Title, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+titleColumns+` FROM titles WHERE id = ?`, id)
	title, err := scanTitle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get title: %w", err)
	}
	return title, nil
}

// UpdateTitle persists changes to an existing title.
func (s *Store) UpdateTitle(ctx context.Context, t *workflow.Title) error {
	if t == nil {
		return errors.New("title is nil")
	}
	t.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE titles
         SET name = ?, author = ?, status = ?, total_chapters = ?, published_chapters = ?,
             drive_link = ?, cover_image_url = ?, is_joint = ?, available_stage_types = ?, updated_at = ?
         WHERE id = ?`,
		t.Name,
		nullableString(t.Author),
		string(t.Status),
		t.TotalChapters,
		t.PublishedChapters,
		nullableString(t.DriveLink),
		nullableString(t.CoverImageURL),
		boolToInt(t.IsJoint),
		nullableString(encodeStageSet(t.AvailableStageTypes)),
		t.UpdatedAt.Format(time.RFC3339Nano),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("title %s not found", t.ID)
	}
	s.notify(ctx, CollectionTitles)
	return nil
}

// ListTitles returns every title ordered by name.
func (s *Store) ListTitles(ctx context.Context) ([]*workflow.Title, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+titleColumns+` FROM titles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}
	defer rows.Close()

	var titles []*workflow.Title
	for rows.Next() {
		title, err := scanTitle(rows)
		if err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

func encodeStageSet(set workflow.StageSet) string {
	normalized := set.Normalize()
	if len(normalized) == 0 {
		return ""
	}
	return strings.Join(normalized.Strings(), ",")
}

func decodeStageSet(raw string) workflow.StageSet {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	set := make(workflow.StageSet, 0, len(parts))
	for _, part := range parts {
		if stage, ok := workflow.ParseStage(part); ok {
			set = append(set, stage)
		}
	}
	return set.Normalize()
}

func scanTitle(scanner interface{ Scan(dest ...any) error }) (*workflow.Title, error) {
	var (
		id         string
		name       string
		author     sql.NullString
		status     string
		total      int
		published  int
		driveLink  sql.NullString
		coverURL   sql.NullString
		isJoint    sql.NullInt64
		stageTypes sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &name, &author, &status, &total, &published, &driveLink, &coverURL, &isJoint, &stageTypes, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	title := &workflow.Title{
		ID:                  id,
		Name:                name,
		Author:              author.String,
		Status:              workflow.TitleStatus(status),
		TotalChapters:       total,
		PublishedChapters:   published,
		DriveLink:           driveLink.String,
		CoverImageURL:       coverURL.String,
		IsJoint:             isJoint.Valid && isJoint.Int64 != 0,
		AvailableStageTypes: decodeStageSet(stageTypes.String),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		title.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		title.UpdatedAt = updated
	}
	return title, nil
}
