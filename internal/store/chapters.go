package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pearl/internal/workflow"
)

const chapterColumns = "title_id, chapter_number, drive_link, notes, status, created_at, updated_at"

// CreateChapter inserts an independent chapter record. Chapters exist
// independently of assignments; creating one for an unstaffed chapter is
// the normal announcement flow.
func (s *Store) CreateChapter(ctx context.Context, ch *workflow.Chapter) (*workflow.Chapter, error) {
	if ch == nil {
		return nil, errors.New("chapter is nil")
	}
	if ch.TitleID == "" {
		return nil, errors.New("chapter requires a title")
	}
	normalized, err := workflow.ParseChapterNumber(ch.ChapterNumber)
	if err != nil {
		return nil, err
	}
	ch.ChapterNumber = normalized
	if ch.Status == "" {
		ch.Status = workflow.ChapterCreated
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO chapters (`+chapterColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ch.TitleID,
		ch.ChapterNumber,
		nullableString(ch.DriveLink),
		nullableString(ch.Notes),
		string(ch.Status),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chapter: %w", err)
	}

	stored, err := s.GetChapter(ctx, ch.TitleID, ch.ChapterNumber)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, CollectionChapters)
	return stored, nil
}

// GetChapter fetches a chapter record. A missing row returns nil without error.
func (s *Store) GetChapter(ctx context.Context, titleID, chapterNumber string) (*workflow.Chapter, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+chapterColumns+` FROM chapters WHERE title_id = ? AND chapter_number = ?`,
		titleID, chapterNumber,
	)
	chapter, err := scanChapter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	return chapter, nil
}

// UpdateChapter persists changes to an existing chapter record. This is the
// explicit save-chapter action; it is the only path that may change the
// stored manual status label.
func (s *Store) UpdateChapter(ctx context.Context, ch *workflow.Chapter) error {
	if ch == nil {
		return errors.New("chapter is nil")
	}
	ch.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE chapters
         SET drive_link = ?, notes = ?, status = ?, updated_at = ?
         WHERE title_id = ? AND chapter_number = ?`,
		nullableString(ch.DriveLink),
		nullableString(ch.Notes),
		string(ch.Status),
		ch.UpdatedAt.Format(time.RFC3339Nano),
		ch.TitleID,
		ch.ChapterNumber,
	)
	if err != nil {
		return fmt.Errorf("update chapter: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("chapter %s/%s not found", ch.TitleID, ch.ChapterNumber)
	}
	s.notify(ctx, CollectionChapters)
	return nil
}

// ChaptersForTitle returns every chapter record of a title.
func (s *Store) ChaptersForTitle(ctx context.Context, titleID string) ([]*workflow.Chapter, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+chapterColumns+` FROM chapters WHERE title_id = ? ORDER BY chapter_number`,
		titleID,
	)
	if err != nil {
		return nil, fmt.Errorf("query chapters: %w", err)
	}
	defer rows.Close()

	var chapters []*workflow.Chapter
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, chapter)
	}
	return chapters, rows.Err()
}

func scanChapter(scanner interface{ Scan(dest ...any) error }) (*workflow.Chapter, error) {
	var (
		titleID       string
		chapterNumber string
		driveLink     sql.NullString
		notes         sql.NullString
		status        string
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)
	if err := scanner.Scan(&titleID, &chapterNumber, &driveLink, &notes, &status, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	chapter := &workflow.Chapter{
		TitleID:       titleID,
		ChapterNumber: chapterNumber,
		DriveLink:     driveLink.String,
		Notes:         notes.String,
		Status:        workflow.ChapterStatus(status),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		chapter.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		chapter.UpdatedAt = updated
	}
	return chapter, nil
}
