package tracker

import (
	"context"
	"errors"
	"strings"

	"pearl/internal/logging"
	"pearl/internal/store"
	"pearl/internal/workflow"
)

// CreateTitleParams carries the fields of a new tracked title.
type CreateTitleParams struct {
	Name            string
	Author          string
	Status          string
	TotalChapters   int
	DriveLink       string
	CoverImageURL   string
	IsJoint         bool
	AvailableStages []string
}

// CreateTitle records a new work in the catalogue. Chiefs only. Joint titles
// may restrict the stage pipeline to the subset this group is responsible
// for; the restriction is meaningless on non-joint titles and is dropped.
func (s *Service) CreateTitle(ctx context.Context, actorID string, params CreateTitleParams) (*workflow.Title, error) {
	const op = "create-title"
	_, actor, err := s.resolveActor(ctx, op, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanManageAssignments() {
		return nil, Wrap(ErrPermission, "tracker", op, "catalogue changes require management rights", nil)
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, Wrap(ErrValidation, "tracker", op, "title requires a name", nil)
	}

	title := &workflow.Title{
		Name:          strings.TrimSpace(params.Name),
		Author:        strings.TrimSpace(params.Author),
		TotalChapters: params.TotalChapters,
		DriveLink:     params.DriveLink,
		CoverImageURL: params.CoverImageURL,
		IsJoint:       params.IsJoint,
	}
	if params.Status != "" {
		status, ok := workflow.ParseTitleStatus(params.Status)
		if !ok {
			return nil, Wrap(ErrValidation, "tracker", op, "unknown title status "+params.Status, nil)
		}
		title.Status = status
	}
	if params.IsJoint {
		stages := make(workflow.StageSet, 0, len(params.AvailableStages))
		for _, raw := range params.AvailableStages {
			stage, ok := workflow.ParseStage(raw)
			if !ok {
				return nil, Wrap(ErrValidation, "tracker", op, "unknown stage "+raw, nil)
			}
			stages = append(stages, stage)
		}
		title.AvailableStageTypes = stages.Normalize()
	}

	stored, err := s.store.CreateTitle(ctx, title)
	if err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "", err)
	}
	s.logger.Info("title created", logging.Args(
		logging.String(logging.FieldTitleID, stored.ID),
		logging.String("name", stored.Name),
		logging.Bool("joint", stored.IsJoint),
	)...)
	return stored, nil
}

// CreateChapterParams carries the fields of a new chapter record.
type CreateChapterParams struct {
	TitleID       string
	ChapterNumber string
	DriveLink     string
	Notes         string
}

// CreateChapter records chapter metadata independent of any assignments, so
// a chapter can be announced before it is staffed. Chiefs only.
func (s *Service) CreateChapter(ctx context.Context, actorID string, params CreateChapterParams) (*workflow.Chapter, error) {
	const op = "create-chapter"
	_, actor, err := s.resolveActor(ctx, op, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanManageAssignments() {
		return nil, Wrap(ErrPermission, "tracker", op, "chapter changes require management rights", nil)
	}
	title, err := s.store.GetTitle(ctx, params.TitleID)
	if err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "load title", err)
	}
	if title == nil {
		return nil, Wrap(ErrNotFound, "tracker", op, "title "+params.TitleID+" not found", nil)
	}

	chapter := &workflow.Chapter{
		TitleID:       title.ID,
		ChapterNumber: params.ChapterNumber,
		DriveLink:     params.DriveLink,
		Notes:         params.Notes,
	}
	stored, err := s.store.CreateChapter(ctx, chapter)
	if err != nil {
		return nil, Wrap(ErrValidation, "tracker", op, "", err)
	}
	s.logger.Info("chapter created", logging.Args(
		logging.String(logging.FieldTitleID, stored.TitleID),
		logging.String(logging.FieldChapter, stored.ChapterNumber),
	)...)
	return stored, nil
}

// SaveChapterParams carries an explicit chapter save. Status is the manual
// label; when DeriveStatus is set the label is recomputed from the current
// assignment aggregate instead. Nil pointers leave stored fields untouched.
type SaveChapterParams struct {
	DriveLink    *string
	Notes        *string
	Status       string
	DeriveStatus bool
}

// SaveChapter is the one write path that may change a chapter's manual
// status label. Assignment changes never touch it; only this explicit save
// does, either to a label the chief chose or, on request, to one derived
// from the assignment aggregate.
func (s *Service) SaveChapter(ctx context.Context, actorID, titleID, chapterNumber string, params SaveChapterParams) (*workflow.Chapter, error) {
	const op = "save-chapter"
	_, actor, err := s.resolveActor(ctx, op, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanManageAssignments() {
		return nil, Wrap(ErrPermission, "tracker", op, "chapter changes require management rights", nil)
	}
	chapter, err := s.store.GetChapter(ctx, titleID, chapterNumber)
	if err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "load chapter", err)
	}
	if chapter == nil {
		return nil, Wrap(ErrNotFound, "tracker", op, "chapter "+chapterNumber+" of title "+titleID+" not found", nil)
	}

	if params.DriveLink != nil {
		chapter.DriveLink = *params.DriveLink
	}
	if params.Notes != nil {
		chapter.Notes = *params.Notes
	}
	switch {
	case params.DeriveStatus:
		label, err := s.deriveChapterStatus(ctx, op, titleID, chapterNumber)
		if err != nil {
			return nil, err
		}
		chapter.Status = label
	case params.Status != "":
		status, ok := workflow.ParseChapterStatus(params.Status)
		if !ok {
			return nil, Wrap(ErrValidation, "tracker", op, "unknown chapter status "+params.Status, nil)
		}
		chapter.Status = status
	}

	if err := s.store.UpdateChapter(ctx, chapter); err != nil {
		return nil, Wrap(ErrPersistence, "tracker", op, "", err)
	}
	s.logger.Info("chapter saved", logging.Args(
		logging.String(logging.FieldTitleID, chapter.TitleID),
		logging.String(logging.FieldChapter, chapter.ChapterNumber),
		logging.String("status", string(chapter.Status)),
	)...)
	return chapter, nil
}

func (s *Service) deriveChapterStatus(ctx context.Context, op, titleID, chapterNumber string) (workflow.ChapterStatus, error) {
	title, err := s.store.GetTitle(ctx, titleID)
	if err != nil {
		return "", Wrap(ErrPersistence, "tracker", op, "load title", err)
	}
	assignments, err := s.store.AssignmentsForChapter(ctx, titleID, chapterNumber)
	if err != nil {
		return "", Wrap(ErrPersistence, "tracker", op, "load assignments", err)
	}
	state := workflow.AggregateChapter(assignments, title.RequiredStages())
	switch state {
	case workflow.ChapterStateUploaded:
		return workflow.ChapterUploaded, nil
	case workflow.ChapterStateCompleted, workflow.ChapterStateInProgress:
		return workflow.ChapterEnProgreso, nil
	default:
		return workflow.ChapterCreated, nil
	}
}

// DeleteChapter removes a chapter record together with every assignment of
// that chapter in one transaction. Chiefs only.
func (s *Service) DeleteChapter(ctx context.Context, actorID, titleID, chapterNumber string) (store.DeleteChapterResult, error) {
	const op = "delete-chapter"
	_, actor, err := s.resolveActor(ctx, op, actorID)
	if err != nil {
		return store.DeleteChapterResult{}, err
	}
	if !actor.Role.CanManageAssignments() {
		return store.DeleteChapterResult{}, Wrap(ErrPermission, "tracker", op, "chapter changes require management rights", nil)
	}

	result, err := s.store.DeleteChapterCascade(ctx, titleID, chapterNumber)
	if err != nil {
		marker := ErrPersistence
		if errors.Is(err, store.ErrPartialApply) {
			marker = ErrConsistency
		}
		return result, Wrap(marker, "tracker", op, "", err)
	}
	s.logger.Info("chapter deleted", logging.Args(
		logging.String(logging.FieldTitleID, titleID),
		logging.String(logging.FieldChapter, chapterNumber),
		logging.Int64("assignments_removed", result.AssignmentsRemoved),
		logging.Bool("record_removed", result.ChapterRemoved),
	)...)
	return result, nil
}
