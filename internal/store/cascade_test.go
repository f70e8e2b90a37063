package store_test

import (
	"context"
	"fmt"
	"testing"

	"pearl/internal/roles"
	"pearl/internal/testsupport"
	"pearl/internal/workflow"
)

func TestDeleteChapterCascade(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	title := testsupport.NewTitle(t, st, "Serial D")
	worker := testsupport.NewUser(t, st, "worker", roles.RoleEditor)

	for _, stage := range workflow.AllStages() {
		a, err := st.CreateAssignment(ctx, &workflow.Assignment{
			TitleID:       title.ID,
			ChapterNumber: "5",
			Stage:         stage,
		})
		if err != nil {
			t.Fatalf("CreateAssignment(%s) failed: %v", stage, err)
		}
		a.SetAssignee(worker.ID, worker.Name)
		if err := st.UpdateAssignment(ctx, a); err != nil {
			t.Fatalf("UpdateAssignment(%s) failed: %v", stage, err)
		}
	}
	if _, err := st.CreateChapter(ctx, &workflow.Chapter{TitleID: title.ID, ChapterNumber: "5"}); err != nil {
		t.Fatalf("CreateChapter failed: %v", err)
	}
	// An assignment on another chapter must survive the cascade.
	if _, err := st.CreateAssignment(ctx, &workflow.Assignment{
		TitleID:       title.ID,
		ChapterNumber: "6",
		Stage:         workflow.StageTranslation,
	}); err != nil {
		t.Fatalf("CreateAssignment(ch 6) failed: %v", err)
	}

	result, err := st.DeleteChapterCascade(ctx, title.ID, "5")
	if err != nil {
		t.Fatalf("DeleteChapterCascade failed: %v", err)
	}
	if !result.ChapterRemoved || result.AssignmentsRemoved != 4 {
		t.Fatalf("unexpected cascade result: %+v", result)
	}

	remaining, err := st.AssignmentsForTitle(ctx, title.ID)
	if err != nil {
		t.Fatalf("AssignmentsForTitle failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ChapterNumber != "6" {
		t.Fatalf("cascade touched the wrong rows: %#v", remaining)
	}
	chapter, err := st.GetChapter(ctx, title.ID, "5")
	if err != nil {
		t.Fatalf("GetChapter failed: %v", err)
	}
	if chapter != nil {
		t.Fatal("chapter record should be gone")
	}
}

func TestDeleteChapterCascadeWithoutRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	title := testsupport.NewTitle(t, st, "Serial E")
	if _, err := st.CreateAssignment(ctx, &workflow.Assignment{
		TitleID:       title.ID,
		ChapterNumber: "3",
		Stage:         workflow.StageTypesetting,
	}); err != nil {
		t.Fatalf("CreateAssignment failed: %v", err)
	}

	result, err := st.DeleteChapterCascade(ctx, title.ID, "3")
	if err != nil {
		t.Fatalf("DeleteChapterCascade failed: %v", err)
	}
	if result.ChapterRemoved || result.AssignmentsRemoved != 1 {
		t.Fatalf("unexpected cascade result: %+v", result)
	}

	if _, err := st.DeleteChapterCascade(ctx, title.ID, "3"); err == nil {
		t.Fatal("expected error deleting an unknown chapter")
	}
}

func TestTransferGhost(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	title := testsupport.NewTitle(t, st, "Serial F")
	ghost := testsupport.NewGhost(t, st, "old translator")
	target := testsupport.NewUser(t, st, "new translator", roles.RoleTraductor)

	statuses := []workflow.Status{workflow.StatusCompleted, workflow.StatusCompleted, workflow.StatusPending}
	for i, status := range statuses {
		a, err := st.CreateAssignment(ctx, &workflow.Assignment{
			TitleID:       title.ID,
			ChapterNumber: fmt.Sprintf("%d", i+1),
			Stage:         workflow.StageTranslation,
		})
		if err != nil {
			t.Fatalf("CreateAssignment failed: %v", err)
		}
		a.SetAssignee(ghost.ID, ghost.Name)
		a.Status = status
		if err := st.UpdateAssignment(ctx, a); err != nil {
			t.Fatalf("UpdateAssignment failed: %v", err)
		}
	}

	result, err := st.TransferGhost(ctx, ghost.ID, target.ID)
	if err != nil {
		t.Fatalf("TransferGhost failed: %v", err)
	}
	if result.AssignmentsMoved != 3 || result.CompletedMoved != 2 || result.ActiveMoved != 1 {
		t.Fatalf("unexpected transfer result: %+v", result)
	}

	moved, err := st.AssignmentsForUser(ctx, target.ID)
	if err != nil {
		t.Fatalf("AssignmentsForUser failed: %v", err)
	}
	if len(moved) != 3 {
		t.Fatalf("expected 3 moved assignments, got %d", len(moved))
	}
	for _, a := range moved {
		if a.AssignedUserName != target.Name {
			t.Fatalf("snapshot name not rewritten: %q", a.AssignedUserName)
		}
	}

	updatedTarget, err := st.GetUser(ctx, target.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if updatedTarget.Stats.CompletedCount != 2 || updatedTarget.Stats.ActiveCount != 1 {
		t.Fatalf("target stats not bumped: %+v", updatedTarget.Stats)
	}

	updatedGhost, err := st.GetUser(ctx, ghost.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if updatedGhost == nil {
		t.Fatal("ghost must be soft-deleted, not removed")
	}
	if updatedGhost.Status != workflow.UserDeleted {
		t.Fatalf("expected deleted status, got %s", updatedGhost.Status)
	}
}

func TestTransferGhostRejectsNonGhost(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := testsupport.NewUser(t, st, "real one", roles.RoleEditor)
	b := testsupport.NewUser(t, st, "real two", roles.RoleEditor)
	if _, err := st.TransferGhost(ctx, a.ID, b.ID); err == nil {
		t.Fatal("expected rejection when source is not a ghost")
	}

	ghost := testsupport.NewGhost(t, st, "ghost")
	other := testsupport.NewGhost(t, st, "other ghost")
	if _, err := st.TransferGhost(ctx, ghost.ID, other.ID); err == nil {
		t.Fatal("expected rejection when target is a ghost")
	}
}
