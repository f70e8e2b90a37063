package store_test

import (
	"context"
	"testing"

	"pearl/internal/roles"
	"pearl/internal/store"
	"pearl/internal/testsupport"
	"pearl/internal/workflow"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	title, err := st.CreateTitle(ctx, &workflow.Title{Name: "One Pearl", Author: "Ayumi", TotalChapters: 24})
	if err != nil {
		t.Fatalf("CreateTitle failed: %v", err)
	}
	if title.ID == "" {
		t.Fatal("expected title ID to be assigned")
	}

	fetched, err := st.GetTitle(ctx, title.ID)
	if err != nil {
		t.Fatalf("GetTitle failed: %v", err)
	}
	if fetched == nil || fetched.Name != "One Pearl" {
		t.Fatalf("unexpected fetched title: %#v", fetched)
	}
}

func TestAssignmentRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	title := testsupport.NewTitle(t, st, "Serial A")
	worker := testsupport.NewUser(t, st, "mika tanaka", roles.RoleTraductor)

	created, err := st.CreateAssignment(ctx, &workflow.Assignment{
		TitleID:       title.ID,
		TitleName:     title.Name,
		ChapterNumber: "7.2",
		Stage:         workflow.StageTranslation,
	})
	if err != nil {
		t.Fatalf("CreateAssignment failed: %v", err)
	}
	if created.Status != workflow.StatusUnassigned {
		t.Fatalf("fresh assignment should be unassigned, got %s", created.Status)
	}

	created.SetAssignee(worker.ID, worker.Name)
	if err := st.UpdateAssignment(ctx, created); err != nil {
		t.Fatalf("UpdateAssignment failed: %v", err)
	}

	fetched, err := st.GetAssignment(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetAssignment failed: %v", err)
	}
	if fetched.Status != workflow.StatusPending {
		t.Fatalf("expected pending, got %s", fetched.Status)
	}
	if fetched.AssignedUserName != "Mika Tanaka" {
		t.Fatalf("expected normalized snapshot name, got %q", fetched.AssignedUserName)
	}

	chapter, err := st.AssignmentsForChapter(ctx, title.ID, "7.2")
	if err != nil {
		t.Fatalf("AssignmentsForChapter failed: %v", err)
	}
	if len(chapter) != 1 || chapter[0].ID != created.ID {
		t.Fatalf("unexpected chapter assignments: %#v", chapter)
	}
}

func TestAssignmentStageSlotIsUnique(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	title := testsupport.NewTitle(t, st, "Serial B")
	if _, err := st.CreateAssignment(ctx, &workflow.Assignment{
		TitleID:       title.ID,
		TitleName:     title.Name,
		ChapterNumber: "4",
		Stage:         workflow.StageTranslation,
	}); err != nil {
		t.Fatalf("CreateAssignment failed: %v", err)
	}

	// A second row for the same stage of the same chapter must be rejected.
	if _, err := st.CreateAssignment(ctx, &workflow.Assignment{
		TitleID:       title.ID,
		TitleName:     title.Name,
		ChapterNumber: "4",
		Stage:         workflow.StageTranslation,
	}); err == nil {
		t.Fatal("expected duplicate stage insert to fail")
	}

	// Other stages and other chapters remain open.
	if _, err := st.CreateAssignment(ctx, &workflow.Assignment{
		TitleID:       title.ID,
		TitleName:     title.Name,
		ChapterNumber: "4",
		Stage:         workflow.StageProofreading,
	}); err != nil {
		t.Fatalf("sibling stage insert failed: %v", err)
	}
	if _, err := st.CreateAssignment(ctx, &workflow.Assignment{
		TitleID:       title.ID,
		TitleName:     title.Name,
		ChapterNumber: "5",
		Stage:         workflow.StageTranslation,
	}); err != nil {
		t.Fatalf("next chapter insert failed: %v", err)
	}
}

func TestCreateAssignmentRejectsInvalid(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := st.CreateAssignment(ctx, &workflow.Assignment{
		TitleID:       "t1",
		ChapterNumber: "not-a-number",
		Stage:         workflow.StageTranslation,
	}); err == nil {
		t.Fatal("expected rejection of malformed chapter number")
	}

	if _, err := st.CreateAssignment(ctx, &workflow.Assignment{
		TitleID:       "t1",
		ChapterNumber: "5",
		Stage:         "lettering",
	}); err == nil {
		t.Fatal("expected rejection of unknown stage")
	}
}

func TestChapterRecordIndependence(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	title := testsupport.NewTitle(t, st, "Serial B")
	chapter, err := st.CreateChapter(ctx, &workflow.Chapter{
		TitleID:       title.ID,
		ChapterNumber: "12",
		Notes:         "announced, unstaffed",
	})
	if err != nil {
		t.Fatalf("CreateChapter failed: %v", err)
	}
	if chapter.Status != workflow.ChapterCreated {
		t.Fatalf("expected created status, got %s", chapter.Status)
	}

	assignments, err := st.AssignmentsForChapter(ctx, title.ID, "12")
	if err != nil {
		t.Fatalf("AssignmentsForChapter failed: %v", err)
	}
	if len(assignments) != 0 {
		t.Fatal("announced chapter should have no assignments")
	}

	chapter.Status = workflow.ChapterEnProgreso
	chapter.Notes = "picked up"
	if err := st.UpdateChapter(ctx, chapter); err != nil {
		t.Fatalf("UpdateChapter failed: %v", err)
	}
	fetched, err := st.GetChapter(ctx, title.ID, "12")
	if err != nil {
		t.Fatalf("GetChapter failed: %v", err)
	}
	if fetched.Status != workflow.ChapterEnProgreso || fetched.Notes != "picked up" {
		t.Fatalf("unexpected chapter after update: %#v", fetched)
	}
}

func TestJointStageSetRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	title, err := st.CreateTitle(ctx, &workflow.Title{
		Name:                "Joint Serial",
		IsJoint:             true,
		AvailableStageTypes: workflow.StageSet{workflow.StageTypesetting, workflow.StageCleanRedrawer},
	})
	if err != nil {
		t.Fatalf("CreateTitle failed: %v", err)
	}

	fetched, err := st.GetTitle(ctx, title.ID)
	if err != nil {
		t.Fatalf("GetTitle failed: %v", err)
	}
	required := fetched.RequiredStages()
	if len(required) != 2 || required[0] != workflow.StageCleanRedrawer || required[1] != workflow.StageTypesetting {
		t.Fatalf("unexpected required stages after round trip: %v", required)
	}
}

func TestSecondOpenBlockedByLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_ = testsupport.MustOpenStore(t, cfg)

	if _, err := store.Open(cfg); err == nil {
		t.Fatal("expected second open on the same workspace to fail")
	}
}

func TestHealthCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	title := testsupport.NewTitle(t, st, "Serial C")
	worker := testsupport.NewUser(t, st, "worker", roles.RoleEditor)

	a, err := st.CreateAssignment(ctx, &workflow.Assignment{
		TitleID:       title.ID,
		ChapterNumber: "1",
		Stage:         workflow.StageTranslation,
	})
	if err != nil {
		t.Fatalf("CreateAssignment failed: %v", err)
	}
	a.SetAssignee(worker.ID, worker.Name)
	a.Status = workflow.StatusCompleted
	if err := st.UpdateAssignment(ctx, a); err != nil {
		t.Fatalf("UpdateAssignment failed: %v", err)
	}

	health, err := st.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Titles != 1 || health.Users != 1 || health.Assignments != 1 {
		t.Fatalf("unexpected counts: %+v", health)
	}
	if health.Done != 1 {
		t.Fatalf("expected 1 done assignment, got %+v", health)
	}
}
