package store_test

import (
	"context"
	"testing"

	"pearl/internal/store"
	"pearl/internal/testsupport"
	"pearl/internal/workflow"
)

func TestSubscribeDeliversFullSnapshots(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	title := testsupport.NewTitle(t, st, "Serial G")

	var snapshots []store.Snapshot
	cancel := st.Subscribe(store.CollectionAssignments, func(snap store.Snapshot) {
		snapshots = append(snapshots, snap)
	})
	defer cancel()

	if _, err := st.CreateAssignment(ctx, &workflow.Assignment{
		TitleID:       title.ID,
		ChapterNumber: "1",
		Stage:         workflow.StageTranslation,
	}); err != nil {
		t.Fatalf("CreateAssignment failed: %v", err)
	}
	if _, err := st.CreateAssignment(ctx, &workflow.Assignment{
		TitleID:       title.ID,
		ChapterNumber: "1",
		Stage:         workflow.StageProofreading,
	}); err != nil {
		t.Fatalf("CreateAssignment failed: %v", err)
	}

	if len(snapshots) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(snapshots))
	}
	// Snapshots are full state, not deltas.
	if len(snapshots[0].Assignments) != 1 || len(snapshots[1].Assignments) != 2 {
		t.Fatalf("expected growing full snapshots, got %d then %d",
			len(snapshots[0].Assignments), len(snapshots[1].Assignments))
	}
}

func TestSubscribeScopedToCollection(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	calls := 0
	cancel := st.Subscribe(store.CollectionChapters, func(store.Snapshot) {
		calls++
	})
	defer cancel()

	title := testsupport.NewTitle(t, st, "Serial H")
	if _, err := st.CreateAssignment(ctx, &workflow.Assignment{
		TitleID:       title.ID,
		ChapterNumber: "1",
		Stage:         workflow.StageTranslation,
	}); err != nil {
		t.Fatalf("CreateAssignment failed: %v", err)
	}
	if calls != 0 {
		t.Fatalf("assignment write leaked into chapter subscription (%d calls)", calls)
	}

	if _, err := st.CreateChapter(ctx, &workflow.Chapter{TitleID: title.ID, ChapterNumber: "2"}); err != nil {
		t.Fatalf("CreateChapter failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 chapter delivery, got %d", calls)
	}
}

func TestUnsubscribeStopsDeliveries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	calls := 0
	cancel := st.Subscribe(store.CollectionTitles, func(store.Snapshot) {
		calls++
	})

	testsupport.NewTitle(t, st, "Serial I")
	cancel()
	testsupport.NewTitle(t, st, "Serial J")

	if calls != 1 {
		t.Fatalf("expected 1 delivery after unsubscribe, got %d", calls)
	}

	// Cascades notify both affected collections.
	title := testsupport.NewTitle(t, st, "Serial K")
	if _, err := st.CreateChapter(ctx, &workflow.Chapter{TitleID: title.ID, ChapterNumber: "1"}); err != nil {
		t.Fatalf("CreateChapter failed: %v", err)
	}
	chapterCalls := 0
	assignmentCalls := 0
	defer st.Subscribe(store.CollectionChapters, func(store.Snapshot) { chapterCalls++ })()
	defer st.Subscribe(store.CollectionAssignments, func(store.Snapshot) { assignmentCalls++ })()
	if _, err := st.DeleteChapterCascade(ctx, title.ID, "1"); err != nil {
		t.Fatalf("DeleteChapterCascade failed: %v", err)
	}
	if chapterCalls != 1 || assignmentCalls != 1 {
		t.Fatalf("cascade should notify both collections, got chapters=%d assignments=%d", chapterCalls, assignmentCalls)
	}
}
