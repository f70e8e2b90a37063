package workflow_test

import (
	"fmt"
	"testing"

	"pearl/internal/workflow"
)

func stageAssignment(stage workflow.StageType, userID string, status workflow.Status) *workflow.Assignment {
	return &workflow.Assignment{
		ID:             fmt.Sprintf("a-%s", stage),
		TitleID:        "title-1",
		ChapterNumber:  "5",
		Stage:          stage,
		AssignedUserID: userID,
		Status:         status,
	}
}

func TestAggregatePartialCoverageNeverCompleted(t *testing.T) {
	// One of four required stages exists and is finished. The chapter is
	// in progress, not done.
	assignments := []*workflow.Assignment{
		stageAssignment(workflow.StageTranslation, "u1", workflow.StatusCompleted),
	}
	state := workflow.AggregateChapter(assignments, workflow.FullStageSet())
	if state != workflow.ChapterStateInProgress {
		t.Fatalf("expected in_progress, got %s", state)
	}

	// Same with three of four, all uploaded.
	assignments = []*workflow.Assignment{
		stageAssignment(workflow.StageTranslation, "u1", workflow.StatusUploaded),
		stageAssignment(workflow.StageProofreading, "u2", workflow.StatusUploaded),
		stageAssignment(workflow.StageCleanRedrawer, "u3", workflow.StatusUploaded),
	}
	state = workflow.AggregateChapter(assignments, workflow.FullStageSet())
	if state != workflow.ChapterStateInProgress {
		t.Fatalf("expected in_progress with 3/4 stages, got %s", state)
	}
}

func TestAggregateRequiresAllAssigned(t *testing.T) {
	assignments := []*workflow.Assignment{
		stageAssignment(workflow.StageTranslation, "u1", workflow.StatusCompleted),
		stageAssignment(workflow.StageProofreading, "u2", workflow.StatusCompleted),
		stageAssignment(workflow.StageCleanRedrawer, "u3", workflow.StatusCompleted),
		stageAssignment(workflow.StageTypesetting, "", workflow.StatusUnassigned),
	}
	state := workflow.AggregateChapter(assignments, workflow.FullStageSet())
	if state != workflow.ChapterStateInProgress {
		t.Fatalf("expected in_progress with one unassigned stage, got %s", state)
	}
}

func TestAggregateDuplicateStagesDoNotFakeCoverage(t *testing.T) {
	// Four completed assignments that span only two distinct stages. The
	// other two required stages were never created, so the chapter must
	// stay in progress no matter how many rows the done stages carry.
	assignments := []*workflow.Assignment{
		stageAssignment(workflow.StageTranslation, "u1", workflow.StatusCompleted),
		stageAssignment(workflow.StageTranslation, "u2", workflow.StatusCompleted),
		stageAssignment(workflow.StageProofreading, "u3", workflow.StatusCompleted),
		stageAssignment(workflow.StageProofreading, "u4", workflow.StatusCompleted),
	}
	if state := workflow.AggregateChapter(assignments, workflow.FullStageSet()); state != workflow.ChapterStateInProgress {
		t.Fatalf("duplicate stages counted as coverage: expected in_progress, got %s", state)
	}

	agg := workflow.BuildAggregate("title-1", "5", assignments, workflow.FullStageSet(), true)
	if agg.Relevant != 2 || agg.Assigned != 2 {
		t.Fatalf("counts must be per distinct stage: %+v", agg)
	}
}

func TestAggregateCompletedAndUploaded(t *testing.T) {
	assignments := []*workflow.Assignment{
		stageAssignment(workflow.StageTranslation, "u1", workflow.StatusCompleted),
		stageAssignment(workflow.StageProofreading, "u2", workflow.StatusApproved),
		stageAssignment(workflow.StageCleanRedrawer, "u3", workflow.StatusCompleted),
		stageAssignment(workflow.StageTypesetting, "u4", workflow.StatusCompleted),
	}
	if state := workflow.AggregateChapter(assignments, workflow.FullStageSet()); state != workflow.ChapterStateCompleted {
		t.Fatalf("expected completed (approved counts as done), got %s", state)
	}

	for _, a := range assignments {
		a.Status = workflow.StatusUploaded
	}
	if state := workflow.AggregateChapter(assignments, workflow.FullStageSet()); state != workflow.ChapterStateUploaded {
		t.Fatalf("expected uploaded to outrank completed, got %s", state)
	}
}

func TestAggregateJointTitleRestriction(t *testing.T) {
	required := workflow.StageSet{workflow.StageCleanRedrawer, workflow.StageTypesetting}
	assignments := []*workflow.Assignment{
		stageAssignment(workflow.StageCleanRedrawer, "u1", workflow.StatusCompleted),
		stageAssignment(workflow.StageTypesetting, "u2", workflow.StatusCompleted),
	}
	if state := workflow.AggregateChapter(assignments, required); state != workflow.ChapterStateCompleted {
		t.Fatalf("joint title with both required stages done: expected completed, got %s", state)
	}

	// A stale translation assignment must be ignored for a joint title.
	assignments = append(assignments, stageAssignment(workflow.StageTranslation, "u3", workflow.StatusPending))
	if state := workflow.AggregateChapter(assignments, required); state != workflow.ChapterStateCompleted {
		t.Fatalf("stale off-set assignment changed the aggregate: got %s", state)
	}
}

func TestAggregateUnassigned(t *testing.T) {
	if state := workflow.AggregateChapter(nil, workflow.FullStageSet()); state != workflow.ChapterStateUnassigned {
		t.Fatalf("empty assignment set: expected unassigned, got %s", state)
	}

	assignments := []*workflow.Assignment{
		stageAssignment(workflow.StageTranslation, "", workflow.StatusUnassigned),
		stageAssignment(workflow.StageProofreading, "", workflow.StatusUnassigned),
	}
	if state := workflow.AggregateChapter(assignments, workflow.FullStageSet()); state != workflow.ChapterStateUnassigned {
		t.Fatalf("no assigned stages: expected unassigned, got %s", state)
	}
}

func TestAggregateIsPure(t *testing.T) {
	assignments := []*workflow.Assignment{
		stageAssignment(workflow.StageTranslation, "u1", workflow.StatusPending),
		stageAssignment(workflow.StageProofreading, "u2", workflow.StatusCompleted),
	}
	first := workflow.AggregateChapter(assignments, workflow.FullStageSet())
	for i := 0; i < 10; i++ {
		if again := workflow.AggregateChapter(assignments, workflow.FullStageSet()); again != first {
			t.Fatalf("iteration %d: aggregate changed from %s to %s", i, first, again)
		}
	}
	if assignments[0].Status != workflow.StatusPending || assignments[1].Status != workflow.StatusCompleted {
		t.Fatal("aggregation mutated its inputs")
	}
}

func TestBuildAggregateCells(t *testing.T) {
	required := workflow.StageSet{workflow.StageCleanRedrawer, workflow.StageTypesetting}
	assignments := []*workflow.Assignment{
		stageAssignment(workflow.StageCleanRedrawer, "u1", workflow.StatusPending),
		stageAssignment(workflow.StageTypesetting, "", workflow.StatusUnassigned),
	}
	agg := workflow.BuildAggregate("title-1", "5", assignments, required, true)

	if agg.Required != 2 || agg.Relevant != 2 || agg.Assigned != 1 {
		t.Fatalf("unexpected counts: %+v", agg)
	}
	byStage := make(map[workflow.StageType]workflow.StageCell)
	for _, cell := range agg.Cells {
		byStage[cell.Stage] = cell
	}
	if byStage[workflow.StageTranslation].Action != workflow.CellNotApplicable {
		t.Fatalf("translation cell: expected not_applicable, got %s", byStage[workflow.StageTranslation].Action)
	}
	if byStage[workflow.StageCleanRedrawer].Action != workflow.CellAssigned {
		t.Fatalf("clean cell: expected assigned, got %s", byStage[workflow.StageCleanRedrawer].Action)
	}
	if byStage[workflow.StageTypesetting].Action != workflow.CellAssign {
		t.Fatalf("typesetting cell: expected assign, got %s", byStage[workflow.StageTypesetting].Action)
	}
	if !byStage[workflow.StageTypesetting].Actionable {
		t.Fatal("manager should be able to act on an unheld stage")
	}

	viewer := workflow.BuildAggregate("title-1", "5", assignments, required, false)
	for _, cell := range viewer.Cells {
		if cell.Actionable {
			t.Fatalf("non-manager cell %s should be read-only", cell.Stage)
		}
	}
	if viewer.State != agg.State {
		t.Fatal("viewer capability must not change the aggregate state")
	}
}

func TestBuildAggregateMissingStageCell(t *testing.T) {
	agg := workflow.BuildAggregate("title-1", "5", nil, workflow.FullStageSet(), true)
	for _, cell := range agg.Cells {
		if cell.Action != workflow.CellCreate {
			t.Fatalf("stage %s: expected create, got %s", cell.Stage, cell.Action)
		}
	}
}
