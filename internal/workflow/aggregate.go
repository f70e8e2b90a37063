package workflow

// ChapterState is the derived overall status of a chapter.
type ChapterState string

const (
	ChapterStateUnassigned ChapterState = "unassigned"
	ChapterStateInProgress ChapterState = "in_progress"
	ChapterStateCompleted  ChapterState = "completed"
	ChapterStateUploaded   ChapterState = "uploaded"
)

// CellAction says what a viewer can do with one stage slot of a chapter row.
type CellAction string

const (
	// CellNotApplicable marks stages a joint title does not require.
	CellNotApplicable CellAction = "not_applicable"
	// CellCreate means no assignment exists yet for the stage.
	CellCreate CellAction = "create"
	// CellAssign means an assignment exists but nobody holds it.
	CellAssign CellAction = "assign"
	// CellAssigned means a worker holds the stage.
	CellAssigned CellAction = "assigned"
)

// StageCell is the per-stage view of a chapter row.
type StageCell struct {
	Stage      StageType
	Action     CellAction
	Assignment *Assignment
	// Actionable is true when the viewer may act on the cell: managers can
	// create/assign/edit, everyone else gets a read-only label.
	Actionable bool
}

// ChapterAggregate is the full derivation result for one chapter.
type ChapterAggregate struct {
	TitleID       string
	ChapterNumber string
	State         ChapterState
	Cells         []StageCell
	// Relevant counts distinct required stages that have an assignment;
	// stale assignments for dropped stages are ignored.
	Relevant int
	Assigned int
	Required int
}

// AggregateChapter derives the display state of one chapter from its
// assignments and the title's required stage set.
//
// The derivation is pure: it never mutates its inputs and always returns
// the same result for the same inputs, so every subscriber re-running it
// on a snapshot converges to the same answer.
//
// A chapter only counts as completed or uploaded when every required stage
// has an assignment, every one of those is held by a worker, and every one
// is done. Coverage is judged per distinct stage, never by raw assignment
// counts: a lone finished stage out of four is in_progress, nothing more,
// and duplicate rows for one stage cannot stand in for a stage that was
// never created.
func AggregateChapter(assignments []*Assignment, required StageSet) ChapterState {
	required = effectiveRequired(required)

	byStage := foldByStage(assignments, required)
	anyAssigned := false
	for _, a := range assignments {
		if a == nil || !required.Contains(a.Stage) {
			continue
		}
		if a.AssignedUserID != "" && a.Status.IsAssigned() {
			anyAssigned = true
		}
	}

	covered := 0
	assigned := 0
	allUploaded := true
	allDone := true
	for _, stage := range required {
		a := byStage[stage]
		if a == nil {
			continue
		}
		covered++
		if a.AssignedUserID == "" || !a.Status.IsAssigned() {
			continue
		}
		assigned++
		if a.Status != StatusUploaded {
			allUploaded = false
		}
		if !a.Status.IsDone() {
			allDone = false
		}
	}

	requiredCount := len(required)
	fullCoverage := covered == requiredCount && assigned == requiredCount && requiredCount > 0
	switch {
	case fullCoverage && allUploaded:
		return ChapterStateUploaded
	case fullCoverage && allDone:
		return ChapterStateCompleted
	case anyAssigned:
		return ChapterStateInProgress
	default:
		return ChapterStateUnassigned
	}
}

// foldByStage reduces the assignment list to one assignment per required
// stage. Last write wins when duplicates exist for a stage; the store
// rejects duplicates, so this only matters for ad-hoc in-memory inputs.
func foldByStage(assignments []*Assignment, required StageSet) map[StageType]*Assignment {
	byStage := make(map[StageType]*Assignment, len(required))
	for _, a := range assignments {
		if a == nil || !required.Contains(a.Stage) {
			continue
		}
		byStage[a.Stage] = a
	}
	return byStage
}

// BuildAggregate computes the chapter state together with the per-stage
// cells a chapter board renders. canManage is the viewer's management
// capability and only affects cell actionability, never the state.
func BuildAggregate(titleID, chapterNumber string, assignments []*Assignment, required StageSet, canManage bool) ChapterAggregate {
	required = effectiveRequired(required)

	byStage := foldByStage(assignments, required)
	relevant := len(byStage)
	assigned := 0
	for _, a := range byStage {
		if a.AssignedUserID != "" && a.Status.IsAssigned() {
			assigned++
		}
	}

	cells := make([]StageCell, 0, len(AllStages()))
	for _, stage := range AllStages() {
		cell := StageCell{Stage: stage}
		switch {
		case !required.Contains(stage):
			cell.Action = CellNotApplicable
		case byStage[stage] == nil:
			cell.Action = CellCreate
			cell.Actionable = canManage
		case byStage[stage].AssignedUserID == "":
			cell.Action = CellAssign
			cell.Assignment = byStage[stage]
			cell.Actionable = canManage
		default:
			cell.Action = CellAssigned
			cell.Assignment = byStage[stage]
			cell.Actionable = canManage
		}
		cells = append(cells, cell)
	}

	return ChapterAggregate{
		TitleID:       titleID,
		ChapterNumber: chapterNumber,
		State:         AggregateChapter(assignments, required),
		Cells:         cells,
		Relevant:      relevant,
		Assigned:      assigned,
		Required:      len(required),
	}
}

func effectiveRequired(required StageSet) StageSet {
	normalized := required.Normalize()
	if len(normalized) == 0 {
		return FullStageSet()
	}
	return normalized
}
