package workflow

// TitleProgress aggregates chapter states across a whole title.
type TitleProgress struct {
	TitleID           string
	TitleName         string
	TotalChapters     int
	TrackedChapters   int
	CompletedChapters int
	UploadedChapters  int
	InProgress        int
	Unassigned        int
	ProgressPercent   float64
}

// RollupTitle runs chapter aggregation across every chapter of the title
// and folds the results into completion counts. Completed and uploaded
// both count as done: upload is a later distribution step, not a more
// complete state. A title with no estimated chapter count reports zero
// percent rather than dividing by zero.
func RollupTitle(title *Title, assignments []*Assignment, chapters []*Chapter) TitleProgress {
	progress := TitleProgress{}
	if title != nil {
		progress.TitleID = title.ID
		progress.TitleName = title.Name
		progress.TotalChapters = title.TotalChapters
	}

	rows := ReconcileChapters(title, assignments, chapters, false)
	progress.TrackedChapters = len(rows)
	for _, row := range rows {
		switch row.Aggregate.State {
		case ChapterStateUploaded:
			progress.UploadedChapters++
			progress.CompletedChapters++
		case ChapterStateCompleted:
			progress.CompletedChapters++
		case ChapterStateInProgress:
			progress.InProgress++
		default:
			progress.Unassigned++
		}
	}

	if progress.TotalChapters > 0 {
		progress.ProgressPercent = float64(progress.CompletedChapters) / float64(progress.TotalChapters) * 100
	}
	return progress
}
