package workflow

import "sort"

// ChapterRow reconciles the independent chapter record with the
// assignment-derived aggregate for one chapter number. The stored
// Chapter.Status is a manual convenience label; Aggregate.State is the
// authoritative answer to "is this chapter done".
type ChapterRow struct {
	ChapterNumber string
	Chapter       *Chapter
	Aggregate     ChapterAggregate
	Assignments   []*Assignment
}

// ReconcileChapters lists every chapter of a title: the union of chapter
// numbers appearing in the assignment set and the chapter record set,
// ordered numerically. A chapter announced before staffing (record, no
// assignments) and a chapter staffed before announcement (assignments, no
// record) both appear.
func ReconcileChapters(title *Title, assignments []*Assignment, chapters []*Chapter, canManage bool) []ChapterRow {
	required := title.RequiredStages()

	byNumber := make(map[string][]*Assignment)
	for _, a := range assignments {
		if a == nil || (title != nil && a.TitleID != title.ID) {
			continue
		}
		byNumber[a.ChapterNumber] = append(byNumber[a.ChapterNumber], a)
	}

	records := make(map[string]*Chapter)
	for _, ch := range chapters {
		if ch == nil || (title != nil && ch.TitleID != title.ID) {
			continue
		}
		records[ch.ChapterNumber] = ch
	}

	numbers := make([]string, 0, len(byNumber)+len(records))
	seen := make(map[string]struct{}, len(byNumber)+len(records))
	for number := range byNumber {
		if _, ok := seen[number]; !ok {
			seen[number] = struct{}{}
			numbers = append(numbers, number)
		}
	}
	for number := range records {
		if _, ok := seen[number]; !ok {
			seen[number] = struct{}{}
			numbers = append(numbers, number)
		}
	}
	sort.Slice(numbers, func(i, j int) bool {
		vi, vj := ChapterNumberValue(numbers[i]), ChapterNumberValue(numbers[j])
		if vi == vj {
			return numbers[i] < numbers[j]
		}
		return vi < vj
	})

	titleID := ""
	if title != nil {
		titleID = title.ID
	}
	rows := make([]ChapterRow, 0, len(numbers))
	for _, number := range numbers {
		chapterAssignments := byNumber[number]
		rows = append(rows, ChapterRow{
			ChapterNumber: number,
			Chapter:       records[number],
			Aggregate:     BuildAggregate(titleID, number, chapterAssignments, required, canManage),
			Assignments:   chapterAssignments,
		})
	}
	return rows
}
