package workflow

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Assignment binds one production stage of one chapter to one worker.
// TitleName and AssignedUserName are denormalized snapshots taken at write
// time so history survives deletion of the referenced records.
type Assignment struct {
	ID               string
	TitleID          string
	TitleName        string
	ChapterNumber    string
	Stage            StageType
	AssignedUserID   string
	AssignedUserName string
	Status           Status
	DueDate          *time.Time
	DriveLink        string
	Notes            string
	CompletedDate    *time.Time
	UploadedDate     *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// chapterNumberPattern admits plain decimal labels only. Exponent
// notation, signs, and spellings like "inf" are not chapter numbers.
var chapterNumberPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ParseChapterNumber validates a chapter label as a positive decimal.
// Decimal side-chapters like "7.2" are legal; the trimmed form is
// returned.
func ParseChapterNumber(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", errors.New("chapter number is empty")
	}
	if !chapterNumberPattern.MatchString(trimmed) {
		return "", fmt.Errorf("chapter number %q is not a decimal", trimmed)
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || parsed <= 0 {
		return "", fmt.Errorf("chapter number %q must be positive", trimmed)
	}
	return trimmed, nil
}

// ChapterNumberValue returns the numeric value of a chapter label for
// ordering. Unparseable labels sort first.
func ChapterNumberValue(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return parsed
}

// Validate checks the structural invariants every stored assignment must
// hold. It does not consult permissions; callers gate writes separately.
func (a *Assignment) Validate() error {
	if a == nil {
		return errors.New("assignment is nil")
	}
	if strings.TrimSpace(a.TitleID) == "" {
		return errors.New("assignment requires a title")
	}
	if _, err := ParseChapterNumber(a.ChapterNumber); err != nil {
		return err
	}
	if _, ok := stageSet[a.Stage]; !ok {
		return fmt.Errorf("unknown stage %q", a.Stage)
	}
	if _, ok := statusSet[a.Status]; !ok {
		return fmt.Errorf("unknown status %q", a.Status)
	}
	assigned := strings.TrimSpace(a.AssignedUserID) != ""
	if assigned && a.Status == StatusUnassigned {
		return errors.New("assigned user with unassigned status")
	}
	if !assigned && a.Status != StatusUnassigned {
		return fmt.Errorf("status %s requires an assigned user", a.Status)
	}
	if a.UploadedDate != nil && a.Status != StatusUploaded {
		return errors.New("uploaded date set while status is not uploaded")
	}
	if a.CompletedDate != nil && !a.Status.IsDone() {
		return errors.New("completed date set while work is not done")
	}
	return nil
}

// SetAssignee points the assignment at a worker, snapshotting the display
// name and moving a fresh assignment out of unassigned.
func (a *Assignment) SetAssignee(userID, userName string) {
	a.AssignedUserID = strings.TrimSpace(userID)
	if name := strings.TrimSpace(userName); name != "" {
		a.AssignedUserName = name
	}
	if a.AssignedUserID == "" {
		a.ClearAssignee()
		return
	}
	if a.Status == StatusUnassigned || a.Status == "" {
		a.Status = StatusPending
	}
}

// ClearAssignee detaches the worker and reverts the assignment to
// unassigned, dropping progress dates that no longer apply.
func (a *Assignment) ClearAssignee() {
	a.AssignedUserID = ""
	a.Status = StatusUnassigned
	a.CompletedDate = nil
	a.UploadedDate = nil
}
