package workflow_test

import (
	"testing"
	"time"

	"pearl/internal/workflow"
)

func TestParseChapterNumber(t *testing.T) {
	cases := []struct {
		value string
		want  string
		ok    bool
	}{
		{"5", "5", true},
		{" 7.2 ", "7.2", true},
		{"0.5", "0.5", true},
		{"0", "", false},
		{"-3", "", false},
		{"cap5", "", false},
		{"inf", "", false},
		{"NaN", "", false},
		{"1e3", "", false},
		{"+5", "", false},
		{"5.", "", false},
		{".5", "", false},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tc := range cases {
		got, err := workflow.ParseChapterNumber(tc.value)
		if tc.ok && err != nil {
			t.Errorf("%q: unexpected error %v", tc.value, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%q: expected error", tc.value)
		}
		if tc.ok && got != tc.want {
			t.Errorf("%q: got %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestValidateUnassignedDuality(t *testing.T) {
	base := workflow.Assignment{
		ID:            "a-1",
		TitleID:       "title-1",
		ChapterNumber: "5",
		Stage:         workflow.StageTranslation,
	}

	a := base
	a.Status = workflow.StatusUnassigned
	if err := a.Validate(); err != nil {
		t.Fatalf("unassigned with no user should be valid: %v", err)
	}

	// Any status other than unassigned needs a worker.
	for _, status := range workflow.AllStatuses() {
		if status == workflow.StatusUnassigned {
			continue
		}
		a = base
		a.Status = status
		if err := a.Validate(); err == nil {
			t.Errorf("status %s with empty assignee should be invalid", status)
		}
	}

	a = base
	a.AssignedUserID = "u1"
	a.Status = workflow.StatusUnassigned
	if err := a.Validate(); err == nil {
		t.Fatal("assigned user with unassigned status should be invalid")
	}
}

func TestValidateDateInvariants(t *testing.T) {
	now := time.Now().UTC()
	a := workflow.Assignment{
		ID:             "a-1",
		TitleID:        "title-1",
		ChapterNumber:  "5",
		Stage:          workflow.StageTranslation,
		AssignedUserID: "u1",
		Status:         workflow.StatusPending,
		UploadedDate:   &now,
	}
	if err := a.Validate(); err == nil {
		t.Fatal("uploaded date below uploaded status should be invalid")
	}

	a.UploadedDate = nil
	a.CompletedDate = &now
	if err := a.Validate(); err == nil {
		t.Fatal("completed date on pending work should be invalid")
	}

	a.Status = workflow.StatusApproved
	if err := a.Validate(); err != nil {
		t.Fatalf("completed date on approved work should be valid: %v", err)
	}
}

func TestSetAssigneeKeepsExistingStatus(t *testing.T) {
	a := workflow.Assignment{
		ID:             "a-1",
		TitleID:        "title-1",
		ChapterNumber:  "5",
		Stage:          workflow.StageTranslation,
		AssignedUserID: "u1",
		Status:         workflow.StatusInProgress,
	}
	// Reassignment mid-flight hands the work over without resetting progress.
	a.SetAssignee("u2", "Second Worker")
	if a.Status != workflow.StatusInProgress {
		t.Fatalf("reassignment reset status to %s", a.Status)
	}
	if a.AssignedUserID != "u2" || a.AssignedUserName != "Second Worker" {
		t.Fatalf("unexpected assignee: %s/%s", a.AssignedUserID, a.AssignedUserName)
	}
}

func TestStatusParsingAcceptsSpanishAliases(t *testing.T) {
	cases := map[string]workflow.Status{
		"pendiente":   workflow.StatusPending,
		"en_progreso": workflow.StatusInProgress,
		"completado":  workflow.StatusCompleted,
		"aprobado":    workflow.StatusApproved,
		"subido":      workflow.StatusUploaded,
		"COMPLETED":   workflow.StatusCompleted,
	}
	for value, want := range cases {
		got, ok := workflow.ParseStatus(value)
		if !ok || got != want {
			t.Errorf("ParseStatus(%q) = %q/%v, want %q", value, got, ok, want)
		}
	}
	if _, ok := workflow.ParseStatus("done"); ok {
		t.Fatal("unknown status must not parse")
	}
}

func TestParseStage(t *testing.T) {
	if stage, ok := workflow.ParseStage("cleanRedrawer"); !ok || stage != workflow.StageCleanRedrawer {
		t.Fatalf("legacy camel-case spelling should map to clean_redrawer, got %q/%v", stage, ok)
	}
	if _, ok := workflow.ParseStage("lettering"); ok {
		t.Fatal("unknown stage must not parse")
	}
}
