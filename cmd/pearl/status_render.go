package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"pearl/internal/workflow"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiDim    = "\x1b[2m"
)

// renderAssignmentStatus colors an assignment status label for terminals.
func renderAssignmentStatus(status workflow.Status, colorize bool) string {
	label := string(status)
	if !colorize {
		return label
	}
	switch status {
	case workflow.StatusUploaded:
		return ansiGreen + label + ansiReset
	case workflow.StatusCompleted, workflow.StatusApproved:
		return ansiBlue + label + ansiReset
	case workflow.StatusInProgress:
		return ansiYellow + label + ansiReset
	case workflow.StatusUnassigned:
		return ansiDim + label + ansiReset
	default:
		return label
	}
}

// renderChapterState colors a derived chapter state label.
func renderChapterState(state workflow.ChapterState, colorize bool) string {
	label := string(state)
	if !colorize {
		return label
	}
	switch state {
	case workflow.ChapterStateUploaded:
		return ansiGreen + label + ansiReset
	case workflow.ChapterStateCompleted:
		return ansiBlue + label + ansiReset
	case workflow.ChapterStateInProgress:
		return ansiYellow + label + ansiReset
	default:
		return ansiRed + label + ansiReset
	}
}

// renderStageCell formats one stage slot of a chapter board row.
func renderStageCell(cell workflow.StageCell, colorize bool) string {
	switch cell.Action {
	case workflow.CellNotApplicable:
		return "-"
	case workflow.CellCreate:
		if cell.Actionable {
			return "[create]"
		}
		return ""
	case workflow.CellAssign:
		if cell.Actionable {
			return "[assign]"
		}
		return "(open)"
	default:
		name := cell.Assignment.AssignedUserName
		if name == "" {
			name = cell.Assignment.AssignedUserID
		}
		return fmt.Sprintf("%s %s", name, renderAssignmentStatus(cell.Assignment.Status, colorize))
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
