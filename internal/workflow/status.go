package workflow

import "strings"

// Status represents the lifecycle of a single stage assignment.
type Status string

const (
	StatusUnassigned Status = "unassigned"
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusApproved   Status = "approved"
	StatusUploaded   Status = "uploaded"
)

var allStatuses = []Status{
	StatusUnassigned,
	StatusPending,
	StatusInProgress,
	StatusCompleted,
	StatusApproved,
	StatusUploaded,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// statusAliases maps the Spanish spellings that leaked into historical data
// onto canonical values. Canonical English strings are the only storage
// format; aliases are accepted on parse and never emitted.
var statusAliases = map[string]Status{
	"pendiente":   StatusPending,
	"en_progreso": StatusInProgress,
	"completado":  StatusCompleted,
	"aprobado":    StatusApproved,
	"subido":      StatusUploaded,
	"sin_asignar": StatusUnassigned,
}

// AllStatuses returns the ordered list of known assignment statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status, accepting legacy
// Spanish spellings at the boundary.
func ParseStatus(value string) (Status, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "", false
	}
	if alias, ok := statusAliases[normalized]; ok {
		return alias, true
	}
	status := Status(normalized)
	_, ok := statusSet[status]
	return status, ok
}

// IsDone reports whether a status represents finished stage work.
// Approved is reviewer sign-off on completed work, not extra progress.
func (s Status) IsDone() bool {
	switch s {
	case StatusCompleted, StatusApproved, StatusUploaded:
		return true
	default:
		return false
	}
}

// IsAssigned reports whether the status implies a worker holds the stage.
func (s Status) IsAssigned() bool {
	return s != StatusUnassigned && s != ""
}
