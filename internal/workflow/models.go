package workflow

import (
	"strings"
	"time"

	"pearl/internal/roles"
)

// ChapterStatus is the coarse manual label a chief may place on a chapter
// record. It is never recomputed as a side effect of assignment changes;
// the authoritative done/uploaded answer comes from aggregation.
type ChapterStatus string

const (
	ChapterCreated    ChapterStatus = "created"
	ChapterEnProgreso ChapterStatus = "en_progreso"
	ChapterUploaded   ChapterStatus = "uploaded"
)

// ParseChapterStatus converts a string into a known ChapterStatus.
func ParseChapterStatus(value string) (ChapterStatus, bool) {
	normalized := ChapterStatus(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case ChapterCreated, ChapterEnProgreso, ChapterUploaded:
		return normalized, true
	default:
		return "", false
	}
}

// Chapter is the optional per-(title, chapter) metadata record. It may
// exist with no assignments at all, e.g. a chapter announced before
// staffing.
type Chapter struct {
	TitleID       string
	ChapterNumber string
	DriveLink     string
	Notes         string
	Status        ChapterStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TitleStatus tracks where a work sits in the group's catalogue.
type TitleStatus string

const (
	TitleActive    TitleStatus = "active"
	TitlePaused    TitleStatus = "paused"
	TitleHiatus    TitleStatus = "hiatus"
	TitleCompleted TitleStatus = "completed"
	TitleCancelled TitleStatus = "cancelled"
)

// ParseTitleStatus converts a string into a known TitleStatus.
func ParseTitleStatus(value string) (TitleStatus, bool) {
	normalized := TitleStatus(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case TitleActive, TitlePaused, TitleHiatus, TitleCompleted, TitleCancelled:
		return normalized, true
	default:
		return "", false
	}
}

// Title is a work being translated.
type Title struct {
	ID                  string
	Name                string
	Author              string
	Status              TitleStatus
	TotalChapters       int
	PublishedChapters   int
	DriveLink           string
	CoverImageURL       string
	IsJoint             bool
	AvailableStageTypes StageSet
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RequiredStages returns the stage subset counted toward completeness for
// this title. Joint titles with a recorded restriction only require those
// stages; everything else requires the full pipeline.
func (t *Title) RequiredStages() StageSet {
	if t != nil && t.IsJoint {
		if restricted := t.AvailableStageTypes.Normalize(); len(restricted) > 0 {
			return restricted
		}
	}
	return FullStageSet()
}

// UserStatus tracks the lifecycle of a staff account.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
	UserDeleted   UserStatus = "deleted"
)

// ParseUserStatus converts a string into a known UserStatus.
func ParseUserStatus(value string) (UserStatus, bool) {
	normalized := UserStatus(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case UserActive, UserInactive, UserSuspended, UserDeleted:
		return normalized, true
	default:
		return "", false
	}
}

// UserStats carries per-user workload counters maintained by the store.
type UserStats struct {
	CompletedCount int
	ActiveCount    int
}

// User is a staff member or a ghost. Ghosts are credential-less placeholder
// identities created to retroactively credit work done before the tracker
// existed; they carry no email and are soft-deleted after transfer.
type User struct {
	ID              string
	Name            string
	Email           string
	Role            roles.Role
	Status          UserStatus
	ProfileImageURL string
	IsGhost         bool
	Stats           UserStats
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
