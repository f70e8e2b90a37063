package workflow

import "strings"

// StageType identifies one of the four production steps a chapter moves
// through before release.
type StageType string

const (
	StageTranslation   StageType = "translation"
	StageProofreading  StageType = "proofreading"
	StageCleanRedrawer StageType = "clean_redrawer"
	StageTypesetting   StageType = "typesetting"
)

var allStages = []StageType{
	StageTranslation,
	StageProofreading,
	StageCleanRedrawer,
	StageTypesetting,
}

var stageSet = func() map[StageType]struct{} {
	set := make(map[StageType]struct{}, len(allStages))
	for _, stage := range allStages {
		set[stage] = struct{}{}
	}
	return set
}()

var stageAliases = map[string]StageType{
	"cleanredrawer": StageCleanRedrawer,
	"clean":         StageCleanRedrawer,
	"redraw":        StageCleanRedrawer,
	"typeset":       StageTypesetting,
	"proofread":     StageProofreading,
	"traduccion":    StageTranslation,
}

// AllStages returns the four production stages in pipeline order.
func AllStages() []StageType {
	cp := make([]StageType, len(allStages))
	copy(cp, allStages)
	return cp
}

// ParseStage converts a string into a known StageType.
func ParseStage(value string) (StageType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "", false
	}
	if alias, ok := stageAliases[normalized]; ok {
		return alias, true
	}
	stage := StageType(normalized)
	_, ok := stageSet[stage]
	return stage, ok
}

// StageSet is an ordered subset of the four production stages. Joint titles
// restrict required work to the stages this group actually performs.
type StageSet []StageType

// FullStageSet returns the standard four-stage requirement.
func FullStageSet() StageSet {
	return StageSet(AllStages())
}

// Contains reports whether the set includes the given stage.
func (s StageSet) Contains(stage StageType) bool {
	for _, candidate := range s {
		if candidate == stage {
			return true
		}
	}
	return false
}

// Normalize filters unknown entries, removes duplicates, and orders the set
// by pipeline position. An empty result means "no restriction recorded".
func (s StageSet) Normalize() StageSet {
	seen := make(map[StageType]struct{}, len(s))
	for _, stage := range s {
		if _, known := stageSet[stage]; known {
			seen[stage] = struct{}{}
		}
	}
	normalized := make(StageSet, 0, len(seen))
	for _, stage := range allStages {
		if _, ok := seen[stage]; ok {
			normalized = append(normalized, stage)
		}
	}
	return normalized
}

// Strings returns the set as plain strings, in pipeline order.
func (s StageSet) Strings() []string {
	out := make([]string, len(s))
	for i, stage := range s {
		out[i] = string(stage)
	}
	return out
}
