package workflow

import (
	"signalgen/internal/signal"
)

// Step identifies where the user is in the workflow.
type Step string

const (
	StepStart           Step = "start"
	StepFamilySelected  Step = "family_selected"
	StepCategoryChoice  Step = "category_choice"
	StepPatternChoice   Step = "pattern_choice"
	StepReadyToGenerate Step = "ready_to_generate"
	StepGenerating      Step = "generating"
	StepGenerated       Step = "generated"
)

// Steps lists every step in workflow order.
func Steps() []Step {
	return []Step{
		StepStart,
		StepFamilySelected,
		StepCategoryChoice,
		StepPatternChoice,
		StepReadyToGenerate,
		StepGenerating,
		StepGenerated,
	}
}

func (s Step) String() string { return string(s) }

// State is the complete workflow value. Catalog and Result are shared
// read-only; transitions replace them rather than mutate them.
type State struct {
	Step      Step
	Family    signal.Family
	Catalog   *signal.PatternCatalog
	Category  signal.Category
	PatternID string
	Settings  signal.GenerationSettings
	Result    *signal.GenerationResult

	// Pending is the request in flight while Step is StepGenerating.
	Pending *signal.GenerationRequest
	// Err is the most recent failure surfaced to the user. It is cleared by
	// the next successful transition.
	Err error

	// Defaults seeds Settings whenever selections are reset.
	Defaults signal.GenerationSettings

	CatalogToken    uint64
	GenerationToken uint64
}

// NewState returns the start state using defaults for fresh settings.
func NewState(defaults signal.GenerationSettings) State {
	return State{
		Step:     StepStart,
		Settings: defaults,
		Defaults: defaults,
	}
}

// CatalogReady reports whether a catalog for the current family is loaded.
func (s State) CatalogReady() bool {
	return s.Catalog != nil && s.Catalog.Family == s.Family
}

// Pattern returns the selected pattern's catalog entry.
func (s State) Pattern() (signal.Pattern, bool) {
	if !s.CatalogReady() || s.PatternID == "" {
		return signal.Pattern{}, false
	}
	return s.Catalog.ResolvePattern(s.Category, s.PatternID)
}

// Request builds the generation request the current selections describe.
func (s State) Request() signal.GenerationRequest {
	return signal.GenerationRequest{
		Family:    s.Family,
		PatternID: s.PatternID,
		Settings:  s.Settings,
	}
}

// ActiveSessionID is the session of the held result, if any.
func (s State) ActiveSessionID() string {
	if s.Result == nil {
		return ""
	}
	return s.Result.SessionID
}

// Route renders the navigation path for the current step.
func (s State) Route() Route {
	switch s.Step {
	case StepFamilySelected, StepCategoryChoice:
		return Route{Kind: RouteFamily, Family: s.Family}
	case StepPatternChoice:
		return Route{Kind: RouteCategory, Family: s.Family, Category: s.Category}
	case StepReadyToGenerate, StepGenerating:
		return Route{Kind: RoutePattern, Family: s.Family, Category: s.Category, PatternID: s.PatternID}
	case StepGenerated:
		return Route{Kind: RouteResults}
	default:
		return Route{Kind: RouteStart}
	}
}

// clone copies the state so the caller cannot reach shared pointers through
// the copy's Result.
func (s State) clone() State {
	if s.Result != nil {
		result := *s.Result
		result.Channels = append([]string(nil), s.Result.Channels...)
		s.Result = &result
	}
	if s.Pending != nil {
		pending := *s.Pending
		s.Pending = &pending
	}
	return s
}

// restart clears every selection, keeping the tokens moving forward so any
// in-flight completion is recognised as stale.
func (s State) restart() State {
	next := NewState(s.Defaults)
	next.CatalogToken = s.CatalogToken + 1
	next.GenerationToken = s.GenerationToken + 1
	return next
}
