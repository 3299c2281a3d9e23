package workflow

import (
	"errors"
	"fmt"

	"signalgen/internal/services"
	"signalgen/internal/signal"
)

// ErrGenerationInFlight is returned when an event would disturb a
// generation that has not completed yet.
var ErrGenerationInFlight = fmt.Errorf("%w: a generation is already in progress", services.ErrValidation)

// Reduce applies ev to s and returns the next state. It performs no I/O.
//
// A non-nil error means the event was refused. The returned state is then
// either s unchanged or s with Err set to the surfaced failure. Completions
// carrying a stale token are dropped: s is returned as-is with a nil error.
func Reduce(s State, ev Event) (State, error) {
	switch e := ev.(type) {
	case SelectFamily:
		return selectFamily(s, e.Family)
	case CatalogLoaded:
		return catalogLoaded(s, e)
	case CatalogFailed:
		return catalogFailed(s, e)
	case SelectCategory:
		return selectCategory(s, e.Category)
	case SelectPattern:
		return selectPattern(s, e.PatternID)
	case EditSettings:
		return editSettings(s, e.Settings)
	case Submit:
		return submit(s)
	case GenerationSucceeded:
		return generationSucceeded(s, e)
	case GenerationFailed:
		return generationFailed(s, e)
	case ResultRestored:
		return resultRestored(s, e)
	case Back:
		return back(s), nil
	case Navigate:
		return navigate(s, e.Route)
	case Reset:
		return s.restart(), nil
	case nil:
		return s, refused("dispatch", "nil event")
	default:
		return s, refused("dispatch", fmt.Sprintf("unsupported event %T", ev))
	}
}

func selectFamily(s State, family signal.Family) (State, error) {
	if !family.Valid() {
		return s, refused("select_family", fmt.Sprintf("unknown family %q", family))
	}
	next := s.restart()
	next.Step = StepFamilySelected
	next.Family = family
	return next, nil
}

func catalogLoaded(s State, e CatalogLoaded) (State, error) {
	if s.Step != StepFamilySelected || e.Token != s.CatalogToken || e.Family != s.Family {
		return s, nil
	}
	if e.Catalog.Family != e.Family {
		e.Catalog.Family = e.Family
	}
	if err := e.Catalog.Validate(); err != nil {
		s.Err = services.Wrap(services.ErrCatalogUnavailable, "workflow", "catalog", e.Family.Label(), err)
		return s, s.Err
	}
	catalog := e.Catalog
	s.Catalog = &catalog
	s.Step = StepCategoryChoice
	s.Err = nil
	return s, nil
}

func catalogFailed(s State, e CatalogFailed) (State, error) {
	if s.Step != StepFamilySelected || e.Token != s.CatalogToken || e.Family != s.Family {
		return s, nil
	}
	err := e.Err
	if err == nil || !errors.Is(err, services.ErrCatalogUnavailable) {
		err = services.Wrap(services.ErrCatalogUnavailable, "workflow", "catalog", e.Family.Label(), err)
	}
	s.Err = err
	return s, err
}

func selectCategory(s State, category signal.Category) (State, error) {
	switch s.Step {
	case StepGenerating:
		return s, ErrGenerationInFlight
	case StepCategoryChoice, StepPatternChoice, StepReadyToGenerate, StepGenerated:
	default:
		return s, refused("select_category", "choose a signal family first")
	}
	category = signal.NormalizeCategory(string(category))
	if !s.CatalogReady() || !s.Catalog.HasCategory(category) {
		return s, refused("select_category", fmt.Sprintf("category %q is not offered for %s", category, s.Family.Label()))
	}
	if category == s.Category && s.Step != StepCategoryChoice {
		return s, nil
	}
	s.Category = category
	s.PatternID = ""
	s.Step = StepPatternChoice
	s.Err = nil
	return s, nil
}

func selectPattern(s State, patternID string) (State, error) {
	switch s.Step {
	case StepGenerating:
		return s, ErrGenerationInFlight
	case StepPatternChoice, StepReadyToGenerate, StepGenerated:
	default:
		return s, refused("select_pattern", "choose a category first")
	}
	pattern, ok := s.Catalog.ResolvePattern(s.Category, patternID)
	if !ok {
		return s, refused("select_pattern", fmt.Sprintf("pattern %q is not offered under %s", patternID, s.Category.Label()))
	}
	if pattern.ID == s.PatternID {
		return s, nil
	}
	s.PatternID = pattern.ID
	s.Step = StepReadyToGenerate
	s.Err = nil
	return s, nil
}

func editSettings(s State, settings signal.GenerationSettings) (State, error) {
	switch s.Step {
	case StepGenerating:
		return s, ErrGenerationInFlight
	case StepReadyToGenerate, StepGenerated:
	default:
		return s, refused("edit_settings", "choose a pattern first")
	}
	s.Settings = settings
	return s, nil
}

func submit(s State) (State, error) {
	switch s.Step {
	case StepGenerating:
		return s, ErrGenerationInFlight
	case StepReadyToGenerate, StepGenerated:
	default:
		return s, refused("submit", "choose a pattern first")
	}
	req := s.Request()
	if err := req.Validate(); err != nil {
		s.Err = err
		return s, err
	}
	s.Step = StepGenerating
	s.Pending = &req
	s.GenerationToken++
	s.Err = nil
	return s, nil
}

func generationSucceeded(s State, e GenerationSucceeded) (State, error) {
	if s.Step != StepGenerating || e.Token != s.GenerationToken {
		return s, nil
	}
	result := e.Result
	s.Result = &result
	s.Pending = nil
	s.Step = StepGenerated
	s.Err = nil
	return s, nil
}

func generationFailed(s State, e GenerationFailed) (State, error) {
	if s.Step != StepGenerating || e.Token != s.GenerationToken {
		return s, nil
	}
	err := e.Err
	if err == nil {
		err = &services.GenerationError{Reason: "generation failed without detail"}
	}
	s.Pending = nil
	s.Step = StepReadyToGenerate
	s.Err = err
	return s, nil
}

// resultRestored holds a saved result for the current family. The step only
// changes when the result is shown and matches the selected pattern; a result
// from an earlier pattern stays held as the active session.
func resultRestored(s State, e ResultRestored) (State, error) {
	switch s.Step {
	case StepStart, StepGenerating:
		return s, refused("restore_result", "selections must be restored first")
	}
	result := e.Result
	if result.SessionID == "" || result.Family != s.Family {
		return s, refused("restore_result", "saved result does not match the current family")
	}
	s.Result = &result
	if e.Show && s.Step == StepReadyToGenerate && result.PatternID == s.PatternID {
		s.Step = StepGenerated
	}
	return s, nil
}

func back(s State) State {
	switch s.Step {
	case StepFamilySelected, StepCategoryChoice:
		return s.restart()
	case StepPatternChoice:
		s.Category = ""
		s.PatternID = ""
		s.Step = StepCategoryChoice
	case StepReadyToGenerate:
		s.PatternID = ""
		s.Step = StepPatternChoice
	case StepGenerated:
		s.Step = StepReadyToGenerate
	default:
		return s
	}
	s.Err = nil
	return s
}

// navigate honours a route only when it stays within selections that are
// already explicit in s. A route to a different family is an explicit family
// selection. Anything else resets to the start step.
func navigate(s State, route Route) (State, error) {
	if s.Step == StepGenerating && route.Kind != RouteStart {
		return s, ErrGenerationInFlight
	}
	switch route.Kind {
	case RouteStart:
		return s.restart(), nil
	case RouteFamily:
		if route.Family != s.Family || s.Step == StepStart {
			return selectFamily(s, route.Family)
		}
		if s.Step == StepFamilySelected {
			return s, nil
		}
		s.Category = ""
		s.PatternID = ""
		s.Step = StepCategoryChoice
		s.Err = nil
		return s, nil
	case RouteCategory:
		if !s.CatalogReady() || route.Family != s.Family || !s.Catalog.HasCategory(route.Category) {
			return s.restart(), nil
		}
		s.Category = route.Category
		s.PatternID = ""
		s.Step = StepPatternChoice
		s.Err = nil
		return s, nil
	case RoutePattern:
		if !s.CatalogReady() || route.Family != s.Family || route.Category != s.Category || s.Category == "" {
			return s.restart(), nil
		}
		if !s.Catalog.Contains(route.Category, route.PatternID) {
			return s.restart(), nil
		}
		if s.Step == StepReadyToGenerate && route.PatternID == s.PatternID {
			return s, nil
		}
		s.PatternID = route.PatternID
		s.Step = StepReadyToGenerate
		s.Err = nil
		return s, nil
	case RouteResults:
		if s.Result == nil || s.Result.Family != s.Family || s.PatternID == "" || s.Result.PatternID != s.PatternID {
			return s.restart(), nil
		}
		s.Step = StepGenerated
		s.Err = nil
		return s, nil
	default:
		return s, refused("navigate", fmt.Sprintf("unknown route kind %q", route.Kind))
	}
}

func refused(op, msg string) error {
	return services.Wrap(services.ErrValidation, "workflow", op, msg, nil)
}
