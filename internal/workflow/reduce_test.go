package workflow_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"signalgen/internal/services"
	"signalgen/internal/signal"
	"signalgen/internal/testsupport"
	"signalgen/internal/workflow"
)

func apply(t *testing.T, s workflow.State, events ...workflow.Event) workflow.State {
	t.Helper()
	for _, ev := range events {
		var err error
		s, err = workflow.Reduce(s, ev)
		if err != nil {
			t.Fatalf("event %s: %v", workflow.EventName(ev), err)
		}
	}
	return s
}

func requireSameState(t *testing.T, got, want workflow.State, context string) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("%s: state changed\n got: %+v\nwant: %+v", context, got, want)
	}
}

func sampleResult(family signal.Family, pattern, session string) signal.GenerationResult {
	return signal.GenerationResult{
		SessionID:       session,
		Family:          family,
		PatternID:       pattern,
		PlotPath:        "static/plots/" + session + "_plot.png",
		DurationSeconds: 30,
		SamplingRateHz:  256,
		Channels:        []string{"Fp1", "Fp2"},
		GeneratedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// statesByStep builds one representative state per step for an EEG
// normal_awake selection.
func statesByStep(t *testing.T) map[workflow.Step]workflow.State {
	t.Helper()
	out := make(map[workflow.Step]workflow.State)
	s := workflow.NewState(signal.DefaultSettings())
	out[workflow.StepStart] = s

	s = apply(t, s, workflow.SelectFamily{Family: signal.FamilyEEG})
	out[workflow.StepFamilySelected] = s

	s = apply(t, s, workflow.CatalogLoaded{Family: signal.FamilyEEG, Token: s.CatalogToken, Catalog: testsupport.EEGCatalog()})
	out[workflow.StepCategoryChoice] = s

	s = apply(t, s, workflow.SelectCategory{Category: signal.CategoryNormal})
	out[workflow.StepPatternChoice] = s

	s = apply(t, s,
		workflow.SelectPattern{PatternID: "normal_awake"},
		workflow.EditSettings{Settings: signal.GenerationSettings{DurationSeconds: 120, SamplingRateHz: 512}},
	)
	out[workflow.StepReadyToGenerate] = s

	s = apply(t, s, workflow.Submit{})
	out[workflow.StepGenerating] = s

	s = apply(t, s, workflow.GenerationSucceeded{Token: s.GenerationToken, Result: sampleResult(signal.FamilyEEG, "normal_awake", "sess-1")})
	out[workflow.StepGenerated] = s

	for step, state := range out {
		if state.Step != step {
			t.Fatalf("fixture for %s is at %s", step, state.Step)
		}
	}
	return out
}

func TestSelectFamilyResetsFromEveryStep(t *testing.T) {
	t.Parallel()

	for step, state := range statesByStep(t) {
		t.Run(string(step), func(t *testing.T) {
			next, err := workflow.Reduce(state, workflow.SelectFamily{Family: signal.FamilyECG})
			if err != nil {
				t.Fatalf("SelectFamily: %v", err)
			}
			if next.Step != workflow.StepFamilySelected || next.Family != signal.FamilyECG {
				t.Fatalf("expected ecg family step, got %s/%s", next.Step, next.Family)
			}
			if next.Category != "" || next.PatternID != "" {
				t.Fatalf("expected selections cleared, got %q/%q", next.Category, next.PatternID)
			}
			if next.Settings != signal.DefaultSettings() {
				t.Fatalf("expected default settings, got %+v", next.Settings)
			}
			if next.Result != nil || next.Catalog != nil || next.Pending != nil {
				t.Fatalf("expected result, catalog and pending cleared, got %+v", next)
			}
			if next.CatalogToken <= state.CatalogToken || next.GenerationToken <= state.GenerationToken {
				t.Fatalf("expected both tokens to advance: catalog %d->%d generation %d->%d",
					state.CatalogToken, next.CatalogToken, state.GenerationToken, next.GenerationToken)
			}
		})
	}
}

func TestSelectFamilyRejectsUnknownFamily(t *testing.T) {
	t.Parallel()

	s := workflow.NewState(signal.DefaultSettings())
	next, err := workflow.Reduce(s, workflow.SelectFamily{Family: "emg"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	requireSameState(t, next, s, "unknown family")
}

func TestCatalogCompletionsMustMatchToken(t *testing.T) {
	t.Parallel()

	s := apply(t, workflow.NewState(signal.DefaultSettings()), workflow.SelectFamily{Family: signal.FamilyEEG})
	stale := s.CatalogToken
	s = apply(t, s, workflow.SelectFamily{Family: signal.FamilyECG})

	next, err := workflow.Reduce(s, workflow.CatalogLoaded{Family: signal.FamilyEEG, Token: stale, Catalog: testsupport.EEGCatalog()})
	if err != nil {
		t.Fatalf("stale load: %v", err)
	}
	requireSameState(t, next, s, "stale catalog")

	next, err = workflow.Reduce(s, workflow.CatalogFailed{Family: signal.FamilyEEG, Token: stale, Err: errors.New("late")})
	if err != nil {
		t.Fatalf("stale failure: %v", err)
	}
	requireSameState(t, next, s, "stale catalog failure")

	next, err = workflow.Reduce(s, workflow.CatalogLoaded{Family: signal.FamilyECG, Token: s.CatalogToken, Catalog: testsupport.ECGCatalog()})
	if err != nil {
		t.Fatalf("current load: %v", err)
	}
	if next.Step != workflow.StepCategoryChoice || !next.CatalogReady() {
		t.Fatalf("expected ecg catalog loaded, got %s", next.Step)
	}
}

func TestCatalogFailureKeepsFamilyStep(t *testing.T) {
	t.Parallel()

	s := apply(t, workflow.NewState(signal.DefaultSettings()), workflow.SelectFamily{Family: signal.FamilyEEG})
	next, err := workflow.Reduce(s, workflow.CatalogFailed{Family: signal.FamilyEEG, Token: s.CatalogToken, Err: errors.New("503")})
	if !errors.Is(err, services.ErrCatalogUnavailable) {
		t.Fatalf("expected catalog unavailable, got %v", err)
	}
	if next.Step != workflow.StepFamilySelected {
		t.Fatalf("expected family step, got %s", next.Step)
	}
	if !errors.Is(next.Err, services.ErrCatalogUnavailable) {
		t.Fatalf("expected surfaced catalog error, got %v", next.Err)
	}
	if status := services.FailureStatus(next.Err); status != services.StatusBlocked {
		t.Fatalf("expected blocked status, got %s", status)
	}

	if _, err := workflow.Reduce(next, workflow.SelectCategory{Category: signal.CategoryNormal}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected category refused without catalog, got %v", err)
	}

	retried := apply(t, next, workflow.SelectFamily{Family: signal.FamilyEEG})
	if retried.Err != nil {
		t.Fatalf("expected retry to clear error, got %v", retried.Err)
	}
	if retried.CatalogToken <= next.CatalogToken {
		t.Fatalf("expected a fresh catalog token, got %d after %d", retried.CatalogToken, next.CatalogToken)
	}
}

func TestInvalidCatalogIsUnavailable(t *testing.T) {
	t.Parallel()

	s := apply(t, workflow.NewState(signal.DefaultSettings()), workflow.SelectFamily{Family: signal.FamilyEEG})
	bad := signal.PatternCatalog{Family: signal.FamilyEEG, Categories: []signal.CategoryPatterns{
		{Category: signal.CategoryNormal, Patterns: []signal.Pattern{{DisplayName: "A", ID: "x"}, {DisplayName: "B", ID: "x"}}},
	}}
	next, err := workflow.Reduce(s, workflow.CatalogLoaded{Family: signal.FamilyEEG, Token: s.CatalogToken, Catalog: bad})
	if !errors.Is(err, services.ErrCatalogUnavailable) {
		t.Fatalf("expected catalog unavailable, got %v", err)
	}
	if next.Step != workflow.StepFamilySelected {
		t.Fatalf("expected family step, got %s", next.Step)
	}
}

func TestChangingCategoryClearsPattern(t *testing.T) {
	t.Parallel()

	ready := statesByStep(t)[workflow.StepReadyToGenerate]
	next := apply(t, ready, workflow.SelectCategory{Category: signal.CategoryAbnormal})
	if next.Step != workflow.StepPatternChoice || next.Category != signal.CategoryAbnormal {
		t.Fatalf("expected abnormal pattern choice, got %s/%s", next.Step, next.Category)
	}
	if next.PatternID != "" {
		t.Fatalf("expected pattern cleared, got %q", next.PatternID)
	}
	if next.Settings != ready.Settings {
		t.Fatalf("expected settings kept, got %+v", next.Settings)
	}

	requireSameState(t, apply(t, ready, workflow.SelectCategory{Category: signal.CategoryNormal}), ready, "same category")

	if _, err := workflow.Reduce(ready, workflow.SelectCategory{Category: "borderline"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected unknown category refused, got %v", err)
	}
}

func TestSelectPatternRules(t *testing.T) {
	t.Parallel()

	choice := statesByStep(t)[workflow.StepPatternChoice]

	if _, err := workflow.Reduce(choice, workflow.SelectPattern{PatternID: "flat_eeg"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected pattern from another category refused, got %v", err)
	}

	ready := apply(t, choice, workflow.SelectPattern{PatternID: "REM Sleep"})
	if ready.PatternID != "rem_sleep" {
		t.Fatalf("expected display name to resolve to rem_sleep, got %q", ready.PatternID)
	}
	if ready.Settings != signal.DefaultSettings() {
		t.Fatalf("expected default settings, got %+v", ready.Settings)
	}

	requireSameState(t, apply(t, ready, workflow.SelectPattern{PatternID: "rem_sleep"}), ready, "same pattern twice")

	if _, err := workflow.Reduce(statesByStep(t)[workflow.StepCategoryChoice], workflow.SelectPattern{PatternID: "rem_sleep"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected pattern refused before a category, got %v", err)
	}
}

func TestSubmitRejectsOutOfRangeSettings(t *testing.T) {
	t.Parallel()

	ready := statesByStep(t)[workflow.StepReadyToGenerate]
	cases := []signal.GenerationSettings{
		{DurationSeconds: 5, SamplingRateHz: 256},
		{DurationSeconds: 400, SamplingRateHz: 256},
		{DurationSeconds: 30, SamplingRateHz: 200},
		{DurationSeconds: 30, SamplingRateHz: 1152},
	}
	for _, settings := range cases {
		edited := apply(t, ready, workflow.EditSettings{Settings: settings})
		next, err := workflow.Reduce(edited, workflow.Submit{})
		if !errors.Is(err, services.ErrInvalidSettings) {
			t.Fatalf("%+v: expected invalid settings, got %v", settings, err)
		}
		if next.Step != workflow.StepReadyToGenerate || next.Pending != nil {
			t.Fatalf("%+v: expected to stay ready with nothing pending, got %s", settings, next.Step)
		}
		if next.GenerationToken != edited.GenerationToken {
			t.Fatalf("%+v: generation token advanced", settings)
		}
		if !errors.Is(next.Err, services.ErrInvalidSettings) {
			t.Fatalf("%+v: expected surfaced settings error, got %v", settings, next.Err)
		}
	}

	for _, d := range []int{signal.MinDurationSeconds, signal.MaxDurationSeconds} {
		for _, r := range signal.SamplingRates() {
			edited := apply(t, ready, workflow.EditSettings{Settings: signal.GenerationSettings{DurationSeconds: d, SamplingRateHz: r}})
			next, err := workflow.Reduce(edited, workflow.Submit{})
			if err != nil {
				t.Fatalf("d=%d r=%d: %v", d, r, err)
			}
			if next.Step != workflow.StepGenerating {
				t.Fatalf("d=%d r=%d: expected generating, got %s", d, r, next.Step)
			}
		}
	}
}

func TestSubmitWhileGeneratingIsRefused(t *testing.T) {
	t.Parallel()

	generating := statesByStep(t)[workflow.StepGenerating]
	if generating.Pending == nil || generating.Pending.PatternID != "normal_awake" {
		t.Fatalf("expected pending normal_awake request, got %+v", generating.Pending)
	}

	for _, ev := range []workflow.Event{
		workflow.Submit{},
		workflow.SelectCategory{Category: signal.CategoryAbnormal},
		workflow.SelectPattern{PatternID: "rem_sleep"},
		workflow.EditSettings{Settings: signal.DefaultSettings()},
		workflow.Navigate{Route: workflow.Route{Kind: workflow.RouteResults}},
	} {
		next, err := workflow.Reduce(generating, ev)
		if !errors.Is(err, workflow.ErrGenerationInFlight) {
			t.Fatalf("%s: expected in-flight refusal, got %v", workflow.EventName(ev), err)
		}
		requireSameState(t, next, generating, workflow.EventName(ev))
	}

	requireSameState(t, apply(t, generating, workflow.Back{}), generating, "back while generating")
}

func TestGenerationOutcomes(t *testing.T) {
	t.Parallel()

	states := statesByStep(t)
	generating := states[workflow.StepGenerating]

	failure := &services.GenerationError{Reason: "boom", StatusCode: 500}
	failed := apply(t, generating, workflow.GenerationFailed{Token: generating.GenerationToken, Err: failure})
	if failed.Step != workflow.StepReadyToGenerate {
		t.Fatalf("expected ready after failure, got %s", failed.Step)
	}
	if failed.Result != nil || failed.Pending != nil {
		t.Fatalf("expected no result and nothing pending, got %+v", failed)
	}
	if failed.Family != generating.Family || failed.Category != generating.Category ||
		failed.PatternID != generating.PatternID || failed.Settings != generating.Settings {
		t.Fatalf("expected selections intact, got %+v", failed)
	}
	if !errors.Is(failed.Err, services.ErrGenerationFailed) {
		t.Fatalf("expected surfaced generation error, got %v", failed.Err)
	}

	generated := states[workflow.StepGenerated]
	if generated.ActiveSessionID() != "sess-1" {
		t.Fatalf("expected sess-1, got %q", generated.ActiveSessionID())
	}

	regenerating := apply(t, generated, workflow.Submit{})
	if regenerating.ActiveSessionID() != "sess-1" {
		t.Fatalf("old result must be kept until a new success, got %q", regenerating.ActiveSessionID())
	}

	refailed := apply(t, regenerating, workflow.GenerationFailed{Token: regenerating.GenerationToken, Err: failure})
	if refailed.ActiveSessionID() != "sess-1" {
		t.Fatalf("failure must keep the old result, got %q", refailed.ActiveSessionID())
	}

	replaced := apply(t, regenerating, workflow.GenerationSucceeded{
		Token:  regenerating.GenerationToken,
		Result: sampleResult(signal.FamilyEEG, "normal_awake", "sess-2"),
	})
	if replaced.ActiveSessionID() != "sess-2" {
		t.Fatalf("expected sess-2, got %q", replaced.ActiveSessionID())
	}
}

func TestStaleGenerationIsDiscarded(t *testing.T) {
	t.Parallel()

	generating := statesByStep(t)[workflow.StepGenerating]
	reset := apply(t, generating, workflow.Reset{})

	next := apply(t, reset, workflow.GenerationSucceeded{
		Token:  generating.GenerationToken,
		Result: sampleResult(signal.FamilyEEG, "normal_awake", "late"),
	})
	requireSameState(t, next, reset, "late success")
	if next.Result != nil {
		t.Fatalf("late result must not be held")
	}

	next = apply(t, reset, workflow.GenerationFailed{Token: generating.GenerationToken, Err: errors.New("late")})
	requireSameState(t, next, reset, "late failure")
}

func TestBackTransitions(t *testing.T) {
	t.Parallel()

	states := statesByStep(t)
	cases := []struct {
		from workflow.Step
		want workflow.Step
	}{
		{workflow.StepStart, workflow.StepStart},
		{workflow.StepFamilySelected, workflow.StepStart},
		{workflow.StepCategoryChoice, workflow.StepStart},
		{workflow.StepPatternChoice, workflow.StepCategoryChoice},
		{workflow.StepReadyToGenerate, workflow.StepPatternChoice},
		{workflow.StepGenerating, workflow.StepGenerating},
		{workflow.StepGenerated, workflow.StepReadyToGenerate},
	}
	for _, tc := range cases {
		if next := apply(t, states[tc.from], workflow.Back{}); next.Step != tc.want {
			t.Fatalf("back from %s = %s, want %s", tc.from, next.Step, tc.want)
		}
	}

	fromReady := apply(t, states[workflow.StepReadyToGenerate], workflow.Back{})
	if fromReady.PatternID != "" {
		t.Fatalf("expected pattern cleared, got %q", fromReady.PatternID)
	}
	if fromReady.Settings != states[workflow.StepReadyToGenerate].Settings {
		t.Fatalf("expected settings kept, got %+v", fromReady.Settings)
	}

	if fromGenerated := apply(t, states[workflow.StepGenerated], workflow.Back{}); fromGenerated.ActiveSessionID() != "sess-1" {
		t.Fatalf("expected result kept on back, got %q", fromGenerated.ActiveSessionID())
	}
}

func TestNavigate(t *testing.T) {
	t.Parallel()

	states := statesByStep(t)
	cases := []struct {
		name     string
		from     workflow.Step
		path     string
		want     workflow.Step
		category signal.Category
		pattern  string
	}{
		{"root resets", workflow.StepGenerated, "/", workflow.StepStart, "", ""},
		{"deep link without selections", workflow.StepStart, "/eeg/normal/normal_awake", workflow.StepStart, "", ""},
		{"category link without catalog", workflow.StepFamilySelected, "/eeg/normal", workflow.StepStart, "", ""},
		{"results without result", workflow.StepReadyToGenerate, "/results", workflow.StepStart, "", ""},
		{"family link selects family", workflow.StepStart, "/ecg", workflow.StepFamilySelected, "", ""},
		{"same family returns to categories", workflow.StepReadyToGenerate, "/eeg", workflow.StepCategoryChoice, "", ""},
		{"sideways category", workflow.StepReadyToGenerate, "/eeg/abnormal", workflow.StepPatternChoice, signal.CategoryAbnormal, ""},
		{"pattern within category", workflow.StepPatternChoice, "/eeg/normal/rem_sleep", workflow.StepReadyToGenerate, signal.CategoryNormal, "rem_sleep"},
		{"pattern in unselected category", workflow.StepPatternChoice, "/eeg/abnormal/flat_eeg", workflow.StepStart, "", ""},
		{"pattern not in catalog", workflow.StepPatternChoice, "/eeg/normal/stemi", workflow.StepStart, "", ""},
		{"other family pattern", workflow.StepReadyToGenerate, "/ecg/normal/normal_sinus", workflow.StepStart, "", ""},
		{"results with result", workflow.StepGenerated, "/results", workflow.StepGenerated, signal.CategoryNormal, "normal_awake"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			route, err := workflow.ParseRoute(tc.path)
			if err != nil {
				t.Fatalf("ParseRoute(%q): %v", tc.path, err)
			}
			next, err := workflow.Reduce(states[tc.from], workflow.Navigate{Route: route})
			if err != nil {
				t.Fatalf("navigate: %v", err)
			}
			if next.Step != tc.want || next.Category != tc.category || next.PatternID != tc.pattern {
				t.Fatalf("got %s %q/%q, want %s %q/%q", next.Step, next.Category, next.PatternID, tc.want, tc.category, tc.pattern)
			}
			if tc.want == workflow.StepStart && (next.Result != nil || next.Family != "") {
				t.Fatalf("expected a full reset, got %+v", next)
			}
		})
	}

	back := apply(t, states[workflow.StepGenerated], workflow.Back{})
	route, err := workflow.ParseRoute("/results")
	if err != nil {
		t.Fatalf("ParseRoute: %v", err)
	}
	if forward := apply(t, back, workflow.Navigate{Route: route}); forward.Step != workflow.StepGenerated {
		t.Fatalf("expected results after back, got %s", forward.Step)
	}
}

func TestResultsRouteRequiresMatchingPattern(t *testing.T) {
	t.Parallel()

	generated := statesByStep(t)[workflow.StepGenerated]
	other := apply(t, generated, workflow.SelectPattern{PatternID: "rem_sleep"})
	if other.Step != workflow.StepReadyToGenerate || other.ActiveSessionID() != "sess-1" {
		t.Fatalf("expected rem_sleep ready with sess-1 held, got %s %q", other.Step, other.ActiveSessionID())
	}

	next := apply(t, other, workflow.Navigate{Route: workflow.Route{Kind: workflow.RouteResults}})
	if next.Step != workflow.StepStart {
		t.Fatalf("results for a different pattern must redirect to start, got %s", next.Step)
	}
}

func TestParseRoute(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want workflow.Route
	}{
		{"", workflow.Route{Kind: workflow.RouteStart}},
		{"/", workflow.Route{Kind: workflow.RouteStart}},
		{"/results", workflow.Route{Kind: workflow.RouteResults}},
		{"/EEG/", workflow.Route{Kind: workflow.RouteFamily, Family: signal.FamilyEEG}},
		{"/ecg/Abnormal", workflow.Route{Kind: workflow.RouteCategory, Family: signal.FamilyECG, Category: signal.CategoryAbnormal}},
		{"/ecg/abnormal/stemi", workflow.Route{Kind: workflow.RoutePattern, Family: signal.FamilyECG, Category: signal.CategoryAbnormal, PatternID: "stemi"}},
	}
	for _, tc := range cases {
		got, err := workflow.ParseRoute(tc.path)
		if err != nil {
			t.Fatalf("ParseRoute(%q): %v", tc.path, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRoute(%q) = %+v, want %+v", tc.path, got, tc.want)
		}
	}

	for _, bad := range []string{"/emg", "/eeg/normal/a/b", "/eeg//x", "/eeg/%zz"} {
		if _, err := workflow.ParseRoute(bad); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("ParseRoute(%q): expected validation error, got %v", bad, err)
		}
	}

	route := workflow.Route{Kind: workflow.RoutePattern, Family: signal.FamilyEEG, Category: signal.CategoryNormal, PatternID: "rem_sleep"}
	if got := route.String(); got != "/eeg/normal/rem_sleep" {
		t.Fatalf("String() = %q", got)
	}
	parsed, err := workflow.ParseRoute(route.String())
	if err != nil || parsed != route {
		t.Fatalf("round trip = %+v, %v", parsed, err)
	}
}

func TestStateRoute(t *testing.T) {
	t.Parallel()

	states := statesByStep(t)
	want := map[workflow.Step]string{
		workflow.StepStart:           "/",
		workflow.StepCategoryChoice:  "/eeg",
		workflow.StepPatternChoice:   "/eeg/normal",
		workflow.StepReadyToGenerate: "/eeg/normal/normal_awake",
		workflow.StepGenerated:       "/results",
	}
	for step, path := range want {
		if got := states[step].Route().String(); got != path {
			t.Fatalf("%s route = %q, want %q", step, got, path)
		}
	}
}

func TestResultRestored(t *testing.T) {
	t.Parallel()

	states := statesByStep(t)
	ready := states[workflow.StepReadyToGenerate]
	saved := sampleResult(signal.FamilyEEG, "normal_awake", "saved")

	shown := apply(t, ready, workflow.ResultRestored{Result: saved, Show: true})
	if shown.Step != workflow.StepGenerated || shown.ActiveSessionID() != "saved" {
		t.Fatalf("expected saved result shown, got %s %q", shown.Step, shown.ActiveSessionID())
	}

	held := apply(t, ready, workflow.ResultRestored{Result: saved})
	if held.Step != workflow.StepReadyToGenerate || held.ActiveSessionID() != "saved" {
		t.Fatalf("expected saved result held on the ready step, got %s %q", held.Step, held.ActiveSessionID())
	}

	// A category change from Generated clears the pattern but keeps the result.
	choice := states[workflow.StepPatternChoice]
	kept := apply(t, choice, workflow.ResultRestored{Result: saved, Show: true})
	if kept.Step != workflow.StepPatternChoice || kept.ActiveSessionID() != "saved" {
		t.Fatalf("expected result held on pattern choice, got %s %q", kept.Step, kept.ActiveSessionID())
	}

	if _, err := workflow.Reduce(ready, workflow.ResultRestored{Result: sampleResult(signal.FamilyECG, "stemi", "saved")}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected other family refused, got %v", err)
	}
	if _, err := workflow.Reduce(states[workflow.StepStart], workflow.ResultRestored{Result: saved}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected restore before selections refused, got %v", err)
	}
}

func TestNilEventIsRefused(t *testing.T) {
	t.Parallel()

	s := workflow.NewState(signal.DefaultSettings())
	next, err := workflow.Reduce(s, nil)
	if err == nil {
		t.Fatal("expected nil event refused")
	}
	requireSameState(t, next, s, "nil event")
}
