package workflow

import "signalgen/internal/signal"

// Event is an input to Reduce.
type Event interface {
	eventName() string
}

// EventName returns a stable identifier for logging.
func EventName(ev Event) string {
	if ev == nil {
		return ""
	}
	return ev.eventName()
}

// SelectFamily picks a signal family and clears every later selection.
type SelectFamily struct {
	Family signal.Family
}

// CatalogLoaded delivers the catalog requested under Token.
type CatalogLoaded struct {
	Family  signal.Family
	Token   uint64
	Catalog signal.PatternCatalog
}

// CatalogFailed reports that the catalog requested under Token could not be
// loaded.
type CatalogFailed struct {
	Family signal.Family
	Token  uint64
	Err    error
}

type SelectCategory struct {
	Category signal.Category
}

type SelectPattern struct {
	PatternID string
}

type EditSettings struct {
	Settings signal.GenerationSettings
}

// Submit starts a generation from the current selections.
type Submit struct{}

type GenerationSucceeded struct {
	Token  uint64
	Result signal.GenerationResult
}

type GenerationFailed struct {
	Token uint64
	Err   error
}

// ResultRestored reattaches a previously generated result when a saved
// snapshot is rehydrated. Show moves the workflow to the results step when
// the selected pattern is the one Result was generated from.
type ResultRestored struct {
	Result signal.GenerationResult
	Show   bool
}

type Back struct{}

type Navigate struct {
	Route Route
}

type Reset struct{}

func (SelectFamily) eventName() string        { return "select_family" }
func (CatalogLoaded) eventName() string       { return "catalog_loaded" }
func (CatalogFailed) eventName() string       { return "catalog_failed" }
func (SelectCategory) eventName() string      { return "select_category" }
func (SelectPattern) eventName() string       { return "select_pattern" }
func (EditSettings) eventName() string        { return "edit_settings" }
func (Submit) eventName() string              { return "submit" }
func (GenerationSucceeded) eventName() string { return "generation_succeeded" }
func (GenerationFailed) eventName() string    { return "generation_failed" }
func (ResultRestored) eventName() string      { return "result_restored" }
func (Back) eventName() string                { return "back" }
func (Navigate) eventName() string            { return "navigate" }
func (Reset) eventName() string               { return "reset" }
