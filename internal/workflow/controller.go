package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"signalgen/internal/logging"
	"signalgen/internal/services"
	"signalgen/internal/signal"
)

// CatalogLoader supplies pattern catalogs. *catalog.Cache satisfies it.
type CatalogLoader interface {
	Load(ctx context.Context, family signal.Family) (signal.PatternCatalog, error)
}

// Generator runs one generation. *signalapi.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, req signal.GenerationRequest) (signal.GenerationResult, error)
}

type resetter interface {
	Reset()
}

// Controller owns the live workflow state for one user.
type Controller struct {
	id        string
	catalogs  CatalogLoader
	generator Generator
	logger    *slog.Logger
	clamp     bool

	mu        sync.Mutex
	state     State
	listeners []func(State)
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDefaults sets the settings a fresh selection starts from.
func WithDefaults(settings signal.GenerationSettings) Option {
	return func(c *Controller) {
		c.state = NewState(settings)
	}
}

// WithClamp snaps out-of-range settings into bounds at submit time instead
// of refusing them.
func WithClamp(enabled bool) Option {
	return func(c *Controller) {
		c.clamp = enabled
	}
}

// WithInstanceID sets the workflow instance identifier used for logging and
// snapshots.
func WithInstanceID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.id = id
		}
	}
}

// NewController wires a controller to its catalog source and generator.
func NewController(catalogs CatalogLoader, generator Generator, opts ...Option) *Controller {
	c := &Controller{
		id:        uuid.NewString(),
		catalogs:  catalogs,
		generator: generator,
		logger:    logging.NewNop(),
		state:     NewState(signal.DefaultSettings()),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "workflow").With(logging.String(logging.FieldWorkflowID, c.id))
	return c
}

// ID returns the workflow instance identifier.
func (c *Controller) ID() string { return c.id }

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// ActiveResult returns the result currently held by the workflow.
func (c *Controller) ActiveResult() (signal.GenerationResult, bool) {
	s := c.State()
	if s.Result == nil {
		return signal.GenerationResult{}, false
	}
	return *s.Result, true
}

// ActiveSessionID returns the session of the held result, or "".
func (c *Controller) ActiveSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ActiveSessionID()
}

// OnChange registers fn to be called with every new state. Callbacks run
// outside the controller lock, in the goroutine that caused the change.
func (c *Controller) OnChange(fn func(State)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Dispatch applies ev and notifies listeners when the state changed.
func (c *Controller) Dispatch(ev Event) (State, error) {
	c.mu.Lock()
	prev := c.state
	next, err := Reduce(prev, ev)
	c.state = next
	listeners := append([]func(State){}, c.listeners...)
	c.mu.Unlock()

	changed := !sameState(prev, next)
	logger := c.logger.With(
		logging.String("event", EventName(ev)),
		logging.String(logging.FieldStep, string(next.Step)),
	)
	if err != nil {
		logger.Debug("workflow event refused", logging.Error(err))
	} else if changed {
		logger.Debug("workflow transition", logging.String("from", string(prev.Step)))
	}
	if changed {
		snapshot := next.clone()
		for _, fn := range listeners {
			fn(snapshot)
		}
	}
	return next.clone(), err
}

// SelectFamily selects family and loads its catalog. A catalog failure is
// returned and leaves the workflow in the family step; calling SelectFamily
// again retries.
func (c *Controller) SelectFamily(ctx context.Context, family signal.Family) (State, error) {
	state, err := c.Dispatch(SelectFamily{Family: family})
	if err != nil {
		return state, err
	}
	return c.loadCatalog(ctx, state)
}

// SelectCategory selects a category of the loaded catalog.
func (c *Controller) SelectCategory(category signal.Category) (State, error) {
	return c.Dispatch(SelectCategory{Category: category})
}

// SelectPattern selects a pattern by identifier or display name.
func (c *Controller) SelectPattern(pattern string) (State, error) {
	return c.Dispatch(SelectPattern{PatternID: pattern})
}

// EditSettings replaces the generation settings.
func (c *Controller) EditSettings(settings signal.GenerationSettings) (State, error) {
	return c.Dispatch(EditSettings{Settings: settings})
}

// Back moves one step backwards.
func (c *Controller) Back() State {
	state, _ := c.Dispatch(Back{})
	return state
}

// Reset clears every selection and the held result, and drops cached
// catalogs.
func (c *Controller) Reset() State {
	state, _ := c.Dispatch(Reset{})
	c.resetCatalogs()
	return state
}

// Navigate applies a route path. Routes that select a new family load its
// catalog. A path that does not parse sends the workflow back to the start
// step and the parse error is returned for display.
func (c *Controller) Navigate(ctx context.Context, path string) (State, error) {
	route, err := ParseRoute(path)
	if err != nil {
		state, navErr := c.Dispatch(Navigate{Route: Route{Kind: RouteStart}})
		if navErr == nil {
			c.resetCatalogs()
		}
		return state, err
	}
	before := c.State()
	state, err := c.Dispatch(Navigate{Route: route})
	if err != nil {
		return state, err
	}
	if route.Kind == RouteStart {
		c.resetCatalogs()
	}
	if state.Step == StepFamilySelected && state.CatalogToken != before.CatalogToken {
		return c.loadCatalog(ctx, state)
	}
	return state, nil
}

// Submit generates from the current selections and blocks until the
// service answers. A second Submit while one is running returns
// ErrGenerationInFlight without contacting the service.
func (c *Controller) Submit(ctx context.Context) (signal.GenerationResult, error) {
	if c.clamp {
		current := c.State()
		if clamped := current.Settings.Clamp(); clamped != current.Settings {
			if _, err := c.Dispatch(EditSettings{Settings: clamped}); err != nil {
				return signal.GenerationResult{}, err
			}
		}
	}

	state, err := c.Dispatch(Submit{})
	if err != nil {
		return signal.GenerationResult{}, err
	}
	req := *state.Pending
	token := state.GenerationToken

	ctx = services.WithWorkflowID(ctx, c.id)
	ctx = services.WithStep(ctx, string(StepGenerating))
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("generation started",
		logging.String("family", string(req.Family)),
		logging.String("pattern", req.PatternID),
		logging.Int("duration_seconds", req.Settings.DurationSeconds),
		logging.Int("sampling_rate_hz", req.Settings.SamplingRateHz),
	)

	result, genErr := c.generator.Generate(ctx, req)
	if genErr != nil {
		logging.WarnWithContext(logger, "generation failed", "generation_failed",
			logging.String("status", string(services.FailureStatus(genErr))),
			logging.Error(genErr),
			logging.String(logging.FieldErrorHint, "adjust the selection or retry once the service is reachable"),
			logging.String(logging.FieldImpact, "previous result, if any, is kept"),
		)
		_, _ = c.Dispatch(GenerationFailed{Token: token, Err: genErr})
		return signal.GenerationResult{}, genErr
	}

	after, _ := c.Dispatch(GenerationSucceeded{Token: token, Result: result})
	if after.ActiveSessionID() != result.SessionID {
		logger.Debug("discarded stale generation result", logging.String(logging.FieldSessionID, result.SessionID))
	} else {
		logger.Info("generation completed",
			logging.String(logging.FieldSessionID, result.SessionID),
			logging.Int("channels", result.ChannelCount()),
			logging.Int("samples", result.SampleCount()),
		)
	}
	return result, nil
}

func (c *Controller) loadCatalog(ctx context.Context, state State) (State, error) {
	family, token := state.Family, state.CatalogToken
	ctx = services.WithWorkflowID(ctx, c.id)
	catalog, err := c.catalogs.Load(ctx, family)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "catalog load failed", "catalog_unavailable",
			logging.String("family", string(family)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "select the family again to retry"),
			logging.String(logging.FieldImpact, "categories and patterns cannot be chosen"),
		)
		next, dispatchErr := c.Dispatch(CatalogFailed{Family: family, Token: token, Err: err})
		if dispatchErr == nil {
			// Stale: a newer selection superseded this load.
			return next, nil
		}
		return next, dispatchErr
	}
	return c.Dispatch(CatalogLoaded{Family: family, Token: token, Catalog: catalog})
}

func (c *Controller) resetCatalogs() {
	if r, ok := c.catalogs.(resetter); ok {
		r.Reset()
	}
}

func sameState(a, b State) bool {
	return a.Step == b.Step &&
		a.Family == b.Family &&
		a.Catalog == b.Catalog &&
		a.Category == b.Category &&
		a.PatternID == b.PatternID &&
		a.Settings == b.Settings &&
		a.Result == b.Result &&
		a.Pending == b.Pending &&
		sameErr(a.Err, b.Err) &&
		a.CatalogToken == b.CatalogToken &&
		a.GenerationToken == b.GenerationToken
}

func sameErr(a, b error) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Error() == b.Error()
}
