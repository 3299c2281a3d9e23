// Package workflow drives one user through the generation steps: pick a
// signal family, a category and a pattern, tune the settings, generate, then
// download.
//
// The state is a single explicit State value. Reduce is the pure transition
// function over (State, Event); it never performs I/O and is where every
// step rule and redirect lives. The Controller owns the live State behind a
// mutex, calls the catalog cache and the generation service outside the
// lock, and feeds the outcomes back in as events tagged with the token that
// was current when the call started. Completions whose token no longer
// matches are dropped without touching the state.
//
// Routes (`/`, `/{family}`, `/{family}/{category}`,
// `/{family}/{category}/{pattern}`, `/results`) are parsed by ParseRoute and
// applied through the Navigate event. Navigation is only honoured when every
// selection the route depends on is already present; anything else resets
// to the start step.
package workflow
