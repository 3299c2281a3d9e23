package workflow

import (
	"context"
	"time"

	"signalgen/internal/signal"
)

// Snapshot captures the explicit selections of a workflow so it can be
// rehydrated later. Catalogs are never captured; they are fetched again on
// restore.
type Snapshot struct {
	InstanceID string                    `json:"instance_id"`
	Step       Step                      `json:"step"`
	Family     signal.Family             `json:"family,omitempty"`
	Category   signal.Category           `json:"category,omitempty"`
	PatternID  string                    `json:"pattern_id,omitempty"`
	Settings   signal.GenerationSettings `json:"settings"`
	Result     *signal.GenerationResult  `json:"result,omitempty"`
	SavedAt    time.Time                 `json:"saved_at"`
}

// SnapshotOf captures s for the workflow instance id.
func SnapshotOf(id string, s State, now time.Time) Snapshot {
	s = s.clone()
	snap := Snapshot{
		InstanceID: id,
		Step:       s.Step,
		Family:     s.Family,
		Category:   s.Category,
		PatternID:  s.PatternID,
		Settings:   s.Settings,
		Result:     s.Result,
		SavedAt:    now.UTC(),
	}
	if snap.Step == StepGenerating {
		snap.Step = StepReadyToGenerate
	}
	return snap
}

// Snapshot captures the current state.
func (c *Controller) Snapshot() Snapshot {
	return SnapshotOf(c.id, c.State(), time.Now())
}

// Restore rebuilds the workflow from snap by replaying its selections in
// order. Replay stops at the first selection the freshly loaded catalog no
// longer offers; the state reached so far is kept and the error returned.
// A saved result is reattached whenever the replay reached its family.
func (c *Controller) Restore(ctx context.Context, snap Snapshot) (State, error) {
	state, err := c.replaySelections(ctx, snap)
	if snap.Result == nil || state.Family != snap.Result.Family {
		return state, err
	}
	restored, restoreErr := c.Dispatch(ResultRestored{
		Result: *snap.Result,
		Show:   err == nil && snap.Step == StepGenerated,
	})
	if restoreErr != nil {
		if err == nil {
			err = restoreErr
		}
		return state, err
	}
	return restored, err
}

func (c *Controller) replaySelections(ctx context.Context, snap Snapshot) (State, error) {
	state := c.Reset()
	if snap.Family == "" {
		return state, nil
	}
	state, err := c.SelectFamily(ctx, snap.Family)
	if err != nil || snap.Category == "" {
		return state, err
	}
	if state, err = c.SelectCategory(snap.Category); err != nil || snap.PatternID == "" {
		return state, err
	}
	if state, err = c.SelectPattern(snap.PatternID); err != nil {
		return state, err
	}
	return c.EditSettings(snap.Settings)
}
