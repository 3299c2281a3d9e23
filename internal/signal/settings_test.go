package signal_test

import (
	"errors"
	"testing"

	"signalgen/internal/services"
	"signalgen/internal/signal"
)

func TestValidateDurationBounds(t *testing.T) {
	for d := 0; d <= 400; d++ {
		settings := signal.GenerationSettings{DurationSeconds: d, SamplingRateHz: 256}
		err := settings.Validate()
		inRange := d >= 10 && d <= 300
		if inRange && err != nil {
			t.Fatalf("duration %d: unexpected error %v", d, err)
		}
		if !inRange {
			if err == nil {
				t.Fatalf("duration %d: expected rejection", d)
			}
			if !errors.Is(err, services.ErrInvalidSettings) {
				t.Fatalf("duration %d: expected invalid settings marker, got %v", d, err)
			}
		}
	}
}

func TestValidateSamplingRateSteps(t *testing.T) {
	accepted := map[int]bool{}
	for _, rate := range signal.SamplingRates() {
		accepted[rate] = true
	}
	if len(accepted) != 8 {
		t.Fatalf("expected 8 sampling rates, got %v", signal.SamplingRates())
	}
	for r := 0; r <= 1200; r++ {
		err := signal.GenerationSettings{DurationSeconds: 30, SamplingRateHz: r}.Validate()
		if accepted[r] && err != nil {
			t.Fatalf("rate %d: unexpected error %v", r, err)
		}
		if !accepted[r] && !errors.Is(err, services.ErrInvalidSettings) {
			t.Fatalf("rate %d: expected invalid settings, got %v", r, err)
		}
	}
}

func TestClampSnapsIntoRange(t *testing.T) {
	cases := []struct {
		in   signal.GenerationSettings
		want signal.GenerationSettings
	}{
		{signal.GenerationSettings{DurationSeconds: 5, SamplingRateHz: 200}, signal.GenerationSettings{DurationSeconds: 10, SamplingRateHz: 256}},
		{signal.GenerationSettings{DurationSeconds: 400, SamplingRateHz: 2000}, signal.GenerationSettings{DurationSeconds: 300, SamplingRateHz: 1024}},
		{signal.GenerationSettings{DurationSeconds: 60, SamplingRateHz: 0}, signal.GenerationSettings{DurationSeconds: 60, SamplingRateHz: 128}},
		{signal.GenerationSettings{DurationSeconds: 60, SamplingRateHz: 191}, signal.GenerationSettings{DurationSeconds: 60, SamplingRateHz: 128}},
		{signal.GenerationSettings{DurationSeconds: 60, SamplingRateHz: 192}, signal.GenerationSettings{DurationSeconds: 60, SamplingRateHz: 256}},
	}
	for _, tc := range cases {
		got := tc.in.Clamp()
		if got != tc.want {
			t.Fatalf("Clamp(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
		if err := got.Validate(); err != nil {
			t.Fatalf("clamped settings should validate: %v", err)
		}
	}
}

func TestDefaultSettings(t *testing.T) {
	got := signal.DefaultSettings()
	if got.DurationSeconds != 30 || got.SamplingRateHz != 256 {
		t.Fatalf("unexpected defaults %+v", got)
	}
}

func TestGenerationRequestValidate(t *testing.T) {
	req := signal.GenerationRequest{Family: signal.FamilyEEG, PatternID: "normal_awake", Settings: signal.DefaultSettings()}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.PatternID = " "
	if err := req.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
