package signal

import (
	"fmt"

	"signalgen/internal/services"
)

const (
	MinDurationSeconds     = 10
	MaxDurationSeconds     = 300
	DefaultDurationSeconds = 30

	MinSamplingRateHz     = 128
	MaxSamplingRateHz     = 1024
	SamplingRateStepHz    = 128
	DefaultSamplingRateHz = 256
)

// GenerationSettings are the user-editable generation parameters.
type GenerationSettings struct {
	DurationSeconds int `json:"duration_seconds"`
	SamplingRateHz  int `json:"sampling_rate_hz"`
}

// DefaultSettings returns the settings a fresh generator starts with.
func DefaultSettings() GenerationSettings {
	return GenerationSettings{
		DurationSeconds: DefaultDurationSeconds,
		SamplingRateHz:  DefaultSamplingRateHz,
	}
}

// SamplingRates lists every accepted sampling rate in ascending order.
func SamplingRates() []int {
	rates := make([]int, 0, MaxSamplingRateHz/SamplingRateStepHz)
	for rate := MinSamplingRateHz; rate <= MaxSamplingRateHz; rate += SamplingRateStepHz {
		rates = append(rates, rate)
	}
	return rates
}

// Validate rejects settings outside the accepted bounds. The returned error
// matches services.ErrInvalidSettings.
func (s GenerationSettings) Validate() error {
	if s.DurationSeconds < MinDurationSeconds || s.DurationSeconds > MaxDurationSeconds {
		return services.Wrap(services.ErrInvalidSettings, "settings", "duration",
			fmt.Sprintf("%d seconds outside [%d, %d]", s.DurationSeconds, MinDurationSeconds, MaxDurationSeconds), nil)
	}
	if !ValidSamplingRate(s.SamplingRateHz) {
		return services.Wrap(services.ErrInvalidSettings, "settings", "sampling_rate",
			fmt.Sprintf("%d Hz is not a multiple of %d in [%d, %d]", s.SamplingRateHz, SamplingRateStepHz, MinSamplingRateHz, MaxSamplingRateHz), nil)
	}
	return nil
}

// Clamp snaps the duration into range and the sampling rate to the nearest
// accepted step. Ties round up.
func (s GenerationSettings) Clamp() GenerationSettings {
	out := s
	out.DurationSeconds = clampInt(out.DurationSeconds, MinDurationSeconds, MaxDurationSeconds)

	rate := clampInt(out.SamplingRateHz, MinSamplingRateHz, MaxSamplingRateHz)
	steps := (rate + SamplingRateStepHz/2) / SamplingRateStepHz
	out.SamplingRateHz = clampInt(steps*SamplingRateStepHz, MinSamplingRateHz, MaxSamplingRateHz)
	return out
}

// ValidSamplingRate reports whether rate is one of SamplingRates.
func ValidSamplingRate(rate int) bool {
	return rate >= MinSamplingRateHz && rate <= MaxSamplingRateHz && rate%SamplingRateStepHz == 0
}

func clampInt(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
