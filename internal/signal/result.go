package signal

import (
	"fmt"
	"strings"
	"time"

	"signalgen/internal/services"
)

// GenerationRequest is derived from the workflow selections at submit time
// and never modified afterwards.
type GenerationRequest struct {
	Family    Family             `json:"family"`
	PatternID string             `json:"pattern_id"`
	Settings  GenerationSettings `json:"settings"`
}

// Validate checks the request is complete and its settings are in bounds.
func (r GenerationRequest) Validate() error {
	if !r.Family.Valid() {
		return services.Wrap(services.ErrValidation, "request", "family", fmt.Sprintf("unknown family %q", r.Family), nil)
	}
	if strings.TrimSpace(r.PatternID) == "" {
		return services.Wrap(services.ErrValidation, "request", "pattern", "pattern identifier required", nil)
	}
	return r.Settings.Validate()
}

// GenerationResult describes one successful generation: the opaque session
// handle plus what is needed to preview and download its artifacts.
type GenerationResult struct {
	SessionID       string    `json:"session_id"`
	Family          Family    `json:"family"`
	PatternID       string    `json:"pattern_id"`
	PlotPath        string    `json:"plot_path"`
	CSVPath         string    `json:"csv_path,omitempty"`
	FeaturesPath    string    `json:"features_path,omitempty"`
	DurationSeconds int       `json:"duration_seconds"`
	SamplingRateHz  int       `json:"sampling_rate_hz"`
	Channels        []string  `json:"channels,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// ChannelCount is the number of EEG electrodes; zero for ECG.
func (r GenerationResult) ChannelCount() int {
	return len(r.Channels)
}

// SampleCount is the number of samples per channel.
func (r GenerationResult) SampleCount() int {
	return r.DurationSeconds * r.SamplingRateHz
}

// ArtifactKind names one deliverable file of a session.
type ArtifactKind string

const (
	ArtifactCSV      ArtifactKind = "csv"
	ArtifactFeatures ArtifactKind = "features"
	ArtifactPlot     ArtifactKind = "plot"
)

// ArtifactKinds lists every kind in download order.
func ArtifactKinds() []ArtifactKind {
	return []ArtifactKind{ArtifactCSV, ArtifactFeatures, ArtifactPlot}
}

// ParseArtifactKind accepts the wire form in any case.
func ParseArtifactKind(value string) (ArtifactKind, error) {
	kind := ArtifactKind(strings.ToLower(strings.TrimSpace(value)))
	if !kind.Valid() {
		return "", fmt.Errorf("unknown artifact kind %q (want csv, features or plot)", value)
	}
	return kind, nil
}

// ParseArtifactKinds splits a comma separated list, dropping duplicates.
func ParseArtifactKinds(value string) ([]ArtifactKind, error) {
	var kinds []ArtifactKind
	seen := make(map[ArtifactKind]struct{})
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		kind, err := ParseArtifactKind(part)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[kind]; ok {
			continue
		}
		seen[kind] = struct{}{}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func (k ArtifactKind) Valid() bool {
	switch k {
	case ArtifactCSV, ArtifactFeatures, ArtifactPlot:
		return true
	}
	return false
}

// Ext is the file extension used when saving the artifact.
func (k ArtifactKind) Ext() string {
	if k == ArtifactPlot {
		return "png"
	}
	return "csv"
}

// DefaultContentType is used when the service omits Content-Type.
func (k ArtifactKind) DefaultContentType() string {
	if k == ArtifactPlot {
		return "image/png"
	}
	return "text/csv"
}

func (k ArtifactKind) String() string { return string(k) }

// Artifact is a downloaded binary payload.
type Artifact struct {
	Kind        ArtifactKind
	ContentType string
	Data        []byte
}
