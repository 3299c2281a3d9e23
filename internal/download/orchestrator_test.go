package download_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"signalgen/internal/download"
	"signalgen/internal/services"
	"signalgen/internal/signal"
	"signalgen/internal/testsupport"
)

type staticSession struct{ id atomic.Value }

func (s *staticSession) Set(id string) { s.id.Store(id) }

func (s *staticSession) ActiveSessionID() string {
	v, _ := s.id.Load().(string)
	return v
}

func generate(t *testing.T, svc *testsupport.FakeService, family signal.Family, pattern string) signal.GenerationResult {
	t.Helper()
	result, err := svc.Client().Generate(context.Background(), signal.GenerationRequest{
		Family:    family,
		PatternID: pattern,
		Settings:  signal.DefaultSettings(),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return result
}

func TestFileName(t *testing.T) {
	t.Parallel()

	result := signal.GenerationResult{Family: signal.FamilyECG, PatternID: "stemi"}
	cases := map[signal.ArtifactKind]string{
		signal.ArtifactCSV:      "ecg_stemi_csv.csv",
		signal.ArtifactFeatures: "ecg_stemi_features.csv",
		signal.ArtifactPlot:     "ecg_stemi_plot.png",
	}
	for kind, want := range cases {
		if got := download.FileName(result, kind); got != want {
			t.Fatalf("FileName(%s) = %q, want %q", kind, got, want)
		}
	}

	odd := signal.GenerationResult{Family: signal.FamilyEEG, PatternID: "../Spike Wave"}
	if got := download.FileName(odd, signal.ArtifactCSV); got != "eeg_spike_wave_csv.csv" {
		t.Fatalf("expected sanitized name, got %q", got)
	}
}

func TestRequestSavesArtifact(t *testing.T) {
	t.Parallel()

	svc := testsupport.NewFakeService(t)
	result := generate(t, svc, signal.FamilyECG, "stemi")
	sessions := &staticSession{}
	sessions.Set(result.SessionID)
	dir := t.TempDir()
	orch := download.New(svc.Client(), dir, download.WithSessionSource(sessions))

	saved, err := orch.Request(context.Background(), &result, signal.ArtifactCSV)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if saved.Path != filepath.Join(dir, "ecg_stemi_csv.csv") {
		t.Fatalf("unexpected path %q", saved.Path)
	}
	data, err := os.ReadFile(saved.Path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	want := testsupport.ArtifactBytes(result.SessionID, signal.ArtifactCSV)
	if string(data) != string(want) {
		t.Fatalf("saved content mismatch")
	}
	sum := sha256.Sum256(want)
	if saved.SHA256 != hex.EncodeToString(sum[:]) || saved.Bytes != int64(len(want)) {
		t.Fatalf("unexpected digest %s / %d bytes", saved.SHA256, saved.Bytes)
	}
	if saved.ContentType != "text/csv" || saved.SessionID != result.SessionID {
		t.Fatalf("unexpected metadata %+v", saved)
	}
}

func TestRequestAllDownloadsEveryKind(t *testing.T) {
	t.Parallel()

	svc := testsupport.NewFakeService(t)
	result := generate(t, svc, signal.FamilyEEG, "spike_wave_3hz")
	orch := download.New(svc.Client(), t.TempDir())

	outcomes := orch.RequestAll(context.Background(), &result)
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	seen := make(map[string]bool)
	for i, outcome := range outcomes {
		if outcome.Kind != signal.ArtifactKinds()[i] {
			t.Fatalf("outcome %d kind = %s", i, outcome.Kind)
		}
		if outcome.Err != nil {
			t.Fatalf("%s: %v", outcome.Kind, outcome.Err)
		}
		if seen[outcome.Saved.SHA256] {
			t.Fatalf("%s duplicated another artifact's payload", outcome.Kind)
		}
		seen[outcome.Saved.SHA256] = true
	}
	if outcomes[2].Saved.ContentType != "image/png" {
		t.Fatalf("expected png plot, got %q", outcomes[2].Saved.ContentType)
	}
}

func TestRequestAllReportsFailuresPerKind(t *testing.T) {
	t.Parallel()

	svc := testsupport.NewFakeService(t)
	result := generate(t, svc, signal.FamilyEEG, "focal_slowing")
	svc.RemoveArtifact(result.SessionID, signal.ArtifactFeatures)
	orch := download.New(svc.Client(), t.TempDir())

	outcomes := orch.RequestAll(context.Background(), &result, signal.ArtifactCSV, signal.ArtifactFeatures)
	if outcomes[0].Err != nil {
		t.Fatalf("csv: %v", outcomes[0].Err)
	}
	if !errors.Is(outcomes[1].Err, services.ErrArtifactNotFound) {
		t.Fatalf("expected features not found, got %v", outcomes[1].Err)
	}
}

func TestUnknownSessionNeverReturnsPayload(t *testing.T) {
	t.Parallel()

	svc := testsupport.NewFakeService(t)
	dir := t.TempDir()
	orch := download.New(svc.Client(), dir)
	ghost := signal.GenerationResult{SessionID: "never-generated", Family: signal.FamilyEEG, PatternID: "flat_eeg"}

	for _, kind := range signal.ArtifactKinds() {
		saved, err := orch.Request(context.Background(), &ghost, kind)
		if !errors.Is(err, services.ErrArtifactNotFound) {
			t.Fatalf("%s: expected artifact not found, got %v", kind, err)
		}
		if saved.Path != "" {
			t.Fatalf("%s: unexpected saved file %q", kind, saved.Path)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			t.Fatalf("unexpected file %s", entry.Name())
		}
	}
}

func TestStaleAndMissingResults(t *testing.T) {
	t.Parallel()

	svc := testsupport.NewFakeService(t)
	first := generate(t, svc, signal.FamilyECG, "nstemi")
	second := generate(t, svc, signal.FamilyECG, "nstemi")
	sessions := &staticSession{}
	sessions.Set(second.SessionID)
	orch := download.New(svc.Client(), t.TempDir(), download.WithSessionSource(sessions))

	if _, err := orch.Request(context.Background(), &first, signal.ArtifactPlot); !errors.Is(err, download.ErrStaleSession) {
		t.Fatalf("expected stale session, got %v", err)
	}
	if _, err := orch.Request(context.Background(), nil, signal.ArtifactPlot); !errors.Is(err, download.ErrNoResult) {
		t.Fatalf("expected no result, got %v", err)
	}

	sessions.Set("")
	outcomes := orch.RequestAll(context.Background(), &second)
	for _, outcome := range outcomes {
		if !errors.Is(outcome.Err, download.ErrNoResult) {
			t.Fatalf("%s: expected no result, got %v", outcome.Kind, outcome.Err)
		}
	}
	if services.FailureStatus(download.ErrStaleSession) != services.StatusNotFound {
		t.Fatal("stale session should surface as not found")
	}
}

type switchingDownloader struct {
	inner    download.Downloader
	sessions *staticSession
	next     string
}

func (d *switchingDownloader) Download(ctx context.Context, sessionID string, kind signal.ArtifactKind) (signal.Artifact, error) {
	d.sessions.Set(d.next)
	return d.inner.Download(ctx, sessionID, kind)
}

func TestDownloadBindsToCapturedSession(t *testing.T) {
	t.Parallel()

	svc := testsupport.NewFakeService(t)
	first := generate(t, svc, signal.FamilyEEG, "triphasic_waves")
	second := generate(t, svc, signal.FamilyEEG, "triphasic_waves")
	sessions := &staticSession{}
	sessions.Set(first.SessionID)
	downloader := &switchingDownloader{inner: svc.Client(), sessions: sessions, next: second.SessionID}
	orch := download.New(downloader, t.TempDir(), download.WithSessionSource(sessions))

	saved, err := orch.Request(context.Background(), &first, signal.ArtifactCSV)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	data, err := os.ReadFile(saved.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != string(testsupport.ArtifactBytes(first.SessionID, signal.ArtifactCSV)) {
		t.Fatal("download switched sessions mid-flight")
	}
	if saved.SessionID != first.SessionID {
		t.Fatalf("expected saved session %s, got %s", first.SessionID, saved.SessionID)
	}
}

func TestConcurrentRequestsForSameFile(t *testing.T) {
	t.Parallel()

	svc := testsupport.NewFakeService(t)
	result := generate(t, svc, signal.FamilyECG, "pericarditis")
	orch := download.New(svc.Client(), t.TempDir())

	outcomes := orch.RequestAll(context.Background(), &result, signal.ArtifactPlot, signal.ArtifactPlot, signal.ArtifactPlot)
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			t.Fatalf("plot: %v", outcome.Err)
		}
	}
	data, err := os.ReadFile(outcomes[0].Saved.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != string(testsupport.ArtifactBytes(result.SessionID, signal.ArtifactPlot)) {
		t.Fatal("plot content corrupted by concurrent writes")
	}
}
