package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"signalgen/internal/signal"
	"signalgen/internal/signalapi"
)

// FakeService is an in-process stand-in for the generation service. It
// serves the same routes and error envelopes, keeps generated sessions in
// memory, and exposes hooks for failure injection.
type FakeService struct {
	server *httptest.Server

	generateCalls atomic.Int64

	mu              sync.Mutex
	sessions        map[string]fakeSession
	order           []string
	catalogCalls    map[signal.Family]int
	catalogFailures map[signal.Family]int
	generateFailure string
	unhealthy       bool
	healthFailures  int
	healthCalls     int
	gate            chan struct{}
	started         chan struct{}
	requestIDs      []string
	lastGenerate    map[string]any
}

type fakeSession struct {
	family       signal.Family
	patternID    string
	duration     int
	samplingRate int
	files        map[signal.ArtifactKind]bool
}

// NewFakeService starts a fake service that is closed when the test ends.
func NewFakeService(t testing.TB) *FakeService {
	t.Helper()
	f := &FakeService{
		sessions:        make(map[string]fakeSession),
		catalogCalls:    make(map[signal.Family]int),
		catalogFailures: make(map[signal.Family]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", f.handleHealth)
	mux.HandleFunc("GET /api/{family}/types", f.handleTypes)
	mux.HandleFunc("POST /api/generate/{family}", f.handleGenerate)
	mux.HandleFunc("GET /api/download/{session}/{kind}", f.handleDownload)
	mux.HandleFunc("GET /api/session/{session}/files", f.handleSessionFiles)
	mux.HandleFunc("GET /static/plots/{name}", f.handlePlot)
	f.server = httptest.NewServer(f.recordRequestID(mux))
	t.Cleanup(f.server.Close)
	return f
}

// BaseURL is the API root, ending in /api.
func (f *FakeService) BaseURL() string { return f.server.URL + "/api" }

// AssetBaseURL is the root that static plot paths resolve against.
func (f *FakeService) AssetBaseURL() string { return f.server.URL }

// Client returns an API client wired to the fake.
func (f *FakeService) Client(opts ...signalapi.Option) *signalapi.Client {
	return signalapi.NewClient(signalapi.Config{
		BaseURL:      f.BaseURL(),
		AssetBaseURL: f.AssetBaseURL(),
		UserAgent:    "signalgen/test",
	}, opts...)
}

// Close stops the server early so subsequent calls fail at the transport.
func (f *FakeService) Close() { f.server.Close() }

// FailCatalog makes the next n catalog requests for family answer 503.
func (f *FakeService) FailCatalog(family signal.Family, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalogFailures[family] = n
}

// FailGeneration makes generate answer 500 with reason. An empty reason
// restores normal behavior.
func (f *FakeService) FailGeneration(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generateFailure = reason
}

// SetHealthy toggles the health endpoint between 200 and 503.
func (f *FakeService) SetHealthy(healthy bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unhealthy = !healthy
}

// FailHealth makes the next n health checks answer 503.
func (f *FakeService) FailHealth(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthFailures = n
}

// HealthCalls reports how many health checks were received.
func (f *FakeService) HealthCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthCalls
}

// BlockGeneration holds generate requests until release is called. The
// started channel receives once per request that reaches the gate.
func (f *FakeService) BlockGeneration() (started <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gate = gate
	f.started = make(chan struct{}, 16)
	var once sync.Once
	return f.started, func() {
		once.Do(func() {
			close(gate)
			f.mu.Lock()
			if f.gate == gate {
				f.gate = nil
			}
			f.mu.Unlock()
		})
	}
}

// ExpireSession drops a session as the service's cleanup would.
func (f *FakeService) ExpireSession(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
}

// RemoveArtifact deletes one file of a session.
func (f *FakeService) RemoveArtifact(sessionID string, kind signal.ArtifactKind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[sessionID]; ok {
		delete(s.files, kind)
	}
}

// GenerateCalls counts generate requests received.
func (f *FakeService) GenerateCalls() int { return int(f.generateCalls.Load()) }

// CatalogCalls counts catalog requests received for family.
func (f *FakeService) CatalogCalls(family signal.Family) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.catalogCalls[family]
}

// Sessions lists generated session ids in creation order.
func (f *FakeService) Sessions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

// RequestIDs lists the correlation headers received, in arrival order.
func (f *FakeService) RequestIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requestIDs...)
}

// LastGenerateBody returns the most recent generate payload.
func (f *FakeService) LastGenerateBody() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastGenerate
}

// ArtifactBytes returns the body the fake serves for kind of sessionID.
func ArtifactBytes(sessionID string, kind signal.ArtifactKind) []byte {
	switch kind {
	case signal.ArtifactCSV:
		return []byte("time,value\n0.000,0.0\n# " + sessionID + "\n")
	case signal.ArtifactFeatures:
		return []byte("feature,value\nmean,0.0\n# " + sessionID + "\n")
	default:
		return append([]byte("\x89PNG\r\n\x1a\n"), sessionID...)
	}
}

func (f *FakeService) recordRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(signalapi.RequestIDHeader); id != "" {
			f.mu.Lock()
			f.requestIDs = append(f.requestIDs, id)
			f.mu.Unlock()
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeService) handleHealth(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	f.healthCalls++
	unhealthy := f.unhealthy
	if f.healthFailures > 0 {
		f.healthFailures--
		unhealthy = true
	}
	f.mu.Unlock()
	if unhealthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": "test"})
}

func (f *FakeService) handleTypes(w http.ResponseWriter, r *http.Request) {
	family, err := signal.ParseFamily(r.PathValue("family"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	f.mu.Lock()
	f.catalogCalls[family]++
	failing := f.catalogFailures[family] > 0
	if failing {
		f.catalogFailures[family]--
	}
	f.mu.Unlock()
	if failing {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "catalog temporarily unavailable"})
		return
	}
	body, err := CatalogFor(family).WireJSON()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (f *FakeService) handleGenerate(w http.ResponseWriter, r *http.Request) {
	f.generateCalls.Add(1)
	family, err := signal.ParseFamily(r.PathValue("family"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	f.mu.Lock()
	gate, started := f.gate, f.started
	f.mu.Unlock()
	if gate != nil {
		select {
		case started <- struct{}{}:
		default:
		}
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	f.mu.Lock()
	f.lastGenerate = body
	failure := f.generateFailure
	f.mu.Unlock()

	patternID, _ := body["type"].(string)
	if patternID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": family.Label() + " type is required"})
		return
	}
	if failure != "" {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": failure})
		return
	}
	if _, _, ok := CatalogFor(family).FindPattern(patternID); !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("Unknown %s type: %s", family.Label(), patternID)})
		return
	}
	duration := intField(body, "duration", signal.DefaultDurationSeconds)
	rate := intField(body, "sampling_rate", signal.DefaultSamplingRateHz)

	sessionID := uuid.NewString()
	f.mu.Lock()
	f.sessions[sessionID] = fakeSession{
		family:       family,
		patternID:    patternID,
		duration:     duration,
		samplingRate: rate,
		files: map[signal.ArtifactKind]bool{
			signal.ArtifactCSV:      true,
			signal.ArtifactFeatures: true,
			signal.ArtifactPlot:     true,
		},
	}
	f.order = append(f.order, sessionID)
	f.mu.Unlock()

	data := map[string]any{
		"csv_path":      fmt.Sprintf("static/csv/%s_data.csv", sessionID),
		"features_path": fmt.Sprintf("static/csv/%s_features.csv", sessionID),
		"plot_path":     fmt.Sprintf("static/plots/%s_plot.png", sessionID),
		"duration":      duration,
		"sampling_rate": rate,
	}
	if family == signal.FamilyEEG {
		data["channels"] = EEGChannels
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"session_id": sessionID,
		"data":       data,
	})
}

func (f *FakeService) handleDownload(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")
	kind := signal.ArtifactKind(r.PathValue("kind"))
	if !kind.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid file type"})
		return
	}
	if !f.hasArtifact(sessionID, kind) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "File not found"})
		return
	}
	contentType := "text/csv; charset=utf-8"
	if kind == signal.ArtifactPlot {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_%s.%s", sessionID, kind, kind.Ext()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(ArtifactBytes(sessionID, kind))
}

func (f *FakeService) handleSessionFiles(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")
	files := map[string]string{}
	f.mu.Lock()
	if s, ok := f.sessions[sessionID]; ok {
		if s.files[signal.ArtifactCSV] {
			files["csv"] = fmt.Sprintf("static/csv/%s_data.csv", sessionID)
		}
		if s.files[signal.ArtifactFeatures] {
			files["features"] = fmt.Sprintf("static/csv/%s_features.csv", sessionID)
		}
		if s.files[signal.ArtifactPlot] {
			files["plot"] = fmt.Sprintf("static/plots/%s_plot.png", sessionID)
		}
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "files": files})
}

func (f *FakeService) handlePlot(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := strings.CutSuffix(r.PathValue("name"), "_plot.png")
	if !ok || !f.hasArtifact(sessionID, signal.ArtifactPlot) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(ArtifactBytes(sessionID, signal.ArtifactPlot))
}

func (f *FakeService) hasArtifact(sessionID string, kind signal.ArtifactKind) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	return ok && s.files[kind]
}

func intField(body map[string]any, key string, fallback int) int {
	if v, ok := body[key].(float64); ok {
		return int(v)
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
