package testsupport

import (
	"path/filepath"
	"testing"

	"signalgen/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Service.UserAgent = "signalgen/test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithService points the config at a fake generation service.
func WithService(svc *FakeService) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Service.BaseURL = svc.BaseURL()
		b.cfg.Service.AssetBaseURL = svc.AssetBaseURL()
	}
}

// WithPersistence enables the on-disk session snapshot store.
func WithPersistence() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Session.Persist = true
	}
}

// WithCatalogTTL overrides the catalog cache lifetime in seconds.
func WithCatalogTTL(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.CacheTTLSeconds = seconds
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DownloadDir)
}
