// Package signalapi is the typed HTTP client for the remote EEG/ECG generation
// service.
//
// Each endpoint has its own response contract: health, catalog, generate and
// session-file calls decode JSON, while artifact downloads and plot previews
// are read as raw bytes and never JSON-decoded on success. Every call runs
// under its own timeout class, carries an X-Request-ID header, and returns
// errors tagged with the services markers (ErrNetwork, ErrCatalogUnavailable,
// ErrGenerationFailed, ErrArtifactNotFound). The client never retries.
package signalapi
