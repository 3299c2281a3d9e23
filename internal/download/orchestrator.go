package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"signalgen/internal/fileutil"
	"signalgen/internal/logging"
	"signalgen/internal/services"
	"signalgen/internal/signal"
	"signalgen/internal/textutil"
)

var (
	// ErrNoResult is returned when there is no generation result to download.
	ErrNoResult = fmt.Errorf("%w: no generation result to download", services.ErrArtifactNotFound)
	// ErrStaleSession is returned when the result is no longer the one the
	// workflow holds.
	ErrStaleSession = fmt.Errorf("%w: session is no longer active", services.ErrArtifactNotFound)
)

const (
	lockDirName    = ".locks"
	lockRetryDelay = 50 * time.Millisecond
)

// Downloader fetches one artifact. *signalapi.Client satisfies it.
type Downloader interface {
	Download(ctx context.Context, sessionID string, kind signal.ArtifactKind) (signal.Artifact, error)
}

// SessionSource reports the session the workflow currently holds.
// *workflow.Controller satisfies it.
type SessionSource interface {
	ActiveSessionID() string
}

// Saved describes an artifact written to disk.
type Saved struct {
	SessionID   string
	Kind        signal.ArtifactKind
	Path        string
	ContentType string
	Bytes       int64
	SHA256      string
}

// Outcome is the per-kind result of RequestAll.
type Outcome struct {
	Kind  signal.ArtifactKind
	Saved Saved
	Err   error
}

// Orchestrator turns artifact payloads into local files.
type Orchestrator struct {
	downloader Downloader
	sessions   SessionSource
	dir        string
	logger     *slog.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSessionSource enables the active-session check. Without one, any
// result is accepted.
func WithSessionSource(sessions SessionSource) Option {
	return func(o *Orchestrator) {
		o.sessions = sessions
	}
}

// New returns an orchestrator writing into dir.
func New(downloader Downloader, dir string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		downloader: downloader,
		dir:        dir,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.NewComponentLogger(o.logger, "download")
	return o
}

// Dir returns the download directory.
func (o *Orchestrator) Dir() string { return o.dir }

// FileName is the deterministic local name for kind of result, e.g.
// "ecg_stemi_csv.csv".
func FileName(result signal.GenerationResult, kind signal.ArtifactKind) string {
	return textutil.TokenName(kind.Ext(), string(result.Family), result.PatternID, string(kind))
}

// Request downloads one artifact of result. The result is captured by value
// before any I/O starts.
func (o *Orchestrator) Request(ctx context.Context, result *signal.GenerationResult, kind signal.ArtifactKind) (Saved, error) {
	if result == nil || result.SessionID == "" {
		return Saved{}, ErrNoResult
	}
	captured := *result
	if err := o.checkActive(captured.SessionID); err != nil {
		return Saved{}, err
	}
	return o.fetch(ctx, captured, kind)
}

// RequestAll downloads kinds concurrently. Failures are reported per kind;
// one failing kind does not stop the others. Outcomes follow the order of
// kinds.
func (o *Orchestrator) RequestAll(ctx context.Context, result *signal.GenerationResult, kinds ...signal.ArtifactKind) []Outcome {
	if len(kinds) == 0 {
		kinds = signal.ArtifactKinds()
	}
	outcomes := make([]Outcome, len(kinds))
	for i, kind := range kinds {
		outcomes[i].Kind = kind
	}
	if result == nil || result.SessionID == "" {
		for i := range outcomes {
			outcomes[i].Err = ErrNoResult
		}
		return outcomes
	}
	captured := *result
	if err := o.checkActive(captured.SessionID); err != nil {
		for i := range outcomes {
			outcomes[i].Err = err
		}
		return outcomes
	}

	var g errgroup.Group
	for i, kind := range kinds {
		g.Go(func() error {
			saved, err := o.fetch(ctx, captured, kind)
			outcomes[i].Saved = saved
			outcomes[i].Err = err
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (o *Orchestrator) checkActive(sessionID string) error {
	if o.sessions == nil {
		return nil
	}
	if active := o.sessions.ActiveSessionID(); active != sessionID {
		if active == "" {
			return ErrNoResult
		}
		return ErrStaleSession
	}
	return nil
}

func (o *Orchestrator) fetch(ctx context.Context, result signal.GenerationResult, kind signal.ArtifactKind) (Saved, error) {
	ctx = services.WithSessionID(ctx, result.SessionID)
	logger := logging.WithContext(ctx, o.logger).With(logging.String("kind", string(kind)))

	artifact, err := o.downloader.Download(ctx, result.SessionID, kind)
	if err != nil {
		logging.WarnWithContext(logger, "artifact download failed", "download_failed",
			logging.String("status", string(services.FailureStatus(err))),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "generate again if the session has expired"),
			logging.String(logging.FieldImpact, "file was not saved"),
		)
		return Saved{}, err
	}

	target := filepath.Join(o.dir, FileName(result, kind))
	written, err := o.writeLocked(ctx, target, artifact.Data)
	if err != nil {
		return Saved{}, err
	}
	saved := Saved{
		SessionID:   result.SessionID,
		Kind:        kind,
		Path:        written.Path,
		ContentType: artifact.ContentType,
		Bytes:       written.Bytes,
		SHA256:      written.SHA256,
	}
	logger.Info("artifact saved",
		logging.String("path", saved.Path),
		logging.Int64("bytes", saved.Bytes),
		logging.String("content_type", saved.ContentType),
	)
	return saved, nil
}

func (o *Orchestrator) writeLocked(ctx context.Context, target string, data []byte) (fileutil.WriteResult, error) {
	lockDir := filepath.Join(o.dir, lockDirName)
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return fileutil.WriteResult{}, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(filepath.Join(lockDir, filepath.Base(target)+".lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fileutil.WriteResult{}, fmt.Errorf("lock %s: %w", filepath.Base(target), err)
	}
	if !locked {
		return fileutil.WriteResult{}, errors.New("lock " + filepath.Base(target) + ": not acquired")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			o.logger.Warn("failed to release download lock", logging.String("path", target), logging.Error(err))
		}
	}()

	written, err := fileutil.WriteFileAtomic(target, data, 0o644)
	if err != nil {
		return fileutil.WriteResult{}, fmt.Errorf("save %s: %w", filepath.Base(target), err)
	}
	return written, nil
}
