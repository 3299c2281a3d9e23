package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"signalgen/internal/catalog"
	"signalgen/internal/config"
	"signalgen/internal/logging"
	"signalgen/internal/services"
	"signalgen/internal/sessionstore"
	"signalgen/internal/signalapi"
	"signalgen/internal/workflow"
)

var errPersistenceDisabled = errors.New("session persistence is disabled; set [session] persist = true in the config")

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger once and prunes log files older
// than the configured retention.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		logging.CleanupOldLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays)
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) client() (*signalapi.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return signalapi.NewClient(signalapi.ConfigFromApp(cfg), signalapi.WithLogger(logger)), nil
}

// workflowSession bundles everything one workflow run needs.
type workflowSession struct {
	cfg        *config.Config
	logger     *slog.Logger
	client     *signalapi.Client
	catalogs   *catalog.Cache
	controller *workflow.Controller
	store      *sessionstore.Store
}

// newWorkflowSession wires a controller to the service and refuses to start
// the workflow unless the service passes its health check.
func (c *commandContext) newWorkflowSession(cmd *cobra.Command, clamp bool) (*workflowSession, error) {
	session, err := c.buildWorkflowSession(cmd, clamp)
	if err != nil {
		return nil, err
	}
	if err := session.checkHealth(cmd.Context()); err != nil {
		session.Close()
		return nil, failed("start workflow", err)
	}
	return session, nil
}

// buildWorkflowSession wires a controller without contacting the service.
// When persistence is enabled every state change is saved to the session
// store.
func (c *commandContext) buildWorkflowSession(cmd *cobra.Command, clamp bool) (*workflowSession, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	client, err := c.client()
	if err != nil {
		return nil, err
	}

	cache := catalog.NewCache(client, cfg.CatalogTTL(), logger)
	ctrl := workflow.NewController(cache, client,
		workflow.WithLogger(logger),
		workflow.WithDefaults(cfg.DefaultSettings()),
		workflow.WithClamp(clamp || cfg.Generation.ClampOutOfRange),
		workflow.WithInstanceID(cfg.Session.InstanceID),
	)
	session := &workflowSession{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		catalogs:   cache,
		controller: ctrl,
	}

	if cfg.Session.Persist {
		store, err := sessionstore.OpenFromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		session.store = store
		persistSnapshots(cmd, ctrl, store, logger)
	}
	return session, nil
}

// checkHealth gates entry into the workflow. A failure matches
// services.ErrServiceUnavailable and no catalog or generation call is made.
func (s *workflowSession) checkHealth(ctx context.Context) error {
	err := s.client.HealthCheck(ctx)
	if err == nil {
		return nil
	}
	logging.WarnWithContext(s.logger, "generation service unhealthy", "service_unhealthy",
		logging.String(logging.FieldWorkflowID, s.controller.ID()),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "run signalgen health and check service.base_url"),
		logging.String(logging.FieldImpact, "workflow blocked until the service reports healthy"),
	)
	return services.Wrap(services.ErrServiceUnavailable, "workflow", "health", "", err)
}

func (s *workflowSession) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func persistSnapshots(cmd *cobra.Command, ctrl *workflow.Controller, store *sessionstore.Store, logger *slog.Logger) {
	ctrl.OnChange(func(state workflow.State) {
		if state.Step == workflow.StepGenerating {
			return
		}
		snap := workflow.SnapshotOf(ctrl.ID(), state, time.Now())
		if err := store.Save(cmd.Context(), snap); err != nil {
			logging.WarnWithContext(logger, "session snapshot not saved", "snapshot_save_failed",
				logging.String(logging.FieldWorkflowID, ctrl.ID()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.state_dir permissions"),
				logging.String(logging.FieldImpact, "signalgen download will not see this session"),
			)
		}
	})
}

func (c *commandContext) openStore() (*sessionstore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Session.Persist {
		return nil, errPersistenceDisabled
	}
	store, err := sessionstore.OpenFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return store, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
