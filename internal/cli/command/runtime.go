package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/kubecloudsinc/kci-client/internal/cli/config"
	"github.com/kubecloudsinc/kci-client/internal/cli/connection"
	"github.com/kubecloudsinc/kci-client/internal/core/service"
	"github.com/kubecloudsinc/kci-client/internal/infra/tlsroots"
	"github.com/kubecloudsinc/kci-client/internal/storage"
	"github.com/kubecloudsinc/kci-client/internal/storage/tokenstore"
	"github.com/kubecloudsinc/kci-client/internal/telemetry/logger"
	"github.com/kubecloudsinc/kci-client/internal/telemetry/metric"
)

// runtimeKey is the App.Metadata key holding the *Runtime.
const runtimeKey = "kci.runtime"

// Runtime is everything a session command needs, wired from configuration.
type Runtime struct {
	Config  *config.CLIConfig
	Logger  logger.Logger
	Metrics *metric.Registry
	Session *service.SessionController

	engine storage.KVEngine
}

// NewRuntime opens the token store and builds the API clients and the
// session controller. logOut receives diagnostic logs.
func NewRuntime(cfg *config.CLIConfig, logOut io.Writer) (*Runtime, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logOut,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	transportOpts := []connection.Option{
		connection.WithTimeout(cfg.HTTP.Timeout),
		connection.WithRateLimit(cfg.HTTP.RateLimit, 1),
		connection.WithLogger(log),
	}
	if cfg.HTTP.CAFile != "" {
		tlsCfg, err := tlsroots.ClientTLSConfig(cfg.HTTP.CAFile)
		if err != nil {
			return nil, fmt.Errorf("load http.ca_file: %w", err)
		}
		transportOpts = append(transportOpts, connection.WithTLSConfig(tlsCfg))
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	kv := storage.DefaultKVConfig(cfg.Store.Path)
	kv.Engine = cfg.Store.Engine
	engine, err := storage.Open(kv, log.Slog())
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	metrics := metric.NewRegistry()
	if b, ok := engine.(*storage.BadgerEngine); ok {
		b.RegisterMetrics(metrics.Registerer())
	}

	store := tokenstore.NewKVStore(engine,
		tokenstore.WithPassphrase(cfg.Store.Passphrase),
		tokenstore.WithLogger(log.Slog()),
	)

	transport := connection.NewHTTPClient(cfg.Server, transportOpts...)
	clientOpts := []service.ClientOption{
		service.WithLogger(log),
		service.WithMetrics(metrics),
	}

	session := service.NewSessionController(store,
		service.NewAuthClient(transport, clientOpts...),
		service.NewEmployeeClient(transport, clientOpts...),
		service.WithExpireOnUnauthorized(cfg.Session.ExpireOnUnauthorized),
		service.WithSessionLogger(log),
	)
	metrics.Registerer().MustRegister(metric.NewSessionCollector(func() bool {
		return session.State().IsAuthenticated()
	}))

	log.Debug("runtime ready",
		"server", transport.BaseURL(),
		"store_engine", cfg.Store.Engine,
		"store_path", cfg.Store.Path,
		"state", session.State().Status.String(),
	)

	return &Runtime{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics,
		Session: session,
		engine:  engine,
	}, nil
}

// Close writes the metrics textfile, if configured, and closes the store.
func (r *Runtime) Close() error {
	var errs []error
	// Closing badger refreshes its size gauges, so the dump comes after.
	if err := r.engine.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close token store: %w", err))
	}
	if path := r.Config.Metrics.Textfile; path != "" {
		if err := r.Metrics.WriteTextfile(path); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// runtimeFrom returns the Runtime for this invocation, building it on
// first use.
func runtimeFrom(c *cli.Context) (*Runtime, error) {
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		return rt, nil
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	rt, err := NewRuntime(cfg, stderr(c))
	if err != nil {
		return nil, err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[runtimeKey] = rt
	return rt, nil
}

// closeRuntime is the App.After hook.
func closeRuntime(c *cli.Context) error {
	rt, ok := c.App.Metadata[runtimeKey].(*Runtime)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, runtimeKey)
	return rt.Close()
}
