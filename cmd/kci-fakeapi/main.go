// Package main runs the fake KubeCloudsInc employee API for local
// development against kci-cli.
//
// Settings come from flags, an optional YAML file and KCI_FAKEAPI_*
// environment variables. Setting tls.cert_file and tls.key_file serves
// HTTPS and reloads the key pair when the files change.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kubecloudsinc/kci-client/internal/infra/buildinfo"
	"github.com/kubecloudsinc/kci-client/internal/infra/confloader"
	"github.com/kubecloudsinc/kci-client/internal/infra/shutdown"
	"github.com/kubecloudsinc/kci-client/internal/infra/tlsroots"
	"github.com/kubecloudsinc/kci-client/internal/telemetry/logger"
	"github.com/kubecloudsinc/kci-client/internal/testutil/fakeapi"
	"github.com/kubecloudsinc/kci-client/pkg/token"
)

// serverConfig is the fake API process configuration. Keys nest one
// level so that KCI_FAKEAPI_TOKEN_TTL maps to token.ttl.
type serverConfig struct {
	Addr    string        `koanf:"addr"`
	Secret  string        `koanf:"secret"`
	Latency time.Duration `koanf:"latency"`
	Token   struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"token"`
	Reject struct {
		Message string `koanf:"message"`
	} `koanf:"reject"`
	TLS struct {
		CertFile string `koanf:"cert_file"`
		KeyFile  string `koanf:"key_file"`
	} `koanf:"tls"`
	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
	} `koanf:"log"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		addr        = flag.String("addr", "", "Listen address (default :8080)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("kci-fakeapi %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		if secret, err = token.GenerateBytes(32); err != nil {
			return fmt.Errorf("generate signing key: %w", err)
		}
		log.Info("using an ephemeral signing key; tokens end with the process")
	}

	api := fakeapi.New(fakeapi.Config{
		Secret:        secret,
		TokenTTL:      cfg.Token.TTL,
		RejectMessage: cfg.Reject.Message,
		Latency:       cfg.Latency,
		Logger:        log.Slog(),
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownHandler := shutdown.NewHandler(10 * time.Second)
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serve := httpServer.ListenAndServe
	if cfg.TLS.CertFile != "" || cfg.TLS.KeyFile != "" {
		certs, err := tlsroots.NewWatcher(cfg.TLS.CertFile, cfg.TLS.KeyFile, tlsroots.WithLogger(log.Slog()))
		if err != nil {
			return fmt.Errorf("load tls key pair: %w", err)
		}
		go func() {
			if err := certs.Run(ctx); err != nil {
				log.Error("certificate watcher stopped", "error", err)
			}
		}()
		shutdownHandler.OnShutdown(func(context.Context) error {
			log.Info("certificate watcher stopping", "loads", certs.Reloads())
			return nil
		})
		httpServer.TLSConfig = certs.ServerTLSConfig()
		serve = func() error { return httpServer.ListenAndServeTLS("", "") }
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("fake API listening", "addr", cfg.Addr, "tls", httpServer.TLSConfig != nil, "users", len(fakeapi.DefaultUsers()))
		if err := serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	go func() {
		// A listener failure also triggers shutdown.
		if err, ok := <-serveErr; ok {
			log.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	log.Info("fake API stopped")
	return nil
}

// loadConfig loads configuration from defaults, file and environment.
func loadConfig(configFile string) (*serverConfig, error) {
	opts := []confloader.Option{
		confloader.WithEnvPrefix("KCI_FAKEAPI_"),
		confloader.WithDefaults(map[string]any{
			"addr":       ":8080",
			"token.ttl":  "15m",
			"latency":    "0s",
			"log.level":  "info",
			"log.format": "text",
		}),
	}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	cfg := &serverConfig{}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
