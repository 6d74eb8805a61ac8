package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goliatone/go-intakeqc"
	"github.com/goliatone/go-intakeqc/components/intake"
	"github.com/goliatone/go-intakeqc/internal/config"
	"github.com/goliatone/go-intakeqc/pkg/credentials"
	"github.com/goliatone/go-intakeqc/pkg/metrics"
)

func main() {
	var (
		configFlag   = flag.String("config", "", "YAML configuration file")
		addrFlag     = flag.String("addr", "", "HTTP listen address (overrides server.addr)")
		apiFlag      = flag.String("api", "", "Intake API base URL (overrides api.base_url)")
		logLevelFlag = flag.String("log-level", "", "Log level: debug, info, warn, error")
		themeFlag    = flag.String("theme", "", "Theme variant: light or dark")
		graceFlag    = flag.Duration("grace", 0, "Shutdown grace period (overrides server.shutdown_grace)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *addrFlag != "" {
		cfg.Server.Addr = *addrFlag
	}
	if *apiFlag != "" {
		cfg.API.BaseURL = *apiFlag
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = *logLevelFlag
	}
	if *themeFlag != "" {
		cfg.Theme.Variant = *themeFlag
	}
	if *graceFlag > 0 {
		cfg.Server.ShutdownGrace = *graceFlag
	}

	logger := cfg.Log.Logger(os.Stderr)
	slog.SetDefault(logger)

	collector := metrics.New(cfg.Metrics)
	app, err := intakeqc.New(cfg,
		intakeqc.WithLogger(logger),
		intakeqc.WithMetrics(collector),
	)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sealer, err := credentials.NewSealer(sessionSecret(cfg, logger))
	if err != nil {
		log.Fatalf("session: %v", err)
	}

	component, err := intake.New(app,
		intake.WithSealer(sealer),
		intake.WithLogger(logger),
		intake.WithTheme(cfg.Theme.Name, cfg.Theme.Variant),
		intake.WithSecureCookies(cfg.Server.SecureCookies),
	)
	if err != nil {
		log.Fatalf("web: %v", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           component.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	resources := make([]string, 0, len(cfg.Resources))
	for _, res := range app.Resources() {
		resources = append(resources, res.Name())
	}
	logger.Info("listening",
		"addr", cfg.Server.Addr,
		"api", cfg.API.BaseURL,
		"resources", strings.Join(resources, ","),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errChan:
		log.Fatalf("listen: %v", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

// sessionSecret returns the configured secret, or a random one when none is
// set. Random secrets sign everyone out on restart.
func sessionSecret(cfg config.Config, logger *slog.Logger) []byte {
	if secret := strings.TrimSpace(cfg.Server.SessionSecret); secret != "" {
		return []byte(secret)
	}
	logger.Warn("no session secret configured; sessions end on restart", "env", config.EnvSessionSecret)
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Fatalf("session: %v", err)
	}
	return secret
}
