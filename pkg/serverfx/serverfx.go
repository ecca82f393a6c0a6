package serverfx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/taskbridge/connector-core/pkg/catalog"
	"github.com/taskbridge/connector-core/pkg/dispatch"
	"github.com/taskbridge/connector-core/pkg/manifest"
	"github.com/taskbridge/connector-core/pkg/middleware/logger"
	"github.com/taskbridge/connector-core/pkg/middleware/metrics"
	"github.com/taskbridge/connector-core/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ---------- Options ----------

type Config struct {
	Service         string // for logs only
	ManifestEnv     string // e.g., CSP_MANIFEST
	DefaultManifest string // e.g., "manifest.toml"
	ListenEnv       string // SERVER_LISTEN_ADDRESS
}

type Option func(*Config)

func WithService(s string) Option            { return func(c *Config) { c.Service = s } }
func WithManifestEnv(k string) Option        { return func(c *Config) { c.ManifestEnv = k } }
func WithDefaultManifest(path string) Option { return func(c *Config) { c.DefaultManifest = path } }
func WithListenEnv(k string) Option          { return func(c *Config) { c.ListenEnv = k } }

func defaultConfig() Config {
	return Config{
		Service:         "csp",
		ManifestEnv:     "CSP_MANIFEST",
		DefaultManifest: "manifest.toml",
		ListenEnv:       "SERVER_LISTEN_ADDRESS",
	}
}

// Module returns a complete Fx option set serving the given catalog; add
// app-specific fx.Invoke(...) alongside. The catalog is frozen when the
// router is built, before the listener starts: registration happens-before
// serving.
func Module(cat *catalog.Catalog, opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		// Ambient middleware
		logger.Module,
		fx.Provide(fx.Annotate(metrics.ProvideMetrics, fx.ResultTags(`name:"metrics"`))),
		// Router impl
		fx.Provide(httpx.NewChi),
		// Config into DI
		fx.Provide(func() Config { return cfg }),
		fx.Provide(provideManifest),
		// Catalog into DI
		fx.Supply(cat),
		// Dispatcher + router
		fx.Provide(provideDispatcher),
		fx.Provide(fx.Annotate(
			provideRouter,
			fx.ParamTags(``, ``, ``, `name:"metrics"`, ``, ``),
			fx.ResultTags(`name:"app"`),
		)),
		// Lifecycle
		fx.Invoke(registerHooks),
	)
}

// ---------- Manifest ----------

func provideManifest(cfg Config) (manifest.Config, error) {
	path := envOr(cfg.ManifestEnv, cfg.DefaultManifest)
	man, err := dispatch.LoadConfig(path)
	if err != nil {
		return manifest.Config{}, fmt.Errorf("manifest load failed (%s): %w", path, err)
	}
	logger.SetLogDir(man.Logging.Dir)
	logger.AddBodyLogPaths(man.Logging.BodyLogPaths...)
	return man, nil
}

// ---------- Dispatcher / Router ----------

func provideDispatcher(cat *catalog.Catalog, zl *zap.Logger) *dispatch.Dispatcher {
	return dispatch.New(cat.Snapshot(), dispatch.WithLogger(zl))
}

func provideRouter(
	man manifest.Config,
	d *dispatch.Dispatcher,
	lm *logger.Middleware,
	/* name:"metrics" */ m http.Handler,
	r httpx.Router,
	zl *zap.Logger,
) http.Handler {
	return dispatch.BuildRouter(d, man, dispatch.BuildDeps{
		LogMW:   lm,
		Metrics: m,
		Router:  r,
		Log:     zl,
	})
}

// ---------- Lifecycle ----------

type serverDeps struct {
	fx.In
	Logger *zap.Logger
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, cfg Config, man manifest.Config, d serverDeps) {
	addr := envOr(cfg.ListenEnv, man.Server.Listen)

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  time.Duration(man.Server.ReadTimeoutMS) * time.Millisecond,
		WriteTimeout: time.Duration(man.Server.WriteTimeoutMS) * time.Millisecond,
		IdleTimeout:  time.Duration(man.Server.IdleTimeoutMS) * time.Millisecond,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			d.Logger.Info("server starting",
				zap.String("service", cfg.Service),
				zap.String("addr", addr),
			)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					d.Logger.Fatal("server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", cfg.Service))
			return srv.Shutdown(ctx)
		},
	})
}

// ---------- tiny helpers ----------

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
