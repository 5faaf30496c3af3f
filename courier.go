package courier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/aretw0/courier/internal/config"
	"github.com/aretw0/courier/internal/logging"
	"github.com/aretw0/courier/internal/school"
	httpadapter "github.com/aretw0/courier/pkg/adapters/http"
	loamadapter "github.com/aretw0/courier/pkg/adapters/loam"
	"github.com/aretw0/courier/pkg/adapters/memory"
	"github.com/aretw0/courier/pkg/adapters/redis"
	"github.com/aretw0/courier/pkg/behavior"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/mediator"
	"github.com/aretw0/courier/pkg/observability"
	"github.com/aretw0/courier/pkg/persistence"
	"github.com/aretw0/courier/pkg/ports"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
)

// Config is the host configuration.
type Config = config.Config

// DefaultConfig returns the built-in configuration: in-memory storage,
// local locking and metrics enabled.
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig reads a YAML or JSON configuration file over the defaults and
// applies COURIER_* environment overrides.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// App wires storage, behaviors and the driving-school handlers into a
// Mediator and exposes them over HTTP.
type App struct {
	cfg      Config
	mediator *mediator.Mediator
	streams  *httpadapter.Streams
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	registerer prometheus.Registerer
	redis      *backend.Client
	ownsRedis  bool
	modules    []mediator.Module
}

// Option configures the App.
type Option func(*App)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithRegisterer registers the collectors with reg instead of a private
// registry. When reg is also a prometheus.Gatherer it backs GET /metrics.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(a *App) {
		a.registerer = reg
	}
}

// WithRedisClient reuses client instead of dialing store.redis.addr.
// The App does not close an injected client.
func WithRedisClient(client *backend.Client) Option {
	return func(a *App) {
		a.redis = client
	}
}

// WithModules installs extra handlers, behaviors or subscribers after the
// built-in ones.
func WithModules(modules ...mediator.Module) Option {
	return func(a *App) {
		a.modules = append(a.modules, modules...)
	}
}

// New builds an App from cfg.
func New(cfg Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.NewNop()
	}

	if cfg.UsesRedis() && a.redis == nil {
		r := cfg.Store.Redis
		a.redis = redis.NewClient(r.Addr, r.Password, r.DB)
		a.ownsRedis = true
	}

	users, schools, err := a.repositories()
	if err != nil {
		a.Close()
		return nil, err
	}

	reg := mediator.NewRegistry()
	if err := a.pipeline(reg); err != nil {
		a.Close()
		return nil, err
	}

	svc := school.NewService(users, schools, school.WithLogger(a.logger))
	a.streams = httpadapter.NewStreams(a.logger)
	modules := []mediator.Module{svc, school.NewAudit(a.logger), a.streams}
	if a.metrics != nil {
		modules = append(modules, school.ObserveNotifications(a.metrics))
	}
	if err := reg.Install(append(modules, a.modules...)...); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to install handlers: %w", err)
	}

	a.mediator = mediator.New(reg, mediator.WithLogger(a.logger))
	svc.Attach(a.mediator)
	return a, nil
}

func (a *App) repositories() (ports.Repository[domain.User], ports.Repository[domain.School], error) {
	st := storage{cfg: a.cfg.Store, client: a.redis}
	if a.cfg.Store.Driver == config.DriverLoam {
		absPath, err := filepath.Abs(a.cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid store path: %w", err)
		}
		docs, err := loam.Init(absPath, loam.WithVersioning(false))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init loam at %s: %w", absPath, err)
		}
		st.docs = docs
	}
	if a.cfg.Store.EncryptionKey != "" {
		key, err := persistence.ParseKey(a.cfg.Store.EncryptionKey)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid store.encryption_key: %w", err)
		}
		st.key = key
	}

	users, err := open[domain.User](st, "users")
	if err != nil {
		return nil, nil, err
	}
	schools, err := open[domain.School](st, "schools")
	if err != nil {
		return nil, nil, err
	}
	return users, schools, nil
}

// storage is everything needed to open a repository on the configured driver.
type storage struct {
	cfg    config.StoreConfig
	client *backend.Client
	docs   core.Repository
	key    []byte
}

// open returns the repository for kind, sealed when an encryption key is set.
func open[T any](st storage, kind string) (ports.Repository[T], error) {
	if st.key == nil {
		return backendFor[T](st, kind), nil
	}
	return persistence.NewEncrypted[T](backendFor[persistence.Envelope](st, kind),
		persistence.EncryptionConfig{ActiveKey: st.key})
}

func backendFor[T any](st storage, kind string) ports.Repository[T] {
	switch st.cfg.Driver {
	case config.DriverRedis:
		r := st.cfg.Redis
		return redis.NewRepository[T](st.client, redis.WithPrefix(r.Prefix+kind+":"), redis.WithTTL(r.TTL))
	case config.DriverLoam:
		return loamadapter.NewRepository[T](st.docs, kind)
	default:
		return memory.NewRepository[T]()
	}
}

// pipeline registers the pipeline-wide behaviors, outermost first.
func (a *App) pipeline(reg *mediator.Registry) error {
	behaviors := []mediator.PipelineBehavior{
		behavior.Recovery(),
		behavior.Logging(a.logger),
	}

	if a.cfg.Metrics.Enabled {
		if a.registerer == nil {
			private := prometheus.NewRegistry()
			a.registerer, a.gatherer = private, private
		} else if g, ok := a.registerer.(prometheus.Gatherer); ok {
			a.gatherer = g
		} else {
			a.gatherer = prometheus.DefaultGatherer
		}
		m, err := observability.NewMetrics(a.registerer)
		if err != nil {
			return err
		}
		a.metrics = m
		behaviors = append(behaviors, behavior.Metrics(m))
	}

	if a.cfg.Locking.Enabled {
		opts := []behavior.LockingOption{
			behavior.WithLockTTL(a.cfg.Locking.TTL),
			behavior.WithLockLogger(a.logger),
		}
		if a.cfg.Locking.Distributed {
			opts = append(opts, behavior.WithLocker(redis.NewLocker(a.redis, a.cfg.Store.Redis.Prefix)))
		}
		behaviors = append(behaviors, behavior.Locking(opts...))
	}

	for _, b := range behaviors {
		if err := reg.AddPipeline(b); err != nil {
			return err
		}
	}
	return nil
}

// Mediator returns the dispatcher every request goes through.
func (a *App) Mediator() *mediator.Mediator {
	return a.mediator
}

// Logger returns the logger shared by every component.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Catalog lists what the App can dispatch.
func (a *App) Catalog() mediator.Catalog {
	return a.mediator.Catalog()
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	opts := []httpadapter.Option{
		httpadapter.WithLogger(a.logger),
		httpadapter.WithStreams(a.streams),
		httpadapter.WithVersion(Version),
	}
	if a.gatherer != nil {
		opts = append(opts, httpadapter.WithMetrics(observability.Handler(a.gatherer)))
	}
	return httpadapter.NewHandler(a.mediator, opts...)
}

// Serve runs the HTTP API on addr until ctx is done, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the Redis client when the App created it.
func (a *App) Close() error {
	if a.ownsRedis && a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
