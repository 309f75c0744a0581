package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jgivc/w1r3catcher/internal/adapter/sink"
	"github.com/jgivc/w1r3catcher/internal/config"
	"github.com/jgivc/w1r3catcher/internal/handler/command"
	httphandler "github.com/jgivc/w1r3catcher/internal/handler/http"
	"github.com/jgivc/w1r3catcher/internal/metrics"
	"github.com/jgivc/w1r3catcher/internal/service/download"
	"github.com/jgivc/w1r3catcher/internal/service/extract"
	"github.com/jgivc/w1r3catcher/internal/service/pipeline"
	"github.com/jgivc/w1r3catcher/internal/service/registry"
	"github.com/jgivc/w1r3catcher/internal/storage/mirror"
	"github.com/jgivc/w1r3catcher/internal/storage/settings"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const (
	seedTimeout     = 5 * time.Second
	listTimeout     = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

type App struct {
	cfgPath  string
	cfg      *config.Config
	srv      *http.Server
	registry *registry.Registry
	pipeline *pipeline.Pipeline
	out      sink.Sink
	closers  []io.Closer
	cancel   context.CancelFunc
	log      *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

func (a *App) Start() {
	a.cfg = config.MustLoad(a.cfgPath)

	lo := &slog.HandlerOptions{}
	switch a.cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, lo))
	a.log = log

	store := a.newStore(log)
	a.out = sink.NewWriter(os.Stdout, a.cfg.Tag)
	a.registry = registry.New(store, log)
	flag := settings.NewLoggingFlag(store, log)

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	if err := a.registry.Seed(ctx, a.cfg.Defaults.Domains); err != nil {
		panic(err)
	}

	if err := settings.SetDefault(ctx, store, settings.KeyLogging, a.cfg.Defaults.Logging); err != nil {
		panic(err)
	}

	downloader, err := download.NewDownloader(&a.cfg.Download, log)
	if err != nil {
		panic(err)
	}

	if a.cfg.Mirror.Enabled() {
		m, err := mirror.New(ctx, &a.cfg.Mirror, log)
		if err != nil {
			panic(err)
		}
		downloader.SetMirror(m)
		log.Info("Mirroring stored files", slog.String("bucket", a.cfg.Mirror.Bucket))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	p := pipeline.New(a.registry, extract.New(), downloader, flag, a.out, m, a.cfg.Pipeline.QueueSize, log)
	executor := command.NewExecutor(a.cfg.Tag, a.registry, flag, log)

	runCtx, runCancel := context.WithCancel(context.Background())
	a.cancel = runCancel
	a.pipeline = p
	go p.Run(runCtx)

	mux := http.NewServeMux()
	mux.Handle("POST /message", httphandler.NewMessageHandler(p, log))
	mux.Handle("POST /command", httphandler.NewCommandHandler(executor, a.cfg.Tag, a.out, log))
	mux.Handle("GET /domains", httphandler.NewListHandler(a.registry, log))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	a.srv = &http.Server{
		Addr:    a.cfg.Listen,
		Handler: mux,
	}

	go func() {
		log.Info("Start listen", slog.String("addr", a.cfg.Listen), slog.String("save_dir", a.cfg.Download.SaveDir))

		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Could not serve", slog.String("listen_addr", a.cfg.Listen), slog.Any("error", err))
			os.Exit(2)
		}
	}()
}

func (a *App) newStore(log *slog.Logger) settings.Store {
	switch a.cfg.Store.Driver {
	case config.StoreDriverRedis:
		opt, err := redis.ParseURL(a.cfg.Store.RedisURL)
		if err != nil {
			panic(err)
		}

		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			panic(err)
		}

		store := settings.NewRedisStore(rdb, a.cfg.Store.Key, log)
		a.closers = append(a.closers, store)

		return store
	case config.StoreDriverMemory:
		return settings.NewMemoryStore()
	default:
		return settings.NewFileStore(a.cfg.Store.Path, log)
	}
}

// List prints the watched domains to the sink.
func (a *App) List() {
	ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
	defer cancel()

	domains, err := a.registry.List(ctx)
	if err != nil {
		fmt.Printf("Cannot list domains: %s\n", err)

		return
	}

	if len(domains) == 0 {
		a.out.Printf("No domains added so far")

		return
	}

	for i, domain := range domains {
		a.out.Printf("%d: %s", i+1, domain)
	}
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.srv.Shutdown(ctx); err != nil {
		a.log.Error("Cannot shutdown server", slog.Any("error", err))
	}

	if a.cancel != nil {
		a.cancel()
	}

	if a.pipeline != nil {
		select {
		case <-a.pipeline.Done():
		case <-ctx.Done():
			a.log.Error("Pipeline did not stop in time", slog.Any("error", ctx.Err()))
		}
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Error("Cannot close", slog.Any("error", err))
		}
	}
}
