package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ShelfScout/internal/freshness"
	"ShelfScout/internal/handler/api"
	"ShelfScout/internal/series"
	icache "ShelfScout/internal/service/cache"
	"ShelfScout/internal/usecase"
	pkgch "ShelfScout/pkg/clickhouse"
	"ShelfScout/pkg/config"
	xhttp "ShelfScout/pkg/http"
	pkgkafka "ShelfScout/pkg/kafka"
	applogger "ShelfScout/pkg/logger"
	"ShelfScout/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	collector   *usecase.ScanCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	l           *applogger.Logger

	eval      *usecase.EvaluateUseCase
	scanQuery *usecase.ScanQueryUseCase
	tracker   *series.Tracker
	scheduler *freshness.Scheduler

	refreshQ      *queue.RedisQueue
	refreshWorker queue.Job

	ScanProc *usecase.ScanProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.ScanCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	l *applogger.Logger,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		l:         l,
	}
}

// SetHTTPHandler allows DI to inject a custom HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetEvaluation wires the valuation endpoints.
func (a *App) SetEvaluation(
	eval *usecase.EvaluateUseCase,
	scanQuery *usecase.ScanQueryUseCase,
	tracker *series.Tracker,
	scheduler *freshness.Scheduler,
) {
	a.eval = eval
	a.scanQuery = scanQuery
	a.tracker = tracker
	a.scheduler = scheduler
}

// SetRefreshQueue wires the vendor refresh queue and its worker.
func (a *App) SetRefreshQueue(q *queue.RedisQueue, worker queue.Job) {
	a.refreshQ = q
	a.refreshWorker = worker
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.l

	// Build the Echo handler unless DI injected one
	httpHandler := a.httpHandler
	if httpHandler == nil && a.eval != nil {
		h := api.NewEvaluateHandler(l, a.eval, a.scanQuery, a.tracker, a.scheduler, a.cfg.Thresholds)
		if rc := a.cfg.Vendors.Redis; rc.Enabled {
			h.SetCache(icache.NewRedisCache(icache.RedisConfig{Addr: rc.Addr, Password: rc.Password, DB: rc.DB}))
		} else {
			h.SetCache(icache.NewTTLCache())
		}
		httpHandler = h
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
	)

	// Start scan collector
	if a.collector != nil {
		if a.ScanProc != nil {
			a.ScanProc.Start(ctx)
		}
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				l.Error("collector error", applogger.Error(err))
			}
		}()
		l.Info("scan collector started", applogger.Strings("locations", a.cfg.Scanner.Locations))
	}

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start refresh queue worker
	if a.refreshQ != nil && a.refreshWorker != nil {
		a.refreshQ.RegisterJob(a.refreshWorker)
		if err := a.refreshQ.Start(); err != nil {
			l.Error("refresh queue start error", applogger.Error(err))
		} else {
			l.Info("refresh queue started", applogger.String("job", a.refreshWorker.Name()))
		}
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.l
	l.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			l.Warn("collector stop error", applogger.Error(err))
		}
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop refresh queue
	if a.refreshQ != nil {
		if err := a.refreshQ.Stop(shutdownCtx); err != nil {
			l.Warn("refresh queue stop error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Flush and release processor resources (publisher/storage)
	if a.ScanProc != nil {
		a.ScanProc.Stop()
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Flush any aggregated error logs still pending
	l.RemoveCollector()

	l.Info("shutdown complete")
	return nil
}
