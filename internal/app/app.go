package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"DealsTracker/internal/config"
	"DealsTracker/internal/domain"
	"DealsTracker/internal/infrastructure/fetch"
	"DealsTracker/internal/infrastructure/llm"
	"DealsTracker/internal/infrastructure/newsapi"
	"DealsTracker/internal/infrastructure/parser"
	"DealsTracker/internal/infrastructure/scheduler"
	"DealsTracker/internal/infrastructure/seed"
	"DealsTracker/internal/infrastructure/storage"
	"DealsTracker/internal/infrastructure/telegram"
	"DealsTracker/internal/logging"
	"DealsTracker/internal/ports"
	"DealsTracker/internal/scanner"
	"DealsTracker/internal/transport/httpapi"
	"DealsTracker/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB
	repo   ports.DealRepository

	ingestor    *usecase.Ingestor
	deals       *usecase.Deals
	review      *usecase.ReviewQueue
	intake      *usecase.Intake
	chat        *usecase.Chat
	maintenance *usecase.Maintenance
	trigger     *usecase.TriggerAuthorizer
}

// New opens the store and builds every adapter and use case. Postgres is used
// whenever a DSN is configured; development runs without one fall back to
// the in-memory store.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	registry := scanner.NewRegistry()
	registry.Register(newsapi.NewClient(cfg.News, &http.Client{Timeout: cfg.News.Timeout}, baseLogger.With("component", "scanner.newsapi")))
	source := parser.NewQuerySource(registry, cfg.Sources, cfg.Ingestion.QueryDelay, baseLogger.With("component", "source"))

	llmClient := llm.NewClient(cfg.LLM, &http.Client{Timeout: cfg.LLM.Timeout})
	extractor := llm.NewExtractor(llmClient, cfg.LLM.ExtractMaxChars)
	fetcher := fetch.NewPageFetcher(&http.Client{Timeout: cfg.Ingestion.FetchTimeout}, cfg.Ingestion.PageMaxChars, baseLogger.With("component", "fetch"))

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID, nil); tg.Configured() {
		notifier = tg
	}

	a.ingestor = usecase.NewIngestor(usecase.IngestorDeps{
		Source:       source,
		Extractor:    extractor,
		Repository:   a.repo,
		Notifier:     notifier,
		Logger:       baseLogger.With("component", "ingestor"),
		ExtractDelay: cfg.Ingestion.ExtractDelay,
	})
	a.deals = usecase.NewDeals(a.repo)
	a.review = usecase.NewReviewQueue(a.repo)
	a.intake = usecase.NewIntake(a.repo, extractor, fetcher)
	a.chat = usecase.NewChat(a.deals, llm.NewAssistant(llmClient, cfg.LLM.ChatPrompt))
	a.maintenance = usecase.NewMaintenance(a.repo, baseLogger.With("component", "maintenance"))
	a.trigger = usecase.NewTriggerAuthorizer(cfg.Trigger.Secret, cfg.Trigger.SchedulerSecret, cfg.Development())

	return a, nil
}

func (a *Application) openStore(ctx context.Context) error {
	if a.cfg.Database.DSN == "" {
		if !a.cfg.Development() {
			return domain.MissingConfig("database dsn")
		}
		a.logger.Warn("no database configured, using in-memory store")
		a.repo = storage.NewMemoryRepository()
		return nil
	}

	db, err := storage.Open(ctx, a.cfg.Database.DSN)
	if err != nil {
		return err
	}
	if a.cfg.Database.AutoMigrate {
		if err := storage.Migrate(ctx, db, a.logger); err != nil {
			_ = db.Close()
			return err
		}
	}
	a.db = db
	a.repo = storage.NewPostgresRepository(db)
	return nil
}

// Handler returns the HTTP API.
func (a *Application) Handler() http.Handler {
	return httpapi.New(httpapi.Services{
		Deals:       a.deals,
		Review:      a.review,
		Intake:      a.intake,
		Ingestor:    a.ingestor,
		Chat:        a.chat,
		Maintenance: a.maintenance,
		Trigger:     a.trigger,
		SeedLoader:  a.loadSeed,
	}, a.cfg.Trigger.SchedulerHeader, a.logger.With("component", "http")).Routes()
}

// Serve runs the HTTP listener and, when enabled, the recurring scan until
// ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: a.cfg.HTTP.ListenAddr, Handler: a.Handler()}

	var sched *usecase.Scheduler
	if a.cfg.Scheduler.Enabled {
		driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval, a.cfg.Scheduler.RunOnStart, a.cfg.Scheduler.Location())
		sched = usecase.NewScheduler(driver, a.ingestor, a.logger.With("component", "scheduler"))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", "addr", a.cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if sched != nil {
		if err := sched.Start(gctx); err != nil {
			return err
		}
		a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval)
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if sched != nil {
			if err := sched.Stop(shutdownCtx); err != nil {
				a.logger.Warn("scheduler stop", "error", err)
			}
		}
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Scan performs a single ingestion run.
func (a *Application) Scan(ctx context.Context) (domain.ScanResult, error) {
	return a.ingestor.Run(ctx)
}

// Migrate applies pending schema migrations.
func (a *Application) Migrate(ctx context.Context) error {
	if a.db == nil {
		return domain.MissingConfig("database dsn")
	}
	return storage.Migrate(ctx, a.db, a.logger)
}

// Seed loads the configured seed file into the store.
func (a *Application) Seed(ctx context.Context) (usecase.SeedResult, error) {
	deals, err := a.loadSeed()
	if err != nil {
		return usecase.SeedResult{}, err
	}
	return a.maintenance.Seed(ctx, deals)
}

// FixDates realigns creation times with deal dates.
func (a *Application) FixDates(ctx context.Context) (int, error) {
	return a.maintenance.FixDates(ctx)
}

func (a *Application) loadSeed() ([]domain.Deal, error) {
	if a.cfg.Seed.Path == "" {
		return nil, domain.MissingConfig("seed path")
	}
	return seed.LoadFile(a.cfg.Seed.Path)
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
