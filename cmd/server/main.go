package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/milkledger/internal/config"
	"github.com/mamadbah2/milkledger/internal/repository/mongodb"
	"github.com/mamadbah2/milkledger/internal/repository/registry"
	"github.com/mamadbah2/milkledger/internal/repository/sheets"
	"github.com/mamadbah2/milkledger/internal/scheduler"
	"github.com/mamadbah2/milkledger/internal/server/handlers"
	"github.com/mamadbah2/milkledger/internal/server/router"
	commandsvc "github.com/mamadbah2/milkledger/internal/service/commands"
	ingestionsvc "github.com/mamadbah2/milkledger/internal/service/ingestion"
	reportingsvc "github.com/mamadbah2/milkledger/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/milkledger/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/milkledger/pkg/clients/whatsapp"
	"github.com/mamadbah2/milkledger/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "path to a .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		sheetsRepo *sheets.GoogleSheetRepository
		archives   []reportingsvc.Archive
		archiveLog handlers.ArchiveReader
	)

	if cfg.Sheets.Enabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		archives = append(archives, sheetsRepo)
	} else {
		baseLogger.Warn("google sheets not configured, sheet source and sheet archive disabled")
	}

	if cfg.MongoDB.Enabled() {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		archives = append(archives, mongoRepo)
		archiveLog = mongoRepo
	} else {
		baseLogger.Warn("mongodb not configured, report archive listing disabled")
	}

	reg := registry.New()
	loader := ingestionsvc.NewLoader(ingestionsvc.NewService(baseLogger.Named("svc.ingestion")), reg, cfg.Data.Files)
	if sheetsRepo != nil {
		loader.WithSheet(sheetsRepo, cfg.Sheets.MilkRange)
	}

	if _, err := loader.Reload(ctx); err != nil {
		baseLogger.Fatal("failed to load milk data", zap.Error(err), zap.Strings("files", cfg.Data.Files))
	}

	reportingSvc := reportingsvc.NewService(reg, cfg.Reporting.PercentPlaces, baseLogger.Named("svc.reporting"), archives...)
	commandDispatcher := commandsvc.NewService(reg, reportingSvc, baseLogger.Named("svc.commands"))
	if sheetsRepo != nil {
		commandDispatcher.WithRowWriter(sheetsRepo, cfg.Sheets.MilkRange)
	}

	routes := router.Handlers{
		Ledger:  handlers.NewLedgerHandler(reg, loader, commandDispatcher, baseLogger.Named("handlers.ledger")),
		Reports: handlers.NewReportHandler(reportingSvc, archiveLog, baseLogger.Named("handlers.reports")),
	}

	var notifier scheduler.Notifier
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
		routes.Webhook = handlers.NewWebhookHandler(messagingSvc, cfg.WhatsApp.AppSecret, baseLogger.Named("handlers.whatsapp"))
		notifier = messagingSvc
	} else {
		baseLogger.Warn("whatsapp access token missing, webhook and report push disabled")
	}

	engine := router.New(routes, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, cfg.WhatsApp.ReportRecipient, loader, reportingSvc, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.Int("farms", reg.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		baseLogger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		baseLogger.Error("server stopped with error", zap.Error(err))
	}
}
