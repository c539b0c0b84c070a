package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendapos/internal/config"
	"vendapos/internal/fiscal"
	"vendapos/internal/infra"
	"vendapos/internal/printing"
	"vendapos/internal/render"
	"vendapos/internal/repository"
	"vendapos/internal/router"
	"vendapos/internal/service"
	"vendapos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger. dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := infra.NewRedis(ctx, infra.RedisOptions{
		URL:             cfg.RedisURL,
		Workers:         cfg.WorkerPoolSize,
		ConnectAttempts: cfg.RedisConnectAttempts,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	companyRepo := repository.NewCompanyRepository(db)
	sellerRepo := repository.NewSellerRepository(db)
	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	closureRepo := repository.NewCashClosureRepository(db)
	fiscalRepo := repository.NewFiscalDocumentRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	printerRepo := repository.NewPrinterRepository(db)

	// ── Infrastructure ───────────────────────────────────────────────────────
	transport, err := printing.NewSystemTransport(cfg.SystemPrinters, cfg.PrinterDialTimeout())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid SYSTEM_PRINTERS")
	}
	devices := printing.NewRedisDeviceRegistry(rdb, cfg.DeviceRegistryTTL())
	renderer := render.New(cfg.PrinterWidth)
	dispatcher := worker.NewDispatcher(rdb)

	var (
		issuer  fiscal.Issuer = fiscal.NewMockIssuer(cfg.FiscalQRCodeBaseURL)
		breaker fiscal.Breaker
		cb      *infra.CircuitBreaker
	)
	if cfg.FiscalMode == fiscal.ModeGateway {
		issuer = infra.NewFiscalGatewayClient(cfg.FiscalGatewayURL, cfg.FiscalTimeout())
		cb = infra.NewCircuitBreaker(infra.DefaultCBConfig("fiscal-gateway"))
		breaker = cb
	}
	facade := fiscal.NewFacade(cfg.FiscalMode, issuer, breaker)
	log.Info().Str("mode", facade.Mode()).Msg("fiscal issuer configured")

	// ── Services ─────────────────────────────────────────────────────────────
	printSvc := service.NewPrintService(devices, printerRepo, transport)
	fiscalSvc := service.NewFiscalService(fiscalRepo, saleRepo, companyRepo, facade, renderer, service.FiscalSettings{
		StateCode:     cfg.FiscalStateCode,
		Series:        cfg.FiscalSeries,
		QRCodeBaseURL: cfg.FiscalQRCodeBaseURL,
		ConsultURL:    cfg.FiscalConsultURL,
		Homologation:  cfg.FiscalHomologation(),
	})
	closureSvc := service.NewCashClosureService(closureRepo, saleRepo, companyRepo, printSvc, renderer)
	saleSvc := service.NewSaleService(
		saleRepo, productRepo, movementRepo, sellerRepo, companyRepo,
		closureSvc, closureRepo, fiscalSvc, printSvc, dispatcher, renderer, cfg.SaleEditWindow(),
	)
	budgetSvc := service.NewBudgetService(budgetRepo, productRepo, companyRepo, saleSvc, renderer)

	// ── Workers ──────────────────────────────────────────────────────────────
	pool := worker.NewPool(rdb)
	pool.Handle(worker.JobReceiptEmail, worker.NewEmailWorker(
		saleRepo, companyRepo,
		infra.NewReceiptPDF(cfg.PDFStoragePath, cfg.LogoTimeout()),
		infra.NewMailer(cfg),
		dispatcher,
	))
	pool.Start(ctx, cfg.WorkerPoolSize)

	cronCfg := worker.RetryCronConfig{Fiscal: fiscalSvc, Budgets: budgetSvc, DLQ: dispatcher}
	if cb != nil {
		cronCfg.CB = cb
	}
	worker.StartRetryCron(ctx, cronCfg)

	r := router.New(cfg, router.Deps{
		DB:       db,
		Redis:    rdb,
		Breaker:  cb,
		Sales:    saleSvc,
		Closures: closureSvc,
		Budgets:  budgetSvc,
		Fiscal:   fiscalSvc,
		Printers: printSvc,
	}, ctx.Done())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("vendapos backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	cancel()
	pool.Wait()
	log.Info().Msg("server exited")
}
