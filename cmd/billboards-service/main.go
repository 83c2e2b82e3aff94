package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nurpe/billboards-service/internal/auth"
	"github.com/nurpe/billboards-service/internal/config"
	"github.com/nurpe/billboards-service/internal/db"
	"github.com/nurpe/billboards-service/internal/excel"
	httphandler "github.com/nurpe/billboards-service/internal/http"
	"github.com/nurpe/billboards-service/internal/http/middleware"
	"github.com/nurpe/billboards-service/internal/logger"
	"github.com/nurpe/billboards-service/internal/pdf"
	"github.com/nurpe/billboards-service/internal/pricing"
	"github.com/nurpe/billboards-service/internal/repository"
	"github.com/nurpe/billboards-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	rates, err := pricing.LoadTable(cfg.Pricing.RatesFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Pricing.RatesFile).Msg("failed to load rate table")
	}
	log.Info().Int("entries", rates.Len()).Msg("rate table loaded")

	pdfGenerator, err := pdf.NewGenerator(cfg.Documents.FontPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}

	billboardRepo := repository.NewBillboardRepository(database)
	contractRepo := repository.NewContractRepository(database)
	customerRepo := repository.NewCustomerRepository(database)
	municipalityRepo := repository.NewMunicipalityRepository(database)

	billboardService := service.NewBillboardService(billboardRepo, excel.NewInventoryReader())
	contractService := service.NewContractService(
		contractRepo,
		billboardRepo,
		customerRepo,
		rates,
		pdfGenerator,
		excel.NewGenerator(),
		cfg.Documents.CompanyName,
	)
	customerService := service.NewCustomerService(customerRepo)
	municipalityService := service.NewMunicipalityService(municipalityRepo, billboardRepo, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(billboardService, contractService, customerService, municipalityService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting billboards service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
		log.Info().Msg("server stopped")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
			os.Exit(1)
		}
	}
}
