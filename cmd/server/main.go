package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "erp-backend/internal/adapters/web"
	"erp-backend/internal/ai"
	"erp-backend/internal/app"
	"erp-backend/internal/config"
	"erp-backend/internal/core"
	"erp-backend/internal/db"
	"erp-backend/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	invoiceService := core.NewInvoiceService(pool, log)
	purchaseService := core.NewPurchaseService(pool, log)
	returnService := core.NewReturnService(pool, log, core.ReturnValuation(cfg.Business.ReturnValuation))
	productionService := core.NewProductionService(pool, log)
	materialService := core.NewMaterialService(pool)
	partnerService := core.NewPartnerService(pool)
	payrollService := core.NewPayrollService(pool)
	reportingService := core.NewReportingService(pool)
	userService := core.NewUserService(pool)

	var agent ai.AgentService
	if cfg.AI.OpenAIAPIKey != "" {
		agent = ai.NewAgent(cfg.AI.OpenAIAPIKey)
	} else {
		log.Warn().Msg("OPENAI_API_KEY is not set; expense interpretation disabled")
	}

	svc := app.NewAppService(
		invoiceService,
		purchaseService,
		returnService,
		productionService,
		materialService,
		partnerService,
		payrollService,
		reportingService,
		agent,
	)

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}
	tokenTTL := time.Duration(cfg.Auth.TokenTTLMin) * time.Minute
	handler := webAdapter.NewHandler(svc, userService, cfg.Auth.JWTSecret, tokenTTL, cfg.Server.AllowedOrigins, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
