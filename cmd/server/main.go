package main

import (
	"context"
	"net/http"

	webAdapter "importops/internal/adapters/web"
	"importops/internal/app"
	"importops/internal/config"
	"importops/internal/core"
	"importops/internal/db"
	"importops/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.L().Fatalf("config: %v", err)
	}
	logging.SetLevel(cfg.LogLevel)
	log := logging.L()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	orderService := core.NewOrderService(pool)
	paymentService := core.NewPaymentService(pool)
	expenseService := core.NewExpenseService(pool)
	configService := core.NewDistributionConfigService(pool)
	receptionService := core.NewReceptionService(pool, cfg.DefaultExchangeRate, log)
	reportingService := core.NewReportingService(pool, cfg.DefaultExchangeRate)

	svc := app.NewAppService(
		orderService,
		paymentService,
		expenseService,
		configService,
		receptionService,
		reportingService,
	)

	handler := webAdapter.NewHandler(svc, cfg.AllowedOrigins)

	log.Infof("server starting on :%s", cfg.ServerPort)
	if err := http.ListenAndServe(":"+cfg.ServerPort, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
