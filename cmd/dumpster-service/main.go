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

	"github.com/shopspring/decimal"

	"github.com/nurpe/dumpster-rentals/internal/auth"
	"github.com/nurpe/dumpster-rentals/internal/cache"
	"github.com/nurpe/dumpster-rentals/internal/config"
	"github.com/nurpe/dumpster-rentals/internal/db"
	"github.com/nurpe/dumpster-rentals/internal/excel"
	"github.com/nurpe/dumpster-rentals/internal/guard"
	httphandler "github.com/nurpe/dumpster-rentals/internal/http"
	"github.com/nurpe/dumpster-rentals/internal/http/middleware"
	"github.com/nurpe/dumpster-rentals/internal/logger"
	"github.com/nurpe/dumpster-rentals/internal/model"
	"github.com/nurpe/dumpster-rentals/internal/pdf"
	"github.com/nurpe/dumpster-rentals/internal/repository"
	"github.com/nurpe/dumpster-rentals/internal/service"
	"github.com/nurpe/dumpster-rentals/internal/storage"
	"github.com/nurpe/dumpster-rentals/internal/wizard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	checks := []service.HealthCheck{{Name: "database", Check: db.Ping(database)}}

	var drafts wizard.Store = wizard.NewMemoryStore(cfg.Wizard.DraftTTL)
	var locks guard.Guard = guard.NewMemory()
	var revocations auth.Revocations = auth.NewMemoryRevocations()
	var archive service.InvoiceArchive
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer rdb.Close()
		drafts = cache.NewDraftStore(rdb, cfg.Wizard.DraftTTL)
		locks = cache.NewGuard(rdb, cfg.Wizard.LockTTL)
		revocations = cache.NewRevocations(rdb)
		checks = append(checks, service.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	} else {
		log.Warn().Msg("redis not configured, wizard drafts and revocations are kept in memory")
	}
	if cfg.MinIO.Endpoint != "" {
		invoices, err := storage.NewInvoiceStore(ctx, cfg.MinIO, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init invoice storage")
		}
		archive = invoices
		checks = append(checks, service.HealthCheck{Name: "storage", Check: invoices.Ping})
	}

	customers := repository.NewCustomers(database)
	workAddresses := repository.NewWorkAddresses(database)
	dumpsters := repository.NewDumpsters(database)
	fixes := repository.NewFixes(database)
	contracts := repository.NewContractRepository(database)

	contractService := service.NewContractService(service.ContractDeps{
		Contracts:     contracts,
		Customers:     customers,
		WorkAddresses: workAddresses,
		Dumpsters:     dumpsters,
		Fixes:         fixes,
		Renderer: pdf.NewGenerator(model.Company{
			Name:       cfg.Company.Name,
			Street:     cfg.Company.Street,
			CityLine:   cfg.Company.CityLine,
			PaymentURL: cfg.Company.PaymentURL,
		}),
		Archive: archive,
		Guard:   locks,
	})
	userService := service.NewUserService(repository.NewUserRepository(database))
	sessions := service.NewSessionService(
		userService,
		auth.NewIssuer(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL),
		auth.NewParser(cfg.Auth.AccessSecret),
		revocations,
	)

	if cfg.Auth.AdminUsername != "" {
		created, err := userService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to bootstrap admin user")
		}
		if created {
			log.Info().Str("username", cfg.Auth.AdminUsername).Msg("created initial admin user")
		}
	}

	handler := httphandler.NewHandler(httphandler.Services{
		Contracts: contractService,
		Wizard: service.NewWizardService(service.WizardDeps{
			Store:     drafts,
			Contracts: contractService,
			Customers: customers,
			Dumpsters: dumpsters,
			Fixes:     fixes,
			Guard:     locks,
		}),
		Resources: service.NewResources(service.Stores{
			Customers:        customers,
			WorkAddresses:    workAddresses,
			DumpsterStatuses: repository.NewDumpsterStatuses(database),
			Dumpsters:        dumpsters,
			Fixes:            fixes,
			Drivers:          repository.NewDrivers(database),
			Transfers:        repository.NewTransfers(database),
			Expenses:         repository.NewExpenses(database),
			Contracts:        contracts,
		}),
		Users:    userService,
		Sessions: sessions,
		Reports:  service.NewReportService(repository.NewReportRepository(database), excel.NewGenerator(), checks...),
	}, log)
	router := httphandler.NewRouter(handler, middleware.Auth(sessions), cfg.HTTP, cfg.Environment, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("starting dumpster service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("dumpster service stopped")
}
