package main

import (
	"net/http"

	"github.com/M5Csoftware/m5-server-sub003/config"
	"github.com/M5Csoftware/m5-server-sub003/db"
	"github.com/M5Csoftware/m5-server-sub003/db/mongo"
	"github.com/M5Csoftware/m5-server-sub003/db/postgres"
	"github.com/M5Csoftware/m5-server-sub003/handlers"
	"github.com/M5Csoftware/m5-server-sub003/logger"
	"github.com/M5Csoftware/m5-server-sub003/notify"
	"github.com/M5Csoftware/m5-server-sub003/repository"
	"github.com/M5Csoftware/m5-server-sub003/routes"
	"github.com/M5Csoftware/m5-server-sub003/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load config from .env or environment
	cfg := config.LoadConfig()

	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		panic(err)
	}

	var (
		shipmentRepo      repository.ShipmentRepository
		accountRepo       repository.AccountRepository
		consolidationRepo repository.ConsolidationRepository
		billingRepo       repository.BillingRepository
		ledgerRepo        repository.LedgerRepository
		branchRepo        repository.BranchRepository
		sequencer         repository.InvoiceSequencer
	)

	switch db.DBType(cfg.DBType) {
	case db.Postgres:
		db.RunMigrations(cfg.PostgresURL)

		pg := postgres.NewPostgresDB(cfg.PostgresURL)
		if err := pg.Connect(); err != nil {
			log.Fatal().Err(err).Msg("postgres connect failed")
		}
		defer pg.Disconnect()

		shipmentRepo = repository.NewPostgresShipmentRepo(pg.Conn)
		accountRepo = repository.NewPostgresAccountRepo(pg.Conn)
		consolidationRepo = repository.NewPostgresConsolidationRepo(pg.Conn)
		billingRepo = repository.NewPostgresBillingRepo(pg.Conn)
		ledgerRepo = repository.NewPostgresLedgerRepo(pg.Conn)
		branchRepo = repository.NewPostgresBranchRepo(pg.Conn)
		sequencer = repository.NewPostgresInvoiceSequencer(pg.Conn)

	case db.Mongo:
		mg := mongo.NewMongoDB(cfg.MongoURL)
		if err := mg.Connect(); err != nil {
			log.Fatal().Err(err).Msg("mongo connect failed")
		}
		defer mg.Disconnect()

		shipmentRepo = repository.NewMongoShipmentRepo(mg.Client)
		accountRepo = repository.NewMongoAccountRepo(mg.Client)
		consolidationRepo = repository.NewMongoConsolidationRepo(mg.Client)
		billingRepo = repository.NewMongoBillingRepo(mg.Client)
		ledgerRepo = repository.NewMongoLedgerRepo(mg.Client)
		branchRepo = repository.NewMongoBranchRepo(mg.Client)
		sequencer = repository.NewMongoInvoiceSequencer(mg.Client)

	default:
		log.Fatal().Str("db_type", cfg.DBType).Msg("DB_TYPE not supported")
	}

	var notifier notify.Dispatcher
	if cfg.SMTPHost != "" {
		notifier = &notify.SMTPDispatcher{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			From: cfg.SMTPFrom,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			Log:  logger.WithComponent("notify"),
		}
	} else {
		notifier = &notify.LogDispatcher{Log: logger.WithComponent("notify")}
	}

	// Services
	creditControl := &service.CreditControl{
		Shipments: shipmentRepo,
		Accounts:  accountRepo,
		Rates:     &service.StaticRateEngine{DefaultRate: 55, FuelPct: 10, GSTPct: 18},
		Notifier:  notifier,
		Log:       logger.WithComponent("credit"),
	}
	consolidationSvc := &service.ConsolidationService{
		Repo:      consolidationRepo,
		Shipments: shipmentRepo,
		Notifier:  notifier,
		Log:       logger.WithComponent("consolidation"),
	}
	billingSvc := &service.BillingService{
		Repo:      billingRepo,
		Sequencer: sequencer,
		Notifier:  notifier,
		Branch:    cfg.BranchCode,
		Log:       logger.WithComponent("billing"),
	}
	ledgerSvc := &service.LedgerService{
		Repo: ledgerRepo,
		Log:  logger.WithComponent("ledger"),
	}

	validate := validator.New()

	// Handlers
	shipmentHandler := &handlers.ShipmentHandler{Credit: creditControl, Repo: shipmentRepo, Validate: validate}
	accountHandler := &handlers.AccountHandler{Repo: accountRepo}
	consolidationHandler := &handlers.ConsolidationHandler{Svc: consolidationSvc, Validate: validate}
	billingHandler := &handlers.BillingHandler{Svc: billingSvc, Validate: validate}
	ledgerHandler := &handlers.LedgerHandler{Svc: ledgerSvc, Validate: validate}
	branchHandler := &handlers.BranchHandler{Repo: branchRepo}
	pdfHandler := &handlers.PDFHandler{
		Billing:       billingRepo,
		Consolidation: consolidationSvc,
		Accounts:      accountRepo,
		Branches:      branchRepo,
		BranchCode:    cfg.BranchCode,
		Log:           logger.WithComponent("pdf"),
	}

	routes.SetupRoutes(
		shipmentHandler,
		accountHandler,
		consolidationHandler,
		billingHandler,
		ledgerHandler,
		branchHandler,
		pdfHandler,
	)

	log.Info().Str("port", cfg.Port).Str("branch", cfg.BranchCode).Msg("server running")
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
