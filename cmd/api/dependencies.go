package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ABagofRuffles/budget-pwa/internal/domain/categorize"
	importhandler "github.com/ABagofRuffles/budget-pwa/internal/domain/import/handler"
	importservice "github.com/ABagofRuffles/budget-pwa/internal/domain/import/service"
	"github.com/ABagofRuffles/budget-pwa/internal/domain/ledger"
	ledgerhandler "github.com/ABagofRuffles/budget-pwa/internal/domain/ledger/handler"
	"github.com/ABagofRuffles/budget-pwa/internal/domain/statement"
	"github.com/ABagofRuffles/budget-pwa/internal/domain/worksheet"
	worksheethandler "github.com/ABagofRuffles/budget-pwa/internal/domain/worksheet/handler"
	"github.com/ABagofRuffles/budget-pwa/pkg/config"
	"github.com/ABagofRuffles/budget-pwa/pkg/db"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	LedgerRepo ledger.Repository

	// Services
	Engine        *categorize.Engine
	Extractor     *statement.Extractor
	ImportService *importservice.Service
	Sheet         *worksheet.Sheet

	// Handlers
	LedgerHandler    *ledgerhandler.LedgerHandler
	ImportHandler    *importhandler.ImportHandler
	WorksheetHandler *worksheethandler.WorksheetHandler
}

// InitDependencies initializes all application dependencies.
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStorage(ctx); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}
	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized")
	return deps, nil
}

// initStorage picks the ledger backend. Without Postgres the app still runs,
// it just forgets everything on restart.
func (d *Dependencies) initStorage(ctx context.Context) error {
	if !d.Config.Database.Enabled {
		d.Logger.Info("postgres disabled, using in-memory ledger")
		d.LedgerRepo = ledger.NewInMemoryRepository()
		return nil
	}

	database, err := db.Connect(ctx, d.Config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate("migrations"); err != nil {
		database.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.DB = database
	d.LedgerRepo = ledger.NewPostgresRepository(database.Pool)
	d.Logger.Info("connected to postgres", slog.String("database", d.Config.Database.Database))
	return nil
}

func (d *Dependencies) initServices() {
	d.Engine = categorize.NewDefaultEngine()
	d.Extractor = statement.NewExtractor(d.Engine, d.Logger, d.Config.Engine.ParseBudget)
	d.ImportService = importservice.New(d.LedgerRepo, d.Extractor, d.Engine, d.Logger)
	d.Sheet = worksheet.NewSheet()
}

func (d *Dependencies) initHandlers() {
	d.LedgerHandler = ledgerhandler.NewLedgerHandler(d.ImportService, d.LedgerRepo, d.Logger)
	d.ImportHandler = importhandler.NewImportHandler(d.ImportService, d.Logger)
	d.WorksheetHandler = worksheethandler.NewWorksheetHandler(d.Sheet)
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
