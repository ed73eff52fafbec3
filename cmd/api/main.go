package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tallerpro/manufactura-api/internal/application/audit"
	"github.com/tallerpro/manufactura-api/internal/application/bom"
	"github.com/tallerpro/manufactura-api/internal/application/production"
	"github.com/tallerpro/manufactura-api/internal/application/stock"
	"github.com/tallerpro/manufactura-api/internal/application/usecase"
	"github.com/tallerpro/manufactura-api/internal/infrastructure/events"
	"github.com/tallerpro/manufactura-api/internal/infrastructure/postgres"
	httpRouter "github.com/tallerpro/manufactura-api/internal/interfaces/http"
	"github.com/tallerpro/manufactura-api/pkg/config"
	"github.com/tallerpro/manufactura-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos atados al pool (lecturas fuera de transacción).
	itemRepo := postgres.NewItemRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	bomRepo := postgres.NewBOMRepository(pool)
	snapshotRepo := postgres.NewBOMSnapshotRepository(pool)
	planRepo := postgres.NewProductionPlanRepository(pool)
	logRepo := postgres.NewProductionLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	publisher := events.NewLogPublisher(log)

	itemUC := usecase.NewItemUseCase(itemRepo)
	registerMovementUC := stock.NewRegisterMovementUseCase(txRunner, publisher)
	transferUC := stock.NewTransferUseCase(txRunner, publisher)
	reservationUC := stock.NewReservationUseCase(txRunner)
	historyUC := stock.NewHistoryUseCase(itemRepo, movementRepo)
	bomResolver := bom.NewResolverUseCase(bomRepo, itemRepo)
	bomEdges := bom.NewEdgeUseCase(bomRepo, itemRepo)
	createPlanUC := production.NewCreatePlanUseCase(txRunner, bomResolver)
	postOutputUC := production.NewPostOutputUseCase(txRunner, publisher)
	rollbackUC := production.NewRollbackUseCase(txRunner, publisher)
	cancelPlanUC := production.NewCancelPlanUseCase(txRunner, publisher)
	completePlanUC := production.NewCompletePlanUseCase(txRunner)
	planQueryUC := production.NewPlanQueryUseCase(planRepo, snapshotRepo, logRepo)
	auditUC := audit.NewAuditUseCase(txRunner, itemRepo, movementRepo, publisher)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:           itemUC,
		RegisterMovement: registerMovementUC,
		Transfer:         transferUC,
		ReservationUC:    reservationUC,
		HistoryUC:        historyUC,
		BOMEdges:         bomEdges,
		BOMResolver:      bomResolver,
		CreatePlan:       createPlanUC,
		PostOutput:       postOutputUC,
		Rollback:         rollbackUC,
		CancelPlan:       cancelPlanUC,
		CompletePlan:     completePlanUC,
		PlanQuery:        planQueryUC,
		AuditUC:          auditUC,
		JWTSecret:        cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
