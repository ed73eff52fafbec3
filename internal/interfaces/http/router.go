package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tallerpro/manufactura-api/internal/application/audit"
	"github.com/tallerpro/manufactura-api/internal/application/bom"
	"github.com/tallerpro/manufactura-api/internal/application/production"
	"github.com/tallerpro/manufactura-api/internal/application/stock"
	"github.com/tallerpro/manufactura-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC           *usecase.ItemUseCase
	RegisterMovement *stock.RegisterMovementUseCase
	Transfer         *stock.TransferUseCase
	ReservationUC    *stock.ReservationUseCase
	HistoryUC        *stock.HistoryUseCase
	BOMEdges         *bom.EdgeUseCase
	BOMResolver      *bom.ResolverUseCase
	CreatePlan       *production.CreatePlanUseCase
	PostOutput       *production.PostOutputUseCase
	Rollback         *production.RollbackUseCase
	CancelPlan       *production.CancelPlanUseCase
	CompletePlan     *production.CompletePlanUseCase
	PlanQuery        *production.PlanQueryUseCase
	AuditUC          *audit.AuditUseCase
	JWTSecret        string
}

// Router registra las rutas de la API. Todas las rutas exigen Bearer Token:
// la emisión de tokens es del colaborador de autenticación, externo a esta API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Items
	items := api.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)

	// Stock: movimientos manuales, traslados, reservas e historia del libro
	stockHandler := NewStockHandler(deps.RegisterMovement, deps.Transfer, deps.ReservationUC, deps.HistoryUC)
	items.Get("/:id/movements", stockHandler.ListMovements)
	stockGroup := api.Group("/stock")
	stockGroup.Post("/movements", stockHandler.RegisterMovement)
	stockGroup.Post("/transfers", stockHandler.Transfer)
	stockGroup.Post("/reservations", stockHandler.Reserve)
	stockGroup.Delete("/reservations/:owner", stockHandler.ReleaseOwner)

	// BOM
	bomGroup := api.Group("/bom")
	bomHandler := NewBOMHandler(deps.BOMEdges, deps.BOMResolver)
	bomGroup.Post("/edges", bomHandler.CreateEdge)
	bomGroup.Delete("/edges/:id", bomHandler.DeleteEdge)
	bomGroup.Get("/:id/resolve", bomHandler.Resolve)

	// Planes de producción
	plans := api.Group("/plans")
	productionHandler := NewProductionHandler(deps.CreatePlan, deps.PostOutput, deps.Rollback, deps.CancelPlan, deps.CompletePlan, deps.PlanQuery)
	plans.Post("/", productionHandler.CreatePlan)
	plans.Get("/", productionHandler.ListPlans)
	plans.Get("/:id", productionHandler.GetPlan)
	plans.Post("/:id/outputs", productionHandler.PostOutput)
	plans.Post("/:id/cancel", productionHandler.CancelPlan)
	plans.Post("/:id/complete", productionHandler.CompletePlan)

	// Reversa de reportes de producción
	api.Post("/production-logs/:id/rollback", productionHandler.Rollback)

	// Auditor de consistencia (solo manager; el barrido completo es cmd/audit)
	auditGroup := api.Group("/audit")
	auditHandler := NewAuditHandler(deps.AuditUC)
	auditGroup.Get("/items/:id", auditHandler.AuditItem)
	auditGroup.Post("/items/:id/repair", auditHandler.RepairItem)
}
