package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/stockmaster-api/internal/application/analytics"
	"github.com/jhoicas/stockmaster-api/internal/application/auth"
	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/application/usecase"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	Engine        *inventory.MovementEngine
	ProductUC     *usecase.ProductUseCase
	LocationUC    *usecase.LocationUseCase
	Replenishment *inventory.ReplenishmentUseCase
	DashboardUC   *appanalytics.DashboardUseCase
	ReportUC      *appanalytics.ReportUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/request-password-reset", authHandler.RequestPasswordReset)
	authGroup.Post("/verify-otp-reset", authHandler.VerifyOTPReset)

	// Rutas protegidas (requieren Bearer Token)
	requireAuth := AuthMiddleware(deps.JWTSecret)
	authGroup.Get("/me", requireAuth, authHandler.Me)
	authGroup.Put("/profile", requireAuth, authHandler.UpdateProfile)

	// Operaciones de stock
	opsHandler := NewOperationsHandler(deps.Engine)
	ops := api.Group("/ops", requireAuth)
	ops.Post("/receipts", opsHandler.CreateReceipt)
	ops.Post("/deliveries", opsHandler.CreateDelivery)
	ops.Post("/transfers", opsHandler.CreateTransfer)
	ops.Post("/adjustments", RequireRole(entity.RoleInventoryManager), opsHandler.CreateAdjustment)
	ops.Get("/history", opsHandler.History)
	ops.Get("/operations/:id", opsHandler.GetOperation)

	// Ubicaciones
	locationHandler := NewLocationHandler(deps.LocationUC)
	ops.Get("/locations", locationHandler.List)
	ops.Post("/locations", locationHandler.Create)
	ops.Get("/locations/:id", locationHandler.GetByID)
	ops.Put("/locations/:id", locationHandler.Update)

	// Productos (low-stock antes de /:id)
	productHandler := NewProductHandler(deps.ProductUC, deps.Replenishment)
	products := api.Group("/products", requireAuth)
	products.Get("/low-stock", productHandler.LowStock)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Get("/:id/stock", productHandler.Stock)

	// Dashboard y reportes
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.ReportUC)
	dashboard := api.Group("/dashboard", requireAuth)
	dashboard.Get("/kpis", dashboardHandler.KPIs)
	dashboard.Get("/charts", dashboardHandler.Charts)
	api.Get("/reports/stock.pdf", requireAuth, dashboardHandler.StockReport)
}
