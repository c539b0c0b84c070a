package router

import (
	"time"

	"vendapos/internal/config"
	"vendapos/internal/handler"
	"vendapos/internal/infra"
	"vendapos/internal/middleware"
	"vendapos/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the services and infrastructure the HTTP layer needs. They are
// built once in the composition root and shared with the workers.
type Deps struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Breaker *infra.CircuitBreaker // nil in mock fiscal mode

	Sales    service.SaleService
	Closures service.CashClosureService
	Budgets  service.BudgetService
	Fiscal   service.FiscalService
	Printers service.PrintService
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, d Deps, done <-chan struct{}) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.ErrorHandler())

	limiter := middleware.NewCompanyRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(done, 5*time.Minute)

	// ── Handlers ─────────────────────────────────────────────────────────────
	salesH := handler.NewSalesHandler(d.Sales)
	closuresH := handler.NewCashClosuresHandler(d.Closures)
	budgetsH := handler.NewBudgetsHandler(d.Budgets)
	fiscalH := handler.NewFiscalDocumentsHandler(d.Fiscal)
	printersH := handler.NewPrintersHandler(d.Printers)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.Breaker))

	// Protected routes; the limiter needs the company id from the token.
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), limiter.Middleware())
	registerRoutes(v1, salesH, closuresH, budgetsH, fiscalH, printersH)

	// Swagger UI, outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

func registerRoutes(
	v1 *gin.RouterGroup,
	salesH *handler.SalesHandler,
	closuresH *handler.CashClosuresHandler,
	budgetsH *handler.BudgetsHandler,
	fiscalH *handler.FiscalDocumentsHandler,
	printersH *handler.PrintersHandler,
) {
	sales := v1.Group("/sales")
	{
		sales.POST("", salesH.CreateSale)
		sales.GET("", salesH.ListSales)
		sales.GET("/:id", salesH.GetSale)
		sales.GET("/:id/content", salesH.Content)
		sales.DELETE("/:id", salesH.RemoveSale)
		sales.POST("/:id/reprint", salesH.ReprintSale)
	}

	closures := v1.Group("/cash-closures")
	{
		closures.POST("", closuresH.Open)
		closures.GET("", closuresH.List)
		closures.GET("/current", closuresH.Current)
		closures.POST("/close", closuresH.Close)
		closures.POST("/withdrawals", closuresH.Withdraw)
		closures.GET("/:id/report", closuresH.Report)
		closures.POST("/:id/reprint", closuresH.Reprint)
	}

	budgets := v1.Group("/budgets")
	{
		budgets.POST("", budgetsH.Create)
		budgets.GET("/:id", budgetsH.Get)
		budgets.GET("/:id/content", budgetsH.Content)
		budgets.POST("/:id/approve", budgetsH.Approve)
		budgets.POST("/:id/reject", budgetsH.Reject)
	}

	fiscal := v1.Group("/fiscal-documents")
	{
		fiscal.GET("/:id", fiscalH.Get)
		fiscal.GET("/:id/content", fiscalH.Content)
		fiscal.POST("/:id/cancel", fiscalH.Cancel)
	}

	printers := v1.Group("/printers")
	{
		printers.POST("/devices", printersH.RegisterDevice)
		printers.POST("", printersH.Create)
		printers.GET("", printersH.List)
		printers.POST("/print", printersH.Print)
		printers.PUT("/:id/default", printersH.SetDefault)
		printers.GET("/:name/status", printersH.Status)
	}
}
