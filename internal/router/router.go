package router

import (
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/config"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/handler"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/infra"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/middleware"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/repository"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/service"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// A nil rdb runs without the distributed shop lock and without alerts.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	var (
		locker service.Locker = service.NoopLocker{}
		alerts service.AlertDispatcher
	)
	if rdb != nil {
		locker = infra.NewShopLocker(rdb, cfg.ReportLockTTL())
		alerts = worker.NewDispatcher(rdb)
	}
	loc := cfg.Location()

	// ── Repositories ─────────────────────────────────────────────────────────
	baristaRepo := repository.NewBaristaRepository(db)
	shopRepo := repository.NewShopRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(baristaRepo, cfg, time.Now)
	shopSvc := service.NewShopService(shopRepo, baristaRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	txSvc := service.NewTransactionService(txRepo, shopRepo, categoryRepo, time.Now, loc, locker)
	reportSvc := service.NewReportService(reportRepo, shopRepo, service.ReportConfig{
		PerDay:            cfg.ReportsPerDay,
		Location:          loc,
		ShortageThreshold: cfg.ShortageAlertThreshold,
		AlertEmail:        cfg.AlertEmail,
	}, time.Now, locker, alerts)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	baristasH := handler.NewBaristasHandler(authSvc)
	shopsH := handler.NewShopsHandler(shopSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	txH := handler.NewTransactionsHandler(txSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	const (
		admin   = model.RoleAdmin
		barista = model.RoleBarista
	)

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		anyone := middleware.RequireRole(barista, admin)
		adminOnly := middleware.RequireRole(admin)

		tx := v1.Group("/transactions/:kind", anyone)
		{
			tx.POST("", txH.Create)
			tx.GET("", txH.List)
			tx.GET("/:id", txH.Get)
			tx.PUT("/:id", txH.Edit)
			tx.DELETE("/:id", txH.Delete)
		}

		reports := v1.Group("/reports")
		{
			reports.POST("", anyone, reportsH.Submit)
			reports.GET("", anyone, reportsH.List)
			reports.GET("/export", anyone, reportsH.ExportExcel)
			reports.GET("/:id", anyone, reportsH.Get)
			reports.GET("/:id/pdf", anyone, reportsH.ExportPDF)
			reports.PUT("/:id", adminOnly, reportsH.Edit)
			reports.DELETE("/:id", adminOnly, reportsH.Delete)
		}

		shops := v1.Group("/shops")
		{
			shops.GET("", anyone, shopsH.List)
			shops.GET("/:id", anyone, shopsH.Get)
			shops.POST("", adminOnly, shopsH.Create)
			shops.DELETE("/:id", adminOnly, shopsH.Delete)
			shops.POST("/:id/baristas", adminOnly, shopsH.AssignBarista)
		}

		v1.GET("/categories", anyone, categoriesH.List)
		categories := v1.Group("/categories", adminOnly)
		{
			categories.POST("", categoriesH.Create)
			categories.DELETE("/:id", categoriesH.Deactivate)
		}

		baristas := v1.Group("/baristas", adminOnly)
		{
			baristas.POST("", baristasH.Create)
			baristas.GET("", baristasH.List)
			baristas.DELETE("/:id", baristasH.Deactivate)
			baristas.PATCH("/:id/reactivate", baristasH.Reactivate)
		}
	}

	// Swagger UI is only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
