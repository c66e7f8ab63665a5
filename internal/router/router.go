package router

import (
	"time"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/config"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/handler"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/middleware"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/repository"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/service"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine plus the
// sale service (the composition root hands it to the ledger retry loop).
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) (*gin.Engine, service.SaleService, repository.SaleRepository) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	registerRepo := repository.NewRegisterRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	accountingRepo := repository.NewAccountingRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, rdb)
	stockSvc := service.NewStockService(stockRepo, productRepo)
	registerSvc := service.NewRegisterService(registerRepo)
	customerSvc := service.NewCustomerService(customerRepo)
	saleSvc := service.NewSaleService(saleRepo, stockSvc, registerSvc, customerSvc, productRepo, accountingRepo, dispatcher, cfg.DefaultLocation)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	stockH := handler.NewStockHandler(stockSvc, cfg.DefaultLocation)
	salesH := handler.NewSalesHandler(saleSvc)
	registerH := handler.NewRegisterHandler(registerSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	accountingH := handler.NewAccountingHandler(accountingRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Auth (public)
	r.POST("/v1/auth/login", middleware.LoginRateLimiter(), authH.Login)

	// Price check — no auth required, it runs on the customer-facing scanner
	r.GET("/v1/price/:barcode", productsH.PriceByBarcode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		sales := v1.Group("/sales")
		{
			sales.POST("", salesH.CreateSale)
			sales.GET("", salesH.ListSales)
			sales.GET("/:id", salesH.GetSale)
			sales.DELETE("/:id", middleware.RequireRole("supervisor", "admin"), salesH.CancelSale)
		}

		register := v1.Group("/register")
		{
			register.POST("/open", registerH.OpenRegister)
			register.GET("/current", registerH.CurrentRegister)
			register.POST("/:id/close", registerH.CloseRegister)
			register.GET("", middleware.RequireRole("supervisor", "admin"), registerH.ListRegisters)
		}

		stock := v1.Group("/stock")
		{
			stock.GET("", stockH.ListStock)
			stock.GET("/:productId", stockH.GetStock)
			stock.POST("/add", middleware.RequireRole("supervisor", "admin"), stockH.AddStock)
			stock.POST("/remove", middleware.RequireRole("supervisor", "admin"), stockH.RemoveStock)
		}

		customers := v1.Group("/customers")
		{
			customers.GET("/:phone", customersH.FindByPhone)
			customers.POST("", customersH.CreateCustomer)
		}

		v1.GET("/products", productsH.ListProducts)
		v1.GET("/accounting", middleware.RequireRole("supervisor", "admin"), accountingH.ListEntries)
	}

	return r, saleSvc, saleRepo
}
