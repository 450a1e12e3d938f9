package main

import (
	"log"
	"net/http"
	"os"

	_ "pokrew/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pokrew/internal/auth"
	"pokrew/internal/cache"
	"pokrew/internal/config"
	"pokrew/internal/db"
	"pokrew/internal/handler"
	"pokrew/internal/model"
	"pokrew/internal/repository"
	"pokrew/internal/router"
	"pokrew/internal/service"
)

// @title Pokrew Points API
// @version 1.0
// @description Club point ledger with redemption requests, product catalog, and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.Request{},
			&model.PointHistory{},
			&model.Product{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.PointHistory{},
		&model.Request{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	requestRepo := repository.NewRequestRepository(gormDB)
	historyRepo := repository.NewPointHistoryRepository(gormDB)
	txManager := repository.NewTxManager(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, cacheClient)
	productService := service.NewProductService(productRepo, cacheClient)
	ledgerService := service.NewLedgerService(txManager, historyRepo, cacheClient)
	requestService := service.NewRequestService(txManager, requestRepo, ledgerService, cacheClient)
	dashboardService := service.NewDashboardService(userRepo, requestRepo, historyRepo, userService, requestService, ledgerService)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService, ledgerService)
	productHandler := handler.NewProductHandler(productService)
	requestHandler := handler.NewRequestHandler(requestService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		userHandler,
		productHandler,
		requestHandler,
		dashboardHandler,
	)

	if cfg.SwaggerHost != "" {
		log.Printf("Swagger documentation available at: %s/swagger/index.html", cfg.SwaggerHost)
	} else {
		log.Printf("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.ServerPort)
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
