package main

import (
	"fmt"
	"net/http"
	"os"

	"goldsphere/internal/config"
	"goldsphere/internal/database"
	"goldsphere/internal/events"
	"goldsphere/internal/handlers"
	"goldsphere/internal/logger"
	"goldsphere/internal/middleware"
	"goldsphere/internal/services"
	"goldsphere/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "goldsphere/internal/docs" // Import swagger docs
)

// @title           Goldsphere API
// @version         1.0
// @description     Goldsphere is a precious-metals trading backend: product catalog, custody, orders and the position ledger they settle into.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Mutation events
	db := dbManager.DB()
	sink := events.MultiSink{
		events.NewLogSink(logger.Named("ledger")),
		events.NewAuditSink(db),
	}
	if len(appConfig.KafkaBrokers) > 0 {
		kafkaSink := events.NewKafkaSink(appConfig.KafkaBrokers, appConfig.KafkaTopic)
		defer func() {
			if err := kafkaSink.Close(); err != nil {
				log.Warnf("kafka writer close error: %v", err)
			}
		}()
		sink = append(sink, kafkaSink)
		log.Infof("Publishing ledger mutations to Kafka topic %s", appConfig.KafkaTopic)
	}

	// Initialize services
	portfolioService := services.NewPortfolioService(db)
	fulfillmentService := services.NewFulfillmentService(portfolioService)
	svc := handlers.Services{
		Users:        services.NewUserService(db),
		Products:     services.NewProductService(db),
		Custody:      services.NewCustodyService(db),
		Portfolios:   portfolioService,
		Positions:    services.NewPositionService(db),
		Transactions: services.NewTransactionService(db),
		Orders: services.NewOrderService(db, fulfillmentService, sink, services.OrderServiceConfig{
			LockTimeout:        appConfig.LockTimeout,
			FulfillmentTimeout: appConfig.FulfillmentTimeout,
		}),
		Audit: services.NewAuditService(db),
	}

	validator.Register()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Retry-After, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(router.Group("/api/v1"), svc)

	log.Infof("Starting Goldsphere backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
