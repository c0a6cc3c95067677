package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusguard/config"
	"campusguard/handler"
	"campusguard/middleware"
	"campusguard/model"
	"campusguard/repository"
	"campusguard/services"
	"campusguard/usecase"
	"campusguard/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func init() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") != "test" {
		log.Printf("No .env file found, relying on process environment")
	}

	// Check required environment variables
	requiredEnvVars := []string{
		"MONGO_URI",
		"MONGO_DB",
		"USERS_COLLECTION",
		"REDIS_URL",
		"JWT_SECRET_KEY",
		"JWT_EXPIRATION_TIME",
		"PORT",
	}

	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" && os.Getenv("GO_ENV") != "test" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	if err := utils.InitLogger(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	utils.InitValidator()
	utils.InitJWT()
	utils.InitMongoClient()
}

// engine wires repositories, services and workers once so the router and
// the shutdown path share the same instances.
type engine struct {
	sosService      *usecase.SOSService
	guardianService *usecase.GuardianService
	followMeService *usecase.FollowMeService
	hazardRepo      *repository.HazardRepo
	publisher       *services.RedisPublisher
	enrichment      *services.EnrichmentWorker
	stats           *handler.StatsHandler
}

func buildEngine(cfg config.EngineConfig) (*engine, error) {
	logger := utils.Logger

	publisher, err := services.NewRedisPublisher(os.Getenv("REDIS_URL"), logger)
	if err != nil {
		return nil, fmt.Errorf("redis publisher: %w", err)
	}

	blacklist, err := services.NewTokenBlacklist(os.Getenv("REDIS_URL"))
	if err != nil {
		return nil, fmt.Errorf("token blacklist: %w", err)
	}
	services.TokenBlacklist = blacklist

	dbCfg := config.LoadDatabaseConfig()
	if err := repository.SetupIndexes(utils.MongoClient.Database(dbCfg.DatabaseName)); err != nil {
		return nil, fmt.Errorf("index setup: %w", err)
	}

	sosRepo := repository.GetSOSAlertRepo(utils.MongoClient)
	userRepo := repository.GetUserRepo(utils.MongoClient)
	guardianRepo := repository.GetGuardianRepo(utils.MongoClient)
	followMeRepo := repository.GetFollowMeRepo(utils.MongoClient)
	hazardRepo := repository.GetHazardRepo(utils.MongoClient)

	var channels []usecase.Notifier
	channels = append(channels, services.NewPushNotifier(nil))
	if sid := os.Getenv("TWILIO_ACCOUNT_SID"); sid != "" {
		channels = append(channels, services.NewSMSNotifier(
			sid,
			os.Getenv("TWILIO_AUTH_TOKEN"),
			os.Getenv("TWILIO_FROM_NUMBER"),
		))
	}
	if key := os.Getenv("SENDGRID_API_KEY"); key != "" {
		channels = append(channels, services.NewEmailNotifier(
			key,
			utils.GetEnvAsString("SENDGRID_FROM_NAME", "Campus Safety"),
			os.Getenv("SENDGRID_FROM_EMAIL"),
		))
	}
	fanout := usecase.NewNotificationFanout(channels, cfg.FanoutTimeout, logger)
	fanout.Observe = middleware.TrackNotification

	sosService := &usecase.SOSService{
		Alerts:       sosRepo,
		Users:        userRepo,
		Fanout:       fanout,
		Publisher:    publisher,
		NearbyRadius: cfg.SOSNearbyRadiusM,
		Logger:       logger,
	}

	enrichment := services.NewEnrichmentWorker(sosService, sosRepo, cfg.SOSEnrichmentDelay, logger)
	enrichment.Observe = middleware.SOSEnrichmentDuration.Observe
	sosService.Enrichment = enrichment

	guardianService := &usecase.GuardianService{
		Sessions:           guardianRepo,
		Users:              userRepo,
		Fanout:             fanout,
		Publisher:          publisher,
		RouteDistance:      services.RouteDistanceMeters,
		DeviationThreshold: cfg.DeviationThresholdM,
		Logger:             logger,
		OnDeviation: func(float64) {
			middleware.RouteDeviationsTotal.Inc()
		},
	}

	followMeService := &usecase.FollowMeService{
		Sessions:     followMeRepo,
		Users:        userRepo,
		Hazards:      hazardRepo,
		Fanout:       fanout,
		Publisher:    publisher,
		HazardRadius: cfg.HazardRadiusM,
		Defaults: model.FollowMeSettings{
			UpdateIntervalSeconds: cfg.FollowMeUpdateSecs,
			MaxHistoryPoints:      cfg.FollowMeHistoryCap,
		},
		Logger: logger,
	}

	return &engine{
		sosService:      sosService,
		guardianService: guardianService,
		followMeService: followMeService,
		hazardRepo:      hazardRepo,
		publisher:       publisher,
		enrichment:      enrichment,
		stats:           handler.NewStatsHandler(sosService, utils.MongoClient, publisher.Client),
	}, nil
}

func setupRouter(e *engine) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.EnhancedRecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestTracingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestSizeLimiter(int64(utils.GetEnvAsInt("MAX_REQUEST_BODY_BYTES", 1<<20))))

	router.GET("/health", e.stats.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The trigger route uses optional auth: a valid token supplies the user
	// id, but a missing or expired one never blocks an emergency.
	sos := router.Group("/api/sos")
	sos.Use(middleware.OptionalAuthMiddleware())
	{
		sos.POST("/trigger", func(c *gin.Context) {
			handler.TriggerSOSHandler(c, e.sosService)
		})
	}

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		alerts := protected.Group("/sos")
		{
			alerts.GET("/:id", func(c *gin.Context) {
				handler.GetSOSAlertHandler(c, e.sosService)
			})
			alerts.POST("/:id/resolve", func(c *gin.Context) {
				handler.ResolveSOSHandler(c, e.sosService)
			})
		}

		guardian := protected.Group("/guardian")
		{
			guardian.POST("/start", func(c *gin.Context) {
				handler.StartGuardianHandler(c, e.guardianService)
			})
			guardian.POST("/:id/location", func(c *gin.Context) {
				handler.GuardianLocationHandler(c, e.guardianService)
			})
			guardian.POST("/:id/complete", func(c *gin.Context) {
				handler.CompleteGuardianHandler(c, e.guardianService)
			})
			guardian.POST("/:id/cancel", func(c *gin.Context) {
				handler.CancelGuardianHandler(c, e.guardianService)
			})
		}

		followme := protected.Group("/followme")
		{
			followme.POST("/start", func(c *gin.Context) {
				handler.StartFollowMeHandler(c, e.followMeService)
			})
			followme.POST("/location", func(c *gin.Context) {
				handler.FollowMeLocationHandler(c, e.followMeService)
			})
			followme.POST("/stop", func(c *gin.Context) {
				handler.StopFollowMeHandler(c, e.followMeService)
			})
		}

		security := protected.Group("/security")
		{
			security.GET("/alerts", func(c *gin.Context) {
				handler.ListActiveSOSAlertsHandler(c, e.sosService)
			})
			security.GET("/stats", e.stats.SecurityStats)
			security.GET("/feed", func(c *gin.Context) {
				handler.SecurityFeedHandler(c, e.publisher)
			})
			security.POST("/hazards", func(c *gin.Context) {
				handler.CreateHazardHandler(c, e.hazardRepo)
			})
			security.DELETE("/hazards/:id", func(c *gin.Context) {
				handler.DeactivateHazardHandler(c, e.hazardRepo)
			})
		}

		protected.GET("/hazards/nearby", func(c *gin.Context) {
			handler.NearbyHazardsHandler(c, e.hazardRepo)
		})
		protected.GET("/feed", func(c *gin.Context) {
			handler.UserFeedHandler(c, e.publisher)
		})
	}

	return router
}

func main() {
	cfg := config.LoadEngineConfig()

	eng, err := buildEngine(cfg)
	if err != nil {
		utils.Logger.Fatal("failed to build engine", zap.Error(err))
	}

	eng.enrichment.Start()

	router := setupRouter(eng)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	go func() {
		utils.Logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	sig := <-signalChan
	utils.Logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Error("server shutdown failed", zap.Error(err))
	}
	eng.enrichment.Stop()
	if err := utils.MongoClient.Disconnect(ctx); err != nil {
		utils.Logger.Error("mongo disconnect failed", zap.Error(err))
	}
	utils.Logger.Info("shutdown complete")
}
