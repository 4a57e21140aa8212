package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"heartcare-backend/config"
	"heartcare-backend/controllers"
	"heartcare-backend/logger"
	"heartcare-backend/metrics"
	"heartcare-backend/report"
	"heartcare-backend/riskmodel"
	"heartcare-backend/routes"
	"heartcare-backend/security"
)

const serviceName = "heartcare-backend"

func main() {
	_ = godotenv.Load()

	if err := logger.InitLogger(serviceName); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.GetLogger()

	config.ConnectDB()

	model, err := riskmodel.LoadOrDefault(os.Getenv("RISK_MODEL_PARAMS"))
	if err != nil {
		log.Warn("risk model params not loaded, using built-in defaults", zap.Error(err))
	}
	predictController := controllers.NewPredictController(model, report.NewTextRenderer())

	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(security.CORSMiddleware())
	r.Use(security.RequestIDMiddleware())

	httpMetrics := metrics.NewHTTPMetrics(serviceName)
	r.Use(httpMetrics.Middleware())
	r.GET("/metrics", gin.WrapH(metrics.GetPrometheusHandler()))

	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api/v1")
	routes.AuthRoutes(api)
	routes.PortalRoutes(api)
	routes.PredictRoutes(api, predictController)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Info("server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
