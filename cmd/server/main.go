// @title Sprint Portfolio Analytics API
// @version 1.0
// @description JSON API over the sprint analytics engine: delivery metrics, initiative prioritization, health and risk scoring, and velocity forecasting.
// @BasePath /api/v1
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/dollydang/sprint-portfolio-analytics/internal/engine"
	"github.com/dollydang/sprint-portfolio-analytics/internal/errors"
	"github.com/dollydang/sprint-portfolio-analytics/internal/monitoring"
	"github.com/dollydang/sprint-portfolio-analytics/internal/predictive"
	"github.com/dollydang/sprint-portfolio-analytics/internal/prioritization"
	"github.com/dollydang/sprint-portfolio-analytics/internal/ratelimit"
	"github.com/dollydang/sprint-portfolio-analytics/internal/types"
)

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment with defaults
	port := getEnvOrDefault("PORT", "8080")
	simulations := getEnvIntOrDefault("SIMULATIONS", 1000)
	rateLimitPerMin := getEnvIntOrDefault("RATE_LIMIT_PER_MIN", 60)
	seed := int64(getEnvIntOrDefault("FORECAST_SEED", 0))

	cfg := engine.DefaultConfig()
	cfg.Predictive.Simulations = simulations
	cfg.Predictive.Seed = seed

	eng, err := engine.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize analytics engine", "error", err)
		os.Exit(1)
	}

	rlConfig := ratelimit.DefaultConfig()
	rlConfig.IPLimitPerMin = rateLimitPerMin

	r := setupRouter(eng, cfg, rlConfig)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", port, "simulations", simulations)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server exited")
}

// setupRouter wires middleware and routes. Separated from main so handler
// tests can exercise the real routing table.
func setupRouter(eng *engine.Engine, cfg engine.Config, rlConfig ratelimit.Config) *gin.Engine {
	r := gin.New()

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	r.Use(monitoring.MonitoringMiddleware(appMetrics, appLogger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	limiter := ratelimit.NewRateLimiter(rlConfig)
	r.Use(limiter.IPRateLimitMiddleware(appMetrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	// Swagger documentation routes
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.POST("/report", reportHandler(eng, appLogger))
	api.POST("/montecarlo", monteCarloHandler(cfg))
	api.POST("/forecast", forecastHandler(cfg))
	api.POST("/risk", riskHandler(cfg))
	api.POST("/prioritize", prioritizeHandler(cfg))

	return r
}

// reportHandler runs the full pipeline over a posted dataset.
// @Summary Full analytics report
// @Accept json
// @Produce json
// @Router /report [post]
func reportHandler(eng *engine.Engine, appLogger *monitoring.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ds types.Dataset
		if err := c.ShouldBindJSON(&ds); err != nil {
			renderError(c, errors.NewValidationError("invalid dataset body", err.Error()))
			return
		}

		start := time.Now()
		report, err := eng.Analyze(ds)
		if err != nil {
			renderError(c, errors.ToAppError(err))
			return
		}

		highRisk := 0
		for _, r := range report.Risks {
			if r.Level == predictive.RiskHigh {
				highRisk++
			}
		}
		appLogger.ReportLogger(len(ds.Sprints), len(ds.Initiatives), report.Health.Score, highRisk, time.Since(start))

		c.JSON(http.StatusOK, report)
	}
}

// monteCarloRequest takes the target as a pointer so an explicit zero
// binds; a zero-point target is a legitimate (trivially certain) forecast.
type monteCarloRequest struct {
	Velocities   []float64 `json:"velocities" binding:"required"`
	TargetPoints *float64  `json:"target_points" binding:"required"`
	Simulations  int       `json:"simulations,omitempty"`
	Seed         int64     `json:"seed,omitempty"`
}

// monteCarloHandler estimates sprint completion probability by bootstrap
// resampling of historical velocities.
// @Summary Monte Carlo completion probability
// @Accept json
// @Produce json
// @Router /montecarlo [post]
func monteCarloHandler(cfg engine.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req monteCarloRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			renderError(c, errors.NewValidationError("invalid monte carlo request", err.Error()))
			return
		}

		pcfg := cfg.Predictive
		if req.Simulations > 0 {
			pcfg.Simulations = req.Simulations
		}
		if req.Seed != 0 {
			pcfg.Seed = req.Seed
		}

		result, err := predictive.MonteCarloForecast(req.Velocities, *req.TargetPoints, pcfg)
		if err != nil {
			renderError(c, errors.ToAppError(err))
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

type forecastRequest struct {
	Velocities []float64 `json:"velocities" binding:"required"`
	Horizon    int       `json:"horizon,omitempty"`
}

// forecastHandler projects velocity forward with a linear trend and
// confidence intervals.
// @Summary Capacity forecast
// @Accept json
// @Produce json
// @Router /forecast [post]
func forecastHandler(cfg engine.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req forecastRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			renderError(c, errors.NewValidationError("invalid forecast request", err.Error()))
			return
		}

		series, err := predictive.CapacityForecast(req.Velocities, req.Horizon, cfg.Predictive)
		if err != nil {
			renderError(c, errors.ToAppError(err))
			return
		}

		c.JSON(http.StatusOK, series)
	}
}

type riskRequest struct {
	Initiatives []types.Initiative   `json:"initiatives" binding:"required"`
	TeamState   predictive.TeamState `json:"team_state" binding:"required"`
}

// riskHandler scores miss-likelihood for every in-flight initiative.
// @Summary Initiative risk assessment
// @Accept json
// @Produce json
// @Router /risk [post]
func riskHandler(cfg engine.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req riskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			renderError(c, errors.NewValidationError("invalid risk request", err.Error()))
			return
		}

		risks := predictive.AssessPortfolio(req.Initiatives, req.TeamState, cfg.Predictive)
		c.JSON(http.StatusOK, gin.H{"risks": risks})
	}
}

type prioritizeRequest struct {
	Initiatives     []types.Initiative           `json:"initiatives" binding:"required"`
	ThresholdMode   prioritization.ThresholdMode `json:"threshold_mode,omitempty"`
	ImpactThreshold float64                      `json:"impact_threshold,omitempty"`
	EffortThreshold float64                      `json:"effort_threshold,omitempty"`
}

// prioritizeHandler ranks initiatives and buckets them into quadrants.
// @Summary Initiative prioritization
// @Accept json
// @Produce json
// @Router /prioritize [post]
func prioritizeHandler(cfg engine.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prioritizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			renderError(c, errors.NewValidationError("invalid prioritize request", err.Error()))
			return
		}

		pcfg := cfg.Prioritization
		if req.ThresholdMode != "" {
			pcfg.ThresholdMode = req.ThresholdMode
			pcfg.FixedImpactThreshold = req.ImpactThreshold
			pcfg.FixedEffortThreshold = req.EffortThreshold
		}
		if err := pcfg.Validate(); err != nil {
			renderError(c, errors.ToAppError(err))
			return
		}

		ranked, err := prioritization.Rank(req.Initiatives, pcfg)
		if err != nil {
			renderError(c, errors.ToAppError(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ranked":      ranked,
			"composition": prioritization.Composition(ranked),
			"thresholds":  prioritization.ComputeThresholds(req.Initiatives, pcfg),
		})
	}
}

func renderError(c *gin.Context, appErr *errors.AppError) {
	errors.LogError(c, appErr)
	c.JSON(appErr.HTTPStatus, appErr)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
