package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reservation-backend/internal/infrastructure/metrics"
	"reservation-backend/internal/shared/middleware"
	"reservation-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.CORS.AllowOrigins),
		metrics.Middleware(),
	)

	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupPaymentRoutes(v1, c)
		setupReservationRoutes(v1, c)
		setupAdminReservationRoutes(v1, c)
		setupAdminPaymentRoutes(v1, c)
	}

	return router
}

// ========================================
// PAYMENT ROUTES
// ========================================
// Settlement is called by the checkout page right after the PortOne SDK returns.
// The provider lookup is the authority, so the route is public and rate limited.
func setupPaymentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	payments := v1.Group("/payments")
	{
		payments.POST("/complete", c.SettlementLimiter.Middleware(), c.PaymentHandler.CompletePayment)
	}
}

// ========================================
// RESERVATION ROUTES
// ========================================
func setupReservationRoutes(v1 *gin.RouterGroup, c *container.Container) {
	reservations := v1.Group("/reservations")
	reservations.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		reservations.POST("", c.ReservationHandler.CreateReservation)
		reservations.GET("/:id", c.ReservationHandler.GetReservation)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminReservationRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin/reservations")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		admin.POST("/:id/approve", c.ReservationHandler.ApproveReservation)
		admin.POST("/:id/reject", c.ReservationHandler.RejectReservation)
		admin.POST("/:id/complete", c.ReservationHandler.CompleteReservation)
	}
}

func setupAdminPaymentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin/payments")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		admin.GET("/:transaction_id", c.PaymentHandler.GetPayment)
		admin.GET("/:transaction_id/provider", c.PaymentHandler.GetProviderPayment)
		admin.POST("/:transaction_id/refund", c.PaymentHandler.RefundPayment)
	}
}

// ========================================
// HEALTH
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		// Check database
		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = "error"
				health["status"] = "degraded"
			}
		}

		// Check redis (not fatal)
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = "error"
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
			"portone":  appCtx.PortOne.Configured(),
		}

		statusCode := http.StatusOK
		if health["status"] != "ok" {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, health)
	}
}
