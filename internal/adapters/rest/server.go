// Package rest exposes the payment core over HTTP.
package rest

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flowpay/paycore/internal/core/service"
)

// NewRouter wires the HTTP surface: the four core operations, read-side
// queries, health and metrics.
func NewRouter(svc *service.PaymentService, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	h := &handlers{svc: svc, logger: logger}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/payment-intents", h.createPaymentIntent)
		v1.POST("/refunds", h.processRefund)
		v1.POST("/wallets/:user_id/transactions", h.processWalletTransaction)
		v1.PATCH("/transactions/:id/status", h.updateTransactionStatus)

		v1.GET("/transactions/:id", h.getTransaction)
		v1.GET("/wallets/:user_id", h.getWalletBalance)
		v1.GET("/audit", h.queryAudit)
	}

	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
