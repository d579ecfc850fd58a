package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/milkledger/internal/server/handlers"
)

// Handlers groups the HTTP adapters. Webhook is nil when WhatsApp is not configured.
type Handlers struct {
	Ledger  *handlers.LedgerHandler
	Reports *handlers.ReportHandler
	Webhook *handlers.WebhookHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/farms", h.Ledger.Farms)
	r.GET("/farms/:farmID/entries", h.Ledger.Entries)
	r.GET("/years", h.Ledger.Years)
	r.GET("/months", h.Ledger.Months)
	r.GET("/bounds", h.Ledger.Bounds)
	r.POST("/milk", h.Ledger.AddMilk)
	r.DELETE("/milk", h.Ledger.RemoveMilk)
	r.POST("/reload", h.Ledger.Reload)
	r.POST("/commands", h.Ledger.Command)

	reports := r.Group("/reports")
	reports.GET("/farm/:farmID", h.Reports.Farm)
	reports.GET("/farm/:farmID/summary", h.Reports.FarmSummary)
	reports.GET("/annual", h.Reports.Annual)
	reports.GET("/monthly", h.Reports.Monthly)
	reports.GET("/range", h.Reports.Range)
	reports.POST("/archive", h.Reports.Archive)
	if h.Reports.HasArchive() {
		reports.GET("/archive", h.Reports.ListArchived)
	}

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
		r.POST("/send-message", h.Webhook.SendMessage)
	}

	if logger != nil {
		logger.Info("router initialized", zap.Bool("whatsapp", h.Webhook != nil), zap.Bool("archive_listing", h.Reports.HasArchive()))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
