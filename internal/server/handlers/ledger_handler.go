package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/milkledger/internal/domain/models"
	"github.com/mamadbah2/milkledger/internal/service/commands"
	"github.com/mamadbah2/milkledger/internal/service/ingestion"
)

// Ledger is the registry surface exposed over HTTP.
type Ledger interface {
	AddMilk(farmID string, date models.MilkDate, weight int) error
	RemoveMilk(farmID string, date models.MilkDate) error
	FarmIDs() []string
	Years() []string
	Months() []string
	Bounds() models.DateBounds
	Ledger(farmID string) (*models.FarmLedger, error)
}

// Reloader rebuilds the registry from its configured sources.
type Reloader interface {
	Reload(ctx context.Context) (ingestion.Result, error)
}

// LedgerHandler serves the farm registry, manual edits and text commands.
type LedgerHandler struct {
	ledger     Ledger
	loader     Reloader
	dispatcher commands.Dispatcher
	logger     *zap.Logger
}

// NewLedgerHandler constructs the HTTP handler adapter.
func NewLedgerHandler(ledger Ledger, loader Reloader, dispatcher commands.Dispatcher, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{ledger: ledger, loader: loader, dispatcher: dispatcher, logger: logger}
}

// Farms lists farm ids in lexicographic order.
func (h *LedgerHandler) Farms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"farms": nonNil(h.ledger.FarmIDs())})
}

// Years lists the years with data in numeric order.
func (h *LedgerHandler) Years(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"years": nonNil(h.ledger.Years())})
}

// Months lists the calendar months with data.
func (h *LedgerHandler) Months(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"months": nonNil(h.ledger.Months())})
}

// Entries returns one farm's daily weights keyed by canonical date.
func (h *LedgerHandler) Entries(c *gin.Context) {
	ledger, err := h.ledger.Ledger(c.Param("farmID"))
	if err != nil {
		respondError(c, h.logger, "failed to read ledger", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"farm_id": ledger.Name(), "entries": ledger.Entries()})
}

// Bounds returns the earliest and latest ingested dates.
func (h *LedgerHandler) Bounds(c *gin.Context) {
	b := h.ledger.Bounds()
	if !b.Set {
		c.JSON(http.StatusOK, gin.H{"set": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"set": true, "min": b.Min.String(), "max": b.Max.String()})
}

// AddMilk sets one farm's weight for a date.
func (h *LedgerHandler) AddMilk(c *gin.Context) {
	var req models.MilkEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Weight == nil {
		h.logger.Warn("invalid milk entry payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	date, err := models.ParseMilkDate(req.Date)
	if err != nil {
		respondError(c, h.logger, "invalid date", err)
		return
	}

	if err := h.ledger.AddMilk(req.FarmID, date, *req.Weight); err != nil {
		respondError(c, h.logger, "failed to add milk", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"farm_id": req.FarmID, "date": date.String(), "weight": *req.Weight})
}

// RemoveMilk deletes one farm's entry for a date.
func (h *LedgerHandler) RemoveMilk(c *gin.Context) {
	var req models.MilkEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid milk entry payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	date, err := models.ParseMilkDate(req.Date)
	if err != nil {
		respondError(c, h.logger, "invalid date", err)
		return
	}

	if err := h.ledger.RemoveMilk(req.FarmID, date); err != nil {
		respondError(c, h.logger, "failed to remove milk", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Reload rebuilds the registry from the configured files and sheet.
func (h *LedgerHandler) Reload(c *gin.Context) {
	res, err := h.loader.Reload(c.Request.Context())
	if err != nil {
		h.logger.Error("reload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Command runs a text command, as sent over WhatsApp.
func (h *LedgerHandler) Command(c *gin.Context) {
	var req models.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cmd := models.ParseCommand(req.Text)
	reply, err := h.dispatcher.HandleCommand(c.Request.Context(), cmd, "http:"+c.ClientIP())
	if err != nil {
		status := StatusForError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		}
		c.JSON(status, models.CommandReply{Command: string(cmd.Type), Message: commands.ReplyForError(err)})
		return
	}

	c.JSON(http.StatusOK, models.CommandReply{Command: string(cmd.Type), Message: reply})
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
