package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/milkledger/internal/domain/models"
	"github.com/mamadbah2/milkledger/internal/service/commands"
	"github.com/mamadbah2/milkledger/internal/service/reporting"
)

// StatusForError maps domain errors to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrFarmNotFound),
		errors.Is(err, models.ErrMissingData),
		errors.Is(err, reporting.ErrNoArchive):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNegativeWeight):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInvalidDate),
		errors.Is(err, models.ErrStartDateOutOfRange),
		errors.Is(err, models.ErrEndDateOutOfRange),
		errors.Is(err, reporting.ErrUnknownSummary),
		errors.Is(err, reporting.ErrUnknownReport),
		errors.Is(err, commands.ErrInvalidArguments),
		errors.Is(err, commands.ErrUnsupportedCommand):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
		c.JSON(status, gin.H{"error": msg})
		return
	}
	logger.Debug(msg, zap.Int("status", status), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}
