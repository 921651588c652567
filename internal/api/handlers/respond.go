package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// respondError maps service errors onto the API envelope. Validation and
// lookup failures are reported in-band with a 200 so clients can branch on
// status.
func respondError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusOK, gin.H{"status": domain.StatusError, "message": err.Error()})
	case errors.Is(err, domain.ErrIntegrity):
		c.JSON(http.StatusConflict, gin.H{"error": operation + " conflicted with a concurrent write", "details": err.Error()})
	default:
		log.Error().Err(err).Str("operation", operation).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + operation, "details": err.Error()})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// bindJSON decodes the body and writes a 400 on failure.
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func dateParam(c *gin.Context, name string) (domain.Date, bool) {
	d, err := domain.ParseDate(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name+": expected YYYY-MM-DD")
		return domain.Date{}, false
	}
	return d, true
}

// optionalDateQuery returns nil when the parameter is absent.
func optionalDateQuery(c *gin.Context, name string) (*domain.Date, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		badRequest(c, "invalid "+name+": expected YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}

// intQuery falls back to def when the parameter is absent or unparsable.
func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return def
	}
	return v
}
