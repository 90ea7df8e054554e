package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"dare_webapp/internal/domain"
	"dare_webapp/internal/http/middleware"
	"dare_webapp/internal/logger"
	"dare_webapp/internal/service"
	"dare_webapp/internal/storage"
)

type Handler struct {
	DB            *pgxpool.Pool
	Auth          *service.AuthService
	Switches      *service.SwitchService
	Notifications *service.NotificationService
	ProofFiles    *storage.ProofStore // nil when object storage is not configured
}

func getUserID(c *gin.Context) (int64, bool) {
	return middleware.UserID(c)
}

// statusForError maps the engine's error taxonomy onto HTTP codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrExpired):
		return http.StatusGone
	}
	return http.StatusInternalServerError
}

// respondError writes the mapped status. Anything outside the taxonomy
// is a persistence or programming failure: log it with context, hide
// the detail from the client.
func respondError(c *gin.Context, err error, gameID, userID int64) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "path", c.FullPath(), "game_id", gameID, "user_id", userID, "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
