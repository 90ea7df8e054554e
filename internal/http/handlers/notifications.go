package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// MyNotifications returns the caller's recent notifications.
func (h *Handler) MyNotifications(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := h.Notifications.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err, 0, userID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkNotificationsRead marks everything read for the caller.
func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	if err := h.Notifications.MarkRead(c.Request.Context(), userID); err != nil {
		respondError(c, err, 0, userID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
