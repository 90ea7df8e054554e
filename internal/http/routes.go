package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"dare_webapp/internal/http/handlers"
	"dare_webapp/internal/http/middleware"
	"dare_webapp/internal/repository"
	"dare_webapp/internal/service"
	"dare_webapp/internal/storage"
	"dare_webapp/internal/ws"
)

// RegisterRoutes wires every endpoint onto the engine.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, hub *ws.Hub, proofFiles *storage.ProofStore) *handlers.Handler {
	notifier := service.NewNotificationService(
		repository.NewNotificationRepository(db),
		hub,
	)

	h := &handlers.Handler{
		DB:            db,
		Auth:          service.NewAuthService(db),
		Switches:      service.NewSwitchService(db, notifier),
		Notifications: notifier,
		ProofFiles:    proofFiles,
	}

	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.GET("/ws", h.WS(hub))

	api := r.Group("/api", middleware.Auth(), middleware.RateLimit())
	{
		api.GET("/me", h.MyProfile)

		api.GET("/notifications", h.MyNotifications)
		api.POST("/notifications/read", h.MarkNotificationsRead)

		api.POST("/switches", h.CreateSwitch)
		api.GET("/switches", h.ListSwitches)
		api.GET("/switches/mine", h.MySwitches)
		api.GET("/switches/:id", h.GetSwitch)
		api.POST("/switches/:id/join", h.JoinSwitch)
		api.POST("/switches/claim/:token", h.ClaimSwitch)
		api.POST("/switches/:id/move", h.SubmitMove)
		api.POST("/switches/:id/chicken-out", h.ChickenOut)
		api.POST("/switches/:id/proof", h.SubmitProof)
		api.GET("/switches/:id/proof", h.ViewProof)
		api.POST("/switches/:id/review", h.ReviewProof)
		api.POST("/switches/:id/grade", h.GradeSwitch)
		api.POST("/switches/:id/like", h.LikeSwitch)
	}

	return h
}
