package service

import (
	"context"
	"time"

	"dare_webapp/internal/domain"
	"dare_webapp/internal/logger"
	"dare_webapp/internal/metrics"
	"dare_webapp/internal/repository"
	"dare_webapp/internal/ws"
)

// NotificationService persists notifications and pushes them to live
// websocket connections. Delivery is best effort: failures are logged
// and never surface to the operation that produced the event.
type NotificationService struct {
	repo *repository.NotificationRepository
	hub  *ws.Hub
}

func NewNotificationService(repo *repository.NotificationRepository, hub *ws.Hub) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

// Notify stores the notification and pushes it over the hub.
func (s *NotificationService) Notify(ctx context.Context, userID int64, ntype domain.NotificationType, gameID int64, message string) {
	if userID == 0 {
		return
	}

	n := &domain.Notification{
		UserID:  userID,
		Type:    ntype,
		Message: message,
		GameID:  gameID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		logger.Error("notification persist failed", "user_id", userID, "type", ntype, "game_id", gameID, "error", err)
	}

	s.hub.SendToUser(userID, n)
	metrics.NotificationsSent.Inc()
}

// NotifyAsync fires Notify on its own goroutine with a fresh timeout
// context, detached from the request that triggered it. The state
// change has already committed by the time this runs.
func (s *NotificationService) NotifyAsync(userID int64, ntype domain.NotificationType, gameID int64, message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Notify(ctx, userID, ntype, gameID, message)
	}()
}

// History returns the user's recent notifications.
func (s *NotificationService) History(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit)
}

// MarkRead marks all of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID int64) error {
	return s.repo.MarkRead(ctx, userID)
}
