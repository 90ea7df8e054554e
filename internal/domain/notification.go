package domain

import "time"

type NotificationType string

const (
	NotifyGameJoined     NotificationType = "game_joined"
	NotifyMoveSubmitted  NotificationType = "move_submitted"
	NotifyGameResolved   NotificationType = "game_resolved"
	NotifyProofSubmitted NotificationType = "proof_submitted"
	NotifyProofReviewed  NotificationType = "proof_reviewed"
	NotifyGameGraded     NotificationType = "game_graded"
	NotifyChickenOut     NotificationType = "chicken_out"
)

type Notification struct {
	ID        int64            `db:"id" json:"id"`
	UserID    int64            `db:"user_id" json:"user_id"`
	Type      NotificationType `db:"type" json:"type"`
	Message   string           `db:"message" json:"message"`
	GameID    int64            `db:"game_id" json:"game_id,omitempty"`
	Read      bool             `db:"read" json:"read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
