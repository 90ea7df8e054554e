package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"dare_webapp/internal/domain"
	"dare_webapp/internal/game"
	"dare_webapp/internal/logger"
	"dare_webapp/internal/metrics"
	"dare_webapp/internal/repository"
)

// SwitchService drives the switch game engine: lifecycle, move
// resolution, proof workflow and grading. Every mutation goes through
// the repository's row-locked mutate cycle, so two racing requests on
// one game serialize and the resolution fires exactly once. All
// notifications go out after the transaction commits.
type SwitchService struct {
	games    *repository.SwitchGameRepository
	notifier *NotificationService

	// optional hook for the admin alert bot
	reviewAlert func(gameID int64, action domain.ReviewAction, feedback string)
}

func NewSwitchService(db *pgxpool.Pool, notifier *NotificationService) *SwitchService {
	return &SwitchService{
		games:    repository.NewSwitchGameRepository(db),
		notifier: notifier,
	}
}

// SetReviewAlertCallback wires the admin bot in; nil disables alerts.
func (s *SwitchService) SetReviewAlertCallback(fn func(gameID int64, action domain.ReviewAction, feedback string)) {
	s.reviewAlert = fn
}

type CreateGameInput struct {
	Description     string
	Difficulty      string
	Public          bool
	ContentDeletion string
}

// Create builds a new game in waiting_for_participant. Every game gets
// a claim token so a link can be shared for anonymous claiming.
func (s *SwitchService) Create(ctx context.Context, creatorID int64, in CreateGameInput) (*domain.SwitchGame, error) {
	g, err := domain.NewSwitchGame(
		creatorID,
		domain.Dare{Description: in.Description, Difficulty: domain.Difficulty(in.Difficulty)},
		in.Public,
		domain.RetentionPolicy(in.ContentDeletion),
		uuid.NewString(),
		time.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.games.Create(ctx, g); err != nil {
		return nil, err
	}
	metrics.GamesCreated.Inc()
	logger.Info("switch game created", "game_id", g.ID, "creator_id", creatorID)
	return g, nil
}

// Get returns a single game with proof content redacted for the viewer.
func (s *SwitchService) Get(ctx context.Context, id, viewerID int64, isAdmin bool) (*domain.SwitchGame, error) {
	g, err := s.games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.RedactFor(viewerID, isAdmin, time.Now()), nil
}

// ListPublic returns discoverable games, proof content redacted.
func (s *SwitchService) ListPublic(ctx context.Context, viewerID int64, limit int) ([]*domain.SwitchGame, error) {
	games, err := s.games.ListPublic(ctx, limit)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]*domain.SwitchGame, 0, len(games))
	for _, g := range games {
		out = append(out, g.RedactFor(viewerID, false, now))
	}
	return out, nil
}

// ListMine returns the caller's games.
func (s *SwitchService) ListMine(ctx context.Context, userID int64, limit int) ([]*domain.SwitchGame, error) {
	games, err := s.games.ListByPlayer(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]*domain.SwitchGame, 0, len(games))
	for _, g := range games {
		out = append(out, g.RedactFor(userID, false, now))
	}
	return out, nil
}

type JoinGameInput struct {
	Description string
	Difficulty  string
	Consent     bool
}

// Join admits the second player and tells the creator.
func (s *SwitchService) Join(ctx context.Context, gameID, userID int64, in JoinGameInput) (*domain.SwitchGame, error) {
	g, err := s.games.Mutate(ctx, gameID, func(g *domain.SwitchGame) error {
		return g.Join(userID, domain.Dare{Description: in.Description, Difficulty: domain.Difficulty(in.Difficulty)}, in.Consent, time.Now())
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyAsync(g.CreatorID, domain.NotifyGameJoined, g.ID, "Someone accepted your switch game.")
	logger.Info("switch game joined", "game_id", g.ID, "participant_id", userID)
	return g, nil
}

// Claim joins a game through its anonymous claim token.
func (s *SwitchService) Claim(ctx context.Context, token string, userID int64, in JoinGameInput) (*domain.SwitchGame, error) {
	g, err := s.games.GetByClaimToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.Join(ctx, g.ID, userID, in)
}

// SubmitMove normalizes the raw move, records it and resolves the game
// once both moves are in. Normalization happens here, before any state
// transition, so resolution never sees a malformed move.
func (s *SwitchService) SubmitMove(ctx context.Context, gameID, userID int64, rawMove string) (*domain.SwitchGame, error) {
	mv, err := game.NormalizeMove(rawMove)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var resolvedNow bool
	g, err := s.games.Mutate(ctx, gameID, func(g *domain.SwitchGame) error {
		done, err := g.SubmitMove(userID, mv, time.Now())
		resolvedNow = done
		return err
	})
	if err != nil {
		return nil, err
	}

	if resolvedNow {
		s.afterResolution(g)
	} else {
		s.notifier.NotifyAsync(g.Opponent(userID), domain.NotifyMoveSubmitted, g.ID, "Your opponent made their move.")
	}
	return g, nil
}

func (s *SwitchService) afterResolution(g *domain.SwitchGame) {
	switch {
	case g.BothWin:
		metrics.GamesResolved.WithLabelValues("both_win").Inc()
		msg := "Draw! Both of you are off the hook."
		s.notifier.NotifyAsync(g.CreatorID, domain.NotifyGameResolved, g.ID, msg)
		s.notifier.NotifyAsync(*g.ParticipantID, domain.NotifyGameResolved, g.ID, msg)
	case g.BothLose:
		metrics.GamesResolved.WithLabelValues("both_lose").Inc()
		msg := "Draw! Both of you perform your dares."
		s.notifier.NotifyAsync(g.CreatorID, domain.NotifyGameResolved, g.ID, msg)
		s.notifier.NotifyAsync(*g.ParticipantID, domain.NotifyGameResolved, g.ID, msg)
	default:
		metrics.GamesResolved.WithLabelValues("decided").Inc()
		s.notifier.NotifyAsync(*g.WinnerID, domain.NotifyGameResolved, g.ID, "You won! Your opponent owes you proof.")
		s.notifier.NotifyAsync(*g.LoserID, domain.NotifyGameResolved, g.ID, "You lost. Time to perform the dare and submit proof.")
	}
	logger.Info("switch game resolved", "game_id", g.ID, "status", g.Status, "both_win", g.BothWin, "both_lose", g.BothLose)
}

// ChickenOut forfeits the game for the caller and tells the other
// player.
func (s *SwitchService) ChickenOut(ctx context.Context, gameID, userID int64) (*domain.SwitchGame, error) {
	g, err := s.games.Mutate(ctx, gameID, func(g *domain.SwitchGame) error {
		return g.ChickenOut(userID, time.Now())
	})
	if err != nil {
		return nil, err
	}

	metrics.GamesChickenedOut.Inc()
	s.notifier.NotifyAsync(g.Opponent(userID), domain.NotifyChickenOut, g.ID, "Your opponent chickened out.")
	logger.Info("switch game chickened out", "game_id", g.ID, "user_id", userID)
	return g, nil
}

type SubmitProofInput struct {
	Text     string
	FileKeys []string
}

// CanSubmitProof checks the caller against the game's current state
// without mutating anything. The HTTP layer runs it before accepting
// file uploads so a forbidden submission never stores objects.
func (s *SwitchService) CanSubmitProof(ctx context.Context, gameID, userID int64) error {
	g, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return err
	}
	return g.CanSubmitProof(userID)
}

// SubmitProof records the loser's evidence and tells the reviewer.
func (s *SwitchService) SubmitProof(ctx context.Context, gameID, userID int64, in SubmitProofInput) (*domain.SwitchGame, error) {
	g, err := s.games.Mutate(ctx, gameID, func(g *domain.SwitchGame) error {
		return g.SubmitProof(userID, in.Text, in.FileKeys, time.Now())
	})
	if err != nil {
		return nil, err
	}

	metrics.ProofsSubmitted.Inc()
	s.notifier.NotifyAsync(g.Opponent(userID), domain.NotifyProofSubmitted, g.ID, "Proof submitted. Take a look and review it.")
	logger.Info("proof submitted", "game_id", g.ID, "user_id", userID)
	return g, nil
}

// ViewProof returns the proof for an authorized viewer; under a
// view-triggered expiry policy the first view starts the countdown,
// which is a state change and therefore runs through Mutate too.
func (s *SwitchService) ViewProof(ctx context.Context, gameID, userID int64, isAdmin bool) (*domain.Proof, error) {
	var proof *domain.Proof
	_, err := s.games.Mutate(ctx, gameID, func(g *domain.SwitchGame) error {
		p, err := g.ViewProof(userID, isAdmin, time.Now())
		proof = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return proof, nil
}

type ReviewProofInput struct {
	Action   string
	Feedback string
}

// ReviewProof records the winner's verdict and tells the loser.
func (s *SwitchService) ReviewProof(ctx context.Context, gameID, userID int64, in ReviewProofInput) (*domain.SwitchGame, error) {
	action := domain.ReviewAction(in.Action)
	g, err := s.games.Mutate(ctx, gameID, func(g *domain.SwitchGame) error {
		return g.ReviewProof(userID, action, in.Feedback, time.Now())
	})
	if err != nil {
		return nil, err
	}

	metrics.ProofsReviewed.WithLabelValues(string(action)).Inc()
	if action == domain.ReviewApproved {
		s.notifier.NotifyAsync(g.Opponent(userID), domain.NotifyProofReviewed, g.ID, "Your proof was approved. Game complete!")
	} else {
		s.notifier.NotifyAsync(g.Opponent(userID), domain.NotifyProofReviewed, g.ID, "Your proof was rejected. Check the feedback and try again.")
	}
	if s.reviewAlert != nil && action == domain.ReviewRejected {
		s.reviewAlert(g.ID, action, in.Feedback)
	}
	logger.Info("proof reviewed", "game_id", g.ID, "user_id", userID, "action", action)
	return g, nil
}

type GradeInput struct {
	Grade    int
	Feedback string
}

// Grade records a player's grade and tells the other player.
func (s *SwitchService) Grade(ctx context.Context, gameID, userID int64, in GradeInput) (*domain.SwitchGame, error) {
	g, err := s.games.Mutate(ctx, gameID, func(g *domain.SwitchGame) error {
		return g.AddGrade(userID, in.Grade, in.Feedback, time.Now())
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyAsync(g.Opponent(userID), domain.NotifyGameGraded, g.ID, "Your opponent graded your game.")
	return g, nil
}

// ToggleLike flips the caller's like on the game.
func (s *SwitchService) ToggleLike(ctx context.Context, gameID, userID int64) (liked bool, err error) {
	_, err = s.games.Mutate(ctx, gameID, func(g *domain.SwitchGame) error {
		liked = g.ToggleLike(userID, time.Now())
		return nil
	})
	return liked, err
}
