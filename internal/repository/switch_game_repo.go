package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dare_webapp/internal/domain"
	"dare_webapp/internal/game"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const switchGameColumns = `
	id, claim_token, status, creator_id, participant_id,
	creator_dare, participant_dare,
	winner_id, loser_id, both_win, both_lose, draw_type,
	proof, expire_proof_after_view, proof_viewed_at, proof_expires_at,
	grades, likes, public, content_deletion, content_expires_at,
	created_at, updated_at`

type SwitchGameRepository struct {
	db *pgxpool.Pool
}

func NewSwitchGameRepository(db *pgxpool.Pool) *SwitchGameRepository {
	return &SwitchGameRepository{db: db}
}

// Create inserts a fresh game and fills in its id.
func (r *SwitchGameRepository) Create(ctx context.Context, g *domain.SwitchGame) error {
	creatorDare, err := json.Marshal(g.CreatorDare)
	if err != nil {
		return err
	}
	participantDare, err := json.Marshal(g.ParticipantDare)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO switch_games
			(claim_token, status, creator_id, creator_dare, participant_dare,
			 expire_proof_after_view, grades, likes, public, content_deletion, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, '[]', '[]', $7, $8, $9, $9)
		RETURNING id
	`, g.ClaimToken, g.Status, g.CreatorID, creatorDare, participantDare,
		g.ExpireProofAfterView, g.Public, g.ContentDeletion, g.CreatedAt).Scan(&g.ID)
}

// GetByID loads a game without locking it. Reads that mutate nothing
// go through here; every state transition uses Mutate instead.
func (r *SwitchGameRepository) GetByID(ctx context.Context, id int64) (*domain.SwitchGame, error) {
	row := r.db.QueryRow(ctx, `SELECT `+switchGameColumns+` FROM switch_games WHERE id = $1`, id)
	g, err := scanSwitchGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: game %d", domain.ErrNotFound, id)
	}
	return g, err
}

// GetByClaimToken resolves an anonymous claim token to its game.
func (r *SwitchGameRepository) GetByClaimToken(ctx context.Context, token string) (*domain.SwitchGame, error) {
	row := r.db.QueryRow(ctx, `SELECT `+switchGameColumns+` FROM switch_games WHERE claim_token = $1`, token)
	g, err := scanSwitchGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: unknown claim token", domain.ErrNotFound)
	}
	return g, err
}

// ListPublic returns discoverable games, newest first.
func (r *SwitchGameRepository) ListPublic(ctx context.Context, limit int) ([]*domain.SwitchGame, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+switchGameColumns+`
		FROM switch_games
		WHERE public = true
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.SwitchGame
	for rows.Next() {
		g, err := scanSwitchGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ListByPlayer returns games where the user is creator or participant.
func (r *SwitchGameRepository) ListByPlayer(ctx context.Context, userID int64, limit int) ([]*domain.SwitchGame, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+switchGameColumns+`
		FROM switch_games
		WHERE creator_id = $1 OR participant_id = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.SwitchGame
	for rows.Next() {
		g, err := scanSwitchGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Mutate runs fn against the game row under SELECT ... FOR UPDATE and
// persists the result in the same transaction. Concurrent mutations of
// one game serialize on the row lock, so a transition and its guard
// (e.g. "resolve only if unresolved") are a single atomic step.
func (r *SwitchGameRepository) Mutate(ctx context.Context, id int64, fn func(g *domain.SwitchGame) error) (*domain.SwitchGame, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+switchGameColumns+` FROM switch_games WHERE id = $1 FOR UPDATE`, id)
	g, err := scanSwitchGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: game %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if err := fn(g); err != nil {
		return nil, err
	}

	if err := r.update(ctx, tx, g); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *SwitchGameRepository) update(ctx context.Context, tx pgx.Tx, g *domain.SwitchGame) error {
	creatorDare, err := json.Marshal(g.CreatorDare)
	if err != nil {
		return err
	}
	participantDare, err := json.Marshal(g.ParticipantDare)
	if err != nil {
		return err
	}
	grades, err := json.Marshal(g.Grades)
	if err != nil {
		return err
	}
	likes, err := json.Marshal(g.Likes)
	if err != nil {
		return err
	}
	var proof []byte
	if g.Proof != nil {
		if proof, err = json.Marshal(g.Proof); err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE switch_games SET
			status = $2, participant_id = $3,
			creator_dare = $4, participant_dare = $5,
			winner_id = $6, loser_id = $7, both_win = $8, both_lose = $9, draw_type = $10,
			proof = $11, proof_viewed_at = $12, proof_expires_at = $13,
			grades = $14, likes = $15, content_expires_at = $16,
			updated_at = $17
		WHERE id = $1
	`, g.ID, g.Status, g.ParticipantID,
		creatorDare, participantDare,
		g.WinnerID, g.LoserID, g.BothWin, g.BothLose, nullIfEmpty(string(g.DrawType)),
		proof, g.ProofViewedAt, g.ProofExpiresAt,
		grades, likes, g.ContentExpiresAt,
		g.UpdatedAt)
	return err
}

// PurgeExpiredProofs drops proof content past its expiry and returns
// how many rows were swept. Metadata columns stay so the record of a
// proof having existed survives the sweep.
func (r *SwitchGameRepository) PurgeExpiredProofs(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE switch_games
		SET proof = proof - 'text' - 'file_keys'
		WHERE proof IS NOT NULL
		  AND proof_expires_at IS NOT NULL
		  AND proof_expires_at < now()
		  AND (proof ? 'text' OR proof ? 'file_keys')
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ExpiredProofFileKeys lists stored file keys whose proof is past
// expiry, for the sweeper to delete from object storage.
func (r *SwitchGameRepository) ExpiredProofFileKeys(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT jsonb_array_elements_text(proof->'file_keys')
		FROM switch_games
		WHERE proof IS NOT NULL
		  AND proof_expires_at IS NOT NULL
		  AND proof_expires_at < now()
		  AND proof ? 'file_keys'
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// CountByStatus returns game counts per status for the admin bot.
func (r *SwitchGameRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM switch_games GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanSwitchGame(row pgx.Row) (*domain.SwitchGame, error) {
	var (
		g               domain.SwitchGame
		creatorDare     []byte
		participantDare []byte
		proof           []byte
		grades          []byte
		likes           []byte
		drawType        *string
	)

	err := row.Scan(
		&g.ID, &g.ClaimToken, &g.Status, &g.CreatorID, &g.ParticipantID,
		&creatorDare, &participantDare,
		&g.WinnerID, &g.LoserID, &g.BothWin, &g.BothLose, &drawType,
		&proof, &g.ExpireProofAfterView, &g.ProofViewedAt, &g.ProofExpiresAt,
		&grades, &likes, &g.Public, &g.ContentDeletion, &g.ContentExpiresAt,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(creatorDare, &g.CreatorDare); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(participantDare, &g.ParticipantDare); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(grades, &g.Grades); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(likes, &g.Likes); err != nil {
		return nil, err
	}
	if len(proof) > 0 {
		g.Proof = &domain.Proof{}
		if err := json.Unmarshal(proof, g.Proof); err != nil {
			return nil, err
		}
	}
	if drawType != nil {
		g.DrawType = game.Move(*drawType)
	}
	return &g, nil
}
