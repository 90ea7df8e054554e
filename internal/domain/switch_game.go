package domain

import (
	"fmt"
	"time"

	"dare_webapp/internal/game"
)

type GameStatus string

const (
	StatusWaitingForParticipant GameStatus = "waiting_for_participant"
	StatusInProgress            GameStatus = "in_progress"
	StatusAwaitingProof         GameStatus = "awaiting_proof"
	StatusProofSubmitted        GameStatus = "proof_submitted"
	StatusCompleted             GameStatus = "completed"
	StatusChickenedOut          GameStatus = "chickened_out"
)

// Dare difficulty tiers, mildest to harshest.
type Difficulty string

const (
	DifficultyTitillating Difficulty = "titillating"
	DifficultyArousing    Difficulty = "arousing"
	DifficultyExplicit    Difficulty = "explicit"
	DifficultyEdgy        Difficulty = "edgy"
	DifficultyHardcore    Difficulty = "hardcore"
)

// RetentionPolicy controls how long submitted proof stays viewable.
type RetentionPolicy string

const (
	RetentionDeleteAfterView   RetentionPolicy = "delete_after_view"
	RetentionDeleteAfter30Days RetentionPolicy = "delete_after_30_days"
	RetentionNeverDelete       RetentionPolicy = "never_delete"
)

const (
	// ProofTTL is how long proof stays viewable after submission,
	// or after the first view when expiry is view-triggered.
	ProofTTL = 48 * time.Hour

	// ContentTTL is applied on completion under delete_after_30_days.
	ContentTTL = 30 * 24 * time.Hour
)

// Dare is one side's obligation in a switch game.
type Dare struct {
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	Move        game.Move  `json:"move,omitempty"`
	Consent     bool       `json:"consent,omitempty"`
}

type ReviewAction string

const (
	ReviewApproved ReviewAction = "approved"
	ReviewRejected ReviewAction = "rejected"
)

type ProofReview struct {
	Action     ReviewAction `json:"action"`
	Feedback   string       `json:"feedback,omitempty"`
	ReviewedAt time.Time    `json:"reviewed_at"`
}

// Proof is the loser's evidence that the dare was performed.
type Proof struct {
	UserID      int64        `json:"user_id"`
	Text        string       `json:"text,omitempty"`
	FileKeys    []string     `json:"file_keys,omitempty"`
	SubmittedAt time.Time    `json:"submitted_at"`
	Review      *ProofReview `json:"review,omitempty"`
}

type Grade struct {
	UserID    int64     `json:"user_id"`
	Grade     int       `json:"grade"`
	Feedback  string    `json:"feedback,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SwitchGame is the aggregate root of the switch game engine. All state
// transitions go through its methods; persistence loads the row, applies
// one method under a row lock and writes the result back, so the methods
// themselves stay free of storage concerns and fully deterministic
// (time is always passed in).
type SwitchGame struct {
	ID            int64      `json:"id"`
	ClaimToken    string     `json:"claim_token,omitempty"`
	Status        GameStatus `json:"status"`
	CreatorID     int64      `json:"creator_id"`
	ParticipantID *int64     `json:"participant_id,omitempty"`

	CreatorDare     Dare `json:"creator_dare"`
	ParticipantDare Dare `json:"participant_dare"`

	WinnerID *int64    `json:"winner_id,omitempty"`
	LoserID  *int64    `json:"loser_id,omitempty"`
	BothWin  bool      `json:"both_win,omitempty"`
	BothLose bool      `json:"both_lose,omitempty"`
	DrawType game.Move `json:"draw_type,omitempty"`

	Proof                *Proof     `json:"proof,omitempty"`
	ExpireProofAfterView bool       `json:"expire_proof_after_view"`
	ProofViewedAt        *time.Time `json:"proof_viewed_at,omitempty"`
	ProofExpiresAt       *time.Time `json:"proof_expires_at,omitempty"`

	Grades []Grade `json:"grades"`
	Likes  []int64 `json:"likes"`

	Public           bool            `json:"public"`
	ContentDeletion  RetentionPolicy `json:"content_deletion"`
	ContentExpiresAt *time.Time      `json:"content_expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSwitchGame validates the creator's dare and builds a fresh game in
// waiting_for_participant.
func NewSwitchGame(creatorID int64, dare Dare, public bool, retention RetentionPolicy, claimToken string, now time.Time) (*SwitchGame, error) {
	if dare.Description == "" {
		return nil, fmt.Errorf("%w: dare description is required", ErrValidation)
	}
	if dare.Difficulty == "" {
		return nil, fmt.Errorf("%w: dare difficulty is required", ErrValidation)
	}
	if !validDifficulty(dare.Difficulty) {
		return nil, fmt.Errorf("%w: unknown difficulty %q", ErrValidation, dare.Difficulty)
	}
	if retention == "" {
		retention = RetentionDeleteAfter30Days
	}
	if !validRetention(retention) {
		return nil, fmt.Errorf("%w: unknown content deletion policy %q", ErrValidation, retention)
	}
	dare.Move = ""

	return &SwitchGame{
		Status:          StatusWaitingForParticipant,
		CreatorID:       creatorID,
		CreatorDare:     dare,
		Public:          public,
		ContentDeletion: retention,
		// delete_after_view ties proof expiry to the first view
		// instead of the submission time
		ExpireProofAfterView: retention == RetentionDeleteAfterView,
		ClaimToken:           claimToken,
		Grades:               []Grade{},
		Likes:                []int64{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

func validDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyTitillating, DifficultyArousing, DifficultyExplicit, DifficultyEdgy, DifficultyHardcore:
		return true
	}
	return false
}

func validRetention(r RetentionPolicy) bool {
	switch r {
	case RetentionDeleteAfterView, RetentionDeleteAfter30Days, RetentionNeverDelete:
		return true
	}
	return false
}

// IsPlayer reports whether userID is one of the two players.
func (g *SwitchGame) IsPlayer(userID int64) bool {
	if userID == g.CreatorID {
		return true
	}
	return g.ParticipantID != nil && *g.ParticipantID == userID
}

// Opponent returns the other player's id, or 0 if the game has no
// second player yet.
func (g *SwitchGame) Opponent(userID int64) int64 {
	if userID == g.CreatorID {
		if g.ParticipantID != nil {
			return *g.ParticipantID
		}
		return 0
	}
	return g.CreatorID
}

// IsResolved reports whether a winner/loser pair or a draw verdict has
// been assigned. Resolution happens exactly once per game.
func (g *SwitchGame) IsResolved() bool {
	return g.WinnerID != nil || g.LoserID != nil || g.BothWin || g.BothLose
}

// Join admits the second player and moves the game to in_progress.
func (g *SwitchGame) Join(userID int64, dare Dare, consent bool, now time.Time) error {
	if userID == g.CreatorID {
		return fmt.Errorf("%w: cannot join your own game", ErrForbidden)
	}
	if g.ParticipantID != nil {
		return fmt.Errorf("%w: game already has a participant", ErrConflict)
	}
	if g.Status != StatusWaitingForParticipant {
		return fmt.Errorf("%w: game is %s", ErrConflict, g.Status)
	}
	if dare.Description == "" {
		return fmt.Errorf("%w: dare description is required", ErrValidation)
	}
	if dare.Difficulty == "" {
		dare.Difficulty = g.CreatorDare.Difficulty
	}
	if !consent {
		return fmt.Errorf("%w: consent is required to join", ErrValidation)
	}

	dare.Move = ""
	dare.Consent = true
	g.ParticipantID = &userID
	g.ParticipantDare = dare
	g.Status = StatusInProgress
	g.UpdatedAt = now
	return nil
}

// SubmitMove records the caller's move and, once both moves are in,
// resolves the game. Returns true when this call triggered resolution.
// A resubmission before the opposing move arrives overwrites the
// caller's own prior move (last write wins).
func (g *SwitchGame) SubmitMove(userID int64, mv game.Move, now time.Time) (bool, error) {
	if !g.IsPlayer(userID) {
		return false, fmt.Errorf("%w: not a player in this game", ErrForbidden)
	}
	if g.IsResolved() {
		return false, fmt.Errorf("%w: game already resolved", ErrConflict)
	}
	if g.Status != StatusInProgress {
		return false, fmt.Errorf("%w: game is %s", ErrConflict, g.Status)
	}

	if userID == g.CreatorID {
		g.CreatorDare.Move = mv
	} else {
		g.ParticipantDare.Move = mv
	}
	g.UpdatedAt = now

	if g.CreatorDare.Move == "" || g.ParticipantDare.Move == "" {
		return false, nil
	}

	g.resolve(now)
	return true, nil
}

// resolve assigns the winner/loser pair or the draw verdict. Callers
// must have checked IsResolved first; the assignment is final.
func (g *SwitchGame) resolve(now time.Time) {
	cm, pm := g.CreatorDare.Move, g.ParticipantDare.Move

	switch game.Decide(cm, pm) {
	case game.OutcomeWin:
		g.WinnerID = &g.CreatorID
		g.LoserID = g.ParticipantID
		g.Status = StatusAwaitingProof
	case game.OutcomeLose:
		g.WinnerID = g.ParticipantID
		g.LoserID = &g.CreatorID
		g.Status = StatusAwaitingProof
	case game.OutcomeDraw:
		g.DrawType = cm
		if game.DecideDraw(cm) == game.DrawBothWin {
			// both off the hook, nothing to prove
			g.BothWin = true
			g.Status = StatusCompleted
		} else {
			// both on the hook, either player may submit proof
			g.BothLose = true
			g.Status = StatusAwaitingProof
		}
	}
	g.UpdatedAt = now
}

// mustProve reports whether userID owes proof on this game: the
// resolved loser, or either player in a both-lose draw.
func (g *SwitchGame) mustProve(userID int64) bool {
	if g.BothLose {
		return g.IsPlayer(userID)
	}
	return g.LoserID != nil && *g.LoserID == userID
}

// canReview reports whether userID may review the submitted proof: the
// resolved winner, or in a both-lose draw the player who did not submit.
func (g *SwitchGame) canReview(userID int64) bool {
	if g.BothLose {
		return g.IsPlayer(userID) && g.Proof != nil && g.Proof.UserID != userID
	}
	return g.WinnerID != nil && *g.WinnerID == userID
}

// ChickenOut forfeits the game. Only a player may do it, and only
// before resolution.
func (g *SwitchGame) ChickenOut(userID int64, now time.Time) error {
	if !g.IsPlayer(userID) {
		return fmt.Errorf("%w: not a player in this game", ErrForbidden)
	}
	if g.IsResolved() {
		return fmt.Errorf("%w: cannot chicken out of a decided game", ErrConflict)
	}
	if g.Status != StatusInProgress && g.Status != StatusWaitingForParticipant {
		return fmt.Errorf("%w: game is %s", ErrConflict, g.Status)
	}
	g.Status = StatusChickenedOut
	g.UpdatedAt = now
	return nil
}

// CanSubmitProof reports whether userID may submit proof on the game
// in its current state. Exposed separately so callers can check before
// doing expensive work like file uploads.
func (g *SwitchGame) CanSubmitProof(userID int64) error {
	if !g.mustProve(userID) {
		return fmt.Errorf("%w: only the loser can submit proof", ErrForbidden)
	}
	if g.Status != StatusAwaitingProof && g.Status != StatusProofSubmitted {
		return fmt.Errorf("%w: game is %s", ErrConflict, g.Status)
	}
	if g.Proof != nil && g.Proof.Review != nil && g.Proof.Review.Action == ReviewApproved {
		return fmt.Errorf("%w: proof already approved", ErrConflict)
	}
	return nil
}

// SubmitProof attaches the loser's evidence and starts the proof expiry
// countdown unless expiry is view-triggered.
func (g *SwitchGame) SubmitProof(userID int64, text string, fileKeys []string, now time.Time) error {
	if err := g.CanSubmitProof(userID); err != nil {
		return err
	}
	if text == "" && len(fileKeys) == 0 {
		return fmt.Errorf("%w: proof needs text or files", ErrValidation)
	}

	g.Proof = &Proof{
		UserID:      userID,
		Text:        text,
		FileKeys:    fileKeys,
		SubmittedAt: now,
	}
	g.Status = StatusProofSubmitted

	if !g.ExpireProofAfterView {
		g.setProofExpiry(now.Add(ProofTTL))
	}
	g.UpdatedAt = now
	return nil
}

// setProofExpiry never moves an already-set expiry earlier.
func (g *SwitchGame) setProofExpiry(at time.Time) {
	if g.ProofExpiresAt != nil && g.ProofExpiresAt.After(at) {
		return
	}
	g.ProofExpiresAt = &at
}

// ViewProof returns the proof for an authorized viewer. Under
// view-triggered expiry the first view starts the countdown. Past
// expiry the content is withheld even from the winner.
func (g *SwitchGame) ViewProof(userID int64, isAdmin bool, now time.Time) (*Proof, error) {
	allowed := isAdmin ||
		(g.WinnerID != nil && *g.WinnerID == userID) ||
		(g.LoserID != nil && *g.LoserID == userID) ||
		(g.BothLose && g.IsPlayer(userID))
	if !allowed {
		return nil, fmt.Errorf("%w: not allowed to view this proof", ErrForbidden)
	}
	if g.Proof == nil {
		return nil, fmt.Errorf("%w: no proof submitted", ErrNotFound)
	}
	if g.ProofExpiresAt != nil && now.After(*g.ProofExpiresAt) {
		return nil, fmt.Errorf("%w: proof is no longer available", ErrExpired)
	}

	if g.ExpireProofAfterView && g.ProofViewedAt == nil {
		viewed := now
		g.ProofViewedAt = &viewed
		g.setProofExpiry(now.Add(ProofTTL))
		g.UpdatedAt = now
	}
	return g.Proof, nil
}

// ReviewProof records the winner's verdict. Approval completes the game
// and stamps the content retention deadline; rejection keeps the proof
// and its feedback around so the loser can resubmit.
func (g *SwitchGame) ReviewProof(userID int64, action ReviewAction, feedback string, now time.Time) error {
	if action != ReviewApproved && action != ReviewRejected {
		return fmt.Errorf("%w: invalid review action %q", ErrValidation, action)
	}
	if !g.canReview(userID) {
		return fmt.Errorf("%w: only the winner can review proof", ErrForbidden)
	}
	if g.Proof == nil {
		return fmt.Errorf("%w: no proof to review", ErrConflict)
	}
	if g.Proof.Review != nil {
		return fmt.Errorf("%w: proof already reviewed", ErrConflict)
	}

	g.Proof.Review = &ProofReview{Action: action, Feedback: feedback, ReviewedAt: now}
	if action == ReviewApproved {
		g.Status = StatusCompleted
		g.stampContentExpiry(now)
	}
	g.UpdatedAt = now
	return nil
}

// stampContentExpiry derives the retention deadline on completion.
// delete_after_view is handled by the view-triggered proof expiry.
func (g *SwitchGame) stampContentExpiry(now time.Time) {
	switch g.ContentDeletion {
	case RetentionDeleteAfter30Days:
		at := now.Add(ContentTTL)
		g.ContentExpiresAt = &at
	case RetentionDeleteAfterView:
		if g.ProofExpiresAt != nil {
			g.ContentExpiresAt = g.ProofExpiresAt
		}
	}
}

// AddGrade records a player's 1-5 grade. A second grade by the same
// user updates the existing entry instead of appending.
func (g *SwitchGame) AddGrade(userID int64, grade int, feedback string, now time.Time) error {
	if grade < 1 || grade > 5 {
		return fmt.Errorf("%w: grade must be between 1 and 5", ErrValidation)
	}
	if !g.IsPlayer(userID) {
		return fmt.Errorf("%w: only players can grade this game", ErrForbidden)
	}
	if !g.IsResolved() {
		return fmt.Errorf("%w: game is not resolved yet", ErrConflict)
	}

	for i := range g.Grades {
		if g.Grades[i].UserID == userID {
			g.Grades[i].Grade = grade
			g.Grades[i].Feedback = feedback
			g.UpdatedAt = now
			return nil
		}
	}
	g.Grades = append(g.Grades, Grade{UserID: userID, Grade: grade, Feedback: feedback, CreatedAt: now})
	g.UpdatedAt = now
	return nil
}

// ToggleLike flips userID's like and reports the new state.
func (g *SwitchGame) ToggleLike(userID int64, now time.Time) bool {
	for i, id := range g.Likes {
		if id == userID {
			g.Likes = append(g.Likes[:i], g.Likes[i+1:]...)
			g.UpdatedAt = now
			return false
		}
	}
	g.Likes = append(g.Likes, userID)
	g.UpdatedAt = now
	return true
}

// RedactFor strips proof content the viewer is not entitled to. Used
// for listing and single-game reads; metadata (that proof exists)
// survives, the content does not.
func (g *SwitchGame) RedactFor(userID int64, isAdmin bool, now time.Time) *SwitchGame {
	out := *g
	if out.Proof == nil {
		return &out
	}

	allowed := isAdmin ||
		(g.WinnerID != nil && *g.WinnerID == userID) ||
		(g.LoserID != nil && *g.LoserID == userID) ||
		(g.BothLose && g.IsPlayer(userID))
	expired := g.ProofExpiresAt != nil && now.After(*g.ProofExpiresAt)

	if !allowed || expired {
		out.Proof = &Proof{
			UserID:      g.Proof.UserID,
			SubmittedAt: g.Proof.SubmittedAt,
			Review:      g.Proof.Review,
		}
	}
	return &out
}
