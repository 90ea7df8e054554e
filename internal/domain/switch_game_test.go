package domain

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dare_webapp/internal/game"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestGame(t *testing.T) *SwitchGame {
	t.Helper()
	g, err := NewSwitchGame(1, Dare{Description: "sing in public", Difficulty: DifficultyTitillating}, true, RetentionDeleteAfter30Days, "tok-1", t0)
	require.NoError(t, err)
	return g
}

func joined(t *testing.T) *SwitchGame {
	t.Helper()
	g := newTestGame(t)
	require.NoError(t, g.Join(2, Dare{Description: "cold shower"}, true, t0))
	return g
}

// plays the game to a creator-wins resolution (rock vs scissors)
func resolved(t *testing.T) *SwitchGame {
	t.Helper()
	g := joined(t)
	_, err := g.SubmitMove(1, game.MoveRock, t0)
	require.NoError(t, err)
	done, err := g.SubmitMove(2, game.MoveScissors, t0)
	require.NoError(t, err)
	require.True(t, done)
	return g
}

func TestNewSwitchGameValidation(t *testing.T) {
	_, err := NewSwitchGame(1, Dare{Difficulty: DifficultyEdgy}, true, "", "", t0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewSwitchGame(1, Dare{Description: "x"}, true, "", "", t0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewSwitchGame(1, Dare{Description: "x", Difficulty: "nightmare"}, true, "", "", t0)
	assert.ErrorIs(t, err, ErrValidation)

	g, err := NewSwitchGame(1, Dare{Description: "x", Difficulty: DifficultyEdgy}, true, "", "", t0)
	require.NoError(t, err)
	assert.Equal(t, StatusWaitingForParticipant, g.Status)
	assert.Equal(t, RetentionDeleteAfter30Days, g.ContentDeletion)
}

func TestJoin(t *testing.T) {
	g := newTestGame(t)

	err := g.Join(1, Dare{Description: "y"}, true, t0)
	assert.ErrorIs(t, err, ErrForbidden, "creator cannot play both sides")

	err = g.Join(2, Dare{Description: "y"}, false, t0)
	assert.ErrorIs(t, err, ErrValidation, "consent required")

	require.NoError(t, g.Join(2, Dare{Description: "y"}, true, t0))
	assert.Equal(t, StatusInProgress, g.Status)
	assert.Equal(t, g.CreatorDare.Difficulty, g.ParticipantDare.Difficulty, "difficulty defaults to creator's")

	err = g.Join(3, Dare{Description: "z"}, true, t0)
	assert.ErrorIs(t, err, ErrConflict, "already joined")
}

func TestResolutionDeterministic(t *testing.T) {
	cases := []struct {
		creator, participant game.Move
		creatorWins          bool
	}{
		{game.MoveRock, game.MoveScissors, true},
		{game.MoveScissors, game.MovePaper, true},
		{game.MovePaper, game.MoveRock, true},
		{game.MoveScissors, game.MoveRock, false},
		{game.MovePaper, game.MoveScissors, false},
		{game.MoveRock, game.MovePaper, false},
	}

	for _, c := range cases {
		g := joined(t)
		_, err := g.SubmitMove(1, c.creator, t0)
		require.NoError(t, err)
		done, err := g.SubmitMove(2, c.participant, t0)
		require.NoError(t, err)
		require.True(t, done)

		require.NotNil(t, g.WinnerID)
		require.NotNil(t, g.LoserID)
		assert.False(t, g.BothWin)
		assert.False(t, g.BothLose)
		assert.Equal(t, StatusAwaitingProof, g.Status)
		if c.creatorWins {
			assert.EqualValues(t, 1, *g.WinnerID, "%s vs %s", c.creator, c.participant)
			assert.EqualValues(t, 2, *g.LoserID)
		} else {
			assert.EqualValues(t, 2, *g.WinnerID, "%s vs %s", c.creator, c.participant)
			assert.EqualValues(t, 1, *g.LoserID)
		}
	}
}

func TestDrawVerdicts(t *testing.T) {
	for mv, wantBothWin := range map[game.Move]bool{
		game.MovePaper:    true,
		game.MoveRock:     false,
		game.MoveScissors: false,
	} {
		g := joined(t)
		_, err := g.SubmitMove(1, mv, t0)
		require.NoError(t, err)
		done, err := g.SubmitMove(2, mv, t0)
		require.NoError(t, err)
		require.True(t, done)

		assert.Nil(t, g.WinnerID, "no winner on a draw")
		assert.Nil(t, g.LoserID)
		assert.Equal(t, mv, g.DrawType)
		if wantBothWin {
			assert.True(t, g.BothWin)
			assert.Equal(t, StatusCompleted, g.Status)
		} else {
			assert.True(t, g.BothLose)
			assert.Equal(t, StatusAwaitingProof, g.Status)
		}
	}
}

func TestMoveOverwriteBeforeOpponent(t *testing.T) {
	g := joined(t)

	done, err := g.SubmitMove(1, game.MoveRock, t0)
	require.NoError(t, err)
	assert.False(t, done)

	// last write wins until the opposing move arrives
	done, err = g.SubmitMove(1, game.MovePaper, t0)
	require.NoError(t, err)
	assert.False(t, done)

	done, err = g.SubmitMove(2, game.MoveRock, t0)
	require.NoError(t, err)
	require.True(t, done)
	assert.EqualValues(t, 1, *g.WinnerID)
}

func TestMoveAfterResolutionRejected(t *testing.T) {
	g := resolved(t)
	_, err := g.SubmitMove(1, game.MovePaper, t0)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = g.SubmitMove(2, game.MovePaper, t0)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMoveByStranger(t *testing.T) {
	g := joined(t)
	_, err := g.SubmitMove(99, game.MoveRock, t0)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestResolutionExactlyOnceUnderConcurrency(t *testing.T) {
	// the repository serializes per game id; this mirrors that with a
	// mutex and checks that two racing moves produce one resolution
	g := joined(t)
	var mu sync.Mutex
	resolutions := 0

	var wg sync.WaitGroup
	submit := func(userID int64, mv game.Move) {
		defer wg.Done()
		mu.Lock()
		defer mu.Unlock()
		done, err := g.SubmitMove(userID, mv, t0)
		if err == nil && done {
			resolutions++
		}
	}

	wg.Add(2)
	go submit(1, game.MoveRock)
	go submit(2, game.MoveScissors)
	wg.Wait()

	assert.Equal(t, 1, resolutions)
	require.NotNil(t, g.WinnerID)
	require.NotNil(t, g.LoserID)
	assert.NotEqual(t, *g.WinnerID, *g.LoserID)
}

func TestProofWorkflowEndToEnd(t *testing.T) {
	g := resolved(t) // creator (1) won, participant (2) lost

	err := g.SubmitProof(1, "did it", nil, t0)
	assert.ErrorIs(t, err, ErrForbidden, "winner cannot submit proof")

	err = g.ReviewProof(1, ReviewApproved, "", t0)
	assert.ErrorIs(t, err, ErrConflict, "review before proof exists")

	require.NoError(t, g.SubmitProof(2, "did it", []string{"proofs/2/a.jpg"}, t0))
	assert.Equal(t, StatusProofSubmitted, g.Status)
	require.NotNil(t, g.ProofExpiresAt)
	assert.Equal(t, t0.Add(ProofTTL), *g.ProofExpiresAt)

	err = g.ReviewProof(2, ReviewApproved, "", t0)
	assert.ErrorIs(t, err, ErrForbidden, "loser cannot review")

	err = g.ReviewProof(1, "meh", "", t0)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, g.ReviewProof(1, ReviewApproved, "nice", t0))
	assert.Equal(t, StatusCompleted, g.Status)
	require.NotNil(t, g.ContentExpiresAt)
	assert.Equal(t, t0.Add(ContentTTL), *g.ContentExpiresAt)

	err = g.ReviewProof(1, ReviewApproved, "", t0)
	assert.ErrorIs(t, err, ErrConflict, "already reviewed")
}

func TestProofRejectionAllowsResubmission(t *testing.T) {
	g := resolved(t)
	require.NoError(t, g.SubmitProof(2, "blurry photo", nil, t0))
	require.NoError(t, g.ReviewProof(1, ReviewRejected, "can't see anything", t0))

	assert.Equal(t, StatusProofSubmitted, g.Status)
	require.NotNil(t, g.Proof.Review)
	assert.Equal(t, "can't see anything", g.Proof.Review.Feedback)

	// resubmission replaces the proof and clears the review
	require.NoError(t, g.SubmitProof(2, "better photo", nil, t0.Add(time.Hour)))
	assert.Nil(t, g.Proof.Review)
	require.NoError(t, g.ReviewProof(1, ReviewApproved, "", t0.Add(2*time.Hour)))
	assert.Equal(t, StatusCompleted, g.Status)
}

func TestProofExpiryNeverMovesEarlier(t *testing.T) {
	g := resolved(t)
	require.NoError(t, g.SubmitProof(2, "proof", nil, t0))
	first := *g.ProofExpiresAt

	require.NoError(t, g.ReviewProof(1, ReviewRejected, "again", t0))
	// resubmission an hour earlier in wall-clock terms can happen with
	// skewed clocks; the expiry must not move back
	require.NoError(t, g.SubmitProof(2, "proof 2", nil, t0.Add(-2*time.Hour)))
	assert.False(t, g.ProofExpiresAt.Before(first))
}

func TestViewProofExpiry(t *testing.T) {
	g := resolved(t)
	require.NoError(t, g.SubmitProof(2, "proof", nil, t0))

	_, err := g.ViewProof(99, false, t0)
	assert.ErrorIs(t, err, ErrForbidden)

	p, err := g.ViewProof(1, false, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "proof", p.Text)

	_, err = g.ViewProof(1, false, t0.Add(ProofTTL).Add(time.Minute))
	assert.ErrorIs(t, err, ErrExpired, "expired even for the winner")

	// admins are authorized viewers but expiry still applies
	_, err = g.ViewProof(99, true, t0.Add(ProofTTL).Add(time.Minute))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestViewTriggeredExpiry(t *testing.T) {
	g, err := NewSwitchGame(1, Dare{Description: "d", Difficulty: DifficultyArousing}, false, RetentionDeleteAfterView, "", t0)
	require.NoError(t, err)
	require.NoError(t, g.Join(2, Dare{Description: "e"}, true, t0))
	_, err = g.SubmitMove(1, game.MoveRock, t0)
	require.NoError(t, err)
	_, err = g.SubmitMove(2, game.MoveScissors, t0)
	require.NoError(t, err)

	require.NoError(t, g.SubmitProof(2, "proof", nil, t0))
	assert.Nil(t, g.ProofExpiresAt, "countdown waits for the first view")

	viewAt := t0.Add(6 * time.Hour)
	_, err = g.ViewProof(1, false, viewAt)
	require.NoError(t, err)
	require.NotNil(t, g.ProofViewedAt)
	require.NotNil(t, g.ProofExpiresAt)
	assert.Equal(t, viewAt.Add(ProofTTL), *g.ProofExpiresAt)

	// a later view does not restart the countdown
	_, err = g.ViewProof(1, false, viewAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, viewAt.Add(ProofTTL), *g.ProofExpiresAt)

	_, err = g.ViewProof(1, false, viewAt.Add(ProofTTL).Add(time.Second))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestBothLoseProofRoles(t *testing.T) {
	g := joined(t)
	_, err := g.SubmitMove(1, game.MoveRock, t0)
	require.NoError(t, err)
	_, err = g.SubmitMove(2, game.MoveRock, t0)
	require.NoError(t, err)
	require.True(t, g.BothLose)

	// either player may submit; the one who did not submit reviews
	require.NoError(t, g.SubmitProof(1, "done", nil, t0))
	err = g.ReviewProof(1, ReviewApproved, "", t0)
	assert.ErrorIs(t, err, ErrForbidden, "submitter cannot review own proof")
	require.NoError(t, g.ReviewProof(2, ReviewApproved, "", t0))
	assert.Equal(t, StatusCompleted, g.Status)
}

func TestChickenOut(t *testing.T) {
	g := joined(t)

	err := g.ChickenOut(99, t0)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, g.ChickenOut(2, t0))
	assert.Equal(t, StatusChickenedOut, g.Status)
	assert.False(t, g.IsResolved())

	_, err = g.SubmitMove(1, game.MoveRock, t0)
	assert.ErrorIs(t, err, ErrConflict, "no moves after chickening out")
}

func TestCanSubmitProofPrecheck(t *testing.T) {
	// the eligibility check runs before file uploads and must agree
	// with SubmitProof without mutating anything
	g := resolved(t)

	assert.ErrorIs(t, g.CanSubmitProof(1), ErrForbidden, "winner cannot submit")
	assert.ErrorIs(t, g.CanSubmitProof(99), ErrForbidden, "stranger cannot submit")
	require.NoError(t, g.CanSubmitProof(2))
	assert.Nil(t, g.Proof, "precheck must not mutate the game")

	require.NoError(t, g.SubmitProof(2, "done", nil, t0))
	require.NoError(t, g.ReviewProof(1, ReviewApproved, "", t0))
	assert.ErrorIs(t, g.CanSubmitProof(2), ErrConflict, "no resubmission after approval")
}

func TestChickenOutBeforeJoin(t *testing.T) {
	// the creator may withdraw a game nobody has joined yet
	g := newTestGame(t)

	require.NoError(t, g.ChickenOut(1, t0))
	assert.Equal(t, StatusChickenedOut, g.Status)

	err := g.Join(2, Dare{Description: "sing", Difficulty: DifficultyTitillating}, true, t0)
	assert.ErrorIs(t, err, ErrConflict, "no joining a withdrawn game")
}

func TestChickenOutAfterResolutionRejected(t *testing.T) {
	g := resolved(t)
	err := g.ChickenOut(2, t0)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGradeUpsert(t *testing.T) {
	g := resolved(t)

	err := g.AddGrade(1, 0, "", t0)
	assert.ErrorIs(t, err, ErrValidation)
	err = g.AddGrade(1, 6, "", t0)
	assert.ErrorIs(t, err, ErrValidation)
	err = g.AddGrade(99, 3, "", t0)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, g.AddGrade(1, 4, "good sport", t0))
	require.NoError(t, g.AddGrade(2, 5, "", t0))
	assert.Len(t, g.Grades, 2)

	// regrading updates in place, does not append
	require.NoError(t, g.AddGrade(1, 2, "changed my mind", t0.Add(time.Hour)))
	assert.Len(t, g.Grades, 2)
	assert.Equal(t, 2, g.Grades[0].Grade)
	assert.Equal(t, "changed my mind", g.Grades[0].Feedback)
}

func TestGradeBeforeResolution(t *testing.T) {
	g := joined(t)
	err := g.AddGrade(1, 3, "", t0)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestToggleLike(t *testing.T) {
	g := newTestGame(t)
	assert.True(t, g.ToggleLike(7, t0))
	assert.True(t, g.ToggleLike(8, t0))
	assert.False(t, g.ToggleLike(7, t0))
	assert.Equal(t, []int64{8}, g.Likes)
}

func TestRedactFor(t *testing.T) {
	g := resolved(t)
	require.NoError(t, g.SubmitProof(2, "secret", []string{"k"}, t0))

	stranger := g.RedactFor(99, false, t0)
	require.NotNil(t, stranger.Proof)
	assert.Empty(t, stranger.Proof.Text)
	assert.Empty(t, stranger.Proof.FileKeys)

	winner := g.RedactFor(1, false, t0)
	assert.Equal(t, "secret", winner.Proof.Text)

	expired := g.RedactFor(1, false, t0.Add(ProofTTL).Add(time.Minute))
	assert.Empty(t, expired.Proof.Text, "content withheld past expiry")
	assert.False(t, expired.Proof.SubmittedAt.IsZero(), "metadata survives")
}

func TestErrorsWrapSentinels(t *testing.T) {
	g := newTestGame(t)
	err := g.Join(1, Dare{Description: "y"}, true, t0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.NotEqual(t, ErrForbidden.Error(), err.Error(), "wrapped with context")
}
