package game

import (
	"fmt"
	"strings"
)

// Move is one of the three rock-paper-scissors gestures.
type Move string

const (
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
)

// Outcome of a resolved pair of moves, seen from the first move's side.
type Outcome int

const (
	OutcomeWin Outcome = iota
	OutcomeLose
	OutcomeDraw
)

// DrawVerdict tells how a draw counts for both players.
// Rock and scissors draws put both players on the hook; a paper draw
// lets both off.
type DrawVerdict int

const (
	DrawBothLose DrawVerdict = iota
	DrawBothWin
)

// NormalizeMove validates raw client input and maps it onto one of the
// three canonical moves. Runs before any resolution logic touches the
// value so downstream code never sees an empty or mixed-case move.
func NormalizeMove(raw string) (Move, error) {
	m := Move(strings.ToLower(strings.TrimSpace(raw)))
	switch m {
	case MoveRock, MovePaper, MoveScissors:
		return m, nil
	}
	return "", fmt.Errorf("invalid move %q", raw)
}

// Decide resolves a pair of moves with the standard beats-relation:
// rock beats scissors, scissors beats paper, paper beats rock.
func Decide(a, b Move) Outcome {
	if a == b {
		return OutcomeDraw
	}

	switch a {
	case MoveRock:
		if b == MoveScissors {
			return OutcomeWin
		}
	case MovePaper:
		if b == MoveRock {
			return OutcomeWin
		}
	case MoveScissors:
		if b == MovePaper {
			return OutcomeWin
		}
	}

	return OutcomeLose
}

// DecideDraw maps the tied move to its verdict.
func DecideDraw(m Move) DrawVerdict {
	if m == MovePaper {
		return DrawBothWin
	}
	return DrawBothLose
}
