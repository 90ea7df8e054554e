package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideAllPairs(t *testing.T) {
	cases := []struct {
		a, b Move
		want Outcome
	}{
		{MoveRock, MoveRock, OutcomeDraw},
		{MoveRock, MovePaper, OutcomeLose},
		{MoveRock, MoveScissors, OutcomeWin},
		{MovePaper, MoveRock, OutcomeWin},
		{MovePaper, MovePaper, OutcomeDraw},
		{MovePaper, MoveScissors, OutcomeLose},
		{MoveScissors, MoveRock, OutcomeLose},
		{MoveScissors, MovePaper, OutcomeWin},
		{MoveScissors, MoveScissors, OutcomeDraw},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Decide(c.a, c.b), "%s vs %s", c.a, c.b)
	}
}

func TestDecideDraw(t *testing.T) {
	assert.Equal(t, DrawBothLose, DecideDraw(MoveRock))
	assert.Equal(t, DrawBothWin, DecideDraw(MovePaper))
	assert.Equal(t, DrawBothLose, DecideDraw(MoveScissors))
}

func TestNormalizeMove(t *testing.T) {
	for raw, want := range map[string]Move{
		"rock":       MoveRock,
		"Paper":      MovePaper,
		" SCISSORS ": MoveScissors,
	} {
		got, err := NormalizeMove(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, raw := range []string{"", "lizard", "rocks", "{}"} {
		_, err := NormalizeMove(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}
