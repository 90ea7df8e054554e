package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"dare_webapp/internal/domain"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: dare description is required", domain.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: only the winner can review", domain.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: game", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: game already has an opponent", domain.ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: proof content", domain.ErrExpired), http.StatusGone},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := statusForError(tc.err); got != tc.want {
			t.Errorf("statusForError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestStatusForErrorWrappedDeep(t *testing.T) {
	err := fmt.Errorf("submit move: %w", fmt.Errorf("%w: not a player", domain.ErrForbidden))
	if got := statusForError(err); got != http.StatusForbidden {
		t.Errorf("got %d, want %d", got, http.StatusForbidden)
	}
}
