package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-onboard-api/internal/domain"
)

// ProfileClient is the single-profile lookup surface of the messaging API.
type ProfileClient interface {
	GetProfile(ctx context.Context, userID string) (*domain.GroupProfile, error)
}

// ProfileHandler proxies single LINE profile lookups for the operator console.
type ProfileHandler struct {
	line ProfileClient
}

func NewProfileHandler(line ProfileClient) *ProfileHandler {
	return &ProfileHandler{line: line}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.line.GetProfile(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
