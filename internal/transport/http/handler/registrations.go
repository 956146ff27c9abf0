package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-onboard-api/internal/application/meeting"
	"github.com/go-onboard-api/internal/application/registration"
	"github.com/go-onboard-api/internal/domain"
	"github.com/go-onboard-api/internal/pkg/validate"
)

// RegistrationHandler handles the registration commit and listing endpoints.
type RegistrationHandler struct {
	svc        registration.Service
	meetingSvc meeting.Service
}

func NewRegistrationHandler(svc registration.Service, meetingSvc meeting.Service) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, meetingSvc: meetingSvc}
}

func (h *RegistrationHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	outcome, err := h.svc.Commit(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	switch outcome {
	case domain.CommitDuplicate:
		writeJSON(w, http.StatusConflict, OutcomeEnvelope{Outcome: string(outcome)})
	default:
		writeJSON(w, http.StatusCreated, OutcomeEnvelope{Outcome: string(outcome)})
	}
}

func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// Profiles resolves LINE profiles for all committed registrations. The
// participant picker on the meeting form is built from this.
func (h *RegistrationHandler) Profiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.meetingSvc.ResolveRegistered(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}
