package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-onboard-api/internal/application/meeting"
	"github.com/go-onboard-api/internal/domain"
	"github.com/go-onboard-api/internal/pkg/validate"
)

// MeetingHandler handles meeting creation and notification.
type MeetingHandler struct {
	svc meeting.Service
}

func NewMeetingHandler(svc meeting.Service) *MeetingHandler { return &MeetingHandler{svc: svc} }

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form domain.MeetingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&form); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := h.svc.Notify(r.Context(), form)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
