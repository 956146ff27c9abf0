package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-onboard-api/internal/application/meeting"
)

// GroupHandler handles the group-binding registry and membership resolution.
type GroupHandler struct {
	svc meeting.Service
}

func NewGroupHandler(svc meeting.Service) *GroupHandler { return &GroupHandler{svc: svc} }

// Bind is called by the workflow service when the bot joins a group.
func (h *GroupHandler) Bind(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key     string `json:"key"`
		GroupID string `json:"group_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.BindGroup(r.Context(), req.Key, req.GroupID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "group bound"})
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	groupID, err := h.svc.GroupID(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"group_id": groupID})
}

// Members resolves the bound group's membership into profiles. Profiles that
// fail to resolve are dropped, so the list may be shorter than the group.
func (h *GroupHandler) Members(w http.ResponseWriter, r *http.Request) {
	groupID, err := h.svc.GroupID(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httpError(w, err)
		return
	}
	profiles, err := h.svc.ResolveMembers(r.Context(), groupID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}
