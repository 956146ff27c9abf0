package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-onboard-api/internal/application/registration"
	"github.com/go-onboard-api/internal/pkg/validate"
	"github.com/go-onboard-api/internal/transport/http/middleware"
)

// OTPHandler handles the captcha-gated OTP issue/resend/verify endpoints.
type OTPHandler struct {
	svc registration.Service
}

func NewOTPHandler(svc registration.Service) *OTPHandler { return &OTPHandler{svc: svc} }

func (h *OTPHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req registration.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := h.svc.Issue(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, IssueEnvelope{
		Issued:      true,
		ExpiresAt:   res.ExpiresAt.Unix(),
		ResendToken: res.ResendToken,
	})
}

// Resend re-issues a code without the captcha: the resend middleware has
// already verified the session token and put its email on the context.
func (h *OTPHandler) Resend(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.ResendEmailFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing resend session")
		return
	}
	res, err := h.svc.Resend(r.Context(), email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, IssueEnvelope{
		Issued:      true,
		ExpiresAt:   res.ExpiresAt.Unix(),
		ResendToken: res.ResendToken,
	})
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required,len=6"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	outcome, err := h.svc.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OutcomeEnvelope{Outcome: string(outcome)})
}
