package http

import (
	"github.com/go-onboard-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-onboard-api/internal/infrastructure/jwt"
	"github.com/go-onboard-api/internal/infrastructure/line"
	"github.com/go-onboard-api/internal/infrastructure/n8n"
	"github.com/go-onboard-api/internal/infrastructure/recaptcha"
	"github.com/go-onboard-api/internal/infrastructure/smtp"
	"github.com/go-onboard-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	RegistrationRepo *dynamo.RegistrationRepo
	VerificationRepo *dynamo.VerificationRepo
	GroupRepo        *dynamo.GroupRepo
	Captcha          *recaptcha.Verifier
	LineClient       *line.Client
	WorkflowClient   *n8n.Client
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	ResendTokens     *jwtinfra.Provider
}
