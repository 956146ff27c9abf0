package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-onboard-api/internal/application/meeting"
	"github.com/go-onboard-api/internal/application/registration"
	"github.com/go-onboard-api/internal/config"
	"github.com/go-onboard-api/internal/transport/http/handler"
	appmiddleware "github.com/go-onboard-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10. The OTP endpoints are the abuse target.
	otpRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	registrationSvc := registration.NewService(registration.ServiceDeps{
		Verifications: deps.VerificationRepo,
		Registrations: deps.RegistrationRepo,
		Captcha:       deps.Captcha,
		Mailer:        deps.Mailer,
		SMSSender:     deps.SMSSender,
		ResendSigner:  deps.ResendTokens,
		OTPTTL:        cfg.OTPTTL,
		OTPChannel:    cfg.OTPChannel,
		MaxAttempts:   cfg.OTPMaxAttempts,
	})
	meetingSvc := meeting.NewService(meeting.ServiceDeps{
		Line:          deps.LineClient,
		Workflow:      deps.WorkflowClient,
		Groups:        deps.GroupRepo,
		Registrations: deps.RegistrationRepo,
		UTCOffset:     cfg.MeetingUTCOffset,
		TimeZone:      cfg.MeetingTimeZone,
	})

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(registrationSvc)
	regH := handler.NewRegistrationHandler(registrationSvc, meetingSvc)
	groupH := handler.NewGroupHandler(meetingSvc)
	meetingH := handler.NewMeetingHandler(meetingSvc)
	profileH := handler.NewProfileHandler(deps.LineClient)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.With(otpRL.Limit).Post("/otp", otpH.Issue)
		r.With(otpRL.Limit, appmiddleware.ResendAuth(deps.ResendTokens)).Post("/otp/resend", otpH.Resend)
		r.With(otpRL.Limit).Post("/otp/verify", otpH.Verify)

		r.Post("/registrations", regH.Commit)
		r.Get("/registrations", regH.List)
		r.Get("/registrations/profiles", regH.Profiles)

		r.Post("/groups", groupH.Bind)
		r.Get("/groups/{key}", groupH.Get)
		r.Get("/groups/{key}/members", groupH.Members)

		r.Get("/profiles/{userId}", profileH.Get)

		r.Post("/meetings", meetingH.Create)
	})

	return r
}
