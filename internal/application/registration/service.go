package registration

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/go-onboard-api/internal/domain"
	"github.com/go-onboard-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// VerificationStore persists pending OTP challenges keyed by email.
type VerificationStore interface {
	Put(ctx context.Context, v *domain.PendingVerification) error
	Get(ctx context.Context, email string) (*domain.PendingVerification, error)
	Delete(ctx context.Context, email string) error
	IncrementAttempts(ctx context.Context, email string, attempts int) error
}

// RegistrationStore persists committed registration records.
type RegistrationStore interface {
	Insert(ctx context.Context, rec *domain.RegistrationRecord) error
	GetByEmail(ctx context.Context, email string) (*domain.RegistrationRecord, error)
	List(ctx context.Context) ([]domain.RegistrationRecord, error)
}

// CaptchaVerifier validates a captcha token. Nil means the token passed.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) error
}

// Mailer delivers the OTP over email.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// SMSSender delivers the OTP over SMS.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// ResendTokenSigner issues proof that the holder already passed the captcha.
type ResendTokenSigner interface {
	Sign(email string) (string, error)
}

// IssueRequest asks for a fresh OTP challenge.
type IssueRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone"`
	CaptchaToken string `json:"captcha_token"`
}

// IssueResult reports a successfully created challenge.
type IssueResult struct {
	ExpiresAt   time.Time
	ResendToken string
}

// Service implements the OTP-gated registration flow: captcha gate, code
// issue/resend, code verification and the final atomic commit.
type Service interface {
	Issue(ctx context.Context, req IssueRequest) (*IssueResult, error)
	Resend(ctx context.Context, email string) (*IssueResult, error)
	Verify(ctx context.Context, email, code string) (domain.VerifyOutcome, error)
	Commit(ctx context.Context, req domain.CreateRegistrationRequest) (domain.CommitOutcome, error)
	List(ctx context.Context) ([]domain.RegistrationRecord, error)
}

// ServiceDeps wires the service's collaborators.
type ServiceDeps struct {
	Verifications VerificationStore
	Registrations RegistrationStore
	Captcha       CaptchaVerifier
	Mailer        Mailer
	SMSSender     SMSSender
	ResendSigner  ResendTokenSigner
	OTPTTL        time.Duration
	OTPChannel    string // "email" | "sms"
	MaxAttempts   int
}

type service struct {
	deps ServiceDeps
	now  func() time.Time
}

func NewService(deps ServiceDeps) Service {
	return &service{deps: deps, now: time.Now}
}

func (s *service) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if err := s.deps.Captcha.Verify(ctx, req.CaptchaToken); err != nil {
		return nil, err
	}
	return s.issue(ctx, req.Email, req.Phone)
}

// Resend skips the captcha gate (the transport layer has already checked the
// resend token) but enforces the cooldown: while the previous code is still
// inside its TTL no new code is created and the existing record is untouched.
func (s *service) Resend(ctx context.Context, email string) (*IssueResult, error) {
	existing, err := s.deps.Verifications.Get(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err == nil && s.now().Unix() < existing.ExpiresAt {
		return nil, fmt.Errorf("previous code for %s still valid: %w", email, domain.ErrCooldownActive)
	}
	phone := ""
	if existing != nil {
		phone = existing.Phone
	}
	return s.issue(ctx, email, phone)
}

// issue creates and stores a fresh challenge, replacing any previous one for
// the same email, then delivers the code over the configured channel.
func (s *service) issue(ctx context.Context, email, phone string) (*IssueResult, error) {
	code, err := generateCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(s.deps.OTPTTL)
	v := &domain.PendingVerification{
		Email:     email,
		Phone:     phone,
		CodeHash:  string(hash),
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
	if err := s.deps.Verifications.Put(ctx, v); err != nil {
		return nil, err
	}

	if err := s.deliver(ctx, email, phone, code); err != nil {
		return nil, err
	}

	token, err := s.deps.ResendSigner.Sign(email)
	if err != nil {
		return nil, err
	}
	return &IssueResult{ExpiresAt: expiresAt, ResendToken: token}, nil
}

func (s *service) deliver(ctx context.Context, email, phone, code string) error {
	switch s.deps.OTPChannel {
	case "sms":
		if phone == "" {
			return fmt.Errorf("sms channel requires a phone number: %w", domain.ErrBadRequest)
		}
		return s.deps.SMSSender.SendSMS(ctx, phone, "Your verification code: "+code)
	default:
		return s.deps.Mailer.SendEmail(email, "Your verification code",
			fmt.Sprintf("Your verification code is %s. It expires in %d seconds.", code, int(s.deps.OTPTTL.Seconds())))
	}
}

// Verify checks a submitted code against the pending challenge. The flow
// outcomes (expired, mismatch, not found, duplicate) come back as outcome
// values with a nil error; the error is reserved for store failures.
func (s *service) Verify(ctx context.Context, email, code string) (domain.VerifyOutcome, error) {
	v, err := s.deps.Verifications.Get(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.VerifyNotFound, nil
	}
	if err != nil {
		return "", err
	}

	if s.now().Unix() > v.ExpiresAt {
		// Lazy expiry: the record is only noticed dead here, and it can never
		// succeed afterwards.
		if err := s.deps.Verifications.Delete(ctx, email); err != nil {
			slog.Warn("failed to delete expired verification", "email", email, "err", err)
		}
		return domain.VerifyExpired, nil
	}

	if bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(code)) != nil {
		attempts := v.Attempts + 1
		if s.deps.MaxAttempts > 0 && attempts >= s.deps.MaxAttempts {
			if err := s.deps.Verifications.Delete(ctx, email); err != nil {
				slog.Warn("failed to discard verification after max attempts", "email", email, "err", err)
			}
			return domain.VerifyMismatch, nil
		}
		if err := s.deps.Verifications.IncrementAttempts(ctx, email, attempts); err != nil {
			slog.Warn("failed to record mismatch attempt", "email", email, "err", err)
		}
		return domain.VerifyMismatch, nil
	}

	// A correct code is not enough: a second registration for the same email
	// is rejected before the challenge is consumed, with its own outcome so
	// the caller renders the right message.
	if _, err := s.deps.Registrations.GetByEmail(ctx, email); err == nil {
		return domain.VerifyDuplicate, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	if err := s.deps.Verifications.Delete(ctx, email); err != nil {
		slog.Warn("failed to consume verification", "email", email, "err", err)
	}
	return domain.VerifySuccess, nil
}

// Commit persists the registration. The store's conditional insert is the
// duplicate authority, so two concurrent commits for one email can never both
// report committed.
func (s *service) Commit(ctx context.Context, req domain.CreateRegistrationRequest) (domain.CommitOutcome, error) {
	rec := &domain.RegistrationRecord{
		RegistrationID: id.New(),
		Email:          req.Email,
		FullName:       req.FullName,
		Nickname:       req.Nickname,
		DateOfBirth:    req.DateOfBirth,
		DepartmentID:   req.DepartmentID,
		PositionID:     req.PositionID,
		Phone:          req.Phone,
		LineUserID:     req.LineUserID,
		DisplayName:    req.DisplayName,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.deps.Registrations.Insert(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.CommitDuplicate, nil
		}
		return domain.CommitStoreError, fmt.Errorf("insert registration: %w", err)
	}
	return domain.CommitCommitted, nil
}

func (s *service) List(ctx context.Context) ([]domain.RegistrationRecord, error) {
	return s.deps.Registrations.List(ctx)
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
