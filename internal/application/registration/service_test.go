package registration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-onboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockVerificationStore struct{ mock.Mock }

func (m *mockVerificationStore) Put(ctx context.Context, v *domain.PendingVerification) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockVerificationStore) Get(ctx context.Context, email string) (*domain.PendingVerification, error) {
	args := m.Called(ctx, email)
	if v, _ := args.Get(0).(*domain.PendingVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationStore) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockVerificationStore) IncrementAttempts(ctx context.Context, email string, attempts int) error {
	return m.Called(ctx, email, attempts).Error(0)
}

type mockRegistrationStore struct{ mock.Mock }

func (m *mockRegistrationStore) Insert(ctx context.Context, rec *domain.RegistrationRecord) error {
	return m.Called(ctx, rec).Error(0)
}
func (m *mockRegistrationStore) GetByEmail(ctx context.Context, email string) (*domain.RegistrationRecord, error) {
	args := m.Called(ctx, email)
	if r, _ := args.Get(0).(*domain.RegistrationRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRegistrationStore) List(ctx context.Context) ([]domain.RegistrationRecord, error) {
	args := m.Called(ctx)
	recs, _ := args.Get(0).([]domain.RegistrationRecord)
	return recs, args.Error(1)
}

type mockCaptcha struct{ mock.Mock }

func (m *mockCaptcha) Verify(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, msg string) error {
	return m.Called(ctx, to, msg).Error(0)
}

type stubSigner struct{}

func (stubSigner) Sign(email string) (string, error) { return "resend-token-" + email, nil }

// --- fakes for flow tests ---

// fakeVerificationStore is an in-memory store used where the tests care about
// replace semantics rather than call counts.
type fakeVerificationStore struct {
	items map[string]domain.PendingVerification
}

func newFakeVerificationStore() *fakeVerificationStore {
	return &fakeVerificationStore{items: make(map[string]domain.PendingVerification)}
}
func (f *fakeVerificationStore) Put(_ context.Context, v *domain.PendingVerification) error {
	f.items[v.Email] = *v
	return nil
}
func (f *fakeVerificationStore) Get(_ context.Context, email string) (*domain.PendingVerification, error) {
	v, ok := f.items[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}
func (f *fakeVerificationStore) Delete(_ context.Context, email string) error {
	delete(f.items, email)
	return nil
}
func (f *fakeVerificationStore) IncrementAttempts(_ context.Context, email string, attempts int) error {
	v := f.items[email]
	v.Attempts = attempts
	f.items[email] = v
	return nil
}

// fakeRegistrationStore enforces email uniqueness the way the conditional
// insert does.
type fakeRegistrationStore struct {
	items map[string]domain.RegistrationRecord
}

func newFakeRegistrationStore() *fakeRegistrationStore {
	return &fakeRegistrationStore{items: make(map[string]domain.RegistrationRecord)}
}
func (f *fakeRegistrationStore) Insert(_ context.Context, rec *domain.RegistrationRecord) error {
	if _, ok := f.items[rec.Email]; ok {
		return domain.ErrConflict
	}
	f.items[rec.Email] = *rec
	return nil
}
func (f *fakeRegistrationStore) GetByEmail(_ context.Context, email string) (*domain.RegistrationRecord, error) {
	r, ok := f.items[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}
func (f *fakeRegistrationStore) List(_ context.Context) ([]domain.RegistrationRecord, error) {
	var out []domain.RegistrationRecord
	for _, r := range f.items {
		out = append(out, r)
	}
	return out, nil
}

// capturingMailer records delivered codes so flow tests can submit them back.
type capturingMailer struct{ lastBody string }

func (m *capturingMailer) SendEmail(_, _, body string) error {
	m.lastBody = body
	return nil
}

func (m *capturingMailer) lastCode() string {
	// body reads "Your verification code is 123456. ..."
	fields := strings.Fields(m.lastBody)
	for i, f := range fields {
		if f == "is" && i+1 < len(fields) {
			return strings.TrimSuffix(fields[i+1], ".")
		}
	}
	return ""
}

func newTestService(deps ServiceDeps) *service {
	if deps.OTPTTL == 0 {
		deps.OTPTTL = 60 * time.Second
	}
	if deps.OTPChannel == "" {
		deps.OTPChannel = "email"
	}
	if deps.MaxAttempts == 0 {
		deps.MaxAttempts = 5
	}
	if deps.ResendSigner == nil {
		deps.ResendSigner = stubSigner{}
	}
	return NewService(deps).(*service)
}

// --- Issue ---

func TestIssue_CaptchaFailureIsTerminal(t *testing.T) {
	captcha := &mockCaptcha{}
	captcha.On("Verify", mock.Anything, "").Return(domain.ErrMissingCredential)
	vs := &mockVerificationStore{}

	svc := newTestService(ServiceDeps{Captcha: captcha, Verifications: vs})
	_, err := svc.Issue(context.Background(), IssueRequest{Email: "a@x.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingCredential))
	vs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestIssue_HappyPath_StoresHashedCodeAndDelivers(t *testing.T) {
	captcha := &mockCaptcha{}
	captcha.On("Verify", mock.Anything, "tok").Return(nil)
	vs := newFakeVerificationStore()
	ml := &capturingMailer{}

	svc := newTestService(ServiceDeps{Captcha: captcha, Verifications: vs, Mailer: ml})
	res, err := svc.Issue(context.Background(), IssueRequest{Email: "a@x.com", CaptchaToken: "tok"})

	require.NoError(t, err)
	assert.Equal(t, "resend-token-a@x.com", res.ResendToken)
	assert.WithinDuration(t, time.Now().Add(60*time.Second), res.ExpiresAt, 2*time.Second)

	code := ml.lastCode()
	require.Len(t, code, 6)
	stored := vs.items["a@x.com"]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.CodeHash), []byte(code)))
	assert.NotEqual(t, code, stored.CodeHash, "plaintext code must not be stored")
}

func TestIssue_SecondCodeInvalidatesFirst(t *testing.T) {
	captcha := &mockCaptcha{}
	captcha.On("Verify", mock.Anything, mock.Anything).Return(nil)
	vs := newFakeVerificationStore()
	rs := newFakeRegistrationStore()
	ml := &capturingMailer{}

	svc := newTestService(ServiceDeps{Captcha: captcha, Verifications: vs, Registrations: rs, Mailer: ml})
	ctx := context.Background()

	_, err := svc.Issue(ctx, IssueRequest{Email: "a@x.com", CaptchaToken: "tok"})
	require.NoError(t, err)
	firstCode := ml.lastCode()

	_, err = svc.Issue(ctx, IssueRequest{Email: "a@x.com", CaptchaToken: "tok"})
	require.NoError(t, err)

	outcome, err := svc.Verify(ctx, "a@x.com", firstCode)
	require.NoError(t, err)
	assert.Equal(t, domain.VerifyMismatch, outcome)
}

func TestIssue_SMSChannelRequiresPhone(t *testing.T) {
	captcha := &mockCaptcha{}
	captcha.On("Verify", mock.Anything, "tok").Return(nil)
	vs := newFakeVerificationStore()

	svc := newTestService(ServiceDeps{Captcha: captcha, Verifications: vs, OTPChannel: "sms"})
	_, err := svc.Issue(context.Background(), IssueRequest{Email: "a@x.com", CaptchaToken: "tok"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestIssue_SMSChannelDeliversToPhone(t *testing.T) {
	captcha := &mockCaptcha{}
	captcha.On("Verify", mock.Anything, "tok").Return(nil)
	vs := newFakeVerificationStore()
	sms := &mockSMSSender{}
	sms.On("SendSMS", mock.Anything, "+66812345678", mock.Anything).Return(nil)

	svc := newTestService(ServiceDeps{Captcha: captcha, Verifications: vs, SMSSender: sms, OTPChannel: "sms"})
	_, err := svc.Issue(context.Background(), IssueRequest{Email: "a@x.com", Phone: "+66812345678", CaptchaToken: "tok"})

	require.NoError(t, err)
	sms.AssertExpectations(t)
}

// --- Resend ---

func TestResend_CooldownActive_LeavesRecordUntouched(t *testing.T) {
	vs := newFakeVerificationStore()
	issued := domain.PendingVerification{
		Email:     "a@x.com",
		CodeHash:  "hash",
		ExpiresAt: time.Now().Add(30 * time.Second).Unix(),
	}
	vs.items["a@x.com"] = issued

	svc := newTestService(ServiceDeps{Verifications: vs})
	_, err := svc.Resend(context.Background(), "a@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCooldownActive))
	assert.Equal(t, issued, vs.items["a@x.com"], "cooldown rejection must not alter the pending record")
}

func TestResend_AfterExpiry_IssuesFreshCode(t *testing.T) {
	vs := newFakeVerificationStore()
	vs.items["a@x.com"] = domain.PendingVerification{
		Email:     "a@x.com",
		CodeHash:  "stale",
		ExpiresAt: time.Now().Add(-1 * time.Second).Unix(),
	}
	ml := &capturingMailer{}

	svc := newTestService(ServiceDeps{Verifications: vs, Mailer: ml})
	res, err := svc.Resend(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.True(t, res.ExpiresAt.After(time.Now()))
	assert.NotEqual(t, "stale", vs.items["a@x.com"].CodeHash)
	assert.Len(t, ml.lastCode(), 6)
}

func TestResend_StoreFailure_DoesNotIssueNewCode(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(nil, errors.New("dynamodb: throughput exceeded"))

	svc := newTestService(ServiceDeps{Verifications: vs})
	_, err := svc.Resend(context.Background(), "a@x.com")

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrCooldownActive))
	// A store failure must not bypass the cooldown and replace a live code.
	vs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

// --- Verify ---

func hashOf(t *testing.T, code string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestVerify_NotFound(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)

	svc := newTestService(ServiceDeps{Verifications: vs})
	outcome, err := svc.Verify(context.Background(), "a@x.com", "123456")

	require.NoError(t, err)
	assert.Equal(t, domain.VerifyNotFound, outcome)
}

func TestVerify_StoreFailureIsAnErrorNotAnOutcome(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(nil, errors.New("dynamodb: throughput exceeded"))

	svc := newTestService(ServiceDeps{Verifications: vs})
	outcome, err := svc.Verify(context.Background(), "a@x.com", "123456")

	require.Error(t, err)
	assert.NotEqual(t, domain.VerifyNotFound, outcome, "an unreachable store must not read as 'code never issued'")
}

func TestVerify_Expired_EvenWithCorrectCode(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(&domain.PendingVerification{
		Email:     "a@x.com",
		CodeHash:  hashOf(t, "123456"),
		ExpiresAt: time.Now().Add(-1 * time.Second).Unix(),
	}, nil)
	vs.On("Delete", mock.Anything, "a@x.com").Return(nil)

	svc := newTestService(ServiceDeps{Verifications: vs})
	outcome, err := svc.Verify(context.Background(), "a@x.com", "123456")

	require.NoError(t, err)
	assert.Equal(t, domain.VerifyExpired, outcome)
	vs.AssertCalled(t, "Delete", mock.Anything, "a@x.com")
}

func TestVerify_Mismatch_IncrementsAttempts_RecordSurvives(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(&domain.PendingVerification{
		Email:     "a@x.com",
		CodeHash:  hashOf(t, "123456"),
		ExpiresAt: time.Now().Add(60 * time.Second).Unix(),
		Attempts:  1,
	}, nil)
	vs.On("IncrementAttempts", mock.Anything, "a@x.com", 2).Return(nil)

	svc := newTestService(ServiceDeps{Verifications: vs})
	outcome, err := svc.Verify(context.Background(), "a@x.com", "000000")

	require.NoError(t, err)
	assert.Equal(t, domain.VerifyMismatch, outcome)
	vs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	vs.AssertExpectations(t)
}

func TestVerify_MaxAttempts_DiscardsRecord(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(&domain.PendingVerification{
		Email:     "a@x.com",
		CodeHash:  hashOf(t, "123456"),
		ExpiresAt: time.Now().Add(60 * time.Second).Unix(),
		Attempts:  4,
	}, nil)
	vs.On("Delete", mock.Anything, "a@x.com").Return(nil)

	svc := newTestService(ServiceDeps{Verifications: vs, MaxAttempts: 5})
	outcome, err := svc.Verify(context.Background(), "a@x.com", "000000")

	require.NoError(t, err)
	assert.Equal(t, domain.VerifyMismatch, outcome)
	vs.AssertCalled(t, "Delete", mock.Anything, "a@x.com")
}

func TestVerify_DuplicateIdentity_BeforeConsuming(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(&domain.PendingVerification{
		Email:     "a@x.com",
		CodeHash:  hashOf(t, "123456"),
		ExpiresAt: time.Now().Add(60 * time.Second).Unix(),
	}, nil)
	rs := &mockRegistrationStore{}
	rs.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.RegistrationRecord{Email: "a@x.com"}, nil)

	svc := newTestService(ServiceDeps{Verifications: vs, Registrations: rs})
	outcome, err := svc.Verify(context.Background(), "a@x.com", "123456")

	require.NoError(t, err)
	assert.Equal(t, domain.VerifyDuplicate, outcome)
	// The challenge is not consumed: the outcome is about the identity, not the code.
	vs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestVerify_DuplicateCheckStoreFailure_DoesNotConsume(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(&domain.PendingVerification{
		Email:     "a@x.com",
		CodeHash:  hashOf(t, "123456"),
		ExpiresAt: time.Now().Add(60 * time.Second).Unix(),
	}, nil)
	rs := &mockRegistrationStore{}
	rs.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, errors.New("dynamodb: throughput exceeded"))

	svc := newTestService(ServiceDeps{Verifications: vs, Registrations: rs})
	outcome, err := svc.Verify(context.Background(), "a@x.com", "123456")

	require.Error(t, err)
	assert.NotEqual(t, domain.VerifySuccess, outcome)
	vs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestVerify_Success_ConsumesRecord(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(&domain.PendingVerification{
		Email:     "a@x.com",
		CodeHash:  hashOf(t, "123456"),
		ExpiresAt: time.Now().Add(60 * time.Second).Unix(),
	}, nil)
	vs.On("Delete", mock.Anything, "a@x.com").Return(nil)
	rs := &mockRegistrationStore{}
	rs.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)

	svc := newTestService(ServiceDeps{Verifications: vs, Registrations: rs})
	outcome, err := svc.Verify(context.Background(), "a@x.com", "123456")

	require.NoError(t, err)
	assert.Equal(t, domain.VerifySuccess, outcome)
	vs.AssertCalled(t, "Delete", mock.Anything, "a@x.com")
}

// --- Commit ---

func validRequest(email string) domain.CreateRegistrationRequest {
	return domain.CreateRegistrationRequest{
		Email:        email,
		FullName:     "Somchai Jaidee",
		Nickname:     "Chai",
		DateOfBirth:  "1995-04-01",
		DepartmentID: "dep-1",
		PositionID:   "pos-2",
		Phone:        "+66812345678",
		LineUserID:   "U1234",
		DisplayName:  "Chai",
	}
}

func TestCommit_CommittedThenDuplicate(t *testing.T) {
	rs := newFakeRegistrationStore()
	svc := newTestService(ServiceDeps{Registrations: rs})
	ctx := context.Background()

	outcome, err := svc.Commit(ctx, validRequest("a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, domain.CommitCommitted, outcome)

	outcome, err = svc.Commit(ctx, validRequest("a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, domain.CommitDuplicate, outcome)
	assert.Len(t, rs.items, 1, "the duplicate commit must not overwrite")
}

func TestCommit_StoreError(t *testing.T) {
	rs := &mockRegistrationStore{}
	rs.On("Insert", mock.Anything, mock.Anything).Return(errors.New("throughput exceeded"))

	svc := newTestService(ServiceDeps{Registrations: rs})
	outcome, err := svc.Commit(context.Background(), validRequest("a@x.com"))

	require.Error(t, err)
	assert.Equal(t, domain.CommitStoreError, outcome)
	assert.False(t, errors.Is(err, domain.ErrConflict))
}

// --- end to end ---

func TestRegistrationFlow_EndToEnd(t *testing.T) {
	captcha := &mockCaptcha{}
	captcha.On("Verify", mock.Anything, "tok").Return(nil)
	vs := newFakeVerificationStore()
	rs := newFakeRegistrationStore()
	ml := &capturingMailer{}

	svc := newTestService(ServiceDeps{Captcha: captcha, Verifications: vs, Registrations: rs, Mailer: ml})
	ctx := context.Background()

	_, err := svc.Issue(ctx, IssueRequest{Email: "a@x.com", CaptchaToken: "tok"})
	require.NoError(t, err)

	outcome, err := svc.Verify(ctx, "a@x.com", ml.lastCode())
	require.NoError(t, err)
	require.Equal(t, domain.VerifySuccess, outcome)

	commit, err := svc.Commit(ctx, validRequest("a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, domain.CommitCommitted, commit)

	commit, err = svc.Commit(ctx, validRequest("a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, domain.CommitDuplicate, commit)

	// The consumed challenge cannot be replayed.
	outcome, err = svc.Verify(ctx, "a@x.com", ml.lastCode())
	require.NoError(t, err)
	assert.Equal(t, domain.VerifyNotFound, outcome)
}
