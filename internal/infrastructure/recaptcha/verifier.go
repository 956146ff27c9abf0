package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-onboard-api/internal/domain"
)

// Verifier checks reCAPTCHA tokens against the siteverify endpoint.
// Every failure path (missing token, transport error, non-2xx, unparsable
// body, success=false) fails closed. One attempt per call, no retries.
type Verifier struct {
	secret     string
	endpoint   string
	httpClient *http.Client
}

func NewVerifier(secret, endpoint string) *Verifier {
	return &Verifier{
		secret:   secret,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify returns nil only when the upstream confirms the token. An empty
// token is rejected locally without any network call.
func (v *Verifier) Verify(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("captcha token required: %w", domain.ErrMissingCredential)
	}

	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("siteverify call failed: %w", domain.ErrUpstream)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("siteverify returned %d: %w", res.StatusCode, domain.ErrUpstream)
	}

	var body siteverifyResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode siteverify response: %w", domain.ErrUpstream)
	}
	if !body.Success {
		return fmt.Errorf("captcha verification failed (%s): %w", strings.Join(body.ErrorCodes, ","), domain.ErrCaptchaRejected)
	}
	return nil
}
