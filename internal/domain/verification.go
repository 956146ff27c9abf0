package domain

// PendingVerification is an issued OTP challenge awaiting confirmation.
// PK: email. At most one live record exists per email: issuing a new code
// replaces the previous item outright.
//
// CodeHash is a bcrypt hash; the plaintext code only ever exists in the
// delivery message. Expiry is lazy: ExpiresAt is compared at lookup time,
// nothing sweeps the table.
type PendingVerification struct {
	Email     string `json:"email" dynamodbav:"email"`
	Phone     string `json:"phone,omitempty" dynamodbav:"phone,omitempty"` // delivery address for the sms channel
	CodeHash  string `json:"-" dynamodbav:"code_hash"`
	IssuedAt  int64  `json:"issued_at" dynamodbav:"issued_at"`   // Unix seconds
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // Unix seconds
	Attempts  int    `json:"attempts" dynamodbav:"attempts"`
}

// VerifyOutcome is the result of checking a submitted OTP code.
type VerifyOutcome string

const (
	VerifySuccess   VerifyOutcome = "success"
	VerifyExpired   VerifyOutcome = "expired"
	VerifyMismatch  VerifyOutcome = "mismatch"
	VerifyNotFound  VerifyOutcome = "not_found"
	VerifyDuplicate VerifyOutcome = "duplicate"
)
