package domain

import "time"

// RegistrationRecord is the committed identity record. PK: email, the
// table's uniqueness condition on the insert is the sole duplicate authority.
// Records are immutable once committed; there is no update or delete path.
type RegistrationRecord struct {
	RegistrationID string    `json:"registration_id" dynamodbav:"registration_id"`
	Email          string    `json:"email" dynamodbav:"email"`
	FullName       string    `json:"full_name" dynamodbav:"full_name"`
	Nickname       string    `json:"nickname" dynamodbav:"nickname"`
	DateOfBirth    string    `json:"date_of_birth" dynamodbav:"date_of_birth"` // YYYY-MM-DD
	DepartmentID   string    `json:"department_id" dynamodbav:"department_id"`
	PositionID     string    `json:"position_id" dynamodbav:"position_id"`
	Phone          string    `json:"phone" dynamodbav:"phone"`
	LineUserID     string    `json:"line_user_id" dynamodbav:"line_user_id"`
	DisplayName    string    `json:"display_name" dynamodbav:"display_name"`
	CreatedAt      time.Time `json:"created_at" dynamodbav:"created_at"`
}

// CommitOutcome is the result of attempting to persist a registration.
type CommitOutcome string

const (
	CommitCommitted  CommitOutcome = "committed"
	CommitDuplicate  CommitOutcome = "duplicate"
	CommitStoreError CommitOutcome = "store_error"
)

// CreateRegistrationRequest carries the registration form fields.
type CreateRegistrationRequest struct {
	Email        string `json:"email" validate:"required,email"`
	FullName     string `json:"full_name" validate:"required"`
	Nickname     string `json:"nickname" validate:"required"`
	DateOfBirth  string `json:"date_of_birth" validate:"required"` // YYYY-MM-DD
	DepartmentID string `json:"department_id" validate:"required"`
	PositionID   string `json:"position_id" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	LineUserID   string `json:"line_user_id"`
	DisplayName  string `json:"display_name"`
}
