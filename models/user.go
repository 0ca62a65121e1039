package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an operator account. Reviewers pick up HUMAN_REQUIRED
// verdicts from saved compliance runs.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
