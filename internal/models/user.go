package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the internal identity behind an external identity-provider subject.
type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ExternalID  string    `json:"-" db:"external_id"` // identity-provider localId
	Username    string    `json:"username" db:"username"`
	Email       string    `json:"email" db:"email"`
	DateCreated time.Time `json:"dateCreated" db:"date_created"`
}
