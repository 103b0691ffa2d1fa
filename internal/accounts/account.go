package accounts

import "time"

// Account owns its training plans and completed workouts. Immutable after
// registration, except for credential rotation which is not implemented.
type Account struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
