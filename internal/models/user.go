package models

import "time"

// MaxFieldBytes is the column width for username and password.
const MaxFieldBytes = 255

// Account is a registered user. The stored credential is never part of it,
// so listing or echoing an Account cannot leak secret material.
type Account struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
