package model

import "time"

// User is a Telegram account known to the bot. The ID is the Telegram
// user id; rows are created on first interaction and never deleted.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	CreatedAt time.Time `json:"created_at"`
}
