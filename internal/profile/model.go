package profile

import "time"

// Profile is the application-side record of an authenticated user.
// Other tables reference it through user_id.
type Profile struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
