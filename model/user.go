package model

import "time"

// User model
type User struct {
	ID        string `json:"id" bson:"_id"`
	Username  string `json:"username" bson:"username"`
	Email     string `json:"email" bson:"email"`
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
	Avatar    string `json:"avatar" bson:"avatar"`
	// PasswordHash is a base64-encoded bcrypt hash. The plaintext password
	// never reaches the store.
	PasswordHash string `json:"password_hash" bson:"password_hash"`
	Admin        bool   `json:"admin" bson:"admin"`

	// Password-reset state. ResetToken is empty unless a reset has been
	// requested and not yet completed.
	ResetToken       string    `json:"reset_token" bson:"reset_token"`
	ResetTokenExpiry time.Time `json:"reset_token_expiry" bson:"reset_token_expiry"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// DisplayName returns the user's full name, falling back to the username.
func (u User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
