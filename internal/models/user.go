package models

import "time"

// User is the single registered account of a storage profile.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns a copy without the stored credential.
func (u User) Public() User {
	u.Password = ""
	return u
}
