package models

import "time"

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	Picture      string
	CreatedAt    time.Time
}

// Profile is the public view of a User.
type Profile struct {
	Username string `json:"username"`
	Picture  string `json:"picture"`
}

// Identity is what a verified session token asserts about its bearer.
type Identity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
}
