package models

import "time"

// User is a persistent account record. PasswordSalt and PasswordHash are
// credential material: never logged, never sent to clients.
type User struct {
	ID           int64
	Username     string
	PasswordSalt string
	PasswordHash string
	Email        string
	LastIP       string
	CreatedAt    time.Time
}
