// Package models defines server-side data models persisted in the database.
package models

import "time"

type User struct {
	ID           int64
	UserName     string
	PasswordHash []byte
	Bio          string
	CreatedAt    time.Time
}
