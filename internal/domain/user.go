// Package domain contains the persisted entities and the language table.
// No transport or lifecycle logic here.
package domain

import (
	"errors"
	"time"
)

const MaxUsernameLen = 36

var (
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUsernameTooLong = errors.New("username too long")
)

type UserID string

// User is a registered account. PasswordHash is a bcrypt digest and is never
// serialized outward.
type User struct {
	ID                UserID    `json:"id" gorm:"type:char(36);primaryKey"`
	Username          string    `json:"username" gorm:"type:varchar(36);not null;uniqueIndex"`
	PasswordHash      string    `json:"-" gorm:"type:varchar(72);not null"`
	PreferredLanguage string    `json:"preferredLanguage" gorm:"type:varchar(8);not null;default:'en'"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (User) TableName() string { return "users" }

// ValidateUsername runs before any hashing work in the register handler.
func ValidateUsername(name string) error {
	if len(name) == 0 {
		return ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
