// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type UserID string

type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusBusy    Status = "busy"
	StatusOffline Status = "offline"
)

// Avatar describes how a participant is drawn; ImageURL is optional.
type Avatar struct {
	Type     string `json:"type" mapstructure:"type"`
	ImageURL string `json:"image_url,omitempty" mapstructure:"image_url"`
}

// User is a room participant as the client renders it.
type User struct {
	ID       UserID   `json:"id" mapstructure:"id"`
	Username string   `json:"username" mapstructure:"username"`
	Level    int      `json:"level" mapstructure:"level"`
	Status   Status   `json:"status" mapstructure:"status"`
	Avatar   Avatar   `json:"avatar" mapstructure:"avatar"`
	Badges   []string `json:"badges,omitempty" mapstructure:"badges"`
	IsHost   bool     `json:"is_host" mapstructure:"is_host"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(username string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	id := UserID(uuid.NewString())
	return &User{
		ID:       id,
		Username: username,
		Level:    1,
		Status:   StatusOnline,
		Avatar:   Avatar{Type: "default"},
	}, nil
}

func (u *User) SetUsername(username string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	u.Username = username
	return nil
}

func validateUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
