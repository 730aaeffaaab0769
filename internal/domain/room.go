package domain

import "errors"

const MaxRoomNameLen = 48

var (
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrRoomNameTooLong = errors.New("room name too long")
)

type (
	RoomName string
	RoomID   string
)

type RoomType string

const (
	RoomConversation RoomType = "conversation"
	RoomMusic        RoomType = "music"
	RoomGaming       RoomType = "gaming"
	RoomChill        RoomType = "chill"
)

type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// Room is immutable once loaded; there is no live mutation path.
type Room struct {
	ID               RoomID     `json:"id" mapstructure:"id"`
	Name             RoomName   `json:"name" mapstructure:"name"`
	Description      string     `json:"description" mapstructure:"description"`
	Type             RoomType   `json:"type" mapstructure:"type"`
	Capacity         int        `json:"capacity" mapstructure:"capacity"`
	ParticipantCount int        `json:"participant_count" mapstructure:"participant_count"`
	Visibility       Visibility `json:"visibility" mapstructure:"visibility"`
}

func (r *Room) Validate() error {
	if len(r.Name) == 0 {
		return ErrRoomNameEmpty
	}
	if len(r.Name) > MaxRoomNameLen {
		return ErrRoomNameTooLong
	}
	return nil
}
