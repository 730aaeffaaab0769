package rooms

import (
	"fmt"

	"github.com/dkeye/neonroom/internal/domain"
	"github.com/spf13/viper"
)

type fixtureRoom struct {
	domain.Room  `mapstructure:",squash"`
	Participants []domain.User `mapstructure:"participants"`
}

type fixtureFile struct {
	Rooms []fixtureRoom `mapstructure:"rooms"`
}

// LoadFile builds a catalog from a YAML fixtures file.
func LoadFile(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f fixtureFile
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	c := NewCatalog()
	for _, r := range f.Rooms {
		for i := range r.Participants {
			if r.Participants[i].Status == "" {
				r.Participants[i].Status = domain.StatusOnline
			}
		}
		if err := c.Add(r.Room, r.Participants); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Default returns the built-in demo rooms.
func Default() *Catalog {
	c := NewCatalog()
	for _, r := range builtin {
		if err := c.Add(r.Room, r.Participants); err != nil {
			panic("builtin fixtures: " + err.Error())
		}
	}
	return c
}

var builtin = []fixtureRoom{
	{
		Room: domain.Room{
			ID: "1", Name: "Neon Nights", Description: "Late night talk under the city glow",
			Type: domain.RoomConversation, Capacity: 12, Visibility: domain.Public,
		},
		Participants: []domain.User{
			{ID: "u-101", Username: "Kira_V", Level: 42, Status: domain.StatusOnline, Avatar: domain.Avatar{Type: "hologram"}, Badges: []string{"founder"}, IsHost: true},
			{ID: "u-102", Username: "GhostWire", Level: 17, Status: domain.StatusOnline, Avatar: domain.Avatar{Type: "glitch"}},
			{ID: "u-103", Username: "Synthia", Level: 28, Status: domain.StatusAway, Avatar: domain.Avatar{Type: "neon"}, Badges: []string{"dj"}},
			{ID: "u-104", Username: "ByteRunner", Level: 9, Status: domain.StatusOnline, Avatar: domain.Avatar{Type: "default"}},
		},
	},
	{
		Room: domain.Room{
			ID: "2", Name: "Synthwave Radio", Description: "Retro beats, nonstop",
			Type: domain.RoomMusic, Capacity: 50, Visibility: domain.Public,
		},
		Participants: []domain.User{
			{ID: "u-201", Username: "DJ_Pulse", Level: 55, Status: domain.StatusOnline, Avatar: domain.Avatar{Type: "neon"}, Badges: []string{"dj", "verified"}, IsHost: true},
			{ID: "u-202", Username: "Vaporhex", Level: 12, Status: domain.StatusBusy, Avatar: domain.Avatar{Type: "glitch"}},
		},
	},
	{
		Room: domain.Room{
			ID: "3", Name: "Raid Planning", Description: "Squad comms for tonight's run",
			Type: domain.RoomGaming, Capacity: 8, Visibility: domain.Private,
		},
		Participants: []domain.User{
			{ID: "u-301", Username: "Razorback", Level: 61, Status: domain.StatusOnline, Avatar: domain.Avatar{Type: "hologram"}, IsHost: true},
			{ID: "u-302", Username: "N0va", Level: 33, Status: domain.StatusOnline, Avatar: domain.Avatar{Type: "default"}},
		},
	},
	{
		Room: domain.Room{
			ID: "7", Name: "Cyber Lounge", Description: "Chill vibes in the chrome district",
			Type: domain.RoomChill, Capacity: 20, Visibility: domain.Public,
		},
		Participants: []domain.User{
			{ID: "u-701", Username: "Aiko", Level: 24, Status: domain.StatusOnline, Avatar: domain.Avatar{Type: "hologram", ImageURL: "/static/avatars/aiko.png"}, Badges: []string{"host"}, IsHost: true},
			{ID: "u-702", Username: "Blade", Level: 31, Status: domain.StatusOnline, Avatar: domain.Avatar{Type: "neon"}},
			{ID: "u-703", Username: "Cipher", Level: 8, Status: domain.StatusAway, Avatar: domain.Avatar{Type: "glitch"}},
		},
	},
	{
		Room: domain.Room{
			ID: "9", Name: "Empty Grid", Description: "Nobody here yet",
			Type: domain.RoomChill, Capacity: 10, Visibility: domain.Public,
		},
	},
}
