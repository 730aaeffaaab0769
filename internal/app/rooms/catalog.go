// Package rooms resolves room identifiers to room metadata and rosters.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/dkeye/neonroom/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
	ErrOverCapacity = errors.New("roster exceeds room capacity")
)

type entry struct {
	room         domain.Room
	participants []domain.User
}

// Catalog is a threadsafe in-memory room store.
// Loaded values are copies; callers never share state across sessions.
type Catalog struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]entry
	order []domain.RoomID
}

func NewCatalog() *Catalog {
	return &Catalog{rooms: make(map[domain.RoomID]entry)}
}

// NormalizeID accepts numeric and string identifiers alike: " 007" and 7 map to "7".
func NormalizeID(id string) domain.RoomID {
	id = strings.TrimSpace(id)
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return domain.RoomID(strconv.FormatUint(n, 10))
	}
	return domain.RoomID(id)
}

func (c *Catalog) Add(room domain.Room, participants []domain.User) error {
	if err := room.Validate(); err != nil {
		return fmt.Errorf("room %q: %w", room.ID, err)
	}
	room.ID = NormalizeID(string(room.ID))
	if room.Capacity > 0 && len(participants) > room.Capacity {
		return fmt.Errorf("room %q: %w", room.ID, ErrOverCapacity)
	}
	if room.ParticipantCount == 0 {
		room.ParticipantCount = len(participants)
	}
	if room.Type == "" {
		room.Type = domain.RoomConversation
	}
	if room.Visibility == "" {
		room.Visibility = domain.Public
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.rooms[room.ID]; ok {
		return fmt.Errorf("room %q: %w", room.ID, ErrRoomExists)
	}
	c.rooms[room.ID] = entry{room: room, participants: cloneUsers(participants)}
	c.order = append(c.order, room.ID)
	log.Debug().Str("module", "app.rooms").Str("room_id", string(room.ID)).Int("participants", len(participants)).Msg("room added")
	return nil
}

func (c *Catalog) Load(ctx context.Context, id string) (*domain.Room, []domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.rooms[NormalizeID(id)]
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	room := e.room
	return &room, cloneUsers(e.participants), nil
}

// List returns public rooms in insertion order.
func (c *Catalog) List() []domain.Room {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Room, 0, len(c.order))
	for _, id := range c.order {
		if r := c.rooms[id].room; r.Visibility == domain.Public {
			out = append(out, r)
		}
	}
	return out
}

func cloneUsers(in []domain.User) []domain.User {
	out := make([]domain.User, len(in))
	for i, u := range in {
		u.Badges = slices.Clone(u.Badges)
		out[i] = u
	}
	return out
}
