package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/neonroom/internal/app/orch"
	"github.com/dkeye/neonroom/internal/app/rooms"
	"github.com/dkeye/neonroom/internal/core"
	"github.com/dkeye/neonroom/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const lastRoomKey = "last_room"

type roomHandlers struct {
	orch *orch.Orchestrator
}

type roomSummary struct {
	domain.Room
	Viewers int `json:"viewers"`
}

func (h *roomHandlers) list(c *gin.Context) {
	list := h.orch.Rooms.List()
	out := make([]roomSummary, 0, len(list))
	for _, r := range list {
		out = append(out, roomSummary{Room: r, Viewers: h.orch.Registry.Viewers(r.ID)})
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

func (h *roomHandlers) get(c *gin.Context) {
	id := c.Param("id")
	room, participants, err := h.orch.Rooms.Load(c.Request.Context(), id)
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	case err != nil:
		log.Error().Err(err).Str("module", "adapters.http").Str("room_id", id).Msg("load room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
		return
	}

	s := sessions.Default(c)
	s.Set(lastRoomKey, string(room.ID))
	if err := s.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
	}

	c.JSON(http.StatusOK, gin.H{
		"room":         roomSummary{Room: *room, Viewers: h.orch.Registry.Viewers(room.ID)},
		"participants": participants,
	})
}

func (h *roomHandlers) me(c *gin.Context) {
	sid := core.SessionID(c.GetString(clientTokenKey))
	user := h.orch.Registry.GetOrCreateUser(sid)
	lastRoom, _ := sessions.Default(c).Get(lastRoomKey).(string)
	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"last_room": lastRoom,
	})
}
