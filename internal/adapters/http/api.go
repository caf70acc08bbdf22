package http

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"voicebridge/internal/app"
	"voicebridge/internal/audio"
	"voicebridge/internal/domain"
	"voicebridge/internal/pipeline"
)

type apiHandlers struct {
	registry *app.Registry
	worker   *app.Worker
	clips    *audio.Store
	provider pipeline.Provider
	timeout  time.Duration
}

func (h *apiHandlers) health(c *gin.Context) {
	rooms, sessions := h.registry.Counts()
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"active_rooms": rooms,
		"total_users":  sessions,
		"queue_depth":  h.worker.QueueLen(),
	})
}

func (h *apiHandlers) rooms(c *gin.Context) {
	infos := h.registry.Rooms()
	ids := make([]domain.RoomID, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	c.JSON(http.StatusOK, gin.H{
		"rooms":       ids,
		"total_rooms": len(ids),
	})
}

func (h *apiHandlers) roomInfo(c *gin.Context) {
	roomID := domain.TrimRoomID(c.Param("id"))
	info := h.registry.RoomInfo(roomID)
	if info.UsersCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}

// translate runs the whole pipeline synchronously for one uploaded file.
// Kept for clients that predate the WebSocket flow.
func (h *apiHandlers) translate(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No audio file uploaded"})
		return
	}

	langFrom, err := domain.ParseLanguage(c.DefaultPostForm("lang_from", "en"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad lang_from"})
		return
	}
	langTo, err := domain.ParseLanguage(c.DefaultPostForm("lang_to", "ru"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad lang_to"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read upload"})
		return
	}
	defer src.Close()
	raw, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read upload"})
		return
	}

	clip, err := h.clips.Save(raw)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot store upload"})
		return
	}
	defer clip.Release()

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	text, err := h.provider.Transcribe(ctx, clip.Path(), langFrom)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("transcribe")
		c.JSON(http.StatusBadGateway, gin.H{"error": "transcription failed"})
		return
	}
	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no speech detected"})
		return
	}

	translated, err := h.provider.Translate(ctx, text, langFrom, langTo)
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("translate, serving original text")
		translated = text
	}

	speech, err := h.provider.Synthesize(ctx, translated, langTo)
	if err != nil || len(speech) == 0 {
		log.Error().Err(err).Str("module", "adapters.http").Msg("synthesize")
		c.JSON(http.StatusBadGateway, gin.H{"error": "synthesis failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="translated.mp3"`)
	c.Data(http.StatusOK, "audio/mpeg", speech)
}
