package signal

import (
	"encoding/base64"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"voicebridge/internal/domain"
)

// handleAudioData accepts one recorded utterance and fans it out as
// translation tasks for the sender's room mates.
func (ctl *SignalWSController) handleAudioData(
	sid domain.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	if !ctl.limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("audio rate limit hit")
		ctl.sendError(conn, "Too many audio messages")
		return
	}

	type audioPayload struct {
		Type   string `json:"type"`
		RoomID string `json:"room_id"`
		Audio  string `json:"audio"`
	}
	var p audioPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad audio payload")
		ctl.sendError(conn, "Error processing audio")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(p.Audio)
	if err != nil || len(raw) == 0 {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad audio encoding")
		ctl.sendError(conn, "Error processing audio")
		return
	}

	clip, err := ctl.Clips.Save(raw)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("save clip")
		ctl.sendError(conn, "Error processing audio")
		return
	}
	// The dispatcher retains the clip once per queued task; the handler's
	// own reference is dropped here.
	defer clip.Release()

	roomID := domain.TrimRoomID(p.RoomID)
	senderLang := ctl.Registry.LanguageOf(sid)

	queued := ctl.Dispatcher.Dispatch(clip, sid, roomID, senderLang)
	log.Debug().
		Str("module", "signal").
		Str("sid", string(sid)).
		Str("room_id", string(roomID)).
		Int("queued", queued).
		Int("bytes", len(raw)).
		Msg("audio dispatched")
}
