package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"voicebridge/internal/core"
	"voicebridge/internal/domain"
)

func (ctl *SignalWSController) handleJoinRoom(
	sid domain.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type joinPayload struct {
		Type     string `json:"type"`
		RoomID   string `json:"room_id"`
		Language string `json:"language"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.RoomID == "" {
		ctl.sendError(conn, "Room ID required")
		return
	}
	roomID := domain.TrimRoomID(p.RoomID)

	language, err := domain.ParseLanguage(p.Language)
	if err != nil {
		language = ctl.opts.DefaultLanguage
	}

	log.Info().
		Str("module", "signal").
		Str("sid", string(sid)).
		Str("room_id", string(roomID)).
		Str("language", string(language)).
		Msg("join room")

	prev, joined := ctl.Registry.Join(sid, roomID, language)
	if !joined {
		// Repeat join of the same room only refreshes the language record.
		return
	}
	if prev != "" {
		ctl.BroadcastRoom(prev, struct {
			Type   string           `json:"type"`
			UserID domain.SessionID `json:"user_id"`
		}{
			Type:   "user_left",
			UserID: sid,
		})
	}
	count := len(ctl.Registry.MembersOf(roomID))

	ctl.sendJSON(conn, struct {
		Type       string        `json:"type"`
		RoomID     domain.RoomID `json:"room_id"`
		UsersCount int           `json:"users_count"`
	}{
		Type:       "room_joined",
		RoomID:     roomID,
		UsersCount: count,
	})

	ctl.BroadcastFrom(sid, struct {
		Type      string           `json:"type"`
		UserID    domain.SessionID `json:"user_id"`
		Language  domain.Language  `json:"language"`
		RoomUsers int              `json:"room_users"`
	}{
		Type:      "user_joined",
		UserID:    sid,
		Language:  language,
		RoomUsers: count,
	})
}

// handleLeaveRoom detaches the session from the room; the connection stays up.
func (ctl *SignalWSController) handleLeaveRoom(
	sid domain.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type leavePayload struct {
		Type   string `json:"type"`
		RoomID string `json:"room_id"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	roomID := domain.TrimRoomID(p.RoomID)

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room_id", string(roomID)).Msg("leave room")

	if !ctl.Registry.Leave(sid, roomID) {
		return
	}
	ctl.BroadcastRoom(roomID, struct {
		Type   string           `json:"type"`
		UserID domain.SessionID `json:"user_id"`
	}{
		Type:   "user_left",
		UserID: sid,
	})
}

func (ctl *SignalWSController) handleRoomInfo(
	sid domain.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type infoPayload struct {
		Type   string `json:"type"`
		RoomID string `json:"room_id"`
	}
	var p infoPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad room info payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.RoomID == "" {
		ctl.sendError(conn, "Room ID required")
		return
	}

	info := ctl.Registry.RoomInfo(domain.TrimRoomID(p.RoomID))

	type userInfo struct {
		core.MemberInfo
		IsSelf bool `json:"is_self"`
	}
	users := make([]userInfo, 0, len(info.Users))
	for _, m := range info.Users {
		users = append(users, userInfo{MemberInfo: m, IsSelf: m.ID == sid})
	}

	ctl.sendJSON(conn, struct {
		Type       string        `json:"type"`
		RoomID     domain.RoomID `json:"room_id"`
		UsersCount int           `json:"users_count"`
		Users      []userInfo    `json:"users"`
	}{
		Type:       "room_info",
		RoomID:     info.ID,
		UsersCount: info.UsersCount,
		Users:      users,
	})
}
