package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"voicebridge/internal/core"
	"voicebridge/internal/domain"
)

// sessionState is everything the registry tracks for one connection.
type sessionState struct {
	Room     domain.RoomID // "" while not in any room
	Language domain.Language
	Conn     core.SignalConnection // nil until the transport binds
}

// Registry is the authoritative mapping of sessions to rooms, declared
// languages, and live connections. One coarse lock guards all state so a
// reader always observes either the pre- or post-state of any mutation.
//
// Invariants held at all times: a session belongs to at most one room, and a
// room with no members does not exist.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*sessionState
	rooms    map[domain.RoomID]map[domain.SessionID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.SessionID]*sessionState),
		rooms:    make(map[domain.RoomID]map[domain.SessionID]struct{}),
	}
}

// Bind attaches a live connection to sid, creating the session record if
// needed. The adapter owns the connection and must Close it itself.
func (r *Registry) Bind(sid domain.SessionID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.ensureLocked(sid)
	st.Conn = conn
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound connection")
}

// Join adds sid to roomID, creating the room lazily, and records the declared
// language. A session already in another room is moved; prev names the room
// it vacated so the transport can notify its remaining members. joined is
// false for a repeat join of the same room, in which case only the language
// record is refreshed.
func (r *Registry) Join(sid domain.SessionID, roomID domain.RoomID, language domain.Language) (prev domain.RoomID, joined bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.ensureLocked(sid)
	st.Language = language

	if st.Room == roomID {
		return "", false
	}
	if st.Room != "" {
		prev = st.Room
		r.leaveLocked(sid, st.Room)
	}

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[domain.SessionID]struct{})
		r.rooms[roomID] = members
	}
	members[sid] = struct{}{}
	st.Room = roomID

	log.Info().Str("module", "app.registry").Str("sid", string(sid)).
		Str("room", string(roomID)).Str("language", string(language)).Msg("joined room")
	return prev, true
}

// Leave removes sid from roomID. The room is deleted the moment its member
// set becomes empty. Returns false if sid was not a member.
func (r *Registry) Leave(sid domain.SessionID, roomID domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.sessions[sid]
	if !ok || st.Room != roomID {
		return false
	}
	r.leaveLocked(sid, roomID)
	st.Room = ""
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(roomID)).Msg("left room")
	return true
}

// Disconnect removes every trace of sid: room membership, language record,
// and connection binding. Safe to call for an unknown sid. Returns the room
// the session was in, if any, so the transport can notify remaining members.
func (r *Registry) Disconnect(sid domain.SessionID) (domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.sessions[sid]
	if !ok {
		return "", false
	}
	room := st.Room
	if room != "" {
		r.leaveLocked(sid, room)
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("disconnected")
	return room, room != ""
}

// MembersOf returns the member set of roomID, empty if the room is unknown.
func (r *Registry) MembersOf(roomID domain.RoomID) []domain.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]domain.SessionID, 0, len(members))
	for sid := range members {
		out = append(out, sid)
	}
	return out
}

// LanguageOf returns the language sid declared, or the default for sessions
// that never declared one.
func (r *Registry) LanguageOf(sid domain.SessionID) domain.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if st, ok := r.sessions[sid]; ok && st.Language != "" {
		return st.Language
	}
	return domain.DefaultLanguage
}

// RoomOf returns the room sid currently belongs to.
func (r *Registry) RoomOf(sid domain.SessionID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if st, ok := r.sessions[sid]; ok && st.Room != "" {
		return st.Room, true
	}
	return "", false
}

// ConnOf returns the live connection bound to sid.
func (r *Registry) ConnOf(sid domain.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if st, ok := r.sessions[sid]; ok && st.Conn != nil {
		return st.Conn, true
	}
	return nil, false
}

// RoomInfo returns a snapshot of roomID with per-member languages. Unknown
// rooms yield a zero-member snapshot.
func (r *Registry) RoomInfo(roomID domain.RoomID) core.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info := core.RoomInfo{ID: roomID}
	members, ok := r.rooms[roomID]
	if !ok {
		return info
	}
	info.UsersCount = len(members)
	info.Users = make([]core.MemberInfo, 0, len(members))
	for sid := range members {
		lang := domain.DefaultLanguage
		if st, ok := r.sessions[sid]; ok && st.Language != "" {
			lang = st.Language
		}
		info.Users = append(info.Users, core.MemberInfo{ID: sid, Language: lang})
	}
	return info
}

// Rooms lists all active rooms with their member counts.
func (r *Registry) Rooms() []core.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(r.rooms))
	for id, members := range r.rooms {
		out = append(out, core.RoomInfo{ID: id, UsersCount: len(members)})
	}
	return out
}

// Counts reports the number of active rooms and connected sessions.
func (r *Registry) Counts() (rooms, sessions int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms), len(r.sessions)
}

// ensureLocked returns the state for sid, creating it if absent.
// Caller must hold the write lock.
func (r *Registry) ensureLocked(sid domain.SessionID) *sessionState {
	st, ok := r.sessions[sid]
	if !ok {
		st = &sessionState{}
		r.sessions[sid] = st
	}
	return st
}

// leaveLocked removes sid from roomID's member set and garbage-collects the
// room when it empties. Caller must hold the write lock and fix up the
// session's Room field itself.
func (r *Registry) leaveLocked(sid domain.SessionID, roomID domain.RoomID) {
	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(members, sid)
	if len(members) == 0 {
		delete(r.rooms, roomID)
		log.Info().Str("module", "app.registry").Str("room", string(roomID)).Msg("room emptied, removed")
	}
}
