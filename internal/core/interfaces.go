package core

import "voicebridge/internal/domain"

// Frame is a raw payload pushed to a client (JSON event bytes).
type Frame []byte

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberInfo is a read-only view of one room member (no transport fields).
type MemberInfo struct {
	ID       domain.SessionID `json:"user_id"`
	Language domain.Language  `json:"language"`
}

// RoomInfo is a point-in-time snapshot of a room for the query surfaces.
type RoomInfo struct {
	ID         domain.RoomID `json:"room_id"`
	UsersCount int           `json:"users_count"`
	Users      []MemberInfo  `json:"users,omitempty"`
}
