package domain

type RoomID string

// TrimRoomID caps a client-supplied room identifier to MaxRoomIDLen.
func TrimRoomID(raw string) RoomID {
	if len(raw) > MaxRoomIDLen {
		raw = raw[:MaxRoomIDLen]
	}
	return RoomID(raw)
}
