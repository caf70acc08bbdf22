package app

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"voicebridge/internal/domain"
)

func decodeEvent(t *testing.T, frame []byte) translatedAudioEvent {
	t.Helper()
	var ev translatedAudioEvent
	if err := json.Unmarshal(frame, &ev); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	return ev
}

func TestDeliverDirectToRecipient(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	recipient := &fakeConn{}
	bystander := &fakeConn{}
	r.Bind("B", recipient)
	r.Bind("C", bystander)
	r.Join("B", "r1", "es")
	r.Join("C", "r1", "en")

	d := NewDelivery(r, newTestMetrics(), false)
	d.Deliver(domain.Result{
		OriginalText:   "hello",
		TranslatedText: "hola",
		Audio:          []byte{0xff, 0xfb, 0x01},
		RoomID:         "r1",
		Recipient:      "B",
	})

	frames := recipient.sent()
	if len(frames) != 1 {
		t.Fatalf("want 1 frame to recipient, got %d", len(frames))
	}
	ev := decodeEvent(t, frames[0])
	if ev.Type != "translated_audio" || ev.Text != "hola" || ev.OriginalText != "hello" || ev.TargetUser != "B" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	audio, err := base64.StdEncoding.DecodeString(ev.Audio)
	if err != nil || len(audio) != 3 || audio[0] != 0xff {
		t.Fatalf("audio did not round-trip: %v %v", audio, err)
	}

	if len(bystander.sent()) != 0 {
		t.Fatal("point-to-point delivery must not reach other members")
	}
}

// A recipient that disconnected after dispatch but before the worker finished
// is dropped without error.
func TestDeliverToAbsentRecipientDropsSilently(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	d := NewDelivery(r, newTestMetrics(), false)
	d.Deliver(domain.Result{Recipient: "gone", RoomID: "r1", Audio: []byte("x")})
	// Nothing to assert beyond "no panic, no send"; the registry is empty.
}

func TestDeliverDropsOnBackpressure(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	conn := &fakeConn{err: errors.New("backpressure")}
	r.Bind("B", conn)
	r.Join("B", "r1", "es")

	d := NewDelivery(r, newTestMetrics(), false)
	d.Deliver(domain.Result{Recipient: "B", RoomID: "r1", Audio: []byte("x")})
	if len(conn.sent()) != 0 {
		t.Fatal("send should have been refused")
	}
}

func TestBroadcastCompatReachesWholeRoomWithTag(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	connA := &fakeConn{}
	connB := &fakeConn{}
	connC := &fakeConn{}
	r.Bind("A", connA)
	r.Bind("B", connB)
	r.Bind("C", connC)
	r.Join("A", "r1", "en")
	r.Join("B", "r1", "es")
	r.Join("C", "r1", "en")

	d := NewDelivery(r, newTestMetrics(), true)
	d.Deliver(domain.Result{
		TranslatedText: "hola",
		Audio:          []byte("x"),
		RoomID:         "r1",
		Recipient:      "B",
	})

	for name, conn := range map[string]*fakeConn{"A": connA, "B": connB, "C": connC} {
		frames := conn.sent()
		if len(frames) != 1 {
			t.Fatalf("member %s: want 1 frame, got %d", name, len(frames))
		}
		if ev := decodeEvent(t, frames[0]); ev.TargetUser != "B" {
			t.Fatalf("member %s: frame not tagged for B: %+v", name, ev)
		}
	}
}
