package app

import (
	"encoding/base64"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"voicebridge/internal/domain"
	"voicebridge/internal/metrics"
)

// translatedAudioEvent is the wire payload for one finished translation.
// target_user lets clients filter in broadcast-compat mode.
type translatedAudioEvent struct {
	Type         string           `json:"type"`
	Audio        string           `json:"audio"`
	Text         string           `json:"text"`
	OriginalText string           `json:"original_text"`
	TargetUser   domain.SessionID `json:"target_user"`
}

// Delivery pushes finished results back over the signal transport.
//
// The primitive is a point-to-point send to the recipient's connection. The
// legacy behavior of broadcasting to the whole room with a recipient tag
// (clients discard messages not addressed to them) is kept behind the
// broadcast flag for compatibility; it leaks translated audio to every room
// member's transport, so it is off by default.
//
// A recipient that disconnected mid-pipeline is expected churn: the result is
// dropped silently.
type Delivery struct {
	registry  *Registry
	met       *metrics.Metrics
	broadcast bool
}

func NewDelivery(registry *Registry, met *metrics.Metrics, broadcast bool) *Delivery {
	return &Delivery{registry: registry, met: met, broadcast: broadcast}
}

var _ Deliverer = (*Delivery)(nil)

// Deliver sends one result toward its recipient.
func (d *Delivery) Deliver(res domain.Result) {
	payload, err := json.Marshal(translatedAudioEvent{
		Type:         "translated_audio",
		Audio:        base64.StdEncoding.EncodeToString(res.Audio),
		Text:         res.TranslatedText,
		OriginalText: res.OriginalText,
		TargetUser:   res.Recipient,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.delivery").Msg("marshal result")
		d.met.DeliveriesDropped.Inc()
		return
	}

	if d.broadcast {
		d.deliverRoom(res, payload)
		return
	}
	d.deliverDirect(res, payload)
}

func (d *Delivery) deliverDirect(res domain.Result, payload []byte) {
	conn, ok := d.registry.ConnOf(res.Recipient)
	if !ok {
		log.Debug().Str("module", "app.delivery").Str("recipient", string(res.Recipient)).Msg("recipient gone, dropping result")
		d.met.DeliveriesDropped.Inc()
		return
	}
	if err := conn.TrySend(payload); err != nil {
		log.Warn().Err(err).Str("module", "app.delivery").Str("recipient", string(res.Recipient)).Msg("send failed, dropping result")
		d.met.DeliveriesDropped.Inc()
		return
	}
	d.met.DeliveriesSent.Inc()
}

// deliverRoom emits the tagged payload to every current member of the room,
// the way the legacy transport did.
func (d *Delivery) deliverRoom(res domain.Result, payload []byte) {
	sent := 0
	for _, sid := range d.registry.MembersOf(res.RoomID) {
		conn, ok := d.registry.ConnOf(sid)
		if !ok {
			continue
		}
		if err := conn.TrySend(payload); err != nil {
			continue
		}
		sent++
	}
	if sent == 0 {
		log.Debug().Str("module", "app.delivery").Str("room", string(res.RoomID)).Msg("no reachable members, result dropped")
		d.met.DeliveriesDropped.Inc()
		return
	}
	d.met.DeliveriesSent.Inc()
}
