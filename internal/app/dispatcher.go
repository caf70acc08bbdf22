package app

import (
	"github.com/rs/zerolog/log"

	"voicebridge/internal/domain"
)

// Enqueuer accepts translation tasks without blocking. A false return means
// the task was refused (full queue) and the caller keeps ownership of any
// references it holds.
type Enqueuer interface {
	Enqueue(domain.Task) bool
}

// Dispatcher fans one inbound utterance out into zero or more translation
// tasks, one per room member whose declared language differs from the
// sender's. Dispatch never blocks on pipeline execution.
type Dispatcher struct {
	registry *Registry
	queue    Enqueuer
}

func NewDispatcher(registry *Registry, queue Enqueuer) *Dispatcher {
	return &Dispatcher{registry: registry, queue: queue}
}

// Dispatch enqueues one task per recipient needing translation and returns
// how many were accepted. A room that vanished between audio capture and
// dispatch is expected churn, not an error: it yields zero tasks.
//
// Each enqueued task retains the clip; the caller's own reference stays with
// the caller.
func (d *Dispatcher) Dispatch(clip domain.ClipRef, sender domain.SessionID, roomID domain.RoomID, senderLang domain.Language) int {
	members := d.registry.MembersOf(roomID)
	if len(members) == 0 {
		log.Debug().Str("module", "app.dispatcher").Str("sid", string(sender)).
			Str("room", string(roomID)).Msg("dispatch for unknown or empty room, skipping")
		return 0
	}

	enqueued := 0
	for _, recipient := range members {
		if recipient == sender {
			continue
		}
		targetLang := d.registry.LanguageOf(recipient)
		if targetLang == senderLang {
			continue
		}
		task := domain.Task{
			Clip:       clip,
			SourceLang: senderLang,
			TargetLang: targetLang,
			RoomID:     roomID,
			Recipient:  recipient,
		}
		clip.Retain()
		if !d.queue.Enqueue(task) {
			clip.Release()
			continue
		}
		enqueued++
	}

	log.Debug().Str("module", "app.dispatcher").Str("sid", string(sender)).
		Str("room", string(roomID)).Int("tasks", enqueued).Msg("dispatched utterance")
	return enqueued
}
