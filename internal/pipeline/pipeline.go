// Package pipeline defines the capability interface over external speech
// services. Each stage is a blocking network call; implementations must be
// safe for concurrent use and must report failure as an error value, never by
// panicking.
package pipeline

import (
	"context"

	"voicebridge/internal/domain"
)

// Transcriber converts one stored utterance into text.
// An empty transcript with a nil error means the provider heard nothing.
type Transcriber interface {
	Transcribe(ctx context.Context, clipPath string, language domain.Language) (string, error)
}

// Translator converts text between languages.
type Translator interface {
	Translate(ctx context.Context, text string, source, target domain.Language) (string, error)
}

// Synthesizer renders text as encoded audio bytes (mp3).
// An empty result with a nil error means the provider produced no audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, language domain.Language) ([]byte, error)
}

// Provider bundles the three stages the translation worker runs in order.
type Provider interface {
	Transcriber
	Translator
	Synthesizer
}

// Split assembles a Provider from independent stage implementations, so the
// wiring can mix vendors (e.g. OpenAI speech stages with DeepL translation).
type Split struct {
	STT Transcriber
	MT  Translator
	TTS Synthesizer
}

var _ Provider = Split{}

func (s Split) Transcribe(ctx context.Context, clipPath string, language domain.Language) (string, error) {
	return s.STT.Transcribe(ctx, clipPath, language)
}

func (s Split) Translate(ctx context.Context, text string, source, target domain.Language) (string, error) {
	return s.MT.Translate(ctx, text, source, target)
}

func (s Split) Synthesize(ctx context.Context, text string, language domain.Language) ([]byte, error) {
	return s.TTS.Synthesize(ctx, text, language)
}

// Passthrough is a Translator that returns text unchanged. Used when no
// translation backend is configured: recipients still get audio in the
// sender's language rather than nothing.
type Passthrough struct{}

func (Passthrough) Translate(_ context.Context, text string, _, _ domain.Language) (string, error) {
	return text, nil
}
