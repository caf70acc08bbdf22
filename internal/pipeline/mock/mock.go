// Package mock provides a test double for the pipeline stage interfaces.
//
// Configure per-stage results and errors, then inspect the recorded calls:
//
//	p := &mock.Provider{TranscribeText: "hola", TranslateText: "hello"}
//	text, _ := p.Transcribe(ctx, "/tmp/clip.webm", "es")
package mock

import (
	"context"
	"sync"

	"voicebridge/internal/domain"
	"voicebridge/internal/pipeline"
)

var _ pipeline.Provider = (*Provider)(nil)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	ClipPath string
	Language domain.Language
}

// TranslateCall records a single invocation of Translate.
type TranslateCall struct {
	Text   string
	Source domain.Language
	Target domain.Language
}

// SynthesizeCall records a single invocation of Synthesize.
type SynthesizeCall struct {
	Text     string
	Language domain.Language
}

// Provider is a mock implementation of pipeline.Provider.
type Provider struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// TranscribeText is returned by Transcribe when TranscribeFunc is nil.
	TranscribeText string
	// TranscribeErr, if non-nil, is returned by Transcribe.
	TranscribeErr error
	// TranscribeFunc, if non-nil, fully overrides Transcribe.
	TranscribeFunc func(ctx context.Context, clipPath string, language domain.Language) (string, error)

	// TranslateText is returned by Translate when TranslateFunc is nil.
	// When empty, Translate echoes the input text.
	TranslateText string
	// TranslateErr, if non-nil, is returned by Translate.
	TranslateErr error
	// TranslateFunc, if non-nil, fully overrides Translate.
	TranslateFunc func(ctx context.Context, text string, source, target domain.Language) (string, error)

	// SynthesizeAudio is returned by Synthesize when SynthesizeFunc is nil.
	SynthesizeAudio []byte
	// SynthesizeErr, if non-nil, is returned by Synthesize.
	SynthesizeErr error
	// SynthesizeFunc, if non-nil, fully overrides Synthesize.
	SynthesizeFunc func(ctx context.Context, text string, language domain.Language) ([]byte, error)

	// --- Recorded calls ---

	TranscribeCalls []TranscribeCall
	TranslateCalls  []TranslateCall
	SynthesizeCalls []SynthesizeCall
}

func (p *Provider) Transcribe(ctx context.Context, clipPath string, language domain.Language) (string, error) {
	p.mu.Lock()
	p.TranscribeCalls = append(p.TranscribeCalls, TranscribeCall{ClipPath: clipPath, Language: language})
	fn := p.TranscribeFunc
	text, err := p.TranscribeText, p.TranscribeErr
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, clipPath, language)
	}
	return text, err
}

func (p *Provider) Translate(ctx context.Context, text string, source, target domain.Language) (string, error) {
	p.mu.Lock()
	p.TranslateCalls = append(p.TranslateCalls, TranslateCall{Text: text, Source: source, Target: target})
	fn := p.TranslateFunc
	out, err := p.TranslateText, p.TranslateErr
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, source, target)
	}
	if err != nil {
		return "", err
	}
	if out == "" {
		return text, nil
	}
	return out, nil
}

func (p *Provider) Synthesize(ctx context.Context, text string, language domain.Language) ([]byte, error) {
	p.mu.Lock()
	p.SynthesizeCalls = append(p.SynthesizeCalls, SynthesizeCall{Text: text, Language: language})
	fn := p.SynthesizeFunc
	audio, err := p.SynthesizeAudio, p.SynthesizeErr
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, language)
	}
	return audio, err
}

// CallCounts returns the number of recorded calls per stage.
func (p *Provider) CallCounts() (transcribe, translate, synthesize int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.TranscribeCalls), len(p.TranslateCalls), len(p.SynthesizeCalls)
}
