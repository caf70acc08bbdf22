// Package openai implements the transcription and synthesis stages with the
// OpenAI API (whisper-1 for speech-to-text, tts-1 for speech generation).
package openai

import (
	"context"
	"fmt"
	"io"
	"os"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"voicebridge/internal/domain"
	"voicebridge/internal/pipeline"
)

// Compile-time assertions that Provider covers both speech stages.
var (
	_ pipeline.Transcriber = (*Provider)(nil)
	_ pipeline.Synthesizer = (*Provider)(nil)
)

const (
	defaultSTTModel = oai.AudioModelWhisper1
	defaultTTSModel = oai.SpeechModelTTS1
	defaultVoice    = "nova"
)

// defaultVoices mirrors the production voice assignment per target language.
var defaultVoices = map[domain.Language]string{
	"en": "nova",
	"pt": "coco",
	"ru": "echo",
	"es": "coral",
	"fr": "alloy",
	"de": "onyx",
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithBaseURL overrides the API base URL. Primarily used in tests to point at
// a local mock server.
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = url }
}

// WithSTTModel overrides the transcription model.
func WithSTTModel(model string) Option {
	return func(p *Provider) { p.sttModel = model }
}

// WithTTSModel overrides the synthesis model.
func WithTTSModel(model string) Option {
	return func(p *Provider) { p.ttsModel = model }
}

// WithVoices merges per-language voice overrides into the default map.
func WithVoices(voices map[domain.Language]string) Option {
	return func(p *Provider) {
		for lang, voice := range voices {
			p.voices[lang] = voice
		}
	}
}

// Provider implements the speech stages against the OpenAI API.
type Provider struct {
	client   oai.Client
	baseURL  string
	sttModel string
	ttsModel string
	voices   map[domain.Language]string
}

// New creates a Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	p := &Provider{
		sttModel: defaultSTTModel,
		ttsModel: defaultTTSModel,
		voices:   make(map[domain.Language]string, len(defaultVoices)),
	}
	for lang, voice := range defaultVoices {
		p.voices[lang] = voice
	}
	for _, o := range opts {
		o(p)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if p.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(p.baseURL))
	}
	p.client = oai.NewClient(reqOpts...)
	return p, nil
}

// Transcribe uploads the stored clip to whisper and returns the recognized
// text. An utterance the model hears nothing in yields "" with a nil error.
func (p *Provider) Transcribe(ctx context.Context, clipPath string, language domain.Language) (string, error) {
	f, err := os.Open(clipPath)
	if err != nil {
		return "", fmt.Errorf("openai: open clip: %w", err)
	}
	defer f.Close()

	res, err := p.client.Audio.Transcriptions.New(ctx, oai.AudioTranscriptionNewParams{
		Model:    p.sttModel,
		File:     f,
		Language: oai.String(string(language)),
	})
	if err != nil {
		return "", fmt.Errorf("openai: transcribe: %w", err)
	}
	return res.Text, nil
}

// Synthesize renders text as mp3 with the voice assigned to the target
// language.
func (p *Provider) Synthesize(ctx context.Context, text string, language domain.Language) ([]byte, error) {
	voice, ok := p.voices[language]
	if !ok {
		voice = defaultVoice
	}

	res, err := p.client.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
		Model:          p.ttsModel,
		Voice:          oai.AudioSpeechNewParamsVoice(voice),
		Input:          text,
		ResponseFormat: oai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: synthesize: %w", err)
	}
	defer res.Body.Close()

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read audio: %w", err)
	}
	return audio, nil
}
