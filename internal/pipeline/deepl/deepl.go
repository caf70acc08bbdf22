// Package deepl implements the translation stage with the DeepL REST v2 API.
package deepl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"voicebridge/internal/domain"
	"voicebridge/internal/pipeline"
)

var _ pipeline.Translator = (*Provider)(nil)

const defaultEndpoint = "https://api-free.deepl.com/v2/translate"

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithEndpoint overrides the translate endpoint (paid-plan host, or a mock
// server in tests).
func WithEndpoint(endpoint string) Option {
	return func(p *Provider) { p.endpoint = endpoint }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// Provider implements pipeline.Translator backed by DeepL.
type Provider struct {
	authKey    string
	endpoint   string
	httpClient *http.Client
}

// New creates a Provider. authKey must be non-empty.
func New(authKey string, opts ...Option) (*Provider, error) {
	if authKey == "" {
		return nil, fmt.Errorf("deepl: authKey must not be empty")
	}
	p := &Provider{
		authKey:    authKey,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// translateResponse mirrors the DeepL v2 translate payload.
type translateResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// Translate converts text from source to target. Language codes are
// uppercased for DeepL; a bare "en" target maps to its regional "EN-US"
// variant, which DeepL requires for English output.
func (p *Provider) Translate(ctx context.Context, text string, source, target domain.Language) (string, error) {
	if source == target {
		return text, nil
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("source_lang", apiLang(source, false))
	form.Set("target_lang", apiLang(target, true))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("deepl: build request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+p.authKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepl: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("deepl: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("deepl: decode response: %w", err)
	}
	if len(out.Translations) == 0 {
		return "", fmt.Errorf("deepl: empty translations list")
	}
	return out.Translations[0].Text, nil
}

func apiLang(lang domain.Language, target bool) string {
	up := strings.ToUpper(string(lang))
	if target && up == "EN" {
		return "EN-US"
	}
	return up
}
