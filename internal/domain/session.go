// Package domain contains entity without logic, just meta-data.
package domain

import (
	"errors"
	"strings"
)

const (
	MaxLanguageLen = 8
	MaxRoomIDLen   = 36
)

var (
	ErrLanguageEmpty   = errors.New("language empty")
	ErrLanguageTooLong = errors.New("language too long")
)

// SessionID identifies one connected participant. It is opaque and unique per
// connection.
type SessionID string

// Language is a lowercase ISO 639-1 code declared by a client ("en", "es").
type Language string

// DefaultLanguage is assumed for sessions that never declared one.
const DefaultLanguage Language = "en"

// ParseLanguage normalizes a client-declared language code.
func ParseLanguage(raw string) (Language, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", ErrLanguageEmpty
	}
	if len(raw) > MaxLanguageLen {
		return "", ErrLanguageTooLong
	}
	return Language(raw), nil
}
