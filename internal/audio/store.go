// Package audio stores captured utterances as temporary files so the
// transcription provider can read them by path. Clips are reference counted:
// the dispatcher retains one reference per translation task and the backing
// file is removed when the last holder releases it.
package audio

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// clipPattern matches what browser capture produces; the transcription
// provider sniffs the container from the extension.
const clipPattern = "utterance-*.webm"

type Store struct {
	dir string
}

// NewStore creates the clip directory if needed. An empty dir falls back to
// the system temp directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("audio: create clip dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Clip is a refcounted handle to one stored utterance.
type Clip struct {
	path string
	refs atomic.Int32
}

// Save writes data to a fresh temp file and returns a Clip holding one
// reference.
func (s *Store) Save(data []byte) (*Clip, error) {
	f, err := os.CreateTemp(s.dir, clipPattern)
	if err != nil {
		return nil, fmt.Errorf("audio: create clip: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("audio: write clip: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("audio: close clip: %w", err)
	}
	c := &Clip{path: f.Name()}
	c.refs.Store(1)
	return c, nil
}

func (c *Clip) Path() string { return c.path }

// Retain adds a reference. Each Retain must be paired with a Release.
func (c *Clip) Retain() {
	c.refs.Add(1)
}

// Release drops one reference and removes the backing file when the count
// reaches zero. Releasing more times than retained is a programming error and
// logged, not fatal.
func (c *Clip) Release() {
	switch n := c.refs.Add(-1); {
	case n == 0:
		if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("module", "audio").Str("path", c.path).Msg("remove clip")
		}
	case n < 0:
		log.Warn().Str("module", "audio").Str("path", c.path).Msg("clip over-released")
	}
}
