package signal

import (
	"testing"
	"time"
)

func TestAudioRateLimiterBlocksOverLimit(t *testing.T) {
	t.Parallel()

	rl := NewAudioRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("s1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if rl.Allow("s1") {
		t.Fatal("fourth attempt within the window should be blocked")
	}
}

func TestAudioRateLimiterPerSession(t *testing.T) {
	t.Parallel()

	rl := NewAudioRateLimiter(1, time.Minute)

	if !rl.Allow("s1") {
		t.Fatal("first session should be allowed")
	}
	if !rl.Allow("s2") {
		t.Fatal("limits must not leak between sessions")
	}
	if rl.Allow("s1") {
		t.Fatal("first session should now be blocked")
	}
}

func TestAudioRateLimiterWindowExpiry(t *testing.T) {
	t.Parallel()

	rl := NewAudioRateLimiter(1, 10*time.Millisecond)

	if !rl.Allow("s1") {
		t.Fatal("first attempt should be allowed")
	}
	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("s1") {
		t.Fatal("attempt after the window expired should be allowed")
	}
}

func TestAudioRateLimiterForget(t *testing.T) {
	t.Parallel()

	rl := NewAudioRateLimiter(1, time.Minute)

	rl.Allow("s1")
	if rl.Allow("s1") {
		t.Fatal("second attempt should be blocked")
	}
	rl.Forget("s1")
	if !rl.Allow("s1") {
		t.Fatal("session should start fresh after Forget")
	}
}
