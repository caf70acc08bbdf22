package deepl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTranslate(t *testing.T) {
	t.Parallel()

	var gotAuth, gotSource, gotTarget, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotSource = r.PostFormValue("source_lang")
		gotTarget = r.PostFormValue("target_lang")
		gotText = r.PostFormValue("text")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"translations":[{"detected_source_language":"ES","text":"hello"}]}`))
	}))
	defer srv.Close()

	p, err := New("test-key", WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := p.Translate(context.Background(), "hola", "es", "en")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "hello" {
		t.Fatalf("want hello, got %q", out)
	}
	if gotAuth != "DeepL-Auth-Key test-key" {
		t.Fatalf("bad auth header: %q", gotAuth)
	}
	if gotSource != "ES" {
		t.Fatalf("want source ES, got %q", gotSource)
	}
	if gotTarget != "EN-US" {
		t.Fatalf("want target EN-US (regional variant), got %q", gotTarget)
	}
	if gotText != "hola" {
		t.Fatalf("want text hola, got %q", gotText)
	}
}

func TestTranslateSameLanguageBypassesAPI(t *testing.T) {
	t.Parallel()

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	p, err := New("k", WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := p.Translate(context.Background(), "same", "en", "en")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "same" {
		t.Fatalf("want same, got %q", out)
	}
	if called {
		t.Fatal("API should not be called for same-language translation")
	}
}

func TestTranslateErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", 456)
	}))
	defer srv.Close()

	p, err := New("k", WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Translate(context.Background(), "hola", "es", "de"); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestNewRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty auth key")
	}
}
