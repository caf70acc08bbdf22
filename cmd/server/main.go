package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "voicebridge/internal/adapters/http"
	"voicebridge/internal/app"
	"voicebridge/internal/audio"
	"voicebridge/internal/config"
	"voicebridge/internal/domain"
	"voicebridge/internal/metrics"
	"voicebridge/internal/pipeline"
	"voicebridge/internal/pipeline/deepl"
	"voicebridge/internal/pipeline/mock"
	"voicebridge/internal/pipeline/openai"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build speech provider")
	}

	clips, err := audio.NewStore(cfg.TempDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init clip store")
	}

	met := metrics.New(prometheus.DefaultRegisterer)
	reg := app.NewRegistry()
	delivery := app.NewDelivery(reg, met, cfg.BroadcastCompat)
	worker := app.NewWorker(provider, delivery, met, app.WorkerConfig{
		QueueSize:    cfg.QueueSize,
		Workers:      cfg.Workers,
		StageTimeout: cfg.StageTimeout,
	})
	worker.Start(ctx)
	dispatcher := app.NewDispatcher(reg, worker)

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Registry:   reg,
		Dispatcher: dispatcher,
		Worker:     worker,
		Clips:      clips,
		Provider:   provider,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("VoiceBridge server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	worker.Stop(cfg.DrainTimeout)
	log.Info().Msg("Server exited gracefully")
}

// buildProvider assembles the pipeline from configured credentials. OpenAI
// covers transcription and synthesis; DeepL covers translation when a token
// is present, otherwise text passes through untranslated. With no OpenAI
// token at all the server runs on the mock provider, which keeps local
// development possible without paid keys.
func buildProvider(cfg *config.Config) (pipeline.Provider, error) {
	if cfg.OpenAIToken == "" {
		log.Warn().Msg("no OpenAI token configured, using mock speech provider")
		// Every stage must yield something non-empty or the worker aborts
		// the task; the placeholder audio stands in for real mp3 bytes.
		return &mock.Provider{
			TranscribeText:  "mock transcript",
			SynthesizeAudio: []byte("mock-mp3-audio"),
		}, nil
	}

	voices := make(map[domain.Language]string, len(cfg.Voices))
	for lang, voice := range cfg.Voices {
		voices[domain.Language(lang)] = voice
	}
	oa, err := openai.New(cfg.OpenAIToken, openai.WithVoices(voices))
	if err != nil {
		return nil, err
	}

	var mt pipeline.Translator
	if cfg.DeepLToken != "" {
		mt, err = deepl.New(cfg.DeepLToken)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn().Msg("no DeepL token configured, text will not be translated")
		mt = pipeline.Passthrough{}
	}

	return pipeline.Split{STT: oa, MT: mt, TTS: oa}, nil
}
