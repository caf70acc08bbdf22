package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"voicebridge/internal/domain"
	"voicebridge/internal/metrics"
	"voicebridge/internal/pipeline"
)

// Deliverer is the boundary to the transport: it pushes one finished result
// toward its recipient and never returns an error to the worker.
type Deliverer interface {
	Deliver(domain.Result)
}

const (
	defaultQueueSize    = 256
	defaultStageTimeout = 30 * time.Second
)

// WorkerConfig tunes the translation worker pool.
type WorkerConfig struct {
	// QueueSize caps the task backlog. On overflow the newest task is
	// dropped, never blocking the real-time ingestion path.
	QueueSize int
	// Workers is the pool size. The default of 1 preserves strict FIFO
	// processing; more workers trade ordering across recipients for latency.
	Workers int
	// StageTimeout bounds each external provider call so a hung backend
	// cannot monopolize a worker.
	StageTimeout time.Duration
}

func (c *WorkerConfig) applyDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.StageTimeout <= 0 {
		c.StageTimeout = defaultStageTimeout
	}
}

// Worker drains the task queue and runs each task through the pipeline
// stages in order: transcribe, translate, synthesize. A failing task never
// terminates a worker or blocks the tasks behind it.
type Worker struct {
	queue    chan domain.Task
	provider pipeline.Provider
	delivery Deliverer
	met      *metrics.Metrics
	cfg      WorkerConfig

	cancel   context.CancelFunc
	stopOnce sync.Once
	stopping chan struct{}
	done     chan struct{}
}

func NewWorker(provider pipeline.Provider, delivery Deliverer, met *metrics.Metrics, cfg WorkerConfig) *Worker {
	cfg.applyDefaults()
	return &Worker{
		queue:    make(chan domain.Task, cfg.QueueSize),
		provider: provider,
		delivery: delivery,
		met:      met,
		cfg:      cfg,
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Enqueue offers a task to the queue without blocking. On overflow the task
// is dropped and logged; the caller keeps its clip reference.
func (w *Worker) Enqueue(task domain.Task) bool {
	select {
	case w.queue <- task:
		w.met.TasksEnqueued.Inc()
		w.met.QueueDepth.Set(float64(len(w.queue)))
		return true
	default:
		log.Warn().Str("module", "app.worker").Str("recipient", string(task.Recipient)).
			Str("room", string(task.RoomID)).Msg("queue full, dropping task")
		w.met.TasksDropped.Inc()
		return false
	}
}

// QueueLen reports the current backlog, for the status surface.
func (w *Worker) QueueLen() int { return len(w.queue) }

// Start launches the worker pool. It returns immediately; call Stop to shut
// the pool down.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.cfg.Workers; i++ {
		g.Go(func() error {
			w.loop(ctx)
			return nil
		})
	}
	go func() {
		defer close(w.done)
		_ = g.Wait()
	}()
	log.Info().Str("module", "app.worker").Int("workers", w.cfg.Workers).
		Int("queue_size", w.cfg.QueueSize).Dur("stage_timeout", w.cfg.StageTimeout).Msg("worker pool started")
}

// Stop signals the pool to finish. Workers drain what is already queued; if
// the drain exceeds drainTimeout the pool is cancelled and the clips of any
// still-queued tasks are released so no temp storage leaks. Safe to call more
// than once and before Start.
func (w *Worker) Stop(drainTimeout time.Duration) {
	w.stopOnce.Do(func() {
		close(w.stopping)
		if w.cancel == nil {
			// Never started: nothing is draining the queue.
			close(w.done)
		}
	})
	select {
	case <-w.done:
	case <-time.After(drainTimeout):
		log.Warn().Str("module", "app.worker").Dur("timeout", drainTimeout).Msg("drain timed out, forcing stop")
		w.cancel()
		<-w.done
	}
	for {
		select {
		case task := <-w.queue:
			task.Clip.Release()
		default:
			log.Info().Str("module", "app.worker").Msg("worker pool stopped")
			return
		}
	}
}

func (w *Worker) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.met.QueueDepth.Set(float64(len(w.queue)))
			w.run(ctx, task)
		case <-w.stopping:
			// Drain the backlog, then exit.
			for {
				select {
				case task := <-w.queue:
					w.met.QueueDepth.Set(float64(len(w.queue)))
					w.run(ctx, task)
				case <-ctx.Done():
					return
				default:
					return
				}
			}
		}
	}
}

// run executes one task through the three stages. The clip is released on
// every exit path.
func (w *Worker) run(ctx context.Context, task domain.Task) {
	defer task.Clip.Release()
	start := time.Now()

	text, ok := w.transcribe(ctx, task)
	if !ok {
		return
	}
	translated := w.translate(ctx, task, text)
	audio, ok := w.synthesize(ctx, task, translated)
	if !ok {
		return
	}

	w.delivery.Deliver(domain.Result{
		OriginalText:   text,
		TranslatedText: translated,
		Audio:          audio,
		RoomID:         task.RoomID,
		Recipient:      task.Recipient,
	})
	w.met.TasksCompleted.Inc()
	w.met.TaskDuration.Observe(time.Since(start).Seconds())
	log.Debug().Str("module", "app.worker").Str("recipient", string(task.Recipient)).
		Dur("took", time.Since(start)).Msg("task completed")
}

// transcribe runs stage one. An error or a blank transcript aborts the task.
func (w *Worker) transcribe(ctx context.Context, task domain.Task) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.StageTimeout)
	defer cancel()

	start := time.Now()
	text, err := w.provider.Transcribe(ctx, task.Clip.Path(), task.SourceLang)
	w.met.StageDuration.WithLabelValues(metrics.StageTranscribe).Observe(time.Since(start).Seconds())

	if err != nil {
		log.Error().Err(err).Str("module", "app.worker").Str("recipient", string(task.Recipient)).Msg("transcription failed, aborting task")
		w.met.TaskAborts.WithLabelValues(metrics.StageTranscribe).Inc()
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		log.Debug().Str("module", "app.worker").Str("recipient", string(task.Recipient)).Msg("empty transcript, aborting task")
		w.met.TaskAborts.WithLabelValues(metrics.StageTranscribe).Inc()
		return "", false
	}
	return text, true
}

// translate runs stage two. A failure degrades to the original text so the
// recipient still gets audio, just untranslated. Same-language tasks should
// not reach the queue at all; the bypass here is belt and braces.
func (w *Worker) translate(ctx context.Context, task domain.Task, text string) string {
	if task.SourceLang == task.TargetLang {
		return text
	}
	ctx, cancel := context.WithTimeout(ctx, w.cfg.StageTimeout)
	defer cancel()

	start := time.Now()
	translated, err := w.provider.Translate(ctx, text, task.SourceLang, task.TargetLang)
	w.met.StageDuration.WithLabelValues(metrics.StageTranslate).Observe(time.Since(start).Seconds())

	if err != nil {
		log.Warn().Err(err).Str("module", "app.worker").
			Str("source", string(task.SourceLang)).Str("target", string(task.TargetLang)).
			Msg("translation failed, passing original text through")
		w.met.TaskAborts.WithLabelValues(metrics.StageTranslate).Inc()
		return text
	}
	return translated
}

// synthesize runs stage three. An error or empty audio aborts the task.
func (w *Worker) synthesize(ctx context.Context, task domain.Task, text string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.StageTimeout)
	defer cancel()

	start := time.Now()
	audio, err := w.provider.Synthesize(ctx, text, task.TargetLang)
	w.met.StageDuration.WithLabelValues(metrics.StageSynthesize).Observe(time.Since(start).Seconds())

	if err != nil {
		log.Error().Err(err).Str("module", "app.worker").Str("recipient", string(task.Recipient)).Msg("synthesis failed, aborting task")
		w.met.TaskAborts.WithLabelValues(metrics.StageSynthesize).Inc()
		return nil, false
	}
	if len(audio) == 0 {
		log.Debug().Str("module", "app.worker").Str("recipient", string(task.Recipient)).Msg("empty synthesis result, aborting task")
		w.met.TaskAborts.WithLabelValues(metrics.StageSynthesize).Inc()
		return nil, false
	}
	return audio, true
}
