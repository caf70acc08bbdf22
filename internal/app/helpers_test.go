package app

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"voicebridge/internal/core"
	"voicebridge/internal/domain"
	"voicebridge/internal/metrics"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

// fakeConn records frames pushed to one session.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	err    error
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {}

func (c *fakeConn) sent() []core.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

// fakeClip tracks its reference count so tests can assert cleanup on every
// task exit path.
type fakeClip struct {
	refs atomic.Int32
}

func newFakeClip() *fakeClip {
	c := &fakeClip{}
	c.refs.Store(1)
	return c
}

func (c *fakeClip) Path() string { return "/tmp/fake-utterance.webm" }
func (c *fakeClip) Retain()      { c.refs.Add(1) }
func (c *fakeClip) Release()     { c.refs.Add(-1) }

func (c *fakeClip) refCount() int32 { return c.refs.Load() }

// captureDelivery collects results and signals each arrival on a channel.
type captureDelivery struct {
	mu      sync.Mutex
	results []domain.Result
	arrived chan struct{}
}

func newCaptureDelivery() *captureDelivery {
	return &captureDelivery{arrived: make(chan struct{}, 64)}
}

func (d *captureDelivery) Deliver(res domain.Result) {
	d.mu.Lock()
	d.results = append(d.results, res)
	d.mu.Unlock()
	d.arrived <- struct{}{}
}

func (d *captureDelivery) all() []domain.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.Result, len(d.results))
	copy(out, d.results)
	return out
}

// captureQueue is an Enqueuer that records offered tasks.
type captureQueue struct {
	mu     sync.Mutex
	accept bool
	tasks  []domain.Task
}

func (q *captureQueue) Enqueue(t domain.Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.accept {
		return false
	}
	q.tasks = append(q.tasks, t)
	return true
}

func (q *captureQueue) all() []domain.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]domain.Task, len(q.tasks))
	copy(out, q.tasks)
	return out
}
