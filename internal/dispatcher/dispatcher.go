// Package dispatcher fans estimate samples out to registered sinks. Buffered
// sinks run on their own goroutine so a slow backend never delays a request.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/OCAP2/auvplanner/internal/influx"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("dispatcher closed")

// Sink consumes estimate samples.
type Sink interface {
	Publish(ctx context.Context, s influx.EstimateSample) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, s influx.EstimateSample) error

func (f SinkFunc) Publish(ctx context.Context, s influx.EstimateSample) error {
	return f(ctx, s)
}

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures sink registration.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the sink async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered sink block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging to the sink.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

type job struct {
	ctx    context.Context
	sample influx.EstimateSample
}

type publishFunc func(ctx context.Context, s influx.EstimateSample) error

// Dispatcher routes samples to every registered sink.
type Dispatcher struct {
	logger Logger
	names  []string
	sinks  map[string]publishFunc

	// OTEL metrics
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter

	// Track buffers for gauge callback
	mu      sync.RWMutex
	buffers map[string]chan job
	closed  bool
	workers sync.WaitGroup
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		sinks:   make(map[string]publishFunc),
		buffers: make(map[string]chan job),
		logger:  logger,
	}

	// Get meter from global OTel provider (returns no-op if not configured)
	m := meter()

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of samples waiting per sink"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for name, buf := range d.buffers {
				o.ObserveInt64(d.queueSize, int64(len(buf)),
					metric.WithAttributes(attribute.String("sink", name)))
			}
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.samples.processed",
		metric.WithDescription("Total samples delivered to sinks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"dispatcher.samples.dropped",
		metric.WithDescription("Total samples dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return d, nil
}

// Register adds a sink under name with optional configuration. Registering
// an existing name replaces the sink and retires its queue. Registering
// after Close is ignored.
func (d *Dispatcher) Register(name string, s Sink, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	publish := s.Publish

	if cfg.logged {
		publish = d.withLogging(name, publish)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Error("sink registered after close", "sink", name)
		return
	}

	if old, ok := d.buffers[name]; ok {
		close(old)
		delete(d.buffers, name)
	}
	if cfg.bufferSize > 0 {
		publish = d.withBuffer(name, cfg.bufferSize, cfg.blocking, publish)
	}

	if _, ok := d.sinks[name]; !ok {
		d.names = append(d.names, name)
	}
	d.sinks[name] = publish
}

// Publish hands the sample to every sink in registration order. Errors
// from synchronous sinks and full queues are joined.
func (d *Dispatcher) Publish(ctx context.Context, s influx.EstimateSample) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	var errs []error
	for _, name := range d.names {
		if err := d.sinks[name](ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// HasSink returns true if a sink is registered under name.
func (d *Dispatcher) HasSink(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.sinks[name]
	return ok
}

// Close stops accepting samples and waits for buffered sinks to drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, buf := range d.buffers {
		close(buf)
	}
	d.mu.Unlock()

	d.workers.Wait()
}

// withBuffer starts the queue worker. d.mu must be held.
func (d *Dispatcher) withBuffer(name string, size int, blocking bool, publish publishFunc) publishFunc {
	buffer := make(chan job, size)
	d.buffers[name] = buffer

	nameAttr := attribute.String("sink", name)

	d.workers.Add(1)
	go func() {
		defer d.workers.Done()
		for j := range buffer {
			if err := publish(j.ctx, j.sample); err != nil {
				d.logger.Error("sink failed", "sink", name, "error", err)
			}
			d.processed.Add(context.Background(), 1, metric.WithAttributes(nameAttr))
		}
	}()

	if blocking {
		return func(ctx context.Context, s influx.EstimateSample) error {
			buffer <- job{ctx: context.WithoutCancel(ctx), sample: s}
			return nil
		}
	}

	return func(ctx context.Context, s influx.EstimateSample) error {
		select {
		case buffer <- job{ctx: context.WithoutCancel(ctx), sample: s}:
			return nil
		default:
			d.dropped.Add(ctx, 1, metric.WithAttributes(nameAttr))
			return fmt.Errorf("queue full: %s", name)
		}
	}
}

func (d *Dispatcher) withLogging(name string, publish publishFunc) publishFunc {
	return func(ctx context.Context, s influx.EstimateSample) error {
		start := time.Now()
		d.logger.Debug("publishing sample", "sink", name, "outcome", s.Outcome)

		err := publish(ctx, s)

		if err != nil {
			d.logger.Error("sample failed", "sink", name, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("sample published", "sink", name, "duration", time.Since(start))
		}

		return err
	}
}
