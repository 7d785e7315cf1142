package export

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-lookup/internal/logging"
	"github.com/goliatone/go-lookup/internal/options"
	"github.com/goliatone/go-lookup/pkg/interfaces"
)

const (
	DefaultKey      = "countries.xlsx"
	DefaultDebounce = 500 * time.Millisecond
	countryKind     = "country"
)

// CountrySource lists the active countries that go into the workbook.
type CountrySource interface {
	List(ctx context.Context) ([]*options.CountryOption, error)
}

// Result describes one completed regeneration.
type Result struct {
	Key         string
	Rows        int
	Bytes       int
	GeneratedAt time.Time
}

// Observer is told about every regeneration attempt. result is nil when err
// is set.
type Observer func(result *Result, err error, elapsed time.Duration)

// Worker rebuilds the country workbook whenever the country table changes.
type Worker struct {
	source   CountrySource
	sink     Sink
	key      string
	kind     string
	debounce time.Duration
	logger   interfaces.Logger
	observer Observer
	now      func() time.Time

	runMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	last   *Result
}

type Option func(*Worker)

func WithKey(key string) Option {
	return func(w *Worker) {
		if key != "" {
			w.key = key
		}
	}
}

func WithKind(kind string) Option {
	return func(w *Worker) {
		if kind != "" {
			w.kind = kind
		}
	}
}

// WithDebounce sets the quiet period that must follow the last change event
// before a regeneration starts.
func WithDebounce(d time.Duration) Option {
	return func(w *Worker) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(w *Worker) {
		w.observer = observer
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.now = clock
		}
	}
}

func NewWorker(source CountrySource, sink Sink, opts ...Option) *Worker {
	w := &Worker{
		source:   source,
		sink:     sink,
		key:      DefaultKey,
		kind:     countryKind,
		debounce: DefaultDebounce,
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Key() string { return w.key }

func (w *Worker) Sink() Sink { return w.sink }

// Last returns the most recent successful regeneration, nil before the first.
func (w *Worker) Last() *Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return nil
	}
	out := *w.last
	return &out
}

// Regenerate builds and writes the workbook synchronously. Concurrent calls
// run one after the other.
func (w *Worker) Regenerate(ctx context.Context) (*Result, error) {
	if w.source == nil {
		return nil, errors.New("export: country source is nil")
	}
	if w.sink == nil {
		return nil, errors.New("export: sink is nil")
	}
	w.runMu.Lock()
	defer w.runMu.Unlock()

	started := w.now()
	result, err := w.regenerate(ctx)
	if w.observer != nil {
		w.observer(result, err, w.now().Sub(started))
	}
	if err != nil {
		return nil, err
	}
	out := *result
	return &out, nil
}

func (w *Worker) regenerate(ctx context.Context) (*Result, error) {
	countries, err := w.source.List(ctx)
	if err != nil {
		w.logger.Error("export.regenerate.list_failed", "error", err)
		return nil, err
	}
	data, err := BuildWorkbook(countries)
	if err != nil {
		w.logger.Error("export.regenerate.build_failed", "error", err)
		return nil, err
	}
	if err := w.sink.Write(ctx, w.key, data); err != nil {
		w.logger.Error("export.regenerate.write_failed", "key", w.key, "sink", string(w.sink.Driver()), "error", err)
		return nil, err
	}

	result := &Result{Key: w.key, Rows: countActive(countries), Bytes: len(data), GeneratedAt: w.now().UTC()}
	w.mu.Lock()
	w.last = result
	w.mu.Unlock()

	w.logger.Info("export.regenerate.success", "key", w.key, "rows", result.Rows, "bytes", result.Bytes, "sink", string(w.sink.Driver()))
	return result, nil
}

// Start subscribes to change events and regenerates in the background once
// a burst of country events has gone quiet. It returns immediately.
func (w *Worker) Start(ctx context.Context, subscriber interfaces.ChangeSubscriber) error {
	if subscriber == nil {
		return errors.New("export: change subscriber is nil")
	}
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return errors.New("export: worker already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	events, err := subscriber.Subscribe(runCtx)
	if err != nil {
		w.mu.Unlock()
		cancel()
		return err
	}
	done := make(chan struct{})
	w.cancel = cancel
	w.done = done
	w.mu.Unlock()

	w.logger.Debug("export.worker.started", "kind", w.kind, "debounce", w.debounce.String())
	go w.loop(runCtx, events, done)
	return nil
}

// Stop cancels the subscription and waits for an in-flight regeneration.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	w.logger.Debug("export.worker.stopped")
}

func (w *Worker) loop(ctx context.Context, events <-chan interfaces.ChangeEvent, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	pending := false

	for {
		select {
		case <-ctx.Done():
			stopTimer(timer)
			return
		case event, ok := <-events:
			if !ok {
				stopTimer(timer)
				return
			}
			if event.Kind != w.kind {
				continue
			}
			if pending {
				stopTimer(timer)
			}
			pending = true
			timer.Reset(w.debounce)
		case <-timer.C:
			pending = false
			if _, err := w.Regenerate(ctx); err != nil && ctx.Err() == nil {
				w.logger.Warn("export.worker.regenerate_failed", "error", err)
			}
		}
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func countActive(countries []*options.CountryOption) int {
	n := 0
	for _, c := range countries {
		if c != nil && c.DeletedAt == nil {
			n++
		}
	}
	return n
}
