package tablestate

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// RefreshSink receives every load outcome together with the sheet schema.
// It is called from the goroutine running the load; hosts that drive a
// Table from another goroutine must hand the result over themselves.
type RefreshSink func(result LoadResult[*Record], schema []string)

// Refresher loads a Source with retries and optionally reloads it on an
// interval, reporting Loading, Loaded and Failed results to a sink.
type Refresher struct {
	config RefreshConfig
	source Source
	sink   RefreshSink

	loadMu sync.Mutex // held while a load runs

	mu      sync.Mutex
	ticker  *time.Ticker
	done    chan struct{}
	wg      sync.WaitGroup
	running bool
}

// NewRefresher creates a refresher. A nil config selects the defaults.
func NewRefresher(source Source, config *RefreshConfig, sink RefreshSink) *Refresher {
	return &Refresher{
		config: config.withDefaults(),
		source: source,
		sink:   sink,
	}
}

// Load fetches the source once, retrying with exponential backoff
func (r *Refresher) Load(ctx context.Context) error {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()
	return r.load(ctx)
}

func (r *Refresher) load(ctx context.Context) error {
	r.emit(Loading[*Record](), nil)

	var records []*Record
	var schema []string
	var err error

	attempts := 0
	for i := 0; i <= r.config.MaxRetries; i++ {
		attempts++
		records, schema, err = r.source.Load(ctx)
		if err == nil {
			break
		}
		if i == r.config.MaxRetries {
			err = fmt.Errorf("failed after %d retries: %w", r.config.MaxRetries, err)
			break
		}

		// Exponential backoff with reasonable limits
		backoff := time.Duration(1<<uint(i)) * r.config.RetryInterval
		if backoff > 2*time.Second {
			backoff = 2 * time.Second
		}
		select {
		case <-ctx.Done():
			err = fmt.Errorf("canceled after attempt %d: %w", attempts, ctx.Err())
			i = r.config.MaxRetries
		case <-time.After(backoff):
		}
	}

	if err != nil {
		r.emit(Failed[*Record](err), nil)
		return err
	}

	r.emit(Loaded(records), schema)
	return nil
}

func (r *Refresher) emit(result LoadResult[*Record], schema []string) {
	if r.sink != nil {
		r.sink(result, schema)
	}
}

// Start begins periodic reloads. It does nothing when Interval is zero or
// the loop is already running.
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running || r.config.Interval <= 0 {
		return
	}
	r.running = true
	r.ticker = time.NewTicker(r.config.Interval)
	r.done = make(chan struct{})
	r.wg.Add(1)

	go func(ticker *time.Ticker, done chan struct{}) {
		defer r.wg.Done()

		for {
			select {
			case <-ticker.C:
				r.performRefresh()
			case <-done:
				return
			}
		}
	}(r.ticker, r.done)
}

// performRefresh reloads unless a previous load is still running
func (r *Refresher) performRefresh() {
	if !r.loadMu.TryLock() {
		return
	}
	defer r.loadMu.Unlock()

	if err := r.load(context.Background()); err != nil {
		log.Printf("Warning: refresh failed: %v", err)
	}
}

// Stop ends periodic reloads and waits for a running load to finish
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.ticker.Stop()
	close(r.done)
	r.mu.Unlock()

	r.wg.Wait()

	r.loadMu.Lock()
	r.loadMu.Unlock()
}
