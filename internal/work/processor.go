package work

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Recorder persists work executions. *History satisfies it; tests use nil
// or a fake.
type Recorder interface {
	RecordStart(item *WorkItem) (int64, error)
	RecordCompleted(id int64) error
	RecordFailed(id int64, cause error) error
}

// Processor executes work items one at a time, respecting priorities,
// intervals and dependencies. Experiment runs are CPU-bound simulations, so
// serial execution is intentional.
type Processor struct {
	registry   *Registry
	completion *CompletionTracker
	recorder   Recorder
	timeout    time.Duration
	log        zerolog.Logger

	trigger    chan struct{}
	done       chan struct{}
	stop       chan struct{}
	stopped    chan struct{}
	retryQueue []*WorkItem
	inFlight   map[string]bool
	mu         sync.Mutex
}

// NewProcessor creates a new work processor.
func NewProcessor(registry *Registry, completion *CompletionTracker, recorder Recorder, log zerolog.Logger) *Processor {
	return NewProcessorWithTimeout(registry, completion, recorder, log, WorkTimeout)
}

// NewProcessorWithTimeout creates a new work processor with a custom timeout.
// This is primarily used for testing.
func NewProcessorWithTimeout(registry *Registry, completion *CompletionTracker, recorder Recorder, log zerolog.Logger, timeout time.Duration) *Processor {
	return &Processor{
		registry:   registry,
		completion: completion,
		recorder:   recorder,
		timeout:    timeout,
		log:        log.With().Str("component", "work_processor").Logger(),
		trigger:    make(chan struct{}, 1),
		done:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
		retryQueue: make([]*WorkItem, 0),
		inFlight:   make(map[string]bool),
	}
}

// Run starts the processor loop. This blocks until Stop() is called.
func (p *Processor) Run() {
	defer close(p.stopped)

	for {
		select {
		case <-p.stop:
			return
		case <-p.trigger:
			p.processOne()
		case <-p.done:
			p.processOne()
		}
	}
}

// Stop stops the processor and waits for the loop to exit. An in-flight
// work item keeps running until its context times out.
func (p *Processor) Stop() {
	close(p.stop)
	<-p.stopped
}

// Trigger wakes up the processor to check for work.
// This is non-blocking and can be called from any goroutine.
func (p *Processor) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
		// Trigger already pending
	}
}

// ExecuteNow immediately executes a specific work type, bypassing interval
// and dependency checks. Used for manual triggers via the API.
func (p *Processor) ExecuteNow(workTypeID string, subject string) error {
	wt := p.registry.Get(workTypeID)
	if wt == nil {
		return fmt.Errorf("unknown work type: %s", workTypeID)
	}

	item := NewWorkItem(wt, subject)
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	return p.execute(ctx, item, wt)
}

// InFlight returns the IDs of currently executing work items.
func (p *Processor) InFlight() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]string, 0, len(p.inFlight))
	for id := range p.inFlight {
		ids = append(ids, id)
	}
	return ids
}

// processOne finds and executes the next eligible work item.
func (p *Processor) processOne() {
	p.mu.Lock()
	if len(p.inFlight) > 0 {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	item, wt := p.findNextWork()
	if item == nil {
		item, wt = p.popRetryQueue()
	}
	if item == nil {
		return
	}

	p.mu.Lock()
	p.inFlight[item.ID] = true
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			delete(p.inFlight, item.ID)
			p.mu.Unlock()

			// Signal done to drain the next queued item
			select {
			case p.done <- struct{}{}:
			default:
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		err := p.execute(ctx, item, wt)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				p.log.Error().Str("work", item.ID).Msg("Work timed out")
			} else {
				p.log.Error().Err(err).Str("work", item.ID).Msg("Work failed")
			}

			item.Retries++
			if item.Retries < MaxRetries {
				p.pushRetryQueue(item)
			} else {
				p.log.Warn().Str("work", item.ID).Int("retries", item.Retries).Msg("Max retries reached, dropping")
			}
		} else {
			p.completion.MarkCompleted(item)
		}
	}()
}

// findNextWork finds the next eligible work item in priority order.
func (p *Processor) findNextWork() (*WorkItem, *WorkType) {
	for _, wt := range p.registry.ByPriority() {
		subjects := wt.FindSubjects()
		if subjects == nil {
			continue
		}

		for _, subject := range subjects {
			if wt.Interval > 0 && !p.completion.IsStale(wt.ID, subject, wt.Interval) {
				continue
			}
			if !p.dependenciesMet(wt, subject) {
				continue
			}
			return NewWorkItem(wt, subject), wt
		}
	}

	return nil, nil
}

// dependenciesMet checks that every dependency of the work type has completed
// for the same subject.
func (p *Processor) dependenciesMet(wt *WorkType, subject string) bool {
	for _, depID := range wt.DependsOn {
		if _, exists := p.completion.GetCompletion(depID, subject); !exists {
			return false
		}
	}
	return true
}

// execute runs the work item and records it in the history.
func (p *Processor) execute(ctx context.Context, item *WorkItem, wt *WorkType) error {
	var historyID int64 = -1
	if p.recorder != nil {
		id, err := p.recorder.RecordStart(item)
		if err != nil {
			p.log.Warn().Err(err).Str("work", item.ID).Msg("Failed to record work start")
		} else {
			historyID = id
		}
	}

	start := time.Now()
	err := wt.Execute(ctx, item.Subject)

	if p.recorder != nil && historyID >= 0 {
		var recErr error
		if err != nil {
			recErr = p.recorder.RecordFailed(historyID, err)
		} else {
			recErr = p.recorder.RecordCompleted(historyID)
		}
		if recErr != nil {
			p.log.Warn().Err(recErr).Str("work", item.ID).Msg("Failed to record work finish")
		}
	}

	if err == nil {
		p.log.Info().Str("work", item.ID).Dur("elapsed", time.Since(start)).Msg("Work completed")
	}
	return err
}

func (p *Processor) pushRetryQueue(item *WorkItem) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.retryQueue = append(p.retryQueue, item)
}

func (p *Processor) popRetryQueue() (*WorkItem, *WorkType) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.retryQueue) == 0 {
		return nil, nil
	}

	item := p.retryQueue[0]
	p.retryQueue = p.retryQueue[1:]

	wt := p.registry.Get(item.TypeID)
	if wt == nil {
		return nil, nil
	}

	return item, wt
}
