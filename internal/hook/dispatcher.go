package hook

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Dispatcher delivers events to subscribed hooks on a single worker so hooks
// observe events in order. Dispatch never blocks the caller.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	queue    chan *Event

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	delivered int
	dropped   int
	failed    int
}

// NewDispatcher creates a Dispatcher with room for queueSize pending events.
func NewDispatcher(m *Manager, e *Executor, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Dispatcher{
		manager:  m,
		executor: e,
		queue:    make(chan *Event, queueSize),
	}
}

// Start launches the worker. Calling Start twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.running = true
	d.wg.Add(1)
	go d.run(ctx)
}

// Stop cancels in-flight runs and waits for the worker to exit.
// Pending events are discarded.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.cancel()
	d.mu.Unlock()

	d.wg.Wait()
	for {
		select {
		case <-d.queue:
		default:
			return
		}
	}
}

// Dispatch queues evt, filling in its ID and timestamp when unset.
// It returns false when no hook subscribes or the queue is full.
func (d *Dispatcher) Dispatch(evt Event) bool {
	if len(d.manager.Subscribers(evt.Type)) == 0 {
		return false
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	select {
	case d.queue <- &evt:
		return true
	default:
		d.mu.Lock()
		d.dropped++
		d.mu.Unlock()
		log.Printf("hook: queue full, dropping %s event %s", evt.Type, evt.ID)
		return false
	}
}

// Stats returns delivered, dropped and failed run counts.
func (d *Dispatcher) Stats() (delivered, dropped, failed int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delivered, d.dropped, d.failed
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-d.queue:
			d.deliver(ctx, evt)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, evt *Event) {
	for _, h := range d.manager.Subscribers(evt.Type) {
		if ctx.Err() != nil {
			return
		}
		resp, err := d.executor.Execute(ctx, h, evt)

		d.mu.Lock()
		switch {
		case err != nil:
			d.failed++
			log.Printf("hook: %s on %s: %v", h.Manifest.Name, evt.Type, err)
		case !resp.Success:
			d.failed++
			log.Printf("hook: %s on %s reported: %s", h.Manifest.Name, evt.Type, resp.Error)
		default:
			d.delivered++
		}
		d.mu.Unlock()
	}
}
