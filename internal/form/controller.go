package form

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pwnholic/taskcard/internal"
	"github.com/pwnholic/taskcard/internal/task"
)

const DefaultDelay = 800 * time.Millisecond

// Controller owns the form state. Every change goes through one of the
// State transition methods while mu is held.
type Controller struct {
	mu        sync.Mutex
	state     State
	delay     time.Duration
	now       func() time.Time
	listeners []func(task.TaskData)
}

type Option func(*Controller)

// WithDelay sets the simulated processing latency applied before publishing.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.delay = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func New(opts ...Option) *Controller {
	c := &Controller{
		delay: DefaultDelay,
		now:   time.Now,
	}
	c.state = c.state.reset()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnPublish registers fn to be called with every newly published record.
func (c *Controller) OnPublish(fn func(task.TaskData)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) SetFields(f Fields) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.withFields(f)
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Current returns the last published record, if any.
func (c *Controller) Current() (task.TaskData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Data == nil {
		return task.TaskData{}, false
	}
	return *c.state.Data, true
}

// Reset clears the fields and the published record.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Generating {
		return ErrBusy
	}
	c.state = c.state.reset()
	return nil
}

// Submit validates the current fields, waits the processing delay and
// publishes a new TaskData. On any error the published record is left as it was.
func (c *Controller) Submit(ctx context.Context) (task.TaskData, error) {
	c.mu.Lock()
	if c.state.Generating {
		c.mu.Unlock()
		return task.TaskData{}, ErrBusy
	}
	f := c.state.Fields
	if strings.TrimSpace(f.PhoneNumber) == "" || strings.TrimSpace(f.PriceInput) == "" {
		c.mu.Unlock()
		return task.TaskData{}, ErrMissingField
	}
	job, err := task.ParseJobType(string(f.JobType))
	if err != nil {
		c.mu.Unlock()
		return task.TaskData{}, err
	}
	price, err := task.ParsePrice(f.PriceInput)
	if err != nil {
		c.mu.Unlock()
		return task.TaskData{}, fmt.Errorf("%w: %q", err, f.PriceInput)
	}
	c.state = c.state.generating()
	c.mu.Unlock()

	internal.Debug("generating task for %q (%s)", f.PhoneNumber, job)

	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		c.mu.Lock()
		c.state = c.state.aborted()
		c.mu.Unlock()
		return task.TaskData{}, ctx.Err()
	case <-timer.C:
	}

	c.mu.Lock()
	data := task.New(f.PhoneNumber, job, price, c.now())
	c.state = c.state.submitted(data)
	listeners := append([]func(task.TaskData){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(data)
	}
	return data, nil
}
