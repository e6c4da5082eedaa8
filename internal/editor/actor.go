package editor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the mailbox capacity used when none is given.
const DefaultQueueSize = 64

// command is one queued controller operation.
type command struct {
	fn     func(*Controller) error
	result chan error
}

// Actor owns a Controller and runs the commands sent to it one at a time on
// a single goroutine.
//
// Usage:
//
//	actor := NewActor(ctrl, 0)
//	go actor.Run(ctx)
//	defer actor.Close()
//
//	err := actor.Do(ctx, func(c *Controller) error {
//	    return c.Render()
//	})
type Actor struct {
	ctrl   *Controller
	queue  chan *command
	closed atomic.Bool
	done   chan struct{}

	closeOnce sync.Once
}

// NewActor creates an actor for ctrl. A queueSize <= 0 uses
// DefaultQueueSize.
func NewActor(ctrl *Controller, queueSize int) *Actor {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Actor{
		ctrl:  ctrl,
		queue: make(chan *command, queueSize),
		done:  make(chan struct{}),
	}
}

// ID returns the surface the actor's controller draws into.
func (a *Actor) ID() SurfaceID {
	return a.ctrl.state.Surface.ID()
}

// Run processes commands until ctx is cancelled or Close is called.
func (a *Actor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			a.drain(ctx.Err())
			return
		case <-a.done:
			a.drain(ErrActorClosed)
			return
		case cmd := <-a.queue:
			cmd.result <- a.execute(cmd)
			close(cmd.result)
		}
	}
}

// execute runs a single command with panic recovery.
func (a *Actor) execute(cmd *command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("editor: command panicked: %v", r)
		}
	}()
	return cmd.fn(a.ctrl)
}

// drain fails every queued command with err.
func (a *Actor) drain(err error) {
	for {
		select {
		case cmd := <-a.queue:
			cmd.result <- err
			close(cmd.result)
		default:
			return
		}
	}
}

// Do runs fn on the actor goroutine and waits for it to finish. If ctx is
// cancelled or the actor closed while waiting, Do returns early and the
// queued command may still run.
func (a *Actor) Do(ctx context.Context, fn func(*Controller) error) error {
	if a.closed.Load() {
		return ErrActorClosed
	}

	cmd := &command{fn: fn, result: make(chan error, 1)}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.done:
		return ErrActorClosed
	case a.queue <- cmd:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.done:
		return ErrActorClosed
	case err, ok := <-cmd.result:
		if !ok {
			return ErrActorClosed
		}
		return err
	}
}

// Close stops the actor. Queued commands fail with ErrActorClosed.
func (a *Actor) Close() {
	a.closeOnce.Do(func() {
		a.closed.Store(true)
		close(a.done)
	})
}

// IsClosed reports whether Close has been called.
func (a *Actor) IsClosed() bool {
	return a.closed.Load()
}

// With finds the actor for id and runs fn on it.
func With(ctx context.Context, l Lookup, id SurfaceID, fn func(*Controller) error) error {
	a, ok := l.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSurface, id)
	}
	return a.Do(ctx, fn)
}
