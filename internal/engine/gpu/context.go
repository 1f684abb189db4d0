package gpu

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/logger"
)

type call struct {
	fn   func(GL)
	done chan struct{}
}

// Context is the GL context shared by meshes, shaders, scenes and renderers.
// It is reference counted; the component that created it holds the first
// reference and the others Ref it for as long as they keep GPU objects alive.
//
// Work submitted with Run executes on whichever goroutine serves the context
// (Serve, Drain or Start). That goroutine must be locked to the OS thread the
// GL context is current on.
type Context struct {
	gl    GL
	calls chan call
	refs  atomic.Int32

	closeOnce sync.Once
	closed    chan struct{}
}

// NewContext wraps a GL function table. The returned context holds one reference.
func NewContext(gl GL) *Context {
	c := &Context{
		gl:     gl,
		calls:  make(chan call),
		closed: make(chan struct{}),
	}
	c.refs.Store(1)
	return c
}

// GL returns the function table. Only code already running on the GL thread
// may call it.
func (c *Context) GL() GL {
	return c.gl
}

// Ref takes a reference and returns c for chaining.
func (c *Context) Ref() *Context {
	c.refs.Add(1)
	return c
}

// Unref drops a reference. Dropping the last one closes the context and
// makes further Run calls no-ops.
func (c *Context) Unref() {
	n := c.refs.Add(-1)
	switch {
	case n == 0:
		c.Close()
	case n < 0:
		logger.Named("gpu").Error("context unreferenced too many times", zap.Int32("refs", n))
	}
}

// Refs returns the current reference count.
func (c *Context) Refs() int32 {
	return c.refs.Load()
}

// Close stops accepting work. Pending Run calls return without executing.
func (c *Context) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

// Run executes fn on the GL thread and waits for it to complete. It must not
// be called from the GL thread itself; code already running there uses GL
// directly. Calling Run on a closed context logs and returns.
func (c *Context) Run(fn func(gl GL)) {
	done := make(chan struct{})
	select {
	case c.calls <- call{fn: fn, done: done}:
	case <-c.closed:
		logger.Named("gpu").Warn("dropping GL call on closed context")
		return
	}
	<-done
}

// Serve processes Run calls until ctx is cancelled or the context is closed.
func (c *Context) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.closed:
			return nil
		case cl := <-c.calls:
			c.exec(cl)
		}
	}
}

// Drain executes every Run call currently waiting and returns how many ran.
// Render loops that own the GL thread call it once per frame.
func (c *Context) Drain() int {
	n := 0
	for {
		select {
		case cl := <-c.calls:
			c.exec(cl)
			n++
		default:
			return n
		}
	}
}

// Start serves the context from a dedicated OS-locked goroutine and returns
// a function that stops it. Used when no window owns the GL thread.
func (c *Context) Start() (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(done)
		_ = c.Serve(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

func (c *Context) exec(cl call) {
	defer close(cl.done)
	defer func() {
		if r := recover(); r != nil {
			logger.Named("gpu").Error("panic in GL call", zap.Any("panic", r))
		}
	}()
	cl.fn(c.gl)
}
