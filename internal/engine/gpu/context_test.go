package gpu_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu/gputest"
)

func TestRunBlocksUntilExecuted(t *testing.T) {
	rec := gputest.New()
	ctx := gpu.NewContext(rec)
	stop := ctx.Start()
	defer stop()

	var vao uint32
	ctx.Run(func(gl gpu.GL) {
		vao = gl.GenVertexArray()
	})

	assert.NotZero(t, vao)
	assert.True(t, rec.IsLive(gputest.KindVertexArray, vao))
}

func TestRunFromManyGoroutines(t *testing.T) {
	rec := gputest.New()
	ctx := gpu.NewContext(rec)
	stop := ctx.Start()
	defer stop()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx.Run(func(gl gpu.GL) { gl.GenBuffer() })
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, rec.Live(gputest.KindBuffer))
}

func TestDrain(t *testing.T) {
	rec := gputest.New()
	ctx := gpu.NewContext(rec)

	done := make(chan struct{})
	go func() {
		ctx.Run(func(gl gpu.GL) { gl.GenTexture() })
		close(done)
	}()

	// Keep draining until the submitted call has run.
	for ran := 0; ran == 0; {
		ran = ctx.Drain()
	}
	<-done
	assert.Equal(t, 1, rec.Live(gputest.KindTexture))
}

func TestRefCounting(t *testing.T) {
	ctx := gpu.NewContext(gputest.New())
	require.EqualValues(t, 1, ctx.Refs())

	ctx.Ref().Ref()
	assert.EqualValues(t, 3, ctx.Refs())

	ctx.Unref()
	ctx.Unref()
	ctx.Unref()
	assert.EqualValues(t, 0, ctx.Refs())

	// Closed contexts drop work instead of blocking.
	called := false
	ctx.Run(func(gpu.GL) { called = true })
	assert.False(t, called)
}

func TestPanicInCallIsRecovered(t *testing.T) {
	ctx := gpu.NewContext(gputest.New())
	stop := ctx.Start()
	defer stop()

	ctx.Run(func(gpu.GL) { panic("boom") })

	ran := false
	ctx.Run(func(gpu.GL) { ran = true })
	assert.True(t, ran, "context should keep serving after a panicking call")
}
