package source

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu/gputest"
)

func newContext(t *testing.T) (*gpu.Context, *gputest.Recorder) {
	t.Helper()
	rec := gputest.New()
	ctx := gpu.NewContext(rec)
	t.Cleanup(ctx.Start())
	return ctx, rec
}

func TestPattern(t *testing.T) {
	img := Pattern(64, 32)
	require.Equal(t, image.Rect(0, 0, 64, 32), img.Bounds())

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	assert.Equal(t, white, img.RGBAAt(0, 5), "prime meridian")
	assert.Equal(t, white, img.RGBAAt(32, 5), "antimeridian")
	assert.Equal(t, white, img.RGBAAt(10, 16), "equator")

	assert.Equal(t, color.RGBA{R: 60, G: 120, B: 220, A: 255}, img.RGBAAt(1, 1), "polar band")
	assert.Equal(t, color.RGBA{R: 30, G: 60, B: 110, A: 255}, img.RGBAAt(5, 1), "polar band, dark cell")
	assert.Equal(t, color.RGBA{R: 115, G: 90, B: 30, A: 255}, img.RGBAAt(1, 12), "tropical band, dark cell")
}

func TestNewDefaultsToPattern(t *testing.T) {
	ctx, rec := newContext(t)

	src, err := New(ctx, Config{})
	require.NoError(t, err)
	w, h := src.Size()
	assert.Equal(t, 2048, w)
	assert.Equal(t, 1024, h)

	id := src.Frame(0)
	assert.NotZero(t, id)
	assert.Equal(t, id, src.Frame(time.Second))
	assert.True(t, rec.IsLive(gputest.KindTexture, id))

	src.Destroy()
	assert.False(t, rec.IsLive(gputest.KindTexture, id))
	assert.Equal(t, int32(1), ctx.Refs())
}

func TestNewUnknownKind(t *testing.T) {
	ctx, _ := newContext(t)
	_, err := New(ctx, Config{Kind: "video"})
	assert.Error(t, err)
}

func TestImageSource(t *testing.T) {
	ctx, rec := newContext(t)

	path := filepath.Join(t.TempDir(), "pano.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 2))))
	require.NoError(t, f.Close())

	src, err := New(ctx, Config{Kind: KindImage, Path: path, Width: 8, Height: 4})
	require.NoError(t, err)
	defer src.Destroy()

	w, h := src.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 4, h)
	assert.Equal(t, 1, rec.Live(gputest.KindTexture))

	_, err = New(ctx, Config{Kind: KindImage, Path: filepath.Join(t.TempDir(), "missing.png")})
	assert.Error(t, err)
}

func TestMandelbrotFrame(t *testing.T) {
	ctx, rec := newContext(t)

	src, err := New(ctx, Config{Kind: KindMandelbrot, Width: 400, Height: 200})
	require.NoError(t, err)
	m := src.(*Mandelbrot)

	var tex uint32
	ctx.Run(func(gpu.GL) {
		tex = m.Frame(1500 * time.Millisecond)
	})
	assert.Equal(t, m.fb.ColorTexture(), tex)

	draws := rec.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, m.fb.FBO(), draws[0].Framebuffer)
	assert.Equal(t, m.shader.Program(), draws[0].Program)

	v, ok := rec.Uniform(m.shader.Program(), "time")
	require.True(t, ok)
	assert.InDelta(t, 1.5, v, 1e-6)
	v, ok = rec.Uniform(m.shader.Program(), "aspect_ratio")
	require.True(t, ok)
	assert.InDelta(t, 2.0, v, 1e-6)

	assert.Equal(t, uint32(0), rec.CurrentFramebuffer(), "previous target restored")

	src.Destroy()
	assert.Zero(t, rec.Live(gputest.KindFramebuffer))
	assert.Zero(t, rec.Live(gputest.KindProgram))
	assert.Zero(t, rec.Live(gputest.KindVertexArray))
	assert.Equal(t, int32(1), ctx.Refs())
}
