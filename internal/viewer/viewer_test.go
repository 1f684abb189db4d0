package viewer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/midgard-vr/internal/config"
	"github.com/Faultbox/midgard-vr/internal/element"
	"github.com/Faultbox/midgard-vr/internal/engine/camera"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu/gputest"
	"github.com/Faultbox/midgard-vr/internal/engine/hmd"
	"github.com/Faultbox/midgard-vr/internal/engine/navigation"
	"github.com/Faultbox/midgard-vr/internal/logger"
)

func newContext(t *testing.T) (*gpu.Context, *gputest.Recorder) {
	t.Helper()
	rec := gputest.New()
	ctx := gpu.NewContext(rec)
	t.Cleanup(ctx.Start())
	return ctx, rec
}

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Source.Width, cfg.Source.Height = 64, 32
	return cfg
}

func TestOpenHMD(t *testing.T) {
	cfg := config.Default().HMD
	h := OpenHMD(cfg)
	require.True(t, h.IsOpen())
	assert.InDelta(t, hmd.DefaultEyeSeparation, h.EyeSeparation(), 1e-6)

	cfg.EyeSeparation = 0.5
	h = OpenHMD(cfg)
	assert.InDelta(t, 0.5, h.EyeSeparation(), 1e-6)

	cfg.Driver = "openvr"
	h = OpenHMD(cfg)
	assert.False(t, h.IsOpen())
	sw, sh := h.ScreenSize()
	assert.Zero(t, sw)
	assert.Zero(t, sh)
}

// stuckDriver has no devices and fails to shut down.
type stuckDriver struct{}

func (stuckDriver) Name() string                     { return "stuck" }
func (stuckDriver) Probe() ([]hmd.DeviceInfo, error) { return nil, nil }
func (stuckDriver) Open(int) (hmd.Device, error)     { return nil, hmd.ErrNoDevice }
func (stuckDriver) Update() error                    { return nil }
func (stuckDriver) Close() error                     { return errors.New("device busy") }

func TestCloseHMDLogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger.UseCore(core)
	defer logger.UseCore(zapcore.NewNopCore())

	CloseHMD(hmd.New(stuckDriver{}))
	entries := logs.FilterMessage("closing HMD failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "device busy", entries[0].ContextMap()["error"])

	CloseHMD(nil)
	CloseHMD(hmd.New(nil))
	assert.Equal(t, 1, logs.Len())
}

func TestPipelineCompositor(t *testing.T) {
	ctx, rec := newContext(t)
	cfg := smallConfig()

	p, err := NewPipeline(ctx, cfg, OpenHMD(cfg.HMD))
	require.NoError(t, err)
	require.Len(t, p.Elements(), 1)
	assert.IsType(t, &element.Compositor{}, p.Elements()[0])

	w, h := p.Output().Size()
	assert.EqualValues(t, 1280, w)
	assert.EqualValues(t, 800, h)
	assert.Len(t, p.Shaders(), 1)

	var tex uint32
	ctx.Run(func(gpu.GL) {
		tex = p.Frame(time.Second)
	})
	assert.Equal(t, p.Output().ColorTexture(), tex)

	assert.ErrorIs(t, p.NavigationEvent(navigation.Event{Type: navigation.EventKeyPress, Key: navigation.KeyEscape}), element.ErrEOS)
	assert.NoError(t, p.NavigationEvent(navigation.Event{Type: navigation.EventKeyPress, Key: navigation.KeyTab}))

	p.Stop()
	assert.Zero(t, rec.Live(gputest.KindFramebuffer))
	assert.Zero(t, rec.Live(gputest.KindTexture))
	assert.Zero(t, rec.Live(gputest.KindProgram))
	assert.Equal(t, int32(1), ctx.Refs())
}

func TestPipelineWarpChain(t *testing.T) {
	ctx, rec := newContext(t)
	cfg := smallConfig()
	cfg.Render.Warp = true

	p, err := NewPipeline(ctx, cfg, OpenHMD(cfg.HMD))
	require.NoError(t, err)
	defer p.Stop()

	require.Len(t, p.Elements(), 2)
	warp, ok := p.Elements()[1].(*element.Warp)
	require.True(t, ok)
	assert.Same(t, warp.Output(), p.Output())

	w, h := warp.OutputSize()
	assert.EqualValues(t, 1280, w, "warp takes the compositor output size")
	assert.EqualValues(t, 800, h)

	rec.Reset()
	var tex uint32
	ctx.Run(func(gpu.GL) {
		tex = p.Frame(0)
	})
	assert.Equal(t, warp.Output().ColorTexture(), tex)

	draws := rec.Draws()
	require.NotEmpty(t, draws)
	last := draws[len(draws)-1]
	assert.Equal(t, p.Elements()[0].Output().ColorTexture(), last.Textures[0], "warp samples the compositor")
}

func TestPipelineCameraSelection(t *testing.T) {
	ctx, _ := newContext(t)
	cfg := smallConfig()
	cfg.Camera.Type = "arcball"
	cfg.Camera.Arcball.CenterDistance = 3

	p, err := NewPipeline(ctx, cfg, OpenHMD(cfg.HMD))
	require.NoError(t, err)
	defer p.Stop()

	c := p.Elements()[0].(*element.Compositor)
	a, ok := c.Camera().(*camera.Arcball)
	require.True(t, ok)
	assert.InDelta(t, 3, a.CenterDistance, 1e-6)

	w, h := p.Output().Size()
	assert.EqualValues(t, 640, w, "mono output is one eye")
	assert.EqualValues(t, 800, h)
}

func TestPipelinePointCloud(t *testing.T) {
	ctx, _ := newContext(t)
	cfg := smallConfig()
	cfg.Scene.Element = "pointcloud"
	cfg.Camera.Arcball.Theta = 4.5

	p, err := NewPipeline(ctx, cfg, hmd.New(nil))
	require.NoError(t, err)
	defer p.Stop()

	pc := p.Elements()[0].(*element.PointCloud)
	assert.InDelta(t, 4.5, pc.Camera().Theta, 1e-6)
	w, h := pc.OutputSize()
	assert.EqualValues(t, 64, w, "point cloud renders at the source size")
	assert.EqualValues(t, 32, h)
}

func TestPipelineErrors(t *testing.T) {
	ctx, rec := newContext(t)

	cfg := smallConfig()
	cfg.Source.Type = "image"
	cfg.Source.Path = "testdata/missing.png"
	_, err := NewPipeline(ctx, cfg, hmd.New(nil))
	assert.Error(t, err)

	cfg = smallConfig()
	cfg.Scene.Element = "blur"
	_, err = NewPipeline(ctx, cfg, hmd.New(nil))
	assert.Error(t, err)

	cfg = smallConfig()
	cfg.Scene.MeshPath = "testdata/missing.gltf"
	_, err = NewPipeline(ctx, cfg, hmd.New(nil))
	assert.Error(t, err)

	assert.Zero(t, rec.Live(gputest.KindTexture))
	assert.Zero(t, rec.Live(gputest.KindProgram))
	assert.Equal(t, int32(1), ctx.Refs())
}

func TestLetterbox(t *testing.T) {
	tests := []struct {
		name                   string
		srcW, srcH, dstW, dstH int32
		want                   [4]int32
	}{
		{"same aspect", 1280, 800, 1280, 800, [4]int32{0, 0, 1280, 800}},
		{"wider source", 2000, 500, 1000, 1000, [4]int32{0, 375, 1000, 250}},
		{"taller source", 500, 1000, 1000, 1000, [4]int32{250, 0, 500, 1000}},
		{"empty source", 0, 0, 800, 600, [4]int32{0, 0, 800, 600}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, w, h := letterbox(tt.srcW, tt.srcH, tt.dstW, tt.dstH)
			assert.Equal(t, tt.want, [4]int32{x, y, w, h})
		})
	}
}

func TestPresenter(t *testing.T) {
	ctx, rec := newContext(t)

	p, err := newPresenter(ctx)
	require.NoError(t, err)

	rec.Reset()
	ctx.Run(func(gpu.GL) {
		p.draw(42, 2560, 800, 1280, 800)
	})

	draws := rec.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(0), draws[0].Framebuffer)
	assert.Equal(t, uint32(42), draws[0].Textures[0])

	vps := rec.Viewports()
	require.Len(t, vps, 2)
	assert.Equal(t, [4]int32{0, 0, 1280, 800}, vps[0])
	assert.Equal(t, [4]int32{0, 200, 1280, 400}, vps[1])

	p.destroy()
	assert.Zero(t, rec.Live(gputest.KindProgram))
	assert.Equal(t, int32(1), ctx.Refs())
}
