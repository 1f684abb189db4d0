package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/midgard-vr/internal/engine/camera"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu/gputest"
	"github.com/Faultbox/midgard-vr/internal/engine/hmd"
	"github.com/Faultbox/midgard-vr/internal/engine/mesh"
	"github.com/Faultbox/midgard-vr/internal/engine/scene"
	"github.com/Faultbox/midgard-vr/internal/engine/shader"
	"github.com/Faultbox/midgard-vr/internal/logger"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

const outputFBO = 99

type fixture struct {
	ctx   *gpu.Context
	rec   *gputest.Recorder
	cam   *camera.HMDCamera
	scene *scene.Scene
	node  *scene.Node
}

func newFixture(t *testing.T, openDevice bool) *fixture {
	t.Helper()
	rec := gputest.New()
	ctx := gpu.NewContext(rec)
	t.Cleanup(ctx.Start())

	var h *hmd.HMD
	if openDevice {
		h = hmd.New(hmd.NewDummy())
		require.NoError(t, h.Open())
	} else {
		h = hmd.New(nil)
	}
	cam := camera.NewHMD(camera.Config{}, h)
	cam.UpdateView()

	sh, err := shader.New(ctx, "mvp_uv.vert", "texture_uv.frag")
	require.NoError(t, err)
	m, err := mesh.New(ctx, mesh.Sphere(10, 20, 20))
	require.NoError(t, err)
	node := scene.NewMeshNode(ctx, sh, m)

	s := scene.New(ctx, cam, nil)
	s.AppendNode(node)
	return &fixture{ctx: ctx, rec: rec, cam: cam, scene: s, node: node}
}

func TestInitStereoUsesHMDEyeSize(t *testing.T) {
	f := newFixture(t, true)
	r := New(f.ctx, DefaultConfig())

	require.NoError(t, r.InitStereo(f.cam))

	w, h := r.EyeSize()
	assert.EqualValues(t, 640, w)
	assert.EqualValues(t, 800, h)
	w, h = r.OutputSize()
	assert.EqualValues(t, 1280, w)
	assert.EqualValues(t, 800, h)
	assert.Equal(t, 2, f.rec.Live(gputest.KindFramebuffer))

	left, right := r.EyeTextures()
	assert.NotZero(t, left)
	assert.NotEqual(t, left, right)

	calls := len(f.rec.Calls())
	require.NoError(t, r.InitStereo(f.cam))
	assert.Equal(t, calls, len(f.rec.Calls()))
}

func TestInitStereoWithoutDeviceUsesConfig(t *testing.T) {
	f := newFixture(t, false)
	r := New(f.ctx, DefaultConfig())

	require.NoError(t, r.InitStereo(f.cam))
	w, h := r.EyeSize()
	assert.EqualValues(t, 960, w)
	assert.EqualValues(t, 1080, h)
	assert.InDelta(t, 960.0/1080.0, f.cam.Aspect, 1e-6)
}

func TestInitStereoKeepsDeviceAspect(t *testing.T) {
	f := newFixture(t, true)
	want := f.cam.Aspect
	r := New(f.ctx, Config{Mode: ModeStereo, EyeWidth: 100, EyeHeight: 400})

	require.NoError(t, r.InitStereo(f.cam))
	assert.Equal(t, want, f.cam.Aspect)
}

func TestDrawStereo(t *testing.T) {
	f := newFixture(t, true)
	r := New(f.ctx, DefaultConfig())
	require.NoError(t, r.InitStereo(f.cam))
	left, right := r.EyeTextures()

	f.ctx.Run(func(gl gpu.GL) {
		gl.BindFramebuffer(gpu.Framebuffer, outputFBO)
		r.Draw(f.scene)
	})

	draws := f.rec.Draws()
	require.Len(t, draws, 4)

	sceneProgram := f.node.Shader().Program()
	assert.Equal(t, sceneProgram, draws[0].Program)
	assert.Equal(t, sceneProgram, draws[1].Program)
	assert.NotEqual(t, draws[0].Framebuffer, draws[1].Framebuffer)
	assert.NotEqual(t, uint32(outputFBO), draws[0].Framebuffer)
	assert.EqualValues(t, 20*20*6, draws[0].Count)

	for _, d := range draws[2:] {
		assert.Equal(t, uint32(outputFBO), d.Framebuffer)
		assert.Equal(t, gpu.TriangleStrip, d.Mode)
	}
	assert.Equal(t, left, draws[2].Textures[0])
	assert.Equal(t, right, draws[3].Textures[0])

	viewports := f.rec.Viewports()
	require.GreaterOrEqual(t, len(viewports), 4)
	n := len(viewports)
	assert.Equal(t, [4]int32{0, 0, 640, 800}, viewports[n-2])
	assert.Equal(t, [4]int32{640, 0, 640, 800}, viewports[n-1])

	mvp, ok := f.rec.Uniform(sceneProgram, "mvp")
	require.True(t, ok)
	assert.Equal(t, [16]float32(f.cam.RightVP()), mvp)

	composite := draws[2].Program
	ortho, ok := f.rec.Uniform(composite, "mvp")
	require.True(t, ok)
	assert.Equal(t, [16]float32(math.Ortho(-0.8, 0.8, -1, 1, -1, 1)), ortho)

	assert.Equal(t, uint32(outputFBO), f.rec.CurrentFramebuffer())
}

func TestDrawFallsBackToMono(t *testing.T) {
	f := newFixture(t, true)

	mono := New(f.ctx, Config{Mode: ModeMono})
	f.ctx.Run(func(gpu.GL) { mono.Draw(f.scene) })
	require.Len(t, f.rec.Draws(), 1)
	assert.Zero(t, f.rec.Live(gputest.KindFramebuffer))

	mvp, ok := f.rec.Uniform(f.node.Shader().Program(), "mvp")
	require.True(t, ok)
	assert.Equal(t, [16]float32(f.cam.MVP()), mvp)

	f.rec.Reset()
	uninitialized := New(f.ctx, DefaultConfig())
	f.ctx.Run(func(gpu.GL) { uninitialized.Draw(f.scene) })
	assert.Len(t, f.rec.Draws(), 1)
}

func TestIncompleteFramebufferIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger.UseCore(core)
	defer logger.UseCore(zapcore.NewNopCore())

	f := newFixture(t, true)
	f.rec.Incomplete = true
	r := New(f.ctx, DefaultConfig())

	require.NoError(t, r.InitStereo(f.cam))
	assert.Equal(t, 2, logs.FilterMessage("creating framebuffer").Len())

	f.ctx.Run(func(gpu.GL) { r.Draw(f.scene) })
	assert.Len(t, f.rec.Draws(), 4)
}

func TestInitStereoShaderFailure(t *testing.T) {
	f := newFixture(t, true)
	f.rec.FailCompile = true
	r := New(f.ctx, DefaultConfig())

	err := r.InitStereo(f.cam)
	assert.ErrorIs(t, err, shader.ErrCompile)
	assert.Zero(t, f.rec.Live(gputest.KindFramebuffer))

	left, right := r.EyeTextures()
	assert.Zero(t, left)
	assert.Zero(t, right)

	// A retry after the failure allocates exactly one pair of eye targets.
	f.rec.FailCompile = false
	require.NoError(t, r.InitStereo(f.cam))
	assert.Equal(t, 2, f.rec.Live(gputest.KindFramebuffer))

	r.Destroy()
	assert.Zero(t, f.rec.Live(gputest.KindFramebuffer))
	assert.Empty(t, f.rec.DoubleFrees())
}

func TestDestroy(t *testing.T) {
	f := newFixture(t, true)
	r := New(f.ctx, DefaultConfig())
	require.NoError(t, r.InitStereo(f.cam))

	r.Destroy()
	f.scene.Destroy()

	assert.Zero(t, f.rec.Live(gputest.KindFramebuffer))
	assert.Zero(t, f.rec.Live(gputest.KindTexture))
	assert.Zero(t, f.rec.Live(gputest.KindRenderbuffer))
	assert.Zero(t, f.rec.Live(gputest.KindProgram))
	assert.Zero(t, f.rec.Live(gputest.KindVertexArray))
	assert.Empty(t, f.rec.DoubleFrees())
	assert.EqualValues(t, 1, f.ctx.Refs())

	r.Destroy()
}
