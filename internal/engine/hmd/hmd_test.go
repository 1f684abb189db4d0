package hmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/midgard-vr/internal/logger"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

type emptyDriver struct{}

func (emptyDriver) Name() string                 { return "empty" }
func (emptyDriver) Probe() ([]DeviceInfo, error) { return nil, nil }
func (emptyDriver) Open(int) (Device, error)     { return nil, errors.New("nothing to open") }
func (emptyDriver) Update() error                { return nil }
func (emptyDriver) Close() error                 { return nil }

func openDummy(t *testing.T) (*HMD, *Dummy) {
	t.Helper()
	driver := NewDummy()
	h := New(driver)
	require.NoError(t, h.Open())
	t.Cleanup(func() { _ = h.Close() })
	return h, driver
}

func TestOpenDummyGeometry(t *testing.T) {
	h, _ := openDummy(t)

	assert.True(t, h.IsOpen())
	assert.Equal(t, "Dummy Device", h.Info().Product)

	w, hgt := h.ScreenSize()
	assert.Equal(t, int32(1280), w)
	assert.Equal(t, int32(800), hgt)

	ew, eh := h.EyeSize()
	assert.Equal(t, int32(640), ew)
	assert.Equal(t, int32(800), eh)
	assert.InDelta(t, 0.8, h.EyeAspect(), 1e-6)

	assert.InDelta(t, 0.061, h.IPD(), 1e-6)
	near, far := h.NearFar()
	assert.InDelta(t, 0.1, near, 1e-6)
	assert.InDelta(t, 1000, far, 1e-3)
	assert.InDelta(t, 125.5144432*3.14159265/180, h.FOV(), 1e-4)
	assert.Greater(t, h.DPI(), float32(0))
}

func TestOpenLogsGeometry(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.UseCore(core)
	defer logger.UseCore(zapcore.NewNopCore())

	h := New(NewDummy())
	require.NoError(t, h.Open())

	opened := logs.FilterMessage("HMD opened").All()
	require.Len(t, opened, 1)
	fields := opened[0].ContextMap()
	assert.Equal(t, int32(1280), fields["width"])
	assert.Equal(t, int32(800), fields["height"])
	assert.Equal(t, 1, logs.FilterMessage("HMD device").Len())
}

func TestOpenWithoutDevices(t *testing.T) {
	h := New(emptyDriver{})
	err := h.Open()
	assert.ErrorIs(t, err, ErrNoDevice)
	assert.False(t, h.IsOpen())

	assert.Equal(t, math.Identity(), h.EyeMatrix(LeftEye, Projection))
	assert.Equal(t, math.Identity(), h.EyeMatrix(RightEye, ModelView))
	assert.Equal(t, math.QuatIdentity(), h.OrientationQuaternion())
	assert.Equal(t, float32(1), h.EyeAspect())

	assert.ErrorIs(t, New(nil).Open(), ErrNoDevice)
}

func TestEyeModelViewsShiftByHalfIPD(t *testing.T) {
	h, _ := openDummy(t)

	left := h.EyeMatrix(LeftEye, ModelView)
	right := h.EyeMatrix(RightEye, ModelView)

	assert.InDelta(t, 0.0305, left[12], 1e-6)
	assert.InDelta(t, -0.0305, right[12], 1e-6)
	for i := 0; i < 12; i++ {
		assert.InDelta(t, left[i], right[i], 1e-6, "rotation part %d", i)
	}
}

func TestEyeProjectionsAreMirrored(t *testing.T) {
	h, _ := openDummy(t)

	left := h.EyeMatrix(LeftEye, Projection)
	right := h.EyeMatrix(RightEye, Projection)

	assert.NotZero(t, left[8])
	assert.InDelta(t, -left[8], right[8], 1e-6)
	assert.InDelta(t, left[0], right[0], 1e-6)
	assert.InDelta(t, left[5], right[5], 1e-6)
	assert.Equal(t, float32(-1), left[11])
}

func TestOrientationNegatesY(t *testing.T) {
	h, driver := openDummy(t)
	driver.SetRotation(math.Quat{X: 0.1, Y: 0.2, Z: 0.3, W: 0.9})

	q := h.OrientationQuaternion()
	assert.Equal(t, math.Quat{X: 0.1, Y: -0.2, Z: 0.3, W: 0.9}, q)
}

func TestDummySpinAndReset(t *testing.T) {
	h, driver := openDummy(t)
	driver.SetSpin(0.1)

	h.Update()
	q := h.OrientationQuaternion()
	assert.NotEqual(t, math.QuatIdentity(), q)
	assert.InDelta(t, 0, q.X, 1e-6)
	assert.InDelta(t, 0, q.Z, 1e-6)

	h.Reset()
	assert.Equal(t, math.QuatIdentity(), h.OrientationQuaternion())
}

func TestEyeSeparationAccumulates(t *testing.T) {
	h := New(nil)
	assert.Equal(t, DefaultEyeSeparation, h.EyeSeparation())

	for i := 0; i < 5; i++ {
		h.AdjustEyeSeparation(EyeSeparationStep)
	}
	for i := 0; i < 2; i++ {
		h.AdjustEyeSeparation(-EyeSeparationStep)
	}
	assert.InDelta(t, 0.65+0.1*3, h.EyeSeparation(), 1e-5)
}

func TestDummyPropertyErrors(t *testing.T) {
	h, _ := openDummy(t)

	var short [4]float32
	assert.Error(t, h.device.Float(LeftEyeGLProjection, short[:]))
	assert.ErrorIs(t, h.device.SetFloat(ProjectionZFar, []float32{5}), ErrUnsupported)

	_, err := NewDummy().Open(1)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	assert.Contains(t, Drivers(), "dummy")

	d, err := NewDriver("dummy")
	require.NoError(t, err)
	assert.Equal(t, "dummy", d.Name())

	_, err = NewDriver("nope")
	assert.Error(t, err)
}
