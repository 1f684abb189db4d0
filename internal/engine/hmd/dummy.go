package hmd

import (
	"fmt"
	"sync"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-vr/pkg/math"
)

func init() {
	Register("dummy", func() Driver { return NewDummy() })
}

// Geometry of the dummy headset, matching a DK1-class display.
const (
	dummyHRes           = 1280
	dummyVRes           = 800
	dummyHSize          = 0.149760
	dummyVSize          = 0.093600
	dummyLensSeparation = 0.063500
	dummyLensVPosition  = 0.046800
	dummyFOVDegrees     = 125.5144432
	dummyIPD            = 0.061
	dummyZNear          = 0.1
	dummyZFar           = 1000
)

// Dummy is a driver exposing one simulated headset. It needs no hardware and
// is the default for desktop viewing.
type Dummy struct {
	mu     sync.Mutex
	spin   float32
	opened []*dummyDevice
}

// NewDummy returns the dummy driver.
func NewDummy() *Dummy {
	return &Dummy{}
}

// SetSpin makes every Update yaw the open devices by radians.
func (d *Dummy) SetSpin(radians float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spin = radians
}

// SetRotation sets the pose of every open device.
func (d *Dummy) SetRotation(q math.Quat) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, dev := range d.opened {
		dev.mu.Lock()
		dev.rotation = q
		dev.mu.Unlock()
	}
}

func (d *Dummy) Name() string { return "dummy" }

func (d *Dummy) Probe() ([]DeviceInfo, error) {
	return []DeviceInfo{{Vendor: "OpenHMD", Product: "Dummy Device", Path: "(none)"}}, nil
}

func (d *Dummy) Open(index int) (Device, error) {
	if index != 0 {
		return nil, fmt.Errorf("dummy: no device at index %d", index)
	}
	dev := newDummyDevice()
	d.mu.Lock()
	d.opened = append(d.opened, dev)
	d.mu.Unlock()
	return dev, nil
}

func (d *Dummy) Update() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.spin == 0 {
		return nil
	}
	step := math.QuatFromAxisAngle(math.Vec3{Y: 1}, d.spin)
	for _, dev := range d.opened {
		dev.mu.Lock()
		dev.rotation = dev.rotation.Mul(step).Normalize()
		dev.mu.Unlock()
	}
	return nil
}

func (d *Dummy) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = nil
	return nil
}

type dummyDevice struct {
	mu       sync.Mutex
	rotation math.Quat
	position math.Vec3
	ipd      float32

	fov       float32
	aspect    float32
	projLeft  math.Mat4
	projRight math.Mat4
}

func newDummyDevice() *dummyDevice {
	dev := &dummyDevice{
		rotation: math.QuatIdentity(),
		ipd:      dummyIPD,
		fov:      dummyFOVDegrees * math32.Pi / 180,
		aspect:   float32(dummyHRes/2) / float32(dummyVRes),
	}

	// Each eye looks through a lens that is not centered on its half of the
	// screen; shift the projection by the lens offset.
	screenCenter := float32(dummyHSize / 4)
	lensShift := screenCenter - dummyLensSeparation/2
	offset := 4 * lensShift / dummyHSize

	base := math.Perspective(dev.fov, dev.aspect, dummyZNear, dummyZFar)
	dev.projLeft = math.Translate(offset, 0, 0).Mul(base)
	dev.projRight = math.Translate(-offset, 0, 0).Mul(base)
	return dev
}

// modelView returns the eye's view matrix: the inverse head pose followed by
// half the IPD along X.
func (dev *dummyDevice) modelView(shift float32) math.Mat4 {
	p := dev.position
	view := dev.rotation.Conjugate().ToMat4().Mul(math.Translate(-p.X, -p.Y, -p.Z))
	return math.Translate(shift, 0, 0).Mul(view)
}

func (dev *dummyDevice) Float(p FloatProperty, out []float32) error {
	if len(out) < p.Len() {
		return fmt.Errorf("dummy: %s needs %d values, got %d", p, p.Len(), len(out))
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()

	switch p {
	case RotationQuat:
		copy(out, []float32{dev.rotation.X, dev.rotation.Y, dev.rotation.Z, dev.rotation.W})
	case PositionVector:
		copy(out, []float32{dev.position.X, dev.position.Y, dev.position.Z})
	case LeftEyeGLModelView:
		m := dev.modelView(dev.ipd / 2)
		copy(out, m[:])
	case RightEyeGLModelView:
		m := dev.modelView(-dev.ipd / 2)
		copy(out, m[:])
	case LeftEyeGLProjection:
		copy(out, dev.projLeft[:])
	case RightEyeGLProjection:
		copy(out, dev.projRight[:])
	case LeftEyeFOV, RightEyeFOV:
		out[0] = dev.fov
	case LeftEyeAspectRatio, RightEyeAspectRatio:
		out[0] = dev.aspect
	case EyeIPD:
		out[0] = dev.ipd
	case ProjectionZFar:
		out[0] = dummyZFar
	case ProjectionZNear:
		out[0] = dummyZNear
	case DistortionK:
		copy(out, []float32{0, 0, 0, 0, 0, 0})
	case ScreenHorizontalSize:
		out[0] = dummyHSize
	case ScreenVerticalSize:
		out[0] = dummyVSize
	case LensHorizontalSeparation:
		out[0] = dummyLensSeparation
	case LensVerticalPosition:
		out[0] = dummyLensVPosition
	default:
		return fmt.Errorf("dummy: %s: %w", p, ErrUnsupported)
	}
	return nil
}

func (dev *dummyDevice) SetFloat(p FloatProperty, in []float32) error {
	if len(in) < p.Len() {
		return fmt.Errorf("dummy: %s needs %d values, got %d", p, p.Len(), len(in))
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()

	switch p {
	case RotationQuat:
		dev.rotation = math.Quat{X: in[0], Y: in[1], Z: in[2], W: in[3]}
	case PositionVector:
		dev.position = math.Vec3{X: in[0], Y: in[1], Z: in[2]}
	case EyeIPD:
		dev.ipd = in[0]
	default:
		return fmt.Errorf("dummy: setting %s: %w", p, ErrUnsupported)
	}
	return nil
}

func (dev *dummyDevice) Int(p IntProperty) (int32, error) {
	switch p {
	case ScreenHorizontalResolution:
		return dummyHRes, nil
	case ScreenVerticalResolution:
		return dummyVRes, nil
	}
	return 0, fmt.Errorf("dummy: int property %d: %w", int(p), ErrUnsupported)
}

func (dev *dummyDevice) Close() error { return nil }
