// Package hmd adapts a head-mounted display driver to the renderer. It opens
// the first device a driver reports, caches its display geometry and hands
// out per-eye matrices and the head orientation.
package hmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/logger"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

// Eye selects one of the two stereo views.
type Eye int

const (
	LeftEye Eye = iota
	RightEye
)

func (e Eye) String() string {
	if e == RightEye {
		return "right"
	}
	return "left"
}

// MatrixKind selects which per-eye matrix to read.
type MatrixKind int

const (
	Projection MatrixKind = iota
	ModelView
)

// Eye separation defaults used by stereo cameras, in scene units.
const (
	DefaultEyeSeparation float32 = 0.65
	EyeSeparationStep    float32 = 0.1
)

// HMD wraps one opened device.
type HMD struct {
	driver Driver
	device Device
	info   DeviceInfo

	screenWidth  int32
	screenHeight int32

	hSize          float32
	vSize          float32
	lensSeparation float32
	lensVPosition  float32
	leftFOV        float32
	rightFOV       float32
	leftAspect     float32
	rightAspect    float32
	ipd            float32
	zNear          float32
	zFar           float32

	eyeSeparation float32
}

// New returns an adapter for driver. Nothing is opened until Open.
func New(driver Driver) *HMD {
	return &HMD{driver: driver, eyeSeparation: DefaultEyeSeparation}
}

// Open probes the driver and opens the first device. On failure the adapter
// stays usable with no device: matrices read as identity.
func (h *HMD) Open() error {
	log := logger.Named("hmd")
	if h.driver == nil {
		log.Error("no HMD driver configured")
		return ErrNoDevice
	}

	devices, err := h.driver.Probe()
	if err != nil {
		log.Error("probing HMD driver failed", zap.String("driver", h.driver.Name()), zap.Error(err))
		return fmt.Errorf("probe %s: %w", h.driver.Name(), err)
	}
	if len(devices) == 0 {
		log.Error("no HMD devices found", zap.String("driver", h.driver.Name()))
		return ErrNoDevice
	}

	for i, info := range devices {
		log.Info("HMD device",
			zap.Int("index", i),
			zap.String("vendor", info.Vendor),
			zap.String("product", info.Product),
			zap.String("path", info.Path))
	}

	device, err := h.driver.Open(0)
	if err != nil {
		log.Error("failed to open HMD device", zap.Error(err))
		return fmt.Errorf("open device 0: %w", err)
	}
	h.device = device
	h.info = devices[0]

	if err := h.readGeometry(); err != nil {
		log.Warn("HMD geometry incomplete", zap.Error(err))
	}

	log.Info("HMD opened",
		zap.Int32("width", h.screenWidth),
		zap.Int32("height", h.screenHeight),
		zap.Float32("hsize", h.hSize),
		zap.Float32("vsize", h.vSize),
		zap.Float32("dpi", h.DPI()),
		zap.Float32("lens_separation", h.lensSeparation),
		zap.Float32("lens_vposition", h.lensVPosition),
		zap.Float32("left_fov", h.leftFOV),
		zap.Float32("left_aspect", h.leftAspect),
		zap.Float32("right_fov", h.rightFOV),
		zap.Float32("right_aspect", h.rightAspect),
		zap.Float32("ipd", h.ipd),
		zap.Float32("znear", h.zNear),
		zap.Float32("zfar", h.zFar))
	return nil
}

func (h *HMD) readGeometry() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	w, err := h.device.Int(ScreenHorizontalResolution)
	keep(err)
	hgt, err := h.device.Int(ScreenVerticalResolution)
	keep(err)
	h.screenWidth, h.screenHeight = w, hgt

	scalar := func(p FloatProperty) float32 {
		var v [1]float32
		keep(h.device.Float(p, v[:]))
		return v[0]
	}
	h.hSize = scalar(ScreenHorizontalSize)
	h.vSize = scalar(ScreenVerticalSize)
	h.lensSeparation = scalar(LensHorizontalSeparation)
	h.lensVPosition = scalar(LensVerticalPosition)
	h.leftFOV = scalar(LeftEyeFOV)
	h.rightFOV = scalar(RightEyeFOV)
	h.leftAspect = scalar(LeftEyeAspectRatio)
	h.rightAspect = scalar(RightEyeAspectRatio)
	h.ipd = scalar(EyeIPD)
	h.zNear = scalar(ProjectionZNear)
	h.zFar = scalar(ProjectionZFar)
	return firstErr
}

// IsOpen reports whether a device was opened.
func (h *HMD) IsOpen() bool { return h.device != nil }

// Info returns the opened device's description.
func (h *HMD) Info() DeviceInfo { return h.info }

// Update polls the driver for fresh pose data.
func (h *HMD) Update() {
	if h.driver == nil || h.device == nil {
		logger.Named("hmd").Debug("update without device")
		return
	}
	if err := h.driver.Update(); err != nil {
		logger.Named("hmd").Warn("HMD update failed", zap.Error(err))
	}
}

// EyeMatrix returns the device's projection or model-view matrix for eye,
// column-major. Without a device it returns identity.
func (h *HMD) EyeMatrix(eye Eye, kind MatrixKind) math.Mat4 {
	if h.device == nil {
		logger.Named("hmd").Debug("eye matrix requested without device",
			zap.Stringer("eye", eye))
		return math.Identity()
	}

	var prop FloatProperty
	switch {
	case eye == LeftEye && kind == Projection:
		prop = LeftEyeGLProjection
	case eye == RightEye && kind == Projection:
		prop = RightEyeGLProjection
	case eye == LeftEye:
		prop = LeftEyeGLModelView
	default:
		prop = RightEyeGLModelView
	}

	var m math.Mat4
	if err := h.device.Float(prop, m[:]); err != nil {
		logger.Named("hmd").Warn("reading eye matrix failed",
			zap.Stringer("property", prop), zap.Error(err))
		return math.Identity()
	}
	return m
}

// OrientationQuaternion returns the head rotation with the Y component
// negated so it matches the scene's yaw direction.
func (h *HMD) OrientationQuaternion() math.Quat {
	if h.device == nil {
		return math.QuatIdentity()
	}
	var raw [4]float32
	if err := h.device.Float(RotationQuat, raw[:]); err != nil {
		logger.Named("hmd").Warn("reading rotation failed", zap.Error(err))
		return math.QuatIdentity()
	}
	return math.Quat{X: raw[0], Y: -raw[1], Z: raw[2], W: raw[3]}
}

// Reset zeroes the tracked pose where the device allows it.
func (h *HMD) Reset() {
	if h.device == nil {
		return
	}
	if err := h.device.SetFloat(RotationQuat, []float32{0, 0, 0, 1}); err != nil {
		logger.Named("hmd").Debug("device does not accept rotation reset", zap.Error(err))
	}
	if err := h.device.SetFloat(PositionVector, []float32{0, 0, 0}); err != nil {
		logger.Named("hmd").Debug("device does not accept position reset", zap.Error(err))
	}
}

// AdjustEyeSeparation adds delta to the stereo eye separation.
func (h *HMD) AdjustEyeSeparation(delta float32) {
	h.eyeSeparation += delta
	logger.Named("hmd").Debug("eye separation",
		zap.Float32("separation", h.eyeSeparation),
		zap.Float32("ipd", h.ipd))
}

// EyeSeparation returns the current stereo eye separation.
func (h *HMD) EyeSeparation() float32 { return h.eyeSeparation }

// ScreenSize returns the device resolution in pixels.
func (h *HMD) ScreenSize() (int32, int32) { return h.screenWidth, h.screenHeight }

// EyeSize returns the per-eye render target size: half the screen width at
// full height.
func (h *HMD) EyeSize() (int32, int32) { return h.screenWidth / 2, h.screenHeight }

// EyeAspect returns the per-eye width over height, or 1 without a device.
func (h *HMD) EyeAspect() float32 {
	w, hgt := h.EyeSize()
	if hgt == 0 {
		return 1
	}
	return float32(w) / float32(hgt)
}

// FOV returns the left eye's vertical field of view in radians.
func (h *HMD) FOV() float32 { return h.leftFOV }

// IPD returns the interpupillary distance reported by the device.
func (h *HMD) IPD() float32 { return h.ipd }

// NearFar returns the device's projection clip planes.
func (h *HMD) NearFar() (float32, float32) { return h.zNear, h.zFar }

// PhysicalSize returns the screen size in meters.
func (h *HMD) PhysicalSize() (float32, float32) { return h.hSize, h.vSize }

// DPI returns horizontal pixels per inch.
func (h *HMD) DPI() float32 {
	if h.hSize == 0 {
		return 0
	}
	return float32(h.screenWidth) / (h.hSize / 0.0254)
}

// Close releases the device and the driver.
func (h *HMD) Close() error {
	var err error
	if h.device != nil {
		err = h.device.Close()
		h.device = nil
	}
	if h.driver != nil {
		if cerr := h.driver.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
