package camera

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/hmd"
	"github.com/Faultbox/midgard-vr/internal/engine/navigation"
	"github.com/Faultbox/midgard-vr/internal/logger"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

// StereoMode selects how the HMD camera builds its eye matrices.
type StereoMode int

const (
	// MatrixStereo uses the device's per-eye model-view and projection.
	MatrixStereo StereoMode = iota
	// QuaternionMono uses the head rotation for both eyes.
	QuaternionMono
	// QuaternionStereo uses the head rotation offset by the eye separation.
	QuaternionStereo
)

func (m StereoMode) String() string {
	switch m {
	case QuaternionMono:
		return "quaternion-mono"
	case QuaternionStereo:
		return "quaternion-stereo"
	}
	return "matrix-stereo"
}

// Next returns the mode that follows m in the Return-key cycle.
func (m StereoMode) Next() StereoMode {
	return (m + 1) % 3
}

// invertYRotation flips the sign pattern of a device model-view whose yaw
// runs opposite to the scene.
var invertYRotation = math.Mat4{
	1, -1, 1, 1,
	-1, 1, -1, 1,
	1, -1, 1, 1,
	1, 1, 1, 1,
}

// HMDCamera renders one view per eye from a head-mounted display.
type HMDCamera struct {
	Base

	hmd     *hmd.HMD
	mode    StereoMode
	leftVP  math.Mat4
	rightVP math.Mat4
}

// NewHMD returns a stereo camera reading poses from h. The camera takes
// ownership of h. A nil h behaves as an adapter with no device.
func NewHMD(cfg Config, h *hmd.HMD) *HMDCamera {
	if h == nil {
		h = hmd.New(nil)
	}
	c := &HMDCamera{
		Base:    newBase(cfg.withDefaults(DefaultConfig())),
		hmd:     h,
		mode:    MatrixStereo,
		leftVP:  math.Identity(),
		rightVP: math.Identity(),
	}
	if h.IsOpen() {
		c.Aspect = h.EyeAspect()
	}
	return c
}

// HMD returns the adapter the camera reads from.
func (c *HMDCamera) HMD() *hmd.HMD { return c.hmd }

// Mode returns the active stereo mode.
func (c *HMDCamera) Mode() StereoMode { return c.mode }

// SetMode selects the stereo mode.
func (c *HMDCamera) SetMode(m StereoMode) {
	c.mode = m % 3
	logger.Named("camera").Info("HMD stereo mode", zap.Stringer("mode", c.mode))
}

// LeftVP returns the left eye view-projection.
func (c *HMDCamera) LeftVP() math.Mat4 { return c.leftVP }

// RightVP returns the right eye view-projection.
func (c *HMDCamera) RightVP() math.Mat4 { return c.rightVP }

// UpdateView polls the device and rebuilds both eye matrices. Without a
// device both eyes get the same look-at perspective.
func (c *HMDCamera) UpdateView() {
	c.hmd.Update()

	if !c.hmd.IsOpen() {
		mono := c.lookAtMVP()
		c.leftVP, c.rightVP = mono, mono
		c.mvp = mono
		return
	}

	switch c.mode {
	case QuaternionMono:
		c.updateFromQuaternion(0)
	case QuaternionStereo:
		c.updateFromQuaternion(c.hmd.EyeSeparation())
	default:
		c.updateFromMatrices()
	}
	c.mvp = c.leftVP
}

func (c *HMDCamera) updateFromMatrices() {
	leftMV := c.hmd.EyeMatrix(hmd.LeftEye, hmd.ModelView).Hadamard(invertYRotation)
	rightMV := c.hmd.EyeMatrix(hmd.RightEye, hmd.ModelView).Hadamard(invertYRotation)

	c.leftVP = c.hmd.EyeMatrix(hmd.LeftEye, hmd.Projection).Mul(leftMV)
	c.rightVP = c.hmd.EyeMatrix(hmd.RightEye, hmd.Projection).Mul(rightMV)
}

// updateFromQuaternion builds both eyes from the head rotation, shifting the
// left eye by +separation and the right eye by -separation along X.
func (c *HMDCamera) updateFromQuaternion(separation float32) {
	rotation := c.hmd.OrientationQuaternion().ToMat4()

	leftMV, rightMV := rotation, rotation
	if separation != 0 {
		leftMV = math.Translate(separation, 0, 0).Mul(rotation)
		rightMV = math.Translate(-separation, 0, 0).Mul(rotation)
	}

	c.leftVP = c.hmd.EyeMatrix(hmd.LeftEye, hmd.Projection).Mul(leftMV)
	c.rightVP = c.hmd.EyeMatrix(hmd.RightEye, hmd.Projection).Mul(rightMV)
}

// NavigationEvent handles the HMD keys: keypad plus and minus adjust the eye
// separation, Return cycles the stereo mode and space resets the pose.
func (c *HMDCamera) NavigationEvent(ev navigation.Event) {
	c.trackKeys(ev)
	if ev.Type != navigation.EventKeyPress {
		return
	}

	switch ev.Key {
	case navigation.KeyPadAdd:
		c.hmd.AdjustEyeSeparation(hmd.EyeSeparationStep)
	case navigation.KeyPadSubtract:
		c.hmd.AdjustEyeSeparation(-hmd.EyeSeparationStep)
	case navigation.KeyReturn:
		c.SetMode(c.mode.Next())
	case navigation.KeySpace:
		c.hmd.Reset()
	}
}
