// Package camera provides the cameras that drive scene rendering: a fixed
// look-at camera, an orbiting arcball, a keyboard-driven WASD camera and a
// stereo camera fed by a head-mounted display.
package camera

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-vr/internal/engine/hmd"
	"github.com/Faultbox/midgard-vr/internal/engine/navigation"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

// Camera computes the matrix used to draw a scene and reacts to input.
type Camera interface {
	// UpdateView recomputes the camera matrices from the current state.
	UpdateView()
	// NavigationEvent feeds one input event to the camera.
	NavigationEvent(ev navigation.Event)
	// MVP returns the model-view-projection matrix from the last UpdateView.
	MVP() math.Mat4
}

// StereoCamera is a camera producing one view-projection matrix per eye.
type StereoCamera interface {
	Camera
	LeftVP() math.Mat4
	RightVP() math.Mat4
	HMD() *hmd.HMD
}

// Kind names a camera variant.
type Kind string

const (
	KindPlain   Kind = "plain"
	KindArcball Kind = "arcball"
	KindHMD     Kind = "hmd"
	KindWASD    Kind = "wasd"
)

// Config holds the projection and placement shared by all cameras. Zero
// fields take the variant's default.
type Config struct {
	// FOV is the vertical field of view in degrees.
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32

	Eye    math.Vec3
	Center math.Vec3
	Up     math.Vec3
}

// DefaultConfig returns the defaults used by the plain, WASD and HMD cameras.
func DefaultConfig() Config {
	return Config{
		FOV:    90,
		Aspect: 1,
		Near:   0.1,
		Far:    100,
		Eye:    math.Vec3{Z: 1},
		Up:     math.Vec3{Y: 1},
	}
}

func (c Config) withDefaults(def Config) Config {
	if c.FOV == 0 {
		c.FOV = def.FOV
	}
	if c.Aspect == 0 {
		c.Aspect = def.Aspect
	}
	if c.Near == 0 {
		c.Near = def.Near
	}
	if c.Far == 0 {
		c.Far = def.Far
	}
	if c.Eye == (math.Vec3{}) {
		c.Eye = def.Eye
	}
	if c.Up == (math.Vec3{}) {
		c.Up = def.Up
	}
	return c
}

// New builds a camera of the given kind. h is only used by KindHMD and may be
// nil for the other kinds.
func New(kind Kind, cfg Config, h *hmd.HMD) (Camera, error) {
	switch kind {
	case KindPlain, "":
		return NewPlain(cfg), nil
	case KindArcball:
		return NewArcball(cfg), nil
	case KindWASD:
		return NewWASD(cfg), nil
	case KindHMD:
		if h == nil {
			return nil, fmt.Errorf("camera %q: %w", kind, hmd.ErrNoDevice)
		}
		return NewHMD(cfg, h), nil
	}
	return nil, fmt.Errorf("unknown camera kind %q", kind)
}

// Base holds the state every camera variant shares.
type Base struct {
	Eye    math.Vec3
	Center math.Vec3
	Up     math.Vec3

	FOV    float32
	Aspect float32
	Near   float32
	Far    float32

	mvp     math.Mat4
	keys    navigation.KeySet
	cursorX float64
	cursorY float64
}

func newBase(cfg Config) Base {
	return Base{
		Eye:    cfg.Eye,
		Center: cfg.Center,
		Up:     cfg.Up,
		FOV:    cfg.FOV,
		Aspect: cfg.Aspect,
		Near:   cfg.Near,
		Far:    cfg.Far,
		mvp:    math.Identity(),
	}
}

// MVP returns the matrix computed by the last UpdateView.
func (b *Base) MVP() math.Mat4 { return b.mvp }

// SetAspect changes the projection aspect ratio, for example after a resize.
func (b *Base) SetAspect(aspect float32) {
	if aspect > 0 {
		b.Aspect = aspect
	}
}

// PressKey marks key as held. Holding a key twice keeps one entry.
func (b *Base) PressKey(key string) { b.keys.Press(key) }

// ReleaseKey removes key from the held set.
func (b *Base) ReleaseKey(key string) { b.keys.Release(key) }

// IsKeyHeld reports whether key is held.
func (b *Base) IsKeyHeld(key string) bool { return b.keys.Held(key) }

// HeldKeys returns the held keys in name order.
func (b *Base) HeldKeys() []string { return b.keys.Keys() }

// Cursor returns the last pointer position seen.
func (b *Base) Cursor() (float64, float64) { return b.cursorX, b.cursorY }

func (b *Base) setCursor(x, y float64) {
	b.cursorX, b.cursorY = x, y
}

// trackKeys updates the held key set from key events.
func (b *Base) trackKeys(ev navigation.Event) {
	switch ev.Type {
	case navigation.EventKeyPress:
		if ev.Key != "" {
			b.PressKey(ev.Key)
		}
	case navigation.EventKeyRelease:
		if ev.Key != "" {
			b.ReleaseKey(ev.Key)
		}
	}
}

func (b *Base) projection() math.Mat4 {
	return math.Perspective(radians(b.FOV), b.Aspect, b.Near, b.Far)
}

// lookAtMVP is the projection times a look-at view of the current placement.
func (b *Base) lookAtMVP() math.Mat4 {
	return b.projection().Mul(math.LookAt(b.Eye, b.Center, b.Up))
}

func radians(deg float32) float32 {
	return deg * math32.Pi / 180
}
