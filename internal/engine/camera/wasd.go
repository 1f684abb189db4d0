package camera

import (
	"github.com/Faultbox/midgard-vr/internal/engine/navigation"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

// WASD step sizes per UpdateView.
const (
	WASDDistance     float32 = 0.01
	WASDFastModifier float32 = 3
)

// WASD moves the center with held keys and keeps the eye at a fixed offset
// from it.
type WASD struct {
	Base

	centerToEye math.Vec3
}

// NewWASD returns a WASD camera with its matrix already computed.
func NewWASD(cfg Config) *WASD {
	c := &WASD{Base: newBase(cfg.withDefaults(DefaultConfig()))}
	c.centerToEye = c.Eye.Sub(c.Center)
	c.mvp = c.lookAtMVP()
	return c
}

// step returns the translation for the currently held keys. Opposite keys
// held together cancel out.
func (c *WASD) step() math.Vec3 {
	d := WASDDistance
	if c.IsKeyHeld(navigation.KeyShiftLeft) {
		d *= WASDFastModifier
	}

	var t math.Vec3
	for _, key := range c.HeldKeys() {
		switch key {
		case navigation.KeyW:
			t.Z -= d
		case navigation.KeyS:
			t.Z += d
		case navigation.KeyA:
			t.X -= d
		case navigation.KeyD:
			t.X += d
		case navigation.KeySpace:
			t.Y -= d
		case navigation.KeyControlLeft:
			t.Y += d
		}
	}
	return t
}

func (c *WASD) UpdateView() {
	c.Center = c.Center.Add(c.step())
	c.Eye = c.Center.Add(c.centerToEye)
	c.mvp = c.lookAtMVP()
}

// NavigationEvent tracks held keys; movement happens in UpdateView.
func (c *WASD) NavigationEvent(ev navigation.Event) {
	c.trackKeys(ev)
	if ev.Type == navigation.EventMouseMove {
		c.setCursor(ev.X, ev.Y)
	}
}
