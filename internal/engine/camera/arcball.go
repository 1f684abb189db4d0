package camera

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/navigation"
	"github.com/Faultbox/midgard-vr/internal/logger"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

// ArcballDefaults returns the projection an arcball starts with.
func ArcballDefaults() Config {
	def := DefaultConfig()
	def.FOV = 45
	def.Aspect = 4.0 / 3.0
	return def
}

// Arcball orbits the center on a sphere whose radius grows exponentially
// with CenterDistance.
type Arcball struct {
	Base

	// Theta is the polar angle and Phi the azimuth, in radians.
	Theta          float32
	Phi            float32
	CenterDistance float32
	ScrollSpeed    float32
	RotationSpeed  float32

	dragging bool
}

// NewArcball returns an arcball camera with its matrix already computed.
func NewArcball(cfg Config) *Arcball {
	c := &Arcball{
		Base:           newBase(cfg.withDefaults(ArcballDefaults())),
		Theta:          5.0,
		Phi:            -5.0,
		CenterDistance: 2.5,
		ScrollSpeed:    0.05,
		RotationSpeed:  0.002,
	}
	c.UpdateView()
	return c
}

// Rotate turns the camera by a cursor delta. The azimuth always follows dx.
// The polar angle follows dy only while it stays strictly between pi and
// 2pi; deltas that would leave that band are dropped.
func (c *Arcball) Rotate(dx, dy float32) {
	c.Phi += dx * c.RotationSpeed

	theta := c.Theta + dy*c.RotationSpeed
	if t := theta / math32.Pi; t > 1 && t < 2 {
		c.Theta = theta
	}

	logger.Named("camera").Debug("arcball rotate",
		zap.Float32("theta", c.Theta), zap.Float32("phi", c.Phi))
	c.UpdateView()
}

// Translate moves the camera along its radius by dz scroll steps.
func (c *Arcball) Translate(dz float32) {
	c.CenterDistance += dz * c.ScrollSpeed
	c.UpdateView()
}

// Radius returns the current distance from the center.
func (c *Arcball) Radius() float32 {
	return math32.Exp(c.CenterDistance)
}

func (c *Arcball) UpdateView() {
	r := c.Radius()
	sinTheta, cosTheta := math32.Sin(c.Theta), math32.Cos(c.Theta)
	sinPhi, cosPhi := math32.Sin(c.Phi), math32.Cos(c.Phi)

	c.Eye = math.Vec3{
		X: r * sinTheta * cosPhi,
		Y: r * -cosTheta,
		Z: r * sinTheta * sinPhi,
	}

	view := math.LookAtFrame(c.Eye, c.Center, c.Up).Inverse().NegateComponent(3, 2)
	c.mvp = c.projection().Mul(view)
}

// NavigationEvent rotates on left-button drags and zooms on the wheel.
func (c *Arcball) NavigationEvent(ev navigation.Event) {
	switch ev.Type {
	case navigation.EventMouseMove:
		if c.dragging {
			lastX, lastY := c.Cursor()
			c.Rotate(float32(ev.X-lastX), float32(ev.Y-lastY))
		}
		c.setCursor(ev.X, ev.Y)
	case navigation.EventMouseButtonPress:
		switch ev.Button {
		case navigation.ButtonLeft:
			c.dragging = true
			c.setCursor(ev.X, ev.Y)
		case navigation.ButtonWheelUp:
			c.Translate(-1)
		case navigation.ButtonWheelDown:
			c.Translate(1)
		}
	case navigation.EventMouseButtonRelease:
		if ev.Button == navigation.ButtonLeft {
			c.dragging = false
			c.setCursor(ev.X, ev.Y)
		}
	default:
		c.trackKeys(ev)
	}
}

// Dragging reports whether the left button is held.
func (c *Arcball) Dragging() bool { return c.dragging }
