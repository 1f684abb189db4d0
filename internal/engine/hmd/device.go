package hmd

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNoDevice is returned when probing finds nothing to open.
var ErrNoDevice = errors.New("no HMD device")

// ErrUnsupported is returned by devices for properties they do not provide.
var ErrUnsupported = errors.New("property not supported")

// FloatProperty identifies a float-valued device property.
type FloatProperty int

const (
	RotationQuat FloatProperty = iota + 1
	PositionVector
	LeftEyeGLModelView
	RightEyeGLModelView
	LeftEyeGLProjection
	RightEyeGLProjection
	LeftEyeFOV
	LeftEyeAspectRatio
	RightEyeFOV
	RightEyeAspectRatio
	EyeIPD
	ProjectionZFar
	ProjectionZNear
	DistortionK
	ScreenHorizontalSize
	ScreenVerticalSize
	LensHorizontalSeparation
	LensVerticalPosition
)

// Len returns how many floats the property holds.
func (p FloatProperty) Len() int {
	switch p {
	case RotationQuat:
		return 4
	case PositionVector:
		return 3
	case LeftEyeGLModelView, RightEyeGLModelView, LeftEyeGLProjection, RightEyeGLProjection:
		return 16
	case DistortionK:
		return 6
	}
	return 1
}

func (p FloatProperty) String() string {
	names := map[FloatProperty]string{
		RotationQuat:             "rotation-quat",
		PositionVector:           "position",
		LeftEyeGLModelView:       "left-eye-modelview",
		RightEyeGLModelView:      "right-eye-modelview",
		LeftEyeGLProjection:      "left-eye-projection",
		RightEyeGLProjection:     "right-eye-projection",
		LeftEyeFOV:               "left-eye-fov",
		LeftEyeAspectRatio:       "left-eye-aspect",
		RightEyeFOV:              "right-eye-fov",
		RightEyeAspectRatio:      "right-eye-aspect",
		EyeIPD:                   "ipd",
		ProjectionZFar:           "zfar",
		ProjectionZNear:          "znear",
		DistortionK:              "distortion-k",
		ScreenHorizontalSize:     "screen-hsize",
		ScreenVerticalSize:       "screen-vsize",
		LensHorizontalSeparation: "lens-hsep",
		LensVerticalPosition:     "lens-vpos",
	}
	if n, ok := names[p]; ok {
		return n
	}
	return fmt.Sprintf("float-property(%d)", int(p))
}

// IntProperty identifies an integer-valued device property.
type IntProperty int

const (
	ScreenHorizontalResolution IntProperty = iota + 1
	ScreenVerticalResolution
)

// DeviceInfo describes a probed device.
type DeviceInfo struct {
	Vendor  string
	Product string
	Path    string
}

// Device is an opened head-tracking device.
type Device interface {
	// Float reads a float property into out, which must hold p.Len() values.
	Float(p FloatProperty, out []float32) error
	// SetFloat writes a float property.
	SetFloat(p FloatProperty, in []float32) error
	// Int reads an integer property.
	Int(p IntProperty) (int32, error)
	Close() error
}

// Driver enumerates and opens devices of one tracking backend.
type Driver interface {
	Name() string
	Probe() ([]DeviceInfo, error)
	Open(index int) (Device, error)
	// Update polls every open device for new pose data.
	Update() error
	Close() error
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]func() Driver)
)

// Register makes a driver available by name. Drivers register themselves
// from init functions.
func Register(name string, factory func() Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[name] = factory
}

// NewDriver returns a new instance of the named driver.
func NewDriver(name string) (Driver, error) {
	driversMu.RLock()
	factory, ok := drivers[name]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown HMD driver %q (have %v)", name, Drivers())
	}
	return factory(), nil
}

// Drivers lists the registered driver names.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
