package math

import (
	stdmath "math"
	"testing"
)

const eps = 1e-5

func near(a, b float32) bool {
	return stdmath.Abs(float64(a-b)) < eps
}

func TestIdentityMul(t *testing.T) {
	m := Translate(1, 2, 3).Mul(Scale(2, 2, 2))
	if Identity().Mul(m) != m || m.Mul(Identity()) != m {
		t.Error("identity should be neutral on both sides")
	}
}

func TestMulOrder(t *testing.T) {
	// Scale first, then translate.
	m := Translate(10, 0, 0).Mul(Scale(2, 2, 2))
	got := m.TransformPoint([3]float32{1, 1, 1})
	want := [3]float32{12, 2, 2}
	if got != want {
		t.Errorf("T*S applied to (1,1,1) = %v, want %v", got, want)
	}

	got = Scale(2, 2, 2).Mul(Translate(10, 0, 0)).TransformPoint([3]float32{1, 1, 1})
	want = [3]float32{22, 2, 2}
	if got != want {
		t.Errorf("S*T applied to (1,1,1) = %v, want %v", got, want)
	}
}

func TestTranslateColumnMajor(t *testing.T) {
	m := Translate(4, 5, 6)
	if m[12] != 4 || m[13] != 5 || m[14] != 6 {
		t.Errorf("translation should live in elements 12..14, got %v", m)
	}
}

func TestInverse(t *testing.T) {
	m := Translate(1, -2, 3).Mul(QuatFromAxisAngle(Vec3{Y: 1}, 0.7).ToMat4()).Mul(Scale(2, 3, 4))
	if !m.Mul(m.Inverse()).ApproxEqual(Identity(), 1e-4) {
		t.Errorf("m * m^-1 is not identity:\n%s", m.Mul(m.Inverse()))
	}
}

func TestInverseSingular(t *testing.T) {
	if (Mat4{}).Inverse() != Identity() {
		t.Error("singular matrix should invert to identity")
	}
}

func TestPerspective(t *testing.T) {
	p := Perspective(stdmath.Pi/2, 2, 1, 100)

	if !near(p[0], 0.5) || !near(p[5], 1) {
		t.Errorf("focal terms = (%f, %f), want (0.5, 1)", p[0], p[5])
	}
	if p[11] != -1 || p[15] != 0 {
		t.Errorf("w row = (%f, %f), want (-1, 0)", p[11], p[15])
	}

	nearPlane := p.TransformPoint([3]float32{0, 0, -1})
	farPlane := p.TransformPoint([3]float32{0, 0, -100})
	if !near(nearPlane[2], -1) || !near(farPlane[2], 1) {
		t.Errorf("depth range = [%f, %f], want [-1, 1]", nearPlane[2], farPlane[2])
	}
}

func TestOrtho(t *testing.T) {
	o := Ortho(-2, 2, -1, 1, -1, 1)
	got := o.TransformPoint([3]float32{2, 1, 0})
	if !near(got[0], 1) || !near(got[1], 1) {
		t.Errorf("corner maps to %v, want (1, 1)", got)
	}
	if !near(o[0], 0.5) {
		t.Errorf("x scale = %f, want 0.5", o[0])
	}
}

func TestPtr(t *testing.T) {
	m := Translate(7, 0, 0)
	if *m.Ptr() != 1 {
		t.Errorf("Ptr should address element 0, got %f", *m.Ptr())
	}
}
