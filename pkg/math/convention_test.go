package math

import (
	"bytes"
	"strings"
	"testing"
)

func TestNegateComponent(t *testing.T) {
	m := Translate(1, 2, 3)
	got := m.NegateComponent(3, 2)

	if got[14] != -3 {
		t.Errorf("NegateComponent(3, 2): got %f at [14], want -3", got[14])
	}
	for i := 0; i < 16; i++ {
		if i != 14 && got[i] != m[i] {
			t.Errorf("element %d changed: got %f, want %f", i, got[i], m[i])
		}
	}

	// Out of range is a no-op.
	if m.NegateComponent(4, 0) != m {
		t.Error("out-of-range NegateComponent should leave the matrix unchanged")
	}
}

func TestHadamard(t *testing.T) {
	mask := Mat4{
		1, -1, 1, 1,
		-1, 1, -1, 1,
		1, -1, 1, 1,
		1, 1, 1, 1,
	}
	var m Mat4
	for i := range m {
		m[i] = float32(i + 1)
	}

	got := m.Hadamard(mask)
	for i := range got {
		if got[i] != m[i]*mask[i] {
			t.Errorf("Hadamard element %d: got %f, want %f", i, got[i], m[i]*mask[i])
		}
	}

	if Identity().Hadamard(mask) != Identity() {
		t.Error("identity masked with a diagonal of ones should stay identity")
	}
}

func TestTranspose(t *testing.T) {
	m := Translate(4, 5, 6)
	tr := m.Transpose()
	if tr[3] != 4 || tr[7] != 5 || tr[11] != 6 {
		t.Errorf("Transpose: translation row got (%f, %f, %f)", tr[3], tr[7], tr[11])
	}
	if tr.Transpose() != m {
		t.Error("double transpose should restore the matrix")
	}
}

func TestVec3Negate(t *testing.T) {
	got := Vec3{1, -2, 3}.Negate()
	want := Vec3{-1, 2, -3}
	if got != want {
		t.Errorf("Negate() = %v, want %v", got, want)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Vec3{1, 2, 3}.Print(&buf, "eye")
	if !strings.HasPrefix(buf.String(), "eye: (1.0000, 2.0000, 3.0000)") {
		t.Errorf("Vec3.Print wrote %q", buf.String())
	}

	buf.Reset()
	Identity().Print(&buf, "mvp")
	if strings.Count(buf.String(), "\n") != 5 {
		t.Errorf("Mat4.Print should write a label line and four rows, got %q", buf.String())
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3{1, 2, 5}
	view := LookAt(eye, Vec3{}, Vec3{Y: 1})

	got := view.TransformPoint([3]float32{eye.X, eye.Y, eye.Z})
	for i, c := range got {
		if c > 1e-5 || c < -1e-5 {
			t.Errorf("eye component %d maps to %f, want 0", i, c)
		}
	}

	// The target lies straight ahead on -Z.
	ahead := view.TransformPoint([3]float32{0, 0, 0})
	if want := -eye.Length(); ahead[2]-want > 1e-4 || want-ahead[2] > 1e-4 {
		t.Errorf("center depth = %f, want %f", ahead[2], want)
	}
}

func TestLookAtFrameCorrection(t *testing.T) {
	eye := Vec3{X: 1, Y: 2, Z: 3}
	up := Vec3{Y: 1}

	corrected := LookAtFrame(eye, Vec3{}, up).Inverse().NegateComponent(3, 2)
	ref := LookAt(eye, Vec3{}, up)

	// The corrected frame agrees with the reference view on the Y row and the
	// Z translation, and mirrors the X and Z rows.
	sign := [16]float32{
		-1, 1, -1, 1,
		-1, 1, -1, 1,
		-1, 1, -1, 1,
		-1, 1, 1, 1,
	}
	for i := range corrected {
		want := ref[i] * sign[i]
		if diff := corrected[i] - want; diff > 1e-4 || diff < -1e-4 {
			t.Errorf("element %d = %v, want %v", i, corrected[i], want)
		}
	}
}
