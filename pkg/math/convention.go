package math

import (
	"fmt"
	"io"
	"strings"
)

// NegateComponent negates a single element of m addressed as (row, col) in
// the row-vector convention, which maps onto the flat index row*4+col of the
// stored array. For a column-major transform, (3, 2) is the Z translation.
func (m Mat4) NegateComponent(row, col int) Mat4 {
	if row < 0 || row > 3 || col < 0 || col > 3 {
		return m
	}
	m[row*4+col] = -m[row*4+col]
	return m
}

// Hadamard returns the element-wise product of m and other.
func (m Mat4) Hadamard(other Mat4) Mat4 {
	var r Mat4
	for i := range m {
		r[i] = m[i] * other[i]
	}
	return r
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var r Mat4
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			r[row*4+c] = m[c*4+row]
		}
	}
	return r
}

// ApproxEqual reports whether every element of m is within eps of other.
func (m Mat4) ApproxEqual(other Mat4, eps float32) bool {
	for i := range m {
		d := m[i] - other[i]
		if d < -eps || d > eps {
			return false
		}
	}
	return true
}

// String formats the matrix as four stored columns.
func (m Mat4) String() string {
	var b strings.Builder
	for c := 0; c < 4; c++ {
		fmt.Fprintf(&b, "| %8.4f %8.4f %8.4f %8.4f |", m[c*4], m[c*4+1], m[c*4+2], m[c*4+3])
		if c < 3 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Print writes a labelled dump of the matrix to w.
func (m Mat4) Print(w io.Writer, label string) {
	fmt.Fprintf(w, "%s:\n%s\n", label, m)
}

// Negate returns -v.
func (v Vec3) Negate() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// String formats the vector as (x, y, z).
func (v Vec3) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z)
}

// Print writes a labelled vector to w.
func (v Vec3) Print(w io.Writer, label string) {
	fmt.Fprintf(w, "%s: %s\n", label, v)
}
