// Package kernel implements the dense complex128 linear algebra the joint
// quantum state engine is built on: matrix product, conjugate transpose,
// Kronecker product, trace, and the multi-index contractions that back
// channel application, factor reordering, and partial trace.
//
// Everything here operates on square matrices stored as a flat row-major
// []complex128 buffer of side D. There is no sparse or symbolic path and
// no attempt at anything beyond O(D^2) bookkeeping with O(D^2) to O(D^4)
// contraction cost depending on operation; the joint state engine is a
// small, dense, per-subsystem-truncated substrate, not a performance
// target.
package kernel

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"
)

// Dense is a square complex matrix of side Side, stored row-major.
type Dense struct {
	Side int
	Data []complex128
}

// NewZeros returns a side x side matrix of zeros.
func NewZeros(side int) *Dense {
	if side < 1 {
		side = 1
	}
	return &Dense{Side: side, Data: make([]complex128, side*side)}
}

// NewIdentity returns the side x side identity matrix.
func NewIdentity(side int) *Dense {
	m := NewZeros(side)
	for i := 0; i < side; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// Ground returns the side x side matrix |0><0|, i.e. all zero except a 1
// in the top-left corner.
func Ground(side int) *Dense {
	m := NewZeros(side)
	m.Set(0, 0, 1)
	return m
}

// At returns the (row, col) element.
func (m *Dense) At(row, col int) complex128 {
	return m.Data[row*m.Side+col]
}

// Set assigns the (row, col) element.
func (m *Dense) Set(row, col int, v complex128) {
	m.Data[row*m.Side+col] = v
}

// Clone returns a deep copy of m.
func (m *Dense) Clone() *Dense {
	out := &Dense{Side: m.Side, Data: make([]complex128, len(m.Data))}
	copy(out.Data, m.Data)
	return out
}

// MatMul returns a*b. Both operands must have the same side.
func MatMul(a, b *Dense) (*Dense, error) {
	if a.Side != b.Side {
		return nil, errors.Errorf("kernel: MatMul side mismatch %d vs %d", a.Side, b.Side)
	}
	n := a.Side
	out := NewZeros(n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			aik := a.At(i, k)
			if aik == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out.Data[i*n+j] += aik * b.At(k, j)
			}
		}
	}
	return out, nil
}

// Dagger returns the conjugate transpose of m.
func Dagger(m *Dense) *Dense {
	n := m.Side
	out := NewZeros(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(j, i, cmplx.Conj(m.At(i, j)))
		}
	}
	return out
}

// Kron returns the Kronecker (tensor) product a (x) b.
func Kron(a, b *Dense) *Dense {
	na, nb := a.Side, b.Side
	n := na * nb
	out := NewZeros(n)
	for i := 0; i < na; i++ {
		for j := 0; j < na; j++ {
			aij := a.At(i, j)
			if aij == 0 {
				continue
			}
			for p := 0; p < nb; p++ {
				for q := 0; q < nb; q++ {
					row := i*nb + p
					col := j*nb + q
					out.Set(row, col, aij*b.At(p, q))
				}
			}
		}
	}
	return out
}

// Trace returns the sum of the diagonal elements of m.
func Trace(m *Dense) complex128 {
	var sum complex128
	for i := 0; i < m.Side; i++ {
		sum += m.At(i, i)
	}
	return sum
}

// IsCloseTo reports whether a and b have the same side and are
// elementwise equal within tol (compared on the modulus of the
// difference).
func IsCloseTo(a, b *Dense, tol float64) bool {
	if a.Side != b.Side {
		return false
	}
	for i := range a.Data {
		if cmplx.Abs(a.Data[i]-b.Data[i]) > tol {
			return false
		}
	}
	return true
}

// IsHermitian reports whether m equals its own conjugate transpose within
// tol. Used only by tests and callers wishing to sanity-check inputs; the
// engine itself never enforces this (spec: "the engine does not
// re-Hermitize").
func IsHermitian(m *Dense, tol float64) bool {
	return IsCloseTo(m, Dagger(m), tol)
}

// Product returns the product of the given dimensions. An empty slice
// yields 1.
func Product(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}

// nan128 is the explicit not-a-number sentinel for ill-conditioned
// results returned by NaN128.
var nan128 = complex(math.NaN(), math.NaN())

// NaN128 returns a complex128 NaN, real and imaginary parts both NaN.
func NaN128() complex128 { return nan128 }
