package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroundIsProjector(t *testing.T) {
	g := Ground(3)
	assert.Equal(t, complex128(1), g.At(0, 0))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == 0 && j == 0 {
				continue
			}
			assert.Equal(t, complex128(0), g.At(i, j))
		}
	}
}

func TestMatMulIdentity(t *testing.T) {
	id := NewIdentity(2)
	m := &Dense{Side: 2, Data: []complex128{1, 2, 3, 4}}
	got, err := MatMul(id, m)
	require.NoError(t, err)
	assert.True(t, IsCloseTo(got, m, 1e-12))
}

func TestDagger(t *testing.T) {
	m := &Dense{Side: 2, Data: []complex128{
		complex(1, 0), complex(2, 3),
		complex(2, -3), complex(4, 0),
	}}
	assert.True(t, IsHermitian(m, 1e-12))

	notHerm := &Dense{Side: 2, Data: []complex128{1, complex(0, 1), 0, 1}}
	assert.False(t, IsHermitian(notHerm, 1e-12))
}

func TestKronShapeAndValue(t *testing.T) {
	a := Ground(2)
	b := Ground(3)
	k := Kron(a, b)
	require.Equal(t, 6, k.Side)
	assert.Equal(t, complex128(1), k.At(0, 0))
	count := 0
	for _, v := range k.Data {
		if v != 0 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestTrace(t *testing.T) {
	m := &Dense{Side: 2, Data: []complex128{1, 2, 3, 4}}
	assert.Equal(t, complex128(5), Trace(m))
}

func TestMultiFlatIndexRoundTrip(t *testing.T) {
	dims := []int{2, 3, 2}
	for flat := 0; flat < Product(dims); flat++ {
		idx := MultiIndex(dims, flat)
		assert.Equal(t, flat, FlatIndex(dims, idx))
	}
}

func TestPermuteIsInvolutivePair(t *testing.T) {
	// Build a 2x3 product ground state, permute [1,0] and back.
	a := Ground(2)
	b := Ground(3)
	rho := Kron(a, b)
	dims := []int{2, 3}

	permuted, err := Permute(rho, dims, []int{1, 0})
	require.NoError(t, err)
	newDims := []int{3, 2}
	back, err := Permute(permuted, newDims, []int{1, 0})
	require.NoError(t, err)
	assert.True(t, IsCloseTo(rho, back, 1e-12))
}

func TestApplyChannelIdentityLeavesStateUnchanged(t *testing.T) {
	a := Ground(2)
	b := Ground(3)
	rho := Kron(a, b)
	dims := []int{2, 3}

	id2 := NewIdentity(2)
	out, err := ApplyChannel(rho, dims, []int{0}, []*Dense{id2})
	require.NoError(t, err)
	assert.True(t, IsCloseTo(rho, out, 1e-12))
}

func TestApplyChannelXOnFirstFactor(t *testing.T) {
	a := Ground(2)
	b := Ground(3)
	rho := Kron(a, b)
	dims := []int{2, 3}

	x := &Dense{Side: 2, Data: []complex128{0, 1, 1, 0}}
	out, err := ApplyChannel(rho, dims, []int{0}, []*Dense{x})
	require.NoError(t, err)

	want := NewZeros(6)
	want.Set(3, 3, 1)
	assert.True(t, IsCloseTo(want, out, 1e-12))
}

func TestPartialTraceOfProductGroundState(t *testing.T) {
	a := Ground(2)
	b := Ground(3)
	rho := Kron(a, b)
	dims := []int{2, 3}

	reducedB := PartialTrace(rho, dims, []int{1})
	want := NewZeros(3)
	want.Set(0, 0, 1)
	assert.True(t, IsCloseTo(want, reducedB, 1e-12))

	full := PartialTrace(rho, dims, []int{0, 1})
	assert.True(t, IsCloseTo(rho, full, 1e-12))
}

func TestApplyChannelTracePreservation(t *testing.T) {
	a := Ground(2)
	b := Ground(2)
	rho := Kron(a, b)
	dims := []int{2, 2}

	// A single-qubit depolarizing-like channel with two Kraus operators
	// satisfying completeness on the first factor: K0 = sqrt(0.9) I, K1 = sqrt(0.1) X.
	sq9 := complex(0.9486832980505138, 0) // sqrt(0.9)
	sq1 := complex(0.31622776601683794, 0) // sqrt(0.1)
	k0 := &Dense{Side: 2, Data: []complex128{sq9, 0, 0, sq9}}
	k1 := &Dense{Side: 2, Data: []complex128{0, sq1, sq1, 0}}

	out, err := ApplyChannel(rho, dims, []int{0}, []*Dense{k0, k1})
	require.NoError(t, err)

	before := Trace(rho)
	after := Trace(out)
	assert.InDelta(t, real(before), real(after), 1e-9)
	assert.InDelta(t, imag(before), imag(after), 1e-9)
}
