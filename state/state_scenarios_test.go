package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qsi-go/qsi/internal/kernel"
)

// Scenario 1: single-mode creation.
func TestScenarioSingleModeCreation(t *testing.T) {
	d := mustLight(t, 3, 1550, PolarizationR)
	j := Ground(d)
	assert.Equal(t, 3, j.Side())
	rho := j.Rho()
	assert.Equal(t, complex128(1), rho.At(0, 0))
	nonzero := 0
	for _, v := range rho.Data {
		if v != 0 {
			nonzero++
		}
	}
	assert.Equal(t, 1, nonzero)
}

// Scenario 2: composition and reorder.
func TestScenarioCompositionAndReorder(t *testing.T) {
	a := mustInternal(t, 2)
	b := mustInternal(t, 3)

	rhoA := kernel.NewZeros(2)
	rhoA.Set(1, 1, 1) // diag(0, 1)
	ja := &Joint{props: []Descriptor{a}, rho: rhoA}
	jb := Ground(b)

	require.NoError(t, ja.Compose(jb))
	got := ja.Rho()
	assert.Equal(t, 6, got.Side)
	assert.Equal(t, complex128(1), got.At(3, 3))

	require.NoError(t, ja.Reorder([]Descriptor{b, a}))
	got = ja.Rho()
	assert.Equal(t, complex128(1), got.At(1, 1))
}

// Scenario 3: X on first factor.
func TestScenarioXOnFirstFactor(t *testing.T) {
	a := mustInternal(t, 2)
	b := mustInternal(t, 3)
	j := Ground(a)
	require.NoError(t, j.Compose(Ground(b)))

	x := []*kernel.Dense{{Side: 2, Data: []complex128{0, 1, 1, 0}}}
	require.NoError(t, j.ApplyChannel(x, []Descriptor{a}))

	want := kernel.NewZeros(6)
	want.Set(3, 3, 1)
	assert.True(t, kernel.IsCloseTo(want, j.Rho(), 1e-12))
}

// Scenario 4: identity channel on a three-factor state.
func TestScenarioIdentityChannelThreeFactors(t *testing.T) {
	a := mustInternal(t, 2)
	b := mustInternal(t, 3)
	c := mustInternal(t, 2)
	j := Ground(a)
	require.NoError(t, j.Compose(Ground(b)))
	require.NoError(t, j.Compose(Ground(c)))

	before := j.Rho()
	require.NoError(t, j.ApplyChannel([]*kernel.Dense{kernel.NewIdentity(2)}, []Descriptor{a}))
	assert.True(t, kernel.IsCloseTo(before, j.Rho(), 1e-12))
}

// Scenario 5: partial trace.
func TestScenarioPartialTrace(t *testing.T) {
	a := mustInternal(t, 2)
	b := mustInternal(t, 3)
	j := Ground(a)
	require.NoError(t, j.Compose(Ground(b)))

	reduced, err := j.Reduce([]Descriptor{a})
	require.NoError(t, err)
	want := kernel.NewZeros(2)
	want.Set(0, 0, 1)
	assert.True(t, kernel.IsCloseTo(want, reduced, 1e-12))
}

// Scenario 6: envelope round trip with a random Hermitian rho.
func TestScenarioRoundTripRandomHermitian(t *testing.T) {
	a := mustInternal(t, 2)
	b := mustInternal(t, 3)
	j := Ground(a)
	require.NoError(t, j.Compose(Ground(b)))

	n := j.Side()
	rho := kernel.NewZeros(n)
	for i := 0; i < n; i++ {
		rho.Set(i, i, complex(float64(i+1)/10, 0))
		for k := i + 1; k < n; k++ {
			v := complex(0.01*float64(i+k+1), 0.01*float64(k-i))
			rho.Set(i, k, v)
			rho.Set(k, i, complex(real(v), -imag(v)))
		}
	}
	j = &Joint{props: j.Props(), rho: rho}
	require.True(t, kernel.IsHermitian(rho, 1e-12))

	back, err := FromEnvelope(j.ToEnvelope())
	require.NoError(t, err)
	assert.Equal(t, j.Props(), back.Props())
	assert.True(t, kernel.IsCloseTo(j.Rho(), back.Rho(), 1e-15))
}
