package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLight(t *testing.T, truncation int, wavelength float64, pol Polarization) Descriptor {
	t.Helper()
	d, err := NewLightDescriptor(truncation, wavelength, pol)
	require.NoError(t, err)
	return d
}

func mustInternal(t *testing.T, truncation int) Descriptor {
	t.Helper()
	d, err := NewInternalDescriptor(truncation)
	require.NoError(t, err)
	return d
}

func TestNewLightDescriptorRequiresWavelengthAndPolarization(t *testing.T) {
	_, err := NewLightDescriptor(3, 0, "")
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestNewDescriptorRequiresPositiveTruncation(t *testing.T) {
	_, err := NewInternalDescriptor(0)
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestDescriptorDictRoundTrip(t *testing.T) {
	d := mustLight(t, 3, 1550, PolarizationR)
	back, err := DescriptorFromDict(d.ToDict())
	require.NoError(t, err)
	assert.Equal(t, d, back)
}

func TestGroundSingleMode(t *testing.T) {
	d := mustLight(t, 3, 1550, PolarizationR)
	j := Ground(d)
	assert.Equal(t, 3, j.Side())
	rho := j.Rho()
	assert.Equal(t, complex128(1), rho.At(0, 0))
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			if i == 0 && k == 0 {
				continue
			}
			assert.Equal(t, complex128(0), rho.At(i, k))
		}
	}
}

func TestComposeAppendsAndTensors(t *testing.T) {
	a := mustInternal(t, 2)
	b := mustInternal(t, 3)
	ja := Ground(a)
	jb := Ground(b)

	// Put A in state |1> so the product has a recognizable nonzero entry.
	rho := ja.Rho()
	rho.Set(0, 0, 0)
	rho.Set(1, 1, 1)
	ja = &Joint{props: []Descriptor{a}, rho: rho}

	require.NoError(t, ja.Compose(jb))
	assert.Equal(t, []Descriptor{a, b}, ja.Props())
	assert.Equal(t, 6, ja.Side())
	got := ja.Rho()
	assert.Equal(t, complex128(1), got.At(3, 3))
}

func TestComposeRejectsDuplicateSubsystem(t *testing.T) {
	a := mustInternal(t, 2)
	ja := Ground(a)
	jb := Ground(a)
	err := ja.Compose(jb)
	assert.ErrorIs(t, err, ErrDuplicateSubsystem)
	// Unchanged on failure.
	assert.Equal(t, 2, ja.Side())
}

func TestReorderSwapsFactors(t *testing.T) {
	a := mustInternal(t, 2)
	b := mustInternal(t, 3)
	ja := Ground(a)
	rho := ja.Rho()
	rho.Set(0, 0, 0)
	rho.Set(1, 1, 1)
	ja = &Joint{props: []Descriptor{a}, rho: rho}
	jb := Ground(b)
	require.NoError(t, ja.Compose(jb))

	require.NoError(t, ja.Reorder([]Descriptor{b, a}))
	assert.Equal(t, []Descriptor{b, a}, ja.Props())
	got := ja.Rho()
	assert.Equal(t, complex128(1), got.At(1, 1))
}

func TestReorderUnknownSubsystem(t *testing.T) {
	a := mustInternal(t, 2)
	ja := Ground(a)
	bogus := mustInternal(t, 2)
	err := ja.Reorder([]Descriptor{bogus})
	assert.ErrorIs(t, err, ErrUnknownSubsystem)
}

func TestApplyChannelXOnFirstFactor(t *testing.T) {
	a := mustInternal(t, 2)
	b := mustInternal(t, 3)
	j := Ground(a)
	require.NoError(t, j.Compose(Ground(b)))

	x := pauliX()
	require.NoError(t, j.ApplyChannel(x, []Descriptor{a}))

	got := j.Rho()
	for i := 0; i < 6; i++ {
		for k := 0; k < 6; k++ {
			want := complex128(0)
			if i == 3 && k == 3 {
				want = 1
			}
			assert.Equalf(t, want, got.At(i, k), "at (%d,%d)", i, k)
		}
	}
}

func TestApplyChannelMismatchedKrausSide(t *testing.T) {
	a := mustInternal(t, 2)
	j := Ground(a)
	bad := identity(3)
	err := j.ApplyChannel(bad, []Descriptor{a})
	assert.ErrorIs(t, err, ErrChannelMismatch)
	// Unchanged on failure.
	assert.Equal(t, complex128(1), j.Rho().At(0, 0))
}

func TestReduceTwoFactorGroundState(t *testing.T) {
	a := mustInternal(t, 2)
	b := mustInternal(t, 3)
	j := Ground(a)
	require.NoError(t, j.Compose(Ground(b)))

	reduced, err := j.Reduce([]Descriptor{a})
	require.NoError(t, err)
	assert.Equal(t, 2, reduced.Side)
	assert.Equal(t, complex128(1), reduced.At(0, 0))
	assert.Equal(t, complex128(0), reduced.At(1, 1))
}

func TestEnvelopeRoundTrip(t *testing.T) {
	a := mustLight(t, 2, 780, PolarizationH)
	b := mustInternal(t, 3)
	j := Ground(a)
	require.NoError(t, j.Compose(Ground(b)))

	env := j.ToEnvelope()
	back, err := FromEnvelope(env)
	require.NoError(t, err)
	assert.Equal(t, j.Props(), back.Props())
	assert.True(t, isClose(j.Rho(), back.Rho()))
}

func TestFromEnvelopeMalformedDimensions(t *testing.T) {
	a := mustInternal(t, 2)
	j := Ground(a)
	env := j.ToEnvelope()
	env.Dimensions = 99
	_, err := FromEnvelope(env)
	assert.ErrorIs(t, err, ErrMalformedState)
}
