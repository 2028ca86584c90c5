package kernel

import (
	"math/cmplx"

	"github.com/pkg/errors"
)

// strides returns the row-major strides for the given factor dimensions,
// such that flat = sum(idx[i] * strides[i]).
func strides(dims []int) []int {
	s := make([]int, len(dims))
	acc := 1
	for i := len(dims) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= dims[i]
	}
	return s
}

// MultiIndex decomposes a flat row-major index into per-factor indices
// given the factor dimensions.
func MultiIndex(dims []int, flat int) []int {
	idx := make([]int, len(dims))
	rem := flat
	st := strides(dims)
	for i, s := range st {
		idx[i] = rem / s
		rem -= idx[i] * s
	}
	return idx
}

// FlatIndex composes per-factor indices into a flat row-major index given
// the factor dimensions.
func FlatIndex(dims []int, idx []int) int {
	st := strides(dims)
	flat := 0
	for i, s := range st {
		flat += idx[i] * s
	}
	return flat
}

// Permute relabels the factor order of a rank-2k density matrix in place
// of a reshape-transpose-reshape: out[newIdx(perm, rowIdx)][newIdx(perm,
// colIdx)] = m[rowIdx][colIdx], where perm[j] names which old factor
// position now sits at new position j. It implements the reorder
// primitive from spec.md: the physical state is unchanged, only which
// factor is outermost changes.
//
// dims is the *old* factor dimension list (one entry per factor of m, in
// m's current order). perm must be a permutation of 0..len(dims)-1.
func Permute(m *Dense, dims []int, perm []int) (*Dense, error) {
	if len(dims) != len(perm) {
		return nil, errors.Errorf("kernel: Permute dims/perm length mismatch %d vs %d", len(dims), len(perm))
	}
	newDims := make([]int, len(dims))
	for j, p := range perm {
		newDims[j] = dims[p]
	}
	out := NewZeros(m.Side)
	rowIdx := make([]int, len(dims))
	colIdx := make([]int, len(dims))
	newRowIdx := make([]int, len(dims))
	newColIdx := make([]int, len(dims))
	for row := 0; row < m.Side; row++ {
		rowIdx = multiIndexInto(dims, row, rowIdx)
		for j, p := range perm {
			newRowIdx[j] = rowIdx[p]
		}
		newRow := FlatIndex(newDims, newRowIdx)
		for col := 0; col < m.Side; col++ {
			v := m.At(row, col)
			if v == 0 {
				continue
			}
			colIdx = multiIndexInto(dims, col, colIdx)
			for j, p := range perm {
				newColIdx[j] = colIdx[p]
			}
			newCol := FlatIndex(newDims, newColIdx)
			out.Set(newRow, newCol, v)
		}
	}
	return out, nil
}

// multiIndexInto is MultiIndex but reuses the given backing slice.
func multiIndexInto(dims []int, flat int, dst []int) []int {
	rem := flat
	st := strides(dims)
	for i, s := range st {
		dst[i] = rem / s
		rem -= dst[i] * s
	}
	return dst
}

// ApplyChannel applies the CPTP map rho -> sum_i K_i rho K_i^dagger, where
// each K_i acts as specified on the factors named by targets (positions
// into dims, the factor dimensions of rho in its current order) and as
// the identity on every other factor. This is the direct index-arithmetic
// form of the label-assignment contraction in spec.md's
// Joint.apply_channel: it does not permute dims or reshape rho's factor
// order, it only contracts the named target axes.
func ApplyChannel(rho *Dense, dims []int, targets []int, kraus []*Dense) (*Dense, error) {
	if len(kraus) == 0 {
		return nil, errors.New("kernel: ApplyChannel requires at least one Kraus operator")
	}
	tdims := make([]int, len(targets))
	for i, t := range targets {
		tdims[i] = dims[t]
	}
	tside := Product(tdims)
	for i, k := range kraus {
		if k.Side != tside {
			return nil, errors.Errorf("kernel: ApplyChannel Kraus operator %d has side %d, want %d", i, k.Side, tside)
		}
	}

	D := rho.Side
	out := NewZeros(D)
	rowIdx := make([]int, len(dims))
	colIdx := make([]int, len(dims))
	modRow := make([]int, len(dims))
	modCol := make([]int, len(dims))

	for row := 0; row < D; row++ {
		rowIdx = multiIndexInto(dims, row, rowIdx)
		outA := targetComponent(rowIdx, targets, tdims)
		for col := 0; col < D; col++ {
			colIdx = multiIndexInto(dims, col, colIdx)
			outB := targetComponent(colIdx, targets, tdims)

			var sum complex128
			for _, K := range kraus {
				for a := 0; a < tside; a++ {
					kaa := K.At(outA, a)
					if kaa == 0 {
						continue
					}
					copy(modRow, rowIdx)
					scatterTarget(modRow, targets, tdims, a)
					rIn := FlatIndex(dims, modRow)
					for b := 0; b < tside; b++ {
						kbb := K.At(outB, b)
						if kbb == 0 {
							continue
						}
						copy(modCol, colIdx)
						scatterTarget(modCol, targets, tdims, b)
						cIn := FlatIndex(dims, modCol)
						sum += kaa * rho.At(rIn, cIn) * cmplx.Conj(kbb)
					}
				}
			}
			if sum != 0 {
				out.Set(row, col, sum)
			}
		}
	}
	return out, nil
}

// targetComponent extracts the flat target-subspace index from a full
// multi-index, reading only the components at the given target
// positions, in target order.
func targetComponent(full []int, targets []int, tdims []int) int {
	comp := make([]int, len(targets))
	for i, t := range targets {
		comp[i] = full[t]
	}
	return FlatIndex(tdims, comp)
}

// scatterTarget writes the per-factor decomposition of flat (in tdims)
// back into full at the given target positions.
func scatterTarget(full []int, targets []int, tdims []int, flat int) {
	comp := MultiIndex(tdims, flat)
	for i, t := range targets {
		full[t] = comp[i]
	}
}

// PartialTrace returns the reduced density matrix over the factors named
// by keep (positions into dims, the factor dimensions of rho in its
// current order), summing out every other factor. It does not mutate
// rho. This implements spec.md's Joint.reduce contraction: for every
// traced-out factor the ket and bra index are tied together and summed.
func PartialTrace(rho *Dense, dims []int, keep []int) *Dense {
	kdims := make([]int, len(keep))
	for i, k := range keep {
		kdims[i] = dims[k]
	}
	kside := Product(kdims)
	out := NewZeros(kside)

	traced := make([]int, 0, len(dims)-len(keep))
	keepSet := make(map[int]bool, len(keep))
	for _, k := range keep {
		keepSet[k] = true
	}
	for i := range dims {
		if !keepSet[i] {
			traced = append(traced, i)
		}
	}
	tdims := make([]int, len(traced))
	for i, t := range traced {
		tdims[i] = dims[t]
	}
	tside := Product(tdims)

	full := make([]int, len(dims))
	for outRow := 0; outRow < kside; outRow++ {
		keepRowIdx := MultiIndex(kdims, outRow)
		for outCol := 0; outCol < kside; outCol++ {
			keepColIdx := MultiIndex(kdims, outCol)
			var sum complex128
			for t := 0; t < tside; t++ {
				tracedIdx := MultiIndex(tdims, t)
				for i, k := range keep {
					full[k] = keepRowIdx[i]
				}
				for i, tr := range traced {
					full[tr] = tracedIdx[i]
				}
				rFlat := FlatIndex(dims, full)
				for i, k := range keep {
					full[k] = keepColIdx[i]
				}
				for i, tr := range traced {
					full[tr] = tracedIdx[i]
				}
				cFlat := FlatIndex(dims, full)
				sum += rho.At(rFlat, cFlat)
			}
			if sum != 0 {
				out.Set(outRow, outCol, sum)
			}
		}
	}
	return out
}
