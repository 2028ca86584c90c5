// Package state implements the joint quantum-state engine: the
// multipartite density-matrix container that is composed, reordered,
// driven through Kraus channels, and partially traced as components are
// wired into a simulation pipeline.
package state

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/qsi-go/qsi/internal/kernel"
)

// Joint owns an ordered list of Subsystem Descriptors and the square
// density matrix over their tensor product. It is not safe for
// concurrent mutation: all operations below are blocking, synchronous,
// and mutate in place (spec.md §5). A Joint is exclusively owned by its
// caller; Compose consumes its right-hand operand, which must not be
// used afterwards.
type Joint struct {
	props []Descriptor
	rho   *kernel.Dense
}

// Ground returns a new Joint with a single factor, initialised to the
// ground state |0><0| of that factor's truncation.
func Ground(desc Descriptor) *Joint {
	return &Joint{
		props: []Descriptor{desc},
		rho:   kernel.Ground(desc.Truncation),
	}
}

// FromEnvelope rebuilds a Joint from its wire representation. It fails
// with ErrMalformedState if the matrix side disagrees with the product
// of the descriptor truncations, or if the descriptor list can't be
// reconstructed.
func FromEnvelope(env Envelope) (*Joint, error) {
	props := make([]Descriptor, len(env.StateProps))
	for i, raw := range env.StateProps {
		d, err := DescriptorFromDict(raw)
		if err != nil {
			return nil, errors.Wrap(ErrMalformedState, err.Error())
		}
		props[i] = d
	}

	want := kernel.Product(truncationsOf(props))
	if want != env.Dimensions {
		return nil, errors.Wrapf(ErrMalformedState,
			"declared dimensions %d disagree with product of truncations %d", env.Dimensions, want)
	}

	rho, err := MatrixFromSerialized(env.State)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedState, err.Error())
	}
	if rho.Side != want {
		return nil, errors.Wrapf(ErrMalformedState,
			"matrix side %d disagrees with product of truncations %d", rho.Side, want)
	}

	return &Joint{props: props, rho: rho}, nil
}

func truncationsOf(props []Descriptor) []int {
	dims := make([]int, len(props))
	for i, p := range props {
		dims[i] = p.Truncation
	}
	return dims
}

// Props returns a copy of the current ordered descriptor list.
func (j *Joint) Props() []Descriptor {
	return slices.Clone(j.props)
}

// Rho returns a copy of the current density matrix. The returned matrix
// is safe to mutate without affecting the Joint.
func (j *Joint) Rho() *kernel.Dense {
	return j.rho.Clone()
}

// Side returns the current side length D of the density matrix, i.e.
// the product of all factor truncations.
func (j *Joint) Side() int {
	return j.rho.Side
}

func (j *Joint) dims() []int {
	return truncationsOf(j.props)
}

func (j *Joint) indexOf(id string) (int, bool) {
	for i, p := range j.props {
		if p.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Get returns the descriptor with the given id, or ErrUnknownSubsystem
// if it isn't part of this Joint.
func (j *Joint) Get(id string) (Descriptor, error) {
	i, ok := j.indexOf(id)
	if !ok {
		return Descriptor{}, errors.Wrapf(ErrUnknownSubsystem, "id %q", id)
	}
	return j.props[i], nil
}

// GetAll returns the descriptors for the given ids, preserving input
// order and silently skipping ids not present. This best-effort lookup
// is intended for callers (e.g. the coordinator façade) translating a
// Channel Descriptor's target ids back into Descriptor values.
func (j *Joint) GetAll(ids []string) []Descriptor {
	out := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		if i, ok := j.indexOf(id); ok {
			out = append(out, j.props[i])
		}
	}
	return out
}

// Compose mutates the Joint in place: rho <- rho (x) other.rho, props <-
// props ++ other.props. The rightmost descriptors of the combined state
// correspond to other's factors, in other's order. Compose fails with
// ErrDuplicateSubsystem (and leaves both Joints unchanged) if any id in
// other.props already appears in this Joint. On success other is
// consumed: its internal state is cleared and it must not be used again.
func (j *Joint) Compose(other *Joint) error {
	seen := make(map[string]bool, len(j.props))
	for _, p := range j.props {
		seen[p.ID] = true
	}
	for _, p := range other.props {
		if seen[p.ID] {
			return errors.Wrapf(ErrDuplicateSubsystem, "id %q", p.ID)
		}
	}

	j.rho = kernel.Kron(j.rho, other.rho)
	j.props = append(j.props, other.props...)

	other.props = nil
	other.rho = nil
	return nil
}

// Reorder permutes the factor order of rho and props so that the
// descriptors in targetPrefix appear first, in the order given, followed
// by the remaining descriptors in their original relative order. It
// preserves the physical state exactly: it only relabels which factor is
// outermost (spec.md §4.2). Fails with ErrUnknownSubsystem (and leaves
// the Joint unchanged) if any descriptor in targetPrefix isn't part of
// this Joint.
func (j *Joint) Reorder(targetPrefix []Descriptor) error {
	prefixIdx := make([]int, 0, len(targetPrefix))
	prefixSet := make(map[string]bool, len(targetPrefix))
	for _, d := range targetPrefix {
		i, ok := j.indexOf(d.ID)
		if !ok {
			return errors.Wrapf(ErrUnknownSubsystem, "id %q", d.ID)
		}
		if !prefixSet[d.ID] {
			prefixIdx = append(prefixIdx, i)
			prefixSet[d.ID] = true
		}
	}
	rest := make([]int, 0, len(j.props)-len(prefixIdx))
	for i, p := range j.props {
		if !prefixSet[p.ID] {
			rest = append(rest, i)
		}
	}
	perm := append(prefixIdx, rest...)

	newRho, err := kernel.Permute(j.rho, j.dims(), perm)
	if err != nil {
		return err
	}
	newProps := make([]Descriptor, len(perm))
	for newPos, oldPos := range perm {
		newProps[newPos] = j.props[oldPos]
	}

	j.rho = newRho
	j.props = newProps
	return nil
}

// ApplyChannel applies sum_i K_i rho K_i^dagger in place, where each K_i
// acts as specified on the factors named by targets (in the order given)
// and as the identity on every other factor. targets must name ids
// present in this Joint, else ErrUnknownSubsystem, and must be distinct,
// else ErrChannelMismatch; the Kraus
// operators must all share a side equal to the product of the target
// truncations, else ErrChannelMismatch. props is unchanged; validation
// happens before any mutation, so a failed call leaves rho untouched.
func (j *Joint) ApplyChannel(kraus []*kernel.Dense, targets []Descriptor) error {
	if len(targets) == 0 {
		return errors.Wrap(ErrUnknownSubsystem, "apply_channel requires at least one target")
	}
	targetIdx := make([]int, len(targets))
	seen := make(map[string]bool, len(targets))
	for i, d := range targets {
		idx, ok := j.indexOf(d.ID)
		if !ok {
			return errors.Wrapf(ErrUnknownSubsystem, "id %q", d.ID)
		}
		if seen[d.ID] {
			return errors.Wrapf(ErrChannelMismatch, "duplicate target id %q", d.ID)
		}
		seen[d.ID] = true
		targetIdx[i] = idx
	}

	wantSide := 1
	for _, d := range targets {
		wantSide *= d.Truncation
	}
	for i, K := range kraus {
		if K.Side != wantSide {
			return errors.Wrapf(ErrChannelMismatch,
				"kraus operator %d has side %d, want %d (product of target truncations)", i, K.Side, wantSide)
		}
	}

	newRho, err := kernel.ApplyChannel(j.rho, j.dims(), targetIdx, kraus)
	if err != nil {
		return errors.Wrap(ErrChannelMismatch, err.Error())
	}
	j.rho = newRho
	return nil
}

// Reduce returns the reduced density matrix over the ordered descriptor
// list keep, without modifying this Joint. If keep names every
// descriptor in props (in any order) the result is mathematically the
// full rho, permuted to keep's order. Fails with ErrUnknownSubsystem if
// any descriptor in keep isn't part of this Joint.
func (j *Joint) Reduce(keep []Descriptor) (*kernel.Dense, error) {
	if len(keep) == 0 {
		return nil, errors.Wrap(ErrUnknownSubsystem, "reduce requires at least one kept subsystem")
	}
	keepIdx := make([]int, len(keep))
	for i, d := range keep {
		idx, ok := j.indexOf(d.ID)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownSubsystem, "id %q", d.ID)
		}
		keepIdx[i] = idx
	}
	return kernel.PartialTrace(j.rho, j.dims(), keepIdx), nil
}

// ToEnvelope produces the transport representation of this Joint.
func (j *Joint) ToEnvelope() Envelope {
	props := make([]map[string]string, len(j.props))
	for i, p := range j.props {
		props[i] = p.ToDict()
	}
	return Envelope{
		Dimensions: j.rho.Side,
		State:      MatrixToSerialized(j.rho),
		StateProps: props,
	}
}
