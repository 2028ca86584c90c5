// Package channel implements the Channel Descriptor: the value object a
// component returns in reply to a channel query, naming the Kraus
// operators it wants applied and the subsystems they're addressed to.
package channel

import (
	"github.com/pkg/errors"

	"github.com/qsi-go/qsi/internal/kernel"
	"github.com/qsi-go/qsi/state"
)

// ErrChannelMismatch is returned when a Kraus operator's side disagrees
// with the product of the truncations of its target subsystems, or when
// the operators in a descriptor don't all share the same side. It is the
// same sentinel state.Joint.ApplyChannel returns for the equivalent
// failure, since both describe the one error in spec.md's taxonomy.
var ErrChannelMismatch = state.ErrChannelMismatch

// Descriptor is a component's answer to a channel query: the Kraus
// operators to apply, the ordered ids of the subsystems they act on, and
// auxiliary scheduling fields.
type Descriptor struct {
	Kraus   []*kernel.Dense
	Targets []string

	// Error is the component's estimate of this operation's contribution
	// to overall simulation error, in [0, 1].
	Error *float64

	// OperationTime is the (simulated) duration the operation took.
	OperationTime *float64

	// Retrigger, when true, asks the coordinator to query this component
	// again after RetriggerTime.
	Retrigger     bool
	RetriggerTime *float64
}

// Validate checks a Descriptor against the Joint it is about to be
// applied to: every target id must exist in j, every Kraus matrix must
// have side equal to the product of target truncations, and all Kraus
// matrices must share that one side. It does not mutate j.
func (d Descriptor) Validate(j *state.Joint) ([]state.Descriptor, error) {
	if len(d.Targets) == 0 {
		return nil, errors.Wrap(ErrChannelMismatch, "channel descriptor has no targets")
	}
	seen := make(map[string]bool, len(d.Targets))
	targets := make([]state.Descriptor, 0, len(d.Targets))
	wantSide := 1
	for _, id := range d.Targets {
		if seen[id] {
			return nil, errors.Wrapf(ErrChannelMismatch, "duplicate target id %q", id)
		}
		seen[id] = true
		desc, err := j.Get(id)
		if err != nil {
			return nil, err
		}
		targets = append(targets, desc)
		wantSide *= desc.Truncation
	}

	if len(d.Kraus) == 0 {
		return nil, errors.Wrap(ErrChannelMismatch, "channel descriptor has no kraus operators")
	}
	for i, K := range d.Kraus {
		if K.Side != wantSide {
			return nil, errors.Wrapf(ErrChannelMismatch,
				"kraus operator %d has side %d, want %d (product of target truncations)", i, K.Side, wantSide)
		}
	}
	return targets, nil
}
