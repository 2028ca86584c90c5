package state

import "github.com/pkg/errors"

// Error taxonomy for the joint-state engine (spec §7). All five are
// recoverable: they are raised before any mutation of a Joint, so a
// failed call leaves the Joint exactly as it was. None of them are
// logged here — they propagate to the caller, who decides what to do
// with them (contrast with the transport/process layers, which do log
// their own error classes).
var (
	// ErrInvalidDescriptor is returned when a Subsystem Descriptor fails
	// field validation: non-positive truncation, or a kind-specific
	// attribute (wavelength, polarization) missing for kind=light.
	ErrInvalidDescriptor = errors.New("state: invalid descriptor")

	// ErrDuplicateSubsystem is returned by Compose when the right-hand
	// operand carries an id already present in the left-hand operand.
	ErrDuplicateSubsystem = errors.New("state: duplicate subsystem")

	// ErrUnknownSubsystem is returned when an operation references an id
	// not present in a Joint's descriptors.
	ErrUnknownSubsystem = errors.New("state: unknown subsystem")

	// ErrChannelMismatch is returned when a Kraus operator's side
	// disagrees with the product of the truncations of its target
	// subsystems, or when the Kraus operators in a single call don't all
	// share the same side.
	ErrChannelMismatch = errors.New("state: channel mismatch")

	// ErrMalformedState is returned by FromEnvelope when the envelope is
	// internally inconsistent: the matrix side doesn't equal the product
	// of the descriptor truncations, or the descriptor list can't be
	// reconstructed.
	ErrMalformedState = errors.New("state: malformed state envelope")
)
