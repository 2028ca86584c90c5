package coordinator

import "github.com/pkg/errors"

var (
	// ErrRequestInFlight is returned by QueryChannel or Negotiate when
	// another request is already outstanding on the same handle. Spec.md
	// §4.4: "the façade enforces that at most one query is in flight per
	// component handle".
	ErrRequestInFlight = errors.New("coordinator: request already in flight for this handle")

	// ErrComponentDead is returned for any operation against a handle
	// that has been marked dead: through Facade.MarkDead, or after an
	// earlier request to the component failed at the transport level.
	ErrComponentDead = errors.New("coordinator: component is dead")

	// ErrNotReady is returned when a component refuses a channel query
	// because it hasn't completed parameter negotiation yet (spec.md §9:
	// "channel queries that precede readiness respond with a refusal
	// ... not a crash").
	ErrNotReady = errors.New("coordinator: component is not ready")
)
