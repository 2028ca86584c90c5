// Package coordinator implements the Coordinator Façade: the thin API
// that turns "query component X for its channel on ports P, then apply"
// into an atomic step on behalf of a caller, plus the parameter
// negotiation and readiness bookkeeping spec.md §9 calls for.
package coordinator

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/qsi-go/qsi/channel"
	"github.com/qsi-go/qsi/internal/kernel"
	"github.com/qsi-go/qsi/state"
	"github.com/qsi-go/qsi/transport"
)

// Requester is the transport dependency the façade needs: send one
// request, block for exactly one reply. *transport.Client satisfies
// this; tests substitute a fake.
type Requester interface {
	Request(port int, msg transport.Message) (json.RawMessage, error)
}

// Facade consumes Joint States on behalf of callers, querying registered
// components for channels and applying them.
type Facade struct {
	requester Requester
	handles   map[int]*Handle
}

// NewFacade returns a Facade that sends requests through requester.
func NewFacade(requester Requester) *Facade {
	return &Facade{requester: requester, handles: make(map[int]*Handle)}
}

// Register adds a component already listening on port (spawned and
// supervised by package process) to this façade, reachable thereafter
// through the returned Handle. Lifecycle (spawning, reaping) is package
// process's concern; Register only does the façade-side bookkeeping.
func (f *Facade) Register(port, coordinatorPort int) *Handle {
	h := &Handle{Port: port, CoordinatorPort: coordinatorPort}
	f.handles[port] = h
	return h
}

// MarkDead flags a registered handle as dead, e.g. after the process
// supervisor reaps its component.
func (f *Facade) MarkDead(h *Handle) {
	h.markDead()
}

// Negotiate drives a component through param_set -> param_set_response,
// marking the handle ready on success. A component that hasn't been
// negotiated refuses channel queries (see QueryChannel).
func (f *Facade) Negotiate(h *Handle, params map[string]transport.ParamValue) error {
	if err := h.acquire(); err != nil {
		return err
	}
	defer h.release()

	msg := &transport.ParamSet{
		Header: transport.Header{MsgType: transport.MsgParamSet},
		Params: params,
	}
	raw, err := f.requester.Request(h.Port, msg)
	if err != nil {
		h.markDead()
		return errors.Wrap(err, "coordinator: param_set request failed")
	}
	var resp transport.ParamSetResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errors.Wrap(err, "coordinator: malformed param_set_response")
	}
	h.markReady()
	return nil
}

// QueryChannel sends a channel-query envelope carrying the current Joint
// State and the port-to-id bindings, and returns the resulting Channel
// Descriptor. A refusal (the component's reply populates only
// "message") surfaces as ErrNotReady; a retrigger-only reply surfaces as
// a Descriptor with Retrigger set and no Kraus operators.
func (f *Facade) QueryChannel(h *Handle, current *state.Joint, ports map[string]string) (*channel.Descriptor, error) {
	if err := h.acquire(); err != nil {
		return nil, err
	}
	defer h.release()

	env := current.ToEnvelope()
	msg := &transport.ChannelQuery{
		Header:     transport.Header{MsgType: transport.MsgChannelQuery},
		Dimensions: env.Dimensions,
		State:      env.State,
		StateProps: env.StateProps,
		Ports:      ports,
	}
	raw, err := f.requester.Request(h.Port, msg)
	if err != nil {
		h.markDead()
		return nil, errors.Wrap(err, "coordinator: channel_query request failed")
	}

	var resp transport.ChannelQueryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.Wrap(err, "coordinator: malformed channel_query_response")
	}

	if resp.Message != "" {
		return nil, errors.Wrap(ErrNotReady, resp.Message)
	}

	if len(resp.KrausOperators) == 0 {
		return &channel.Descriptor{
			Retrigger:     resp.Retrigger != nil && *resp.Retrigger,
			RetriggerTime: resp.RetriggerTime,
		}, nil
	}

	kraus := make([]*kernel.Dense, len(resp.KrausOperators))
	for i, op := range resp.KrausOperators {
		m, err := state.MatrixFromSerialized(op)
		if err != nil {
			return nil, errors.Wrapf(err, "coordinator: decoding kraus operator %d", i)
		}
		kraus[i] = m
	}

	return &channel.Descriptor{
		Kraus:         kraus,
		Targets:       resp.KrausStateIndices,
		Error:         resp.Error,
		OperationTime: resp.OperationTime,
		Retrigger:     resp.Retrigger != nil && *resp.Retrigger,
		RetriggerTime: resp.RetriggerTime,
	}, nil
}

// Apply mutates s by applying ch's Kraus operators to the subsystems it
// targets, validating ch against s's current descriptors first (so a
// rejected Apply leaves s unchanged, per state.Joint's own failure
// semantics).
func (f *Facade) Apply(s *state.Joint, ch *channel.Descriptor) error {
	targets, err := ch.Validate(s)
	if err != nil {
		return err
	}
	return s.ApplyChannel(ch.Kraus, targets)
}
