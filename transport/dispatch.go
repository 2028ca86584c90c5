package transport

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var headerValidate = validator.New()

// Handler processes one inbound frame and returns the Message to write
// back as the response, or nil for message types that expect no reply.
type Handler func(raw json.RawMessage) (Message, error)

// Dispatcher is a tagged-variant dispatch table: it routes an inbound
// frame to the handler registered for its msg_type (spec.md §9,
// "Polymorphic handler registration"). Each component process and the
// coordinator process own one Dispatcher, populated at startup; no
// reflection-based routing is used.
type Dispatcher struct {
	handlers map[MsgType]Handler
}

// NewDispatcher returns an empty dispatch table.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[MsgType]Handler)}
}

// Register binds a Handler to a msg_type. Registering the same msg_type
// twice replaces the previous handler.
func (d *Dispatcher) Register(t MsgType, h Handler) {
	d.handlers[t] = h
}

// Dispatch validates and routes a single inbound frame. A frame that
// fails header validation, or whose msg_type has no registered handler,
// is reported as an error for the caller to log and drop (spec.md §7:
// "schema-validation failure of an inbound message is logged and the
// message is dropped") rather than crashing the process.
func (d *Dispatcher) Dispatch(frame []byte) (Message, error) {
	var head Header
	if err := json.Unmarshal(frame, &head); err != nil {
		return nil, errors.Wrap(err, "transport: malformed message envelope")
	}
	if err := headerValidate.Struct(head); err != nil {
		return nil, errors.Wrap(err, "transport: message envelope failed validation")
	}
	h, ok := d.handlers[head.MsgType]
	if !ok {
		return nil, errors.Errorf("transport: no handler registered for msg_type %q", head.MsgType)
	}
	return h(frame)
}
