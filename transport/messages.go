// Package transport implements the coordinator<->component wire
// protocol: length-prefixed framing, the message envelope catalogue, and
// a tagged dispatch table (spec.md §6, §9 "Polymorphic handler
// registration").
package transport

// MsgType tags a message envelope's kind, per the table in spec.md §6.
type MsgType string

const (
	MsgParamQuery           MsgType = "param_query"
	MsgParamQueryResponse   MsgType = "param_query_response"
	MsgParamSet             MsgType = "param_set"
	MsgParamSetResponse     MsgType = "param_set_response"
	MsgStateInit            MsgType = "state_init"
	MsgStateInitResponse    MsgType = "state_init_response"
	MsgChannelQuery         MsgType = "channel_query"
	MsgChannelQueryResponse MsgType = "channel_query_response"
	MsgTerminate            MsgType = "terminate"
	MsgTerminateResponse    MsgType = "terminate_response"
)

// ParamType is one of the type tags a component advertises for each of
// its parameters in a param_query_response.
type ParamType string

const (
	ParamInteger ParamType = "integer"
	ParamNumber  ParamType = "number"
	ParamString  ParamType = "string"
	ParamComplex ParamType = "complex"
)

// Header is embedded in every message envelope. Every message carries a
// sent_from port and a msg_type tag (spec.md §6).
type Header struct {
	MsgType  MsgType `json:"msg_type" validate:"required"`
	SentFrom int     `json:"sent_from"`
}

// HeaderPtr returns a pointer to h itself, letting Message-typed values
// be addressed generically by the client and dispatcher without a type
// switch over every concrete message type.
func (h *Header) HeaderPtr() *Header { return h }

// Message is implemented by every concrete envelope type via its
// embedded Header.
type Message interface {
	HeaderPtr() *Header
}

// ParamQuery carries no payload beyond the header.
type ParamQuery struct {
	Header
}

// ParamQueryResponse advertises the component's declared parameters and
// their type tags.
type ParamQueryResponse struct {
	Header
	Params map[string]ParamType `json:"params"`
}

// ParamValue wraps a single parameter value being set.
type ParamValue struct {
	Value any `json:"value"`
}

// ParamSet pushes parameter values to a component.
type ParamSet struct {
	Header
	Params map[string]ParamValue `json:"params"`
}

// ParamSetResponse acknowledges a ParamSet.
type ParamSetResponse struct {
	Header
}

// StateInit asks a component to report its internal Joint States.
type StateInit struct {
	Header
}

// StateInitResponse carries the component's internal state envelopes.
type StateInitResponse struct {
	Header
	States []StateEnvelopeJSON `json:"states"`
}

// StateEnvelopeJSON is the wire shape of a state.Envelope: it declares
// the same fields and JSON keys itself rather than embedding
// state.Envelope.
type StateEnvelopeJSON struct {
	Dimensions int                 `json:"dimensions"`
	State      [][][2]float64      `json:"state"`
	StateProps []map[string]string `json:"state_props"`
}

// ChannelQuery carries the current Joint State and the port-to-id
// bindings for the query.
type ChannelQuery struct {
	Header
	Dimensions int                 `json:"dimensions"`
	State      [][][2]float64      `json:"state"`
	StateProps []map[string]string `json:"state_props"`
	Ports      map[string]string   `json:"ports,omitempty"`
}

// ChannelQueryResponse is a component's answer to a channel query: one
// of a Kraus-operator payload, a bare refusal message, or a
// retrigger-only response (spec.md §6).
type ChannelQueryResponse struct {
	Header
	KrausOperators    [][][][2]float64 `json:"kraus_operators,omitempty"`
	KrausStateIndices []string         `json:"kraus_state_indices,omitempty"`
	Error             *float64         `json:"error,omitempty"`
	Message           string           `json:"message,omitempty"`
	OperationTime     *float64         `json:"operation_time,omitempty"`
	Retrigger         *bool            `json:"retrigger,omitempty"`
	RetriggerTime     *float64         `json:"retrigger_time,omitempty"`
}

// Terminate asks a component to shut down cleanly.
type Terminate struct {
	Header
}

// TerminateResponse acknowledges a Terminate.
type TerminateResponse struct {
	Header
}
