package transport

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/pkg/errors"
)

// Client sends request/response pairs to components over the
// length-prefixed socket transport. Every message it sends carries
// SentFrom as its sent_from port, matching socket_handler.py's
// send_to, which stamps the sender's own listening port onto every
// outbound message.
type Client struct {
	SentFrom int
	Timeout  time.Duration
}

// NewClient returns a Client that stamps sentFrom on every outbound
// message and applies the given per-request timeout (zero means no
// timeout).
func NewClient(sentFrom int, timeout time.Duration) *Client {
	return &Client{SentFrom: sentFrom, Timeout: timeout}
}

// Request dials port on localhost, sends msg as a single framed request,
// and blocks for exactly one framed reply on the same connection. This
// is the Go-native rendering of spec.md §5's "coordinator façade blocks
// waiting for a component's reply": one connection, one request, one
// response, rather than the original's separate fire-and-forget sockets
// correlated by a side-channel flag.
func (c *Client) Request(port int, msg Message) (json.RawMessage, error) {
	msg.HeaderPtr().SentFrom = c.SentFrom

	addr := fmt.Sprintf("localhost:%d", port)
	var conn net.Conn
	var err error
	if c.Timeout > 0 {
		conn, err = net.DialTimeout("tcp", addr, c.Timeout)
	} else {
		conn, err = net.Dial("tcp", addr)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "transport: dialing %s", addr)
	}
	defer conn.Close()

	if c.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.Timeout))
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "transport: encoding request")
	}
	if err := WriteFrame(conn, payload); err != nil {
		return nil, err
	}
	return ReadFrame(conn)
}

// RetryRequest retries Request up to retries times with linear backoff
// (spec.md §7: "connection refused triggers bounded retry with linear
// backoff"), grounded in qsi/socket_handler.py's retry_connection.
func (c *Client) RetryRequest(port int, msg Message, retries int, backoff time.Duration) (json.RawMessage, error) {
	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		raw, err := c.Request(port, msg)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		time.Sleep(backoff * time.Duration(attempt+1))
	}
	return nil, errors.Wrapf(lastErr, "transport: giving up after %d attempts", retries)
}
