package transport

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Server accepts one connection at a time, reads exactly one framed
// request from it, dispatches it, writes back exactly one framed
// response (when the handler produces one), and closes the connection.
// It is the listening half of both the coordinator and every component
// process (grounded in qsi/socket_handler.py's handle_connections).
type Server struct {
	listener   net.Listener
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// Listen binds a Server to localhost:port.
func Listen(port int, dispatcher *Dispatcher, logger *zap.Logger) (*Server, error) {
	l, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return nil, errors.Wrapf(err, "transport: listening on port %d", port)
	}
	return &Server{listener: l, dispatcher: dispatcher, logger: logger}, nil
}

// Addr returns the server's bound address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Close stops accepting new connections.
func (s *Server) Close() error { return s.listener.Close() }

// Serve accepts connections until the listener is closed. Each
// connection is handled synchronously in its own goroutine: one frame
// in, one frame out (when the handler returns a non-nil Message).
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	frame, err := ReadFrame(conn)
	if err != nil {
		s.logger.Warn("transport: failed to read frame", zap.Error(err))
		return
	}

	reply, err := s.dispatcher.Dispatch(frame)
	if err != nil {
		s.logger.Warn("transport: dropping malformed or unroutable message", zap.Error(err))
		return
	}
	if reply == nil {
		return
	}

	payload, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("transport: failed to encode response", zap.Error(err))
		return
	}
	if err := WriteFrame(conn, payload); err != nil {
		s.logger.Warn("transport: failed to write response frame", zap.Error(err))
	}
}
