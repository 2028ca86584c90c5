package transport

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// maxFrameBytes bounds an inbound frame length, guarding against a
// corrupt or hostile length prefix asking for an unreasonable allocation.
const maxFrameBytes = 64 << 20 // 64 MiB

// WriteFrame writes payload to w prefixed with its length as a 4-byte
// big-endian unsigned integer, matching the wire format in spec.md §6
// (grounded in original_source/qsi/socket_handler.py's
// struct.pack('!I', len(json_data))).
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return errors.Wrap(err, "transport: writing frame length")
	}
	if _, err := w.Write(payload); err != nil {
		return errors.Wrap(err, "transport: writing frame payload")
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r, mirroring
// socket_handler.py's recvall: it blocks until exactly the declared
// number of payload bytes have arrived, or the connection closes early.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxFrameBytes {
		return nil, errors.Errorf("transport: frame length %d exceeds maximum %d", n, maxFrameBytes)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errors.Wrap(err, "transport: reading frame payload")
	}
	return payload, nil
}
