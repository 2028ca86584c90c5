package state

import (
	"github.com/pkg/errors"

	"github.com/qsi-go/qsi/internal/kernel"
)

// SerializedMatrix is the transport-friendly rectangular encoding of a
// complex matrix: element [i][j] is a 2-element [real, imag] pair
// (spec.md §6).
type SerializedMatrix [][][2]float64

// MatrixToSerialized converts a dense complex matrix into its transport
// representation.
func MatrixToSerialized(m *kernel.Dense) SerializedMatrix {
	out := make(SerializedMatrix, m.Side)
	for i := 0; i < m.Side; i++ {
		row := make([][2]float64, m.Side)
		for j := 0; j < m.Side; j++ {
			v := m.At(i, j)
			row[j] = [2]float64{real(v), imag(v)}
		}
		out[i] = row
	}
	return out
}

// MatrixFromSerialized reconstructs a dense complex matrix from its
// transport representation. Empty matrices are disallowed, and the
// matrix must be square.
func MatrixFromSerialized(s SerializedMatrix) (*kernel.Dense, error) {
	n := len(s)
	if n == 0 {
		return nil, errors.New("state: empty matrix is not allowed in transport")
	}
	m := kernel.NewZeros(n)
	for i, row := range s {
		if len(row) != n {
			return nil, errors.Errorf("state: matrix is not square: row %d has %d columns, want %d", i, len(row), n)
		}
		for j, elem := range row {
			m.Set(i, j, complex(elem[0], elem[1]))
		}
	}
	return m, nil
}

// Envelope is the lossless wire representation of a Joint: its side,
// its serialized density matrix, and its ordered descriptor list (as
// transport dictionaries). Ports, when present, travel alongside the
// envelope in channel-query messages (package transport), not as part
// of the envelope itself.
type Envelope struct {
	Dimensions int                 `json:"dimensions"`
	State      SerializedMatrix    `json:"state"`
	StateProps []map[string]string `json:"state_props"`
}
