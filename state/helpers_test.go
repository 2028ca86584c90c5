package state

import "github.com/qsi-go/qsi/internal/kernel"

func pauliX() []*kernel.Dense {
	return []*kernel.Dense{{Side: 2, Data: []complex128{0, 1, 1, 0}}}
}

func identity(side int) []*kernel.Dense {
	return []*kernel.Dense{kernel.NewIdentity(side)}
}

func isClose(a, b *kernel.Dense) bool {
	return kernel.IsCloseTo(a, b, 1e-12)
}
