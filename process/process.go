// Package process supervises component subprocesses: spawning them with
// their listening port and the coordinator's port as arguments, capturing
// their stdout/stderr into structured logs, and reaping them on exit.
// Grounded in qsi/coordinator.py's ModuleReference and find_empty_port.
package process

import (
	"bufio"
	"context"
	"io"
	"net"
	"os/exec"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrAlreadyExited is returned by Terminate when the process has already
// exited on its own.
var ErrAlreadyExited = errors.New("process: already exited")

// Handle supervises one spawned component process.
type Handle struct {
	// Port is the port the component was told to listen on.
	Port int

	// CoordinatorPort is the port the component was told to reach the
	// coordinator on.
	CoordinatorPort int

	cmd    *exec.Cmd
	logger *zap.Logger

	mu     sync.Mutex
	exited bool
	waitCh chan error
}

// FindEmptyPort asks the kernel for an unused TCP port by binding to
// port 0 and immediately closing the listener, mirroring
// qsi/coordinator.py's find_empty_port.
func FindEmptyPort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, errors.Wrap(err, "process: finding an empty port")
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// Spawn starts binary with its listening port and the coordinator's port
// as positional arguments (spec.md §6's component CLI contract), and
// begins streaming its stdout/stderr to logger. The returned Handle is
// live immediately; the process itself decides when to start listening.
func Spawn(ctx context.Context, binary string, port, coordinatorPort int, logger *zap.Logger) (*Handle, error) {
	cmd := exec.CommandContext(ctx, binary, strconv.Itoa(port), strconv.Itoa(coordinatorPort))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "process: attaching stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "process: attaching stderr pipe")
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "process: starting %s", binary)
	}

	h := &Handle{
		Port:            port,
		CoordinatorPort: coordinatorPort,
		cmd:             cmd,
		logger:          logger.With(zap.String("component", binary), zap.Int("port", port)),
		waitCh:          make(chan error, 1),
	}

	go h.captureOutput(stdout, "stdout")
	go h.captureOutput(stderr, "stderr")
	go h.reap()

	return h, nil
}

// captureOutput streams one of the component's output pipes line by line
// into the handle's logger, the Go rendering of ModuleReference's
// per-stream capture threads.
func (h *Handle) captureOutput(stream io.Reader, streamName string) {
	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		h.logger.Info("process: component output", zap.String("stream", streamName), zap.String("line", scanner.Text()))
	}
}

func (h *Handle) reap() {
	err := h.cmd.Wait()
	h.mu.Lock()
	h.exited = true
	h.mu.Unlock()
	h.waitCh <- err
	if err != nil {
		h.logger.Warn("process: component exited with error", zap.Error(err))
	} else {
		h.logger.Info("process: component exited")
	}
}

// Wait blocks until the process exits and returns its exit error, if
// any.
func (h *Handle) Wait() error {
	return <-h.waitCh
}

// Exited reports whether the process has already exited.
func (h *Handle) Exited() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exited
}

// Terminate kills the process (SIGKILL on Unix), matching the terminate/
// terminate_response handshake's last resort: forcing a component down
// that didn't shut down cleanly on its own.
func (h *Handle) Terminate() error {
	if h.Exited() {
		return ErrAlreadyExited
	}
	if err := h.cmd.Process.Kill(); err != nil {
		return errors.Wrap(err, "process: terminating component")
	}
	return nil
}
