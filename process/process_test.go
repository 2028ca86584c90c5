package process_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qsi-go/qsi/process"
)

func TestFindEmptyPortReturnsUsablePort(t *testing.T) {
	port, err := process.FindEmptyPort()
	require.NoError(t, err)
	assert.Greater(t, port, 0)

	other, err := process.FindEmptyPort()
	require.NoError(t, err)
	assert.NotEqual(t, 0, other)
}

func TestSpawnRecordsPortsAndExit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := process.Spawn(ctx, "echo", 7000, 7001, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 7000, h.Port)
	assert.Equal(t, 7001, h.CoordinatorPort)

	require.NoError(t, h.Wait())
	assert.True(t, h.Exited())
}

func TestTerminateOnAlreadyExitedProcessReturnsError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := process.Spawn(ctx, "true", 7002, 7003, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, h.Wait())

	err = h.Terminate()
	assert.ErrorIs(t, err, process.ErrAlreadyExited)
}

func TestTerminateKillsRunningProcess(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := process.Spawn(ctx, "sleep", 7004, 7005, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, h.Terminate())
	_ = h.Wait()
}
