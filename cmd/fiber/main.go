// Command fiber is a standalone fiber-channel component: it listens on
// its own port and answers parameter and channel queries there. It takes
// the two positional arguments original_source/examples/fiber.py's
// components receive from the coordinator that spawns them (own port,
// then coordinator port); the coordinator port is only logged, never
// dialled.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qsi-go/qsi/examples"
	"github.com/qsi-go/qsi/transport"
)

func main() {
	root := &cobra.Command{
		Use:   "fiber <port> <coordinator-port>",
		Short: "Run a fiber channel component",
		Args:  cobra.ExactArgs(2),
		RunE:  run,
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	port, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", args[0], err)
	}
	coordinatorPort, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid coordinator port %q: %w", args[1], err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	rt := examples.NewRuntime(logger)
	rt.RegisterStateless()
	rt.RegisterFiber(examples.NewFiber())

	srv, err := transport.Listen(port, rt.Dispatcher, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	logger.Info("fiber: listening", zap.Int("port", port), zap.Int("coordinator_port", coordinatorPort))
	return srv.Serve()
}
