// Command coordinator runs the transport/lifecycle orchestrator: it
// spawns component processes, registers each with a Coordinator Façade,
// and sends each an initial state_init, grounded in
// original_source/qsi/coordinator.py's Coordinator. It does not run
// parameter negotiation (Facade.Negotiate is never called here), and the
// server on its own listening port has no message handlers registered.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qsi-go/qsi/coordinator"
	"github.com/qsi-go/qsi/process"
	"github.com/qsi-go/qsi/transport"
)

var componentBinaries []string

func main() {
	root := &cobra.Command{
		Use:   "coordinator <port>",
		Short: "Run the QSI coordinator",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	root.Flags().StringArrayVar(&componentBinaries, "component", nil,
		"path to a component binary to spawn (repeatable)")

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

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	sendPort, err := process.FindEmptyPort()
	if err != nil {
		return err
	}

	dispatcher := transport.NewDispatcher()
	srv, err := transport.Listen(port, dispatcher, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	client := transport.NewClient(sendPort, 0)
	facade := coordinator.NewFacade(client)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := srv.Serve(); err != nil {
			logger.Warn("coordinator: server stopped", zap.Error(err))
		}
	}()

	spawnComponents(ctx, componentBinaries, port, facade, client, logger)

	logger.Info("coordinator: listening", zap.Int("port", port), zap.Int("send_port", sendPort))
	<-ctx.Done()
	logger.Info("coordinator: shutting down")
	return nil
}

// spawnComponents starts each configured component binary, registers it
// with the façade, and pushes an initial state_init with bounded retry,
// mirroring coordinator.py's Coordinator.run loop over self.modules.
func spawnComponents(ctx context.Context, binaries []string, coordinatorPort int, facade *coordinator.Facade, client *transport.Client, logger *zap.Logger) {
	for _, binary := range binaries {
		port, err := process.FindEmptyPort()
		if err != nil {
			logger.Error("coordinator: finding port for component", zap.String("binary", binary), zap.Error(err))
			continue
		}

		if _, err := process.Spawn(ctx, binary, port, coordinatorPort, logger); err != nil {
			logger.Error("coordinator: spawning component", zap.String("binary", binary), zap.Error(err))
			continue
		}
		facade.Register(port, coordinatorPort)

		msg := &transport.StateInit{Header: transport.Header{MsgType: transport.MsgStateInit}}
		if _, err := client.RetryRequest(port, msg, 5, 2*time.Second); err != nil {
			logger.Warn("coordinator: state_init failed after retries", zap.String("binary", binary), zap.Error(err))
		}
	}
}
