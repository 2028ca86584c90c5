// Command photonsource is a standalone single-photon-source component,
// grounded in original_source/examples/single_photon_source.py: it owns
// one light mode, initialised to the vacuum, and reports it on
// state_init.
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
		Use:   "photonsource <port> <coordinator-port>",
		Short: "Run a single-photon-source component",
		Args:  cobra.ExactArgs(2),
		RunE:  run,
	}
	root.Flags().Float64("wavelength", 1550, "emitted mode wavelength in nanometers")
	root.Flags().Int("truncation", 2, "Fock-space truncation of the emitted mode")

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
	wavelength, _ := cmd.Flags().GetFloat64("wavelength")
	truncation, _ := cmd.Flags().GetInt("truncation")

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	source, err := examples.NewPhotonSource(wavelength, truncation)
	if err != nil {
		return err
	}

	rt := examples.NewRuntime(logger)
	rt.RegisterSource(source)

	srv, err := transport.Listen(port, rt.Dispatcher, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	logger.Info("photonsource: listening", zap.Int("port", port), zap.Int("coordinator_port", coordinatorPort))
	return srv.Serve()
}
