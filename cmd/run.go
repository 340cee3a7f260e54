package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/codedrill/internal/app"
	"github.com/abhisek/codedrill/internal/generator"
	"github.com/abhisek/codedrill/internal/handoff"
	"github.com/abhisek/codedrill/internal/request"
	"github.com/abhisek/codedrill/internal/screens/practice"
	"github.com/abhisek/codedrill/internal/store"
)

// newClient builds the generator client from the environment, with every
// call recorded as a generation event.
func newClient(events store.EventRepo) (generator.Client, error) {
	cfg := generator.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return generator.WithLogging(generator.NewHTTPClient(cfg), events), nil
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command, popts practice.Options) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	client, err := newClient(st.EventRepo())
	if err != nil {
		return fmt.Errorf("generator config: %w", err)
	}

	opts := app.Options{
		Controller: request.New(client),
		Endpoint:   client.Endpoint(),
		Practice:   popts,
	}

	hcfg := handoff.ConfigFromEnv()
	if err := hcfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Handoff not configured:", err)
		fmt.Fprintln(os.Stderr, "\"Learn more\" will be unavailable.")
	} else {
		// The spawned session must open the same database to find the slot.
		launcher := handoff.NewExecLauncher(hcfg)
		launcher.Args = []string{"--db", dbPath}
		opts.Bridge = handoff.NewBridge(st.HandoffRepo(), launcher, hcfg)
	}

	return app.Run(opts)
}
