package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/codedrill/internal/handoff"
	"github.com/abhisek/codedrill/internal/screens/practice"
)

var openCmd = &cobra.Command{
	Use:   "open <location>",
	Short: "Open a session at a location",
	Long: `Open a practice session at a location such as
codedrill://practice?autostart=true&handoff=<key>.

This is what "learn more" launches in a new terminal. With autostart set the
session reports ready on the handoff slot, waits for the payload and submits
it as soon as it arrives.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := handoff.ParseLocation(args[0])
		if err != nil {
			return err
		}

		var opts practice.Options
		if loc.AutoStart {
			if err := handoff.ConfigFromEnv().Validate(); err != nil {
				return fmt.Errorf("handoff config: %w", err)
			}
			opts.HandoffKey = loc.Key
		}
		return runApp(cmd, opts)
	},
}
