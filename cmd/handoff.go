package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var handoffCmd = &cobra.Command{
	Use:   "handoff",
	Short: "Inspect and clean up pending session handoffs",
}

var handoffListCmd = &cobra.Command{
	Use:   "list",
	Short: "List handoff slots that have not been consumed",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		slots, err := s.HandoffRepo().List(context.Background())
		if err != nil {
			return fmt.Errorf("list slots: %w", err)
		}
		if len(slots) == 0 {
			fmt.Println("No pending handoffs.")
			return nil
		}

		fmt.Printf("%-36s  %-10s  %-19s  %s\n", "Key", "State", "Created", "Age")
		fmt.Println(strings.Repeat("─", 80))
		now := time.Now()
		for _, sl := range slots {
			fmt.Printf("%-36s  %-10s  %-19s  %s\n",
				sl.Key,
				sl.State,
				sl.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				now.Sub(sl.CreatedAt).Round(time.Second),
			)
		}
		return nil
	},
}

var handoffPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete handoff slots whose spawned session never arrived",
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")
		if olderThan < 0 {
			return fmt.Errorf("--older-than must not be negative")
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.HandoffRepo().Prune(context.Background(), time.Now().Add(-olderThan))
		if err != nil {
			return fmt.Errorf("prune slots: %w", err)
		}
		fmt.Printf("Removed %d stale handoff(s).\n", n)
		return nil
	},
}

func init() {
	handoffPruneCmd.Flags().Duration("older-than", time.Hour, "Remove slots not updated within this duration")

	handoffCmd.AddCommand(handoffListCmd)
	handoffCmd.AddCommand(handoffPruneCmd)
}
