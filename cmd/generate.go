package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/codedrill/internal/learnpath"
	"github.com/abhisek/codedrill/internal/request"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Request a learning path and print it (no TUI)",
	Long: `Request a learning path once and print it.

The request goes through the same controller as the interactive session, so
validation, error messages and response parsing are identical. Use
--format json or --format yaml for machine-readable output.`,
	RunE: runGenerate,
}

func init() {
	addParamFlags(generateCmd)
	generateCmd.Flags().StringP("format", "f", "text", "Output format: text, json or yaml")
	_ = generateCmd.MarkFlagRequired("topic")
	_ = generateCmd.MarkFlagRequired("language")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q: must be text, json or yaml", format)
	}

	params, err := paramsFromFlags(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := newClient(st.EventRepo())
	if err != nil {
		return fmt.Errorf("generator config: %w", err)
	}

	ctrl := request.New(client)
	run, err := ctrl.Submit(params)
	if err != nil {
		return err
	}
	msg, ok := run().(request.ResultMsg)
	if !ok || !ctrl.Resolve(msg) {
		return errors.New("generator returned no result")
	}

	state := ctrl.State()
	if state.Status != request.StatusSuccess {
		return errors.New(state.Err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(state.Result)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(state.Result)
	}
	printPath(out, state.Result)
	return nil
}

// printPath writes a learning path as plain text.
func printPath(w io.Writer, lp *learnpath.LearningPath) {
	sep := strings.Repeat("─", 60)

	if lp.Description != "" {
		fmt.Fprintln(w, lp.Description)
		fmt.Fprintln(w)
	}
	if !lp.Ascending() {
		fmt.Fprintln(os.Stderr, "warning: problems are not in ascending level order")
	}

	for _, p := range lp.Problems {
		fmt.Fprintln(w, sep)
		fmt.Fprintf(w, "Level %d: %s\n", p.Level, p.Title)
		fmt.Fprintln(w, sep)
		if len(p.Concepts) > 0 {
			fmt.Fprintf(w, "Concepts:      %s\n", strings.Join(p.Concepts, ", "))
		}
		if len(p.Prerequisites) > 0 {
			fmt.Fprintf(w, "Prerequisites: %s\n", strings.Join(p.Prerequisites, ", "))
		}
		if p.Description != "" {
			fmt.Fprintln(w)
			fmt.Fprintln(w, p.Description)
		}
		for i, ex := range p.Examples {
			fmt.Fprintf(w, "\nExample %d\n", i+1)
			if ex.Input != "" {
				fmt.Fprintf(w, "  Input:  %s\n", ex.Input)
			}
			if ex.Output != "" {
				fmt.Fprintf(w, "  Output: %s\n", ex.Output)
			}
			if ex.Explanation != "" {
				fmt.Fprintf(w, "  %s\n", ex.Explanation)
			}
		}
		if len(p.Hints) > 0 {
			fmt.Fprintln(w, "\nHints")
			for _, h := range p.Hints {
				fmt.Fprintf(w, "  - %s\n", h)
			}
		}
		fmt.Fprintln(w)
	}
}
