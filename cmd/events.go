package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/codedrill/internal/store"
	"github.com/abhisek/codedrill/internal/ui/theme"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect recorded generator calls",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent generator calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Topic, _ = cmd.Flags().GetString("topic")
		opts.FailedOnly, _ = cmd.Flags().GetBool("failed")
		if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
			opts.Since = time.Now().Add(-since)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryGenerations(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No generator calls recorded.")
			return nil
		}

		t := newTable("ID", "Time", "Topic", "Language", "Difficulty", "HTTP", "Ms", "Result")
		for _, e := range events {
			result := "ok"
			if !e.Success {
				result = "failed: " + e.ErrorKind
			}
			t.Row(
				strconv.Itoa(e.ID),
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Topic, 28),
				truncate(e.Language, 12),
				e.Difficulty,
				httpStatus(e.StatusCode),
				strconv.FormatInt(e.LatencyMs, 10),
				result,
			)
		}
		_, err = lipgloss.Fprintln(out, t)
		return err
	},
}

var eventsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one generator call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetGeneration(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		printEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var eventsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show generator calls aggregated by topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		usage, err := s.EventRepo().UsageByTopic(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(usage) == 0 {
			fmt.Fprintln(out, "No generator calls recorded yet.")
			return nil
		}

		t := newTable("Topic", "Calls", "Failed", "Fail %", "Avg Ms")
		var calls, failures int
		for _, u := range usage {
			t.Row(truncate(u.Topic, 36), strconv.Itoa(u.Calls), strconv.Itoa(u.Failures),
				fmt.Sprintf("%.1f", failureRate(u.Failures, u.Calls)), strconv.FormatInt(u.AvgLatencyMs, 10))
			calls += u.Calls
			failures += u.Failures
		}
		t.Row("TOTAL", strconv.Itoa(calls), strconv.Itoa(failures),
			fmt.Sprintf("%.1f", failureRate(failures, calls)), "")
		_, err = lipgloss.Fprintln(out, t)
		return err
	},
}

func newTable(headers ...string) *table.Table {
	head := theme.Selected
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return head.Padding(0, 1)
			}
			return cell
		})
}

func printEvent(w io.Writer, e *store.GenerationEvent) {
	fields := [][2]string{
		{"ID", strconv.Itoa(e.ID)},
		{"Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")},
		{"Session", e.SessionID},
		{"Endpoint", e.Endpoint},
		{"Topic", e.Topic},
		{"Language", e.Language},
		{"Difficulty", e.Difficulty},
		{"HTTP", httpStatus(e.StatusCode)},
		{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
		{"Success", strconv.FormatBool(e.Success)},
	}
	if e.ErrorMessage != "" {
		fields = append(fields, [2]string{"Error", fmt.Sprintf("%s (%s)", e.ErrorMessage, e.ErrorKind)})
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%-11s %s\n", f[0]+":", f[1])
	}

	section := func(title, body string) {
		if body == "" {
			body = "(not captured)"
		}
		rule := strings.Repeat("─", 60)
		fmt.Fprintf(w, "\n%s\n%s\n%s\n%s\n", rule, title, rule, body)
	}
	section("REQUEST", e.RequestBody)
	section("RESPONSE", e.ResponseBody)
}

func httpStatus(code int) string {
	if code == 0 {
		return "-"
	}
	return strconv.Itoa(code)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func failureRate(failures, calls int) float64 {
	if calls == 0 {
		return 0
	}
	return float64(failures) * 100 / float64(calls)
}

func init() {
	eventsListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsListCmd.Flags().String("topic", "", "Only show calls for this topic")
	eventsListCmd.Flags().Bool("failed", false, "Only show failed calls")
	eventsListCmd.Flags().Duration("since", 0, "Only show calls from the last duration, e.g. 24h")

	eventsCmd.AddCommand(eventsListCmd, eventsViewCmd, eventsStatsCmd)
}
