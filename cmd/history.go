package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skilltrack/skilltrack/internal/screens/activity"
	"github.com/skilltrack/skilltrack/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List audit events (logins, navigation, answers, LLM calls)",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")
		all, _ := cmd.Flags().GetBool("all")
		verbose, _ := cmd.Flags().GetBool("verbose")
		ctx := cmd.Context()

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		s, err := rt.current(ctx)
		if err != nil {
			return err
		}
		opts := store.QueryOpts{Kind: kind, Limit: limit, UserID: s.UserID}
		if all {
			if !s.IsManager() {
				return fmt.Errorf("--all is only available to managers")
			}
			opts.UserID = ""
		}

		events, err := rt.store.Events().Query(ctx, opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No events found.")
			return nil
		}

		fmt.Fprintf(out, "%-6s  %-19s  %-15s  %-12s  %s\n", "Seq", "Timestamp", "Kind", "Course", "Summary")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		for _, e := range events {
			fmt.Fprintf(out, "%-6d  %-19s  %-15s  %-12s  %s\n",
				e.Seq,
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				e.Kind,
				truncate(e.CourseID, 12),
				activity.Summary(e),
			)
			if verbose && len(e.Payload) > 0 {
				var buf bytes.Buffer
				if json.Indent(&buf, e.Payload, "        ", "  ") == nil {
					fmt.Fprintf(out, "        %s\n", buf.String())
				}
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	historyCmd.Flags().StringP("kind", "k", "", "Filter by kind (login, navigate, task_completed, answer_attempt, llm_request)")
	historyCmd.Flags().Bool("all", false, "Show every user's events (manager only)")
	historyCmd.Flags().BoolP("verbose", "v", false, "Print each event's payload")
}
