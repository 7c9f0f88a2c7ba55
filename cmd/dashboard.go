package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skilltrack/skilltrack/internal/dashboard"
	"github.com/skilltrack/skilltrack/internal/session"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print your dashboard (assigned courses, or team stats for managers)",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		svc := dashboard.New(rt.store)
		out := cmd.OutOrStdout()

		if s.IsManager() {
			view, err := svc.Manager(ctx, s.UserID)
			if err != nil {
				return err
			}
			printManager(out, s, view)
			return nil
		}
		cards, err := svc.Employee(ctx, s.UserID)
		if err != nil {
			return err
		}
		printEmployee(out, s, cards)
		return nil
	},
}

func printEmployee(out io.Writer, s *session.Session, cards []dashboard.CourseCard) {
	fmt.Fprintf(out, "Courses assigned to %s\n\n", s.Name)
	if len(cards) == 0 {
		fmt.Fprintln(out, "No courses assigned yet.")
		return
	}
	fmt.Fprintf(out, "%-32s  %-10s  %4s  %s\n", "Course", "Deadline", "Done", "Status")
	fmt.Fprintln(out, strings.Repeat("─", 66))
	for _, c := range cards {
		deadline := c.Deadline
		if deadline == "" {
			deadline = "-"
		}
		fmt.Fprintf(out, "%-32s  %-10s  %3d%%  %s\n", truncate(c.Name, 32), deadline, c.Percent, c.Status)
	}
}

func printManager(out io.Writer, s *session.Session, view *dashboard.ManagerView) {
	fmt.Fprintf(out, "Team dashboard for %s\n\n", s.Name)
	fmt.Fprintf(out, "Total employees:     %d\n", view.Stats.TotalEmployees)
	fmt.Fprintf(out, "Active courses:      %d\n", view.Stats.ActiveCourses)
	fmt.Fprintf(out, "Overall completion:  %d%%\n\n", view.Stats.OverallCompletion)
	if len(view.Courses) == 0 {
		fmt.Fprintln(out, "You have not created any courses.")
		return
	}
	fmt.Fprintf(out, "%-12s  %-28s  %-10s  %5s  %8s  %9s\n", "ID", "Course", "Deadline", "Items", "Assigned", "Completed")
	fmt.Fprintln(out, strings.Repeat("─", 82))
	for _, c := range view.Courses {
		deadline := c.Deadline
		if deadline == "" {
			deadline = "-"
		}
		fmt.Fprintf(out, "%-12s  %-28s  %-10s  %5d  %8d  %9d\n",
			truncate(c.CourseID, 12), truncate(c.Name, 28), deadline, c.Items, c.Assigned, c.Completed)
	}
}
