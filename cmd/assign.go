package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skilltrack/skilltrack/internal/assignment"
)

var assignCmd = &cobra.Command{
	Use:   "assign <course-id> <email>...",
	Short: "Assign a course you own to employees (unknown emails are registered)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		deadline, _ := cmd.Flags().GetString("deadline")
		remove, _ := cmd.Flags().GetBool("remove")
		ctx := cmd.Context()

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		manager, err := rt.requireManager(ctx)
		if err != nil {
			return err
		}
		svc := assignment.New(rt.store.Courses(), rt.store.Users(), rt.store.Assignments(), rt.sessions, rt.logger)
		courseID, emails := args[0], args[1:]
		out := cmd.OutOrStdout()

		if remove {
			for _, email := range emails {
				removed, err := svc.Unassign(ctx, manager, courseID, email)
				if err != nil {
					return err
				}
				if removed {
					fmt.Fprintf(out, "Unassigned %s from %s.\n", email, courseID)
				} else {
					fmt.Fprintf(out, "%s was not assigned to %s.\n", email, courseID)
				}
			}
			return nil
		}

		res, err := svc.Assign(ctx, manager, courseID, emails, deadline)
		if err != nil {
			return err
		}
		for _, email := range res.Registered {
			fmt.Fprintf(out, "Registered %s.\n", email)
		}
		for _, u := range res.Assigned {
			fmt.Fprintf(out, "Assigned %s to %s.\n", courseID, u.Email)
		}
		return nil
	},
}

func init() {
	assignCmd.Flags().String("deadline", "", "Deadline (YYYY-MM-DD); defaults to the course deadline")
	assignCmd.Flags().Bool("remove", false, "Remove the assignments instead (progress is kept)")
}
