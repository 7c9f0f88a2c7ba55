package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skilltrack/skilltrack/internal/assignment"
	"github.com/skilltrack/skilltrack/internal/authoring"
	"github.com/skilltrack/skilltrack/internal/session"
	"github.com/skilltrack/skilltrack/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog owned by a manager account",
	Long: `Import the three demo courses (React, CSS, Project Management) into the database.

The courses are owned by --manager, which is registered when missing.
Employees listed with --assign get every demo course assigned.
Running seed again replaces the demo courses' content.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		managerEmail, _ := cmd.Flags().GetString("manager")
		assignTo, _ := cmd.Flags().GetStringSlice("assign")
		ctx := cmd.Context()

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		manager, err := rt.store.Users().ByEmail(ctx, managerEmail)
		if errors.Is(err, store.ErrNotFound) {
			manager, err = rt.sessions.Register(ctx, managerEmail, "", session.RoleManager)
		}
		if err != nil {
			return fmt.Errorf("manager account: %w", err)
		}
		if session.Role(manager.Role) != session.RoleManager {
			return fmt.Errorf("%s is not a manager", manager.Email)
		}
		owner := &session.Session{UserID: manager.ID, Email: manager.Email, Name: manager.Name, Role: session.RoleManager}

		drafts, err := authoring.DemoCatalog()
		if err != nil {
			return err
		}
		courses, err := authoring.NewService(rt.store.Courses(), rt.logger).ImportDrafts(ctx, owner, drafts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range courses {
			fmt.Fprintf(out, "  %-6s %s (%d items)\n", c.ID, c.Name, c.Len())
		}

		if len(assignTo) > 0 {
			svc := assignment.New(rt.store.Courses(), rt.store.Users(), rt.store.Assignments(), rt.sessions, rt.logger)
			for _, c := range courses {
				res, err := svc.Assign(ctx, owner, c.ID, assignTo, "")
				if err != nil {
					return fmt.Errorf("assign %s: %w", c.ID, err)
				}
				for _, email := range res.Registered {
					fmt.Fprintf(out, "  registered %s\n", email)
				}
			}
		}

		rt.logger.Info("demo catalog seeded", zap.String("manager", manager.Email), zap.Int("courses", len(courses)))
		fmt.Fprintf(out, "Seeded %d courses owned by %s.\n", len(courses), manager.Email)
		return nil
	},
}

func init() {
	seedCmd.Flags().String("manager", "manager@example.com", "Manager that owns the demo courses")
	seedCmd.Flags().StringSlice("assign", nil, "Employee emails to assign every demo course to")
}
