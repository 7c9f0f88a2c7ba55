package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skilltrack/skilltrack/internal/authoring"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "List, inspect, import and export courses",
}

var courseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List courses (--mine restricts to courses you own)",
	RunE: func(cmd *cobra.Command, args []string) error {
		mine, _ := cmd.Flags().GetBool("mine")
		ctx := cmd.Context()

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		owner := ""
		if mine {
			s, err := rt.requireManager(ctx)
			if err != nil {
				return err
			}
			owner = s.UserID
		}
		courses, err := rt.store.Courses().List(ctx, owner)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(courses) == 0 {
			fmt.Fprintln(out, "No courses found.")
			return nil
		}
		fmt.Fprintf(out, "%-12s  %-32s  %-10s  %5s\n", "ID", "Name", "Deadline", "Items")
		fmt.Fprintln(out, strings.Repeat("─", 66))
		for _, c := range courses {
			deadline := c.Deadline
			if deadline == "" {
				deadline = "-"
			}
			fmt.Fprintf(out, "%-12s  %-32s  %-10s  %5d\n", truncate(c.ID, 12), truncate(c.Name, 32), deadline, c.ItemCount)
		}
		return nil
	},
}

var courseShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a course outline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		answers, _ := cmd.Flags().GetBool("answers")
		ctx := cmd.Context()

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if answers {
			if _, err := rt.requireManager(ctx); err != nil {
				return err
			}
		}
		c, err := rt.store.Courses().Course(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  %s\n", c.ID, c.Name)
		if c.Description != "" {
			fmt.Fprintln(out, c.Description)
		}
		if c.Deadline != "" {
			fmt.Fprintf(out, "Deadline: %s\n", c.Deadline)
		}
		fmt.Fprintln(out)
		for i, it := range c.Items {
			if it.IsTask() {
				fmt.Fprintf(out, "%3d. [task]   %s\n", i+1, it.Question)
				if answers {
					fmt.Fprintf(out, "               answer: %s\n", it.Answer)
				}
				continue
			}
			fmt.Fprintf(out, "%3d. [lesson] %s\n", i+1, it.Title)
		}
		return nil
	},
}

var courseImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Import courses from a course file (manager only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		drafts, err := authoring.Import(r)
		if err != nil {
			return err
		}

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		owner, err := rt.requireManager(ctx)
		if err != nil {
			return err
		}
		courses, err := authoring.NewService(rt.store.Courses(), rt.logger).ImportDrafts(ctx, owner, drafts)
		for _, c := range courses {
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s, %d items).\n", c.ID, c.Name, c.Len())
		}
		return err
	},
}

var courseExportCmd = &cobra.Command{
	Use:   "export [id...]",
	Short: "Export courses as a course file (all of yours when no ids are given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")
		ctx := cmd.Context()

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		owner, err := rt.requireManager(ctx)
		if err != nil {
			return err
		}
		ids := args
		if len(ids) == 0 {
			owned, err := rt.store.Courses().List(ctx, owner.UserID)
			if err != nil {
				return err
			}
			for _, c := range owned {
				ids = append(ids, c.ID)
			}
		}

		svc := authoring.NewService(rt.store.Courses(), rt.logger)
		drafts := make([]*authoring.Draft, 0, len(ids))
		for _, id := range ids {
			d, err := svc.Load(ctx, id)
			if err != nil {
				return fmt.Errorf("load %s: %w", id, err)
			}
			drafts = append(drafts, d)
		}

		if outPath == "" {
			return authoring.Export(cmd.OutOrStdout(), drafts...)
		}
		return exportFile(outPath, drafts)
	},
}

var courseDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a course you own with its assignments and progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		owner, err := rt.requireManager(ctx)
		if err != nil {
			return err
		}
		if err := authoring.NewService(rt.store.Courses(), rt.logger).Delete(ctx, owner, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
		return nil
	},
}

// exportFile writes drafts to path, reporting write and close failures.
func exportFile(path string, drafts []*authoring.Draft) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := authoring.Export(f, drafts...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func init() {
	courseListCmd.Flags().Bool("mine", false, "Only courses owned by the logged-in manager")
	courseShowCmd.Flags().Bool("answers", false, "Include task answers (manager only)")
	courseExportCmd.Flags().StringP("out", "o", "", "Write to a file instead of stdout")

	courseCmd.AddCommand(courseListCmd)
	courseCmd.AddCommand(courseShowCmd)
	courseCmd.AddCommand(courseImportCmd)
	courseCmd.AddCommand(courseExportCmd)
	courseCmd.AddCommand(courseDeleteCmd)
}
