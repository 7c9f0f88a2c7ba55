package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/skilltrack/skilltrack/internal/authoring"
	"github.com/skilltrack/skilltrack/internal/course"
	"github.com/skilltrack/skilltrack/internal/session"
)

// editCourse loads courseID as a draft, applies edit and saves the result.
// Saving checks that owner may change the course.
func editCourse(ctx context.Context, svc *authoring.Service, owner *session.Session, courseID string, edit func(*authoring.Draft) error) (*course.Course, error) {
	d, err := svc.Load(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := edit(d); err != nil {
		return nil, err
	}
	return svc.Save(ctx, owner, d)
}

// itemEdit holds the item fields given on the command line; nil fields are
// left as they are.
type itemEdit struct {
	Title, Content, Question, Answer *string
}

func (e itemEdit) apply(it authoring.ItemDraft) authoring.ItemDraft {
	for _, f := range []struct {
		src *string
		dst *string
	}{
		{e.Title, &it.Title},
		{e.Content, &it.Content},
		{e.Question, &it.Question},
		{e.Answer, &it.Answer},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	return it
}

func (e itemEdit) empty() bool {
	return e.Title == nil && e.Content == nil && e.Question == nil && e.Answer == nil
}

// addItem appends a new item via add and moves it to 1-based position at
// when at > 0.
func addItem(d *authoring.Draft, at int, add func(*authoring.Draft) string) (string, error) {
	id := add(d)
	if at > 0 {
		if err := d.MoveItem(id, at-1); err != nil {
			return "", err
		}
	}
	return id, nil
}

func findItem(d *authoring.Draft, id string) (authoring.ItemDraft, error) {
	for _, it := range d.Items {
		if it.ID == id {
			return it, nil
		}
	}
	return authoring.ItemDraft{}, fmt.Errorf("%w: %s", authoring.ErrItemNotFound, id)
}

// runEdit is the shared body of the item editing commands.
func runEdit(cmd *cobra.Command, courseID string, edit func(*authoring.Draft) (string, error)) error {
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
	var msg string
	c, err := editCourse(ctx, authoring.NewService(rt.store.Courses(), rt.logger), owner, courseID, func(d *authoring.Draft) error {
		var err error
		msg, err = edit(d)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s now has %d items.\n", msg, c.ID, c.Len())
	return nil
}

var courseCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an empty course owned by you",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")
		deadline, _ := cmd.Flags().GetString("deadline")
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
		d := &authoring.Draft{Name: name, Description: description, Deadline: deadline}
		c, err := authoring.NewService(rt.store.Courses(), rt.logger).Save(ctx, owner, d)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s).\n", c.ID, c.Name)
		return nil
	},
}

var courseAddLessonCmd = &cobra.Command{
	Use:   "add-lesson <course-id>",
	Short: "Add a lesson to a course you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		content, _ := cmd.Flags().GetString("content")
		at, _ := cmd.Flags().GetInt("at")
		return runEdit(cmd, args[0], func(d *authoring.Draft) (string, error) {
			id, err := addItem(d, at, func(d *authoring.Draft) string { return d.AddLesson(title, content) })
			return "Added lesson " + id + ";", err
		})
	},
}

var courseAddTaskCmd = &cobra.Command{
	Use:   "add-task <course-id>",
	Short: "Add a task to a course you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question, _ := cmd.Flags().GetString("question")
		answer, _ := cmd.Flags().GetString("answer")
		at, _ := cmd.Flags().GetInt("at")
		return runEdit(cmd, args[0], func(d *authoring.Draft) (string, error) {
			id, err := addItem(d, at, func(d *authoring.Draft) string { return d.AddTask(question, answer) })
			return "Added task " + id + ";", err
		})
	},
}

var courseEditItemCmd = &cobra.Command{
	Use:   "edit-item <course-id> <item-id>",
	Short: "Change the text of a lesson or task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var edit itemEdit
		for name, dst := range map[string]**string{
			"title":    &edit.Title,
			"content":  &edit.Content,
			"question": &edit.Question,
			"answer":   &edit.Answer,
		} {
			if cmd.Flags().Changed(name) {
				v, _ := cmd.Flags().GetString(name)
				*dst = &v
			}
		}
		if edit.empty() {
			return fmt.Errorf("nothing to change: pass --title, --content, --question or --answer")
		}
		itemID := args[1]
		return runEdit(cmd, args[0], func(d *authoring.Draft) (string, error) {
			it, err := findItem(d, itemID)
			if err != nil {
				return "", err
			}
			return "Updated " + itemID + ";", d.UpdateItem(itemID, edit.apply(it))
		})
	},
}

var courseRemoveItemCmd = &cobra.Command{
	Use:   "rm-item <course-id> <item-id>",
	Short: "Remove a lesson or task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID := args[1]
		return runEdit(cmd, args[0], func(d *authoring.Draft) (string, error) {
			return "Removed " + itemID + ";", d.RemoveItem(itemID)
		})
	},
}

var courseMoveItemCmd = &cobra.Command{
	Use:   "move-item <course-id> <item-id> <position>",
	Short: "Move a lesson or task to a 1-based position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := strconv.Atoi(args[2])
		if err != nil || pos < 1 {
			return fmt.Errorf("invalid position %q: must be a number from 1", args[2])
		}
		itemID := args[1]
		return runEdit(cmd, args[0], func(d *authoring.Draft) (string, error) {
			return "Moved " + itemID + ";", d.MoveItem(itemID, pos-1)
		})
	},
}

func init() {
	courseCreateCmd.Flags().String("name", "", "Course name (required)")
	courseCreateCmd.Flags().String("description", "", "Short description")
	courseCreateCmd.Flags().String("deadline", "", "Default deadline (YYYY-MM-DD)")
	_ = courseCreateCmd.MarkFlagRequired("name")

	courseAddLessonCmd.Flags().String("title", "", "Lesson title (required)")
	courseAddLessonCmd.Flags().String("content", "", "Lesson text (required)")
	courseAddLessonCmd.Flags().Int("at", 0, "1-based position (default: append)")
	_ = courseAddLessonCmd.MarkFlagRequired("title")
	_ = courseAddLessonCmd.MarkFlagRequired("content")

	courseAddTaskCmd.Flags().String("question", "", "Task question (required)")
	courseAddTaskCmd.Flags().String("answer", "", "Expected answer (required)")
	courseAddTaskCmd.Flags().Int("at", 0, "1-based position (default: append)")
	_ = courseAddTaskCmd.MarkFlagRequired("question")
	_ = courseAddTaskCmd.MarkFlagRequired("answer")

	for _, name := range []string{"title", "content", "question", "answer"} {
		courseEditItemCmd.Flags().String(name, "", "New "+name)
	}

	courseCmd.AddCommand(courseCreateCmd)
	courseCmd.AddCommand(courseAddLessonCmd)
	courseCmd.AddCommand(courseAddTaskCmd)
	courseCmd.AddCommand(courseEditItemCmd)
	courseCmd.AddCommand(courseRemoveItemCmd)
	courseCmd.AddCommand(courseMoveItemCmd)
}
