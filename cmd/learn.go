package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skilltrack/skilltrack/internal/assignment"
	"github.com/skilltrack/skilltrack/internal/grading"
	"github.com/skilltrack/skilltrack/internal/progress"
	"github.com/skilltrack/skilltrack/internal/store"
)

var learnCmd = &cobra.Command{
	Use:   "learn <course-id>",
	Short: "Work through a course line by line (no TUI)",
	Long: `Open an assigned course in a plain prompt loop.

Commands at the prompt:
  n            next item
  p            previous item
  goto <N>     jump to item N (forward jumps stop at unanswered tasks)
  q            quit

On a task, any other input is submitted as the answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runLearn,
}

func init() {
	learnCmd.Flags().Bool("restart", false, "Clear stored progress for this course before starting")
}

func runLearn(cmd *cobra.Command, args []string) error {
	restart, _ := cmd.Flags().GetBool("restart")
	courseID := args[0]
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
	if !s.IsManager() {
		svc := assignment.New(rt.store.Courses(), rt.store.Users(), rt.store.Assignments(), nil, rt.logger)
		ok, err := svc.IsAssigned(ctx, s.UserID, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("course %s is not assigned to you", courseID)
		}
	}
	if restart {
		if err := rt.store.Progress().Reset(ctx, s.UserID, courseID); err != nil {
			return err
		}
	}

	verifier, err := rt.verifier(ctx)
	if err != nil {
		return err
	}
	engine, err := progress.Load(ctx, progress.Deps{
		Content:  rt.store.Courses(),
		Progress: store.UserProgress{Repo: rt.store.Progress(), UserID: s.UserID},
		Verifier: grading.WithAudit(verifier, rt.store.Events(), s.UserID, rt.logger),
		Logger:   rt.logger,
	}, courseID)
	if err != nil {
		rt.logger.Error("load course", zap.String("course_id", courseID), zap.Error(err))
		return errors.New(progress.TextLoadError)
	}
	defer engine.Wait()

	return learnLoop(ctx, engine, cmd.InOrStdin(), cmd.OutOrStdout())
}

// learnLoop reads commands from in until q or EOF.
func learnLoop(ctx context.Context, engine *progress.Engine, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintf(out, "── %s ──\n", engine.CourseName())

	for {
		printItem(out, engine.CurrentView())
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		view := engine.CurrentView()

		switch {
		case line == "q":
			return nil
		case line == "n":
			if err := engine.Next(); err != nil {
				printNavError(out, err)
			}
		case line == "p":
			if err := engine.Previous(); err != nil {
				printNavError(out, err)
			}
		case strings.HasPrefix(line, "goto "):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "goto ")))
			if err != nil {
				fmt.Fprintln(out, "Usage: goto <item number>")
				continue
			}
			if err := engine.Advance(n - 1); err != nil {
				printNavError(out, err)
			}
		case !view.Completed && view.Item.IsTask() && line != "":
			cctx, cancel := context.WithTimeout(ctx, progress.DefaultCheckTimeout)
			outcome, err := engine.CheckAnswer(cctx, line)
			cancel()
			switch {
			case err != nil:
				fmt.Fprintln(out, progress.TextCheckError)
			case outcome == progress.OutcomeCorrect:
				fmt.Fprintln(out, "\033[32m✓ "+progress.TextCorrect+"\033[0m")
			default:
				fmt.Fprintln(out, "\033[31m✗ "+progress.TextIncorrect+"\033[0m")
			}
		default:
			fmt.Fprintln(out, "Commands: n, p, goto <N>, q")
		}
	}
}

func printItem(out io.Writer, view progress.View) {
	fmt.Fprintf(out, "\n[%s  %d%%]\n", view.Position(), progress.Percent(view.Index, view.Total))
	switch {
	case view.Completed:
		fmt.Fprintln(out, progress.TextCompleted)
	case view.Item.IsTask():
		fmt.Fprintf(out, "Task: %s\n", view.Item.Question)
		if view.Answered {
			fmt.Fprintln(out, "✓ Answered")
		}
	default:
		fmt.Fprintf(out, "%s\n\n%s\n", view.Item.Title, view.Item.Body)
	}
}

func printNavError(out io.Writer, err error) {
	switch {
	case errors.Is(err, progress.ErrGatingViolation):
		fmt.Fprintln(out, progress.TextGated)
	case errors.Is(err, progress.ErrOutOfRange):
		fmt.Fprintln(out, "No such item.")
	default:
		fmt.Fprintln(out, err)
	}
}
