package viewer

import (
	"charm.land/lipgloss/v2"

	"github.com/skilltrack/skilltrack/internal/course"
	"github.com/skilltrack/skilltrack/internal/progress"
	"github.com/skilltrack/skilltrack/internal/ui/components"
	"github.com/skilltrack/skilltrack/internal/ui/layout"
	"github.com/skilltrack/skilltrack/internal/ui/theme"
)

func (v *ViewerScreen) View(width, height int) string {
	if v.loadErr != nil {
		return layout.RenderNotice(msgLoadError+"\n\nPress R to retry or Esc to go back.", theme.Error, width, height)
	}
	if v.engine == nil {
		return layout.RenderNotice("Loading course...", theme.TextDim, width, height)
	}

	cw := min(width-4, 96)
	view := v.engine.CurrentView()

	var sections []string
	sections = append(sections, v.renderProgress(view, cw), "")

	switch {
	case view.Completed:
		sections = append(sections, renderCompleted(cw))
	case view.Item.IsLesson():
		sections = append(sections, renderLesson(view.Item, cw))
	default:
		sections = append(sections, v.renderTask(view, cw))
	}

	if v.hint != "" {
		sections = append(sections, "", theme.Warning.Render(v.hint))
	}
	sections = append(sections, "", v.renderNav())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, "\n"+content)
}

func (v *ViewerScreen) renderProgress(view progress.View, width int) string {
	label := theme.Hint.Render(view.Position())
	bar := components.NewProgressBar("", v.engine.ProgressPercent(), true, width-lipgloss.Width(label)-2).View()
	return bar + "  " + label
}

func renderLesson(it course.Item, width int) string {
	title := theme.Selected.Render(it.Title)
	body := theme.Body.Width(width).Render(it.Body)
	return lipgloss.JoinVertical(lipgloss.Left, theme.Hint.Render("Lesson"), title, "", body)
}

func (v *ViewerScreen) renderTask(view progress.View, width int) string {
	lines := []string{
		theme.Hint.Render("Task"),
		theme.Body.Width(width).Bold(true).Render(view.Item.Question),
		"",
		"Answer: " + v.input.View(),
	}

	switch {
	case v.checking:
		lines = append(lines, "", theme.Hint.Render("Checking..."))
	case v.feedback == msgCorrect:
		lines = append(lines, "", theme.Correct.Render(v.feedback))
	case v.feedback != "":
		lines = append(lines, "", theme.Incorrect.Render(v.feedback))
	case view.Answered:
		lines = append(lines, "", theme.Correct.Render("✓ Answered"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderCompleted(width int) string {
	return theme.Card.Width(width).Align(lipgloss.Center).Render(
		theme.Correct.Render(msgCompleted) + "\n\n" +
			theme.Hint.Render("Press Enter to return to your courses."))
}

func (v *ViewerScreen) renderNav() string {
	prev := components.NewButton("Previous", "←", v.engine.CanRetreat())
	next := components.NewButton("Next", "→", v.engine.CanAdvance())
	return lipgloss.JoinHorizontal(lipgloss.Center, prev.View(), "  ", next.View())
}
