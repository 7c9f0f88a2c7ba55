package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/skilltrack/skilltrack/internal/course"
	"github.com/skilltrack/skilltrack/internal/llm"
)

// VerdictSchema is the structured output requested from the model.
var VerdictSchema = &llm.Schema{
	Name:        "answer-verdict",
	Description: "Whether a learner's answer means the same as the reference answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correct": map[string]any{"type": "boolean"},
			"reason":  map[string]any{"type": "string"},
		},
		"required":             []any{"correct", "reason"},
		"additionalProperties": false,
	},
}

const gradingSystemPrompt = `You grade short answers in a corporate training course.
Accept the learner's answer only if it states the same fact as the reference answer.
Ignore case, punctuation and harmless wording differences. Reject answers that are
vague, partially correct or that add contradicting claims.`

// AssistedVerifier accepts exact matches directly and asks an LLM about
// the remaining non-empty submissions.
type AssistedVerifier struct {
	content  course.ContentProvider
	provider llm.Provider
	logger   *zap.Logger
}

func NewAssistedVerifier(content course.ContentProvider, provider llm.Provider, logger *zap.Logger) *AssistedVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistedVerifier{content: content, provider: provider, logger: logger}
}

type verdict struct {
	Correct bool   `json:"correct"`
	Reason  string `json:"reason"`
}

func (v *AssistedVerifier) Verify(ctx context.Context, courseID, taskID, submitted string) (bool, error) {
	task, ok, err := lookupTask(ctx, v.content, courseID, taskID)
	if err != nil || !ok {
		return false, err
	}
	if course.MatchAnswer(task.Answer, submitted) {
		return true, nil
	}
	if course.NormalizeAnswer(submitted) == "" {
		return false, nil
	}

	prompt := fmt.Sprintf("Question: %s\nReference answer: %s\nLearner answer: %s",
		task.Question, task.Answer, strings.TrimSpace(submitted))
	req := llm.UserPrompt(gradingSystemPrompt, prompt, VerdictSchema, 200)

	resp, err := v.provider.Generate(llm.WithPurpose(ctx, "grading"), req)
	if err != nil {
		return false, fmt.Errorf("assisted grading: %w", err)
	}
	var out verdict
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return false, fmt.Errorf("decode verdict: %w", err)
	}
	v.logger.Debug("assisted verdict",
		zap.String("course_id", courseID),
		zap.String("task_id", taskID),
		zap.Bool("correct", out.Correct),
		zap.String("reason", out.Reason))
	return out.Correct, nil
}
