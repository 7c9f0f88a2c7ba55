package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RequestRecord is one row of the LLM request log.
type RequestRecord struct {
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	Error        string
	Prompt       string
	Output       string
}

// Recorder persists RequestRecords.
type Recorder interface {
	RecordLLMRequest(ctx context.Context, rec RequestRecord) error
}

type recordingProvider struct {
	inner  Provider
	rec    Recorder
	logger *zap.Logger
}

// WithRecording stores every request and its outcome through rec. Failing
// to record is logged and never fails the request.
func WithRecording(p Provider, rec Recorder, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &recordingProvider{inner: p, rec: rec, logger: logger}
}

func (p *recordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := p.inner.Generate(ctx, req)

	rec := RequestRecord{
		Model:     p.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		Prompt:    renderPrompt(req),
	}
	if resp != nil {
		rec.Model = resp.Model
		rec.InputTokens = resp.Usage.InputTokens
		rec.OutputTokens = resp.Usage.OutputTokens
		rec.Output = string(resp.Content)
	}
	if err != nil {
		rec.Error = err.Error()
	}

	p.logger.Debug("llm request",
		zap.String("model", rec.Model),
		zap.String("purpose", rec.Purpose),
		zap.Int64("latency_ms", rec.LatencyMs),
		zap.Bool("success", rec.Success))

	if p.rec != nil {
		if rerr := p.rec.RecordLLMRequest(ctx, rec); rerr != nil {
			p.logger.Warn("recording llm request", zap.Error(rerr))
		}
	}
	return resp, err
}

func (p *recordingProvider) ModelID() string { return p.inner.ModelID() }

func renderPrompt(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
