package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/starpath/internal/store"
)

type purposeKey struct{}

// WithPurpose labels requests made with ctx in the event log.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

type recording struct {
	inner  Provider
	vendor string
	events store.EventRepo
	log    zerolog.Logger
}

// WithLogging logs every request and appends it to the event log. A nil
// repo only logs.
func WithLogging(p Provider, vendor string, events store.EventRepo, log zerolog.Logger) Provider {
	return &recording{
		inner:  p,
		vendor: vendor,
		events: events,
		log:    log.With().Str("component", "llm").Str("vendor", vendor).Logger(),
	}
}

func (l *recording) ModelID() string { return l.inner.ModelID() }

func (l *recording) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    l.vendor,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	entry := l.log.Debug()
	if err != nil {
		entry = l.log.Warn().Err(err)
	}
	entry.Str("model", ev.Model).
		Str("purpose", ev.Purpose).
		Int64("latency_ms", ev.LatencyMs).
		Int("input_tokens", ev.InputTokens).
		Int("output_tokens", ev.OutputTokens).
		Msg("llm request")

	if l.events != nil {
		if rerr := l.events.AppendLLMRequest(ctx, ev); rerr != nil {
			l.log.Warn().Err(rerr).Msg("failed to record llm request")
		}
	}
	return resp, err
}

// transcript renders a request for the event log.
func transcript(req Request) string {
	var b strings.Builder
	section := func(title, body string) {
		b.WriteString("[" + title + "]\n")
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	if req.System != "" {
		section("system", req.System)
	}
	section("prompt", req.Prompt)
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			section("schema: "+req.Schema.Name, string(def))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
