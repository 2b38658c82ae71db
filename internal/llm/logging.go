package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/cascade/internal/logging"
	"github.com/abhisek/cascade/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as a store
// event. Prompt and response bodies go to the logger at trace level only.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
	log       *slog.Logger
}

// WithLogging wraps a Provider with event logging under the given provider
// name. A nil repo skips persistence.
func WithLogging(p Provider, provider string, repo store.EventRepo, log *slog.Logger) Provider {
	return &LoggingProvider{inner: p, provider: provider, eventRepo: repo, log: logging.OrDiscard(log)}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   purpose,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.log.Debug("llm request", "purpose", purpose, "model", data.Model,
		"latency_ms", data.LatencyMs, "success", data.Success)
	if l.log.Enabled(ctx, logging.LevelTrace) {
		attrs := []any{"purpose", purpose, "request", serializeRequest(req)}
		if resp != nil {
			attrs = append(attrs, "response", string(resp.Content))
		}
		l.log.Log(ctx, logging.LevelTrace, "llm exchange", attrs...)
	}

	// The request result stands even when the event cannot be stored.
	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
			l.log.Warn("failed to log LLM request event", "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
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
