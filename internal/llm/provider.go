package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// Provider is the core abstraction for LLM interaction.
type Provider interface {
	// Generate sends a prompt and returns the model's output. When the
	// request carries a Schema the output is JSON validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	System   string
	Messages []Message

	// Schema selects the provider's native structured output. Nil means
	// free text, returned as-is in Response.Content.
	Schema *Schema

	MaxTokens int
	// Temperature in [0, 1]; zero leaves the provider default.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies the schema to providers and keys the compiled-schema
	// cache, e.g. "level-debrief".
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the LLM's output.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	// Model is the model that served the request, which may be a dated
	// variant of the configured one.
	Model string
	// StopReason is StopEnd or StopMaxTokens.
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

func newUsage(in, out int) Usage {
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}

// finish builds the response shared by all providers. Structured output
// cut off at the token limit cannot be valid JSON, so it is reported as
// ErrMaxTokensExceeded before validation.
func finish(req Request, content json.RawMessage, usage Usage, model, stop string) (*Response, error) {
	if req.Schema != nil {
		if stop == StopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}

// classifyStatus maps the HTTP status of a provider API error onto the
// error taxonomy the retry decorator understands.
func classifyStatus(status int, retryAfter time.Duration, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: retryAfter, Err: err}
	case status >= 500 || status == 0:
		return &ErrProviderUnavailable{Err: err}
	default:
		return &ErrRejected{Status: status, Err: err}
	}
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// resolveModel maps a short model alias to a provider model ID. Unknown
// names pass through so full IDs can be configured directly.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
