package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abhisek/cascade/internal/llm"
	"github.com/abhisek/cascade/internal/logging"
)

// Service generates level debriefs. Generate is synchronous; RequestDebrief
// runs it in the background for the TUI, which polls ConsumeDebrief.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	pending *Debrief
	err     error
	ready   bool
}

// NewService creates a debrief service.
func NewService(provider llm.Provider, cfg Config, log *slog.Logger) *Service {
	return &Service{provider: provider, cfg: cfg, log: logging.OrDiscard(log), now: time.Now}
}

type debriefOutput struct {
	Headline   string   `json:"headline"`
	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths"`
	FocusAreas []string `json:"focus_areas"`
	NextStep   string   `json:"next_step"`
}

// Generate asks the provider for a debrief of the given level.
func (s *Service) Generate(ctx context.Context, in Input) (*Debrief, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeDebrief)
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	req := llm.Request{
		System: debriefSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildDebriefUserMessage(in)},
		},
		Schema:      DebriefSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("debrief generation: %w", err)
	}

	var out debriefOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse debrief response: %w", err)
	}

	return &Debrief{
		Headline:    out.Headline,
		Summary:     out.Summary,
		Strengths:   out.Strengths,
		FocusAreas:  out.FocusAreas,
		NextStep:    out.NextStep,
		GeneratedAt: s.now(),
	}, nil
}

// RequestDebrief starts generation in the background. A newer request
// replaces any result not yet consumed.
func (s *Service) RequestDebrief(ctx context.Context, in Input) {
	go func() {
		d, err := s.Generate(ctx, in)
		if err != nil {
			s.log.Warn("debrief failed", "error", err)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.pending = d
		s.err = err
		s.ready = true
	}()
}

// ConsumeDebrief returns the finished debrief, if any, and clears the slot.
// A failed generation is reported once through the error.
func (s *Service) ConsumeDebrief() (*Debrief, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, false, nil
	}
	d, err := s.pending, s.err
	s.pending = nil
	s.err = nil
	s.ready = false
	return d, true, err
}
