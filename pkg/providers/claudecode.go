package providers

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
)

// ClaudeCodeProvider shells out to a local CLI tool (the "Claude-Code
// tool" fallback) instead of calling an HTTP API. It reuses base for
// rate limiting, health tracking and usage accounting, but doJSON's
// HTTP transport is never exercised — ResearchQuery runs the
// configured command directly.
type ClaudeCodeProvider struct {
	*base
}

// NewClaudeCodeProvider constructs a provider that invokes config.Command
// (default "claude") as a subprocess per query. No API key is required:
// the tool is expected to carry its own credentials.
func NewClaudeCodeProvider(config Config) (*ClaudeCodeProvider, error) {
	if config.Command == "" {
		config.Command = "claude"
	}
	if len(config.Args) == 0 {
		config.Args = []string{"--print"}
	}
	if config.Model == "" {
		config.Model = "claude-code-tool"
	}

	return &ClaudeCodeProvider{base: newBase(config)}, nil
}

func (p *ClaudeCodeProvider) Metadata() Metadata {
	cfg := p.GetConfig()
	return Metadata{
		Name:            cfg.Name,
		Version:         "cli",
		Capabilities:    []string{"research_query"},
		SupportedModels: []string{cfg.Model},
		Streaming:       false,
		RateLimits:      cfg.RateLimits,
	}
}

func (p *ClaudeCodeProvider) ResearchQuery(ctx context.Context, text string) (string, error) {
	cfg := p.GetConfig()
	inputTokens := estimateTokens(text)

	permit, err := p.limiter.Acquire(inputTokens, inputTokens)
	if err != nil {
		return "", err
	}
	defer permit.Release()

	started := time.Now()
	out, err := p.withRetry(ctx, func() ([]byte, error) {
		return p.runCommand(ctx, cfg, text)
	})
	latency := time.Since(started)
	if err != nil {
		p.recordFailure(err)
		return "", err
	}

	answer := strings.TrimSpace(string(out))
	outputTokens := estimateTokens(answer)
	p.recordSuccess(latency, inputTokens, outputTokens, 0)
	return answer, nil
}

func (p *ClaudeCodeProvider) runCommand(ctx context.Context, cfg Config, text string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, &ferrors.TimeoutError{After: cfg.Timeout}
		}
		return nil, &ferrors.ProviderError{
			Provider:  cfg.Name,
			Code:      "command_failed",
			Message:   strings.TrimSpace(stderr.String()) + ": " + err.Error(),
			Retryable: true,
		}
	}

	return stdout.Bytes(), nil
}

func (p *ClaudeCodeProvider) HealthCheck(ctx context.Context) error {
	_, err := p.ResearchQuery(ctx, "ping")
	return err
}

func (p *ClaudeCodeProvider) EstimateCost(text string) CostEstimate {
	in := estimateTokens(text)
	out := in / 2
	if out < 1 {
		out = 1
	}
	zero := 0.0
	return CostEstimate{InputTokens: in, OutputTokens: out, USD: &zero}
}
