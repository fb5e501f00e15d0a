package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// AgentJudge adapts a go-agents chat agent to the relevance.Judge interface.
// A fresh agent is created per call so concurrent validations never share
// transport state.
type AgentJudge struct {
	cfg gaconfig.AgentConfig
}

// NewAgentJudge creates a judge backed by the given agent configuration.
func NewAgentJudge(cfg gaconfig.AgentConfig) *AgentJudge {
	return &AgentJudge{cfg: cfg}
}

// Complete sends the prompt pair to the model and returns the raw response.
func (j *AgentJudge) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	a, err := agent.New(&j.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n")
	sb.WriteString(userPrompt)

	resp, err := a.Chat(ctx, sb.String())
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}

	return resp.Content(), nil
}
