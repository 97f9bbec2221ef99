package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// MockClient is a deterministic llms.Model, grounded on the teacher's
// core.MockLLM predictable-response pattern. It is extended here with
// scripted, substring-matched completions so scenario fixtures (spec §8
// S2-S4) can drive the paradigm through prompt+save and script-exists/
// script-missing branches without a live provider.
type MockClient struct {
	model     string
	byPrompt  map[string]string
	sequence  []string
	callIndex int
}

// NewMock builds a MockClient; WithResponse/WithSequence script its output.
func NewMock(model string) *MockClient {
	return &MockClient{model: model, byPrompt: make(map[string]string)}
}

// WithResponse returns completion whenever a prompt contains substring.
func (m *MockClient) WithResponse(substring, completion string) *MockClient {
	m.byPrompt[substring] = completion
	return m
}

// WithSequence scripts completions returned in order, one per call, once
// byPrompt has no match; the last entry repeats for any further calls.
func (m *MockClient) WithSequence(completions ...string) *MockClient {
	m.sequence = completions
	return m
}

// GenerateContent implements llms.Model for direct langchaingo interop.
func (m *MockClient) GenerateContent(
	_ context.Context,
	messages []llms.MessageContent,
	_ ...llms.CallOption,
) (*llms.ContentResponse, error) {
	var prompt string
	for _, message := range messages {
		if message.Role != llms.ChatMessageTypeHuman {
			continue
		}
		for _, part := range message.Parts {
			if text, ok := part.(llms.TextContent); ok {
				prompt = text.Text
			}
		}
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.respond(prompt)}},
	}, nil
}

// Call implements the legacy langchaingo single-string interface.
func (m *MockClient) Call(_ context.Context, prompt string, _ ...llms.CallOption) (string, error) {
	return m.respond(prompt), nil
}

func (m *MockClient) respond(prompt string) string {
	for substring, completion := range m.byPrompt {
		if strings.Contains(prompt, substring) {
			return completion
		}
	}
	if len(m.sequence) > 0 {
		idx := m.callIndex
		if idx >= len(m.sequence) {
			idx = len(m.sequence) - 1
		}
		m.callIndex++
		return m.sequence[idx]
	}
	if prompt == "" {
		return "Mock agent response: task completed successfully"
	}
	return fmt.Sprintf("Mock response for: %s", prompt)
}
