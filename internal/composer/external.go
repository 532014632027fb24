package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"knowledge-inbox/internal/models"
)

const systemPrompt = "Answer only using the provided context. Be concise and factual."

// ExternalModel phrases answers with an OpenAI-compatible chat endpoint.
// Callers must treat its errors as recoverable and fall back to Local; the
// external path is an enhancement, never required for a valid answer.
type ExternalModel struct {
	llm     llms.Model
	timeout time.Duration
}

func NewExternalModel(key, baseURL, model string, timeout time.Duration) (*ExternalModel, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(key, "Bearer ")),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ExternalModel{llm: llm, timeout: timeout}, nil
}

func (m *ExternalModel) Compose(ctx context.Context, question, contextText string, _ []models.ScoredChunk) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: systemPrompt}},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: fmt.Sprintf("Context:\n%s\n\nQuestion:\n%s", contextText, question)}},
		},
	}

	resp, err := m.llm.GenerateContent(ctx, messages, llms.WithTemperature(0.3), llms.WithMaxTokens(400))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
