// Package assistant answers open-ended questions that fall outside the
// structured leave flows. When an OpenAI key is configured the answer comes
// from a chat completion; otherwise a static fallback keeps the bot usable
// offline.
package assistant

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Answerer produces a reply for a general question. An error tells the
// caller to use its own fallback text.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

const systemPrompt = `You are a concise leave-management assistant for employees.
Answer questions about leave policies and time-off in a few sentences.
If the question is unrelated to leave or HR, say you can only help with leave management.`

// OpenAIAnswerer answers via an OpenAI chat completion
type OpenAIAnswerer struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewOpenAIAnswerer creates an answerer backed by the OpenAI API
func NewOpenAIAnswerer(apiKey, model string, temperature float32, logger *zap.Logger) *OpenAIAnswerer {
	return &OpenAIAnswerer{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		logger:      logger,
	}
}

// Answer sends the question to the configured model
func (a *OpenAIAnswerer) Answer(ctx context.Context, question string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		MaxTokens:   300,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		a.logger.Warn("assistant completion failed", zap.Error(err))
		return "", fmt.Errorf("assistant: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("assistant: empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

// StaticAnswerer is the offline fallback: it always defers to the caller's
// canned response by returning an error.
type StaticAnswerer struct{}

// Answer always reports that no answer is available
func (StaticAnswerer) Answer(ctx context.Context, question string) (string, error) {
	return "", fmt.Errorf("assistant: not configured")
}
