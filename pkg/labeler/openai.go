/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: openai.go
Description: OpenAI-compatible chat completion labeler. Works against the hosted API or any
compatible server (local gateways, proxies) through a configurable base URL, and requests a
JSON object reply so the column list can be decoded directly.
*/

package labeler

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gpt-4o-mini"

// OpenAILabeler asks a chat completion model to name columns
type OpenAILabeler struct {
	client *openai.Client
	model  string
	opts   Options
	logger *logrus.Logger
}

// NewOpenAILabeler creates a labeler from options. Endpoint overrides the API base URL.
func NewOpenAILabeler(opts Options) *OpenAILabeler {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.Endpoint != "" {
		cfg.BaseURL = opts.Endpoint
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	logger.WithFields(logrus.Fields{"model": model, "base_url": cfg.BaseURL}).Debug("Initializing OpenAI labeler")
	return &OpenAILabeler{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		opts:   opts,
		logger: logger,
	}
}

func (l *OpenAILabeler) Name() string { return ProviderOpenAI }

// Suggest sends the row sample and decodes the column list from the reply
func (l *OpenAILabeler) Suggest(ctx context.Context, rows [][]string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: l.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(rows)},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := l.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai labeler call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai labeler returned no choices")
	}

	l.logger.WithFields(logrus.Fields{
		"model":         l.model,
		"finish_reason": resp.Choices[0].FinishReason,
	}).Debug("Received labeler reply")

	return ParseColumns(resp.Choices[0].Message.Content)
}
