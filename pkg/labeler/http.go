/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: http.go
Description: Generic GenAI HTTP labeler. Posts the prompt to a single endpoint and expects the
model's text back in a "text" field, which itself holds the JSON column list.
*/

package labeler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// maxReplyBytes caps how much of a reply body is read
const maxReplyBytes = 1 << 20

type genAIRequest struct {
	Query             string          `json:"query"`
	SystemInstruction string          `json:"systemInstruction"`
	ModelID           string          `json:"modelId"`
	Parameters        genAIParameters `json:"parameters"`
	Temperature       float64         `json:"temperature"`
}

type genAIParameters struct {
	MaxTokens int `json:"max_tokens"`
}

type genAIReply struct {
	Text string `json:"text"`
}

// HTTPLabeler talks to a generic GenAI endpoint
type HTTPLabeler struct {
	client *http.Client
	opts   Options
	logger *logrus.Logger
}

// NewHTTPLabeler creates a labeler posting to opts.Endpoint
func NewHTTPLabeler(opts Options) *HTTPLabeler {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HTTPLabeler{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		logger: logger,
	}
}

func (l *HTTPLabeler) Name() string { return ProviderHTTP }

// Suggest posts the row sample and decodes the column list from the reply text
func (l *HTTPLabeler) Suggest(ctx context.Context, rows [][]string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	body, err := json.Marshal(genAIRequest{
		Query:             buildPrompt(rows),
		SystemInstruction: systemInstruction,
		ModelID:           l.opts.Model,
		Parameters:        genAIParameters{MaxTokens: 1500},
		Temperature:       0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode labeler request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create labeler request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if l.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+l.opts.APIKey)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("labeler request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read labeler reply: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("labeler returned status %d", resp.StatusCode)
	}

	var reply genAIReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode labeler reply: %w", err)
	}

	l.logger.WithFields(logrus.Fields{
		"endpoint": l.opts.Endpoint,
		"bytes":    len(data),
	}).Debug("Received labeler reply")

	return ParseColumns(reply.Text)
}
