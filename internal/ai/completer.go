// Package ai wraps the hosted completion service behind three prompt adapters: mood
// analysis, mood trend analysis and personalised well-being tips.
package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Request is one structured completion call. Schema describes the JSON object the model
// must return.
type Request struct {
	Name   string
	Prompt string
	Schema *genai.Schema
}

// Completer sends a rendered prompt to a completion service and returns the raw text of
// the reply.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// GenAICompleter calls Gemini through google.golang.org/genai in JSON mode.
type GenAICompleter struct {
	client *genai.Client
	model  string
}

// NewGenAICompleter creates a Gemini-backed Completer.
func NewGenAICompleter(ctx context.Context, apiKey, model string) (*GenAICompleter, error) {
	if apiKey == "" {
		return nil, errors.New("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAICompleter{client: client, model: model}, nil
}

func (c *GenAICompleter) Complete(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content for %s: %w", req.Name, err)
	}
	return resp.Text(), nil
}

// ErrNotConfigured is returned by Unavailable.
var ErrNotConfigured = errors.New("completion service not configured")

// Unavailable stands in when no API key is configured, so the rest of the API still
// serves while every AI flow fails with ErrNotConfigured.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}
