// Package datagen produces synthetic behavioral-interview records via the
// OpenAI chat-completions API, for building fine-tuning datasets.
package datagen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are an expert career coach specializing in behavioral interview preparation.
You will generate synthetic interview questions, realistic candidate responses,
and constructive feedback that helps candidates improve.
Candidates are specifically computer science graduate students in Vancouver, BC, and some are neurodivergent.`

const userPrompt = `Generate a synthetic interview data point for a behavioral interview.
Include:
- A realistic interview question.
- A high-quality candidate response.
- Detailed, actionable feedback from a hiring manager's perspective.

Format the output as JSON with the following fields:
{
    "question": "...",
    "response": "...",
    "feedback": "..."
}`

// Record is one synthetic interview data point.
type Record struct {
	Question string `json:"question"`
	Response string `json:"response"`
	Feedback string `json:"feedback"`
}

// chatClient is the slice of the OpenAI client the generator needs.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator produces Records, retrying transient API failures.
type Generator struct {
	client     chatClient
	model      string
	retries    int
	retryDelay time.Duration
	log        zerolog.Logger
}

// New creates a generator backed by the OpenAI API.
func New(apiKey, model string, log zerolog.Logger) *Generator {
	return &Generator{
		client:     openai.NewClient(apiKey),
		model:      model,
		retries:    3,
		retryDelay: 5 * time.Second,
		log:        log,
	}
}

// Generate requests one record from the API and parses it.
func (g *Generator) Generate(ctx context.Context) (*Record, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	var rec Record
	if err := json.Unmarshal([]byte(content), &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record JSON: %w", err)
	}

	return &rec, nil
}

// GenerateWithRetry calls Generate up to the configured number of attempts,
// sleeping between failures.
func (g *Generator) GenerateWithRetry(ctx context.Context) (*Record, error) {
	var lastErr error

	for attempt := 1; attempt <= g.retries; attempt++ {
		g.log.Info().Int("attempt", attempt).Msg("Generating synthetic data")

		rec, err := g.Generate(ctx)
		if err == nil {
			return rec, nil
		}
		lastErr = err
		g.log.Error().Err(err).Int("attempt", attempt).Msg("Generation failed")

		if attempt < g.retries {
			select {
			case <-time.After(g.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("failed to generate data after %d retries: %w", g.retries, lastErr)
}

// WriteDataset generates count records and writes them to w as JSON lines.
func (g *Generator) WriteDataset(ctx context.Context, w io.Writer, count int) error {
	enc := json.NewEncoder(w)

	for i := 0; i < count; i++ {
		g.log.Info().Int("record", i+1).Int("total", count).Msg("Generating record")

		rec, err := g.GenerateWithRetry(ctx)
		if err != nil {
			return err
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return nil
}
