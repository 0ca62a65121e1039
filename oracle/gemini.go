package oracle

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	maxRetries     = 3
	initialBackoff = time.Second
)

// Gemini implements Client on top of the Gemini API in JSON mode.
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini oracle client.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{client: client}, nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// CompleteJSON issues one JSON-mode generation call with bounded retry and
// exponential backoff on transient failures. Temperature is pinned to zero:
// the callers combine these judgments deterministically and want the most
// stable output the model can give.
func (g *Gemini) CompleteJSON(ctx context.Context, model, systemInstruction, prompt string) ([]byte, error) {
	m := g.client.GenerativeModel(model)
	m.SetTemperature(0)
	m.ResponseMIMEType = "application/json"
	if systemInstruction != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemInstruction)},
		}
	}

	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		resp, err := m.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = err
			log.Printf("Oracle call failed (attempt %d/%d): %v", attempt+1, maxRetries, err)
			continue
		}

		text, err := responseText(resp)
		if err != nil {
			lastErr = err
			continue
		}

		return []byte(StripCodeFences(text)), nil
	}

	return nil, fmt.Errorf("oracle call failed after %d attempts: %w", maxRetries, lastErr)
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("oracle candidate has no parts (finish reason: %v)", candidate.FinishReason)
	}

	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	if builder.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return builder.String(), nil
}
