package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/bookdesk/bookdesk/internal/models"
)

var (
	ErrEmptyText         = errors.New("order text is required")
	ErrMissingAPIKey     = errors.New("gemini api key not configured")
	ErrModelsUnavailable = errors.New("all generation models failed")
	ErrMalformedResponse = errors.New("failed to parse model response")
)

const orderPrompt = `
You are a book order parser. Convert the user's input text into a JSON Array of book orders.

Rules:
1. Extract 'title' and 'quantity' (number).
2. Default quantity is 1 if not specified.
3. Correct typos (e.g., '공수' -> '공통수학', '쏀' -> '쎈').
4. Ignore greetings or irrelevant text.
5. Output ONLY the JSON Array. No markdown, no explanations.

Examples:
Input: "쎈 수1 3권, 마플 시너지 수2"
Output: [{"title": "쎈 수1", "quantity": 3}, {"title": "마플 시너지 수2", "quantity": 1}]

Input: "개념원리 대수"
Output: [{"title": "개념원리 대수", "quantity": 1}]

Input: %s
`

// jsonArrayPattern isolates the first-to-last bracket span in a model
// response. A first-match scan like this can grab too much when the
// model embeds another bracketed structure in surrounding prose, but
// in practice the response is the array itself plus optional fences.
var jsonArrayPattern = regexp.MustCompile(`\[[\s\S]*\]`)

// TextGenerator produces a raw model response for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	apiKey string
}

func NewGeminiGenerator(apiKey string) *GeminiGenerator {
	return &GeminiGenerator{apiKey: apiKey}
}

// Generate sends the prompt to the named Gemini model and returns the
// text of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("creating gemini client: %w", err)
	}
	defer client.Close()

	resp, err := client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("no candidates returned")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("empty content returned")
	}
	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}
	return "", errors.New("unexpected response format")
}

// OrderExtractor turns free-form order text into structured line items
// by prompting a generative model and parsing the response.
type OrderExtractor struct {
	generator TextGenerator
	models    []string
}

// NewOrderExtractor creates an extractor that tries the given models
// in order, stopping at the first that answers.
func NewOrderExtractor(generator TextGenerator, modelNames []string) *OrderExtractor {
	return &OrderExtractor{
		generator: generator,
		models:    modelNames,
	}
}

// Extract parses raw order text into line items. The whole call fails
// only when every model errors out or the response has no parseable
// structure; individually malformed elements are dropped silently.
func (e *OrderExtractor) Extract(ctx context.Context, text string) ([]models.ExtractedItem, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	prompt := fmt.Sprintf(orderPrompt, text)

	var raw string
	var lastErr error
	generated := false
	for _, model := range e.models {
		resp, err := e.generator.Generate(ctx, model, prompt)
		if err != nil {
			lastErr = err
			continue
		}
		raw = resp
		generated = true
		break
	}
	if !generated {
		if lastErr == nil {
			lastErr = errors.New("no models configured")
		}
		// Keep the underlying error in the chain: a missing API key must
		// stay recognizable as a configuration problem, not a model outage
		return nil, fmt.Errorf("%w: %w", ErrModelsUnavailable, lastErr)
	}

	return parseExtractedItems(raw)
}

// rawExtractedItem tolerates the quantity coming back as a number, a
// numeric string, or missing entirely.
type rawExtractedItem struct {
	Title    string `json:"title"`
	Quantity any    `json:"quantity"`
}

// parseExtractedItems cleans model formatting artifacts out of raw and
// decodes the line-item array.
func parseExtractedItems(raw string) ([]models.ExtractedItem, error) {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	// Isolate the array when the model wrapped it in prose
	if match := jsonArrayPattern.FindString(clean); match != "" {
		clean = match
	}

	var rawItems []rawExtractedItem
	if err := json.Unmarshal([]byte(clean), &rawItems); err != nil {
		// Some models answer with an object carrying the array
		var wrapped struct {
			Items []rawExtractedItem `json:"items"`
		}
		if err2 := json.Unmarshal([]byte(clean), &wrapped); err2 != nil || wrapped.Items == nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		rawItems = wrapped.Items
	}

	items := make([]models.ExtractedItem, 0, len(rawItems))
	for _, ri := range rawItems {
		title := strings.TrimSpace(ri.Title)
		if title == "" {
			continue
		}
		items = append(items, models.ExtractedItem{
			Title:    title,
			Quantity: coerceQuantity(ri.Quantity),
		})
	}
	return items, nil
}

// coerceQuantity converts whatever the model sent into an integer
// quantity, defaulting to 1 for anything absent or unusable.
func coerceQuantity(v any) int {
	switch q := v.(type) {
	case float64:
		if q >= 1 {
			return int(q)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(q)); err == nil && n >= 1 {
			return n
		}
	}
	return 1
}
