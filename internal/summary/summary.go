// Package summary generates the kiosk's free-text messages: the
// greeting shown after a record is logged and the daily attendance
// summary. Both go through the generative endpoint with a plain-text
// contract, free text in and free text out.
package summary

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

//go:embed prompts/greeting.txt
var greetingPrompt string

//go:embed prompts/daily.txt
var dailyPrompt string

// Entry is one logged attendance row fed into the daily report.
type Entry struct {
	Name string
	At   time.Time
}

// Generator produces kiosk messages with the Gemini API.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator builds a message generator on the hosted Gemini backend.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Generator{client: client, model: model}, nil
}

// Greeting returns one short welcome sentence for the named person.
func (g *Generator) Greeting(ctx context.Context, personName string) (string, error) {
	return g.generate(ctx, greetingPrompt+"\n\nName: "+personName)
}

// DailySummary returns a short prose summary of one day's records.
func (g *Generator) DailySummary(ctx context.Context, day string, entries []Entry) (string, error) {
	return g.generate(ctx, dailyPrompt+"\n\n"+buildDailyReport(day, entries))
}

func (g *Generator) generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	// no response schema: the contract here is free text
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", errors.New("no response from Gemini")
	}
	return text, nil
}

// buildDailyReport renders the rows the model summarizes. Times are
// reported in UTC to match the store.
func buildDailyReport(day string, entries []Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", day)
	fmt.Fprintf(&b, "Total logged: %d\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s at %s\n", e.Name, e.At.UTC().Format("15:04"))
	}
	return b.String()
}
