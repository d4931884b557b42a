package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Gemini classifies stills with the Gemini API. The prompt pins the
// model to the verdict JSON so responses parse straight into Result.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a classifier on the hosted Gemini backend.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Detect sends the downscaled still with the detection prompt and parses
// the verdict.
func (g *Gemini) Detect(ctx context.Context, image []byte) (Result, error) {
	// Resize image to max 800px to save costs
	resized, err := ResizeImage(image, 800)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resize image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: faceDetectPrompt},
				{InlineData: &genai.Blob{Data: resized, MIMEType: "image/jpeg"}},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return Result{}, fmt.Errorf("gemini API error: %w", err)
	}

	content := result.Text()
	if content == "" {
		return Result{}, errors.New("no response from Gemini")
	}

	var verdict Result
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return Result{}, fmt.Errorf("failed to parse verdict JSON: %w (response: %s)", err, content)
	}
	if verdict.Status == "" || verdict.Message == "" {
		return Result{}, fmt.Errorf("incomplete verdict: %s", content)
	}
	return verdict, nil
}
