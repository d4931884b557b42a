package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// REST calls a self-hosted detection endpoint speaking the classifier
// wire contract: the request carries the instruction prompt and the
// base64 image, the response is the verdict JSON.
type REST struct {
	BaseURL string
	HTTP    *http.Client
}

// NewREST creates a client for the detection endpoint.
func NewREST(baseURL string) *REST {
	return &REST{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: 30 * time.Second, // model inference can take time
		},
	}
}

// Detect posts the still and decodes the verdict.
func (c *REST) Detect(ctx context.Context, image []byte) (Result, error) {
	if c.BaseURL == "" {
		return Result{}, fmt.Errorf("detection endpoint not configured")
	}

	body, _ := json.Marshal(map[string]string{
		"prompt": faceDetectPrompt,
		"image":  base64.StdEncoding.EncodeToString(image),
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/detect", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("detection request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("detection service error %s: %s", resp.Status, string(bodyBytes))
	}

	var verdict Result
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return Result{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if verdict.Status == "" || verdict.Message == "" {
		return Result{}, fmt.Errorf("incomplete detection response")
	}
	return verdict, nil
}
