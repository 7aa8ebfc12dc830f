package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lumikids/lumi/internal/config"
	"github.com/lumikids/lumi/internal/types"
)

// Client talks to a content-generation sidecar over HTTP
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the generation sidecar
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8410"
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second, // image generation can take a while
		},
	}
}

// batchRequest is the sidecar API request format for skeleton batches
type batchRequest struct {
	SeedTopic     string   `json:"seed_topic"`
	AgeGroup      string   `json:"age_group"`
	Topics        []string `json:"topics,omitempty"`
	Count         int      `json:"count"`
	Difficulty    string   `json:"difficulty"`
	Format        string   `json:"format"`
	TopicCategory string   `json:"topic_category"`
}

// batchResponse is the sidecar API response format
type batchResponse struct {
	Items []Skeleton `json:"items"`
}

// GenerateBatch requests a batch of content skeletons from the sidecar
func (c *Client) GenerateBatch(ctx context.Context, seedTopic string, st *config.Settings, rec types.Recommendation) ([]Skeleton, error) {
	reqBody := batchRequest{
		SeedTopic:     seedTopic,
		AgeGroup:      st.AgeGroup,
		Topics:        st.Topics,
		Count:         st.BatchSize,
		Difficulty:    string(rec.Difficulty),
		Format:        string(rec.Format),
		TopicCategory: string(rec.TopicCategory),
	}

	var result batchResponse
	if err := c.post(ctx, "/v1/content/batch", reqBody, &result); err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("empty batch returned")
	}
	return result.Items, nil
}

// assetRequest is the sidecar API request format for illustrations
type assetRequest struct {
	Prompt string `json:"prompt"`
}

// assetResponse is the sidecar API response format
type assetResponse struct {
	URL string `json:"url"`
}

// GenerateAsset requests an illustration for a single item
func (c *Client) GenerateAsset(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("empty prompt")
	}

	var result assetResponse
	if err := c.post(ctx, "/v1/content/illustrate", assetRequest{Prompt: prompt}, &result); err != nil {
		return "", err
	}
	if result.URL == "" {
		return "", fmt.Errorf("empty asset url returned")
	}
	return result.URL, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("provider error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
