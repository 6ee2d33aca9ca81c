package skill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ImagesConfig holds image generation settings.
type ImagesConfig struct {
	APIKey   string
	Endpoint string
	Model    string
	Size     string
}

// ImageResult is one generated image.
type ImageResult struct {
	URL           string `json:"url"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// ImageSkill renders concept images through an OpenAI-compatible images API.
type ImageSkill struct {
	config ImagesConfig
	client *http.Client
	logger *zap.Logger
}

// NewImageSkill creates the image generation skill.
func NewImageSkill(cfg ImagesConfig, logger *zap.Logger) *ImageSkill {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "dall-e-3"
	}
	if cfg.Size == "" {
		cfg.Size = "1024x1024"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageSkill{
		config: cfg,
		client: &http.Client{Timeout: 120 * time.Second},
		logger: logger,
	}
}

// Initialize checks that an API key is present.
func (s *ImageSkill) Initialize(_ context.Context) error {
	if s.config.APIKey == "" {
		return fmt.Errorf("%w: images api key missing", ErrNotConfigured)
	}
	return nil
}

// Generate renders one image for the prompt.
func (s *ImageSkill) Generate(ctx context.Context, prompt string) (*ImageResult, error) {
	if s.config.APIKey == "" {
		return nil, fmt.Errorf("%w: images api key missing", ErrNotConfigured)
	}

	body, err := json.Marshal(map[string]any{
		"model":  s.config.Model,
		"prompt": prompt,
		"n":      1,
		"size":   s.config.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.config.Endpoint+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Data []struct {
			URL           string `json:"url"`
			RevisedPrompt string `json:"revised_prompt"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("empty response from images API")
	}

	s.logger.Debug("image generated", zap.String("model", s.config.Model))
	return &ImageResult{
		URL:           result.Data[0].URL,
		RevisedPrompt: result.Data[0].RevisedPrompt,
	}, nil
}
