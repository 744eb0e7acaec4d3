package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2/google"

	"autoapply/config"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1/models/%s:generateContent"

type GeminiRequest struct {
	Contents         []Content               `json:"contents"`
	GenerationConfig *GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int64   `json:"maxOutputTokens"`
}

type Content struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role"`
}

type Part struct {
	Text string `json:"text"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// geminiCompleter calls the Gemini REST API with an API key, or with
// application default credentials when no key is configured.
type geminiCompleter struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

func newGeminiCompleter(cfg config.LLMConfig) *geminiCompleter {
	return &geminiCompleter{
		apiKey:   cfg.GeminiAPIKey,
		model:    cfg.GeminiModel,
		endpoint: fmt.Sprintf(geminiEndpoint, cfg.GeminiModel),
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *geminiCompleter) Complete(ctx context.Context, prompt string, maxTokens int64, temperature float64) (string, error) {
	requestBody := GeminiRequest{
		Contents: []Content{
			{
				Role:  "user",
				Parts: []Part{{Text: prompt}},
			},
		},
		GenerationConfig: &GeminiGenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	url := c.endpoint
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	if c.apiKey == "" {
		token, err := getAccessToken(ctx)
		if err != nil {
			return "", fmt.Errorf("no Gemini API key and no default credentials: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("Gemini API error: %s", b)
	}

	var gemResp GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gemResp); err != nil {
		return "", err
	}

	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return "", errEmptyCompletion
	}

	return gemResp.Candidates[0].Content.Parts[0].Text, nil
}

func getAccessToken(ctx context.Context) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", err
	}
	token, err := creds.TokenSource.Token()
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}
