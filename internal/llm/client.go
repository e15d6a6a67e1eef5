package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bilalabdelkadir/teftef-trader/internal/model"
)

const (
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	GeminiBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai"

	DefaultOpenRouterModel = "google/gemini-2.0-flash-001"
	DefaultGeminiModel     = "gemini-2.5-flash"
)

// ErrNoAPIKey is returned before any request when the client has no key.
var ErrNoAPIKey = errors.New("llm api key is not set")

// Client generates structured trade signals through an OpenAI-compatible
// chat completions endpoint.
type Client struct {
	Name    string
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

func newClient(name, baseURL, apiKey, modelID, proxyURL string) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Client{
		Name:    name,
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelID,
		Client: &http.Client{
			Timeout:   120 * time.Second,
			Transport: transport,
		},
	}
}

// NewOpenRouter creates a client for OpenRouter. An empty modelID selects DefaultOpenRouterModel.
func NewOpenRouter(apiKey, modelID, proxyURL string) *Client {
	if modelID == "" {
		modelID = DefaultOpenRouterModel
	}
	return newClient("openrouter", OpenRouterBaseURL, apiKey, modelID, proxyURL)
}

// NewGemini creates a client for Google's OpenAI-compatible Gemini endpoint.
func NewGemini(apiKey, modelID, proxyURL string) *Client {
	if modelID == "" {
		modelID = DefaultGeminiModel
	}
	return newClient("gemini", GeminiBaseURL, apiKey, modelID, proxyURL)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat map[string]any `json:"response_format"`
	Temperature    float64        `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateSignal asks the model for a trade signal matching SignalSchema.
func (c *Client) GenerateSignal(ctx context.Context, system, prompt string) (*model.TradeSignal, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", c.Name, ErrNoAPIKey)
	}

	reqBody := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "trade_signal",
				"strict": true,
				"schema": SignalSchema,
			},
		},
		Temperature: 0.2,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", c.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w", c.Name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d, body: %s", c.Name, resp.StatusCode, string(body))
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%s decode: %w", c.Name, err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("%s api error: %s", c.Name, out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%s: no choices returned", c.Name)
	}

	return ParseSignal(out.Choices[0].Message.Content)
}

// ParseSignal decodes and validates a model reply. Markdown code fences are tolerated.
func ParseSignal(content string) (*model.TradeSignal, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}

	var sig model.TradeSignal
	if err := json.Unmarshal([]byte(s), &sig); err != nil {
		return nil, fmt.Errorf("decode signal: %w", err)
	}
	if sig.Direction != model.DirectionBuy && sig.Direction != model.DirectionSell {
		return nil, fmt.Errorf("invalid direction %q", sig.Direction)
	}
	if sig.Confidence < 0 || sig.Confidence > 100 {
		return nil, fmt.Errorf("confidence %.1f out of range [0, 100]", sig.Confidence)
	}
	if sig.KeyLevels.Support == nil {
		sig.KeyLevels.Support = []float64{}
	}
	if sig.KeyLevels.Resistance == nil {
		sig.KeyLevels.Resistance = []float64{}
	}
	return &sig, nil
}
