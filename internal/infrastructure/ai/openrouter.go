// Package ai talks to OpenRouter and turns its replies into command suggestions.
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/ports"
)

const maxSSELine = 1 << 20

// Client is an OpenRouter chat completion client.
type Client struct {
	baseURL     string
	apiKey      string
	siteURL     string
	siteName    string
	model       string
	temperature float64
	maxTokens   int
	provider    *domain.ProviderPreferences
	httpClient  *http.Client
	logger      ports.Logger
}

var (
	_ ports.ChatClient   = (*Client)(nil)
	_ ports.ModelCatalog = (*Client)(nil)
	_ ports.KeyInspector = (*Client)(nil)
)

// NewClient builds a client from the loaded configuration.
func NewClient(cfg domain.Config, logger ports.Logger) *Client {
	baseURL := strings.TrimRight(cfg.OpenRouter.BaseURL, "/")
	if baseURL == "" {
		baseURL = domain.DefaultBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		siteURL:     valueOrDefault(cfg.OpenRouter.SiteURL, domain.DefaultSiteURL),
		siteName:    valueOrDefault(cfg.OpenRouter.SiteName, domain.DefaultSiteName),
		model:       cfg.ChatModel(""),
		temperature: cfg.ChatTemperature(),
		maxTokens:   cfg.ChatMaxTokens(),
		provider:    cfg.OpenRouter.Provider,
		httpClient:  &http.Client{Timeout: cfg.RequestTimeout()},
		logger:      logger,
	}
}

// Model returns the default model id.
func (c *Client) Model() string {
	return c.model
}

type chatRequest struct {
	Model       string                      `json:"model"`
	Messages    []domain.ChatMessage        `json:"messages"`
	Temperature *float64                    `json:"temperature,omitempty"`
	MaxTokens   int                         `json:"max_tokens,omitempty"`
	Stream      bool                        `json:"stream,omitempty"`
	Provider    *domain.ProviderPreferences `json:"provider,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message domain.ChatMessage `json:"message"`
	} `json:"choices"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Chat sends messages and returns the first choice.
func (c *Client) Chat(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error) {
	resp, err := c.postChat(ctx, c.buildRequest(messages, opts, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	return decodeChat(resp.Body)
}

// StreamChat streams the reply through onChunk. When the stream cannot be
// opened it falls back to a plain Chat call.
func (c *Client) StreamChat(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions, onChunk func(string)) (string, error) {
	resp, err := c.postChat(ctx, c.buildRequest(messages, opts, true))
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) || errors.Is(err, ErrMissingAPIKey) || ctx.Err() != nil {
			return "", err
		}
		c.logger.Debug("stream unavailable, falling back to chat", map[string]interface{}{"error": err.Error()})
		reply, chatErr := c.Chat(ctx, messages, opts)
		if chatErr == nil && onChunk != nil {
			onChunk(reply)
		}
		return reply, chatErr
	}
	defer resp.Body.Close()

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		reply, err := decodeChat(resp.Body)
		if err == nil && onChunk != nil {
			onChunk(reply)
		}
		return reply, err
	}
	return readStream(resp.Body, onChunk)
}

// ListModels returns the public model catalog.
func (c *Client) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	var payload struct {
		Data []domain.ModelInfo `json:"data"`
	}
	if err := c.getJSON(ctx, "/models", false, &payload); err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	return payload.Data, nil
}

// KeyInfo validates the API key and reports its usage.
func (c *Client) KeyInfo(ctx context.Context) (domain.KeyInfo, error) {
	var payload struct {
		Data domain.KeyInfo `json:"data"`
	}
	if err := c.getJSON(ctx, "/auth/key", true, &payload); err != nil {
		return domain.KeyInfo{}, fmt.Errorf("inspect key: %w", err)
	}
	return payload.Data, nil
}

func (c *Client) buildRequest(messages []domain.ChatMessage, opts domain.ChatOptions, stream bool) chatRequest {
	req := chatRequest{
		Model:     valueOrDefault(opts.Model, c.model),
		Messages:  messages,
		MaxTokens: c.maxTokens,
		Stream:    stream,
	}
	temperature := c.temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	req.Temperature = &temperature
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	if !c.provider.IsZero() {
		req.Provider = c.provider
	}
	return req
}

func (c *Client) postChat(ctx context.Context, body chatRequest) (*http.Response, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, true)

	c.logger.Debug("openrouter request", map[string]interface{}{
		"model":    body.Model,
		"messages": len(body.Messages),
		"stream":   body.Stream,
	})
	return c.do(req)
}

func (c *Client) getJSON(ctx context.Context, path string, needsKey bool, out interface{}) error {
	if needsKey && strings.TrimSpace(c.apiKey) == "" {
		return ErrMissingAPIKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req, false)
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("communicate with OpenRouter: %w", err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, newAPIError(resp.StatusCode, body)
	}
	return resp, nil
}

func (c *Client) setHeaders(req *http.Request, jsonBody bool) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("HTTP-Referer", c.siteURL)
	req.Header.Set("X-Title", c.siteName)
	if jsonBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

func decodeChat(r io.Reader) (string, error) {
	var resp chatResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// readStream consumes OpenRouter server-sent events until [DONE] or EOF.
func readStream(r io.Reader, onChunk func(string)) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxSSELine)

	var full strings.Builder
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if chunk.Error != nil {
			msg := chunk.Error.Message
			if msg == "" {
				msg = "unknown error"
			}
			return full.String(), fmt.Errorf("stream error: %s", msg)
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		full.WriteString(content)
		if onChunk != nil {
			onChunk(content)
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("read stream: %w", err)
	}
	return full.String(), nil
}

func valueOrDefault(value string, def string) string {
	if value == "" {
		return def
	}
	return value
}
