// Package gemini is a small client for the generateContent endpoint of the
// Gemini API, shared by the candidate proposer and the label reader.
package gemini

import (
	"Pantry-Planner/internal/utils"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const (
	DefaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel       = "gemini-1.5-flash"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 3
)

var (
	ErrNotConfigured = errors.New("gemini api key is not configured")
	ErrEmptyResponse = errors.New("gemini returned no content")

	jsonPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

type (
	Config struct {
		APIKey      string
		Model       string
		BaseURL     string
		Timeout     time.Duration
		MaxAttempts int
		// Backoff is the wait before the second attempt; it doubles each retry.
		Backoff time.Duration
	}

	Part struct {
		Text       string      `json:"text,omitempty"`
		InlineData *InlineData `json:"inline_data,omitempty"`
	}

	InlineData struct {
		MimeType string `json:"mime_type"`
		Data     string `json:"data"`
	}

	Client struct {
		config     Config
		httpClient *http.Client
	}

	generationConfig struct {
		Temperature      float64 `json:"temperature"`
		TopP             float64 `json:"topP"`
		TopK             int     `json:"topK"`
		ResponseMimeType string  `json:"responseMimeType,omitempty"`
	}

	content struct {
		Parts []Part `json:"parts"`
	}

	generateRequest struct {
		Contents         []content        `json:"contents"`
		GenerationConfig generationConfig `json:"generationConfig"`
	}

	generateResponse struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	statusError struct {
		code int
		body string
	}
)

func (e *statusError) Error() string {
	return fmt.Sprintf("gemini API error: %d - %s", e.code, e.body)
}

// LoadConfig reads the GEMINI_* and PROPOSER_* keys.
func LoadConfig() Config {
	return Config{
		APIKey:      utils.GetConfig("GEMINI_API_KEY"),
		Model:       utils.GetConfig("GEMINI_MODEL"),
		BaseURL:     utils.GetConfig("GEMINI_BASE_URL"),
		Timeout:     time.Duration(utils.GetConfigInt("PROPOSER_TIMEOUT_SECONDS", int(DefaultTimeout/time.Second))) * time.Second,
		MaxAttempts: utils.GetConfigInt("PROPOSER_MAX_ATTEMPTS", DefaultMaxAttempts),
		Backoff:     500 * time.Millisecond,
	}
}

func NewClient(config Config) *Client {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{},
	}
}

func TextPart(text string) Part {
	return Part{Text: text}
}

func ImagePart(mimeType string, data []byte) Part {
	return Part{InlineData: &InlineData{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}
}

// GenerateContent sends one prompt and returns the text of the first
// candidate. Each attempt gets its own timeout; network errors, 429 and 5xx
// responses are retried up to MaxAttempts in total.
func (c *Client) GenerateContent(ctx context.Context, temperature float64, parts ...Part) (string, error) {
	if c.config.APIKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:      temperature,
			TopP:             0.8,
			TopK:             40,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return "", err
	}

	backoff := c.config.Backoff
	var lastErr error
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		text, err := c.do(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable(err) || attempt == c.config.MaxAttempts {
			break
		}

		log.Warnw("gemini request failed, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return "", lastErr
}

func (c *Client) do(ctx context.Context, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", strings.TrimRight(c.config.BaseURL, "/"), c.config.Model, c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &statusError{code: resp.StatusCode, body: string(bodyBytes)}
	}

	var geminiResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", err
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	if errors.Is(err, ErrEmptyResponse) || errors.Is(err, context.Canceled) {
		return false
	}
	// Transport errors and per-attempt timeouts.
	return true
}

// ExtractJSON strips markdown fences and surrounding prose from a model
// answer and returns the outermost JSON object.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)
	if match := jsonPattern.FindString(text); match != "" {
		text = match
	}
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
