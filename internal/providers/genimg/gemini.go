package genimg

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how the Gemini-backed client is configured.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	HTTPClient  *http.Client
	Logger      zerolog.Logger
	MaxAttempts int
	BackoffBase time.Duration
}

// Client talks to the Gemini generateContent endpoint for all three
// collaborator roles: background compositing, model shots and prompt
// suggestions. Transient upstream failures are retried with exponential
// backoff a bounded number of times; everything that survives retries is
// classified into a GenerationError the session layer can surface verbatim.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	logger      zerolog.Logger
	maxAttempts int
	backoffBase time.Duration
}

// NewClient constructs a client with sane defaults. A nil HTTP client gets a
// reusable one with a generous timeout.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-image"
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := opts.BackoffBase
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     baseURL,
		model:       model,
		httpClient:  httpClient,
		logger:      opts.Logger,
		maxAttempts: attempts,
		backoffBase: backoff,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Status  string `json:"status,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// GenerateBackground composites the product onto the requested background.
func (c *Client) GenerateBackground(ctx context.Context, req BackgroundRequest) (string, error) {
	parts, err := imageParts(req.Product, nil)
	if err != nil {
		return "", err
	}
	parts = append(parts, geminiPart{Text: buildBackgroundPrompt(req)})
	return c.generateImage(ctx, parts)
}

// GenerateModelShot renders the product worn or presented by a model.
func (c *Client) GenerateModelShot(ctx context.Context, req ModelShotRequest) (string, error) {
	parts, err := imageParts(req.Product, req.Model)
	if err != nil {
		return "", err
	}
	parts = append(parts, geminiPart{Text: buildModelShotPrompt(req)})
	return c.generateImage(ctx, parts)
}

// SuggestPrompt asks the model for a single prompt idea.
func (c *Client) SuggestPrompt(ctx context.Context, req SuggestRequest) (string, error) {
	parts, err := imageParts(req.Product, req.Model)
	if err != nil {
		return "", err
	}
	parts = append(parts, geminiPart{Text: buildSuggestPrompt(req)})

	resp, err := c.invoke(ctx, geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
	})
	if err != nil {
		return "", err
	}
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if text := strings.TrimSpace(part.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", &GenerationError{Reason: ReasonMalformed, Message: "the model returned no suggestion"}
}

func (c *Client) generateImage(ctx context.Context, parts []geminiPart) (string, error) {
	resp, err := c.invoke(ctx, geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{ResponseModalities: []string{"IMAGE"}},
	})
	if err != nil {
		return "", err
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", blockError(resp.PromptFeedback.BlockReason)
	}
	var textFallback string
	for _, candidate := range resp.Candidates {
		if reason := strings.ToUpper(candidate.FinishReason); reason == "SAFETY" || reason == "PROHIBITED_CONTENT" {
			return "", blockError(reason)
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				mime := part.InlineData.MimeType
				if mime == "" {
					mime = "image/png"
				}
				return fmt.Sprintf("data:%s;base64,%s", mime, part.InlineData.Data), nil
			}
			if part.Text != "" {
				textFallback = part.Text
			}
		}
	}
	if textFallback != "" {
		// A textual answer to an image request usually explains a refusal.
		return "", &GenerationError{Reason: ReasonMalformed, Message: strings.TrimSpace(textFallback)}
	}
	return "", &GenerationError{Reason: ReasonMalformed, Message: "the model returned no image"}
}

// invoke posts the payload, retrying transient upstream failures with
// exponential backoff until the attempt budget runs out.
func (c *Client) invoke(ctx context.Context, payload geminiRequest) (*geminiResponse, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.backoffBase << (attempt - 1)
			c.logger.Debug().Dur("delay", delay).Int("attempt", attempt+1).
				Msg("genimg: retrying gemini call")
			select {
			case <-ctx.Done():
				return nil, &GenerationError{Reason: ReasonTransient, Message: "generation timed out"}
			case <-time.After(delay):
			}
		}
		resp, err := c.doRequest(ctx, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if genErr, ok := AsGenerationError(err); !ok || genErr.Reason != ReasonTransient {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, payload geminiRequest) (*geminiResponse, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GenerationError{Reason: ReasonTransient, Message: "the image service could not be reached"}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.classifyHTTPError(resp)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &GenerationError{Reason: ReasonMalformed, Message: "the image service returned an unreadable response"}
	}
	return &out, nil
}

func (c *Client) classifyHTTPError(resp *http.Response) error {
	var apiErr geminiErrorResponse
	message := ""
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&apiErr); err == nil {
		message = strings.TrimSpace(apiErr.Error.Message)
	}
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "location") || strings.Contains(lower, "region"):
		return &GenerationError{Reason: ReasonRegion, Message: "generation is not available in your region"}
	case strings.Contains(lower, "safety"):
		return &GenerationError{Reason: ReasonSafety, Message: "blocked by safety policy"}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		if message == "" {
			message = fmt.Sprintf("the image service failed (status %d)", resp.StatusCode)
		}
		return &GenerationError{Reason: ReasonTransient, Message: message}
	default:
		if message == "" {
			message = fmt.Sprintf("the image service rejected the request (status %d)", resp.StatusCode)
		}
		return &GenerationError{Reason: ReasonPolicy, Message: message}
	}
}

func blockError(reason string) error {
	switch strings.ToUpper(reason) {
	case "SAFETY":
		return &GenerationError{Reason: ReasonSafety, Message: "blocked by safety policy"}
	default:
		return &GenerationError{Reason: ReasonPolicy, Message: "blocked by content policy"}
	}
}

// imageParts converts the prepared sources into inline request parts.
func imageParts(product PreparedImage, model *PreparedImage) ([]geminiPart, error) {
	parts := make([]geminiPart, 0, 2)
	part, err := inlinePart(product.DataURL)
	if err != nil {
		return nil, err
	}
	parts = append(parts, part)
	if model != nil {
		part, err := inlinePart(model.DataURL)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func inlinePart(dataURL string) (geminiPart, error) {
	mime, data, err := splitDataURL(dataURL)
	if err != nil {
		return geminiPart{}, err
	}
	return geminiPart{InlineData: &geminiInlineData{MimeType: mime, Data: data}}, nil
}

// splitDataURL extracts the mime type and base64 payload from a data URL.
func splitDataURL(dataURL string) (string, string, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", "", fmt.Errorf("not a data url")
	}
	rest := strings.TrimPrefix(dataURL, "data:")
	comma := strings.Index(rest, ",")
	if comma < 0 {
		return "", "", fmt.Errorf("malformed data url")
	}
	meta, payload := rest[:comma], rest[comma+1:]
	mime := strings.TrimSuffix(meta, ";base64")
	if mime == meta {
		// Plain-text data URLs never carry image bytes.
		return "", "", fmt.Errorf("data url is not base64 encoded")
	}
	if mime == "" {
		mime = "image/png"
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return "", "", fmt.Errorf("decode data url: %w", err)
	}
	return mime, payload, nil
}

var (
	_ BackgroundGenerator = (*Client)(nil)
	_ ModelShotGenerator  = (*Client)(nil)
	_ PromptSuggester     = (*Client)(nil)
)
