package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/milkledger/internal/config"
)

// MaxTextLength is the longest text body, in characters, the Cloud API
// accepts in one message.
const MaxTextLength = 4096

// Client exposes WhatsApp Cloud API operations used by the application.
type Client interface {
	SendTextMessage(ctx context.Context, req SendTextMessageRequest) (*SendTextMessageResponse, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient    *resty.Client
	phoneNumberID string
}

// NewClient builds a WhatsApp API client using the provided configuration values.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.AccessToken)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient:    restyClient,
		phoneNumberID: cfg.PhoneNumberID,
	}
}

// SendTextMessageRequest represents a simplified text message payload.
type SendTextMessageRequest struct {
	To         string
	Body       string
	PreviewURL bool
}

// SendTextMessageResponse mirrors the successful response from Meta.
type SendTextMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// APIError is a WhatsApp Cloud API error payload.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	TraceID string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error: status=%d, code=%d, message=%s", e.Status, e.Code, e.Message)
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

// SendTextMessage delivers req.Body, split into several messages on line
// boundaries when it exceeds MaxTextLength. The returned response collects
// the ids of every message sent.
func (c *APIClient) SendTextMessage(ctx context.Context, req SendTextMessageRequest) (*SendTextMessageResponse, error) {
	combined := new(SendTextMessageResponse)
	for _, part := range SplitText(req.Body, MaxTextLength) {
		resp, err := c.sendOne(ctx, req.To, part, req.PreviewURL)
		if err != nil {
			return combined, err
		}
		combined.Messages = append(combined.Messages, resp.Messages...)
	}
	return combined, nil
}

func (c *APIClient) sendOne(ctx context.Context, to, body string, previewURL bool) (*SendTextMessageResponse, error) {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text": map[string]any{
			"body":        body,
			"preview_url": previewURL,
		},
	}

	result := new(SendTextMessageResponse)
	envelope := new(errorEnvelope)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(envelope).
		Post(fmt.Sprintf("%s/messages", c.phoneNumberID))
	if err != nil {
		return nil, fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		apiErr := envelope.Error
		apiErr.Status = resp.StatusCode()
		return nil, &apiErr
	}

	return result, nil
}

// SplitText breaks body into chunks of at most limit characters, cutting
// after a newline when one is available. Chunks never split a UTF-8 sequence.
func SplitText(body string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(body) <= limit {
		return []string{body}
	}

	var parts []string
	for utf8.RuneCountInString(body) > limit {
		end := runeOffset(body, limit)
		cut := strings.LastIndex(body[:end], "\n") + 1
		if cut <= 0 {
			cut = end
		}
		parts = append(parts, body[:cut])
		body = body[cut:]
	}
	if body != "" {
		parts = append(parts, body)
	}
	return parts
}

// runeOffset returns the byte offset of the n-th rune of s, or len(s).
func runeOffset(s string, n int) int {
	i := 0
	for offset := range s {
		if i == n {
			return offset
		}
		i++
	}
	return len(s)
}
