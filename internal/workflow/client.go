// Package workflow talks to the external n8n automation: it fires generation
// triggers for new jobs and verifies the shared secret on inbound callbacks.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/darkchannel/backend/internal/models"
)

// ErrNotConfigured indicates no webhook URL is configured for the call.
var ErrNotConfigured = errors.New("workflow trigger not configured")

// Config points the client at the automation webhooks.
type Config struct {
	ScreenplayURL string
	VideoURL      string
	Timeout       time.Duration
}

// Client posts generation requests to the workflow trigger. Outbound
// notifications are best-effort: failures are logged and never retried.
type Client struct {
	screenplayURL string
	videoURL      string
	httpClient    *http.Client
	logger        *slog.Logger
}

// NewClient constructs a workflow client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		screenplayURL: strings.TrimSpace(cfg.ScreenplayURL),
		videoURL:      strings.TrimSpace(cfg.VideoURL),
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger,
	}
}

// ScreenplayTrigger is the payload the automation expects for one job.
type ScreenplayTrigger struct {
	VideoID     string   `json:"videoID"`
	UserEmail   string   `json:"usermail"`
	Summary     string   `json:"summary"`
	Language    string   `json:"Language"`
	Genre       string   `json:"Genre"`
	Description string   `json:"Description"`
	Structure   []string `json:"Structure"`
	Tone        string   `json:"Tone"`
}

// TriggerFromVideo builds the automation payload for a persisted job row.
func TriggerFromVideo(video models.Video) ScreenplayTrigger {
	summary := video.Description
	if summary == "" {
		genre := video.Genre
		if genre == "" {
			genre = "video"
		}
		summary = fmt.Sprintf("Gerar roteiro para %s", genre)
	}

	structure := video.Structure
	if structure == "" {
		structure = video.Screenplay
	}

	return ScreenplayTrigger{
		VideoID:     video.ID,
		UserEmail:   video.UserEmail,
		Summary:     summary,
		Language:    strings.ToUpper(video.Language),
		Genre:       video.Genre,
		Description: video.Description,
		Structure:   SplitCreativeList(structure),
		Tone:        video.Tone,
	}
}

// NotifyScreenplayBatch fires one trigger per row in a detached goroutine.
// The HTTP response for the creation request never waits on these calls and
// delivery failures are only logged.
func (c *Client) NotifyScreenplayBatch(triggers []ScreenplayTrigger) {
	if c.screenplayURL == "" {
		return
	}

	go func() {
		for _, trigger := range triggers {
			ctx, cancel := context.WithTimeout(context.Background(), c.httpClient.Timeout)
			if err := c.post(ctx, c.screenplayURL, trigger, nil); err != nil {
				c.logger.Error("screenplay webhook trigger failed", "videoId", trigger.VideoID, "error", err)
			}
			cancel()
		}
	}()
}

// ScreenplayRequest is the synchronous generation proxy payload.
type ScreenplayRequest struct {
	UserEmail  string `json:"userEmail"`
	JobID      string `json:"jobId"`
	Language   string `json:"language"`
	Genre      string `json:"genre"`
	CharCount  int    `json:"charCount"`
	Images     int    `json:"images"`
	Style      string `json:"style,omitempty"`
	Elements   string `json:"elements,omitempty"`
	Rules      string `json:"rules,omitempty"`
	Techniques string `json:"techniques,omitempty"`
	Lighting   string `json:"lighting,omitempty"`
}

// ScreenplayResponse is the automation's answer to a synchronous request.
type ScreenplayResponse struct {
	Screenplay string         `json:"screenplay"`
	Meta       map[string]any `json:"meta"`
}

// CallScreenplay posts a synchronous generation request and waits for the
// result. The Idempotency-Key header is forwarded as received.
func (c *Client) CallScreenplay(ctx context.Context, req ScreenplayRequest, idempotencyKey string) (ScreenplayResponse, error) {
	if c.screenplayURL == "" {
		return ScreenplayResponse{}, ErrNotConfigured
	}

	headers := http.Header{}
	if idempotencyKey == "" {
		idempotencyKey = req.JobID
	}
	headers.Set("Idempotency-Key", idempotencyKey)

	var resp ScreenplayResponse
	if err := c.postDecode(ctx, c.screenplayURL, req, headers, &resp); err != nil {
		return ScreenplayResponse{}, err
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, url string, payload any, headers http.Header) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) postDecode(ctx context.Context, url string, payload any, headers http.Header, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode webhook response: %w", err)
	}

	return nil
}

var creativeListSeparators = regexp.MustCompile(`\r?\n|\x{2022}|\*`)

// SplitCreativeList turns a free-text structure field into the list the
// automation consumes, splitting on newlines and bullet markers.
func SplitCreativeList(value string) []string {
	parts := creativeListSeparators.Split(value, -1)
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimLeft(part, " \t•*-")
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
