package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dgallion1/docvoice/internal/chunker"
)

// DefaultEndpoint is the Google Translate speech endpoint.
const DefaultEndpoint = "https://translate.google.com/translate_tts"

// ttsspeed values understood by the endpoint.
const (
	speedNormal = "1"
	speedSlow   = "0.24"
)

// GoogleClient synthesizes speech through the Google Translate TTS
// endpoint. The endpoint caps each request at roughly 100 characters,
// so longer text is split into ordered chunks whose MP3 responses are
// concatenated. MP3 frames are self-delimiting, so concatenation
// yields a playable stream.
type GoogleClient struct {
	endpoint   string
	language   string
	slow       bool
	chunkLimit int
	httpClient *http.Client
}

// Option configures a GoogleClient.
type Option func(*GoogleClient)

// WithEndpoint overrides the synthesis endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(c *GoogleClient) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithSlow selects the reduced speaking rate.
func WithSlow(slow bool) Option {
	return func(c *GoogleClient) { c.slow = slow }
}

// WithChunkLimit overrides the per-request character budget.
func WithChunkLimit(limit int) Option {
	return func(c *GoogleClient) {
		if limit > 0 {
			c.chunkLimit = limit
		}
	}
}

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *GoogleClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewGoogleClient creates a synthesizer for the given language code
// (e.g. "en").
func NewGoogleClient(language string, opts ...Option) *GoogleClient {
	if language == "" {
		language = "en"
	}
	c := &GoogleClient{
		endpoint:   DefaultEndpoint,
		language:   language,
		chunkLimit: chunker.DefaultLimit,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Language returns the configured language code.
func (c *GoogleClient) Language() string {
	return c.language
}

// Synthesize converts text to MP3 bytes. Returns an error if the text
// is empty after chunking.
func (c *GoogleClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	parts := chunker.Split(text, c.chunkLimit)
	if len(parts) == 0 {
		return nil, fmt.Errorf("no text to synthesize")
	}

	var audio bytes.Buffer
	for i, part := range parts {
		data, err := c.synthesizeChunk(ctx, part, i, len(parts))
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(parts), err)
		}
		audio.Write(data)
	}

	return audio.Bytes(), nil
}

// SynthesizeChunk fetches audio for a single pre-split piece of text.
// Used by callers that manage chunk ordering themselves.
func (c *GoogleClient) SynthesizeChunk(ctx context.Context, text string, idx, total int) ([]byte, error) {
	return c.synthesizeChunk(ctx, text, idx, total)
}

func (c *GoogleClient) synthesizeChunk(ctx context.Context, text string, idx, total int) ([]byte, error) {
	speed := speedNormal
	if c.slow {
		speed = speedSlow
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("q", text)
	q.Set("tl", c.language)
	q.Set("ttsspeed", speed)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(len(text)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("tts status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio response")
	}

	return data, nil
}

// Close releases resources.
func (c *GoogleClient) Close() {
	c.httpClient.CloseIdleConnections()
}
