// Package api implements the HTTP client for the SpeakClear analysis
// service: question and reading-prompt retrieval, multipart sample upload,
// and the result-bound chat endpoint.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/speakclear-dev/speakclear/internal/locale"
	"github.com/speakclear-dev/speakclear/internal/report"
)

// Client talks to the analysis backend. All methods take a context; there is
// no retry policy here, callers decide whether a failed call is retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client (used by tests and
// for custom timeouts).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client for the given base URL, e.g.
// "http://localhost:5000".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchQuestions retrieves the full question set. The server returns a
// mapping of question id to definition wrapped in a data envelope.
func (c *Client) FetchQuestions(ctx context.Context) (map[string]QuestionDef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/questions", nil)
	if err != nil {
		return nil, &ContentUnavailableError{Resource: "questions", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ContentUnavailableError{Resource: "questions", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ContentUnavailableError{
			Resource: "questions",
			Err:      fmt.Errorf("server returned %d", resp.StatusCode),
		}
	}

	var envelope struct {
		Data map[string]QuestionDef `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &ContentUnavailableError{Resource: "questions", Err: fmt.Errorf("decode response: %w", err)}
	}

	return envelope.Data, nil
}

// FetchPrompt retrieves one reading prompt for the given language.
func (c *Client) FetchPrompt(ctx context.Context, lang locale.Lang) (ReadingPrompt, error) {
	u := fmt.Sprintf("%s/request_text?lang=%s", c.baseURL, url.QueryEscape(string(lang)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ReadingPrompt{}, &ContentUnavailableError{Resource: "prompt", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ReadingPrompt{}, &ContentUnavailableError{Resource: "prompt", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ReadingPrompt{}, &ContentUnavailableError{
			Resource: "prompt",
			Err:      fmt.Errorf("server returned %d", resp.StatusCode),
		}
	}

	var envelope struct {
		Data ReadingPrompt `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return ReadingPrompt{}, &ContentUnavailableError{Resource: "prompt", Err: fmt.Errorf("decode response: %w", err)}
	}

	return envelope.Data, nil
}

// Upload sends one recorded WAV artifact plus the structured payload as a
// single multipart request and returns the analysis result. A non-success
// status yields a SubmissionFailedError carrying the server's diagnostic
// text; collected data is never consumed by a failed upload.
func (c *Client) Upload(ctx context.Context, lang locale.Lang, audio []byte, payload UploadPayload) (*report.Result, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("audio_file", "recording.wav")
	if err != nil {
		return nil, &SubmissionFailedError{Err: fmt.Errorf("create form file: %w", err)}
	}
	if _, err := part.Write(audio); err != nil {
		return nil, &SubmissionFailedError{Err: fmt.Errorf("write audio data: %w", err)}
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, &SubmissionFailedError{Err: fmt.Errorf("marshal payload: %w", err)}
	}
	if err := writer.WriteField("data", string(payloadJSON)); err != nil {
		return nil, &SubmissionFailedError{Err: fmt.Errorf("write data field: %w", err)}
	}

	if err := writer.Close(); err != nil {
		return nil, &SubmissionFailedError{Err: fmt.Errorf("close writer: %w", err)}
	}

	u := fmt.Sprintf("%s/upload?lang=%s", c.baseURL, url.QueryEscape(string(lang)))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return nil, &SubmissionFailedError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SubmissionFailedError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SubmissionFailedError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &SubmissionFailedError{
			Status:     resp.StatusCode,
			Diagnostic: string(respBody),
		}
	}

	var envelope struct {
		Data report.Result `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, &SubmissionFailedError{Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	if envelope.Data.ID == "" {
		return nil, &SubmissionFailedError{Err: fmt.Errorf("response missing result id")}
	}

	return &envelope.Data, nil
}

// Chat sends one user message for the given result identifier and returns
// the assistant's reply.
func (c *Client) Chat(ctx context.Context, resultID, message string) (ChatReply, error) {
	reqBody, err := json.Marshal(map[string]string{
		"uuid":    resultID,
		"message": message,
	})
	if err != nil {
		return ChatReply{}, &ChatTransportError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chatbot", bytes.NewReader(reqBody))
	if err != nil {
		return ChatReply{}, &ChatTransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ChatReply{}, &ChatTransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ChatReply{}, &ChatTransportError{Err: fmt.Errorf("server returned %d", resp.StatusCode)}
	}

	var envelope struct {
		Data ChatReply `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return ChatReply{}, &ChatTransportError{Err: fmt.Errorf("decode response: %w", err)}
	}

	return envelope.Data, nil
}
