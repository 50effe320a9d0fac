package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/reelsubs/internal/subtitle"
)

const (
	defaultHTTPTimeout = 5 * time.Minute

	// cue length used when the service answers with text only
	fallbackSegmentSeconds = 10.0
)

type HTTPOptions struct {
	BaseURL string
	APIKey  string // sent as a bearer token when set
	Client  *http.Client
}

// client for a transcript API exposing POST /transcribe
type HTTPTranscriber struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

type transcriptResponse struct {
	Text     string             `json:"text"`
	Segments []subtitle.Segment `json:"segments"`
	Language string             `json:"language"`
}

func NewHTTPTranscriber(opts HTTPOptions) (*HTTPTranscriber, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("transcript api url is required")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse transcript api url: %w", err)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPTranscriber{
		endpoint: baseURL.JoinPath("transcribe").String(),
		apiKey:   strings.TrimSpace(opts.APIKey),
		http:     client,
	}, nil
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, req Request) (*Result, error) {
	ref := strings.TrimSpace(req.MediaRef)
	if ref == "" {
		return nil, errors.New("media reference is required")
	}

	var (
		httpReq *http.Request
		err     error
	)
	if isRemoteRef(ref) {
		httpReq, err = t.urlRequest(ctx, ref)
	} else {
		httpReq, err = t.fileRequest(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if t.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transcript request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("transcription failed (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode transcript response: %w", err)
	}

	segments := payload.Segments
	if len(segments) == 0 {
		text := strings.TrimSpace(payload.Text)
		if text == "" {
			return nil, ErrEmptyTranscript
		}
		segments = []subtitle.Segment{{Start: 0, End: fallbackSegmentSeconds, Text: text}}
	}

	return &Result{Segments: segments, Language: payload.Language}, nil
}

func (t *HTTPTranscriber) urlRequest(ctx context.Context, mediaURL string) (*http.Request, error) {
	body, err := json.Marshal(map[string]string{"url": mediaURL})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build transcript request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// multipart upload of a local file under the "file" field
func (t *HTTPTranscriber) fileRequest(ctx context.Context, path string) (*http.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open media file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read media file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("build transcript request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

func isRemoteRef(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "s3":
		return u.Host != ""
	}
	return false
}
