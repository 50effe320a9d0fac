package transcribe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTranscriberUploadsFile(t *testing.T) {
	var gotAuth, gotName string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/transcribe", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotName = header.Filename
		gotBody, _ = io.ReadAll(file)

		_, _ = w.Write([]byte(`{"text":"one two","segments":[{"start":0,"end":1,"text":"one"},{"start":1,"end":2,"text":"two"}]}`))
	}))
	defer srv.Close()

	tr, err := NewHTTPTranscriber(HTTPOptions{BaseURL: srv.URL + "/v1/", APIKey: "secret"})
	require.NoError(t, err)

	media := writeMedia(t, "voice.wav", "RIFF")
	res, err := tr.Transcribe(context.Background(), Request{MediaRef: media})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "voice.wav", gotName)
	assert.Equal(t, []byte("RIFF"), gotBody)
	require.Len(t, res.Segments, 2)
	assert.Equal(t, "two", res.Segments[1].Text)
}

func TestHTTPTranscriberSendsURL(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"text":"only text","language":"en"}`))
	}))
	defer srv.Close()

	tr, err := NewHTTPTranscriber(HTTPOptions{BaseURL: srv.URL})
	require.NoError(t, err)

	res, err := tr.Transcribe(context.Background(), Request{MediaRef: "https://cdn.example.com/reel.mp4"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"url": "https://cdn.example.com/reel.mp4"}, got)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, 0.0, res.Segments[0].Start)
	assert.Equal(t, 10.0, res.Segments[0].End)
	assert.Equal(t, "only text", res.Segments[0].Text)
	assert.Equal(t, "en", res.Language)
}

func TestHTTPTranscriberErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "model not loaded"},
		{name: "bad json", status: http.StatusOK, body: "<html>"},
		{name: "empty text", status: http.StatusOK, body: `{"text":"  "}`, wantErr: ErrEmptyTranscript},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			tr, err := NewHTTPTranscriber(HTTPOptions{BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = tr.Transcribe(context.Background(), Request{MediaRef: "https://cdn.example.com/a.mp4"})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestHTTPTranscriberValidation(t *testing.T) {
	_, err := NewHTTPTranscriber(HTTPOptions{})
	assert.Error(t, err)

	tr, err := NewHTTPTranscriber(HTTPOptions{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), Request{})
	assert.Error(t, err)

	_, err = tr.Transcribe(context.Background(), Request{MediaRef: "/does/not/exist.mp3"})
	assert.Error(t, err)
}

func TestIsRemoteRef(t *testing.T) {
	tests := map[string]bool{
		"https://cdn.example.com/a.mp4": true,
		"http://host/a.mp3":             true,
		"s3://bucket/audio/a.mp3":       true,
		"public/videos/a.mp4":           false,
		"/abs/a.mp4":                    false,
		"C:\\media\\a.mp4":              false,
		"https:///nohost":               false,
	}
	for ref, want := range tests {
		assert.Equal(t, want, isRemoteRef(ref), ref)
	}
}
