package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"

	"github.com/mgpai22/reelsubs/internal/audio"
	"github.com/mgpai22/reelsubs/internal/subtitle"
)

// bucket access needed to stage local media; storage.S3 satisfies it
type AudioStore interface {
	Exists(ctx context.Context, bucket, key string) (bool, error)
	Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
}

type LambdaOptions struct {
	FunctionName    string
	AudioKeyPrefix  string // where local media is staged, e.g. "audio/"
	UploadLocalFile bool   // false assumes local media is already staged
}

// invokes the whisper subtitle function synchronously
type LambdaTranscriber struct {
	client lambdaiface.LambdaAPI
	store  AudioStore
	opts   LambdaOptions
}

type lambdaPayload struct {
	BucketName string `json:"bucketName"`
	AudioKey   string `json:"audioKey,omitempty"`
	AudioURL   string `json:"audioUrl,omitempty"`
	Language   string `json:"language,omitempty"`
}

type lambdaEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
}

type lambdaBody struct {
	VTTKey    string             `json:"vttKey"`
	Subtitles string             `json:"subtitles"`
	Segments  []subtitle.Segment `json:"segments"`
	Language  string             `json:"language"`
	Duration  float64            `json:"duration"`
	Error     string             `json:"error"`
}

func NewLambdaTranscriber(client lambdaiface.LambdaAPI, store AudioStore, opts LambdaOptions) *LambdaTranscriber {
	if opts.FunctionName == "" {
		opts.FunctionName = "whisper-subtitle-generator"
	}
	if opts.AudioKeyPrefix == "" {
		opts.AudioKeyPrefix = "audio/"
	}
	return &LambdaTranscriber{client: client, store: store, opts: opts}
}

func (t *LambdaTranscriber) Transcribe(ctx context.Context, req Request) (*Result, error) {
	payload, err := t.stage(ctx, req)
	if err != nil {
		return nil, err
	}
	if lang := strings.TrimSpace(req.Language); lang != "" && !strings.EqualFold(lang, "auto") {
		payload.Language = lang
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lambda payload: %w", err)
	}

	out, err := t.client.InvokeWithContext(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(t.opts.FunctionName),
		InvocationType: aws.String(lambda.InvocationTypeRequestResponse),
		Payload:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", t.opts.FunctionName, err)
	}
	if out.FunctionError != nil {
		return nil, fmt.Errorf("%s failed (%s): %s",
			t.opts.FunctionName, aws.StringValue(out.FunctionError), truncateString(string(out.Payload), 200))
	}

	return parseLambdaResponse(out.Payload)
}

// works out which object the function reads, uploading local media first
func (t *LambdaTranscriber) stage(ctx context.Context, req Request) (lambdaPayload, error) {
	ref := strings.TrimSpace(req.MediaRef)
	if ref == "" {
		return lambdaPayload{}, errors.New("media reference is required")
	}

	if u, err := url.Parse(ref); err == nil {
		switch u.Scheme {
		case "s3":
			key := strings.TrimPrefix(u.Path, "/")
			if u.Host == "" || key == "" {
				return lambdaPayload{}, fmt.Errorf("invalid s3 reference %q", ref)
			}
			return lambdaPayload{BucketName: u.Host, AudioKey: key}, nil
		case "http", "https":
			if req.Namespace == "" {
				return lambdaPayload{}, errors.New("bucket is required")
			}
			return lambdaPayload{BucketName: req.Namespace, AudioURL: ref}, nil
		}
	}

	if req.Namespace == "" {
		return lambdaPayload{}, errors.New("bucket is required")
	}
	key := t.opts.AudioKeyPrefix + filepath.Base(ref)
	payload := lambdaPayload{BucketName: req.Namespace, AudioKey: key}
	if !t.opts.UploadLocalFile {
		return payload, nil
	}

	exists, err := t.store.Exists(ctx, req.Namespace, key)
	if err != nil {
		return lambdaPayload{}, err
	}
	if exists {
		return payload, nil
	}

	f, err := os.Open(ref)
	if err != nil {
		return lambdaPayload{}, fmt.Errorf("failed to open media file: %w", err)
	}
	defer f.Close()

	if err := t.store.Upload(ctx, req.Namespace, key, f, audio.ContentType(ref)); err != nil {
		return lambdaPayload{}, err
	}
	return payload, nil
}

// Accepts {statusCode, body} where body is an object or a JSON encoded
// string, or the body object on its own.
func parseLambdaResponse(raw []byte) (*Result, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty lambda response")
	}

	var env lambdaEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to parse lambda response: %w", err)
	}

	bodyJSON := []byte(env.Body)
	if len(bytes.TrimSpace(bodyJSON)) == 0 || string(bodyJSON) == "null" {
		bodyJSON = raw
	} else if bodyJSON[0] == '"' {
		var s string
		if err := json.Unmarshal(bodyJSON, &s); err != nil {
			return nil, fmt.Errorf("failed to parse lambda body: %w", err)
		}
		bodyJSON = []byte(s)
	}

	var body lambdaBody
	if err := json.Unmarshal(bodyJSON, &body); err != nil {
		return nil, fmt.Errorf("failed to parse lambda body: %w", err)
	}

	if body.Error != "" {
		return nil, fmt.Errorf("lambda error (status %d): %s", env.StatusCode, body.Error)
	}
	if env.StatusCode >= 400 {
		return nil, fmt.Errorf("lambda returned status %d", env.StatusCode)
	}

	segments := body.Segments
	if len(segments) == 0 && body.Subtitles != "" {
		parsed, err := subtitle.ParseCaptions(body.Subtitles, subtitle.FormatVTT)
		if err != nil {
			return nil, fmt.Errorf("failed to parse lambda subtitles: %w", err)
		}
		segments = parsed
	}
	if len(segments) == 0 {
		return nil, ErrEmptyTranscript
	}

	return &Result{
		Segments: segments,
		Language: body.Language,
		Duration: time.Duration(body.Duration * float64(time.Second)),
	}, nil
}
