package transcribe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"

	"github.com/mgpai22/reelsubs/internal/config"
	"github.com/mgpai22/reelsubs/internal/logging"
	"github.com/mgpai22/reelsubs/internal/subtitle"
)

// returned when a provider answered but produced no usable cue
var ErrEmptyTranscript = errors.New("transcript has no segments")

// what to transcribe
type Request struct {
	MediaRef  string // local path, http(s) URL or s3:// URL
	Namespace string // bucket used when the provider stages media remotely
	Language  string // hint; empty or "auto" lets the provider detect
}

// transcription result
type Result struct {
	Segments []subtitle.Segment
	Language string
	Duration time.Duration
}

// interface for media transcription
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (*Result, error)
}

// transcribes one local audio file; used by the chunked wrapper
type FileTranscriber interface {
	TranscribeFile(ctx context.Context, audioPath, language string) (*Result, error)
}

// collaborators the factory cannot build itself
type Deps struct {
	Lambda     lambdaiface.LambdaAPI
	Store      AudioStore
	HTTPClient *http.Client
	Preparer   MediaPreparer
	Logger     *logging.Logger
}

// creates transcriber based on provider
func Factory(ctx context.Context, cfg config.TranscribeConfig, deps Deps) (Transcriber, error) {
	log := deps.Logger
	if log == nil {
		log = logging.Nop()
	}

	var t Transcriber
	switch cfg.Provider {
	case config.ProviderLambda:
		if deps.Lambda == nil || deps.Store == nil {
			return nil, errors.New("lambda provider needs AWS clients")
		}
		t = NewLambdaTranscriber(deps.Lambda, deps.Store, LambdaOptions{
			FunctionName:    cfg.FunctionName,
			AudioKeyPrefix:  cfg.AudioKeyPrefix,
			UploadLocalFile: cfg.UploadLocalFile,
		})
	case config.ProviderHTTP:
		h, err := NewHTTPTranscriber(HTTPOptions{
			BaseURL: cfg.APIURL,
			APIKey:  cfg.APIKey,
			Client:  deps.HTTPClient,
		})
		if err != nil {
			return nil, err
		}
		t = h
	case config.ProviderOpenAI:
		ft, err := NewOpenAITranscriber(cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		t = chunked(ft, cfg, deps, log)
	case config.ProviderGemini:
		ft, err := NewGeminiTranscriber(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		t = chunked(ft, cfg, deps, log)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	return Normalize(t), nil
}

func chunked(ft FileTranscriber, cfg config.TranscribeConfig, deps Deps, log *logging.Logger) Transcriber {
	return NewChunkedTranscriber(ft, ChunkOptions{
		ChunkDuration: time.Duration(cfg.ChunkSeconds) * time.Second,
		Concurrency:   cfg.Concurrency,
		Preparer:      deps.Preparer,
		HTTPClient:    deps.HTTPClient,
		Logger:        log.Named("chunks"),
	})
}
