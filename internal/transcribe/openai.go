package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mgpai22/reelsubs/internal/subtitle"
)

// implements FileTranscriber using the OpenAI Audio API
type OpenAITranscriber struct {
	client openai.Client
	model  string
}

// segment from OpenAI Whisper verbose_json response
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// verbose_json response structure from Whisper
type whisperVerboseResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

func NewOpenAITranscriber(apiKey, model string) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// transcribes single audio file
func (t *OpenAITranscriber) TranscribeFile(ctx context.Context, audioPath, language string) (*Result, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}
	if language != "" {
		params.Language = openai.String(whisperLanguage(language))
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	res, err := t.parseVerboseJSONResponse(resp.RawJSON(), 0)
	if err != nil {
		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return nil, ErrEmptyTranscript
		}
		return &Result{
			Segments: []subtitle.Segment{{Start: 0, End: fallbackSegmentSeconds, Text: text}},
			Language: language,
		}, nil
	}
	if res.Language == "" {
		res.Language = language
	}
	return res, nil
}

// whisper takes ISO 639-1, so region subtags are dropped
func whisperLanguage(tag string) string {
	base, _, _ := strings.Cut(tag, "-")
	return strings.ToLower(base)
}

func (t *OpenAITranscriber) parseVerboseJSONResponse(
	rawJSON string,
	fallbackDuration time.Duration,
) (*Result, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var verboseResp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verboseResp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	res := &Result{
		// whisper reports names ("english"); the normaliser re-detects those
		Language: isoLanguage(verboseResp.Language),
		Duration: time.Duration(verboseResp.Duration * float64(time.Second)),
	}

	if len(verboseResp.Segments) == 0 {
		text := strings.TrimSpace(verboseResp.Text)
		if text == "" {
			return nil, fmt.Errorf("no segments or text in response")
		}
		end := fallbackDuration.Seconds()
		if verboseResp.Duration > 0 {
			end = verboseResp.Duration
		}
		if end <= 0 {
			end = fallbackSegmentSeconds
		}
		res.Segments = []subtitle.Segment{{Start: 0, End: end, Text: text}}
		return res, nil
	}

	res.Segments = make([]subtitle.Segment, 0, len(verboseResp.Segments))
	for _, seg := range verboseResp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		res.Segments = append(res.Segments, subtitle.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  text,
		})
	}

	return res, nil
}

// keeps two letter codes, drops language names
func isoLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if len(lang) == 2 {
		return lang
	}
	return ""
}
