package transcribe

import (
	"strings"
	"testing"
	"time"
)

func TestParseVerboseJSONResponse(t *testing.T) {
	transcriber := &OpenAITranscriber{}

	tests := []struct {
		name             string
		rawJSON          string
		fallbackDuration time.Duration
		wantCount        int
		wantErr          bool
	}{
		{
			name: "valid verbose_json with segments",
			rawJSON: `{
				"text": "Hello world. How are you today?",
				"segments": [
					{"start": 0.0, "end": 1.5, "text": "Hello world."},
					{"start": 1.5, "end": 3.0, "text": "How are you today?"}
				],
				"language": "en",
				"duration": 3.0
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        2,
		},
		{
			name: "verbose_json with no segments but has text",
			rawJSON: `{
				"text": "This is a transcription without segments.",
				"segments": [],
				"language": "en",
				"duration": 2.5
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        1,
		},
		{
			name: "verbose_json with null segments",
			rawJSON: `{
				"text": "Transcription text only.",
				"segments": null,
				"language": "en",
				"duration": 1.0
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        1,
		},
		{
			name: "verbose_json with empty text segments filtered out",
			rawJSON: `{
				"text": "Hello world",
				"segments": [
					{"start": 0.0, "end": 0.5, "text": ""},
					{"start": 0.5, "end": 1.5, "text": "Hello world"},
					{"start": 1.5, "end": 2.0, "text": "   "}
				],
				"language": "en",
				"duration": 2.0
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        1,
		},
		{
			name:             "empty response",
			rawJSON:          "",
			fallbackDuration: 5 * time.Second,
			wantErr:          true,
		},
		{
			name:             "invalid JSON",
			rawJSON:          `{"text": "incomplete`,
			fallbackDuration: 5 * time.Second,
			wantErr:          true,
		},
		{
			name: "no segments and no text",
			rawJSON: `{
				"text": "",
				"segments": [],
				"language": "en",
				"duration": 0
			}`,
			fallbackDuration: 5 * time.Second,
			wantErr:          true,
		},
		{
			name: "real whisper response format",
			rawJSON: `{
				"task": "transcribe",
				"language": "english",
				"duration": 8.470000267028809,
				"text": "The stale smell of old beer lingers. It takes heat to bring out the odor.",
				"segments": [
					{
						"id": 0,
						"seek": 0,
						"start": 0.0,
						"end": 3.319999933242798,
						"text": "The stale smell of old beer lingers.",
						"tokens": [50364, 440, 23025, 7966, 295, 1331, 8388, 22949, 404, 13, 50530],
						"temperature": 0.0,
						"avg_logprob": -0.2860786020755768,
						"no_speech_prob": 0.009231
					},
					{
						"id": 1,
						"seek": 0,
						"start": 3.319999933242798,
						"end": 6.190000057220459,
						"text": "It takes heat to bring out the odor.",
						"tokens": [50530, 467, 2516, 3738, 281, 1565, 484, 264, 10602, 13, 50673],
						"temperature": 0.0,
						"avg_logprob": -0.2860786020755768,
						"no_speech_prob": 0.009231
					}
				]
			}`,
			fallbackDuration: 10 * time.Second,
			wantCount:        2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := transcriber.parseVerboseJSONResponse(tt.rawJSON, tt.fallbackDuration)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(res.Segments) != tt.wantCount {
				t.Errorf("got %d segments, want %d", len(res.Segments), tt.wantCount)
			}

			for i, seg := range res.Segments {
				if seg.Text == "" || seg.Text != strings.TrimSpace(seg.Text) {
					t.Errorf("segment %d has untrimmed or empty text %q", i, seg.Text)
				}
			}
		})
	}
}

func TestParseVerboseJSONResponseTimestamps(t *testing.T) {
	transcriber := &OpenAITranscriber{}

	rawJSON := `{
		"text": "Hello world. Goodbye.",
		"segments": [
			{"start": 1.5, "end": 3.0, "text": "Hello world."},
			{"start": 3.0, "end": 5.5, "text": "Goodbye."}
		],
		"language": "en",
		"duration": 5.5
	}`

	res, err := transcriber.parseVerboseJSONResponse(rawJSON, 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(res.Segments))
	}

	first, second := res.Segments[0], res.Segments[1]
	if first.Start != 1.5 || first.End != 3 || first.Text != "Hello world." {
		t.Errorf("segment 0: got %+v", first)
	}
	if second.Start != 3 || second.End != 5.5 || second.Text != "Goodbye." {
		t.Errorf("segment 1: got %+v", second)
	}
	if res.Language != "en" {
		t.Errorf("language: got %q, want en", res.Language)
	}
	if res.Duration != 5500*time.Millisecond {
		t.Errorf("duration: got %v, want 5.5s", res.Duration)
	}
}

func TestParseVerboseJSONLanguageName(t *testing.T) {
	transcriber := &OpenAITranscriber{}

	res, err := transcriber.parseVerboseJSONResponse(
		`{"text": "Hola", "language": "spanish", "segments": [{"start": 0, "end": 1, "text": "Hola"}]}`, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Language != "" {
		t.Errorf("language names should be left for detection, got %q", res.Language)
	}
}

func TestFallbackSingleSegment(t *testing.T) {
	transcriber := &OpenAITranscriber{}

	tests := []struct {
		name     string
		rawJSON  string
		fallback time.Duration
		wantEnd  float64
	}{
		{
			name:     "duration from response",
			rawJSON:  `{"text": "This is a transcription without segments.", "duration": 10.5}`,
			fallback: 15 * time.Second,
			wantEnd:  10.5,
		},
		{
			name:     "fallback duration",
			rawJSON:  `{"text": "This is a transcription without segments."}`,
			fallback: 4 * time.Second,
			wantEnd:  4,
		},
		{
			name:    "default cue length",
			rawJSON: `{"text": "This is a transcription without segments."}`,
			wantEnd: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := transcriber.parseVerboseJSONResponse(tt.rawJSON, tt.fallback)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(res.Segments) != 1 {
				t.Fatalf("expected 1 fallback segment, got %d", len(res.Segments))
			}
			seg := res.Segments[0]
			if seg.Start != 0 {
				t.Errorf("fallback segment start should be 0, got %v", seg.Start)
			}
			if seg.End != tt.wantEnd {
				t.Errorf("fallback segment end: got %v, want %v", seg.End, tt.wantEnd)
			}
			if seg.Text != "This is a transcription without segments." {
				t.Errorf("fallback segment text incorrect: %q", seg.Text)
			}
		})
	}
}

func TestWhisperLanguage(t *testing.T) {
	tests := map[string]string{
		"en":    "en",
		"en-US": "en",
		"pt-BR": "pt",
		"DE":    "de",
	}
	for in, want := range tests {
		if got := whisperLanguage(in); got != want {
			t.Errorf("whisperLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
