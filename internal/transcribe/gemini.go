package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/mgpai22/reelsubs/internal/subtitle"
)

// implements FileTranscriber using Google Gemini
type GeminiTranscriber struct {
	client *genai.Client
	model  string
}

// segment from Gemini's JSON response
type transcriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// wrapper keys models tend to use, tried before any other key
var wrapperKeys = []string{"segments", "transcript", "data"}

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

func NewGeminiTranscriber(ctx context.Context, apiKey, model string) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranscriber{
		client: client,
		model:  model,
	}, nil
}

// transcribes single audio file
func (t *GeminiTranscriber) TranscribeFile(ctx context.Context, audioPath, language string) (*Result, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("audio file not found: %w", err)
	}

	uploadedFile, err := t.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio file: %w", err)
	}
	defer func() {
		_, _ = t.client.Files.Delete(context.WithoutCancel(ctx), uploadedFile.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(buildTranscriptionPrompt(language)),
		genai.NewPartFromURI(uploadedFile.URI, uploadedFile.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	segments, err := parseTranscriptionResponse(result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}

	return &Result{Segments: segments, Language: language}, nil
}

// creates the prompt for transcription
func buildTranscriptionPrompt(language string) string {
	var sb strings.Builder

	sb.WriteString("Generate a transcript of this audio for short vertical video captions. ")
	sb.WriteString("Split it into short phrases of at most a few seconds each. ")
	sb.WriteString("For each phrase, provide the start timestamp, end timestamp, and the exact text spoken. ")
	sb.WriteString("Format your response as a JSON array with objects containing 'start', 'end', and 'text' fields, ")
	sb.WriteString("where 'start' and 'end' are timestamps in seconds (as numbers). ")

	if language != "" {
		fmt.Fprintf(&sb, "The audio is in %s. ", language)
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")
	return sb.String()
}

// parses Gemini's response into segments
func parseTranscriptionResponse(result *genai.GenerateContentResponse) ([]subtitle.Segment, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var sb strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	found, err := extractTranscriptSegments(cleanJSONResponse(sb.String()))
	if err != nil {
		return nil, err
	}

	segments := make([]subtitle.Segment, len(found))
	for i, ts := range found {
		segments[i] = subtitle.Segment{
			Start: ts.Start,
			End:   ts.End,
			Text:  strings.TrimSpace(ts.Text),
		}
	}
	return segments, nil
}

// extractTranscriptSegments finds the first JSON array of segment objects in
// free-form model output. The array may be surrounded by prose or sit inside
// a (possibly nested) wrapper object.
func extractTranscriptSegments(text string) ([]transcriptSegment, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}

		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var value any
		if err := dec.Decode(&value); err != nil {
			continue
		}
		if segments, ok := findSegments(value); ok {
			return segments, nil
		}
		// skip past the value so its inner brackets are not retried
		i += int(dec.InputOffset()) - 1
	}
	return nil, fmt.Errorf("no transcript segments found in response: %s", truncateString(text, 200))
}

func findSegments(value any) ([]transcriptSegment, bool) {
	switch v := value.(type) {
	case []any:
		segments, ok := toSegments(v)
		if ok && validateSegments(segments) {
			return segments, true
		}
	case map[string]any:
		for _, key := range wrapperKeys {
			if inner, ok := v[key]; ok {
				if segments, ok := findSegments(inner); ok {
					return segments, true
				}
			}
		}
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if segments, ok := findSegments(v[key]); ok {
				return segments, true
			}
		}
	}
	return nil, false
}

// converts an array whose elements are all objects
func toSegments(items []any) ([]transcriptSegment, bool) {
	if len(items) == 0 {
		return nil, false
	}
	segments := make([]transcriptSegment, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		var seg transcriptSegment
		seg.Start, _ = obj["start"].(float64)
		seg.End, _ = obj["end"].(float64)
		seg.Text, _ = obj["text"].(string)
		segments = append(segments, seg)
	}
	return segments, true
}

// reports whether any segment carries a timestamp or text
func validateSegments(segments []transcriptSegment) bool {
	for _, seg := range segments {
		if seg.Start != 0 || seg.End != 0 || seg.Text != "" {
			return true
		}
	}
	return false
}

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
