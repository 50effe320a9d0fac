package subtitle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// element of a JSON artifact; pointers tell a missing time from zero
type jsonSegment struct {
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Text  string   `json:"text"`
}

// wrapper shape produced by whisper style responses
type jsonEnvelope struct {
	Segments []jsonSegment `json:"segments"`
}

// decodes a JSON array of {start, end, text}; a {"segments": [...]} wrapper is
// also accepted. Invalid elements are skipped, malformed JSON is an error.
func decodeJSON(content []byte) (*Track, error) {
	track := &Track{Format: FormatJSON, Segments: []Segment{}}

	content = bytes.TrimSpace(content)
	if len(content) == 0 {
		return nil, errors.New("empty JSON document")
	}

	var raw []jsonSegment
	if content[0] == '{' {
		var env jsonEnvelope
		if err := json.Unmarshal(content, &env); err != nil {
			return nil, fmt.Errorf("failed to parse JSON subtitles: %w", err)
		}
		raw = env.Segments
	} else if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON subtitles: %w", err)
	}

	for i, item := range raw {
		if item.Start == nil || item.End == nil {
			track.skip(i+1, "missing start or end")
			continue
		}
		seg := Segment{
			Start: *item.Start,
			End:   *item.End,
			Text:  strings.TrimSpace(item.Text),
		}
		if err := seg.Validate(); err != nil {
			track.skip(i+1, err.Error())
			continue
		}
		track.Segments = append(track.Segments, seg)
	}

	return track, nil
}

// two space indented array, matching the artifacts written by the renderer
func encodeJSON(segments []Segment) ([]byte, error) {
	if segments == nil {
		segments = []Segment{}
	}
	data, err := json.MarshalIndent(segments, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON subtitles: %w", err)
	}
	return data, nil
}
