package subtitle

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// represents single caption cue, times in seconds
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// reports why the segment cannot be emitted
func (s Segment) Validate() error {
	if strings.TrimSpace(s.Text) == "" {
		return errors.New("empty text")
	}
	if s.Start < 0 {
		return fmt.Errorf("negative start %.3f", s.Start)
	}
	if s.End <= s.Start {
		return fmt.Errorf("end %.3f not after start %.3f", s.End, s.Start)
	}
	return nil
}

// length in seconds
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// represents supported subtitle formats
type Format string

const (
	FormatVTT  Format = "vtt"
	FormatSRT  Format = "srt"
	FormatJSON Format = "json"
	FormatASS  Format = "ass"
)

var ErrUnsupportedFormat = errors.New("unsupported subtitle format")

// a block the decoder dropped; Line is 1-based, or the element index for JSON
type SkippedBlock struct {
	Line   int
	Reason string
}

// decoded caption content
type Track struct {
	Format   Format
	Segments []Segment
	Skipped  []SkippedBlock
}

func (t *Track) skip(line int, reason string) {
	t.Skipped = append(t.Skipped, SkippedBlock{Line: line, Reason: reason})
}

// parses a user supplied format name
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "vtt", "webvtt":
		return FormatVTT, nil
	case "srt":
		return FormatSRT, nil
	case "json":
		return FormatJSON, nil
	case "ass", "ssa":
		return FormatASS, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// subtitle format based on file extension
func FormatFromExtension(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// file extension for a format
func ExtensionForFormat(format Format) string {
	switch format {
	case FormatSRT:
		return ".srt"
	case FormatJSON:
		return ".json"
	case FormatASS:
		return ".ass"
	default:
		return ".vtt"
	}
}

// content type used when storing an artifact
func ContentType(format Format) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatVTT:
		return "text/vtt"
	case FormatSRT:
		return "application/x-subrip"
	default:
		return "text/plain"
	}
}
