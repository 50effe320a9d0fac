package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
)

// decodes caption content; only malformed JSON or an unknown format fail,
// bad cues are reported in Track.Skipped
func Decode(content []byte, format Format) (*Track, error) {
	switch format {
	case FormatVTT, FormatSRT:
		return decodeCues(string(content), format), nil
	case FormatJSON:
		return decodeJSON(content)
	default:
		return nil, fmt.Errorf("%w: cannot read %s", ErrUnsupportedFormat, format)
	}
}

// ordered segments of the given caption content
func ParseCaptions(content string, format Format) ([]Segment, error) {
	track, err := Decode([]byte(content), format)
	if err != nil {
		return nil, err
	}
	return track.Segments, nil
}

// encodes segments in input order
func Encode(segments []Segment, format Format) ([]byte, error) {
	switch format {
	case FormatVTT, FormatSRT:
		return []byte(encodeCues(segments, format)), nil
	case FormatJSON:
		return encodeJSON(segments)
	case FormatASS:
		return []byte(encodeASS(segments, DefaultASSStyle())), nil
	default:
		return nil, fmt.Errorf("%w: cannot write %s", ErrUnsupportedFormat, format)
	}
}

// string form of Encode
func SerializeCaptions(segments []Segment, format Format) (string, error) {
	data, err := Encode(segments, format)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// reads and decodes a subtitle file, format taken from the extension
func ReadFile(path string) (*Track, error) {
	format, err := FormatFromExtension(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}

	track, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return track, nil
}

// writes segments to path, creating parent directories
func WriteFile(path string, segments []Segment, format Format) error {
	data, err := Encode(segments, format)
	if err != nil {
		return err
	}
	return writeBytes(path, data)
}

func writeBytes(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
