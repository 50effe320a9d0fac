package subtitle

import (
	"fmt"
	"strings"
)

// decodes the line oriented formats (WebVTT and SRT).
//
// A cue starts at a line containing "-->"; its text runs until a blank line,
// the next timing line, or end of input. Malformed timing lines and cues
// with empty text are recorded in Skipped and decoding resumes on the next
// line. Everything outside a cue (header, cue identifiers) is ignored.
func decodeCues(content string, format Format) *Track {
	track := &Track{Format: format, Segments: []Segment{}}
	lines := splitLines(content)

	for i := 0; i < len(lines); {
		line := strings.TrimSpace(lines[i])

		if line == "" {
			i++
			continue
		}

		if format == FormatVTT && isVTTMetadataBlock(line) {
			for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
				i++
			}
			continue
		}

		if !strings.Contains(line, "-->") {
			i++
			continue
		}

		lineNum := i + 1
		i++

		start, end, err := parseTimingLine(line)
		if err != nil {
			track.skip(lineNum, err.Error())
			continue
		}

		var textLines []string
		for i < len(lines) {
			text := strings.TrimSpace(lines[i])
			if text == "" || looksLikeTiming(text) {
				break
			}
			if format == FormatVTT {
				text = vttUnescaper.Replace(text)
			}
			textLines = append(textLines, text)
			i++
		}

		text := strings.Join(textLines, " ")
		if text == "" {
			track.skip(lineNum, "empty text")
			continue
		}

		track.Segments = append(track.Segments, Segment{
			Start: start,
			End:   end,
			Text:  text,
		})
	}

	return track
}

// NOTE and STYLE/REGION definitions carry no cues
func isVTTMetadataBlock(line string) bool {
	for _, prefix := range []string{"NOTE", "STYLE", "REGION"} {
		if line == prefix || strings.HasPrefix(line, prefix+" ") || strings.HasPrefix(line, prefix+"\t") {
			return true
		}
	}
	return false
}

// a "-->" line opens a new cue only when a timestamp precedes the arrow;
// "go --> there" is cue text
func looksLikeTiming(line string) bool {
	before, _, found := strings.Cut(line, "-->")
	before = strings.TrimSpace(before)
	return found && before != "" && before[0] >= '0' && before[0] <= '9' &&
		strings.Contains(before, ":")
}

var (
	vttEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	vttUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")
)

// parses "start --> end [cue settings]"
func parseTimingLine(line string) (float64, float64, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("missing --> separator")
	}

	start, err := ParseTimestamp(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("start: %w", err)
	}

	fields := strings.Fields(parts[1])
	if len(fields) == 0 {
		return 0, 0, fmt.Errorf("end: %w: empty", ErrInvalidTimestamp)
	}
	end, err := ParseTimestamp(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("end: %w", err)
	}

	if end <= start {
		return 0, 0, fmt.Errorf("end %.3f not after start %.3f", end, start)
	}
	return start, end, nil
}

func splitLines(content string) []string {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}

// writes cues in VTT or SRT layout
func encodeCues(segments []Segment, format Format) string {
	var sb strings.Builder

	formatTime := FormatTimestamp
	if format == FormatSRT {
		formatTime = FormatSRTTimestamp
	} else {
		// VTT header
		sb.WriteString("WEBVTT\n\n")
	}

	for i, seg := range segments {
		// cue identifier (1-based)
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatTime(seg.Start),
			formatTime(seg.End)))

		text := cueText(seg.Text)
		if format == FormatVTT {
			text = vttEscaper.Replace(text)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// drops blank lines so the text cannot terminate its own cue early
func cueText(text string) string {
	var kept []string
	for _, line := range splitLines(text) {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
