package subtitle

import (
	"fmt"
	"math"
	"strings"
)

// Advanced SubStation Alpha export settings
type ASSStyle struct {
	Title     string
	FontName  string
	FontSize  int
	Bold      bool
	Uppercase bool
	// colours are &HAABBGGRR; with Karaoke the cue is drawn in
	// SecondaryColour and each word switches to PrimaryColour as it is spoken
	PrimaryColour   string
	SecondaryColour string
	OutlineColour   string
	BackColour      string
	// vertical margin in pixels from the bottom of a 1080x1920 frame
	MarginV int
	Karaoke bool
}

func DefaultASSStyle() ASSStyle {
	return ASSStyle{
		Title:           "Reelsubs Generated Subtitles",
		FontName:        "Arial",
		FontSize:        56,
		Bold:            true,
		PrimaryColour:   "&H00FFFFFF",
		SecondaryColour: "&H000000FF",
		OutlineColour:   "&H00000000",
		BackColour:      "&H80000000",
		MarginV:         288,
	}
}

// encodes segments as an ASS script sized for a vertical reel
func EncodeASS(segments []Segment, style ASSStyle) []byte {
	return []byte(encodeASS(segments, style))
}

// writes the segments to an ASS file
func WriteASS(path string, segments []Segment, style ASSStyle) error {
	return writeBytes(path, EncodeASS(segments, style))
}

func encodeASS(segments []Segment, style ASSStyle) string {
	var sb strings.Builder

	// script info section
	sb.WriteString("[Script Info]\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", style.Title))
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("PlayResX: 1080\n")
	sb.WriteString("PlayResY: 1920\n")
	sb.WriteString("WrapStyle: 0\n\n")

	bold := 0
	if style.Bold {
		bold = -1
	}

	// v4+ styles section
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,%s,%s,%s,%s,%d,0,0,0,100,100,0,0,3,2,2,2,108,108,%d,1\n\n",
		style.FontName, style.FontSize,
		style.PrimaryColour, style.SecondaryColour, style.OutlineColour, style.BackColour,
		bold, style.MarginV))

	// events section
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, seg := range segments {
		text := cueText(seg.Text)
		if style.Uppercase {
			text = strings.ToUpper(text)
		}
		if style.Karaoke {
			text = karaokeText(text, seg.Duration())
		} else {
			text = escapeASSText(text)
		}

		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(seg.Start),
			formatASSTime(seg.End),
			text))
	}

	return sb.String()
}

// splits the cue evenly across its words with \k tags, the same share the
// word reveal animation gives each word
func karaokeText(text string, duration float64) string {
	words := strings.Split(strings.ReplaceAll(text, "\n", " "), " ")
	total := int(math.Round(duration * 100))
	if total < 0 {
		total = 0
	}
	per := total / len(words)

	var sb strings.Builder
	used := 0
	for i, word := range words {
		cs := per
		if i == len(words)-1 {
			cs = total - used
		}
		used += cs
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("{\\k%d}%s", cs, escapeASSText(word)))
	}
	return sb.String()
}

func formatASSTime(seconds float64) string {
	h, m, s, ms := splitMillis(seconds)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, ms/10)
}

func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "{", "\\{")
	text = strings.ReplaceAll(text, "}", "\\}")
	return strings.ReplaceAll(text, "\n", "\\N")
}
