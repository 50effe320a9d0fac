package subtitle

import (
	"strings"
	"unicode/utf8"
)

// breaks long transcription segments into cues that fit a vertical reel
type Splitter struct {
	MaxChars    int     // 0 disables the length limit
	MaxDuration float64 // seconds, 0 disables the duration limit
}

func NewReelSplitter(maxDuration float64) *Splitter {
	return &Splitter{
		MaxChars:    42, // two short lines on a 1080px wide frame
		MaxDuration: maxDuration,
	}
}

// trims text, drops empty segments and splits the ones over a limit;
// order is preserved and split cues tile the original span exactly
func (s *Splitter) Split(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))

	for _, seg := range segments {
		seg.Text = strings.Join(strings.Fields(seg.Text), " ")
		if seg.Text == "" {
			continue
		}

		if s.needsSplit(seg) {
			out = append(out, s.splitSegment(seg)...)
		} else {
			out = append(out, seg)
		}
	}

	return out
}

func (s *Splitter) needsSplit(seg Segment) bool {
	// if text is too long, split
	if s.MaxChars > 0 && utf8.RuneCountInString(seg.Text) > s.MaxChars {
		return true
	}

	// if duration is too long, split
	if s.MaxDuration > 0 && seg.Duration() > s.MaxDuration {
		return true
	}

	return false
}

// splits long segment into multiple cues
func (s *Splitter) splitSegment(seg Segment) []Segment {
	words := strings.Fields(seg.Text)
	totalDuration := seg.Duration()

	numSplits := 1
	if s.MaxChars > 0 {
		totalChars := utf8.RuneCountInString(seg.Text)
		numSplits = (totalChars + s.MaxChars - 1) / s.MaxChars
	}

	if s.MaxDuration > 0 {
		durationSplits := int(totalDuration/s.MaxDuration) + 1
		if durationSplits > numSplits {
			numSplits = durationSplits
		}
	}

	// a cue holds at least one word
	if numSplits > len(words) {
		numSplits = len(words)
	}
	if numSplits <= 1 {
		return []Segment{seg}
	}

	// distribute words across splits
	wordsPerSplit := (len(words) + numSplits - 1) / numSplits
	durationPerSplit := totalDuration / float64(numSplits)

	var cues []Segment
	currentStart := seg.Start

	for i := 0; i < numSplits && len(words) > 0; i++ {
		endIdx := wordsPerSplit
		if endIdx > len(words) {
			endIdx = len(words)
		}

		splitWords := words[:endIdx]
		words = words[endIdx:]

		currentEnd := currentStart + durationPerSplit

		// last split ends at the original end time
		if len(words) == 0 {
			currentEnd = seg.End
		}

		cues = append(cues, Segment{
			Start: currentStart,
			End:   currentEnd,
			Text:  strings.Join(splitWords, " "),
		})

		currentStart = currentEnd
	}

	return cues
}
