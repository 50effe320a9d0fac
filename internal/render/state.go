package render

import (
	"math"
	"strings"

	"github.com/mgpai22/reelsubs/internal/subtitle"
)

const (
	// frames spent fading in and out at each end of a segment
	FadeFrames = 10

	entranceScaleFrom = 0.8
	entranceYFrom     = 20.0 // px below the resting position
)

// one word of the active cue as drawn
type Word struct {
	Text        string
	Visible     bool
	Highlighted bool
	Scale       float64
}

// everything a host needs to draw the subtitle layer for one frame
type Visual struct {
	Visible      bool
	SegmentIndex int // -1 when no segment is active
	Text         string
	Style        Style

	Opacity    float64
	Entrance   float64 // spring progress 0..1
	Scale      float64
	TranslateY float64

	// current word index, also the number of words revealed before it
	VisibleWordCount int
	Words            []Word
}

// State computes the visual state of seg at frame. It depends only on its
// arguments, so frames can be rendered out of order or in parallel.
func State(frame int, fps float64, seg subtitle.Segment, style Style) Visual {
	v := Visual{SegmentIndex: -1, Style: style}
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return v
	}

	t := float64(frame) / fps
	v.Visible = t >= seg.Start && t <= seg.End

	startFrame := seg.Start * fps
	length := (seg.End - seg.Start) * fps
	elapsed := float64(frame) - startFrame

	v.Opacity = opacity(elapsed, length)
	v.Entrance = Spring(elapsed, fps, DefaultSpring)
	v.Scale = interpolate(v.Entrance, []float64{0, 1}, []float64{entranceScaleFrom, 1})
	v.TranslateY = interpolate(v.Entrance, []float64{0, 1}, []float64{entranceYFrom, 0})

	words := strings.Split(seg.Text, " ")
	v.VisibleWordCount = visibleWordCount(elapsed, length, len(words))
	v.Words = styleWords(words, v.VisibleWordCount, style)
	v.Text = displayText(v.Words)

	return v
}

// Frame looks up the active segment at frame and returns its state
func Frame(segments []subtitle.Segment, frame int, fps float64, style Style) Visual {
	if fps <= 0 {
		return Visual{SegmentIndex: -1, Style: style}
	}

	idx := subtitle.ActiveIndex(segments, float64(frame)/fps)
	if idx < 0 {
		return Visual{SegmentIndex: -1, Style: style}
	}

	v := State(frame, fps, segments[idx], style)
	v.SegmentIndex = idx
	return v
}

// fade envelope over [0, ramp, length-ramp, length] -> [0, 1, 1, 0];
// segments shorter than two fades split their length between the ramps
func opacity(elapsed, length float64) float64 {
	if length <= 0 {
		return 0
	}
	ramp := math.Min(FadeFrames, length/2)
	return interpolate(elapsed,
		[]float64{0, ramp, length - ramp, length},
		[]float64{0, 1, 1, 0})
}

// floor(elapsed * words / length) clamped to [0, words-1]
func visibleWordCount(elapsed, length float64, words int) int {
	if words <= 0 || length <= 0 || elapsed <= 0 {
		return 0
	}
	n := int(math.Floor(elapsed * float64(words) / length))
	if n > words-1 {
		n = words - 1
	}
	if n < 0 {
		n = 0
	}
	return n
}

func styleWords(words []string, current int, style Style) []Word {
	out := make([]Word, len(words))
	for i, w := range words {
		if style.Uppercase {
			w = strings.ToUpper(w)
		}
		word := Word{
			Text:    w,
			Visible: !style.Reveal || i <= current,
			Scale:   1,
		}
		if style.Highlight {
			word.Highlighted = i <= current
			if i == current {
				word.Scale = style.HighlightScale
			}
		}
		out[i] = word
	}
	return out
}

func displayText(words []Word) string {
	visible := make([]string, 0, len(words))
	for _, w := range words {
		if w.Visible {
			visible = append(visible, w.Text)
		}
	}
	return strings.Join(visible, " ")
}
