package subtitle

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitterKeepsShortSegments(t *testing.T) {
	s := NewReelSplitter(3)
	in := []Segment{
		{Start: 0, End: 2, Text: "  short   cue "},
		{Start: 2, End: 2.5, Text: "   "},
		{Start: 3, End: 4, Text: "next"},
	}

	got := s.Split(in)
	sameSegments(t, got, []Segment{
		{Start: 0, End: 2, Text: "short cue"},
		{Start: 3, End: 4, Text: "next"},
	})
}

func TestSplitterByLength(t *testing.T) {
	s := &Splitter{MaxChars: 20}
	seg := Segment{Start: 10, End: 16, Text: "the quick brown fox jumps over the lazy dog again"}

	got := s.Split([]Segment{seg})
	if len(got) < 2 {
		t.Fatalf("expected segment to be split, got %d cues", len(got))
	}

	var words []string
	for i, cue := range got {
		if utf8.RuneCountInString(cue.Text) > 2*s.MaxChars {
			t.Errorf("cue %d too long: %q", i, cue.Text)
		}
		if i > 0 && math.Abs(cue.Start-got[i-1].End) > 1e-9 {
			t.Errorf("cue %d does not start where cue %d ends", i, i-1)
		}
		words = append(words, strings.Fields(cue.Text)...)
	}

	if got[0].Start != seg.Start {
		t.Errorf("expected first cue to start at %v, got %v", seg.Start, got[0].Start)
	}
	if got[len(got)-1].End != seg.End {
		t.Errorf("expected last cue to end at %v, got %v", seg.End, got[len(got)-1].End)
	}
	if strings.Join(words, " ") != seg.Text {
		t.Errorf("words lost or reordered: %q", strings.Join(words, " "))
	}
}

func TestSplitterByDuration(t *testing.T) {
	s := &Splitter{MaxDuration: 3}
	seg := Segment{Start: 0, End: 7, Text: "one two three four five six"}

	got := s.Split([]Segment{seg})
	if len(got) != 3 {
		t.Fatalf("expected 3 cues, got %d: %+v", len(got), got)
	}
	for i, cue := range got {
		if cue.Duration() > 3+1e-9 {
			t.Errorf("cue %d lasts %v", i, cue.Duration())
		}
	}
	if got[2].End != 7 {
		t.Errorf("expected last cue to end at 7, got %v", got[2].End)
	}
}

func TestSplitterSingleWord(t *testing.T) {
	s := &Splitter{MaxChars: 5, MaxDuration: 1}
	got := s.Split([]Segment{{Start: 0, End: 10, Text: "supercalifragilistic"}})
	sameSegments(t, got, []Segment{{Start: 0, End: 10, Text: "supercalifragilistic"}})
}
