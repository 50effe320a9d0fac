package subtitle

import "testing"

func TestActiveIndex(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 2, Text: "a"},
		{Start: 1, End: 3, Text: "b"},
		{Start: 5, End: 6, Text: "c"},
	}

	tests := []struct {
		name string
		t    float64
		want int
	}{
		{"start boundary", 0, 0},
		{"overlap picks first", 1.5, 0},
		{"end boundary inclusive", 2, 0},
		{"second only", 2.5, 1},
		{"gap", 4, -1},
		{"last end", 6, 2},
		{"before all", -1, -1},
		{"after all", 6.01, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActiveIndex(segments, tt.t); got != tt.want {
				t.Errorf("ActiveIndex(%v) = %d, want %d", tt.t, got, tt.want)
			}
		})
	}
}

func TestActiveIndexUnsorted(t *testing.T) {
	segments := []Segment{
		{Start: 10, End: 12, Text: "late"},
		{Start: 0, End: 20, Text: "long"},
	}
	if got := ActiveIndex(segments, 11); got != 0 {
		t.Errorf("expected first listed segment, got %d", got)
	}
	if got := ActiveIndex(segments, 1); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestActive(t *testing.T) {
	if _, ok := Active(nil, 1); ok {
		t.Error("expected no segment for empty sequence")
	}

	seg, ok := Active([]Segment{{Start: 1, End: 2, Text: "x"}}, 1.5)
	if !ok || seg.Text != "x" {
		t.Errorf("expected segment x, got %+v (%v)", seg, ok)
	}
}

func TestAtFrame(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 1, Text: "first"},
		{Start: 1.5, End: 3, Text: "second"},
	}

	tests := []struct {
		frame int
		want  string
		ok    bool
	}{
		{0, "first", true},
		{30, "first", true},
		{40, "", false},
		{45, "second", true},
		{90, "second", true},
		{91, "", false},
	}

	for _, tt := range tests {
		seg, ok := AtFrame(segments, tt.frame, 30)
		if ok != tt.ok || seg.Text != tt.want {
			t.Errorf("frame %d: expected %q (%v), got %q (%v)", tt.frame, tt.want, tt.ok, seg.Text, ok)
		}
	}

	if _, ok := AtFrame(segments, 0, 0); ok {
		t.Error("expected no segment for zero fps")
	}
}
