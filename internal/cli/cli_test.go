package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/reelsubs/internal/render"
	"github.com/mgpai22/reelsubs/internal/storage"
	"github.com/mgpai22/reelsubs/internal/subtitle"
)

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		input  string
		format subtitle.Format
		want   string
	}{
		{"subs/reel.json", subtitle.FormatSRT, "subs/reel.srt"},
		{"captions.vtt", subtitle.FormatASS, "captions.ass"},
		{"captions.srt", subtitle.FormatJSON, "captions.json"},
		{"noext", subtitle.FormatVTT, "noext.vtt"},
		{"dir.v2/reel", subtitle.FormatVTT, "dir.v2/reel.vtt"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := defaultOutputPath(tt.input, tt.format); got != tt.want {
				t.Errorf("defaultOutputPath(%q, %q) = %q, want %q", tt.input, tt.format, got, tt.want)
			}
		})
	}
}

func TestConvertTarget(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		output     string
		format     string
		formatSet  bool
		wantPath   string
		wantFormat subtitle.Format
		wantErr    bool
	}{
		{"default output", "a.srt", "", "vtt", false, "a.vtt", subtitle.FormatVTT, false},
		{"output extension wins over default", "a.srt", "b.json", "vtt", false, "b.json", subtitle.FormatJSON, false},
		{"matching explicit format", "a.srt", "b.ass", "ass", true, "b.ass", subtitle.FormatASS, false},
		{"conflicting explicit format", "a.srt", "b.json", "srt", true, "", "", true},
		{"overwrite input", "a.vtt", "", "vtt", false, "", "", true},
		{"unknown format", "a.srt", "", "txt", true, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, format, err := convertTarget(tt.input, tt.output, tt.format, tt.formatSet)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q (%s)", path, format)
				}
				return
			}
			if err != nil {
				t.Fatalf("convertTarget returned error: %v", err)
			}
			if path != tt.wantPath || format != tt.wantFormat {
				t.Errorf("got %q (%s), want %q (%s)", path, format, tt.wantPath, tt.wantFormat)
			}
		})
	}
}

func TestTimeoutSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{500 * time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{5 * time.Minute, 300},
	}
	for _, tt := range tests {
		if got := timeoutSeconds(tt.in); got != tt.want {
			t.Errorf("timeoutSeconds(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFramesUntilEnd(t *testing.T) {
	segments := []subtitle.Segment{
		{Start: 0, End: 2, Text: "one"},
		{Start: 2.5, End: 4, Text: "two"},
	}
	if got := framesUntilEnd(segments, 30); got != 120 {
		t.Errorf("framesUntilEnd() = %d, want 120", got)
	}
	if got := framesUntilEnd(nil, 30); got != 0 {
		t.Errorf("framesUntilEnd(nil) = %d, want 0", got)
	}
}

func TestFrameRows(t *testing.T) {
	segments := []subtitle.Segment{{Start: 1, End: 2, Text: "hello brave world"}}

	rows := frameRows(segments, 30, render.Plain, 0, 60, 30)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	if rows[0][2] != "-" || rows[0][6] != "" {
		t.Errorf("frame 0 should have no cue, got %v", rows[0])
	}
	// frame 30 is the first frame of the cue
	if rows[1][2] != "0" || rows[1][3] != "0.00" || rows[1][5] != "1/3" {
		t.Errorf("frame 30 = %v, want cue 0 at opacity 0 with one word", rows[1])
	}
	if rows[1][6] != "hello" {
		t.Errorf("frame 30 text = %q, want %q", rows[1][6], "hello")
	}
	// the end is inclusive
	if rows[2][2] != "0" || rows[2][5] != "3/3" {
		t.Errorf("frame 60 = %v, want the last word of cue 0", rows[2])
	}
}

func TestObjectRows(t *testing.T) {
	modified := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := objectRows([]storage.Object{
		{Key: "subs/a.json", Size: 42, LastModified: modified},
		{Key: "subs/b.vtt"},
	})

	want := [][]string{
		{"subs/a.json", "42", "2026-03-01T12:00:00Z"},
		{"subs/b.vtt", "0", "-"},
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestRenderTable(t *testing.T) {
	if got := renderTable(nil, nil, nil); got != "" {
		t.Errorf("renderTable with no headers = %q, want empty", got)
	}

	out := renderTable(
		[]string{"Key", "Size"},
		[][]string{{"subs/a.json", "42"}, {"subs/b.vtt"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	for _, want := range []string{"Key", "Size", "subs/a.json", "42", "subs/b.vtt"} {
		if !strings.Contains(out, want) {
			t.Errorf("table is missing %q:\n%s", want, out)
		}
	}
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "captions.srt")
	output := filepath.Join(dir, "captions.vtt")

	srt := "1\n00:00:00,000 --> 00:00:01,500\nHello there\n\n" +
		"2\n00:00:aa,000 --> 00:00:01,000\nbroken\n\n" +
		"3\n00:00:02,000 --> 00:00:03,000\nGeneral Kenobi\n"
	if err := os.WriteFile(input, []byte(srt), 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"convert", input, "--output", output})
	if err := Execute(); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	track, err := subtitle.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(track.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(track.Segments))
	}
	if track.Segments[1].Text != "General Kenobi" || track.Segments[1].Start != 2 {
		t.Errorf("second segment = %+v", track.Segments[1])
	}
}
