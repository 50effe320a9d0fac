package render

import (
	"strings"
	"testing"

	"github.com/mgpai22/reelsubs/internal/subtitle"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "plain", false},
		{"plain", "plain", false},
		{" Karaoke ", "karaoke", false},
		{"neon", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStyle(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStyle(%q) returned error: %v", tt.input, err)
			continue
		}
		if got.Name != tt.want {
			t.Errorf("ParseStyle(%q) = %s, want %s", tt.input, got.Name, tt.want)
		}
	}
}

func TestASSColour(t *testing.T) {
	tests := []struct {
		css  string
		want string
		ok   bool
	}{
		{"white", "&H00FFFFFF", true},
		{"#FFD700", "&H0000D7FF", true},
		{"#fff", "&H00FFFFFF", true},
		{"rgba(0, 0, 0, 0.8)", "&H33000000", true},
		{"rgb(255, 0, 0)", "&H000000FF", true},
		{"", "", false},
		{"#12345", "", false},
		{"hsl(0, 0%, 0%)", "", false},
	}

	for _, tt := range tests {
		got, ok := assColour(tt.css)
		if ok != tt.ok || got != tt.want {
			t.Errorf("assColour(%q) = %q %v, want %q %v", tt.css, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStyleASS(t *testing.T) {
	plain := Plain.ASS()
	if plain.Karaoke || plain.Uppercase {
		t.Error("plain export should not be karaoke or uppercase")
	}
	if plain.FontName != "Arial" || !plain.Bold {
		t.Errorf("unexpected plain font: %s bold=%v", plain.FontName, plain.Bold)
	}

	karaoke := Karaoke.ASS()
	if !karaoke.Karaoke || !karaoke.Uppercase {
		t.Error("karaoke export should be karaoke and uppercase")
	}
	if karaoke.PrimaryColour != "&H0000D7FF" || karaoke.SecondaryColour != "&H00FFFFFF" {
		t.Errorf("unexpected karaoke colours: %s %s", karaoke.PrimaryColour, karaoke.SecondaryColour)
	}

	script := string(subtitle.EncodeASS([]subtitle.Segment{{Start: 0, End: 1, Text: "go now"}}, karaoke))
	if !strings.Contains(script, `{\k50}GO {\k50}NOW`) {
		t.Errorf("unexpected karaoke script:\n%s", script)
	}
}
