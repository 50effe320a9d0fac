package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mgpai22/reelsubs/internal/subtitle"
)

// presentation constants of a subtitle preset; timing math is shared
type Style struct {
	Name           string
	TextColor      string // CSS colour
	HighlightColor string
	Background     string
	FontFamily     string
	FontSize       int // px in a 1080x1920 composition
	FontWeight     int
	Uppercase      bool
	// Reveal shows words up to the current one; otherwise the whole cue is shown
	Reveal bool
	// Highlight colours words up to the current one and scales the current word
	Highlight      bool
	HighlightScale float64
}

var (
	// boxed white text revealed word by word
	Plain = Style{
		Name:           "plain",
		TextColor:      "white",
		Background:     "rgba(0, 0, 0, 0.8)",
		FontFamily:     "Arial",
		FontSize:       32,
		FontWeight:     700,
		Reveal:         true,
		HighlightScale: 1,
	}

	// uppercase captions with the spoken word in gold
	Karaoke = Style{
		Name:           "karaoke",
		TextColor:      "white",
		HighlightColor: "#FFD700",
		FontFamily:     "Arial Black",
		FontSize:       42,
		FontWeight:     900,
		Uppercase:      true,
		Highlight:      true,
		HighlightScale: 1.2,
	}
)

// preset by name
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "plain":
		return Plain, nil
	case "karaoke":
		return Karaoke, nil
	default:
		return Style{}, fmt.Errorf("unknown style: %s (expected plain or karaoke)", name)
	}
}

// ASS converts the preset for subtitle export
func (s Style) ASS() subtitle.ASSStyle {
	ass := subtitle.DefaultASSStyle()
	ass.FontName = s.FontFamily
	ass.FontSize = s.FontSize
	ass.Bold = s.FontWeight >= 600
	ass.Uppercase = s.Uppercase
	ass.Karaoke = s.Highlight

	if c, ok := assColour(s.TextColor); ok {
		ass.PrimaryColour = c
		ass.SecondaryColour = c
	}
	if c, ok := assColour(s.HighlightColor); ok && s.Highlight {
		// karaoke fills from secondary to primary as each word is spoken
		ass.SecondaryColour = ass.PrimaryColour
		ass.PrimaryColour = c
	}
	if c, ok := assColour(s.Background); ok {
		ass.BackColour = c
	} else {
		ass.BackColour = "&HFF000000"
	}
	return ass
}

// converts #RGB, #RRGGBB, rgb(), rgba(), white or black to &HAABBGGRR
func assColour(css string) (string, bool) {
	r, g, b, a, ok := parseColour(css)
	if !ok {
		return "", false
	}
	alpha := 255 - int(math.Round(a*255))
	return fmt.Sprintf("&H%02X%02X%02X%02X", alpha, b, g, r), true
}

func parseColour(css string) (r, g, b int, a float64, ok bool) {
	css = strings.ToLower(strings.TrimSpace(css))
	switch {
	case css == "white":
		return 255, 255, 255, 1, true
	case css == "black":
		return 0, 0, 0, 1, true
	case strings.HasPrefix(css, "#"):
		hex := css[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return 0, 0, 0, 0, false
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, 0, 0, 0, false
		}
		return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), 1, true
	case strings.HasPrefix(css, "rgb"):
		open, end := strings.Index(css, "("), strings.LastIndex(css, ")")
		if open < 0 || end < open {
			return 0, 0, 0, 0, false
		}
		parts := strings.Split(css[open+1:end], ",")
		if len(parts) != 3 && len(parts) != 4 {
			return 0, 0, 0, 0, false
		}
		var rgb [3]int
		for i := 0; i < 3; i++ {
			n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
			if err != nil || n < 0 || n > 255 {
				return 0, 0, 0, 0, false
			}
			rgb[i] = n
		}
		a = 1
		if len(parts) == 4 {
			f, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
			if err != nil {
				return 0, 0, 0, 0, false
			}
			a = clamp(f, 0, 1)
		}
		return rgb[0], rgb[1], rgb[2], a, true
	}
	return 0, 0, 0, 0, false
}
