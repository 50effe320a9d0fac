package transcribe

import (
	"context"
	"sort"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/mgpai22/reelsubs/internal/subtitle"
)

type normalizer struct {
	next Transcriber
}

// Normalize wraps t so every result holds only valid cues in start order
// and carries a language. An answer with no usable cue becomes
// ErrEmptyTranscript.
func Normalize(t Transcriber) Transcriber {
	if n, ok := t.(*normalizer); ok {
		return n
	}
	return &normalizer{next: t}
}

func (n *normalizer) Transcribe(ctx context.Context, req Request) (*Result, error) {
	res, err := n.next.Transcribe(ctx, req)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrEmptyTranscript
	}

	res.Segments = cleanSegments(res.Segments)
	if len(res.Segments) == 0 {
		return nil, ErrEmptyTranscript
	}

	lang := strings.TrimSpace(res.Language)
	if lang == "" || strings.EqualFold(lang, "auto") {
		lang = DetectLanguage(res.Segments)
	}
	res.Language = lang
	return res, nil
}

// trims text, drops invalid cues and sorts by start
func cleanSegments(segments []subtitle.Segment) []subtitle.Segment {
	out := make([]subtitle.Segment, 0, len(segments))
	for _, seg := range segments {
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Validate() != nil {
			continue
		}
		out = append(out, seg)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// DetectLanguage returns the ISO 639-1 code most cues are written in, or ""
// when nothing could be recognised.
func DetectLanguage(segments []subtitle.Segment) string {
	votes := make(map[string]int)
	for _, seg := range segments {
		info := whatlanggo.Detect(seg.Text)
		if !info.IsReliable() {
			continue
		}
		votes[info.Lang.Iso6391()]++
	}

	best, bestVotes := "", 0
	for lang, count := range votes {
		if lang == "" {
			continue
		}
		if count > bestVotes || (count == bestVotes && lang < best) {
			best, bestVotes = lang, count
		}
	}
	if best != "" {
		return best
	}

	// short cues are rarely reliable on their own
	var all []string
	for _, seg := range segments {
		all = append(all, seg.Text)
	}
	return whatlanggo.DetectLang(strings.Join(all, " ")).Iso6391()
}
