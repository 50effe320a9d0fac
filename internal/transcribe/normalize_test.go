package transcribe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/reelsubs/internal/config"
	"github.com/mgpai22/reelsubs/internal/subtitle"
)

type stubTranscriber struct {
	res   *Result
	err   error
	calls int
}

func (s *stubTranscriber) Transcribe(context.Context, Request) (*Result, error) {
	s.calls++
	return s.res, s.err
}

func TestNormalizeCleansSegments(t *testing.T) {
	stub := &stubTranscriber{res: &Result{
		Language: "en",
		Segments: []subtitle.Segment{
			{Start: 4, End: 5, Text: "  later  "},
			{Start: 1, End: 1, Text: "zero length"},
			{Start: 0, End: 2, Text: "first"},
			{Start: 2, End: 3, Text: "   "},
			{Start: -1, End: 1, Text: "negative"},
		},
	}}

	res, err := Normalize(stub).Transcribe(context.Background(), Request{MediaRef: "a.mp3"})
	require.NoError(t, err)

	assert.Equal(t, []subtitle.Segment{
		{Start: 0, End: 2, Text: "first"},
		{Start: 4, End: 5, Text: "later"},
	}, res.Segments)
	assert.Equal(t, "en", res.Language)
}

func TestNormalizeEmptyTranscript(t *testing.T) {
	tests := []struct {
		name string
		res  *Result
	}{
		{name: "nil result", res: nil},
		{name: "no segments", res: &Result{}},
		{name: "only invalid segments", res: &Result{Segments: []subtitle.Segment{{Start: 1, End: 0.5, Text: "x"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(&stubTranscriber{res: tt.res}).Transcribe(context.Background(), Request{})
			assert.ErrorIs(t, err, ErrEmptyTranscript)
		})
	}
}

func TestNormalizePassesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Normalize(&stubTranscriber{err: boom}).Transcribe(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
}

func TestNormalizeDetectsLanguage(t *testing.T) {
	stub := &stubTranscriber{res: &Result{
		Language: "auto",
		Segments: []subtitle.Segment{
			{Start: 0, End: 3, Text: "Das ist ein Test, ob die Sprache richtig erkannt wird."},
			{Start: 3, End: 6, Text: "Wir sprechen heute über die Untertitel für kurze Videos."},
		},
	}}

	res, err := Normalize(stub).Transcribe(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "de", res.Language)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := Normalize(&stubTranscriber{})
	assert.Same(t, n, Normalize(n))
}

func TestDetectLanguage(t *testing.T) {
	english := []subtitle.Segment{
		{Text: "The quick brown fox jumps over the lazy dog near the river bank."},
		{Text: "Everyone watched as the sun went down behind the mountains."},
	}
	assert.Equal(t, "en", DetectLanguage(english))

	spanish := []subtitle.Segment{
		{Text: "Hoy vamos a hablar de los subtítulos y de cómo se sincronizan con el vídeo."},
		{Text: "Es importante que el texto aparezca en el momento correcto."},
	}
	assert.Equal(t, "es", DetectLanguage(spanish))
}

func TestFactory(t *testing.T) {
	base := config.Default().Transcribe

	t.Run("lambda needs clients", func(t *testing.T) {
		_, err := Factory(context.Background(), base, Deps{})
		assert.Error(t, err)
	})

	t.Run("lambda", func(t *testing.T) {
		tr, err := Factory(context.Background(), base, Deps{Lambda: &fakeLambda{}, Store: newFakeStore()})
		require.NoError(t, err)
		n, ok := tr.(*normalizer)
		require.True(t, ok)
		assert.IsType(t, &LambdaTranscriber{}, n.next)
	})

	t.Run("http", func(t *testing.T) {
		cfg := base
		cfg.Provider = config.ProviderHTTP
		tr, err := Factory(context.Background(), cfg, Deps{})
		require.NoError(t, err)
		assert.IsType(t, &HTTPTranscriber{}, tr.(*normalizer).next)
	})

	t.Run("openai is chunked", func(t *testing.T) {
		cfg := base
		cfg.Provider = config.ProviderOpenAI
		cfg.APIKey = "sk-test"
		tr, err := Factory(context.Background(), cfg, Deps{Preparer: &fakePreparer{}})
		require.NoError(t, err)
		chunkedTr, ok := tr.(*normalizer).next.(*ChunkedTranscriber)
		require.True(t, ok)
		assert.IsType(t, &OpenAITranscriber{}, chunkedTr.ft)
		assert.Equal(t, 3, chunkedTr.opts.Concurrency)
	})

	t.Run("openai needs a key", func(t *testing.T) {
		cfg := base
		cfg.Provider = config.ProviderOpenAI
		cfg.APIKey = ""
		_, err := Factory(context.Background(), cfg, Deps{})
		assert.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := base
		cfg.Provider = "whisper"
		_, err := Factory(context.Background(), cfg, Deps{})
		assert.Error(t, err)
	})
}
