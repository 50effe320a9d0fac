package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mgpai22/reelsubs/internal/audio"
	"github.com/mgpai22/reelsubs/internal/logging"
	"github.com/mgpai22/reelsubs/internal/subtitle"
	"github.com/mgpai22/reelsubs/internal/video"
)

// upload ceiling of the hosted speech APIs
const maxUploadBytes = 25 << 20

// media handling the chunked transcriber relies on
type MediaPreparer interface {
	// returns an audio file under workDir (or path itself) ready for upload
	Prepare(ctx context.Context, path, workDir string) (string, error)
	Duration(ctx context.Context, path string) (time.Duration, error)
	Chunk(ctx context.Context, path string, size time.Duration, outDir string, concurrency int) ([]audio.ChunkInfo, error)
}

// ffmpeg backed MediaPreparer
type FFmpegPreparer struct {
	video video.Processor
}

func NewFFmpegPreparer() *FFmpegPreparer {
	return &FFmpegPreparer{video: video.NewProcessor()}
}

func (p *FFmpegPreparer) Prepare(ctx context.Context, path, workDir string) (string, error) {
	if !audio.IsVideoFile(path) {
		return audio.Prepare(ctx, path, workDir, maxUploadBytes)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(workDir, stem+".mp3")
	if err := p.video.ExtractAudio(ctx, path, out, audio.DefaultEncodeOptions()); err != nil {
		return "", err
	}
	return out, nil
}

func (p *FFmpegPreparer) Duration(ctx context.Context, path string) (time.Duration, error) {
	return audio.GetDuration(ctx, path)
}

func (p *FFmpegPreparer) Chunk(ctx context.Context, path string, size time.Duration, outDir string, concurrency int) ([]audio.ChunkInfo, error) {
	return audio.Chunk(ctx, path, size, outDir, concurrency)
}

type ChunkOptions struct {
	ChunkDuration time.Duration // 0 sends the whole file at once
	Concurrency   int
	Preparer      MediaPreparer
	HTTPClient    *http.Client // downloads http(s) media
	Logger        *logging.Logger
}

// ChunkedTranscriber turns a FileTranscriber into a Transcriber: it fetches
// remote media, converts it to uploadable audio and splits long recordings
// into chunks transcribed in parallel.
type ChunkedTranscriber struct {
	ft   FileTranscriber
	opts ChunkOptions
}

// holds the result of transcribing a chunk
type chunkResult struct {
	Index    int
	Segments []subtitle.Segment
	Language string
	Error    error
}

func NewChunkedTranscriber(ft FileTranscriber, opts ChunkOptions) *ChunkedTranscriber {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 3
	}
	if opts.Preparer == nil {
		opts.Preparer = NewFFmpegPreparer()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &ChunkedTranscriber{ft: ft, opts: opts}
}

func (t *ChunkedTranscriber) Transcribe(ctx context.Context, req Request) (*Result, error) {
	ref := strings.TrimSpace(req.MediaRef)
	if ref == "" {
		return nil, errors.New("media reference is required")
	}
	lang := req.Language
	if strings.EqualFold(lang, "auto") {
		lang = ""
	}

	workDir, err := os.MkdirTemp("", "reelsubs-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	local, err := t.fetch(ctx, ref, workDir)
	if err != nil {
		return nil, err
	}

	audioPath, err := t.opts.Preparer.Prepare(ctx, local, workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare audio: %w", err)
	}

	duration, err := t.opts.Preparer.Duration(ctx, audioPath)
	if err != nil {
		t.opts.Logger.Warnw("could not probe duration, sending whole file", "path", audioPath, "error", err)
		duration = 0
	}

	if t.opts.ChunkDuration <= 0 || duration <= t.opts.ChunkDuration {
		res, err := t.ft.TranscribeFile(ctx, audioPath, lang)
		if err != nil {
			return nil, err
		}
		if res.Duration == 0 {
			res.Duration = duration
		}
		return res, nil
	}

	chunks, err := t.opts.Preparer.Chunk(ctx, audioPath, t.opts.ChunkDuration,
		filepath.Join(workDir, "chunks"), t.opts.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk audio: %w", err)
	}
	defer audio.CleanupChunks(chunks)

	t.opts.Logger.Infow("transcribing in chunks",
		"chunks", len(chunks),
		"duration", duration.String(),
		"concurrency", t.opts.Concurrency,
	)

	res, err := t.TranscribeChunks(ctx, chunks, lang)
	if err != nil {
		return nil, err
	}
	res.Duration = duration
	return res, nil
}

// transcribes a single chunk and shifts its cues by the chunk offset
func (t *ChunkedTranscriber) transcribeChunk(ctx context.Context, chunk audio.ChunkInfo, lang string) ([]subtitle.Segment, string, error) {
	res, err := t.ft.TranscribeFile(ctx, chunk.Path, lang)
	if err != nil {
		return nil, "", err
	}

	offset := chunk.StartTime.Seconds()
	shifted := make([]subtitle.Segment, len(res.Segments))
	for i, seg := range res.Segments {
		shifted[i] = subtitle.Segment{
			Start: seg.Start + offset,
			End:   seg.End + offset,
			Text:  seg.Text,
		}
	}
	return shifted, res.Language, nil
}

// TranscribeChunks transcribes chunks in parallel and merges the cues in
// chunk order. The first failure cancels the remaining work.
func (t *ChunkedTranscriber) TranscribeChunks(ctx context.Context, chunks []audio.ChunkInfo, lang string) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workChan := make(chan audio.ChunkInfo, len(chunks))
	resultChan := make(chan chunkResult, len(chunks))

	var wg sync.WaitGroup
	for i := 0; i < min(t.opts.Concurrency, len(chunks)); i++ {
		wg.Go(func() {
			for chunk := range workChan {
				if ctx.Err() != nil {
					return
				}
				segments, chunkLang, err := t.transcribeChunk(ctx, chunk, lang)
				if err != nil {
					cancel()
				}
				resultChan <- chunkResult{
					Index:    chunk.Index,
					Segments: segments,
					Language: chunkLang,
					Error:    err,
				}
			}
		})
	}

	for _, chunk := range chunks {
		workChan <- chunk
	}
	close(workChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]chunkResult, 0, len(chunks))
	var firstErr, cancelErr error
	for result := range resultChan {
		if result.Error == nil {
			results = append(results, result)
			continue
		}
		err := fmt.Errorf("chunk %d failed: %w", result.Index, result.Error)
		// chunks stopped by our own cancel report the root failure instead
		if errors.Is(result.Error, context.Canceled) {
			if cancelErr == nil {
				cancelErr = err
			}
		} else if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = cancelErr
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil && len(results) < len(chunks) {
		return nil, err
	}

	// sort by index to maintain order
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	var merged []subtitle.Segment
	detected := lang
	for _, r := range results {
		merged = append(merged, r.Segments...)
		if detected == "" {
			detected = r.Language
		}
	}

	return &Result{
		Segments: merged,
		Language: detected,
		Duration: chunks[len(chunks)-1].EndTime,
	}, nil
}

// copies http(s) media into workDir; local paths are returned as is
func (t *ChunkedTranscriber) fetch(ctx context.Context, ref, workDir string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return ref, nil
	}
	switch u.Scheme {
	case "http", "https":
	case "s3":
		return "", fmt.Errorf("s3 media is only supported by the lambda provider: %s", ref)
	default:
		return ref, nil
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = "media"
	}
	dest := filepath.Join(workDir, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := t.opts.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("download failed (%s): %s", resp.Status, ref)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("download failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return dest, nil
}
