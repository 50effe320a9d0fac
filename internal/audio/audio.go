package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/errgroup"

	ffmpegbin "github.com/mgpai22/reelsubs/internal/ffmpeg"
)

// audio chunk info
type ChunkInfo struct {
	Path      string
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
}

// settings for re-encoding audio before upload
type EncodeOptions struct {
	Format     string // mp3, aac, wav or flac
	SampleRate int    // Hz
	Channels   int    // 1=mono, 2=stereo
	Bitrate    string // lossy formats only, e.g. "64k"
}

// small mono mp3, enough for speech recognition
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Format:     "mp3",
		SampleRate: 16000,
		Channels:   1,
		Bitrate:    "64k",
	}
}

// ffmpeg output arguments for opts; video streams are always dropped
func (opts EncodeOptions) kwargs() ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": opts.SampleRate,
		"ac": opts.Channels,
	}

	switch opts.Format {
	case "aac":
		kwargs["acodec"] = "aac"
	case "flac":
		kwargs["acodec"] = "flac"
	case "wav":
		kwargs["acodec"] = "pcm_s16le"
	default:
		kwargs["acodec"] = "libmp3lame"
	}

	if opts.Bitrate != "" && (opts.Format == "mp3" || opts.Format == "aac" || opts.Format == "") {
		kwargs["b:a"] = opts.Bitrate
	}
	return kwargs
}

// media duration reported by ffprobe
func GetDuration(ctx context.Context, filePath string) (time.Duration, error) {
	probe, err := ffmpegbin.Probe(ctx, filePath)
	if err != nil {
		return 0, err
	}
	return probe.Duration()
}

// re-encodes the audio track of inputPath into outputPath
func Encode(ctx context.Context, inputPath, outputPath string, opts EncodeOptions) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	stream := ffmpeg.Input(inputPath).Output(outputPath, opts.kwargs())
	if err := run(ctx, stream); err != nil {
		return fmt.Errorf("encoding failed: %w", err)
	}
	return nil
}

// runs an ffmpeg stream, killing the process when ctx ends
func run(ctx context.Context, stream *ffmpeg.Stream) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	cmd := stream.OverWriteOutput().SetFfmpegPath(ffmpegPath).Compile()
	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	}
}

// Chunk splits an audio file into consecutive pieces of chunkDuration,
// cutting at most concurrency pieces at a time (default 10). Chunks are
// returned in playback order.
func Chunk(
	ctx context.Context,
	audioPath string,
	chunkDuration time.Duration,
	outputDir string,
	concurrency int,
) ([]ChunkInfo, error) {
	if chunkDuration <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %v", chunkDuration)
	}
	if concurrency <= 0 {
		concurrency = 10
	}

	totalDuration, err := GetDuration(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	chunks := planChunks(audioPath, totalDuration, chunkDuration, outputDir)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, chunk := range chunks {
		g.Go(func() error {
			stream := ffmpeg.Input(audioPath).Output(chunk.Path, ffmpeg.KwArgs{
				"ss": chunk.StartTime.Seconds(),
				"t":  (chunk.EndTime - chunk.StartTime).Seconds(),
				"c":  "copy", // no re-encode
			})
			if err := run(gctx, stream); err != nil {
				return fmt.Errorf("failed to create chunk %d: %w", chunk.Index, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		CleanupChunks(chunks)
		return nil, err
	}
	return chunks, nil
}

// chunk boundaries covering [0, total)
func planChunks(audioPath string, total, size time.Duration, outputDir string) []ChunkInfo {
	ext := filepath.Ext(audioPath)
	baseName := strings.TrimSuffix(filepath.Base(audioPath), ext)

	var chunks []ChunkInfo
	for i := 0; ; i++ {
		start := time.Duration(i) * size
		if start >= total {
			break
		}
		end := start + size
		if end > total {
			end = total
		}
		chunks = append(chunks, ChunkInfo{
			Path:      filepath.Join(outputDir, fmt.Sprintf("%s_chunk_%03d%s", baseName, i, ext)),
			Index:     i,
			StartTime: start,
			EndTime:   end,
		})
	}
	return chunks
}

// Prepare returns a file suitable for upload to a transcription service.
// Audio already in mp3 below maxBytes is used as is; anything else (video,
// lossless or oversized audio) is re-encoded into workDir with
// DefaultEncodeOptions. maxBytes <= 0 disables the size check.
func Prepare(ctx context.Context, inputPath, workDir string, maxBytes int64) (string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return "", fmt.Errorf("media file not found: %w", err)
	}

	if !NeedsEncoding(inputPath, info.Size(), maxBytes) {
		return inputPath, nil
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(workDir, stem+".mp3")
	if outputPath == inputPath {
		outputPath = filepath.Join(workDir, stem+".encoded.mp3")
	}

	if err := Encode(ctx, inputPath, outputPath, DefaultEncodeOptions()); err != nil {
		return "", err
	}
	return outputPath, nil
}

// reports whether a file must be re-encoded before upload
func NeedsEncoding(path string, size, maxBytes int64) bool {
	if !IsAudioFile(path) {
		return true
	}
	if strings.ToLower(filepath.Ext(path)) != ".mp3" {
		return true
	}
	return maxBytes > 0 && size > maxBytes
}

var videoExts = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
}

// MIME type per audio extension, used as the upload content type
var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".wma":  "audio/x-ms-wma",
	".aiff": "audio/aiff",
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	_, ok := audioTypes[strings.ToLower(filepath.Ext(path))]
	return ok
}

// checks if the file is either audio or video
func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}

// content type for an audio upload
func ContentType(path string) string {
	if t, ok := audioTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return "application/octet-stream"
}

// removes all chunk files
func CleanupChunks(chunks []ChunkInfo) error {
	var lastErr error
	for _, chunk := range chunks {
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}
