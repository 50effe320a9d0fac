package video

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mgpai22/reelsubs/internal/audio"
	"github.com/mgpai22/reelsubs/internal/ffmpeg"
)

// reel composition defaults
const (
	ReelWidth  = 1080
	ReelHeight = 1920
	ReelFPS    = 30.0
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// number of frames in the video at its own frame rate
func (i *Info) FrameCount() int {
	if i.FrameRate <= 0 {
		return 0
	}
	return int(math.Round(i.Duration.Seconds() * i.FrameRate))
}

// defines interface for video processing operations
type Processor interface {
	// extracts the audio track to outputPath
	ExtractAudio(ctx context.Context, videoPath, outputPath string, opts audio.EncodeOptions) error

	// retrieves video file information
	GetInfo(ctx context.Context, videoPath string) (*Info, error)
}

// speech friendly wav, the format whisper decodes natively
func DefaultExtractAudioOptions() audio.EncodeOptions {
	return audio.EncodeOptions{
		Format:     "wav",
		SampleRate: 16000,
		Channels:   1,
	}
}

// default implementation using ffmpeg
type DefaultProcessor struct{}

func NewProcessor() *DefaultProcessor {
	return &DefaultProcessor{}
}

// extracts audio from video file
func (p *DefaultProcessor) ExtractAudio(
	ctx context.Context,
	videoPath, outputPath string,
	opts audio.EncodeOptions,
) error {
	if err := audio.Encode(ctx, videoPath, outputPath, opts); err != nil {
		return fmt.Errorf("audio extraction failed: %w", err)
	}
	return nil
}

// retrieves video file information
func (p *DefaultProcessor) GetInfo(ctx context.Context, videoPath string) (*Info, error) {
	probe, err := ffmpeg.Probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	return infoFromProbe(videoPath, probe)
}

func infoFromProbe(path string, probe *ffmpeg.ProbeOutput) (*Info, error) {
	stream, ok := probe.Stream("video")
	if !ok {
		return nil, fmt.Errorf("%s has no video stream", path)
	}

	duration, err := probe.Duration()
	if err != nil {
		return nil, err
	}

	rate := ffmpeg.ParseFrameRate(stream.AvgFrameRate)
	if rate <= 0 {
		rate = ffmpeg.ParseFrameRate(stream.RFrameRate)
	}

	_, hasAudio := probe.Stream("audio")

	return &Info{
		Path:      path,
		Duration:  duration,
		Width:     stream.Width,
		Height:    stream.Height,
		FrameRate: rate,
		Codec:     stream.CodecName,
		HasAudio:  hasAudio,
	}, nil
}
