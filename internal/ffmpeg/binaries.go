package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

var ErrNotFound = errors.New("ffmpeg binaries not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	locateOnce sync.Once
	locateErr  error
	locatePath BinaryPaths
)

// Locate finds ffmpeg and ffprobe once per process. REELSUBS_FFMPEG_PATH and
// REELSUBS_FFPROBE_PATH take precedence over PATH.
func Locate() (BinaryPaths, error) {
	locateOnce.Do(func() {
		locatePath, locateErr = locate(os.Getenv, exec.LookPath)
	})
	return locatePath, locateErr
}

func FFmpegPath() (string, error) {
	paths, err := Locate()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Locate()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

func locate(getenv func(string) string, lookPath func(string) (string, error)) (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  getenv("REELSUBS_FFMPEG_PATH"),
		FFprobe: getenv("REELSUBS_FFPROBE_PATH"),
	}

	if paths.FFmpeg == "" {
		if found, err := lookPath("ffmpeg"); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := lookPath("ffprobe"); err == nil {
			paths.FFprobe = found
		}
	}

	switch {
	case paths.FFmpeg == "" && paths.FFprobe == "":
		return BinaryPaths{}, fmt.Errorf("%w: install ffmpeg or set REELSUBS_FFMPEG_PATH and REELSUBS_FFPROBE_PATH", ErrNotFound)
	case paths.FFmpeg == "":
		return BinaryPaths{}, fmt.Errorf("%w: ffmpeg missing, set REELSUBS_FFMPEG_PATH", ErrNotFound)
	case paths.FFprobe == "":
		return BinaryPaths{}, fmt.Errorf("%w: ffprobe missing, set REELSUBS_FFPROBE_PATH", ErrNotFound)
	}
	return paths, nil
}
