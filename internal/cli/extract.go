package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/reelsubs/internal/audio"
	"github.com/mgpai22/reelsubs/internal/config"
	"github.com/mgpai22/reelsubs/internal/video"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract the audio track that the transcription services read",
	Long: `Extract the audio track from a video file and save it as a separate audio file.

With --upload the file is also stored under the audio key prefix of the bucket,
where the lambda transcriber expects it. Existing objects are not replaced.

Supports multiple output formats: wav, mp3, aac, flac.

Examples:
  reelsubs extract reel.mp4
  reelsubs extract reel.mp4 -o reel.mp3 -f mp3
  reelsubs extract reel.mp4 --upload --bucket my-bucket`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	defaults := video.DefaultExtractAudioOptions()
	extractCmd.Flags().
		StringP("format", "f", defaults.Format, "Output audio format (wav, mp3, aac, flac)")
	extractCmd.Flags().
		IntP("sample-rate", "r", defaults.SampleRate, "Sample rate in Hz (e.g., 16000, 44100, 48000)")
	extractCmd.Flags().
		Int("channels", defaults.Channels, "Number of audio channels (1=mono, 2=stereo)")
	extractCmd.Flags().
		String("bitrate", "", "Bitrate for lossy formats (e.g., 128k, 320k)")
	extractCmd.Flags().
		Bool("upload", false, "Upload the extracted audio to the bucket")
	extractCmd.Flags().
		StringP("bucket", "b", "", "Bucket for --upload (or set REMOTION_S3_BUCKET_NAME)")
}

var validAudioFormats = map[string]bool{
	"wav":  true,
	"mp3":  true,
	"aac":  true,
	"flac": true,
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	format, _ := cmd.Flags().GetString("format")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")
	channels, _ := cmd.Flags().GetInt("channels")
	bitrate, _ := cmd.Flags().GetString("bitrate")
	upload, _ := cmd.Flags().GetBool("upload")
	bucket, _ := cmd.Flags().GetString("bucket")
	outputPath, _ := cmd.Flags().GetString("output")

	if !validAudioFormats[format] {
		return fmt.Errorf(
			"invalid format %q: supported formats are wav, mp3, aac, flac",
			format,
		)
	}
	if !audio.IsVideoFile(videoPath) {
		return fmt.Errorf("not a video file: %s", videoPath)
	}
	if outputPath == "" {
		outputPath = replaceExt(videoPath, "."+format)
	}

	log().Infow("Extracting audio",
		"video", videoPath,
		"output", outputPath,
		"format", format,
		"sample_rate", sampleRate,
		"channels", channels,
	)

	ctx := context.Background()
	opts := audio.EncodeOptions{
		Format:     format,
		SampleRate: sampleRate,
		Channels:   channels,
		Bitrate:    bitrate,
	}
	if err := video.NewProcessor().ExtractAudio(ctx, videoPath, outputPath, opts); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Audio extracted successfully: %s\n", absOutput)

	if !upload {
		return nil
	}
	return uploadAudio(ctx, cmd, outputPath, bucket)
}

func uploadAudio(ctx context.Context, cmd *cobra.Command, path, bucket string) error {
	cfg, err := loadConfig(cmd, config.WithBucket(bucket))
	if err != nil {
		return err
	}
	if cfg.AWS.Bucket == "" {
		return fmt.Errorf("no bucket configured: pass --bucket or set REMOTION_S3_BUCKET_NAME")
	}

	_, store, err := newRemote(cfg)
	if err != nil {
		return err
	}

	key := cfg.Transcribe.AudioKeyPrefix + filepath.Base(path)
	exists, err := store.Exists(ctx, cfg.AWS.Bucket, key)
	if err != nil {
		return err
	}
	if exists {
		fmt.Printf("  Already uploaded: s3://%s/%s\n", cfg.AWS.Bucket, key)
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := store.Upload(ctx, cfg.AWS.Bucket, key, f, audio.ContentType(path)); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	log().Infow("Uploaded audio", "bucket", cfg.AWS.Bucket, "key", key)
	fmt.Printf("  Uploaded: s3://%s/%s\n", cfg.AWS.Bucket, key)
	return nil
}

func replaceExt(path, ext string) string {
	return path[:len(path)-len(filepath.Ext(path))] + ext
}
