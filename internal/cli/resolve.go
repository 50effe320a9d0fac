package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/reelsubs/internal/config"
	"github.com/mgpai22/reelsubs/internal/pipeline"
	"github.com/mgpai22/reelsubs/internal/render"
	"github.com/mgpai22/reelsubs/internal/storage"
	"github.com/mgpai22/reelsubs/internal/subtitle"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [media]",
	Short: "Find or generate the subtitles for a media file",
	Long: `Resolve the subtitles for an audio or video file, a URL or an s3:// object.

The artifact subs/<name>.json (or .vtt) is looked up in the local directory,
then in the bucket. When neither has it the media is transcribed and the
result is written to both. A failed transcription is reported but is not an
error: the video can still be rendered without captions.

Examples:
  reelsubs resolve public/videos/reel.mp4
  reelsubs resolve https://cdn.example.com/reel.mp4 --bucket my-bucket
  reelsubs resolve reel.mp4 --provider openai -o reel.srt
  reelsubs resolve reel.mp4 --force --format vtt`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().
		StringP("bucket", "b", "", "Bucket used as the remote tier (or set REMOTION_S3_BUCKET_NAME)")
	resolveCmd.Flags().
		StringP("provider", "p", "", "Transcription provider: lambda, http, openai or gemini")
	resolveCmd.Flags().
		StringP("format", "f", "", "Artifact format stored in the tiers: json or vtt")
	resolveCmd.Flags().
		String("local-dir", "", "Root directory of the local tier")
	resolveCmd.Flags().
		Bool("force", false, "Skip every tier and transcribe again")
	resolveCmd.Flags().
		Duration("timeout", 0, "Generation timeout (e.g. 5m); overrides the config")
	resolveCmd.Flags().
		String("style", "", "Caption style used for ass output: plain or karaoke")
}

func runResolve(cmd *cobra.Command, args []string) error {
	mediaRef := args[0]

	bucket, _ := cmd.Flags().GetString("bucket")
	provider, _ := cmd.Flags().GetString("provider")
	format, _ := cmd.Flags().GetString("format")
	localDir, _ := cmd.Flags().GetString("local-dir")
	force, _ := cmd.Flags().GetBool("force")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	styleName, _ := cmd.Flags().GetString("style")
	outputPath, _ := cmd.Flags().GetString("output")

	if !storage.IsURL(mediaRef) {
		if _, err := os.Stat(mediaRef); err != nil {
			return fmt.Errorf("file not found: %s", mediaRef)
		}
	}

	opts := []config.Option{
		config.WithBucket(bucket),
		config.WithProvider(provider),
		config.WithLocalDir(localDir),
	}
	if format != "" {
		opts = append(opts, func(c *config.Config) { c.Storage.Format = format })
	}
	if timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %s", timeout)
	}
	if timeout > 0 {
		seconds := timeoutSeconds(timeout)
		opts = append(opts, func(c *config.Config) { c.Transcribe.TimeoutSeconds = seconds })
	}
	if styleName != "" {
		opts = append(opts, func(c *config.Config) { c.Render.Style = styleName })
	}

	cfg, err := loadConfig(cmd, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	resolver, err := newResolver(ctx, cfg, log())
	if err != nil {
		return err
	}

	log().Infow("Resolving subtitles",
		"media", mediaRef,
		"bucket", cfg.AWS.Bucket,
		"provider", cfg.Transcribe.Provider,
		"force", force,
	)

	var res pipeline.Resolution
	if force {
		res, err = resolver.Regenerate(ctx, mediaRef, cfg.AWS.Bucket)
	} else {
		res, err = resolver.Resolve(ctx, mediaRef, cfg.AWS.Bucket)
	}
	if err != nil {
		return err
	}

	if res.Source == pipeline.SourceNone {
		fmt.Printf("No subtitles available for %s: %v\n", mediaRef, res.Cause)
		fmt.Println("  The video can be rendered without captions.")
		return nil
	}

	fmt.Printf("Subtitles resolved: %s\n", res.Key)
	fmt.Printf("  Source: %s\n", res.Source)
	fmt.Printf("  Segments: %d\n", len(res.Segments))
	if n := len(res.Segments); n > 0 {
		fmt.Printf("  Duration: %s\n", subtitle.FormatTimestamp(res.Segments[n-1].End))
	}

	if outputPath == "" {
		return nil
	}

	style, err := render.ParseStyle(cfg.Render.Style)
	if err != nil {
		return err
	}
	if err := writeSubtitles(outputPath, res.Segments, style); err != nil {
		return err
	}
	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("  Written: %s\n", absOutput)
	return nil
}

// whole seconds for the config, rounded up so 500ms stays positive
func timeoutSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// writes segments in the format of path's extension; ass uses the style
func writeSubtitles(path string, segments []subtitle.Segment, style render.Style) error {
	format, err := subtitle.FormatFromExtension(path)
	if err != nil {
		return err
	}
	if format == subtitle.FormatASS {
		return subtitle.WriteASS(path, segments, style.ASS())
	}
	return subtitle.WriteFile(path, segments, format)
}

// output path next to input with the extension of format
func defaultOutputPath(input string, format subtitle.Format) string {
	return replaceExt(input, subtitle.ExtensionForFormat(format))
}
