package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/reelsubs/internal/render"
	"github.com/mgpai22/reelsubs/internal/subtitle"
)

var convertCmd = &cobra.Command{
	Use:   "convert [subtitle_file]",
	Short: "Convert a subtitle file between formats",
	Long: `Convert a subtitle file between vtt, srt, json and ass.

Malformed cue blocks are skipped and reported; the remaining cues are kept.
Ass output carries the caption style (plain or karaoke).

Examples:
  reelsubs convert subs/reel.json -f srt
  reelsubs convert captions.vtt -o captions.ass --style karaoke
  reelsubs convert captions.srt --max-cue 3`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().
		StringP("format", "f", "vtt", "Output format (vtt, srt, json, ass)")
	convertCmd.Flags().
		String("style", "plain", "Caption style for ass output (plain, karaoke)")
	convertCmd.Flags().
		Float64("max-cue", 0, "Split cues longer than this many seconds (0 keeps cues as is)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	formatName, _ := cmd.Flags().GetString("format")
	styleName, _ := cmd.Flags().GetString("style")
	maxCue, _ := cmd.Flags().GetFloat64("max-cue")
	outputPath, _ := cmd.Flags().GetString("output")

	outputPath, format, err := convertTarget(inputPath, outputPath, formatName, cmd.Flags().Changed("format"))
	if err != nil {
		return err
	}

	style, err := render.ParseStyle(styleName)
	if err != nil {
		return err
	}

	track, err := subtitle.ReadFile(inputPath)
	if err != nil {
		return err
	}
	for _, s := range track.Skipped {
		log().Warnw("Skipped malformed cue", "file", inputPath, "line", s.Line, "reason", s.Reason)
	}

	segments := track.Segments
	if maxCue > 0 {
		segments = subtitle.NewReelSplitter(maxCue).Split(segments)
	}

	log().Infow("Converting subtitles",
		"input", inputPath,
		"output", outputPath,
		"format", format,
		"segments", len(segments),
	)

	if format == subtitle.FormatASS {
		err = subtitle.WriteASS(outputPath, segments, style.ASS())
	} else {
		err = subtitle.WriteFile(outputPath, segments, format)
	}
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles converted: %s\n", absOutput)
	fmt.Printf("  Segments: %d\n", len(segments))
	if len(track.Skipped) > 0 {
		fmt.Printf("  Skipped: %d malformed blocks\n", len(track.Skipped))
	}
	return nil
}

// output path and format; an explicit -f must agree with the -o extension
func convertTarget(inputPath, outputPath, formatName string, formatSet bool) (string, subtitle.Format, error) {
	format, err := subtitle.ParseFormat(formatName)
	if err != nil {
		return "", "", err
	}

	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, format)
	} else {
		fromExt, err := subtitle.FormatFromExtension(outputPath)
		if err != nil {
			return "", "", err
		}
		if formatSet && fromExt != format {
			return "", "", fmt.Errorf("format %s does not match output file %s", format, outputPath)
		}
		format = fromExt
	}

	if filepath.Clean(outputPath) == filepath.Clean(inputPath) {
		return "", "", fmt.Errorf("output would overwrite input: %s", inputPath)
	}
	return outputPath, format, nil
}
