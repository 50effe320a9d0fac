package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mgpai22/reelsubs/internal/render"
	"github.com/mgpai22/reelsubs/internal/subtitle"
	"github.com/mgpai22/reelsubs/internal/video"
)

var framesCmd = &cobra.Command{
	Use:   "frames [subtitle_file]",
	Short: "Print the caption animation state frame by frame",
	Long: `Print the subtitle layer the composition draws at each frame: the active
cue, its opacity, entrance spring and the revealed or highlighted words.

The frame rate comes from --fps, or from the video given with --video.

Examples:
  reelsubs frames subs/reel.json
  reelsubs frames subs/reel.json --style karaoke --from 0 --to 90
  reelsubs frames subs/reel.vtt --video reel.mp4 --step 15`,
	Args: cobra.ExactArgs(1),
	RunE: runFrames,
}

func init() {
	rootCmd.AddCommand(framesCmd)

	framesCmd.Flags().
		Float64("fps", video.ReelFPS, "Composition frame rate (default from config)")
	framesCmd.Flags().
		String("video", "", "Read the frame rate and length from this video")
	framesCmd.Flags().
		String("style", "", "Caption style (plain, karaoke; default from config)")
	framesCmd.Flags().Int("from", 0, "First frame")
	framesCmd.Flags().
		Int("to", -1, "Last frame (default: end of the last cue or the video)")
	framesCmd.Flags().Int("step", 1, "Print every n-th frame")
}

func runFrames(cmd *cobra.Command, args []string) error {
	fps, _ := cmd.Flags().GetFloat64("fps")
	videoPath, _ := cmd.Flags().GetString("video")
	styleName, _ := cmd.Flags().GetString("style")
	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")
	step, _ := cmd.Flags().GetInt("step")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("fps") {
		fps = cfg.Render.FPS
	}
	if styleName == "" {
		styleName = cfg.Render.Style
	}

	style, err := render.ParseStyle(styleName)
	if err != nil {
		return err
	}
	if step < 1 {
		return fmt.Errorf("step must be at least 1, got %d", step)
	}

	track, err := subtitle.ReadFile(args[0])
	if err != nil {
		return err
	}

	lastFrame := -1
	if videoPath != "" {
		info, err := video.NewProcessor().GetInfo(context.Background(), videoPath)
		if err != nil {
			return err
		}
		if info.FrameRate > 0 {
			fps = info.FrameRate
		}
		lastFrame = info.FrameCount() - 1
		log().Debugw("Probed video", "path", videoPath, "fps", fps, "frames", info.FrameCount())
	}
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %g", fps)
	}
	if to < 0 {
		to = lastFrame
		if to < 0 {
			to = framesUntilEnd(track.Segments, fps)
		}
	}

	fmt.Println(renderTable(
		[]string{"Frame", "Time", "Cue", "Opacity", "Entrance", "Words", "Text"},
		frameRows(track.Segments, fps, style, from, to, step),
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}

// last frame at which any cue can still be visible
func framesUntilEnd(segments []subtitle.Segment, fps float64) int {
	end := 0.0
	for _, s := range segments {
		end = max(end, s.End)
	}
	return int(end * fps)
}

func frameRows(segments []subtitle.Segment, fps float64, style render.Style, from, to, step int) [][]string {
	var rows [][]string
	for frame := from; frame <= to; frame += step {
		v := render.Frame(segments, frame, fps, style)
		row := []string{
			strconv.Itoa(frame),
			subtitle.FormatTimestamp(float64(frame) / fps),
		}
		if v.SegmentIndex < 0 {
			row = append(row, "-", "0.00", "-", "-", "")
		} else {
			row = append(row,
				strconv.Itoa(v.SegmentIndex),
				strconv.FormatFloat(v.Opacity, 'f', 2, 64),
				strconv.FormatFloat(v.Entrance, 'f', 2, 64),
				fmt.Sprintf("%d/%d", v.VisibleWordCount+1, len(v.Words)),
				v.Text,
			)
		}
		rows = append(rows, row)
	}
	return rows
}
