package cli

import (
	"github.com/spf13/cobra"

	"github.com/mgpai22/reelsubs/internal/config"
	"github.com/mgpai22/reelsubs/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reelsubs",
	Short: "Subtitle timing and caching engine for vertical video reels",
	Long: `Reelsubs resolves captions for short-form vertical videos.

Subtitles are looked up in memory, then in a local directory, then in an S3
bucket, and only generated through a transcription service (AWS Lambda
whisper, an HTTP transcript API, OpenAI or Gemini) when every tier misses.
Generated captions are written back to both tiers.

The frames command prints the per-frame caption animation state used by the
video composition.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language code (e.g., en, es, fr, or auto)")
}

// loads configuration with the shared flags applied on top
func loadConfig(cmd *cobra.Command, opts ...config.Option) (*config.Config, error) {
	language, _ := cmd.Flags().GetString("language")
	opts = append([]config.Option{config.WithLanguage(language)}, opts...)
	return config.Load(configPath, opts...)
}

func log() *logging.Logger {
	if logger == nil {
		return logging.Nop()
	}
	return logger
}
