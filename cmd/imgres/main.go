// Command imgres inspects image resources and dumps their frames.
//
// Usage:
//
//	imgres inspect spinner.gif
//	imgres dump spinner.gif --out frames --width 128 --height 128
//	imgres watch assets/*.gif --metrics-addr :9090
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gogpu/imgres"
	"github.com/gogpu/imgres/video/ffmpeg"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "imgres",
	Short: "Inspect animated images, vector images and video",
	Long: `imgres opens image resources the way widgets do and reports what it finds.

Examples:
  # Show kind, size and frame timing
  imgres inspect spinner.gif

  # Write every frame as PNG
  imgres dump spinner.gif --out frames`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		setupLogging()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (e.g. imgres.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-style", "text", "logging output style (text, json)")
	rootCmd.PersistentFlags().String("user-agent", "", "User-Agent for remote references")
	rootCmd.PersistentFlags().String("interpolation", "bilinear", "scaler (nearest, bilinear, catmullrom)")

	mustBindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	mustBindPFlag("log.style", rootCmd.PersistentFlags().Lookup("log-style"))
	mustBindPFlag("fetch.user_agent", rootCmd.PersistentFlags().Lookup("user-agent"))
	mustBindPFlag("render.interpolation", rootCmd.PersistentFlags().Lookup("interpolation"))

	rootCmd.AddCommand(inspectCmd, dumpCmd, watchCmd)
}

func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// initConfig reads the config file and IMGRES_ environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".imgres")
	}
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("IMGRES")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file [%s]: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

func setupLogging() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if viper.GetString("log.style") == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	imgres.SetLogger(slog.New(h))
}

// resourceOptions builds the options shared by every command.
func resourceOptions() []imgres.Option {
	opts := []imgres.Option{
		imgres.WithPixelFormat(imgres.FormatRGBA8),
		imgres.WithPlayerFactory(ffmpeg.Open),
		imgres.WithInterpolation(parseInterpolation(viper.GetString("render.interpolation"))),
	}
	if ua := viper.GetString("fetch.user_agent"); ua != "" {
		opts = append(opts, imgres.WithUserAgent(ua))
	}
	return opts
}

func parseInterpolation(s string) imgres.Interpolation {
	switch strings.ToLower(s) {
	case "nearest":
		return imgres.Nearest
	case "catmullrom", "bicubic":
		return imgres.CatmullRom
	default:
		return imgres.Bilinear
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
