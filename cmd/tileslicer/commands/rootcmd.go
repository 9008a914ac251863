package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thediveo/enumflag/v2"
)

// Map zerolog levels to their textual representations
var LogLevelIds = map[zerolog.Level][]string{
	zerolog.PanicLevel: {"panic"},
	zerolog.FatalLevel: {"fatal"},
	zerolog.ErrorLevel: {"error"},
	zerolog.WarnLevel:  {"warn", "warning"},
	zerolog.InfoLevel:  {"info"},
	zerolog.DebugLevel: {"debug"},
	zerolog.TraceLevel: {"trace"},
}

// Global log level variable with default
var logLevel zerolog.Level = zerolog.InfoLevel

var versionInfo = struct {
	version, commit, date string
}{"dev", "none", "unknown"}

var rootCmd = &cobra.Command{
	Use:   "tileslicer",
	Short: "Slice images into a grid of tiles and join tiles back into one image",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		ConfigureLogging()
	},
	SilenceUsage: true,
}

func SetVersionInfo(version, commit, date string) {
	versionInfo.version, versionInfo.commit, versionInfo.date = version, commit, date
	rootCmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)
}

func getPath() string {
	return filepath.Join(map[string]string{
		"windows": filepath.Join(os.Getenv("APPDATA")),
		"darwin":  filepath.Join(os.Getenv("HOME"), ".config"),
		"linux":   filepath.Join(os.Getenv("HOME"), ".config"),
	}[runtime.GOOS], "TileSlicer")
}

func init() {
	cobra.OnInitialize(initConfig)

	viper.SetEnvPrefix("TILESLICER")
	viper.AutomaticEnv()
	// Unprefixed, shared with other tools
	_ = viper.BindEnv("log_level", "LOG_LEVEL")
	_ = viper.BindEnv("s3_access_key", "TILESLICER_S3_ACCESS_KEY")
	_ = viper.BindEnv("s3_secret_key", "TILESLICER_S3_SECRET_KEY")

	// Add log level flag (accepts zerolog levels: panic, fatal, error, warn, info, debug, trace)
	rootCmd.PersistentFlags().VarP(
		enumflag.New(&logLevel, "log", LogLevelIds, enumflag.EnumCaseInsensitive),
		"log", "l",
		"Set log level; can be 'panic', 'fatal', 'error', 'warn', 'info', 'debug', or 'trace'")
}

var configOnce sync.Once

// initConfig loads config.yaml from the user config folder, writing an empty one on first run.
func initConfig() {
	configOnce.Do(loadConfig)
}

func loadConfig() {
	configFolder := getPath()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolder)

	err := os.MkdirAll(configFolder, os.ModePerm)
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			err := viper.SafeWriteConfig()
			if err != nil {
				panic(fmt.Errorf("fatal error config file: %w", err))
			}
		} else {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}
}

// Execute executes the root command. Ctrl-C cancels the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	// A second Ctrl-C gets the default handler and kills the process.
	context.AfterFunc(ctx, stop)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal().Err(err).Msg("Command execution failed")
	}
}

func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// ConfigureLogging sets up zerolog based on command-line flags and environment variables
func ConfigureLogging() {
	// Start with default log level (info)
	level := zerolog.InfoLevel

	// Check LOG_LEVEL environment variable first
	envLogLevel := viper.GetString("log_level")
	if envLogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(envLogLevel); err == nil {
			level = parsedLevel
		}
	}

	// Command-line log flag takes precedence over environment variable
	if logLevel != zerolog.InfoLevel {
		level = logLevel
	}

	zerolog.SetGlobalLevel(level)

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: false,
	})
}

// commandContext is the context of cmd, Background when it runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
