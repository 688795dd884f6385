package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool

	config *Config
	logger zerolog.Logger
)

// ExitError makes the process exit with Code without printing an error.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

var rootCmd = &cobra.Command{
	Use:   "fromcheck",
	Short: "Checks whether Dockerfile base images are pinned to their latest tags",
	Long: `fromcheck finds FROM instructions in Dockerfiles and compares every pinned
tag with the Docker Hub tags that follow the same version scheme.
"16.04" is compared with "18.04" and "20.04", but never with "latest" or "edge".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		config, err = LoadConfig(configPath)
		if err != nil {
			return err
		}

		return initLogger(config, verbose)
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}

	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file (env: CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")
}

func initLogger(cfg *Config, verbose bool) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	if cfg.LogFormat == PrettyLogFormat {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		zlog.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}

	zlog.Logger = zlog.Logger.Level(lvl)
	logger = zlog.Logger

	return nil
}
