package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/griffinplus/go-logfile/internal/corelog"
	"github.com/griffinplus/go-logfile/internal/logstore"
)

// log is the operational logger shared across subcommands; watch rebinds it to a rotating
// file sink when --log-file is given (see watch.go).
var log = corelog.NewStderr()

// Exit codes returned to the shell.
const (
	exitSuccess         = 0
	exitEngineError     = 1
	exitUsageError      = 2
	exitLifecycleMisuse = 3
)

var (
	cfgV    = viper.New()
	cfgFile string
	cfgMode string
)

var rootCmd = &cobra.Command{
	Use:           "logfilectl",
	Short:         "Create, inspect, and maintain log files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		fc, path, err := loadFileConfig()
		if err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
		cfgFile = path
		bindViperDefaults(cfgV, fc)

		cfgV.SetEnvPrefix("LOGFILECTL")
		cfgV.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		cfgV.AutomaticEnv()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgMode, "mode", "", "write mode: robust or fast")
}

func resolveWriteMode() logstore.WriteMode {
	mode := cfgMode
	if mode == "" {
		mode = cfgV.GetString("mode")
	}
	switch strings.ToLower(mode) {
	case "fast":
		return logstore.WriteModeFast
	default:
		return logstore.WriteModeRobust
	}
}

// exitCodeFor maps a core-library error to the process exit code it should produce.
func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	switch {
	case errors.Is(err, logstore.ErrAlreadyDisposed):
		return exitLifecycleMisuse
	case errors.Is(err, logstore.ErrArgumentOutOfRange), errors.Is(err, logstore.ErrInvalidLogFileFormat),
		errors.Is(err, logstore.ErrFileVersionNotSupported), errors.Is(err, logstore.ErrFileNotFound),
		errors.Is(err, logstore.ErrLogFileExistsAlready):
		return exitUsageError
	default:
		return exitEngineError
	}
}

func die(err error) {
	log.Errorf("%v", err)
	os.Exit(exitCodeFor(err))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		die(err)
	}
}
