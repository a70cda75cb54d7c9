package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/esimov/facetrack/utils"
)

const HelpBanner = `
┌─┐┌─┐┌─┐┌─┐┌┬┐┬─┐┌─┐┌─┐┬┌─
├┤ ├─┤│  ├┤  │ ├┬┘├─┤│  ├┴┐
└  ┴ ┴└─┘└─┘ ┴ ┴└─┴ ┴└─┘┴ ┴

Real-time single face tracker.
    Version: %s
`

// Version indicates the current build version.
var Version = "dev"

// debug enables the verbose logging of the tracker state machine.
var debug bool

var rootCmd = &cobra.Command{
	Use:           "facetrack",
	Short:         "Real-time single face tracker",
	Long:          fmt.Sprintf(HelpBanner, Version),
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log the tracker state machine details")
	rootCmd.AddCommand(versionCmd)
}

// newLogger returns a console logger writing to stderr.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func main() {
	// Stop the frame replay on Ctrl+C or SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		stop()
		os.Exit(1)
	}
}
