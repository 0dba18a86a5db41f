package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/genert/emotion"
	"github.com/genert/emotion/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is the application version.
const Version = "0.1.0"

var (
	settingsFile string
	settings     *emotion.AppSettings
	log          *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "emotion",
	Short:         "Real-time facial emotion classification",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = emotion.NewSettings(settingsFile)
		if err != nil {
			return err
		}
		log, err = logging.Init(settings.LogSettings.Level, settings.LogSettings.Format)
		return err
	},
}

// Execute runs the root command until it returns or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "config.json", "Path to application's settings")
	rootCmd.AddCommand(runCmd, labelsCmd, classifyCmd)
}
