package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/trash-scanner/internal/tui"
)

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Run onboarding (name, date of birth, gender, camera, language)",
		Long: `Open the onboarding wizard. The wizard also runs automatically the first time
the scanner starts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, tui.WithSetup())
		},
	}
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Open the scanner, search, quiz and chat",
		Long: `Open the interactive scanner. Frames come from camera.rear and camera.front,
each an image file, a directory of images or an http(s) snapshot URL.`,
		RunE: runScan,
	}
}

func runScan(cmd *cobra.Command, _ []string) error {
	return runTUI(cmd)
}

func runTUI(cmd *cobra.Command, extra ...tui.Option) error {
	ctx := cmd.Context()

	app, cleanup, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	bell := func() {
		_, _ = fmt.Fprint(os.Stdout, "\a")
	}
	opts := []tui.Option{
		tui.WithOpener(cameraOpener()),
		tui.WithLogger(slog.Default()),
		tui.WithBell(bell),
	}
	return tui.Run(ctx, app, append(opts, extra...)...)
}
