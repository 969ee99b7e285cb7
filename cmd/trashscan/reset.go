package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/cli"
)

func resetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the profile, settings and feedback",
		Long: `Reset removes everything trashscan has stored and returns it to first-run
state. The next start opens the onboarding wizard again.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, cleanup, err := openStoreApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			reader := cli.NewNonBlockingReader(cmd.InOrStdin())
			return runReset(ctx, app, reader, cmd.OutOrStdout(), force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

func runReset(ctx context.Context, app *assistant.App, reader *cli.NonBlockingReader, w io.Writer, force bool) error {
	loc := app.Localizer()

	if !force {
		if _, err := fmt.Fprintln(w, cli.FormatWarning(loc.T("settings.data.resetDescription"))); err != nil {
			return err
		}
		ok, err := reader.Confirm(ctx, w, loc.T("settings.data.confirmReset"))
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if !ok {
			_, err := fmt.Fprintln(w, "Reset canceled.")
			return err
		}
	}

	if err := app.Reset(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, cli.FormatSuccess("Reset complete. Run 'trashscan' to set up again."))
	return err
}
