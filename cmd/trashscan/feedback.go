package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/trash-scanner/internal/cli"
	"github.com/Veraticus/trash-scanner/internal/config"
	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/model"
	"github.com/Veraticus/trash-scanner/internal/sheets"
)

func feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Review and export reported mistakes",
	}

	cmd.AddCommand(feedbackListCmd())
	cmd.AddCommand(feedbackExportCmd())
	cmd.AddCommand(feedbackAuthCmd())
	return cmd
}

func feedbackListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored feedback reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, cleanup, err := openStoreApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			feedback, err := app.Feedback(ctx)
			if err != nil {
				return fmt.Errorf("failed to list feedback: %w", err)
			}
			return printFeedback(cmd.OutOrStdout(), feedback, app.Localizer())
		},
	}
}

func printFeedback(w io.Writer, feedback []model.Feedback, loc *i18n.Localizer) error {
	if len(feedback) == 0 {
		_, err := fmt.Fprintln(w, cli.FormatInfo("No feedback recorded yet."))
		return err
	}
	for _, f := range feedback {
		reasons := make([]string, 0, len(f.FeedbackType))
		for _, r := range f.FeedbackType {
			reasons = append(reasons, loc.T("feedback.reason."+string(r)))
		}
		lines := []string{
			cli.SubtleStyle.Render(f.Timestamp.Local().Format("2006-01-02 15:04") + "  " + f.ID),
		}
		if len(reasons) > 0 {
			lines = append(lines, strings.Join(reasons, ", "))
		}
		if f.Comments != "" {
			lines = append(lines, f.Comments)
		}
		if _, err := fmt.Fprintln(w, cli.RenderBox(cli.WarningIcon+" "+f.ReportedItem.WasteType, strings.Join(lines, "\n"))); err != nil {
			return err
		}
	}
	return nil
}

func feedbackExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export feedback to Google Sheets",
		Long: `Write every stored feedback report to a Google Sheets spreadsheet, replacing
its previous contents, with a summary of how often each reason was picked.

Authenticate first with 'trashscan feedback auth' or configure
sheets.service_account_path.`,
		RunE: runFeedbackExport,
	}

	cmd.Flags().String("spreadsheet-id", "", "Existing spreadsheet to write to")
	cmd.Flags().String("spreadsheet-name", "", "Name for a new spreadsheet")
	_ = viper.BindPFlag("sheets.spreadsheet_id", cmd.Flags().Lookup("spreadsheet-id"))
	_ = viper.BindPFlag("sheets.spreadsheet_name", cmd.Flags().Lookup("spreadsheet-name"))
	return cmd
}

func runFeedbackExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := config.LoadSheetsConfig()
	if err != nil {
		return fmt.Errorf("google sheets is not configured: %w", err)
	}

	app, cleanup, err := openStoreApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	feedback, err := app.Feedback(ctx)
	if err != nil {
		return fmt.Errorf("failed to list feedback: %w", err)
	}
	if len(feedback) == 0 {
		_, err := fmt.Fprintln(out, cli.FormatInfo("No feedback to export."))
		return err
	}

	return exportFeedback(ctx, feedback, out, func(progress func(int, int)) (sheets.FeedbackWriter, error) {
		writer, err := sheets.NewWriter(ctx, *cfg, slog.Default(), sheets.WithProgress(progress))
		if err != nil {
			return nil, err
		}
		return writer, nil
	})
}

// exportFeedback writes feedback through the writer built by newWriter,
// drawing a progress bar from the writer's batch callbacks.
func exportFeedback(ctx context.Context, feedback []model.Feedback, w io.Writer, newWriter func(progress func(int, int)) (sheets.FeedbackWriter, error)) error {
	bar := cli.NewProgress(len(feedback), "Exporting feedback", w)
	writer, err := newWriter(func(written, total int) {
		bar.ChangeMax(total)
		if err := bar.Set(written); err != nil {
			slog.Debug("Failed to update progress bar", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	if err := writer.Write(ctx, feedback); err != nil {
		return fmt.Errorf("failed to export feedback: %w", err)
	}
	_ = bar.Finish()

	_, err = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Exported %d feedback reports", len(feedback))))
	return err
}

func feedbackAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Open your browser to authenticate with Google
2. Save the refresh token for future use
3. Update your config file with the token

You'll need to run this once before 'trashscan feedback export'.`,
		RunE: runFeedbackAuth,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")
	return cmd
}

func runFeedbackAuth(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	flagID, _ := cmd.Flags().GetString("client-id")
	flagSecret, _ := cmd.Flags().GetString("client-secret")
	clientID := config.FirstNonEmpty(flagID, viper.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
	clientSecret := config.FirstNonEmpty(flagSecret, viper.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))

	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found. Please set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret flags")
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	tokenFile := filepath.Join(configDir, "trashscan", "sheets-token.json")

	slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

	token, err := sheets.AuthenticateOAuth2Interactive(ctx, sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
	}, func(url string) {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Open this URL to authorize access:"))
		fmt.Fprintln(cmd.OutOrStdout(), url)
		openBrowser(url)
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	viper.Set("sheets.client_id", clientID)
	viper.Set("sheets.client_secret", clientSecret)
	viper.Set("sheets.refresh_token", token.RefreshToken)

	if err := saveConfig(); err != nil {
		slog.Warn("Failed to update config file with refresh token", "error", err)
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Could not save the refresh token to the config file. Add this to config.yaml:"))
		fmt.Fprintf(cmd.OutOrStdout(), "sheets:\n  refresh_token: %q\n", token.RefreshToken)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Sheets is ready. Run 'trashscan feedback export' to upload reports."))
	return nil
}

func saveConfig() error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configFile = filepath.Join(home, ".config", "trashscan", "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0750); err != nil {
		return err
	}
	return viper.WriteConfigAs(configFile)
}

// openBrowser tries to open the URL in the default browser.
func openBrowser(url string) {
	var err error
	switch goos := runtime.GOOS; goos {
	case "linux":
		err = exec.Command("xdg-open", url).Start() //nolint:gosec,forbidigo
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start() //nolint:gosec,forbidigo
	case "darwin":
		err = exec.Command("open", url).Start() //nolint:gosec,forbidigo
	}
	if err != nil {
		slog.Debug("Failed to open browser", "error", err)
	}
}
