package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/cli"
	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/model"
)

// settingKeys lists what 'settings set' accepts, in help order.
var settingKeys = []string{"theme", "language", "interval", "sound", "expert", "reminder", "reminder-time"}

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
	}
	cmd.AddCommand(settingsShowCmd())
	cmd.AddCommand(settingsSetCmd())
	return cmd
}

func settingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the profile and settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, cleanup, err := openStoreApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			return printSettings(cmd.OutOrStdout(), app)
		},
	}
}

func settingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: fmt.Sprintf(`Change one setting. Keys: %s.

interval is the auto scan interval, from 1s to 5s ("2s" or 2000).
reminder-time is HH:MM.`, strings.Join(settingKeys, ", ")),
		Example: `  trashscan settings set theme ocean
  trashscan settings set language en
  trashscan settings set interval 3s`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, cleanup, err := openStoreApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			s, err := applySetting(app.Settings(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := app.UpdateSettings(ctx, s); err != nil {
				return localized(app, err, "error.settings")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(app.Localizer().T("settings.saved")))
			return err
		},
	}
}

// applySetting returns s with key set to value. The result is validated as
// a whole so range errors surface before anything is stored.
func applySetting(s model.AppSettings, key, value string) (model.AppSettings, error) {
	value = strings.TrimSpace(value)

	switch strings.ToLower(key) {
	case "theme":
		s.Theme = model.Theme(strings.ToLower(value))
	case "language", "lang":
		lang, ok := model.ParseLanguage(value)
		if !ok {
			return s, fmt.Errorf("unsupported language %q", value)
		}
		s.Language = lang
	case "interval":
		ms, err := parseInterval(value)
		if err != nil {
			return s, err
		}
		s.AutoScanInterval = ms
	case "sound":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return s, fmt.Errorf("sound must be true or false: %w", err)
		}
		s.SoundEffects = b
	case "expert":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return s, fmt.Errorf("expert must be true or false: %w", err)
		}
		s.ExpertMode = b
	case "reminder":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return s, fmt.Errorf("reminder must be true or false: %w", err)
		}
		s.EnableReminder = b
	case "reminder-time":
		s.ReminderTime = value
	default:
		return s, fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(settingKeys, ", "))
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// parseInterval accepts a Go duration or a bare millisecond count.
func parseInterval(value string) (int, error) {
	if ms, err := strconv.Atoi(value); err == nil {
		return ms, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: use a duration like 2s or milliseconds", value)
	}
	return int(d / time.Millisecond), nil
}

func printSettings(w io.Writer, app *assistant.App) error {
	loc := app.Localizer()
	s := app.Settings()
	p := app.Profile()

	onOff := func(b bool) string {
		if b {
			return cli.SuccessStyle.Render("on")
		}
		return cli.SubtleStyle.Render("off")
	}

	settings := []string{
		fmt.Sprintf("%s: %s", loc.T("theme.theme"), loc.T("theme."+string(s.Theme))),
		fmt.Sprintf("%s: %s", loc.T("settings.language"), s.Language.DisplayName()),
		fmt.Sprintf("%s: %s", loc.T("settings.camera.scanInterval"), loc.T("settings.camera.seconds", i18n.Vars{"value": float64(s.AutoScanInterval) / 1000})),
		fmt.Sprintf("%s: %s", loc.T("settings.camera.soundEffects"), onOff(s.SoundEffects)),
		fmt.Sprintf("%s: %s", loc.T("settings.expertMode.title"), onOff(s.ExpertMode)),
		fmt.Sprintf("%s: %s (%s)", loc.T("settings.notifications.title"), onOff(s.EnableReminder), s.ReminderTime),
	}
	if _, err := fmt.Fprintln(w, cli.RenderBox(loc.T("settings.title"), strings.Join(settings, "\n"))); err != nil {
		return err
	}

	if !p.SetupComplete {
		_, err := fmt.Fprintln(w, cli.FormatWarning(loc.T("error.setup")))
		return err
	}
	profile := []string{
		fmt.Sprintf("%s: %s", loc.T("setup.details.name"), p.Name),
		fmt.Sprintf("%s: %s", loc.T("setup.details.device"), loc.T("setup.device."+string(p.DeviceType))),
		fmt.Sprintf("%s: %s", loc.T("setup.details.gender"), p.Gender),
		fmt.Sprintf("%s: %s", loc.T("setup.details.dob"), p.DateOfBirth),
		fmt.Sprintf("%s: %s", loc.T("setup.details.salutation"), p.Salutation),
	}
	_, err := fmt.Fprintln(w, cli.RenderBox(loc.T("settings.personalInfo"), strings.Join(profile, "\n")))
	return err
}
