package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/cli"
	"github.com/Veraticus/trash-scanner/internal/common"
	"github.com/Veraticus/trash-scanner/internal/model"
)

type searchResult struct {
	Outcome        string            `json:"outcome"`
	Message        string            `json:"message,omitempty"`
	Items          []model.WasteInfo `json:"items"`
	DismissAfterMs int64             `json:"dismissAfterMs,omitempty"`
}

func searchCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <item...>",
		Short: "Look up how to dispose of an item by name",
		Example: `  trashscan search plastic bottle
  trashscan search "pizza box" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, cleanup, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			return runSearch(ctx, app, strings.Join(args, " "), cmd.OutOrStdout(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func runSearch(ctx context.Context, app *assistant.App, query string, w io.Writer, asJSON bool) error {
	loc := app.Localizer()

	outcome, items, err := app.Search(ctx, query)
	if err != nil {
		return localized(app, err, "error.search")
	}

	result := searchResult{Outcome: outcome.String(), Items: items}
	if result.Items == nil {
		result.Items = []model.WasteInfo{}
	}
	switch outcome {
	case assistant.OutcomeCompliment:
		result.Message = app.Greeting() + " " + loc.T("compliment.message")
	case assistant.OutcomeNotFound:
		result.Message = loc.T("notFound.message")
		result.DismissAfterMs = assistant.NotFoundDelay.Milliseconds()
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	switch outcome {
	case assistant.OutcomeCompliment:
		_, err = fmt.Fprintln(w, cli.RenderBox(app.Greeting(), loc.T("compliment.message")))
	case assistant.OutcomeNotFound:
		_, err = fmt.Fprintln(w, cli.FormatWarning(loc.T("notFound.title")+". "+loc.T("notFound.message")))
	default:
		_, err = fmt.Fprintln(w, cli.FormatTitle(loc.T("result.title")))
		for _, item := range items {
			if err != nil {
				break
			}
			_, err = fmt.Fprintln(w, cli.FormatItem(item, loc))
		}
	}
	return err
}

// localized wraps err with the message for its localization key so the
// root command prints something the user can act on.
func localized(app *assistant.App, err error, fallback string) error {
	return fmt.Errorf("%s: %w", app.Localizer().T(common.UserErrorKey(err, fallback)), err)
}
