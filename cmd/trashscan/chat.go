package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/chat"
	"github.com/Veraticus/trash-scanner/internal/cli"
	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/model"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <item...>",
		Short: "Ask follow-up questions about an item",
		Long: `Start a conversation about one item. Type a question and press enter; an
empty line or "exit" ends the chat.`,
		Example: "  trashscan chat lithium battery",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, cleanup, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx, stop := handler.HandleInterrupts(ctx, "")
			defer stop()

			reader := cli.NewNonBlockingReader(cmd.InOrStdin())
			err = runChat(ctx, app, strings.Join(args, " "), reader, cmd.OutOrStdout())
			if handler.WasInterrupted() {
				return nil
			}
			return err
		},
	}
}

func runChat(ctx context.Context, app *assistant.App, item string, reader *cli.NonBlockingReader, w io.Writer) error {
	if !app.SetupComplete() {
		return localized(app, errors.New("setup incomplete"), "error.setup")
	}
	conv := app.NewConversation(model.WasteInfo{WasteType: item})

	fmt.Fprintln(w, cli.FormatTitle(app.Localizer().T("chat.title", i18n.Vars{"item": conv.Item()})))
	for _, msg := range conv.Messages() {
		printTurn(w, msg)
	}

	for {
		text, err := reader.Ask(ctx, w, "")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if text == "" || strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit") {
			return nil
		}

		reply, err := conv.Send(ctx, text)
		if errors.Is(err, chat.ErrBusy) {
			return err
		}
		// A failed call still yields the localized apology turn.
		printTurn(w, reply)
	}
}

func printTurn(w io.Writer, msg model.ChatMessage) {
	if msg.Role == model.RoleUser {
		fmt.Fprintln(w, cli.BoldStyle.Render("you: ")+msg.Text)
		return
	}
	fmt.Fprintln(w, cli.InfoStyle.Render(cli.RecycleIcon+" ")+msg.Text)
}
