package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/cli"
	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/quiz"
)

func quizCmd() *cobra.Command {
	var difficulty string

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Play the recycling quiz in the terminal",
		Long: `Play a timed multiple choice quiz. Easy has 10 questions in 10 minutes,
medium 15 in 15 minutes and hard 20 in 15 minutes. Without --difficulty the
tier follows expert mode.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, cleanup, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			d := app.DefaultDifficulty()
			if difficulty != "" {
				if d, err = quiz.ParseDifficulty(strings.ToLower(difficulty)); err != nil {
					return err
				}
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx, stop := handler.HandleInterrupts(ctx, "Quiz abandoned.")
			defer stop()

			reader := cli.NewNonBlockingReader(cmd.InOrStdin())
			err = runQuiz(ctx, app, d, reader, cmd.OutOrStdout())
			if handler.WasInterrupted() {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Quiz difficulty (easy, medium, hard)")
	return cmd
}

// runQuiz plays one session on the app clock. The countdown is checked
// after every answer; a late answer still finishes the session as timed out.
func runQuiz(ctx context.Context, app *assistant.App, d quiz.Difficulty, reader *cli.NonBlockingReader, w io.Writer) error {
	loc := app.Localizer()
	clock := app.Clock()

	fmt.Fprintln(w, cli.FormatTitle(loc.T("game.title")))
	fmt.Fprintln(w, cli.FormatInfo(loc.T("loader.generatingQuiz")))

	var session quiz.Session
	if err := session.Start(d); err != nil {
		return err
	}
	questions, tier, err := app.GenerateQuiz(ctx, d)
	if err != nil {
		session.Failed(err)
		return localized(app, err, "error.quiz")
	}
	if err := session.Loaded(questions); err != nil {
		return localized(app, err, "error.quiz")
	}

	deadline := clock.Now().Add(tier.Duration)
	bar := cli.NewProgress(len(questions), loc.T("game.title"), w)

	for session.Phase() == quiz.PhasePlaying {
		snap := session.Snapshot()
		q := snap.Question
		remaining := deadline.Sub(clock.Now())

		fmt.Fprintln(w)
		fmt.Fprintln(w, cli.BoldStyle.Render(loc.T("game.question", i18n.Vars{"current": snap.Index + 1, "total": snap.Total}))+
			"  "+cli.SubtleStyle.Render(loc.T("game.timeLeft", i18n.Vars{"time": quiz.FormatRemaining(max(remaining, 0))})))
		fmt.Fprintln(w, q.QuestionText)
		if q.ImageURL != "" && !strings.HasPrefix(q.ImageURL, "data:") {
			fmt.Fprintln(w, cli.SubtleStyle.Render(q.ImageURL))
		}
		for i, opt := range q.Options {
			fmt.Fprintf(w, "  %d. %s\n", i+1, opt)
		}

		choice, err := askChoice(ctx, reader, w, len(q.Options))
		if err != nil {
			return err
		}
		if !clock.Now().Before(deadline) {
			for session.Tick() {
			}
			break
		}

		correct, err := session.Answer(q.Options[choice])
		if err != nil {
			return err
		}
		if correct {
			fmt.Fprintln(w, cli.FormatSuccess(loc.T("game.correct")))
		} else {
			fmt.Fprintln(w, cli.FormatError(loc.T("game.incorrect", i18n.Vars{"answer": q.CorrectAnswer})))
		}
		if q.Explanation != "" {
			fmt.Fprintln(w, cli.SubtleStyle.Render(q.Explanation))
		}
		if err := bar.Add(1); err != nil {
			slog.Debug("Failed to update progress bar", "error", err)
		}
		if err := session.Next(); err != nil {
			return err
		}
	}

	printQuizResult(app, session.Snapshot(), w)
	return nil
}

func askChoice(ctx context.Context, reader *cli.NonBlockingReader, w io.Writer, n int) (int, error) {
	for {
		line, err := reader.Ask(ctx, w, fmt.Sprintf("1-%d", n))
		if err != nil {
			return 0, err
		}
		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && choice >= 1 && choice <= n {
			return choice - 1, nil
		}
		fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("Enter a number from 1 to %d", n)))
	}
}

func printQuizResult(app *assistant.App, s quiz.Snapshot, w io.Writer) {
	loc := app.Localizer()
	title := loc.T("game.result.completed")
	lines := []string{}
	if s.TimeUp {
		title = loc.T("game.result.timeUp")
		lines = append(lines, loc.T("game.result.timeUpMessage"))
	}
	lines = append(lines,
		loc.T("game.result.score", i18n.Vars{"score": s.Score, "total": s.Total}),
		loc.T(s.FeedbackKey()),
		cli.SubtleStyle.Render(loc.T("game.result.thanks", i18n.Vars{"name": app.Profile().Name})),
	)
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderBox(title, strings.Join(lines, "\n")))
}
