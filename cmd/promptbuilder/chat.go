package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	authoring "github.com/koscakluka/promptbuilder/core"
	"github.com/koscakluka/promptbuilder/core/prompts"
	"github.com/koscakluka/promptbuilder/internal/tui"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newChatCommand(root *rootOptions) *cobra.Command {
	var initial string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive authoring session",
		Long: `Start an interactive authoring session.

In a terminal a full screen interface is shown. Enter sends an instruction,
alt+enter inserts a newline, tab fills in a suggestion, ctrl+x aborts the
response in progress, ctrl+y copies the prompt content and esc quits.

When stdout is not a terminal, or with --plain, every input line is sent as
one instruction and responses are printed as they complete.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if cfg.UI.Plain || !isTerminal(os.Stdout) {
				return runPlainChat(ctx, a, initial, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			return runInteractiveChat(ctx, a, initial)
		},
	}

	cmd.Flags().StringVar(&initial, "initial", "", "Instruction sent once when the session starts")
	cmd.Flags().Bool("plain", false, "Use line mode even in a terminal")
	return cmd
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runInteractiveChat(ctx context.Context, a *app, initial string) error {
	bridge := tui.NewBridge()
	defer bridge.Close()

	session := authoring.NewSession(a.backend, a.sessionOptions(bridge.SessionOptions()...)...)
	defer session.Close()

	model := tui.NewModel(ctx, session, bridge,
		tui.WithModelName(a.config.Session.ModelName),
		tui.WithInitialInstruction(initial),
		tui.WithDocument(a.form.Document),
		tui.WithGlamourStyle("auto"),
	)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run interface")
	}
	return a.form.Err()
}

// runPlainChat sends every line read from in as one instruction and prints
// the finalized responses to out.
func runPlainChat(ctx context.Context, a *app, initial string, in io.Reader, out io.Writer) error {
	session := authoring.NewSession(a.backend, a.sessionOptions(
		authoring.WithTurnCallback(func(turn prompts.Turn) {
			if turn.Role == prompts.RoleAssistant {
				fmt.Fprintln(out, tui.PlainTurn(turn))
			}
		}),
		authoring.WithSnapshotAppliedCallback(func(_ prompts.StateSnapshot, digest prompts.Digest) {
			fmt.Fprintln(out, tui.PlainDigest(digest))
		}),
	)...)
	defer session.Close()

	if initial != "" {
		fmt.Fprintln(out, "> "+initial)
		if _, err := session.SubmitInitial(ctx, initial); err != nil && !errors.Is(err, authoring.ErrEmptyInstruction) {
			return errors.Wrap(err, "submit initial instruction")
		}
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		err := session.Submit(ctx, scanner.Text())
		switch {
		case err == nil, errors.Is(err, authoring.ErrEmptyInstruction):
		case errors.Is(err, authoring.ErrClosed):
			return nil
		default:
			return errors.Wrap(err, "submit instruction")
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read instructions")
	}
	return a.form.Err()
}
