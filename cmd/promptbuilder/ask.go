package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	authoring "github.com/koscakluka/promptbuilder/core"
	"github.com/koscakluka/promptbuilder/internal/tui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newAskCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <instruction>",
		Short: "Send one instruction and print the response",
		Long: `Send one instruction, print the tool calls and the response, and save
the updated document.`,
		Example: `  promptbuilder ask "Create a prompt that summarizes meeting notes"`,
		Args:    cobra.MinimumNArgs(1),
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

			var failed atomic.Bool
			session := authoring.NewSession(a.backend, a.sessionOptions(
				authoring.WithPhaseCallback(func(phase authoring.Phase) {
					if phase == authoring.PhaseError {
						failed.Store(true)
					}
				}),
			)...)
			defer session.Close()

			if err := session.Submit(ctx, strings.Join(args, " ")); err != nil {
				return errors.Wrap(err, "submit instruction")
			}

			out := cmd.OutOrStdout()
			transcript := session.Transcript()
			fmt.Fprintln(out, tui.PlainTurn(transcript[len(transcript)-1]))
			if failed.Load() {
				return errors.New("request failed")
			}

			if digest, ok := session.LastDigest(); ok {
				fmt.Fprintln(out, tui.PlainDigest(digest))
			}
			if err := a.form.Err(); err != nil {
				return errors.Wrap(err, "save document")
			}
			return nil
		},
	}
}
