package main

import (
	"log/slog"

	"github.com/koscakluka/promptbuilder/internal/config"
	"github.com/koscakluka/promptbuilder/internal/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootOptions struct {
	configPath string
	debug      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "promptbuilder",
		Short: "Build prompts by talking to a prompt builder backend",
		Long: `Describe the prompt you want and the backend builds it: it searches
existing prompts for examples, then sets the title, description, content,
type, tags and category of the prompt document.

The document is kept in a YAML file (prompt.yaml by default) and updated
every time a response completes.

Quick Start:
  promptbuilder chat                                 # interactive session
  promptbuilder chat --initial "A code review prompt" # start with an instruction
  promptbuilder ask "Make the description shorter"    # one request
  promptbuilder schema request                       # JSON Schema of the request body`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
				slog.SetDefault(slog.New(handler))
				logging.Install(handler)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default promptbuilder.yaml in . or the user config directory)")
	flags.BoolVar(&opts.debug, "debug", false, "Log debug output to stderr")
	flags.String("backend-url", "", "Backend chat endpoint")
	flags.String("transport", "", "Backend transport: http or websocket")
	flags.Duration("timeout", 0, "Bound every request, 0 disables it")
	flags.String("document", "", "Prompt document file")
	flags.String("reference", "", "Tags and categories file sent with every request")

	root.AddCommand(
		newChatCommand(opts),
		newAskCommand(opts),
		newSchemaCommand(),
	)
	return root
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"backend-url": "backend.url",
	"transport":   "backend.transport",
	"timeout":     "backend.timeout",
	"document":    "document.path",
	"reference":   "document.reference_path",
	"plain":       "ui.plain",
}

// loadConfig reads the configuration with the flags of cmd taking
// precedence over the file and the environment.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	bindFlags := func(v *viper.Viper) error {
		for name, key := range flagKeys {
			flag := cmd.Flags().Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return errors.Wrapf(err, "bind flag %s", name)
			}
		}
		return nil
	}

	cfg, err := config.LoadConfig(o.configPath, bindFlags)
	if err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	slog.Debug("configuration loaded",
		"backend", cfg.Backend.URL,
		"transport", cfg.Backend.Transport,
		"document", cfg.Document.Path,
	)
	return cfg, nil
}
