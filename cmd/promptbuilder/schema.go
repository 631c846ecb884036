package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/koscakluka/promptbuilder/core/contract"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [" + strings.Join(contract.Names(), "|") + "]",
		Short: "Print the JSON Schema of the backend contract",
		Long: `Print the JSON Schema of the request body, the streamed event or the
document state. Without an argument all schemas are printed, keyed by name.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: contract.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := contract.Names()
			if len(args) == 1 {
				names = args[:1]
			}

			schemas := make(map[string]*jsonschema.Schema, len(names))
			for _, name := range names {
				schema, err := contract.Schema(name)
				if err != nil {
					return errors.Wrapf(err, "build %s schema", name)
				}
				schemas[name] = schema
			}

			var value any = schemas
			if len(args) == 1 {
				value = schemas[args[0]]
			}
			data, err := json.MarshalIndent(value, "", "  ")
			if err != nil {
				return errors.Wrap(err, "marshal schema")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
