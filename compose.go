package main

import (
	contextpkg "context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rainlang/rainlsp/services"
)

var (
	entrypoints   []string
	localDataOnly bool
)

var composeCommand = &cobra.Command{
	Use:   "compose <file>",
	Short: "Compose entrypoints of a .rain document to rainlang",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		composed, err := compose(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, composed)
		return nil
	},
}

func init() {
	flags := composeCommand.Flags()
	flags.StringSliceVarP(&entrypoints, "entrypoints", "e", nil, "bindings to compose, in order (required)")
	flags.BoolVarP(&force, "force", "f", false, "skip rainconfig includes and records that cannot be used")
	flags.BoolVar(&localDataOnly, "local-data-only", false, "only use the metadata the rainconfig holds, never search its sources")
	composeCommand.MarkFlagRequired("entrypoints")
	rootCommand.AddCommand(composeCommand)
}

func compose(path string) (string, error) {
	text, settings, err := prepareQuery(path)
	if err != nil {
		return "", err
	}
	if localDataOnly {
		settings.NoMetaSearch = true
	}
	return services.GetCompose(contextpkg.Background(), services.Raw{Text: text}, entrypoints, settings)
}
