package main

import (
	contextpkg "context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	protocol "github.com/tliron/glsp/protocol_3_16"
	urlpkg "github.com/tliron/kutil/url"

	"github.com/rainlang/rainlsp/implementation"
	"github.com/rainlang/rainlsp/services"
	"github.com/rainlang/rainlsp/textdocument"
)

var markdown bool

var hoverCommand = &cobra.Command{
	Use:   "hover <file> <line> <character>",
	Short: "Print the hover at a zero based position of a document",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return errors.Wrap(err, "line")
		}
		character, err := strconv.ParseUint(args[2], 10, 32)
		if err != nil {
			return errors.Wrap(err, "character")
		}
		position := protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(character)}

		text, settings, err := prepareQuery(args[0])
		if err != nil {
			return err
		}
		if markdown {
			settings.DocumentationFormat = []protocol.MarkupKind{protocol.MarkupKindMarkdown}
		}

		hover, err := services.GetHover(contextpkg.Background(), services.Raw{Text: text}, position, settings)
		if err != nil {
			return err
		}
		return printJSON(hover)
	},
}

var diagnoseCommand = &cobra.Command{
	Use:   "diagnose <file>...",
	Short: "Print the diagnostics of documents, failing when there are any",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count := 0
		report := make(map[protocol.DocumentUri][]protocol.Diagnostic)
		for _, path := range args {
			text, settings, err := prepareQuery(path)
			if err != nil {
				return err
			}
			diagnostics, err := services.GetDiagnostics(contextpkg.Background(), services.Raw{Text: text}, settings)
			if err != nil {
				return err
			}
			report[text.URI] = diagnostics
			count += len(diagnostics)
		}

		if err := printJSON(report); err != nil {
			return err
		}
		if count > 0 {
			return errors.Errorf("%d problems found", count)
		}
		return nil
	},
}

func init() {
	hoverCommand.Flags().BoolVarP(&markdown, "markdown", "m", false, "ask for markdown content")
	rootCommand.AddCommand(hoverCommand)
	rootCommand.AddCommand(diagnoseCommand)
}

func prepareQuery(path string) (*textdocument.TextDocument, *services.Settings, error) {
	store, noMetaSearch, err := loadStore()
	if err != nil {
		return nil, nil, err
	}

	urlContext := urlpkg.NewContext()
	defer urlContext.Release()

	url, err := urlpkg.NewValidURL(path, nil, urlContext)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", path)
	}
	content, err := urlpkg.ReadString(url)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read %s", path)
	}

	uri := url.String()
	if absolute, err := filepath.Abs(path); err == nil {
		if _, err := os.Stat(absolute); err == nil {
			uri = "file://" + absolute
		}
	}

	text := textdocument.New(protocol.DocumentUri(uri), implementation.LanguageID, 0, content)
	return text, &services.Settings{MetaStore: store, NoMetaSearch: noMetaSearch}, nil
}

func printJSON(value interface{}) error {
	bytes, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(bytes))
	return nil
}
