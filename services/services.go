// Package services answers semantic queries against parsed dotrain
// documents: hover, diagnostics and document symbols.
package services

import (
	"context"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rainlang/rainlsp/meta"
	"github.com/rainlang/rainlsp/rainlang"
	"github.com/rainlang/rainlsp/textdocument"
)

var log = logging.MustGetLogger("services")

// Settings are the client capabilities and options a query runs with. A nil
// *Settings means all defaults.
type Settings struct {
	// DocumentationFormat lists the formats the client renders, preferred
	// first. Only the first one is used.
	DocumentationFormat []protocol.MarkupKind
	// RelatedInformation selects the diagnostics shape.
	RelatedInformation *bool
	// MetaStore, when it differs from a parsed document's store, makes the
	// document rebind to it and parse again.
	MetaStore *meta.Store
	// NoMetaSearch is handed to the parser, also when a parsed document
	// rebinds.
	NoMetaSearch bool
}

// SettingsFromCapabilities reads the capabilities a client sent with its
// initialize request.
func SettingsFromCapabilities(capabilities protocol.ClientCapabilities) Settings {
	var settings Settings
	if textDocument := capabilities.TextDocument; textDocument != nil {
		if completion := textDocument.Completion; completion != nil && completion.CompletionItem != nil {
			settings.DocumentationFormat = completion.CompletionItem.DocumentationFormat
		}
		if publish := textDocument.PublishDiagnostics; publish != nil {
			settings.RelatedInformation = publish.RelatedInformation
		}
	}
	return settings
}

func (self *Settings) contentFormat() protocol.MarkupKind {
	if self != nil && len(self.DocumentationFormat) > 0 && self.DocumentationFormat[0] != "" {
		return self.DocumentationFormat[0]
	}
	return protocol.MarkupKindPlainText
}

func (self *Settings) relatedInformation() bool {
	return self != nil && self.RelatedInformation != nil && *self.RelatedInformation
}

func (self *Settings) metaStore() *meta.Store {
	if self == nil {
		return nil
	}
	return self.MetaStore
}

func (self *Settings) options() []rainlang.Option {
	if self == nil {
		return nil
	}
	return []rainlang.Option{rainlang.WithMetaSearch(!self.NoMetaSearch)}
}

// Input is what a query runs against: either Raw text or a Parsed document.
type Input interface {
	input()
}

// Raw text is always parsed afresh. MetaStore is the metadata source; when
// nil the settings' store is used, and failing that an empty one.
type Raw struct {
	Text      *textdocument.TextDocument
	MetaStore *meta.Store
}

// Parsed is a document from an earlier parse. It is parsed again only when
// the settings name a different meta store.
type Parsed struct {
	Document *rainlang.Document
}

func (Raw) input()    {}
func (Parsed) input() {}

// Prepare returns an up to date document for in.
func Prepare(ctx context.Context, in Input, settings *Settings) (*rainlang.Document, error) {
	switch in_ := in.(type) {
	case Raw:
		if in_.Text == nil {
			return nil, errors.New("no text to parse")
		}
		store := in_.MetaStore
		if store == nil {
			store = settings.metaStore()
		}
		document, err := rainlang.Create(ctx, in_.Text, store, settings.options()...)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", in_.Text.URI)
		}
		return document, nil

	case Parsed:
		document := in_.Document
		if document == nil {
			return nil, errors.New("no document")
		}
		if store := settings.metaStore(); store != nil && store != document.MetaStore() {
			log.Debugf("%s: rebinding meta store", document.TextDocument().URI)
			if err := document.Rebind(ctx, store, settings.options()...); err != nil {
				return nil, errors.Wrapf(err, "refresh meta for %s", document.TextDocument().URI)
			}
		}
		return document, nil

	default:
		return nil, errors.Errorf("unsupported input %T", in)
	}
}

// GetHover returns the hover at position, nil when there is nothing to show.
// The only errors come from preparing the document.
func GetHover(ctx context.Context, in Input, position protocol.Position, settings *Settings) (*protocol.Hover, error) {
	document, err := Prepare(ctx, in, settings)
	if err != nil {
		return nil, err
	}
	offset := document.TextDocument().OffsetAt(position)
	return ResolveHover(document, offset, settings.contentFormat()), nil
}

// GetDiagnostics returns one diagnostic per problem of the document.
func GetDiagnostics(ctx context.Context, in Input, settings *Settings) ([]protocol.Diagnostic, error) {
	document, err := Prepare(ctx, in, settings)
	if err != nil {
		return nil, err
	}
	return MapDiagnostics(document.AllProblems(), document.TextDocument(), settings.relatedInformation()), nil
}

// GetDocumentSymbols returns the document's bindings as symbols.
func GetDocumentSymbols(ctx context.Context, in Input, settings *Settings) ([]protocol.DocumentSymbol, error) {
	document, err := Prepare(ctx, in, settings)
	if err != nil {
		return nil, err
	}
	return DocumentSymbols(document), nil
}
