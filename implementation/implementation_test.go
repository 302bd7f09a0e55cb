package implementation

import (
	contextpkg "context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rainlang/rainlsp/meta"
	"github.com/rainlang/rainlsp/rainlang"
	"github.com/rainlang/rainlsp/services"
)

var deployerHash = "0x" + strings.Repeat("1a", 32)

var source = "@" + deployerHash + `
#main
total: int-add(1 2),
_: int-add(total 3);
`

func testStore(t *testing.T) *meta.Store {
	store := meta.NewStore()
	require.NoError(t, store.Add(deployerHash, &meta.Record{DISPair: &meta.DISPair{Opcodes: []meta.OpMeta{
		{Name: "int-add", Description: "Adds all inputs together."},
	}}}))
	return store
}

// capturingContext returns a context whose notifications end up on the
// returned channel.
func capturingContext() (*glsp.Context, chan *protocol.PublishDiagnosticsParams) {
	published := make(chan *protocol.PublishDiagnosticsParams, 64)
	return &glsp.Context{
		Notify: func(method string, params interface{}) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				published <- params.(*protocol.PublishDiagnosticsParams)
			}
		},
	}, published
}

// waitFor returns the first publish for uri that satisfies accept.
func waitFor(t *testing.T, published chan *protocol.PublishDiagnosticsParams, uri protocol.DocumentUri, accept func([]protocol.Diagnostic) bool) *protocol.PublishDiagnosticsParams {
	timeout := time.After(5 * time.Second)
	for {
		select {
		case params := <-published:
			if params.URI == uri && accept(params.Diagnostics) {
				return params
			}
		case <-timeout:
			t.Fatalf("no matching diagnostics published for %s", uri)
			return nil
		}
	}
}

func empty(diagnostics []protocol.Diagnostic) bool {
	return len(diagnostics) == 0
}

func setup(t *testing.T, store *meta.Store, noMetaSearch bool) {
	Configure(store, noMetaSearch)
	t.Cleanup(func() {
		require.NoError(t, Shutdown(nil))
		Configure(nil, false)
		setClientSettings(services.Settings{})
	})
}

func open(t *testing.T, context *glsp.Context, uri protocol.DocumentUri, text string) {
	require.NoError(t, TextDocumentDidOpen(context, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: LanguageID, Version: 1, Text: text},
	}))
}

func position(text string, needle string) protocol.Position {
	offset := strings.Index(text, needle)
	line := strings.Count(text[:offset], "\n")
	character := offset - strings.LastIndex(text[:offset], "\n") - 1
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(character)}
}

func TestInitialize(t *testing.T) {
	setup(t, nil, false)

	var params protocol.InitializeParams
	require.NoError(t, json.Unmarshal([]byte(`{
		"processId": 1,
		"rootUri": null,
		"capabilities": {"textDocument": {
			"completion": {"completionItem": {"documentationFormat": ["markdown"]}},
			"publishDiagnostics": {"relatedInformation": true}
		}}
	}`), &params))

	result, err := Initialize(&glsp.Context{}, &params)
	require.NoError(t, err)
	initializeResult, ok := result.(*protocol.InitializeResult)
	require.True(t, ok)
	require.NotNil(t, initializeResult.ServerInfo)
	assert.Equal(t, ServerName, initializeResult.ServerInfo.Name)
	assert.Equal(t, protocol.TextDocumentSyncKindIncremental, initializeResult.Capabilities.TextDocumentSync)
	assert.Equal(t, true, initializeResult.Capabilities.HoverProvider)
	assert.Equal(t, true, initializeResult.Capabilities.DefinitionProvider)
	assert.NotNil(t, initializeResult.Capabilities.DocumentSymbolProvider)

	current := currentSettings()
	assert.Equal(t, []protocol.MarkupKind{protocol.MarkupKindMarkdown}, current.DocumentationFormat)
	require.NotNil(t, current.RelatedInformation)
	assert.True(t, *current.RelatedInformation)
}

func TestOpenAndQuery(t *testing.T) {
	setup(t, testStore(t), false)
	context, published := capturingContext()
	uri := protocol.DocumentUri("file:///query.rain")

	open(t, context, uri, source)
	waitFor(t, published, uri, empty)

	hover, err := TextDocumentHover(context, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     position(source, "int-add(1"),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, hover)
	assert.Equal(t, "Adds all inputs together.", hover.Contents.(protocol.MarkupContent).Value)

	result, err := TextDocumentDocumentSymbol(context, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	symbols, ok := result.([]protocol.DocumentSymbol)
	require.True(t, ok)
	require.Len(t, symbols, 1)
	assert.Equal(t, "main", symbols[0].Name)
	require.Len(t, symbols[0].Children, 1)
	assert.Equal(t, "total", symbols[0].Children[0].Name)

	result, err = TextDocumentDefinition(context, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     position(source, "total 3"),
		},
	})
	require.NoError(t, err)
	location, ok := result.(protocol.Location)
	require.True(t, ok)
	assert.Equal(t, uri, location.URI)
	assert.Equal(t, position(source, "total:"), location.Range.Start)
}

func TestChangeRepublishes(t *testing.T) {
	setup(t, testStore(t), false)
	context, published := capturingContext()
	uri := protocol.DocumentUri("file:///change.rain")

	open(t, context, uri, source)
	waitFor(t, published, uri, empty)

	start := position(source, "int-add(1")
	end := start
	end.Character += protocol.UInteger(len("int-add"))
	require.NoError(t, TextDocumentDidChange(context, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []interface{}{
			protocol.TextDocumentContentChangeEvent{
				Range: protocol.Range{Start: start, End: end},
				Text:  "int-mul",
			},
		},
	}))

	params := waitFor(t, published, uri, func(diagnostics []protocol.Diagnostic) bool {
		return len(diagnostics) == 1
	})
	diagnostic := params.Diagnostics[0]
	assert.Equal(t, protocol.Integer(rainlang.UndefinedOpcode), diagnostic.Code.Value)
	assert.Equal(t, start, diagnostic.Range.Start)
	assert.Equal(t, end, diagnostic.Range.End)

	document, ok := getDocument(uri)
	require.True(t, ok)
	assert.Equal(t, protocol.Integer(2), document.Version)
	assert.Contains(t, document.Text(), "int-mul(1 2)")
}

func TestCloseClearsDiagnostics(t *testing.T) {
	setup(t, testStore(t), false)
	context, published := capturingContext()
	uri := protocol.DocumentUri("file:///close.rain")

	open(t, context, uri, "#main\n_: nope();")
	waitFor(t, published, uri, func(diagnostics []protocol.Diagnostic) bool {
		return len(diagnostics) > 0
	})

	require.NoError(t, TextDocumentDidClose(context, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	waitFor(t, published, uri, empty)

	_, ok := getDocument(uri)
	assert.False(t, ok)
}

func TestReload(t *testing.T) {
	setup(t, meta.NewStore(), true)
	context, published := capturingContext()
	require.NoError(t, Initialized(context, &protocol.InitializedParams{}))
	uri := protocol.DocumentUri("file:///reload.rain")

	open(t, context, uri, source)
	params := waitFor(t, published, uri, func(diagnostics []protocol.Diagnostic) bool {
		return len(diagnostics) > 0
	})
	assert.Equal(t, protocol.Integer(rainlang.UndefinedMeta), params.Diagnostics[0].Code.Value)

	Reload(testStore(t), true)
	waitFor(t, published, uri, empty)
}

type unreachableFetcher struct{}

func (unreachableFetcher) Fetch(ctx contextpkg.Context, hash string) (*meta.Record, error) {
	return nil, errors.New("source unreachable")
}

func TestReloadKeepsNoMetaSearch(t *testing.T) {
	setup(t, meta.NewStore(), false)
	context, published := capturingContext()
	require.NoError(t, Initialized(context, &protocol.InitializedParams{}))
	uri := protocol.DocumentUri("file:///reload-no-search.rain")

	open(t, context, uri, source)
	waitFor(t, published, uri, func(diagnostics []protocol.Diagnostic) bool {
		return len(diagnostics) > 0
	})

	// searching would hit the unreachable source and fail the refresh
	Reload(meta.NewStore(meta.WithFetcher(unreachableFetcher{})), true)
	params := waitFor(t, published, uri, func(diagnostics []protocol.Diagnostic) bool {
		return len(diagnostics) > 0
	})
	assert.Equal(t, protocol.Integer(rainlang.UndefinedMeta), params.Diagnostics[0].Code.Value)
	assert.True(t, currentSettings().NoMetaSearch)
}

func TestUnopenedDocumentFromDisk(t *testing.T) {
	setup(t, testStore(t), false)
	context, _ := capturingContext()

	path := filepath.Join(t.TempDir(), "disk.rain")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	result, err := TextDocumentDocumentSymbol(context, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentUri("file://" + path)},
	})
	require.NoError(t, err)
	symbols := result.([]protocol.DocumentSymbol)
	require.Len(t, symbols, 1)
	assert.Equal(t, "main", symbols[0].Name)
}

func TestUnreadableDocument(t *testing.T) {
	setup(t, testStore(t), false)
	context, _ := capturingContext()

	hover, err := TextDocumentHover(context, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///nonexistent/missing.rain"},
		},
	})
	assert.NoError(t, err)
	assert.Nil(t, hover)
}

func TestURIToInternalPath(t *testing.T) {
	assert.Equal(t, "/tmp/a b.rain", uriToInternalPath("file:///tmp/a%20b.rain"))
	assert.Equal(t, "relative.rain", uriToInternalPath("relative.rain"))
}
