package implementation

import (
	contextpkg "context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rainlang/rainlsp/services"
)

// TextDocumentHover implements protocol.TextDocumentHoverFunc
func TextDocumentHover(context *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	documentState := validateDocumentState(params.TextDocument.URI, context.Notify)
	documentState.lock.Lock()
	defer documentState.lock.Unlock()

	if documentState.Document == nil {
		return nil, nil
	}
	hover, err := services.GetHover(contextpkg.Background(), services.Parsed{Document: documentState.Document}, params.Position, currentSettings())
	if err != nil {
		return nil, err
	}
	if hover != nil && getTraceValue() == protocol.TraceValueVerbose {
		log.Debugf("hover %s %d:%d: %v", params.TextDocument.URI, params.Position.Line, params.Position.Character, hover.Contents)
	}
	return hover, nil
}

// TextDocumentDocumentSymbol implements protocol.TextDocumentDocumentSymbolFunc
func TextDocumentDocumentSymbol(context *glsp.Context, params *protocol.DocumentSymbolParams) (interface{}, error) {
	documentState := validateDocumentState(params.TextDocument.URI, context.Notify)
	documentState.lock.Lock()
	defer documentState.lock.Unlock()

	if documentState.Symbols == nil {
		return []protocol.DocumentSymbol{}, nil
	}
	return documentState.Symbols, nil
}

// TextDocumentDefinition implements protocol.TextDocumentDefinitionFunc
func TextDocumentDefinition(context *glsp.Context, params *protocol.DefinitionParams) (interface{}, error) {
	documentState := validateDocumentState(params.TextDocument.URI, context.Notify)
	documentState.lock.Lock()
	defer documentState.lock.Unlock()

	if documentState.Document == nil {
		return nil, nil
	}
	location, err := services.GetDefinition(contextpkg.Background(), services.Parsed{Document: documentState.Document}, params.Position, currentSettings())
	if err != nil || location == nil {
		return nil, err
	}
	return *location, nil
}
