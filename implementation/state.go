package implementation

import (
	contextpkg "context"
	"sync"

	"github.com/pkg/errors"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rainlang/rainlsp/rainlang"
	"github.com/rainlang/rainlsp/services"
)

// DocumentState is the parse of one version of a document. Queries against
// it hold its lock, since answering one may parse the document again.
type DocumentState struct {
	Version     protocol.Integer
	Document    *rainlang.Document
	Symbols     []protocol.DocumentSymbol
	Diagnostics []protocol.Diagnostic

	lock sync.Mutex
}

var documentStates sync.Map // protocol.DocumentUri to *DocumentState

// validateDocumentState returns the state of the current version of uri,
// parsing it when needed. A new state has its diagnostics published.
func validateDocumentState(uri protocol.DocumentUri, notify glsp.NotifyFunc) *DocumentState {
	documentState, created := _getOrCreateDocumentState(uri)

	if created {
		go publishDiagnostics(notify, uri, documentState.diagnostics())
	}

	return documentState
}

func deleteDocumentState(uri protocol.DocumentUri) {
	documentStates.Delete(uri)
}

func clearDocumentStates() {
	documentStates.Range(func(key interface{}, value interface{}) bool {
		documentStates.Delete(key)
		return true
	})
}

func _getOrCreateDocumentState(uri protocol.DocumentUri) (*DocumentState, bool) {
	if documentState, ok := documentStates.Load(uri); ok {
		documentState_ := documentState.(*DocumentState)
		if document, ok := getDocument(uri); !ok || document.Version == documentState_.Version {
			return documentState_, false
		}
		// stale, the document changed since
		documentState_ = _createDocumentState(uri)
		documentStates.Store(uri, documentState_)
		return documentState_, true
	} else {
		documentState := _createDocumentState(uri)
		if existing, loaded := documentStates.LoadOrStore(uri, documentState); loaded {
			return existing.(*DocumentState), false
		} else {
			return documentState, true
		}
	}
}

func _createDocumentState(uri protocol.DocumentUri) *DocumentState {
	var documentState DocumentState

	text, ok := getDocument(uri)
	if !ok {
		var err error
		if text, err = loadDocument(uri); err != nil {
			log.Errorf("%s", err.Error())
			return &documentState
		}
	}
	documentState.Version = text.Version

	document, err := services.Prepare(contextpkg.Background(), services.Raw{Text: text}, currentSettings())
	if err != nil {
		log.Errorf("%s", err.Error())
		return &documentState
	}
	documentState.Document = document

	if err := documentState.update(); err != nil {
		log.Errorf("%s", err.Error())
	}
	return &documentState
}

// refresh brings the document up to date with the current settings.
func (self *DocumentState) refresh() error {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.update()
}

func (self *DocumentState) update() error {
	if self.Document == nil {
		return nil
	}

	ctx := contextpkg.Background()
	in := services.Parsed{Document: self.Document}
	settings := currentSettings()

	diagnostics, err := services.GetDiagnostics(ctx, in, settings)
	if err != nil {
		return errors.Wrap(err, "diagnostics")
	}
	symbols, err := services.GetDocumentSymbols(ctx, in, settings)
	if err != nil {
		return errors.Wrap(err, "symbols")
	}

	self.Diagnostics = diagnostics
	self.Symbols = symbols
	return nil
}

func (self *DocumentState) diagnostics() []protocol.Diagnostic {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.Diagnostics
}
