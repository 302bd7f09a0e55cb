package implementation

import (
	"sync"

	"github.com/op/go-logging"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rainlang/rainlsp/meta"
	"github.com/rainlang/rainlsp/services"
)

const ServerName = "rainlang-lsp"

var Version = "0.0.0-dev"

var log = logging.MustGetLogger("implementation")

// Handler routes the protocol messages the server answers.
var Handler protocol.Handler

func init() {
	Handler.Initialize = Initialize
	Handler.Initialized = Initialized
	Handler.Shutdown = Shutdown
	Handler.SetTrace = SetTrace
	Handler.TextDocumentDidOpen = TextDocumentDidOpen
	Handler.TextDocumentDidChange = TextDocumentDidChange
	Handler.TextDocumentDidSave = TextDocumentDidSave
	Handler.TextDocumentDidClose = TextDocumentDidClose
	Handler.TextDocumentHover = TextDocumentHover
	Handler.TextDocumentDocumentSymbol = TextDocumentDocumentSymbol
	Handler.TextDocumentDefinition = TextDocumentDefinition
}

var (
	settingsLock sync.RWMutex
	settings     services.Settings
	clientNotify glsp.NotifyFunc
)

// Configure sets the meta store documents are parsed against. Call it before
// serving.
func Configure(store *meta.Store, noMetaSearch bool) {
	settingsLock.Lock()
	defer settingsLock.Unlock()
	settings.MetaStore = store
	settings.NoMetaSearch = noMetaSearch
}

// Reload switches every open document to store and noMetaSearch, parses it
// again and publishes the new diagnostics.
func Reload(store *meta.Store, noMetaSearch bool) {
	settingsLock.Lock()
	settings.MetaStore = store
	settings.NoMetaSearch = noMetaSearch
	notify := clientNotify
	settingsLock.Unlock()

	documentStates.Range(func(key interface{}, value interface{}) bool {
		uri := key.(protocol.DocumentUri)
		documentState := value.(*DocumentState)
		if err := documentState.refresh(); err != nil {
			log.Errorf("%s", err.Error())
			return true
		}
		publishDiagnostics(notify, uri, documentState.diagnostics())
		return true
	})
}

func setClientSettings(client services.Settings) {
	settingsLock.Lock()
	defer settingsLock.Unlock()
	settings.DocumentationFormat = client.DocumentationFormat
	settings.RelatedInformation = client.RelatedInformation
}

func setClientNotify(notify glsp.NotifyFunc) {
	settingsLock.Lock()
	defer settingsLock.Unlock()
	clientNotify = notify
}

func currentSettings() *services.Settings {
	settingsLock.RLock()
	defer settingsLock.RUnlock()
	settings_ := settings
	return &settings_
}

func publishDiagnostics(notify glsp.NotifyFunc, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if notify == nil {
		return
	}
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}
