package implementation

import (
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rainlang/rainlsp/services"
)

var (
	traceLock  sync.Mutex
	traceValue protocol.TraceValue = protocol.TraceValueOff
)

// protocol.InitializeFunc signature
func Initialize(context *glsp.Context, params *protocol.InitializeParams) (interface{}, error) {
	setClientSettings(services.SettingsFromCapabilities(params.Capabilities))
	if params.Trace != nil {
		setTraceValue(*params.Trace)
	}

	capabilities := Handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindIncremental
	capabilities.DefinitionProvider = true
	capabilities.HoverProvider = true

	return &protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: &Version,
		},
	}, nil
}

// protocol.InitializedFunc signature
func Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	setClientNotify(context.Notify)
	log.Info("client initialized")
	return nil
}

// protocol.ShutdownFunc signature
func Shutdown(context *glsp.Context) error {
	setTraceValue(protocol.TraceValueOff)
	setClientNotify(nil)
	clearDocumentStates()
	return nil
}

// protocol.SetTraceFunc signature
func SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	setTraceValue(params.Value)
	return nil
}

func setTraceValue(value protocol.TraceValue) {
	traceLock.Lock()
	defer traceLock.Unlock()
	traceValue = value
	log.Debugf("trace: %s", value)
}

func getTraceValue() protocol.TraceValue {
	traceLock.Lock()
	defer traceLock.Unlock()
	return traceValue
}
