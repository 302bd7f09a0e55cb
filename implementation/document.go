package implementation

import (
	neturl "net/url"
	"strings"
	"sync"

	"github.com/pkg/errors"
	protocol "github.com/tliron/glsp/protocol_3_16"
	urlpkg "github.com/tliron/kutil/url"

	"github.com/rainlang/rainlsp/textdocument"
)

const LanguageID = "rainlang"

var documents sync.Map // protocol.DocumentUri to *textdocument.TextDocument

func getDocument(uri protocol.DocumentUri) (*textdocument.TextDocument, bool) {
	if document, ok := documents.Load(uri); ok {
		return document.(*textdocument.TextDocument), true
	} else {
		return nil, false
	}
}

func setDocument(document *textdocument.TextDocument) {
	documents.Store(document.URI, document)
}

func deleteDocument(uri protocol.DocumentUri) {
	documents.Delete(uri)
}

// loadDocument reads a document the client has not opened from disk.
func loadDocument(uri protocol.DocumentUri) (*textdocument.TextDocument, error) {
	urlContext := urlpkg.NewContext()
	defer urlContext.Release()

	path := uriToInternalPath(uri)
	url, err := urlpkg.NewValidURL(path, nil, urlContext)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", uri)
	}
	content, err := urlpkg.ReadString(url)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", uri)
	}
	return textdocument.New(uri, LanguageID, 0, content), nil
}

func uriToInternalPath(uri protocol.DocumentUri) string {
	path := strings.TrimPrefix(string(uri), "file://")
	if unescaped, err := neturl.PathUnescape(path); err == nil {
		return unescaped
	}
	return path
}
