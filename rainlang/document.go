// Package rainlang parses dotrain documents into imports, bindings and
// rainlang expression trees, collecting the problems found along the way.
package rainlang

import (
	"context"

	"github.com/op/go-logging"
	"github.com/pkg/errors"

	"github.com/rainlang/rainlsp/meta"
	"github.com/rainlang/rainlsp/textdocument"
)

var log = logging.MustGetLogger("rainlang")

// Document is a parsed dotrain document. Every Parse replaces the imports,
// bindings and problems wholesale; the slices handed out are never modified
// afterwards.
type Document struct {
	text         *textdocument.TextDocument
	store        *meta.Store
	noMetaSearch bool

	imports  []Import
	bindings []Binding
	problems problems
}

type Option func(*Document)

// WithNoMetaSearch keeps Parse from asking the store's fetcher for imports it
// does not hold locally.
func WithNoMetaSearch() Option {
	return func(d *Document) {
		d.noMetaSearch = true
	}
}

// WithMetaSearch turns fetcher lookups for unknown imports on or off.
func WithMetaSearch(enabled bool) Option {
	return func(d *Document) {
		d.noMetaSearch = !enabled
	}
}

// New creates an unparsed document. A nil store is replaced by an empty one.
func New(text *textdocument.TextDocument, store *meta.Store, opts ...Option) *Document {
	if store == nil {
		store = meta.NewStore()
	}
	document := &Document{
		text:  text,
		store: store,
	}
	for _, opt := range opts {
		opt(document)
	}
	return document
}

// Create is New followed by Parse.
func Create(ctx context.Context, text *textdocument.TextDocument, store *meta.Store, opts ...Option) (*Document, error) {
	document := New(text, store, opts...)
	if err := document.Parse(ctx); err != nil {
		return nil, err
	}
	return document, nil
}

func (self *Document) TextDocument() *textdocument.TextDocument {
	return self.text
}

func (self *Document) MetaStore() *meta.Store {
	return self.store
}

func (self *Document) NoMetaSearch() bool {
	return self.noMetaSearch
}

func (self *Document) Imports() []Import {
	return self.imports
}

func (self *Document) Bindings() []Binding {
	return self.bindings
}

// Binding returns the binding called name.
func (self *Document) Binding(name string) (*Binding, bool) {
	for i := range self.bindings {
		if self.bindings[i].Name == name {
			return &self.bindings[i], true
		}
	}
	return nil, false
}

// AllProblems returns every problem of the last parse ordered by position.
func (self *Document) AllProblems() []Problem {
	return self.problems.sorted()
}

// Rebind switches the document to store, applies opts and parses it again.
// When the parse fails the document keeps its previous store, options and
// parse result.
func (self *Document) Rebind(ctx context.Context, store *meta.Store, opts ...Option) error {
	if store == nil {
		return errors.New("cannot rebind to a nil meta store")
	}

	previousStore, previousNoMetaSearch := self.store, self.noMetaSearch
	self.store = store
	for _, opt := range opts {
		opt(self)
	}
	if err := self.Parse(ctx); err != nil {
		self.store, self.noMetaSearch = previousStore, previousNoMetaSearch
		return err
	}
	return nil
}

// Parse parses the current text. Syntax problems are recorded, not returned;
// the only error is a meta search that failed for a reason other than the
// hash being unknown, in which case the previous parse result is kept.
func (self *Document) Parse(ctx context.Context) error {
	parser := documentParser{
		ctx:          ctx,
		store:        self.store,
		noMetaSearch: self.noMetaSearch,
	}
	if err := parser.parse(self.text.Text()); err != nil {
		log.Errorf("%s: %s", self.text.URI, err.Error())
		return err
	}

	self.imports = parser.imports
	self.bindings = parser.bindings
	self.problems = parser.problems
	return nil
}
