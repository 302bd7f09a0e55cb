// Package textdocument keeps the text of an open document and converts between
// LSP positions (line, UTF-16 character) and absolute byte offsets.
package textdocument

import (
	"sort"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// TextDocument is a snapshot of a document's text. Offsets are byte offsets
// into the content.
type TextDocument struct {
	URI        protocol.DocumentUri
	LanguageID string
	Version    protocol.Integer

	content     string
	lineOffsets []int
}

func New(uri protocol.DocumentUri, languageID string, version protocol.Integer, content string) *TextDocument {
	return &TextDocument{
		URI:         uri,
		LanguageID:  languageID,
		Version:     version,
		content:     content,
		lineOffsets: computeLineOffsets(content),
	}
}

// Text returns the whole content.
func (self *TextDocument) Text() string {
	return self.content
}

// GetText returns the text covered by r, or the whole content when r is nil.
func (self *TextDocument) GetText(r *protocol.Range) string {
	if r == nil {
		return self.content
	}
	start := self.OffsetAt(r.Start)
	end := self.OffsetAt(r.End)
	if end < start {
		start, end = end, start
	}
	return self.content[start:end]
}

func (self *TextDocument) LineCount() int {
	return len(self.lineOffsets)
}

// OffsetAt converts a position to a byte offset, clamping to the document.
func (self *TextDocument) OffsetAt(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(self.lineOffsets) {
		return len(self.content)
	}

	lineStart := self.lineOffsets[line]
	lineEnd := len(self.content)
	if line+1 < len(self.lineOffsets) {
		lineEnd = self.lineOffsets[line+1]
	}

	offset := lineStart
	units := protocol.UInteger(0)
	for offset < lineEnd && units < pos.Character {
		r, size := utf8.DecodeRuneInString(self.content[offset:])
		units += utf16Len(r)
		offset += size
	}
	return offset
}

// PositionAt converts a byte offset to a position, clamping to the document.
func (self *TextDocument) PositionAt(offset int) protocol.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(self.content) {
		offset = len(self.content)
	}

	// index of the last line starting at or before offset
	line := sort.Search(len(self.lineOffsets), func(i int) bool {
		return self.lineOffsets[i] > offset
	}) - 1

	lineStart := self.lineOffsets[line]
	character := protocol.UInteger(0)
	for _, r := range self.content[lineStart:offset] {
		character += utf16Len(r)
	}

	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: character,
	}
}

// Range builds the protocol range for the half-open byte span [start, end).
func (self *TextDocument) Range(start int, end int) protocol.Range {
	return protocol.Range{
		Start: self.PositionAt(start),
		End:   self.PositionAt(end),
	}
}

// Update applies content change events as received in a didChange
// notification and returns the resulting document.
func (self *TextDocument) Update(changes []interface{}, version protocol.Integer) *TextDocument {
	content := self.content
	for _, change := range changes {
		if change_, ok := change.(protocol.TextDocumentContentChangeEvent); ok {
			current := New(self.URI, self.LanguageID, version, content)
			startIndex, endIndex := current.rangeToIndex(change_.Range)
			content = content[:startIndex] + change_.Text + content[endIndex:]
		} else if change_, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			content = change_.Text
		}
	}
	return New(self.URI, self.LanguageID, version, content)
}

func (self *TextDocument) rangeToIndex(r protocol.Range) (int, int) {
	start := self.OffsetAt(r.Start)
	end := self.OffsetAt(r.End)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func computeLineOffsets(content string) []int {
	offsets := []int{0}
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\r':
			if i+1 < len(content) && content[i+1] == '\n' {
				i++
			}
			offsets = append(offsets, i+1)
		case '\n':
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

func utf16Len(r rune) protocol.UInteger {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
