package rainlang

import (
	"context"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/rainlang/rainlsp/meta"
)

var (
	decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?(e[0-9]+)?$`)
	hexPattern     = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)
	namePattern    = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
)

func isLiteral(s string) bool {
	return decimalPattern.MatchString(s) || hexPattern.MatchString(s)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// documentParser parses the top level of a dotrain document: comments,
// imports and bindings. Binding contents are handed to expressionParser.
type documentParser struct {
	ctx          context.Context
	store        *meta.Store
	noMetaSearch bool

	imports  []Import
	bindings []Binding
	problems problems

	opcodes []meta.OpMeta
}

func (self *documentParser) parse(raw string) error {
	text := self.fillComments(raw)

	for i := 0; i < len(text); {
		switch c := text[i]; {
		case isSpace(c):
			i++
		case c == '@':
			i = self.parseImport(text, i)
		case c == '#':
			i = self.parseBinding(text, i)
		default:
			end := wordEnd(text, i)
			self.problems.add(UnexpectedToken, Offsets{i, end - 1}, "unexpected token: %s", text[i:end])
			i = end
		}
	}

	if err := self.resolveImports(); err != nil {
		return err
	}
	self.parseContents()
	return nil
}

// fillComments blanks out every comment so offsets stay aligned with the raw
// text.
func (self *documentParser) fillComments(raw string) string {
	text := []byte(raw)
	for i := 0; i+1 < len(text); i++ {
		if text[i] != '/' || text[i+1] != '*' {
			continue
		}
		start := i
		end := strings.Index(raw[i+2:], "*/")
		if end < 0 {
			self.problems.add(UnexpectedEndOfComment, Offsets{start, len(text) - 1}, "unexpected end of comment")
			end = len(text) - 1
		} else {
			end = i + 2 + end + 1
		}
		for j := start; j <= end; j++ {
			if text[j] != '\n' && text[j] != '\r' {
				text[j] = ' '
			}
		}
		i = end
	}
	return string(text)
}

// wordEnd returns the index after the run of non space characters at i.
func wordEnd(text string, i int) int {
	for i < len(text) && !isSpace(text[i]) {
		i++
	}
	return i
}

func skipSpaces(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

func (self *documentParser) parseImport(text string, start int) int {
	i := start + 1
	end := wordEnd(text, i)
	word := text[i:end]

	imp := Import{Position: Offsets{start, end - 1}}
	if !strings.HasPrefix(word, "0x") {
		// namespaced import: "@name 0x..."
		imp.Name = word
		next := skipSpaces(text, end)
		if next < len(text) && text[next] != '#' && text[next] != '@' {
			i = next
			end = wordEnd(text, i)
			word = text[i:end]
		} else {
			word = ""
		}
	}

	if word == "" {
		self.problems.add(InvalidImport, imp.Position, "expected a meta hash")
		return end
	}

	imp.Hash = word
	imp.HashPosition = Offsets{i, end - 1}
	imp.Position[1] = end - 1
	if imp.Name != "" && !namePattern.MatchString(imp.Name) {
		self.problems.add(InvalidImport, imp.Position, "invalid import name: %s", imp.Name)
	}
	if !meta.IsHash(word) {
		self.problems.add(InvalidHash, imp.HashPosition, "invalid meta hash: %s", word)
	} else {
		for _, previous := range self.imports {
			if meta.NormalizeHash(previous.Hash) == meta.NormalizeHash(word) {
				self.problems.add(DuplicateImport, imp.HashPosition, "duplicate import: %s", word)
				break
			}
		}
	}
	self.imports = append(self.imports, imp)
	return end
}

func (self *documentParser) parseBinding(text string, start int) int {
	nameStart := start + 1
	nameEnd := wordEnd(text, nameStart)
	contentEnd := strings.IndexByte(text[nameEnd:], '#')
	if contentEnd < 0 {
		contentEnd = len(text)
	} else {
		contentEnd += nameEnd
	}

	binding := Binding{
		Name:         text[nameStart:nameEnd],
		NamePosition: Offsets{nameStart, nameEnd - 1},
	}
	if binding.Name == "" {
		self.problems.add(ExpectedName, Offsets{start, start}, "expected binding name")
		binding.NamePosition = Offsets{start, start}
	} else if !namePattern.MatchString(binding.Name) {
		self.problems.add(ExpectedName, binding.NamePosition, "invalid binding name: %s", binding.Name)
	} else if _, ok := self.binding(binding.Name); ok {
		self.problems.add(DuplicateIdentifier, binding.NamePosition, "duplicate binding: %s", binding.Name)
	}

	contentStart := skipSpaces(text, nameEnd)
	last := contentEnd - 1
	for last >= contentStart && isSpace(text[last]) {
		last--
	}

	if contentStart > last {
		// empty: a span that contains nothing
		binding.ContentPosition = Offsets{nameEnd, nameEnd - 1}
		binding.Expression = &Expression{}
		self.problems.add(InvalidEmptyBinding, binding.NamePosition, "invalid empty binding: %s", binding.Name)
	} else {
		binding.Content = text[contentStart : last+1]
		binding.ContentPosition = Offsets{contentStart, last}
	}

	binding.Position = Offsets{start, binding.NamePosition.End()}
	if binding.Content != "" {
		binding.Position[1] = binding.ContentPosition.End()
	}
	self.bindings = append(self.bindings, binding)
	return contentEnd
}

func (self *documentParser) binding(name string) (*Binding, bool) {
	for i := range self.bindings {
		if self.bindings[i].Name == name {
			return &self.bindings[i], true
		}
	}
	return nil, false
}

func (self *documentParser) resolveImports() error {
	for i := range self.imports {
		imp := &self.imports[i]
		if !meta.IsHash(imp.Hash) {
			continue
		}

		record, ok := self.store.Get(imp.Hash)
		if !ok && !self.noMetaSearch {
			var err error
			if record, err = self.store.Search(self.ctx, imp.Hash); err != nil {
				if errors.Cause(err) != meta.ErrNotFound {
					return errors.Wrapf(err, "search meta %s", imp.Hash)
				}
				record = nil
			}
		}

		if record.Empty() {
			self.problems.add(UndefinedMeta, imp.HashPosition, "cannot find any meta for hash: %s", imp.Hash)
			continue
		}

		imp.Sequence = &ImportSequence{
			DISPair:      record.DISPair != nil,
			ContractMeta: record.ContractMeta != nil,
			Dotrain:      record.Dotrain != "",
		}
		if record.DISPair != nil {
			self.opcodes = append(self.opcodes, record.DISPair.Opcodes...)
		}
	}
	return nil
}

func (self *documentParser) parseContents() {
	constants := make(map[string]string)
	for i := range self.bindings {
		binding := &self.bindings[i]
		if binding.Expression != nil {
			continue
		}
		content := binding.Content
		switch {
		case strings.HasPrefix(content, "!"):
			binding.Kind = BindingElided
			binding.Elided = strings.TrimSpace(content[1:])
		case isLiteral(content):
			binding.Kind = BindingConstant
			binding.Constant = content
			constants[binding.Name] = content
		}
	}

	for i := range self.bindings {
		binding := &self.bindings[i]
		if binding.Kind != BindingExpression || binding.Expression != nil {
			continue
		}

		parser := expressionParser{
			text:      binding.Content,
			opcodes:   self.opcodes,
			constants: constants,
		}
		binding.Expression = parser.parse()

		bias := binding.ContentPosition.Start()
		for _, problem := range parser.problems {
			problem.Position = problem.Position.Shift(bias)
			self.problems = append(self.problems, problem)
		}
	}
}
