package services

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rainlang/rainlsp/rainlang"
	"github.com/rainlang/rainlsp/textdocument"
)

// ResolveHover returns the hover for the innermost item of document at
// offset, or nil when there is none. It never panics: a malformed tree yields
// no hover.
func ResolveHover(document *rainlang.Document, offset int, format protocol.MarkupKind) (hover *protocol.Hover) {
	defer func() {
		if r := recover(); r != nil {
			log.Debugf("hover at %d: %v", offset, r)
			hover = nil
		}
	}()

	if format == "" {
		format = protocol.MarkupKindPlainText
	}
	resolver := hoverResolver{
		text:   document.TextDocument(),
		format: format,
	}
	return resolver.resolve(document, offset)
}

type hoverResolver struct {
	text   *textdocument.TextDocument
	format protocol.MarkupKind
}

func (self *hoverResolver) resolve(document *rainlang.Document, offset int) *protocol.Hover {
	for _, imp := range document.Imports() {
		if imp.Position.Contains(offset) {
			if !imp.Sequence.Empty() {
				return self.hover(imp.Position, 0, importInfo(imp.Sequence))
			}
			break
		}
	}

	bindings := document.Bindings()
	for i := range bindings {
		binding := &bindings[i]
		if binding.NamePosition.Contains(offset) {
			return self.hover(binding.NamePosition, 0, bindingInfo(binding))
		}
		if binding.ContentPosition.Contains(offset) {
			return self.searchContent(binding, offset)
		}
	}
	return nil
}

func (self *hoverResolver) searchContent(binding *rainlang.Binding, offset int) *protocol.Hover {
	if binding.Expression == nil {
		return nil
	}

	bias := binding.ContentPosition.Start()
	offset -= bias
	for i := range binding.Expression.Lines {
		line := &binding.Expression.Lines[i]
		if line.Position.Contains(offset) {
			return self.search(line.Items(), offset, bias)
		}
	}
	return nil
}

// search looks through nodes in source order. The first node whose span
// contains offset decides the result.
func (self *hoverResolver) search(nodes []rainlang.Node, offset int, bias int) *protocol.Hover {
	for _, node := range nodes {
		if !node.Span().Contains(offset) {
			continue
		}

		switch node_ := node.(type) {
		case *rainlang.OpcodeNode:
			if node_.Parens.StrictlyContains(offset) {
				return self.search(node_.Parameters, offset, bias)
			}
			if node_.OperandArgs != nil && node_.OperandArgs.Position.StrictlyContains(offset) {
				for _, arg := range node_.OperandArgs.Args {
					if arg.Position.Contains(offset) {
						return self.hover(arg.Position, bias, self.operandArgInfo(arg))
					}
				}
				return nil
			}
			span := rainlang.Offsets{node_.Opcode.Position.Start(), node_.Parens.End()}
			return self.hover(span, bias, node_.Opcode.Description)

		case *rainlang.ValueNode:
			value := "Value"
			if node_.ID != "" {
				value = node_.Value
			}
			return self.hover(node_.Position, bias, value)

		case *rainlang.AliasNode:
			value := "Stack Alias"
			if node_.IsPlaceholder() {
				value += " Placeholder"
			}
			return self.hover(node_.Position, bias, value)

		default:
			return nil
		}
	}
	return nil
}

// hover builds the result for span, restoring the content bias and turning
// the inclusive span into a display range.
func (self *hoverResolver) hover(span rainlang.Offsets, bias int, value string) *protocol.Hover {
	start, end := span.Shift(bias).Display()
	range_ := self.text.Range(start, end)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  self.format,
			Value: value,
		},
		Range: &range_,
	}
}

func (self *hoverResolver) operandArgInfo(arg rainlang.OperandArg) string {
	info := []string{arg.Name}
	if arg.Description != "" {
		info = append(info, arg.Description)
	}
	if self.format == protocol.MarkupKindMarkdown {
		return strings.Join(info, "\n\n")
	}
	return strings.Join(info, ", ")
}

func importInfo(sequence *rainlang.ImportSequence) string {
	info := "this import contains:"
	if sequence.DISPair {
		info += "\n - DISPair"
	}
	if sequence.ContractMeta {
		info += "\n - ContractMeta"
	}
	if sequence.Dotrain {
		info += "\n - RainDocument"
	}
	return info
}

func bindingInfo(binding *rainlang.Binding) string {
	kind := ""
	switch binding.Kind {
	case rainlang.BindingElided:
		kind = "Elided "
	case rainlang.BindingConstant:
		kind = "Constant "
	}
	if kind != "" {
		return kind + "Binding (cannot be referenced as entrypoint)"
	}
	return "Binding"
}
