package services

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rainlang/rainlsp/rainlang"
	"github.com/rainlang/rainlsp/textdocument"
)

// DocumentSymbols lists the bindings of document, with the stack aliases an
// expression declares as children.
func DocumentSymbols(document *rainlang.Document) []protocol.DocumentSymbol {
	text := document.TextDocument()
	bindings := document.Bindings()

	symbols := make([]protocol.DocumentSymbol, 0, len(bindings))
	for i := range bindings {
		symbols = append(symbols, bindingSymbol(text, &bindings[i]))
	}
	return symbols
}

func bindingSymbol(text *textdocument.TextDocument, binding *rainlang.Binding) protocol.DocumentSymbol {
	start, end := binding.Position.Display()
	nameStart, nameEnd := binding.NamePosition.Display()

	detail := binding.Kind.String()
	symbol := protocol.DocumentSymbol{
		Name:           binding.Name,
		Detail:         &detail,
		Range:          text.Range(start, end),
		SelectionRange: text.Range(nameStart, nameEnd),
	}

	switch binding.Kind {
	case rainlang.BindingConstant:
		symbol.Kind = protocol.SymbolKindConstant
		symbol.Detail = &binding.Constant
	case rainlang.BindingElided:
		symbol.Kind = protocol.SymbolKindNull
		symbol.Detail = &binding.Elided
	default:
		symbol.Kind = protocol.SymbolKindFunction
		symbol.Children = aliasSymbols(text, binding)
	}
	return symbol
}

func aliasSymbols(text *textdocument.TextDocument, binding *rainlang.Binding) []protocol.DocumentSymbol {
	if binding.Expression == nil {
		return nil
	}

	var symbols []protocol.DocumentSymbol
	bias := binding.ContentPosition.Start()
	for _, line := range binding.Expression.Lines {
		for _, alias := range line.Aliases {
			if alias.IsPlaceholder() {
				continue
			}
			range_ := text.Range(alias.Position.Shift(bias).Display())
			symbols = append(symbols, protocol.DocumentSymbol{
				Name:           alias.Name,
				Kind:           protocol.SymbolKindVariable,
				Range:          range_,
				SelectionRange: range_,
			})
		}
	}
	return symbols
}
