package services

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rainlang/rainlsp/rainlang"
)

// ResolveDefinition returns where the reference at offset is declared: the
// stack alias on the left hand side of an earlier line, or the binding a
// named constant refers to. It returns nil for anything else.
func ResolveDefinition(document *rainlang.Document, offset int) (location *protocol.Location) {
	defer func() {
		if r := recover(); r != nil {
			log.Debugf("definition at %d: %v", offset, r)
			location = nil
		}
	}()

	bindings := document.Bindings()
	for i := range bindings {
		binding := &bindings[i]
		if !binding.ContentPosition.Contains(offset) || binding.Expression == nil {
			continue
		}

		bias := binding.ContentPosition.Start()
		for _, line := range binding.Expression.Lines {
			if !line.Position.Contains(offset - bias) {
				continue
			}
			switch node := innermost(line.Nodes, offset-bias).(type) {
			case *rainlang.AliasNode:
				if declaration := aliasDeclaration(binding.Expression, line.Source, node); declaration != nil {
					return declarationLocation(document, declaration.Position.Shift(bias))
				}
			case *rainlang.ValueNode:
				if node.ID == "" {
					return nil
				}
				if target, ok := document.Binding(node.ID); ok {
					return declarationLocation(document, target.NamePosition)
				}
			}
			return nil
		}
		return nil
	}
	return nil
}

// GetDefinition resolves the declaration of the reference at position.
func GetDefinition(ctx context.Context, in Input, position protocol.Position, settings *Settings) (*protocol.Location, error) {
	document, err := Prepare(ctx, in, settings)
	if err != nil {
		return nil, err
	}
	return ResolveDefinition(document, document.TextDocument().OffsetAt(position)), nil
}

func innermost(nodes []rainlang.Node, offset int) rainlang.Node {
	for _, node := range nodes {
		if !node.Span().Contains(offset) {
			continue
		}
		if opcode, ok := node.(*rainlang.OpcodeNode); ok && opcode.Parens.StrictlyContains(offset) {
			return innermost(opcode.Parameters, offset)
		}
		return node
	}
	return nil
}

// aliasDeclaration finds the last left hand side alias named like reference
// that comes before it in the same source.
func aliasDeclaration(expression *rainlang.Expression, source int, reference *rainlang.AliasNode) *rainlang.AliasNode {
	var found *rainlang.AliasNode
	for _, line := range expression.Lines {
		if line.Position.Start() >= reference.Position.Start() {
			break
		}
		if line.Source != source {
			continue
		}
		for _, alias := range line.Aliases {
			if alias.Name == reference.Name && !alias.IsPlaceholder() {
				found = alias
			}
		}
	}
	return found
}

func declarationLocation(document *rainlang.Document, span rainlang.Offsets) *protocol.Location {
	text := document.TextDocument()
	start, end := span.Display()
	return &protocol.Location{
		URI:   text.URI,
		Range: text.Range(start, end),
	}
}
