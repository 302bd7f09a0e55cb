package services

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/rainlang/rainlsp/rainlang"
)

// Compose returns the rainlang text of the named entrypoints, one after the
// other, with every named constant replaced by its value. A document with
// problems does not compose.
func Compose(document *rainlang.Document, entrypoints []string) (string, error) {
	if len(entrypoints) == 0 {
		return "", errors.New("no entrypoints to compose")
	}
	if problems := document.AllProblems(); len(problems) > 0 {
		first := problems[0]
		start := document.TextDocument().PositionAt(first.Position.Start())
		return "", errors.Errorf("%s has %d problems, first at %d:%d: %s",
			document.TextDocument().URI, len(problems), start.Line+1, start.Character+1, first.Message)
	}

	sources := make([]string, 0, len(entrypoints))
	for _, name := range entrypoints {
		binding, ok := document.Binding(name)
		if !ok {
			return "", errors.Errorf("undefined entrypoint: %s", name)
		}
		if !binding.IsEntrypoint() {
			return "", errors.Errorf("%s binding %s cannot be an entrypoint", binding.Kind, name)
		}
		sources = append(sources, inlineConstants(binding))
	}
	return strings.Join(sources, "\n\n"), nil
}

// GetCompose prepares in and composes its entrypoints.
func GetCompose(ctx context.Context, in Input, entrypoints []string, settings *Settings) (string, error) {
	document, err := Prepare(ctx, in, settings)
	if err != nil {
		return "", err
	}
	return Compose(document, entrypoints)
}

func inlineConstants(binding *rainlang.Binding) string {
	var references []*rainlang.ValueNode
	for _, line := range binding.Expression.Lines {
		references = appendReferences(references, line.Nodes)
	}
	// replace from the back so earlier offsets stay valid
	sort.Slice(references, func(i, j int) bool {
		return references[i].Position.Start() > references[j].Position.Start()
	})

	content := binding.Content
	for _, reference := range references {
		start, end := reference.Position.Display()
		content = content[:start] + reference.Value + content[end:]
	}
	return content
}

func appendReferences(references []*rainlang.ValueNode, nodes []rainlang.Node) []*rainlang.ValueNode {
	for _, node := range nodes {
		switch node := node.(type) {
		case *rainlang.ValueNode:
			if node.ID != "" {
				references = append(references, node)
			}
		case *rainlang.OpcodeNode:
			references = appendReferences(references, node.Parameters)
		}
	}
	return references
}
