package services

import (
	"regexp"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rainlang/rainlsp/rainlang"
	"github.com/rainlang/rainlsp/textdocument"
)

// Source tags every diagnostic produced here.
const Source = "rainlang"

var uppercaseRun = regexp.MustCompile(`[A-Z]+`)

// MapDiagnostics turns problems into diagnostics, one each and in the same
// order. With relatedInformation the message is the humanized error code and
// the problem's own message moves into a related information entry.
func MapDiagnostics(problems []rainlang.Problem, text *textdocument.TextDocument, relatedInformation bool) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(problems))
	for _, problem := range problems {
		start, end := problem.Position.Display()
		range_ := text.Range(start, end)
		severity := protocol.DiagnosticSeverityError
		source := Source

		diagnostic := protocol.Diagnostic{
			Range:    range_,
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: protocol.Integer(problem.Code)},
			Source:   &source,
			Message:  problem.Message,
		}
		if relatedInformation {
			diagnostic.Message = Humanize(problem.Code.String())
			diagnostic.RelatedInformation = []protocol.DiagnosticRelatedInformation{{
				Location: protocol.Location{
					URI:   text.URI,
					Range: range_,
				},
				Message: problem.Message,
			}}
		}
		diagnostics = append(diagnostics, diagnostic)
	}
	return diagnostics
}

// Humanize puts a space before every run of uppercase letters except one at
// the very start, so "MaxOpcodeDepthExceeded" reads "Max Opcode Depth Exceeded".
func Humanize(identifier string) string {
	var builder strings.Builder
	last := 0
	for _, run := range uppercaseRun.FindAllStringIndex(identifier, -1) {
		builder.WriteString(identifier[last:run[0]])
		if run[0] > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(identifier[run[0]:run[1]])
		last = run[1]
	}
	builder.WriteString(identifier[last:])
	return builder.String()
}
