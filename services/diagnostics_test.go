package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rainlang/rainlsp/rainlang"
)

func TestHumanize(t *testing.T) {
	tests := map[string]string{
		"FooBarBaz":              "Foo Bar Baz",
		"MaxOpcodeDepthExceeded": "Max Opcode Depth Exceeded",
		"UndefinedDISPair":       "Undefined DISPair",
		"MismatchRHS":            "Mismatch RHS",
		"foo":                    "foo",
		"fooBar":                 "foo Bar",
		"":                       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Humanize(in), in)
	}
}

func TestMapDiagnosticsPlain(t *testing.T) {
	text := newText("#main\n_: foo(1 2);")
	problems := []rainlang.Problem{
		{Code: rainlang.UndefinedOpcode, Message: "unknown opcode: foo", Position: rainlang.Offsets{9, 11}},
	}

	diagnostics := MapDiagnostics(problems, text, false)
	require.Len(t, diagnostics, 1)

	severity := protocol.DiagnosticSeverityError
	source := Source
	want := protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: 1, Character: 3},
			End:   protocol.Position{Line: 1, Character: 6},
		},
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: protocol.Integer(rainlang.UndefinedOpcode)},
		Source:   &source,
		Message:  "unknown opcode: foo",
	}
	if diff := cmp.Diff(want, diagnostics[0]); diff != "" {
		t.Errorf("diagnostic mismatch (-want +got):\n%s", diff)
	}
}

func TestMapDiagnosticsRelatedInformation(t *testing.T) {
	text := newText("#main\n_: foo(1 2);")
	problems := []rainlang.Problem{
		{Code: rainlang.UndefinedOpcode, Message: "unknown opcode: foo", Position: rainlang.Offsets{9, 11}},
	}

	diagnostics := MapDiagnostics(problems, text, true)
	require.Len(t, diagnostics, 1)
	diagnostic := diagnostics[0]

	assert.Equal(t, "Undefined Opcode", diagnostic.Message)
	require.Len(t, diagnostic.RelatedInformation, 1)
	related := diagnostic.RelatedInformation[0]
	assert.Equal(t, "unknown opcode: foo", related.Message)
	assert.Equal(t, testURI, related.Location.URI)
	assert.Equal(t, diagnostic.Range, related.Location.Range)
}

func TestMapDiagnosticsKeepsOrderAndCount(t *testing.T) {
	text := newText(strings.Repeat("x", 40))
	problems := []rainlang.Problem{
		{Code: rainlang.IllegalChar, Message: "a", Position: rainlang.Offsets{0, 0}},
		{Code: rainlang.ExpectedSemi, Message: "b", Position: rainlang.Offsets{30, 31}},
		{Code: rainlang.DuplicateAlias, Message: "c", Position: rainlang.Offsets{10, 14}},
	}

	for _, related := range []bool{false, true} {
		diagnostics := MapDiagnostics(problems, text, related)
		require.Len(t, diagnostics, len(problems))
		for i, problem := range problems {
			diagnostic := diagnostics[i]
			assert.Equal(t, protocol.Integer(problem.Code), diagnostic.Code.Value)
			// display ranges are one longer than the inclusive span
			assert.Equal(t, protocol.UInteger(problem.Position.Start()), diagnostic.Range.Start.Character)
			assert.Equal(t, protocol.UInteger(problem.Position.End()+1), diagnostic.Range.End.Character)
			require.NotNil(t, diagnostic.Severity)
			assert.Equal(t, protocol.DiagnosticSeverityError, *diagnostic.Severity)
			require.NotNil(t, diagnostic.Source)
			assert.Equal(t, Source, *diagnostic.Source)
			if related {
				assert.Equal(t, Humanize(problem.Code.String()), diagnostic.Message)
				assert.Len(t, diagnostic.RelatedInformation, 1)
			} else {
				assert.Equal(t, problem.Message, diagnostic.Message)
				assert.Empty(t, diagnostic.RelatedInformation)
			}
		}
	}
}

func TestMapDiagnosticsEmpty(t *testing.T) {
	diagnostics := MapDiagnostics(nil, newText(""), true)
	assert.NotNil(t, diagnostics)
	assert.Empty(t, diagnostics)
}

func TestGetDiagnosticsFromParser(t *testing.T) {
	text := newText("@" + deployerHash + "\n#main\n_: nope(1);")
	diagnostics, err := GetDiagnostics(context.Background(), Raw{Text: text, MetaStore: testStore(t)}, nil)
	require.NoError(t, err)
	require.Len(t, diagnostics, 1)

	assert.Equal(t, protocol.Integer(rainlang.UndefinedOpcode), diagnostics[0].Code.Value)
	assert.Equal(t, protocol.UInteger(2), diagnostics[0].Range.Start.Line)
	assert.Equal(t, protocol.UInteger(3), diagnostics[0].Range.Start.Character)
}
