package services

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rainlang/rainlsp/meta"
	"github.com/rainlang/rainlsp/rainlang"
	"github.com/rainlang/rainlsp/textdocument"
)

const testURI = protocol.DocumentUri("file:///sample.rain")

var (
	deployerHash = "0x" + strings.Repeat("1a", 32)
	contractHash = "0x" + strings.Repeat("2b", 32)
	bundleHash   = "0x" + strings.Repeat("3c", 32)
)

func outputs(n int) *int {
	return &n
}

func testStore(t *testing.T) *meta.Store {
	store := meta.NewStore()
	require.NoError(t, store.Add(deployerHash, &meta.Record{DISPair: &meta.DISPair{Opcodes: []meta.OpMeta{
		{Name: "int-add", Aliases: []string{"add"}, Description: "Adds all inputs together as non-negative integers."},
		{Name: "context", Description: "Reads a value from the context grid."},
		{Name: "get", Description: "Gets a value from storage. The first operand is the key to lookup."},
		{Name: "set", Description: "Sets a value in storage.", Outputs: outputs(0)},
		{Name: "scale-18-dynamic", Description: "Scales a value to 18 decimals.", Operand: []meta.OperandMeta{
			{Name: "rounding", Description: "Round up when set."},
			{Name: "saturate"},
		}},
	}}}))
	require.NoError(t, store.Add(contractHash, &meta.Record{ContractMeta: &meta.ContractMeta{Name: "flow"}}))
	require.NoError(t, store.Add(bundleHash, &meta.Record{
		DISPair:      &meta.DISPair{},
		ContractMeta: &meta.ContractMeta{Name: "orderbook"},
		Dotrain:      "#amount 100",
	}))
	return store
}

func readSample(t *testing.T) string {
	content, err := os.ReadFile("testdata/sample.rain")
	require.NoError(t, err)
	return string(content)
}

func sampleText(t *testing.T) *textdocument.TextDocument {
	return textdocument.New(testURI, "rainlang", 1, readSample(t))
}

func newText(text string) *textdocument.TextDocument {
	return textdocument.New(testURI, "rainlang", 1, text)
}

func sampleDocument(t *testing.T) *rainlang.Document {
	document, err := rainlang.Create(context.Background(), sampleText(t), testStore(t))
	require.NoError(t, err)
	return document
}

// locate returns the offset of the nth occurrence of needle, 1 based.
func locate(t *testing.T, text string, needle string, occurrence int) int {
	if occurrence < 1 {
		occurrence = 1
	}
	offset := -1
	for i := 0; i < occurrence; i++ {
		next := strings.Index(text[offset+1:], needle)
		require.GreaterOrEqual(t, next, 0, "%q occurrence %d", needle, occurrence)
		offset += next + 1
	}
	return offset
}
