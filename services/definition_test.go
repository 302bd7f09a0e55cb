package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainlang/rainlsp/rainlang"
)

func TestDefinition(t *testing.T) {
	document := sampleDocument(t)
	text := document.TextDocument()
	content := text.Text()

	tests := []struct {
		name   string
		cursor int
		target string
		at     int
	}{
		{"alias reference", locate(t, content, "total-sent-k)", 1) + 2, "total-sent-k", locate(t, content, "total-sent-k:", 1)},
		{"nested alias reference", locate(t, content, "out-token-amount)", 1), "out-token-amount", locate(t, content, "out-token-amount:", 1)},
		{"constant reference", locate(t, content, "fee)", 1) + 1, "fee", locate(t, content, "#fee", 1) + 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			location := ResolveDefinition(document, test.cursor)
			require.NotNil(t, location)
			assert.Equal(t, testURI, location.URI)
			assert.Equal(t, text.Range(test.at, test.at+len(test.target)), location.Range)
		})
	}
}

func TestDefinitionNone(t *testing.T) {
	document := sampleDocument(t)
	content := document.TextDocument().Text()

	for _, cursor := range []int{
		locate(t, content, "int-add(", 1) + 1,
		locate(t, content, "total-sent-k:", 1) + 1,
		locate(t, content, ") 0,", 1) + 2,
		locate(t, content, "#exp1", 1) + 1,
		locate(t, content, "@0x1a", 1) + 3,
	} {
		assert.Nil(t, ResolveDefinition(document, cursor), "offset %d", cursor)
	}
}

func TestGetDefinition(t *testing.T) {
	text := sampleText(t)
	position := text.PositionAt(locate(t, text.Text(), "batch-start-info)", 1))

	location, err := GetDefinition(context.Background(), Raw{Text: text, MetaStore: testStore(t)}, position, nil)
	require.NoError(t, err)
	require.NotNil(t, location)
	assert.Equal(t, text.PositionAt(locate(t, text.Text(), "batch-start-info:", 1)), location.Range.Start)
}

func TestDefinitionStaysInSource(t *testing.T) {
	ctx := context.Background()

	text := newText("#main\nx: 1;\ny: 2,\n_: x;")
	document, err := rainlang.Create(ctx, text, testStore(t))
	require.NoError(t, err)
	assert.Nil(t, ResolveDefinition(document, locate(t, text.Text(), "x;", 1)))

	text = newText("#main\nx: 1;\nx: 2,\n_: x;")
	document, err = rainlang.Create(ctx, text, testStore(t))
	require.NoError(t, err)
	location := ResolveDefinition(document, locate(t, text.Text(), "x;", 1))
	require.NotNil(t, location)
	second := locate(t, text.Text(), "x: 2", 1)
	assert.Equal(t, text.Range(second, second+1), location.Range)
}
