package parser_test

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merger-tool/merger/internal/parser"
)

func TestClassifierValidateAcceptsPlainText(t *testing.T) {
	c := parser.Classifier{}

	chunk := []byte("package main\n\nfunc main() {\n\tprintln(\"hello\")\n}\n")
	assert.True(t, c.Validate(chunk, "main.go", nil))
}

func TestClassifierValidateAcceptsJSON(t *testing.T) {
	c := parser.Classifier{}

	chunk := []byte(`{"name": "merger", "files": [1, 2, 3]}`)
	assert.True(t, c.Validate(chunk, "data.json", nil))
}

func TestClassifierValidateAcceptsEmptyChunk(t *testing.T) {
	c := parser.Classifier{}
	assert.True(t, c.Validate(nil, "empty.txt", nil))
}

func TestClassifierValidateRejectsNulByte(t *testing.T) {
	c := parser.Classifier{}

	// A single NUL rejects no matter how texty the rest looks.
	chunk := []byte("perfectly reasonable text\x00more text")
	assert.False(t, c.Validate(chunk, "file.txt", nil))
}

func TestClassifierValidateRejectsControlHeavyChunk(t *testing.T) {
	c := parser.Classifier{}

	// 40% of bytes in the control range, no NUL, no MIME signature.
	chunk := make([]byte, 500)
	for i := 0; i < 200; i++ {
		chunk[i] = 0x01
	}
	for i := 200; i < 500; i++ {
		chunk[i] = 'A'
	}
	assert.False(t, c.Validate(chunk, "file.bin", nil))
}

func TestClassifierValidateAcceptsWhitespaceControls(t *testing.T) {
	c := parser.Classifier{}

	// Tabs, newlines, and carriage returns are not "control" for the
	// binary heuristic.
	chunk := []byte(strings.Repeat("col1\tcol2\r\n", 40))
	assert.True(t, c.Validate(chunk, "data.tsv", nil))
}

func TestClassifierValidateRejectsPNGSignature(t *testing.T) {
	c := parser.Classifier{}

	chunk := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{'I', 'D', 'A', 'T'}, 64)...)
	assert.False(t, c.Validate(chunk, "image.png", nil))
}

func TestClassifierParseRoundTripsUTF8(t *testing.T) {
	c := parser.Classifier{}

	text := "héllo wörld — ütf-8 content\n"
	got, err := c.Parse([]byte(text), "file.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestClassifierParseNeverFails(t *testing.T) {
	c := parser.Classifier{}

	inputs := [][]byte{
		nil,
		{},
		[]byte("plain ascii"),
		{0xff, 0xfe, 0xfd},
		append([]byte("valid prefix "), 0xc3, 0x28), // truncated multibyte
		bytes.Repeat([]byte{0x00, 0xff}, 512),
	}

	for _, input := range inputs {
		got, err := c.Parse(input, "whatever.bin", nil)
		require.NoError(t, err, "input %q", input)
		assert.True(t, utf8.ValidString(got), "output must be valid UTF-8 for input %q", input)
	}
}

func TestClassifierParseLossyFallbackKeepsValidPortion(t *testing.T) {
	c := parser.Classifier{}

	// Large valid body with invalid bytes spliced in; whatever decode
	// path wins, the readable text must survive.
	body := strings.Repeat("the quick brown fox jumps over the lazy dog\n", 30)
	input := append([]byte(body), 0xff, 0x00, 0xff)

	got, err := c.Parse(input, "mangled.txt", nil)
	require.NoError(t, err)
	assert.Contains(t, got, "quick brown fox")
	assert.True(t, utf8.ValidString(got))
}

func TestClassifierChunkSize(t *testing.T) {
	assert.Equal(t, parser.DefaultChunkSize, parser.Classifier{}.ChunkSize())
}

func TestDefaultIsUsableParser(t *testing.T) {
	var p parser.Parser = parser.Default
	assert.True(t, p.Validate([]byte("text"), "f.txt", nil))
}
