package walker_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merger-tool/merger/internal/parser"
	"github.com/merger-tool/merger/internal/walker"
)

// defaultResolver sends every file to the fallback classifier.
type defaultResolver struct{}

func (defaultResolver) Resolve(string) parser.Parser { return parser.Default }

// shoutParser claims files via shoutResolver and uppercases them.
type shoutParser struct{}

func (shoutParser) ChunkSize() int                                        { return parser.DefaultChunkSize }
func (shoutParser) Validate(chunk []byte, path string, _ *log.Logger) bool { return true }
func (shoutParser) Parse(data []byte, path string, _ *log.Logger) (string, error) {
	return strings.ToUpper(string(data)), nil
}

// failingParser accepts everything and then fails to parse, which must
// degrade to the default classifier's decode.
type failingParser struct{}

func (failingParser) ChunkSize() int                                        { return parser.ReadAll }
func (failingParser) Validate(chunk []byte, path string, _ *log.Logger) bool { return true }
func (failingParser) Parse(data []byte, path string, _ *log.Logger) (string, error) {
	return "", os.ErrInvalid
}

type extResolver struct {
	ext string
	p   parser.Parser
}

func (r extResolver) Resolve(filename string) parser.Parser {
	if strings.HasSuffix(strings.ToLower(filename), r.ext) {
		return r.p
	}
	return parser.Default
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func findNode(root *walker.Node, path string) *walker.Node {
	if root.Path == path {
		return root
	}
	for _, child := range root.Children {
		if found := findNode(child, path); found != nil {
			return found
		}
	}
	return nil
}

func TestWalkExtractsTextFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "hello readme\n")
	writeFile(t, root, "src/main.go", "package main\n")

	tree, err := walker.Walk(context.Background(), root, defaultResolver{}, walker.Options{})
	require.NoError(t, err)

	readme := findNode(tree, "README.md")
	require.NotNil(t, readme)
	assert.True(t, readme.Parsed)
	assert.Equal(t, "hello readme\n", readme.Content)

	main := findNode(tree, "src/main.go")
	require.NotNil(t, main)
	assert.True(t, main.Parsed)
	assert.Equal(t, "package main\n", main.Content)
}

func TestWalkSkipsBinaryFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "data.bin", "text\x00with\x00nuls")
	writeFile(t, root, "ok.txt", "fine\n")

	tree, err := walker.Walk(context.Background(), root, defaultResolver{}, walker.Options{})
	require.NoError(t, err)

	bin := findNode(tree, "data.bin")
	require.NotNil(t, bin)
	assert.False(t, bin.Parsed)
	assert.Empty(t, bin.Content)

	ok := findNode(tree, "ok.txt")
	require.NotNil(t, ok)
	assert.True(t, ok.Parsed)
}

func TestWalkPrunesIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main\n")
	writeFile(t, root, "node_modules/pkg/index.js", "module.exports = {}\n")
	writeFile(t, root, "kept.txt", "kept\n")

	tree, err := walker.Walk(context.Background(), root, defaultResolver{}, walker.Options{})
	require.NoError(t, err)

	assert.Nil(t, findNode(tree, ".git"))
	assert.Nil(t, findNode(tree, "node_modules"))
	assert.NotNil(t, findNode(tree, "kept.txt"))
}

func TestWalkUsesResolvedParser(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "loud.shout", "make me loud\n")
	writeFile(t, root, "quiet.txt", "keep me quiet\n")

	resolver := extResolver{ext: ".shout", p: shoutParser{}}
	tree, err := walker.Walk(context.Background(), root, resolver, walker.Options{Jobs: 4})
	require.NoError(t, err)

	loud := findNode(tree, "loud.shout")
	require.NotNil(t, loud)
	assert.Equal(t, "MAKE ME LOUD\n", loud.Content)

	quiet := findNode(tree, "quiet.txt")
	require.NotNil(t, quiet)
	assert.Equal(t, "keep me quiet\n", quiet.Content)
}

func TestWalkDegradesOnParserFailure(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "doc.custom", "salvageable text\n")

	resolver := extResolver{ext: ".custom", p: failingParser{}}
	tree, err := walker.Walk(context.Background(), root, resolver, walker.Options{})
	require.NoError(t, err)

	// The failing parser's error degrades to the classifier's decode;
	// the file is not lost.
	doc := findNode(tree, "doc.custom")
	require.NotNil(t, doc)
	assert.True(t, doc.Parsed)
	assert.Equal(t, "salvageable text\n", doc.Content)
}

func TestWalkDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.txt", "b")
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, "c/d.txt", "d")

	tree, err := walker.Walk(context.Background(), root, defaultResolver{}, walker.Options{})
	require.NoError(t, err)

	var names []string
	for _, child := range tree.Children {
		names = append(names, child.Name)
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "c"}, names)
}

func TestWalkRejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.txt", "x")

	_, err := walker.Walk(context.Background(), filepath.Join(root, "file.txt"), defaultResolver{}, walker.Options{})
	assert.Error(t, err)

	_, err = walker.Walk(context.Background(), filepath.Join(root, "missing"), defaultResolver{}, walker.Options{})
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, "sub/b.txt", "b")

	tree, err := walker.Walk(context.Background(), root, defaultResolver{}, walker.Options{})
	require.NoError(t, err)

	rendered := walker.Render(tree)
	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, filepath.Base(root), lines[0])
	assert.Equal(t, "├── a.txt", lines[1])
	assert.Equal(t, "└── sub", lines[2])
	assert.Equal(t, "    └── b.txt", lines[3])
}
