package plugin_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/merger-tool/merger/internal/parser"
	"github.com/merger-tool/merger/internal/plugin"
)

// stubParser is a trivial contract implementation for tests. The tag
// lets assertions tell two stubs apart.
type stubParser struct {
	tag string
}

func (stubParser) ChunkSize() int { return parser.DefaultChunkSize }

func (stubParser) Validate(chunk []byte, path string, logger *log.Logger) bool { return true }

func (s stubParser) Parse(data []byte, path string, logger *log.Logger) (string, error) {
	return s.tag + ":" + string(data), nil
}

// fakeLoader serves canned descriptors keyed by artifact content, so
// installer and registry tests never compile shared objects. Keying by
// content means a descriptor keeps resolving after the installer copies
// the artifact into the plugin store under its hash name.
type fakeLoader struct {
	descriptors map[string]*plugin.Descriptor
	errs        map[string]error
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		descriptors: make(map[string]*plugin.Descriptor),
		errs:        make(map[string]error),
	}
}

func (l *fakeLoader) add(t *testing.T, content, tag string, exts ...string) {
	t.Helper()
	set, err := parser.NewExtensionSet(exts...)
	require.NoError(t, err)
	l.descriptors[content] = &plugin.Descriptor{Extensions: set, Parser: stubParser{tag: tag}}
}

func (l *fakeLoader) Load(path string) (*plugin.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &plugin.LoadError{Path: path, Err: err}
	}
	if err, ok := l.errs[string(data)]; ok {
		return nil, err
	}
	if desc, ok := l.descriptors[string(data)]; ok {
		return desc, nil
	}
	return nil, &plugin.InvalidPluginError{Path: path, Reason: "unknown artifact"}
}

// writeArtifact drops a dummy plugin file in dir and returns its path.
// Content drives the hash, so distinct contents get distinct ids.
func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// newTestInstaller wires an installer against paths in a fresh temp dir.
func newTestInstaller(t *testing.T, loader plugin.Loader) (*plugin.Installer, string, string) {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	pluginsDir := filepath.Join(dir, "parsers")
	return plugin.NewInstaller(configPath, pluginsDir, loader, nil), configPath, pluginsDir
}
