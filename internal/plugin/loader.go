// Package plugin manages third-party parser plugins: loading compiled
// artifacts at runtime, validating them against the parser contract,
// the persisted install lifecycle, and the extension registry built
// from installed records at process start.
//
// Loaded plugin code is not sandboxed. It runs with full host-process
// privilege; installing a plugin is an act of trust.
package plugin

import (
	"fmt"
	"os"
	goplugin "plugin"

	"github.com/merger-tool/merger/internal/parser"
)

// Symbol names a plugin artifact must export.
const (
	// extensionsSymbol is the exported []string of claimed extensions.
	extensionsSymbol = "EXTENSIONS"
	// parserSymbol is the exported value satisfying parser.Parser.
	parserSymbol = "Parser"
)

// Descriptor is the validated shape of a loaded plugin artifact: the
// extensions it claims and the parser implementation behind them.
type Descriptor struct {
	Extensions *parser.ExtensionSet
	Parser     parser.Parser
}

// Loader materializes a plugin artifact from a filesystem path.
// The production implementation is SharedObjectLoader; tests inject
// fakes so they do not have to compile shared objects.
type Loader interface {
	Load(path string) (*Descriptor, error)
}

// SharedObjectLoader loads Go plugin shared objects (built with
// -buildmode=plugin). An artifact is accepted only if it exports
// EXTENSIONS ([]string, every entry matching the extension pattern) and
// Parser (a value satisfying parser.Parser).
//
// A plugin's durable identity is its content hash, assigned by the
// installer; the Go runtime additionally keys loaded plugins by their
// build path, so independently authored artifacts do not collide on
// package name.
type SharedObjectLoader struct{}

// Load opens the artifact at path and validates its exported shape.
// It returns a *LoadError when the path is missing, is a directory, or
// the artifact fails to execute, and an *InvalidPluginError when the
// artifact loads but violates the contract.
func (SharedObjectLoader) Load(path string) (*Descriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("path is a directory")}
	}

	p, err := goplugin.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	extSym, err := p.Lookup(extensionsSymbol)
	if err != nil {
		return nil, &InvalidPluginError{Path: path, Reason: fmt.Sprintf("%s not exported", extensionsSymbol)}
	}
	parserSym, err := p.Lookup(parserSymbol)
	if err != nil {
		return nil, &InvalidPluginError{Path: path, Reason: fmt.Sprintf("%s not exported", parserSymbol)}
	}

	return NewDescriptor(path, extSym, parserSym)
}

// NewDescriptor validates the two exported symbol values and assembles
// a Descriptor. Violations yield *InvalidPluginError naming the path
// and reason.
//
// Package-level vars come back from plugin lookup as pointers, so both
// the direct and the pointer form of each symbol are accepted.
func NewDescriptor(path string, extensionsValue, parserValue any) (*Descriptor, error) {
	var exts []string
	switch v := extensionsValue.(type) {
	case []string:
		exts = v
	case *[]string:
		if v != nil {
			exts = *v
		}
	default:
		return nil, &InvalidPluginError{
			Path:   path,
			Reason: fmt.Sprintf("%s is %T, want []string", extensionsSymbol, extensionsValue),
		}
	}
	if len(exts) == 0 {
		return nil, &InvalidPluginError{Path: path, Reason: extensionsSymbol + " is empty"}
	}

	set, err := parser.NewExtensionSet(exts...)
	if err != nil {
		return nil, &InvalidPluginError{Path: path, Reason: err.Error()}
	}

	var impl parser.Parser
	switch v := parserValue.(type) {
	case parser.Parser:
		impl = v
	case *parser.Parser:
		if v != nil {
			impl = *v
		}
	}
	if impl == nil {
		return nil, &InvalidPluginError{
			Path:   path,
			Reason: fmt.Sprintf("%s is %T, want a parser.Parser", parserSymbol, parserValue),
		}
	}

	return &Descriptor{Extensions: set, Parser: impl}, nil
}
