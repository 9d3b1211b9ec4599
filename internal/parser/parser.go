// Package parser defines the capability contract every content parser
// satisfies, plus the heuristic fallback classifier used when no installed
// plugin claims a file's extension.
//
// Parsers are stateless strategies: implementations carry no fields and a
// single value can be invoked from any number of goroutines at once. The
// walker relies on this when it fans out across files.
package parser

import (
	"github.com/charmbracelet/log"
)

// ReadAll is the ChunkSize sentinel meaning Validate must receive the
// entire file, not a bounded leading sample.
const ReadAll = -1

// DefaultChunkSize is how many leading bytes Validate receives when a
// parser does not ask for more.
const DefaultChunkSize = 1024

// Parser is the capability contract for file content parsers.
//
// Implementations must be stateless. Validate must return a definitive
// answer and never panic; malformed input means "not parseable", not an
// error. Parse turns the complete file bytes into extracted text; it may
// fail only for conditions outside normal text extraction (for example
// I/O against resources the parser obtains itself) — ordinary extraction
// trouble must degrade to a best-effort result instead.
//
// The logger on both methods is optional; passing nil must not change
// behavior, only silence diagnostics.
type Parser interface {
	// ChunkSize reports how many leading bytes Validate needs,
	// or ReadAll if it must see the whole file.
	ChunkSize() int

	// Validate reports whether the file this chunk was sampled from is
	// parseable by this parser.
	Validate(chunk []byte, path string, logger *log.Logger) bool

	// Parse extracts text from the complete file content.
	Parse(data []byte, path string, logger *log.Logger) (string, error)
}
