package plugin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/merger-tool/merger/internal/parser"
)

// binding pairs one claimed extension with the parser that owns it.
type binding struct {
	ext    string
	hash   string
	parser parser.Parser
}

// Registry maps file extensions to installed parsers. It is a pure
// projection of the persisted records, built once at process start, and
// is immutable afterwards, so concurrent Resolve calls need no locking.
type Registry struct {
	bindings []binding
}

// NewRegistry materializes every record's artifact through the loader
// and aggregates the extension bindings in record order.
//
// A record whose artifact loads but fails contract validation is
// skipped with a diagnostic; a record whose artifact cannot be loaded
// at all aborts construction. Two valid plugins claiming the same
// extension also abort construction: the store never commits such a
// state, so finding one means the store was edited out from under us.
func NewRegistry(records []Record, loader Loader, logger *log.Logger) (*Registry, error) {
	reg := &Registry{}
	owners := make(map[string]string)

	for _, record := range records {
		desc, err := loader.Load(record.Path)
		if err != nil {
			var invalid *InvalidPluginError
			if errors.As(err, &invalid) {
				if logger != nil {
					logger.Warn("skipping invalid plugin", "hash", record.Hash, "reason", invalid.Reason)
				}
				continue
			}
			return nil, err
		}

		for _, ext := range desc.Extensions.Slice() {
			if owner, taken := owners[ext]; taken {
				return nil, fmt.Errorf("extension %q claimed by both %s and %s",
					ext, owner, record.Hash)
			}
			owners[ext] = record.Hash
			reg.bindings = append(reg.bindings, binding{
				ext:    ext,
				hash:   record.Hash,
				parser: desc.Parser,
			})
			if logger != nil {
				logger.Debug("registered parser", "extension", ext, "hash", record.Hash)
			}
		}
	}

	return reg, nil
}

// Resolve returns the parser claiming filename's extension, or the
// default classifier when no installed plugin does.
//
// Matching is a case-insensitive suffix scan in registration order,
// first match wins; multi-part suffixes like ".tar.gz" work because the
// whole extension is compared against the filename's tail. A linear
// scan is deliberate here: extension sets number in the tens.
func (r *Registry) Resolve(filename string) parser.Parser {
	lower := strings.ToLower(filename)
	for _, b := range r.bindings {
		if strings.HasSuffix(lower, b.ext) {
			return b.parser
		}
	}
	return parser.Default
}

// Extensions returns every registered extension in registration order.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b.ext)
	}
	return out
}
