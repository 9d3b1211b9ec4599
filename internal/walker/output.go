package walker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Document is the serialized result of a walk.
type Document struct {
	// Root is the name of the walked directory.
	Root string `json:"root" yaml:"root"`

	// Tree is the rendered directory listing; omitted when suppressed.
	Tree string `json:"tree,omitempty" yaml:"tree,omitempty"`

	// Files holds every discovered file in traversal order.
	Files []FileEntry `json:"files" yaml:"files"`
}

// FileEntry is one discovered file.
type FileEntry struct {
	Path string `json:"path" yaml:"path"`

	// Content is the extracted text. Skipped files carry none.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// Skipped marks files that failed validation or could not be read.
	Skipped bool `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// NewDocument flattens a walked tree. includeTree controls whether the
// rendered listing is embedded.
func NewDocument(root *Node, includeTree bool) *Document {
	doc := &Document{Root: root.Name}
	if includeTree {
		doc.Tree = Render(root)
	}
	flatten(root, doc)
	return doc
}

func flatten(node *Node, doc *Document) {
	for _, child := range node.Children {
		if child.Dir {
			flatten(child, doc)
			continue
		}
		doc.Files = append(doc.Files, FileEntry{
			Path:    child.Path,
			Content: child.Content,
			Skipped: !child.Parsed,
		})
	}
}

// Write serializes the document to path in the given format, writing
// through a uniquely named temp file and renaming into place.
func (d *Document) Write(path, format string) error {
	var data []byte
	var err error

	switch format {
	case FormatJSON:
		if data, err = json.MarshalIndent(d, "", "  "); err == nil {
			data = append(data, '\n')
		}
	case FormatYAML:
		data, err = yaml.Marshal(d)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("serializing output: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	tmpPath := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("committing output: %w", err)
	}
	return nil
}
