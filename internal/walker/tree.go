package walker

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/merger-tool/merger/internal/parser"
)

// Resolver picks the parser for a filename. Satisfied by
// *plugin.Registry.
type Resolver interface {
	Resolve(filename string) parser.Parser
}

// Node is one entry in the merged file tree.
type Node struct {
	Name     string
	Path     string // slash-separated, relative to the walk root
	Dir      bool
	Children []*Node

	// Content is the extracted text of a parsed file.
	Content string
	// Parsed reports whether the file validated and produced content.
	// Unparsed files stay in the tree but carry no content.
	Parsed bool
}

// Options tune a walk.
type Options struct {
	// Ignore filters the walk; nil means DefaultIgnorePatterns.
	Ignore *IgnoreList
	// Jobs bounds concurrent file parsing; values below 1 mean 1.
	Jobs int
	// Logger receives per-file diagnostics; nil is silent.
	Logger *log.Logger
}

// Walk discovers every file under root, resolves a parser for each, and
// extracts content concurrently. A single unreadable or unparseable
// file never aborts the walk; it is recorded without content.
func Walk(ctx context.Context, root string, resolver Resolver, opts Options) (*Node, error) {
	ignore := opts.Ignore
	if ignore == nil {
		var err error
		ignore, err = NewIgnoreList(DefaultIgnorePatterns)
		if err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walking %s: not a directory", root)
	}

	tree := &Node{Name: filepath.Base(root), Dir: true}
	var files []*Node
	if err := discover(root, "", tree, ignore, &files); err != nil {
		return nil, err
	}

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, node := range files {
		node := node
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			extract(filepath.Join(root, filepath.FromSlash(node.Path)), node, resolver, opts.Logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return tree, nil
}

// discover recursively fills parent with the directory's entries,
// collecting file nodes for the parse phase. Entries are visited in
// name order so output is deterministic.
func discover(absDir, relDir string, parent *Node, ignore *IgnoreList, files *[]*Node) error {
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", absDir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		relPath := entry.Name()
		if relDir != "" {
			relPath = relDir + "/" + entry.Name()
		}
		if ignore.Match(relPath) {
			continue
		}

		node := &Node{Name: entry.Name(), Path: relPath, Dir: entry.IsDir()}
		parent.Children = append(parent.Children, node)

		if entry.IsDir() {
			if err := discover(filepath.Join(absDir, entry.Name()), relPath, node, ignore, files); err != nil {
				return err
			}
			continue
		}
		if entry.Type().IsRegular() {
			*files = append(*files, node)
		}
	}
	return nil
}

// extract validates and parses one file into its node. All failure
// modes degrade: unreadable files and files rejected by validation are
// left without content, and a plugin parser's failure falls back to the
// default classifier's decode.
func extract(absPath string, node *Node, resolver Resolver, logger *log.Logger) {
	p := resolver.Resolve(node.Name)

	chunk, full, err := readSample(absPath, p.ChunkSize())
	if err != nil {
		if logger != nil {
			logger.Warn("skipping unreadable file", "path", node.Path, "err", err)
		}
		return
	}

	if !p.Validate(chunk, node.Path, logger) {
		if logger != nil {
			logger.Debug("file rejected by parser", "path", node.Path)
		}
		return
	}

	if full == nil {
		if full, err = os.ReadFile(absPath); err != nil {
			if logger != nil {
				logger.Warn("skipping unreadable file", "path", node.Path, "err", err)
			}
			return
		}
	}

	content, err := p.Parse(full, node.Path, logger)
	if err != nil {
		if logger != nil {
			logger.Warn("parser failed, falling back to default classifier",
				"path", node.Path, "err", err)
		}
		content, _ = parser.Default.Parse(full, node.Path, logger)
	}

	node.Content = content
	node.Parsed = true
}

// readSample reads the leading chunk a parser asked for. When the
// parser wants the whole file (parser.ReadAll) the full content is
// returned as both chunk and full, saving the second read.
func readSample(path string, chunkSize int) (chunk, full []byte, err error) {
	if chunkSize == parser.ReadAll {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		return data, data, nil
	}
	if chunkSize <= 0 {
		chunkSize = parser.DefaultChunkSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, nil, err
	}
	return buf[:n], nil, nil
}
