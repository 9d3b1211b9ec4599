package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// extensionPattern matches a normalized file extension: a leading dot
// followed by lower-case alphanumerics and dots, anchored to the end of
// the string. Multi-part suffixes like ".tar.gz" are valid.
const extensionPattern = `^\.[a-z0-9.]+$`

var extensionRegexp = regexp.MustCompile(extensionPattern)

// NormalizeExtension lower-cases ext and verifies it against the
// extension pattern. Matching is case-insensitive on input; the stored
// form is always lower-case.
func NormalizeExtension(ext string) (string, error) {
	normalized := strings.ToLower(ext)
	if !extensionRegexp.MatchString(normalized) {
		return "", fmt.Errorf("extension %q does not match %s", ext, extensionPattern)
	}
	return normalized, nil
}

// ExtensionSet is an ordered set of normalized extensions. Order is the
// order extensions were first added, which the registry preserves as its
// tie-break order.
type ExtensionSet struct {
	exts []string
	seen map[string]struct{}
}

// NewExtensionSet normalizes and collects the given extensions,
// dropping duplicates. It fails on the first extension that does not
// match the extension pattern.
func NewExtensionSet(exts ...string) (*ExtensionSet, error) {
	s := &ExtensionSet{seen: make(map[string]struct{})}
	for _, ext := range exts {
		normalized, err := NormalizeExtension(ext)
		if err != nil {
			return nil, err
		}
		s.add(normalized)
	}
	return s, nil
}

func (s *ExtensionSet) add(ext string) {
	if _, ok := s.seen[ext]; ok {
		return
	}
	s.seen[ext] = struct{}{}
	s.exts = append(s.exts, ext)
}

// Contains reports whether ext (already normalized) is in the set.
func (s *ExtensionSet) Contains(ext string) bool {
	_, ok := s.seen[ext]
	return ok
}

// Len returns the number of extensions in the set.
func (s *ExtensionSet) Len() int {
	return len(s.exts)
}

// Slice returns the extensions in insertion order. The returned slice is
// a copy; mutating it does not affect the set.
func (s *ExtensionSet) Slice() []string {
	out := make([]string, len(s.exts))
	copy(out, s.exts)
	return out
}

// Intersect returns the extensions present in both sets, sorted, so
// conflict reports are deterministic.
func (s *ExtensionSet) Intersect(other *ExtensionSet) []string {
	var common []string
	for _, ext := range s.exts {
		if other.Contains(ext) {
			common = append(common, ext)
		}
	}
	sort.Strings(common)
	return common
}

// Matches reports whether filename ends in any extension in the set.
// Comparison is case-insensitive and suffix-based, so multi-part
// extensions like ".tar.gz" match "dump.TAR.GZ".
func (s *ExtensionSet) Matches(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range s.exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
