package plugin

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// hashLength is how many hex characters of the digest form a plugin id.
// Short ids keep stored filenames and CLI output readable; eight hex
// characters are plenty for the tens of plugins a store realistically
// holds.
const hashLength = 8

// ShortHash returns the plugin identity for the given content: the
// leading hex of its SHA-256 digest.
func ShortHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:hashLength]
}

// ShortHashFile computes ShortHash over a file's content without
// buffering the whole file.
func ShortHashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil))[:hashLength], nil
}
