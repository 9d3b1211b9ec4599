package parser

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/h2non/filetype"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// Classifier is the fallback parser used when no installed plugin claims
// a file's extension. It decides text-versus-binary from content alone:
// a MIME signature probe, a control-byte heuristic, and an encoding
// inference pass. It holds no state; the zero value is ready to use.
type Classifier struct{}

// Default is the process-wide fallback classifier.
var Default = Classifier{}

const (
	// textConfidenceThreshold is the encoding-detection confidence below
	// which a diagnostic is logged. Low confidence alone never rejects.
	textConfidenceThreshold = 80

	// maxBinaryRatio is the fraction of control bytes above which a
	// chunk is treated as binary.
	maxBinaryRatio = 0.30
)

// textualApplicationMIMEs are application/* types that carry text despite
// not being text/*.
var textualApplicationMIMEs = map[string]struct{}{
	"application/json":       {},
	"application/xml":        {},
	"application/javascript": {},
	"application/x-yaml":     {},
}

// errUndecodable reports bytes that do not form valid content under the
// inferred encoding. It never escapes the classifier: Validate maps it
// to false and Parse maps it to a lossy fallback.
var errUndecodable = errors.New("content not decodable under inferred encoding")

// ChunkSize asks for the standard leading sample.
func (Classifier) ChunkSize() int { return DefaultChunkSize }

// Validate reports whether the chunk looks like decodable text.
//
// A recognized non-text MIME signature rejects immediately. A NUL byte,
// or more than 30% control bytes, rejects. Otherwise the chunk must
// decode under its inferred encoding.
func (c Classifier) Validate(chunk []byte, path string, logger *log.Logger) bool {
	if mime := guessMIME(chunk); mime != "" {
		_, textual := textualApplicationMIMEs[mime]
		if !strings.HasPrefix(mime, "text/") && !textual {
			if logger != nil {
				logger.Debug("rejected by MIME type", "mime", mime, "path", path)
			}
			return false
		}
	}

	if looksBinary(chunk) {
		if logger != nil {
			logger.Debug("binary signature detected", "path", path)
		}
		return false
	}

	enc, name, confidence := guessEncoding(chunk)
	if confidence < textConfidenceThreshold && logger != nil {
		logger.Debug("low encoding confidence",
			"encoding", name, "confidence", confidence, "path", path)
	}

	_, err := decodeStrict(chunk, enc)
	return err == nil
}

// Parse decodes the complete file content. The encoding is re-inferred
// from a leading sample rather than the whole input; when the decode
// fails anyway, the result degrades to lossy UTF-8 with invalid
// sequences replaced. Parse never returns a non-nil error.
func (c Classifier) Parse(data []byte, path string, logger *log.Logger) (string, error) {
	sample := data
	if len(sample) > DefaultChunkSize {
		sample = sample[:DefaultChunkSize]
	}

	enc, _, _ := guessEncoding(sample)
	text, err := decodeStrict(data, enc)
	if err != nil {
		if logger != nil {
			logger.Warn("decoding failed, falling back to lossy utf-8", "path", path)
		}
		return strings.ToValidUTF8(string(data), string(utf8.RuneError)), nil
	}
	return text, nil
}

// guessMIME probes a MIME type from the content's magic-number
// signature. It returns "" when no signature is recognized; plain text
// has no signature, so text files come back empty here.
func guessMIME(chunk []byte) string {
	kind, err := filetype.Match(chunk)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}

// looksBinary applies the control-byte heuristic: any NUL, or more than
// maxBinaryRatio of bytes in [0,9) or (13,32), marks the chunk binary.
func looksBinary(chunk []byte) bool {
	if bytes.IndexByte(chunk, 0) >= 0 {
		return true
	}

	nonPrintable := 0
	for _, b := range chunk {
		if b < 9 || (b > 13 && b < 32) {
			nonPrintable++
		}
	}

	total := len(chunk)
	if total == 0 {
		total = 1
	}
	return float64(nonPrintable)/float64(total) > maxBinaryRatio
}

// guessEncoding infers the chunk's character encoding. The returned
// encoding is nil for UTF-8 (or when detection found nothing usable),
// which decodeStrict treats as a strict UTF-8 check. Confidence is
// 0..100.
func guessEncoding(chunk []byte) (encoding.Encoding, string, int) {
	result, err := chardet.NewTextDetector().DetectBest(chunk)
	if err != nil || result == nil {
		return nil, "utf-8", 0
	}

	enc := lookupEncoding(result.Charset)
	return enc, result.Charset, result.Confidence
}

// lookupEncoding resolves a detector charset name to an encoding.
// Returns nil for UTF-8 and for names no index knows, both of which
// decode as UTF-8.
func lookupEncoding(name string) encoding.Encoding {
	if strings.EqualFold(name, "utf-8") {
		return nil
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc
	}
	// Detector names are not always IANA spellings ("GB-18030").
	stripped := strings.ReplaceAll(strings.ToLower(name), "-", "")
	if enc, err := htmlindex.Get(stripped); err == nil && enc != nil {
		return enc
	}
	if enc, err := htmlindex.Get(strings.ToLower(name)); err == nil && enc != nil {
		return enc
	}
	return nil
}

// decodeStrict decodes data under enc, failing instead of substituting.
// A nil enc means UTF-8. x/text decoders substitute U+FFFD rather than
// error, so substitution is detected by comparing replacement runes in
// the output against literal ones in the input.
func decodeStrict(data []byte, enc encoding.Encoding) (string, error) {
	if enc == nil {
		if !utf8.Valid(data) {
			return "", errUndecodable
		}
		return string(data), nil
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", errUndecodable
	}
	if bytes.ContainsRune(decoded, utf8.RuneError) && !bytes.ContainsRune(data, utf8.RuneError) {
		return "", errUndecodable
	}
	return string(decoded), nil
}
