package plugin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Record is the persisted metadata for one installed plugin.
type Record struct {
	// Hash is the plugin's durable identity (short content hash).
	// It is the record's key in the persisted document.
	Hash string `json:"-"`

	// Extensions this plugin claims, normalized.
	Extensions []string `json:"extensions"`

	// Path of the copied artifact inside the managed plugin store.
	Path string `json:"path"`

	// OriginalName is the artifact's filename at install time.
	OriginalName string `json:"original_name"`
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.Extensions = append([]string(nil), r.Extensions...)
	return out
}

// Store is the in-memory form of the persisted config document. Records
// keep their on-disk order: the registry's first-match-wins resolution
// depends on it.
//
// The store is single-process state. Concurrent installs from multiple
// processes are unsupported and may corrupt the document.
type Store struct {
	records []Record
}

// LoadStore reads the config document at path. A missing file is an
// empty store, not an error.
func LoadStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{}, nil
		}
		return nil, fmt.Errorf("reading config store %s: %w", path, err)
	}

	records, err := decodeModules(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config store %s: %w", path, err)
	}
	return &Store{records: records}, nil
}

// Save writes the config document to path atomically: the serialized
// form lands in a uniquely named temp file first and is renamed over
// the destination, so a crash never commits a torn document.
func (s *Store) Save(path string) error {
	data, err := encodeModules(s.records)
	if err != nil {
		return fmt.Errorf("serializing config store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("writing config store: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("committing config store: %w", err)
	}
	return nil
}

// Len returns the number of installed records.
func (s *Store) Len() int { return len(s.records) }

// Get returns the record with the given hash id.
func (s *Store) Get(hash string) (Record, bool) {
	for _, r := range s.records {
		if r.Hash == hash {
			return r, true
		}
	}
	return Record{}, false
}

// Records returns a deep-copied snapshot of all records in insertion
// order. Mutating the snapshot never affects the store.
func (s *Store) Records() []Record {
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	return out
}

// Add appends a record, keeping insertion order.
func (s *Store) Add(r Record) {
	s.records = append(s.records, r.Clone())
}

// Remove deletes the record with the given hash, reporting whether it
// was present.
func (s *Store) Remove(hash string) bool {
	for i, r := range s.records {
		if r.Hash == hash {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true
		}
	}
	return false
}

// ClaimedExtensions returns every extension claimed by any record,
// mapped to the owning record's hash.
func (s *Store) ClaimedExtensions() map[string]string {
	claimed := make(map[string]string)
	for _, r := range s.records {
		for _, ext := range r.Extensions {
			claimed[ext] = r.Hash
		}
	}
	return claimed
}

// decodeModules parses the persisted document, preserving the key order
// of the "modules" mapping. encoding/json's map decoding would lose it,
// so the mapping is walked token by token.
func decodeModules(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var records []Record
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", keyTok)
		}

		if key != "modules" {
			// Unknown top-level keys are skipped, not rejected.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}

		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		for dec.More() {
			hashTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			hash, ok := hashTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected token %v", hashTok)
			}

			var r Record
			if err := dec.Decode(&r); err != nil {
				return nil, fmt.Errorf("record %q: %w", hash, err)
			}
			r.Hash = hash
			records = append(records, r)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
	}

	return records, expectDelim(dec, '}')
}

// encodeModules serializes records as {"modules": {...}} with keys in
// record order.
func encodeModules(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"modules":{`)
	for i, r := range records {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.Hash)
		if err != nil {
			return nil, err
		}
		entry, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(entry)
	}
	buf.WriteString("}}")

	var indented bytes.Buffer
	if err := json.Indent(&indented, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	indented.WriteByte('\n')
	return indented.Bytes(), nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("unexpected token %v, want %q", tok, want)
	}
	return nil
}
