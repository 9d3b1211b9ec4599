package plugin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Installer manages the persisted plugin lifecycle: copying validated
// artifacts into the managed plugin store, recording them in the config
// document, and removing them again.
type Installer struct {
	configPath string
	pluginsDir string
	loader     Loader
	logger     *log.Logger
}

// NewInstaller returns an installer persisting records at configPath and
// artifact copies under pluginsDir. The logger may be nil.
func NewInstaller(configPath, pluginsDir string, loader Loader, logger *log.Logger) *Installer {
	return &Installer{
		configPath: configPath,
		pluginsDir: pluginsDir,
		loader:     loader,
		logger:     logger,
	}
}

// Install validates the artifact at path and adds it to the store.
//
// The artifact's short content hash is its identity: a hash already in
// the store fails with ErrAlreadyInstalled, as does any overlap between
// the artifact's extensions and those claimed by installed plugins.
// Install is all-or-nothing; on any failure the store and plugin dir
// are left exactly as they were.
func (ins *Installer) Install(path string) (Record, error) {
	hash, err := ShortHashFile(path)
	if err != nil {
		return Record{}, err
	}

	store, err := LoadStore(ins.configPath)
	if err != nil {
		return Record{}, err
	}

	if _, exists := store.Get(hash); exists {
		return Record{}, fmt.Errorf("%w: %s (hash %s)", ErrAlreadyInstalled, path, hash)
	}

	desc, err := ins.loader.Load(path)
	if err != nil {
		return Record{}, err
	}

	claimed := store.ClaimedExtensions()
	var overlap []string
	for _, ext := range desc.Extensions.Slice() {
		if _, taken := claimed[ext]; taken {
			overlap = append(overlap, ext)
		}
	}
	if len(overlap) > 0 {
		sort.Strings(overlap)
		return Record{}, fmt.Errorf("%w: extensions already claimed: %s",
			ErrAlreadyInstalled, strings.Join(overlap, ", "))
	}

	storedPath := filepath.Join(ins.pluginsDir, hash+filepath.Ext(path))
	if err := copyFile(path, storedPath); err != nil {
		return Record{}, err
	}

	record := Record{
		Hash:         hash,
		Extensions:   desc.Extensions.Slice(),
		Path:         storedPath,
		OriginalName: filepath.Base(path),
	}
	store.Add(record)

	if err := store.Save(ins.configPath); err != nil {
		// Keep the committed state consistent: no record, no stored file.
		_ = os.Remove(storedPath)
		return Record{}, err
	}

	if ins.logger != nil {
		ins.logger.Info("plugin installed",
			"hash", hash, "extensions", strings.Join(record.Extensions, ", "))
	}
	return record, nil
}

// Uninstall removes the plugin with the given hash id, or every
// installed plugin when id is "*".
//
// For a specific id the stored artifact is deleted and the record
// removed; an unknown id fails with ErrNotFound, and a stored path that
// exists but is not a regular file fails with ErrNotRegularFile before
// anything is modified.
//
// For "*" every record is processed independently: a file-deletion
// failure is collected rather than stopping the sweep, and the record
// is removed from the store regardless, so a later retry never finds a
// half-removed entry. Collected failures are returned joined.
func (ins *Installer) Uninstall(id string) error {
	store, err := LoadStore(ins.configPath)
	if err != nil {
		return err
	}

	if id == "*" {
		var errs []error
		for _, record := range store.Records() {
			if err := removeStoredFile(record.Path); err != nil {
				errs = append(errs, fmt.Errorf("plugin %s: %w", record.Hash, err))
			}
			store.Remove(record.Hash)
			if ins.logger != nil {
				ins.logger.Info("plugin uninstalled", "hash", record.Hash)
			}
		}
		if err := store.Save(ins.configPath); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	}

	record, exists := store.Get(id)
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := removeStoredFile(record.Path); err != nil {
		return fmt.Errorf("plugin %s: %w", id, err)
	}

	store.Remove(id)
	if err := store.Save(ins.configPath); err != nil {
		return err
	}

	if ins.logger != nil {
		ins.logger.Info("plugin uninstalled", "hash", id)
	}
	return nil
}

// List returns a snapshot of all installed records in insertion order.
// The snapshot is a deep copy; callers can mutate it freely.
func (ins *Installer) List() ([]Record, error) {
	store, err := LoadStore(ins.configPath)
	if err != nil {
		return nil, err
	}
	return store.Records(), nil
}

// removeStoredFile deletes a stored plugin artifact. A path that no
// longer exists is fine; a path that is not a regular file is refused.
func removeStoredFile(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}
	return os.Remove(path)
}

// copyFile copies src into the plugin store at dst, creating the store
// directory if needed. Handles are closed on every exit path.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating plugin dir: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	return nil
}
