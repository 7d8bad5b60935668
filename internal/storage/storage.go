package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/dpshade/pocket-embed/internal/errors"
)

// Collection file names under the library directory
const (
	TemplatesCollection = "templates.json"
	HistoryCollection   = "history.json"
	SettingsCollection  = "webhook_settings.json"
	DraftCollection     = "draft.json"
)

// DocumentVersion is written into every enveloped collection
const DocumentVersion = "1.0"

// Storage reads and writes whole JSON documents in the library directory.
// A single writer is assumed; concurrent processes may lose updates.
type Storage struct {
	rootPath string
	logger   *slog.Logger
}

// NewStorage creates a new storage instance
func NewStorage(rootPath string, logger *slog.Logger) (*Storage, error) {
	if rootPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		rootPath = filepath.Join(homeDir, ".pocket-embed")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Storage{
		rootPath: rootPath,
		logger:   logger.With("component", "storage"),
	}, nil
}

// InitLibrary creates the directory structure for an embed library
func (s *Storage) InitLibrary() error {
	dirs := []string{
		s.rootPath,
		filepath.Join(s.rootPath, "exports"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.StorageError("create directory "+dir, err)
		}
	}

	return nil
}

// GetBaseDir returns the root path of the storage
func (s *Storage) GetBaseDir() string {
	return s.rootPath
}

func (s *Storage) path(collection string) string {
	return filepath.Join(s.rootPath, collection)
}

// Exists reports whether a collection document is present
func (s *Storage) Exists(collection string) bool {
	_, err := os.Stat(s.path(collection))
	return err == nil
}

// Load decodes a collection document into v. A missing document yields
// NOT_FOUND; a document that is not valid JSON yields FILE_CORRUPTED.
func (s *Storage) Load(collection string, v interface{}) error {
	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFoundError(collection)
		}
		return errors.StorageError("read "+collection, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("collection is corrupted", "collection", collection, "error", err)
		return errors.CorruptedError(collection, err)
	}

	return nil
}

// Save encodes v and replaces the collection document. The write goes to a
// temporary file that is renamed over the target, so readers see either the
// old or the new document. Unchanged content is not rewritten.
func (s *Storage) Save(collection string, v interface{}) error {
	if err := os.MkdirAll(s.rootPath, 0755); err != nil {
		return errors.StorageError("create library directory", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.StorageError("encode "+collection, err)
	}
	data = append(data, '\n')

	target := s.path(collection)
	if existing, err := os.ReadFile(target); err == nil && calculateHash(existing) == calculateHash(data) {
		return nil
	}

	tmp, err := os.CreateTemp(s.rootPath, "."+collection+".*.tmp")
	if err != nil {
		return errors.StorageError("create temp file for "+collection, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.StorageError("write "+collection, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.StorageError("sync "+collection, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.StorageError("close "+collection, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return errors.StorageError("chmod "+collection, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return errors.StorageError("replace "+collection, err)
	}

	s.logger.Debug("collection saved", "collection", collection, "bytes", len(data))
	return nil
}

// Remove deletes a collection document. Removing a missing document is not an error.
func (s *Storage) Remove(collection string) error {
	if err := os.Remove(s.path(collection)); err != nil && !os.IsNotExist(err) {
		return errors.StorageError("remove "+collection, err)
	}
	return nil
}

// WriteExport writes an export file. Relative names land in the exports
// directory and may not climb out of it.
func (s *Storage) WriteExport(name string, content []byte) (string, error) {
	target := name
	if !filepath.IsAbs(target) {
		clean := filepath.Clean(name)
		if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return "", errors.InvalidInputError(fmt.Sprintf("export name '%s' must stay inside the exports directory", name)).
				WithDetails("Use an absolute path to write elsewhere")
		}
		target = filepath.Join(s.rootPath, "exports", clean)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", errors.StorageError("create export directory", err)
	}
	if !bytes.HasSuffix(content, []byte("\n")) {
		content = append(content, '\n')
	}
	if err := os.WriteFile(target, content, 0644); err != nil {
		return "", errors.StorageError(fmt.Sprintf("write export %s", name), err)
	}
	return target, nil
}

// calculateHash calculates SHA256 hash of content
func calculateHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
