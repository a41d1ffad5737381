package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"mcpforge/pkg/logging"
)

const storeSubsystem = "Store"

// Storage provides generic per-id yaml record storage under a single data
// directory.
type Storage struct {
	mu      sync.RWMutex
	dataDir string
}

// NewStorage creates a Storage rooted at dataDir.
func NewStorage(dataDir string) *Storage {
	return &Storage{dataDir: dataDir}
}

// DataDir returns the storage root.
func (s *Storage) DataDir() string {
	return s.dataDir
}

// Save stores data for the given record type and id.
func (s *Storage) Save(recordType string, id string, data []byte) error {
	if recordType == "" {
		return fmt.Errorf("recordType cannot be empty")
	}
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	targetDir := filepath.Join(s.dataDir, "records", recordType)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", targetDir, err)
	}

	filePath := filepath.Join(targetDir, sanitizeFilename(id)+".yaml")
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}

	logging.Debug(storeSubsystem, "Saved %s/%s to %s", recordType, id, filePath)
	return nil
}

// Load retrieves data for the given record type and id.
func (s *Storage) Load(recordType string, id string) ([]byte, error) {
	if recordType == "" {
		return nil, fmt.Errorf("recordType cannot be empty")
	}
	if id == "" {
		return nil, fmt.Errorf("id cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := filepath.Join(s.dataDir, "records", recordType, sanitizeFilename(id)+".yaml")
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("record %s/%s not found", recordType, id)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return data, nil
}

// Delete removes the record for the given type and id.
func (s *Storage) Delete(recordType string, id string) error {
	if recordType == "" {
		return fmt.Errorf("recordType cannot be empty")
	}
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := filepath.Join(s.dataDir, "records", recordType, sanitizeFilename(id)+".yaml")
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("record %s/%s not found", recordType, id)
	}
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}

	logging.Debug(storeSubsystem, "Deleted %s/%s", recordType, id)
	return nil
}

// List returns all record ids for the given type.
func (s *Storage) List(recordType string) ([]string, error) {
	if recordType == "" {
		return nil, fmt.Errorf("recordType cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dirPath := filepath.Join(s.dataDir, "records", recordType)
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return []string{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dirPath, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob yaml files: %w", err)
	}

	var ids []string
	for _, filePath := range files {
		basename := filepath.Base(filePath)
		ids = append(ids, strings.TrimSuffix(basename, filepath.Ext(basename)))
	}
	return ids, nil
}

// sanitizeFilename ensures the filename is safe for filesystem operations.
func sanitizeFilename(name string) string {
	sanitized := name
	for _, c := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", "."} {
		sanitized = strings.ReplaceAll(sanitized, c, "_")
	}
	sanitized = strings.ReplaceAll(strings.Trim(sanitized, " _"), " ", "_")
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "unnamed"
	}
	return sanitized
}
