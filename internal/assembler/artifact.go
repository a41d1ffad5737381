package assembler

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"mcpforge/internal/api"
)

// MetadataFileName is the artifact metadata document written at the artifact
// root. Deployment drivers read it to resolve spec fields.
const MetadataFileName = "build-info.yaml"

// ManifestEntry is one (relative path, content checksum) pair of the
// artifact manifest. Checksums are xxhash64, hex encoded.
type ManifestEntry struct {
	Path     string `yaml:"path" json:"path"`
	Checksum string `yaml:"checksum" json:"checksum"`
}

// Metadata is the artifact metadata persisted alongside the generated files.
type Metadata struct {
	BuildID     string          `yaml:"buildId" json:"buildId"`
	ServerName  string          `yaml:"serverName" json:"serverName"`
	Flavor      string          `yaml:"flavor" json:"flavor"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Files       []ManifestEntry `yaml:"files" json:"files"`
}

// BuildArtifact is an assembled build. Once Status is Generated the
// directory is shared-read-only: deployment drivers must copy it before
// applying target-specific augmentation.
type BuildArtifact struct {
	BuildID string
	Dir     string
	Status  api.BuildStatus
	Meta    Metadata
}

// writeMetadata persists the metadata document into dir.
func writeMetadata(dir string, meta Metadata) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetadataFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact metadata: %w", err)
	}
	return nil
}

// ReadMetadata loads the metadata document from an artifact directory.
func ReadMetadata(dir string) (Metadata, error) {
	var meta Metadata
	data, err := os.ReadFile(filepath.Join(dir, MetadataFileName))
	if err != nil {
		return meta, fmt.Errorf("failed to read artifact metadata: %w", err)
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse artifact metadata: %w", err)
	}
	return meta, nil
}
