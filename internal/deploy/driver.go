package deploy

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mcpforge/internal/api"
	"mcpforge/internal/assembler"
)

// Driver converts a generic build artifact into one deployment platform's
// required config/package and performs (or describes) the publish step.
type Driver interface {
	// TargetID is the stable platform identifier used in deployment requests.
	TargetID() string

	// Description is a one-line human-readable summary of the target.
	Description() string

	// Synchronous reports whether Deploy invokes an external tool directly.
	// Non-synchronous drivers package and return operator instructions only.
	Synchronous() bool

	// GenerateConfig extends the working directory with target-specific
	// descriptors. It fails with a ConfigError when required spec fields
	// are absent from the artifact metadata. workDir is the job's private
	// copy of the artifact; the shared artifact is never touched.
	GenerateConfig(ctx context.Context, workDir string) error

	// Deploy publishes the prepared working directory. Instruction-style
	// drivers return Succeeded with a nonempty ordered SetupInstructions
	// sequence. Synchronous drivers return the provider outcome; on
	// provider failure the raw diagnostic is preserved verbatim.
	Deploy(ctx context.Context, workDir string) (*api.DeploymentResult, error)
}

// requireMetadata loads the artifact metadata from workDir and verifies the
// spec fields every driver depends on. Missing fields are a ConfigError.
func requireMetadata(targetID, workDir string) (assembler.Metadata, error) {
	meta, err := assembler.ReadMetadata(workDir)
	if err != nil {
		return meta, api.NewConfigError(targetID, "artifact metadata unreadable: %v", err)
	}
	if meta.ServerName == "" {
		return meta, api.NewConfigError(targetID, "serverName absent from artifact metadata")
	}
	if meta.Flavor == "" {
		return meta, api.NewConfigError(targetID, "runtimeFlavor absent from artifact metadata")
	}
	return meta, nil
}

// CopyArtifact copies a Generated artifact directory into a fresh working
// directory for one deployment job. Drivers augment the copy, keeping the
// shared artifact read-only for concurrent jobs against other targets.
// The context bounds the copy; it is checked before every file.
func CopyArtifact(ctx context.Context, srcDir, dstDir string) error {
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("failed to create working directory: %w", err)
	}
	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dstDir, rel)
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

// writeConfigFile writes one target-specific descriptor into workDir.
func writeConfigFile(workDir, name string, content []byte, mode os.FileMode) error {
	if err := os.WriteFile(filepath.Join(workDir, name), content, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
