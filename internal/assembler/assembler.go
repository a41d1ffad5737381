package assembler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"mcpforge/internal/api"
	"mcpforge/internal/buildspec"
	"mcpforge/internal/codegen"
	"mcpforge/pkg/logging"
)

const assemblerSubsystem = "Assembler"

// Assembler materializes generated file sets into the persistent build store.
type Assembler struct {
	buildsDir string
	flight    singleflight.Group
}

// New creates an Assembler rooted at buildsDir. The directory is created on
// first use.
func New(buildsDir string) *Assembler {
	return &Assembler{buildsDir: buildsDir}
}

// BuildsDir returns the root of the persistent build store.
func (a *Assembler) BuildsDir() string {
	return a.buildsDir
}

// ArtifactDir returns the promoted artifact directory for a buildId.
func (a *Assembler) ArtifactDir(buildID string) string {
	return filepath.Join(a.buildsDir, buildID)
}

// Assemble writes the generated files plus auxiliary artifacts into a fresh
// working directory for spec.BuildID and promotes it into the build store.
//
// At most one assembly per buildId is in flight: concurrent duplicate calls
// share the winner's artifact. If a Generated artifact already exists it is
// returned unchanged.
func (a *Assembler) Assemble(ctx context.Context, spec *buildspec.BuildSpec, files []codegen.File) (*BuildArtifact, error) {
	if spec.BuildID == "" {
		return nil, fmt.Errorf("spec has no build id assigned")
	}

	result, err, shared := a.flight.Do(spec.BuildID, func() (interface{}, error) {
		return a.assembleLocked(ctx, spec, files)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.Debug(assemblerSubsystem, "Assembly for build %s shared a concurrent caller's result", spec.BuildID)
	}
	return result.(*BuildArtifact), nil
}

// Get loads the promoted artifact for a buildId from the build store.
func (a *Assembler) Get(buildID string) (*BuildArtifact, error) {
	dir := a.ArtifactDir(buildID)
	meta, err := ReadMetadata(dir)
	if err != nil {
		return nil, api.NewBuildNotFoundError(buildID)
	}
	return &BuildArtifact{
		BuildID: buildID,
		Dir:     dir,
		Status:  api.BuildGenerated,
		Meta:    meta,
	}, nil
}

// assembleLocked performs the actual assembly. It runs under the
// per-buildId singleflight guard.
func (a *Assembler) assembleLocked(ctx context.Context, spec *buildspec.BuildSpec, files []codegen.File) (*BuildArtifact, error) {
	// Idempotent replay: an existing Generated artifact wins.
	if existing, err := a.Get(spec.BuildID); err == nil {
		logging.Debug(assemblerSubsystem, "Build %s already assembled, returning existing artifact", spec.BuildID)
		return existing, nil
	}

	if err := os.MkdirAll(a.buildsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create build store: %w", err)
	}

	scratch, err := os.MkdirTemp(a.buildsDir, "."+spec.BuildID+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}

	promoted := false
	defer func() {
		if !promoted {
			if rmErr := os.RemoveAll(scratch); rmErr != nil {
				logging.Warn(assemblerSubsystem, "Failed to clean up working directory %s: %v", scratch, rmErr)
			}
		}
	}()

	aux, err := auxiliaryFiles(spec)
	if err != nil {
		return nil, err
	}
	all := append(append([]codegen.File{}, files...), aux...)

	meta := Metadata{
		BuildID:     spec.BuildID,
		ServerName:  spec.ServerName,
		Flavor:      string(spec.Flavor),
		Description: spec.Description,
		Files:       make([]ManifestEntry, 0, len(all)),
	}

	for _, f := range all {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("assembly cancelled: %w", err)
		}
		target := filepath.Join(scratch, filepath.FromSlash(f.Path))
		if dir := filepath.Dir(target); dir != scratch {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
			}
		}
		mode := os.FileMode(0644)
		if filepath.Ext(f.Path) == ".sh" {
			mode = 0755
		}
		if err := os.WriteFile(target, f.Content, mode); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
		meta.Files = append(meta.Files, ManifestEntry{
			Path:     f.Path,
			Checksum: fmt.Sprintf("%016x", xxhash.Sum64(f.Content)),
		})
	}

	sort.Slice(meta.Files, func(i, j int) bool { return meta.Files[i].Path < meta.Files[j].Path })

	if err := writeMetadata(scratch, meta); err != nil {
		return nil, err
	}

	finalDir := a.ArtifactDir(spec.BuildID)
	if err := os.Rename(scratch, finalDir); err != nil {
		return nil, fmt.Errorf("failed to promote artifact for build %s: %w", spec.BuildID, err)
	}
	promoted = true

	logging.Info(assemblerSubsystem, "Assembled build %s (%d files) into %s", spec.BuildID, len(meta.Files), finalDir)
	return &BuildArtifact{
		BuildID: spec.BuildID,
		Dir:     finalDir,
		Status:  api.BuildGenerated,
		Meta:    meta,
	}, nil
}
