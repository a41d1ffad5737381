package deploy

import (
	"fmt"
	"sort"
	"sync"

	"mcpforge/internal/api"
	"mcpforge/pkg/logging"
)

const registrySubsystem = "DeployRegistry"

// Registry resolves target ids to drivers. It is populated once at startup;
// resolution of an unrecognized target fails before any file is touched.
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
}

// NewRegistry creates an empty driver registry.
func NewRegistry() *Registry {
	return &Registry{
		drivers: make(map[string]Driver),
	}
}

// Register adds a driver to the registry.
func (r *Registry) Register(d Driver) error {
	if d == nil {
		return fmt.Errorf("cannot register nil driver")
	}
	id := d.TargetID()
	if id == "" {
		return fmt.Errorf("driver has empty target id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drivers[id]; exists {
		return fmt.Errorf("target %s already registered", id)
	}
	r.drivers[id] = d
	return nil
}

// Resolve returns the driver for a target id.
func (r *Registry) Resolve(targetID string) (Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drivers[targetID]
	if !ok {
		return nil, api.NewUnsupportedTargetError(targetID, r.knownLocked())
	}
	return d, nil
}

// List returns info for all registered targets, sorted by id.
func (r *Registry) List() []api.TargetInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]api.TargetInfo, 0, len(r.drivers))
	for _, d := range r.drivers {
		infos = append(infos, api.TargetInfo{
			TargetID:    d.TargetID(),
			Description: d.Description(),
			Synchronous: d.Synchronous(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].TargetID < infos[j].TargetID })
	return infos
}

func (r *Registry) knownLocked() []string {
	known := make([]string, 0, len(r.drivers))
	for id := range r.drivers {
		known = append(known, id)
	}
	sort.Strings(known)
	return known
}

// DefaultRegistry builds the startup registry with all built-in drivers.
// The container-image driver is only registered when a container tool is
// available on the host; the packaging drivers have no host requirements.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range []Driver{
		NewContainerArchiveDriver(),
		NewWorkstationDriver(),
		NewCloudBundleDriver(),
	} {
		if err := r.Register(d); err != nil {
			logging.Error(registrySubsystem, err, "Failed to register driver %s", d.TargetID())
		}
	}

	if builder, err := NewDockerBuilder(); err != nil {
		logging.Warn(registrySubsystem, "Container tool unavailable, %s target disabled: %v", TargetContainerImage, err)
	} else if err := r.Register(NewContainerImageDriver(builder)); err != nil {
		logging.Error(registrySubsystem, err, "Failed to register driver %s", TargetContainerImage)
	}

	return r
}
